package application

import (
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/pawmart/paytracker/internal/core/domain"
	"github.com/pawmart/paytracker/pkg/stats"
)

// SelectionView is the read model of the selection pipeline. It is a copy,
// mutating it has no effect on the pipeline.
type SelectionView struct {
	Currency        *domain.Currency
	Network         *domain.Network
	Networks        []domain.Network
	Amount          decimal.Decimal
	Estimate        *domain.Estimate
	LoadingNetworks bool
	LoadingEstimate bool
	CatalogErr      error
	EstimateErr     error
}

// SelectionService composes the currency catalog and the rate estimator
// behind a single cascading-selection contract: a currency change
// invalidates the network and the estimate, a network or amount change
// invalidates only the estimate. Responses of superseded requests are
// silently dropped, naive last-call-wins is unsafe under variable network
// latency.
type SelectionService struct {
	catalog        *CurrencyCatalog
	estimator      *RateEstimator
	sourceCurrency string

	mtx             sync.RWMutex
	currency        *domain.Currency
	network         *domain.Network
	networks        []domain.Network
	amount          decimal.Decimal
	estimate        *domain.Estimate
	loadingNetworks bool
	loadingEstimate bool
	catalogErr      error
	estimateErr     error
	// currencyToken invalidates in-flight network loads, estimateSeq is the
	// highest issued estimate sequence. Responses carrying anything lower
	// than the current value are stale.
	currencyToken uint64
	estimateSeq   uint64
}

// NewSelectionService returns a pipeline converting amounts denominated in
// sourceCurrency into the settlement currency picked by the payer.
func NewSelectionService(
	catalog *CurrencyCatalog, estimator *RateEstimator, sourceCurrency string,
) *SelectionService {
	return &SelectionService{
		catalog:        catalog,
		estimator:      estimator,
		sourceCurrency: sourceCurrency,
	}
}

// SelectCurrency makes the given currency the active one, clears the network
// and estimate selected under the previous currency and loads the network
// list asynchronously. If the currency changes again before the load
// resolves, the stale response is discarded.
func (s *SelectionService) SelectCurrency(code string) error {
	currency, err := s.catalog.Currency(code)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.currency = &currency
	s.network = nil
	s.networks = nil
	s.estimate = nil
	s.catalogErr = nil
	s.estimateErr = nil
	s.loadingNetworks = true
	s.loadingEstimate = false
	s.currencyToken++
	s.estimateSeq++

	token := s.currencyToken
	go s.loadNetworks(code, token)
	return nil
}

// SelectNetwork makes the given network the active one. It must belong to
// the loaded network list of the active currency. Only the estimate is
// invalidated.
func (s *SelectionService) SelectNetwork(code string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var selected *domain.Network
	for i := range s.networks {
		if s.networks[i].Code == code {
			network := s.networks[i]
			selected = &network
			break
		}
	}
	if selected == nil {
		return ErrNetworkNotFound
	}

	s.network = selected
	s.refreshEstimate()
	return nil
}

// SetAmount sets the source amount to be converted. Only the estimate is
// invalidated.
func (s *SelectionService) SetAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.amount = amount
	s.refreshEstimate()
	return nil
}

// View returns a snapshot of the pipeline state.
func (s *SelectionService) View() SelectionView {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	view := SelectionView{
		Amount:          s.amount,
		LoadingNetworks: s.loadingNetworks,
		LoadingEstimate: s.loadingEstimate,
		CatalogErr:      s.catalogErr,
		EstimateErr:     s.estimateErr,
	}
	if s.currency != nil {
		currency := *s.currency
		view.Currency = &currency
	}
	if s.network != nil {
		network := *s.network
		view.Network = &network
	}
	if len(s.networks) > 0 {
		view.Networks = append([]domain.Network{}, s.networks...)
	}
	if s.estimate != nil {
		estimate := *s.estimate
		view.Estimate = &estimate
	}
	return view
}

func (s *SelectionService) loadNetworks(code string, token uint64) {
	networks, err := s.catalog.Networks(code)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if token != s.currencyToken {
		log.Debugf("dropping stale network list for currency %s", code)
		return
	}

	s.loadingNetworks = false
	if err != nil {
		s.catalogErr = ErrCatalogUnavailable
		s.networks = nil
		log.WithError(err).Warnf("failed to load networks for currency %s", code)
		return
	}

	s.networks = networks
	if s.network == nil && len(networks) > 0 {
		network := networks[0]
		s.network = &network
		s.refreshEstimate()
	}
}

// refreshEstimate issues a new estimate request with a fresh sequence if the
// selection is complete. Must be called with the lock held.
func (s *SelectionService) refreshEstimate() {
	if s.currency == nil || s.network == nil || !s.amount.IsPositive() {
		return
	}

	s.estimateSeq++
	s.loadingEstimate = true

	seq := s.estimateSeq
	go s.fetchEstimate(s.amount, s.currency.Code, seq)
}

func (s *SelectionService) fetchEstimate(
	amount decimal.Decimal, targetCurrency string, seq uint64,
) {
	estimate, err := s.estimator.Estimate(amount, s.sourceCurrency, targetCurrency, seq)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if seq != s.estimateSeq {
		stats.StaleEstimateCounter.Inc()
		log.Debugf("dropping stale estimate with seq %d", seq)
		return
	}

	s.loadingEstimate = false
	if err != nil {
		// the previous estimate stays visible, flickering to blank on a
		// transient error is a defect
		s.estimateErr = ErrEstimateUnavailable
		log.WithError(err).Warnf("failed to estimate %s conversion", targetCurrency)
		return
	}

	s.estimateErr = nil
	s.estimate = estimate
}
