package application

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pawmart/paytracker/internal/core/domain"
	"github.com/pawmart/paytracker/pkg/gateway"
)

// CurrencyCatalog is a session-scoped read cache of the settlement
// currencies and their networks. Entries are never mutated after being
// fetched, concurrent reads are safe.
type CurrencyCatalog struct {
	gatewaySvc gateway.Service

	mtx                sync.RWMutex
	currencies         []domain.Currency
	currencyByCode     map[string]domain.Currency
	networksByCurrency map[string][]domain.Network
}

// NewCurrencyCatalog returns an empty catalog backed by the given gateway.
func NewCurrencyCatalog(gatewaySvc gateway.Service) *CurrencyCatalog {
	return &CurrencyCatalog{
		gatewaySvc:         gatewaySvc,
		currencyByCode:     make(map[string]domain.Currency),
		networksByCurrency: make(map[string][]domain.Network),
	}
}

// Load fetches the currency list and prefetches the network list of every
// currency concurrently.
func (c *CurrencyCatalog) Load(ctx context.Context) error {
	currencies, err := c.fetchCurrencies()
	if err != nil {
		return err
	}

	eg, _ := errgroup.WithContext(ctx)
	for i := range currencies {
		code := currencies[i].Code
		eg.Go(func() error {
			_, err := c.Networks(code)
			return err
		})
	}
	return eg.Wait()
}

// Currencies returns the cached currency list, fetching it on first use.
func (c *CurrencyCatalog) Currencies() ([]domain.Currency, error) {
	c.mtx.RLock()
	if len(c.currencies) > 0 {
		defer c.mtx.RUnlock()
		return c.currencies, nil
	}
	c.mtx.RUnlock()

	return c.fetchCurrencies()
}

// Currency returns the currency with the given code.
func (c *CurrencyCatalog) Currency(code string) (domain.Currency, error) {
	if _, err := c.Currencies(); err != nil {
		return domain.Currency{}, err
	}

	c.mtx.RLock()
	defer c.mtx.RUnlock()

	currency, ok := c.currencyByCode[code]
	if !ok {
		return domain.Currency{}, ErrCurrencyNotFound
	}
	return currency, nil
}

// Networks returns the settlement networks valid for the given currency,
// fetching and caching them on first use.
func (c *CurrencyCatalog) Networks(currencyCode string) ([]domain.Network, error) {
	c.mtx.RLock()
	if networks, ok := c.networksByCurrency[currencyCode]; ok {
		c.mtx.RUnlock()
		return networks, nil
	}
	c.mtx.RUnlock()

	fetched, err := c.gatewaySvc.GetNetworks(currencyCode)
	if err != nil {
		return nil, err
	}

	networks := make([]domain.Network, 0, len(fetched))
	for _, n := range fetched {
		networks = append(networks, domain.Network{Code: n.Code, Name: n.Name})
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.networksByCurrency[currencyCode] = networks
	return networks, nil
}

func (c *CurrencyCatalog) fetchCurrencies() ([]domain.Currency, error) {
	fetched, err := c.gatewaySvc.GetCurrencies()
	if err != nil {
		return nil, err
	}

	currencies := make([]domain.Currency, 0, len(fetched))
	byCode := make(map[string]domain.Currency)
	for _, cc := range fetched {
		currency := domain.Currency{
			Code:      cc.Code,
			Name:      cc.Name,
			Symbol:    cc.Symbol,
			MinAmount: cc.MinAmount,
			MaxAmount: cc.MaxAmount,
		}
		currencies = append(currencies, currency)
		byCode[currency.Code] = currency
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.currencies = currencies
	c.currencyByCode = byCode
	return currencies, nil
}
