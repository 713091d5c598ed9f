package application

import (
	"github.com/shopspring/decimal"

	"github.com/pawmart/paytracker/internal/core/domain"
	"github.com/pawmart/paytracker/pkg/gateway"
)

// RateEstimator requests conversion estimates from the gateway and stamps
// every result with the request sequence captured at call time, so that the
// caller can discard responses superseded by a newer request.
type RateEstimator struct {
	gatewaySvc gateway.Service
}

// NewRateEstimator returns a new estimator backed by the given gateway.
func NewRateEstimator(gatewaySvc gateway.Service) *RateEstimator {
	return &RateEstimator{gatewaySvc}
}

// Estimate converts the source amount into the target currency.
func (e *RateEstimator) Estimate(
	amount decimal.Decimal, fromCurrency, toCurrency string, seq uint64,
) (*domain.Estimate, error) {
	estimatedAmount, err := e.gatewaySvc.GetEstimate(amount, fromCurrency, toCurrency)
	if err != nil {
		return nil, err
	}

	return &domain.Estimate{
		SourceAmount:    amount,
		SourceCurrency:  fromCurrency,
		TargetCurrency:  toCurrency,
		EstimatedAmount: estimatedAmount,
		RequestSeq:      seq,
	}, nil
}
