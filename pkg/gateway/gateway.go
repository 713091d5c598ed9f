package gateway

import (
	"github.com/shopspring/decimal"
)

// Service is the interface to be implemented by any client of the payment
// gateway backend, ie. the service that issues deposit addresses and reports
// the settlement status of payments.
type Service interface {
	// GetCurrencies returns the settlement currencies accepted for deposits.
	GetCurrencies() ([]Currency, error)
	// GetNetworks returns the valid settlement networks for a currency.
	GetNetworks(currencyCode string) ([]Network, error)
	// GetEstimate converts a source amount into the target currency at the
	// current rate. The result is provisional until the intent is created.
	GetEstimate(
		amount decimal.Decimal, fromCurrency, toCurrency string,
	) (decimal.Decimal, error)
	// CreatePayment submits a finalized payment intent and returns the
	// deposit details issued by the gateway.
	CreatePayment(req CreatePaymentRequest) (*PaymentInfo, error)
	// GetPaymentStatus returns the current snapshot of a payment.
	GetPaymentStatus(paymentId string) (*PaymentInfo, error)
}
