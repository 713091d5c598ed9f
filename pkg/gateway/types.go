package gateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawmart/paytracker/internal/core/domain"
)

// Currency mirrors the gateway representation of a settlement currency.
type Currency struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Symbol    string          `json:"symbol"`
	MinAmount decimal.Decimal `json:"minAmount"`
	MaxAmount decimal.Decimal `json:"maxAmount"`
}

// Network mirrors the gateway representation of a settlement network.
type Network struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CreatePaymentRequest is the payload for creating a payment intent.
type CreatePaymentRequest struct {
	OrderId  string          `json:"orderId"`
	Currency string          `json:"currency"`
	Network  string          `json:"network"`
	Amount   decimal.Decimal `json:"amount"`
}

// PaymentInfo is the gateway snapshot of a payment, returned both at intent
// creation and by the status endpoint.
type PaymentInfo struct {
	Id             string          `json:"id"`
	OrderId        string          `json:"orderId"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Network        string          `json:"network"`
	Address        string          `json:"address"`
	QrPayload      string          `json:"qrPayload"`
	ExpiresAt      time.Time       `json:"expiresAt"`
	TransactionUrl string          `json:"transactionUrl"`
}

type estimateResponse struct {
	EstimatedAmount decimal.Decimal `json:"estimatedAmount"`
}

// ParseStatus maps a gateway status string to a domain payment status. The
// second return value is false for statuses the tracker does not know about.
func ParseStatus(status string) (domain.PaymentStatus, bool) {
	switch status {
	case "new", "waiting":
		return domain.PaymentStatus{Code: domain.PaymentStatusCodeNew}, true
	case "confirming", "sending":
		return domain.PaymentStatus{Code: domain.PaymentStatusCodeConfirming}, true
	case "confirmed", "finished":
		return domain.PaymentStatus{Code: domain.PaymentStatusCodeConfirmed}, true
	case "expired":
		return domain.PaymentStatus{Code: domain.PaymentStatusCodeExpired}, true
	case "failed", "refunded":
		return domain.PaymentStatus{Code: domain.PaymentStatusCodeFailed}, true
	default:
		return domain.PaymentStatus{}, false
	}
}
