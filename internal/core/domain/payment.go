package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the different statuses a deposit payment can
// assume during its lifecycle.
type PaymentStatus struct {
	Code int
}

// IsTerminal returns whether no further transition is permitted from the
// current status. Terminal statuses are absorbing.
func (s PaymentStatus) IsTerminal() bool {
	return s.Code == PaymentStatusCodeConfirmed ||
		s.Code == PaymentStatusCodeExpired ||
		s.Code == PaymentStatusCodeFailed
}

func (s PaymentStatus) String() string {
	switch s.Code {
	case PaymentStatusCodeNew:
		return "new"
	case PaymentStatusCodeConfirming:
		return "confirming"
	case PaymentStatusCodeConfirmed:
		return "confirmed"
	case PaymentStatusCodeExpired:
		return "expired"
	case PaymentStatusCodeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Payment is the data structure representing a deposit payment entity. It is
// constructed once when the intent is created on the gateway and, except for
// its status, is immutable from then on.
type Payment struct {
	Id             string
	OrderId        string
	Currency       string
	Network        string
	Amount         decimal.Decimal
	Address        string
	QrPayload      string
	Status         PaymentStatus
	ExpiryTime     int64
	SettlementTime int64
	TransactionUrl string
}

// NewPayment returns a payment with status New for the given settlement
// details. This is the only place a payment is constructed.
func NewPayment(
	orderId, currency, network string, amount decimal.Decimal,
	address, qrPayload string, expiryTime int64,
) *Payment {
	return &Payment{
		Id:         uuid.New().String(),
		OrderId:    orderId,
		Currency:   currency,
		Network:    network,
		Amount:     amount,
		Address:    address,
		QrPayload:  qrPayload,
		Status:     PaymentStatus{Code: PaymentStatusCodeNew},
		ExpiryTime: expiryTime,
	}
}

// StartConfirming brings a payment from the New to the Confirming status.
// The transition applies only from New; a repeated Confirming report is a
// no-op and any other status rejects it.
func (p *Payment) StartConfirming() (bool, error) {
	if p.Status.Code == PaymentStatusCodeConfirming {
		return true, nil
	}
	if p.Status.Code != PaymentStatusCodeNew {
		return false, ErrPaymentMustBeNew
	}

	p.Status.Code = PaymentStatusCodeConfirming
	return true, nil
}

// Confirm brings a payment to the terminal Confirmed status and records the
// settlement time. A payment already Confirmed is left untouched, while any
// other terminal status absorbs the transition.
func (p *Payment) Confirm(txUrl string) (bool, error) {
	if p.Status.Code == PaymentStatusCodeConfirmed {
		return true, nil
	}
	if p.Status.IsTerminal() {
		return false, ErrPaymentAlreadyTerminal
	}

	p.Status.Code = PaymentStatusCodeConfirmed
	p.SettlementTime = time.Now().Unix()
	if len(txUrl) > 0 {
		p.TransactionUrl = txUrl
	}
	return true, nil
}

// Fail brings a payment to the terminal Failed status, unless another
// terminal status was reached first.
func (p *Payment) Fail() (bool, error) {
	if p.Status.Code == PaymentStatusCodeFailed {
		return true, nil
	}
	if p.Status.IsTerminal() {
		return false, ErrPaymentAlreadyTerminal
	}

	p.Status.Code = PaymentStatusCodeFailed
	return true, nil
}

// Expire brings a payment to the terminal Expired status if its expiry time
// was previously set and has passed. A settlement that won the race keeps
// its terminal status, expiry never overrides it.
func (p *Payment) Expire() (bool, error) {
	if p.Status.Code == PaymentStatusCodeExpired {
		return true, nil
	}
	if p.Status.IsTerminal() {
		return false, ErrPaymentAlreadyTerminal
	}
	if p.ExpiryTime <= 0 {
		return false, ErrPaymentNullExpiryTime
	}
	if time.Now().Before(time.Unix(p.ExpiryTime, 0)) {
		return false, ErrPaymentExpiryTimeNotReached
	}

	p.Status.Code = PaymentStatusCodeExpired
	return true, nil
}

// IsNew returns whether the payment is in New status.
func (p *Payment) IsNew() bool {
	return p.Status.Code == PaymentStatusCodeNew
}

// IsConfirming returns whether the payment is in Confirming status.
func (p *Payment) IsConfirming() bool {
	return p.Status.Code == PaymentStatusCodeConfirming
}

// IsConfirmed returns whether the payment is in Confirmed status.
func (p *Payment) IsConfirmed() bool {
	return p.Status.Code == PaymentStatusCodeConfirmed
}

// IsExpired returns whether the payment is in Expired status.
func (p *Payment) IsExpired() bool {
	return p.Status.Code == PaymentStatusCodeExpired
}

// IsFailed returns whether the payment is in Failed status.
func (p *Payment) IsFailed() bool {
	return p.Status.Code == PaymentStatusCodeFailed
}

// IsTerminal returns whether the payment reached a terminal status.
func (p *Payment) IsTerminal() bool {
	return p.Status.IsTerminal()
}
