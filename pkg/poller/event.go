package poller

import "github.com/pawmart/paytracker/internal/core/domain"

// EventType is the type of the events emitted by the poller.
type EventType int

const (
	// PaymentStatusUpdate is emitted for every successful status fetch,
	// including repeats of the previously reported status.
	PaymentStatusUpdate EventType = iota
)

func (t EventType) String() string {
	switch t {
	case PaymentStatusUpdate:
		return "PaymentStatusUpdate"
	default:
		return "Unknown"
	}
}

// Event are emitted through a channel while polling.
type Event interface {
	Type() EventType
}

// StatusEvent reports the status of a payment as fetched from the gateway.
type StatusEvent struct {
	PaymentId      string
	Status         domain.PaymentStatus
	TransactionUrl string
}

// Type returns the type of the event.
func (e StatusEvent) Type() EventType {
	return PaymentStatusUpdate
}
