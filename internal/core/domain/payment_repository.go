package domain

import "context"

// PaymentRepository is the abstraction for any kind of database intended to
// persist Payments.
type PaymentRepository interface {
	// AddPayment persists the given payment, failing if one with the same id
	// already exists.
	AddPayment(ctx context.Context, payment *Payment) error
	// GetPayment returns the payment with the given id.
	GetPayment(ctx context.Context, id string) (*Payment, error)
	// GetAllPayments returns all the payments stored in the repository.
	GetAllPayments(ctx context.Context) ([]*Payment, error)
	// GetPendingPayments returns all the payments that have not reached a
	// terminal status yet.
	GetPendingPayments(ctx context.Context) ([]*Payment, error)
	// UpdatePayment allows to commit multiple changes to the same payment in
	// a transactional way.
	UpdatePayment(
		ctx context.Context,
		id string,
		updateFn func(p *Payment) (*Payment, error),
	) error
}
