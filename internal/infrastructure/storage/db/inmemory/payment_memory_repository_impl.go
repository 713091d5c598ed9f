package inmemory

import (
	"context"
	"sync"

	"github.com/pawmart/paytracker/internal/core/domain"
)

type paymentInmemoryStore struct {
	locker   *sync.Mutex
	payments map[string]domain.Payment
}

type paymentRepositoryImpl struct {
	store *paymentInmemoryStore
}

// NewPaymentRepositoryImpl returns a new inmemory PaymentRepository
// implementation.
func NewPaymentRepositoryImpl() domain.PaymentRepository {
	return &paymentRepositoryImpl{
		store: &paymentInmemoryStore{
			locker:   &sync.Mutex{},
			payments: make(map[string]domain.Payment),
		},
	}
}

func (r paymentRepositoryImpl) AddPayment(
	_ context.Context, payment *domain.Payment,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.payments[payment.Id]; ok {
		return ErrPaymentAlreadyExists
	}

	r.store.payments[payment.Id] = *payment
	return nil
}

func (r paymentRepositoryImpl) GetPayment(
	_ context.Context, id string,
) (*domain.Payment, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.getPayment(id)
}

func (r paymentRepositoryImpl) GetAllPayments(
	_ context.Context,
) ([]*domain.Payment, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	allPayments := make([]*domain.Payment, 0, len(r.store.payments))
	for _, payment := range r.store.payments {
		p := payment
		allPayments = append(allPayments, &p)
	}
	return allPayments, nil
}

func (r paymentRepositoryImpl) GetPendingPayments(
	_ context.Context,
) ([]*domain.Payment, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	pendingPayments := make([]*domain.Payment, 0)
	for _, payment := range r.store.payments {
		if payment.Status.IsTerminal() {
			continue
		}
		p := payment
		pendingPayments = append(pendingPayments, &p)
	}
	return pendingPayments, nil
}

func (r paymentRepositoryImpl) UpdatePayment(
	_ context.Context,
	id string,
	updateFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	currentPayment, err := r.getPayment(id)
	if err != nil {
		return err
	}

	updatedPayment, err := updateFn(currentPayment)
	if err != nil {
		return err
	}

	r.store.payments[id] = *updatedPayment
	return nil
}

func (r paymentRepositoryImpl) getPayment(id string) (*domain.Payment, error) {
	payment, ok := r.store.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return &payment, nil
}
