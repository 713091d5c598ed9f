package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"

	"github.com/pawmart/paytracker/internal/core/domain"
)

type paymentRepositoryImpl struct {
	store *badgerhold.Store
}

// NewPaymentRepositoryImpl opens (or creates if not exists) the badger store
// in the given data dir and returns a PaymentRepository implementation on
// top of it. An empty dir makes the store run in memory.
func NewPaymentRepositoryImpl(
	baseDbDir string, logger badger.Logger,
) (domain.PaymentRepository, error) {
	var paymentsDir string
	if len(baseDbDir) > 0 {
		paymentsDir = filepath.Join(baseDbDir, "payments")
	}

	store, err := createDb(paymentsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening payments db: %w", err)
	}
	return &paymentRepositoryImpl{store}, nil
}

func (r *paymentRepositoryImpl) AddPayment(
	_ context.Context, payment *domain.Payment,
) error {
	if err := r.store.Insert(payment.Id, payment); err != nil {
		if err == badgerhold.ErrKeyExists {
			return fmt.Errorf("payment %s already exists", payment.Id)
		}
		return err
	}
	return nil
}

func (r *paymentRepositoryImpl) GetPayment(
	_ context.Context, id string,
) (*domain.Payment, error) {
	var payment domain.Payment
	if err := r.store.Get(id, &payment); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepositoryImpl) GetAllPayments(
	_ context.Context,
) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	if err := r.store.Find(&payments, nil); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepositoryImpl) GetPendingPayments(
	ctx context.Context,
) ([]*domain.Payment, error) {
	allPayments, err := r.GetAllPayments(ctx)
	if err != nil {
		return nil, err
	}

	pendingPayments := make([]*domain.Payment, 0, len(allPayments))
	for _, payment := range allPayments {
		if payment.Status.IsTerminal() {
			continue
		}
		pendingPayments = append(pendingPayments, payment)
	}
	return pendingPayments, nil
}

func (r *paymentRepositoryImpl) UpdatePayment(
	ctx context.Context,
	id string,
	updateFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	currentPayment, err := r.GetPayment(ctx, id)
	if err != nil {
		return err
	}

	updatedPayment, err := updateFn(currentPayment)
	if err != nil {
		return err
	}

	return r.store.Update(id, updatedPayment)
}

// Close releases the underlying badger store.
func (r *paymentRepositoryImpl) Close() {
	r.store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}
