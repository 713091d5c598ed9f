package application

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pawmart/paytracker/internal/core/domain"
	"github.com/pawmart/paytracker/internal/infrastructure/notifier"
	"github.com/pawmart/paytracker/pkg/gateway"
)

// TrackerOpts defines the parameters needed for creating a tracker service
// with NewTrackerService.
type TrackerOpts struct {
	GatewaySvc        gateway.Service
	PaymentRepository domain.PaymentRepository
	NotifierSvc       notifier.Service
	PollInterval      time.Duration
	TickInterval      time.Duration
	TerminalDelay     time.Duration
}

// TrackerService owns the lifecycle controllers of all tracked payments,
// keyed by payment id. At most one controller exists per payment.
type TrackerService struct {
	opts TrackerOpts

	mtx         sync.Mutex
	controllers map[string]*LifecycleController
}

// NewTrackerService returns a tracker ready to start lifecycle controllers.
func NewTrackerService(opts TrackerOpts) *TrackerService {
	return &TrackerService{
		opts:        opts,
		controllers: make(map[string]*LifecycleController),
	}
}

// TrackPayment creates and starts the lifecycle controller of the given
// payment. onTerminal, if not nil, is invoked at most once when the payment
// reaches a terminal status, after the configured delay.
func (t *TrackerService) TrackPayment(
	payment *domain.Payment, onTerminal func(Snapshot),
) (*LifecycleController, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if payment == nil {
		return nil, ErrNullPayment
	}
	if _, ok := t.controllers[payment.Id]; ok {
		return nil, ErrPaymentAlreadyTracked
	}

	controller, err := NewLifecycleController(LifecycleOpts{
		Payment:           payment,
		GatewaySvc:        t.opts.GatewaySvc,
		PaymentRepository: t.opts.PaymentRepository,
		NotifierSvc:       t.opts.NotifierSvc,
		PollInterval:      t.opts.PollInterval,
		TickInterval:      t.opts.TickInterval,
		TerminalDelay:     t.opts.TerminalDelay,
		OnTerminal:        onTerminal,
	})
	if err != nil {
		return nil, err
	}

	// terminal payments release their registry entry on their own, the
	// daemon tracks an unbounded stream of payments over its lifetime
	paymentId := payment.Id
	controller.onComplete = func() { t.removeController(paymentId) }

	t.controllers[payment.Id] = controller
	controller.Start()

	log.Debugf("tracking payment %s", payment.Id)
	return controller, nil
}

// Controller returns the lifecycle controller of the given payment, if any.
func (t *TrackerService) Controller(paymentId string) (*LifecycleController, bool) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	controller, ok := t.controllers[paymentId]
	return controller, ok
}

func (t *TrackerService) removeController(paymentId string) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	delete(t.controllers, paymentId)
}

// StopTracking tears down the controller of the given payment.
func (t *TrackerService) StopTracking(paymentId string) {
	t.mtx.Lock()
	controller, ok := t.controllers[paymentId]
	if ok {
		delete(t.controllers, paymentId)
	}
	t.mtx.Unlock()

	if ok {
		controller.Stop()
	}
}

// StopAll tears down every controller. Leaked timers firing against a
// discarded controller are a defect, teardown must always stop them.
func (t *TrackerService) StopAll() {
	t.mtx.Lock()
	controllers := make([]*LifecycleController, 0, len(t.controllers))
	for _, controller := range t.controllers {
		controllers = append(controllers, controller)
	}
	t.controllers = make(map[string]*LifecycleController)
	t.mtx.Unlock()

	for _, controller := range controllers {
		controller.Stop()
	}
}

// ResumePendingPayments restarts tracking for every persisted payment that
// has not reached a terminal status, typically at daemon boot.
func (t *TrackerService) ResumePendingPayments(ctx context.Context) error {
	if t.opts.PaymentRepository == nil {
		return nil
	}

	payments, err := t.opts.PaymentRepository.GetPendingPayments(ctx)
	if err != nil {
		return err
	}

	for _, payment := range payments {
		if _, err := t.TrackPayment(payment, nil); err != nil {
			log.WithError(err).Warnf("failed to resume payment %s", payment.Id)
			continue
		}
		log.Infof("resumed tracking of payment %s", payment.Id)
	}
	return nil
}
