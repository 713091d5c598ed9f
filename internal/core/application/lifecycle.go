package application

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/pawmart/paytracker/internal/core/domain"
	"github.com/pawmart/paytracker/internal/infrastructure/notifier"
	"github.com/pawmart/paytracker/pkg/countdown"
	"github.com/pawmart/paytracker/pkg/gateway"
	"github.com/pawmart/paytracker/pkg/poller"
	"github.com/pawmart/paytracker/pkg/stats"
)

const (
	// DefaultTerminalDelay is how long a terminal status stays on display
	// before the one-shot terminal callback fires.
	DefaultTerminalDelay = 5 * time.Second

	notifyQueueMaxSize = 100
)

// Snapshot is the read-only view of a tracked payment exposed to the
// display layer.
type Snapshot struct {
	PaymentId        string
	Status           domain.PaymentStatus
	RemainingSeconds int64
	Address          string
	QrPayload        string
	Amount           decimal.Decimal
	Currency         string
	TransactionUrl   string
}

// LifecycleOpts defines the parameters needed for creating a lifecycle
// controller with NewLifecycleController.
type LifecycleOpts struct {
	Payment    *domain.Payment
	GatewaySvc gateway.Service
	// PaymentRepository, when given, mirrors every status change.
	PaymentRepository domain.PaymentRepository
	// NotifierSvc, when given, receives the terminal snapshot.
	NotifierSvc notifier.Service
	// PollInterval and TickInterval default to the poller and countdown
	// package defaults.
	PollInterval time.Duration
	TickInterval time.Duration
	// TerminalDelay is the delay between entering a terminal status and
	// invoking OnTerminal.
	TerminalDelay time.Duration
	// OnTerminal is the one-shot redirect callback, its destination is
	// chosen by the caller. It is guaranteed to be invoked at most once per
	// payment, after TerminalDelay.
	OnTerminal func(Snapshot)
}

// LifecycleController merges the events of a status poller and of an expiry
// countdown into the single authoritative status of one payment. It is the
// exclusive owner of the payment's mutable status: the poller and the
// countdown only propose values, the controller arbitrates.
//
// Terminal statuses are absorbing. Entering one stops both timers, persists
// the final status, schedules the one-shot terminal callback and releases
// the controller's own loop; any later event is a no-op.
type LifecycleController struct {
	payment      *domain.Payment
	repository   domain.PaymentRepository
	notifierSvc  notifier.Service
	pollerSvc    *poller.Service
	countdownSvc *countdown.Service

	terminalDelay time.Duration
	onTerminal    func(Snapshot)

	mtx             sync.RWMutex
	remaining       int64
	terminalEntered bool
	terminalTimer   *time.Timer
	stopped         bool
	completed       bool

	// onComplete, when set, is invoked once the controller entered a terminal
	// status and released its own loop. Set before Start, immutable after.
	onComplete func()

	quitChan   chan struct{}
	notifyChan chan Snapshot
}

// NewLifecycleController returns a controller for the given payment. The
// payment and its controller are created together, use Start to begin
// tracking and Stop to tear it down.
func NewLifecycleController(opts LifecycleOpts) (*LifecycleController, error) {
	if opts.Payment == nil {
		return nil, ErrNullPayment
	}
	if opts.GatewaySvc == nil {
		return nil, ErrNullGateway
	}
	if opts.Payment.ExpiryTime <= 0 {
		return nil, domain.ErrPaymentNullExpiryTime
	}

	terminalDelay := opts.TerminalDelay
	if terminalDelay <= 0 {
		terminalDelay = DefaultTerminalDelay
	}

	pollerSvc := poller.NewService(poller.Opts{
		GatewaySvc: opts.GatewaySvc,
		PaymentId:  opts.Payment.Id,
		Interval:   opts.PollInterval,
	})
	countdownSvc := countdown.NewService(countdown.Opts{
		ExpiresAt:    time.Unix(opts.Payment.ExpiryTime, 0),
		TickInterval: opts.TickInterval,
	})

	// rounded up like the countdown does, the first tick must never report
	// more than the initial snapshot
	remaining := int64(0)
	if until := time.Until(time.Unix(opts.Payment.ExpiryTime, 0)); until > 0 {
		remaining = int64((until + time.Second - 1) / time.Second)
	}

	return &LifecycleController{
		payment:       opts.Payment,
		repository:    opts.PaymentRepository,
		notifierSvc:   opts.NotifierSvc,
		pollerSvc:     pollerSvc,
		countdownSvc:  countdownSvc,
		terminalDelay: terminalDelay,
		onTerminal:    opts.OnTerminal,
		remaining:     remaining,
		quitChan:      make(chan struct{}),
		notifyChan:    make(chan Snapshot, notifyQueueMaxSize),
	}, nil
}

// Start begins polling the payment status and counting down to its expiry.
func (c *LifecycleController) Start() {
	c.pollerSvc.Start()
	c.countdownSvc.Start()
	go c.loop()
}

// Stop tears the controller down: both timers are stopped even if no
// terminal status was reached and a not-yet-fired terminal callback is
// cancelled. It is idempotent.
func (c *LifecycleController) Stop() {
	c.mtx.Lock()
	if c.stopped {
		c.mtx.Unlock()
		return
	}
	c.stopped = true
	if c.terminalTimer != nil {
		c.terminalTimer.Stop()
	}
	if !c.completed {
		close(c.quitChan)
	}
	c.mtx.Unlock()

	c.pollerSvc.Stop()
	c.countdownSvc.Stop()
}

// Snapshot returns the current view of the tracked payment.
func (c *LifecycleController) Snapshot() Snapshot {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.snapshot()
}

// Notifications returns the channel the controller publishes snapshots on,
// one per status change and one per countdown tick.
func (c *LifecycleController) Notifications() <-chan Snapshot {
	return c.notifyChan
}

func (c *LifecycleController) loop() {
	for {
		select {
		case event := <-c.pollerSvc.Events():
			if statusEvent, ok := event.(poller.StatusEvent); ok {
				c.handleStatusEvent(statusEvent)
			}
		case event := <-c.countdownSvc.Events():
			switch e := event.(type) {
			case countdown.TickEvent:
				c.handleTick(e.Remaining)
			case countdown.ExpireEvent:
				// a settlement reported in the same tick beats expiry: apply
				// any pending poller event before expiring
				c.drainStatusEvents()
				c.handleExpire()
			}
		case <-c.quitChan:
			return
		}
	}
}

func (c *LifecycleController) drainStatusEvents() {
	for {
		select {
		case event := <-c.pollerSvc.Events():
			if statusEvent, ok := event.(poller.StatusEvent); ok {
				c.handleStatusEvent(statusEvent)
			}
		default:
			return
		}
	}
}

func (c *LifecycleController) handleStatusEvent(event poller.StatusEvent) {
	c.mtx.Lock()

	previous := c.payment.Status.Code
	switch event.Status.Code {
	case domain.PaymentStatusCodeConfirming:
		if _, err := c.payment.StartConfirming(); err != nil {
			log.Tracef(
				"ignored confirming report for payment %s: %s", c.payment.Id, err,
			)
		}
	case domain.PaymentStatusCodeConfirmed:
		if _, err := c.payment.Confirm(event.TransactionUrl); err != nil {
			log.Tracef(
				"ignored confirmation for payment %s: %s", c.payment.Id, err,
			)
		}
	case domain.PaymentStatusCodeFailed:
		if _, err := c.payment.Fail(); err != nil {
			log.Tracef(
				"ignored failure report for payment %s: %s", c.payment.Id, err,
			)
		}
	default:
	}

	changed := c.payment.Status.Code != previous
	enteredTerminal := changed && c.payment.IsTerminal() && !c.terminalEntered
	if enteredTerminal {
		c.terminalEntered = true
	}
	snapshot := c.snapshot()
	c.mtx.Unlock()

	if changed {
		log.Infof(
			"payment %s moved to status %s", snapshot.PaymentId, snapshot.Status,
		)
		c.publish(snapshot)
		c.persist()
	}
	if enteredTerminal {
		c.enterTerminal(snapshot)
	}
}

func (c *LifecycleController) handleTick(remaining int64) {
	c.mtx.Lock()
	c.remaining = remaining
	snapshot := c.snapshot()
	c.mtx.Unlock()

	c.publish(snapshot)
}

func (c *LifecycleController) handleExpire() {
	c.mtx.Lock()
	c.remaining = 0

	if _, err := c.payment.Expire(); err != nil {
		c.mtx.Unlock()
		if err != domain.ErrPaymentAlreadyTerminal {
			log.WithError(err).Warnf("failed to expire payment %s", c.payment.Id)
		}
		return
	}

	enteredTerminal := !c.terminalEntered
	if enteredTerminal {
		c.terminalEntered = true
	}
	snapshot := c.snapshot()
	c.mtx.Unlock()

	log.Infof("payment %s expired", snapshot.PaymentId)
	c.publish(snapshot)
	c.persist()
	if enteredTerminal {
		c.enterTerminal(snapshot)
	}
}

// enterTerminal performs the side effects of reaching a terminal status,
// each guaranteed to run exactly once per payment: both timers are stopped,
// the controller's own loop is released, the one-shot terminal callback is
// scheduled and the completion hook fires.
func (c *LifecycleController) enterTerminal(snapshot Snapshot) {
	stats.TerminalCounter.WithLabelValues(snapshot.Status.String()).Inc()

	c.pollerSvc.Stop()
	c.countdownSvc.Stop()

	if c.notifierSvc != nil {
		go func() {
			if err := c.notifierSvc.PublishTerminal(snapshot.PaymentId, snapshot.Status.String(), snapshot.TransactionUrl); err != nil {
				log.WithError(err).Warnf(
					"failed to notify terminal status of payment %s", snapshot.PaymentId,
				)
			}
		}()
	}

	c.mtx.Lock()
	if !c.stopped && !c.completed {
		c.completed = true
		close(c.quitChan)
	}
	if !c.stopped && c.onTerminal != nil && c.terminalTimer == nil {
		c.terminalTimer = time.AfterFunc(c.terminalDelay, func() {
			c.onTerminal(snapshot)
		})
	}
	c.mtx.Unlock()

	if c.onComplete != nil {
		c.onComplete()
	}
}

// snapshot must be called with the lock held.
func (c *LifecycleController) snapshot() Snapshot {
	return Snapshot{
		PaymentId:        c.payment.Id,
		Status:           c.payment.Status,
		RemainingSeconds: c.remaining,
		Address:          c.payment.Address,
		QrPayload:        c.payment.QrPayload,
		Amount:           c.payment.Amount,
		Currency:         c.payment.Currency,
		TransactionUrl:   c.payment.TransactionUrl,
	}
}

func (c *LifecycleController) publish(snapshot Snapshot) {
	select {
	case c.notifyChan <- snapshot:
	default:
	}
}

func (c *LifecycleController) persist() {
	if c.repository == nil {
		return
	}

	c.mtx.RLock()
	status := c.payment.Status
	settlementTime := c.payment.SettlementTime
	txUrl := c.payment.TransactionUrl
	id := c.payment.Id
	c.mtx.RUnlock()

	err := c.repository.UpdatePayment(
		context.Background(), id,
		func(p *domain.Payment) (*domain.Payment, error) {
			p.Status = status
			p.SettlementTime = settlementTime
			p.TransactionUrl = txUrl
			return p, nil
		},
	)
	if err != nil {
		log.WithError(err).Warnf("failed to persist status of payment %s", id)
	}
}
