package poller

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pawmart/paytracker/pkg/gateway"
	"github.com/pawmart/paytracker/pkg/stats"
)

const (
	eventQueueMaxSize = 100

	// DefaultInterval is the fixed delay between two status fetches. There
	// is no backoff on errors, the payer is actively watching a countdown
	// and the gateway is expected to be highly available.
	DefaultInterval = 10 * time.Second
)

// Opts defines the parameters needed for creating a poller with NewService.
type Opts struct {
	GatewaySvc  gateway.Service
	PaymentId   string
	Interval    time.Duration
	RateLimiter *rate.Limiter
}

// Service polls the status of a single payment at a fixed interval and
// emits one event per successful fetch. Fetch errors are logged and
// retried on the next tick, they never surface as events.
type Service struct {
	gatewaySvc  gateway.Service
	paymentId   string
	interval    time.Duration
	rateLimiter *rate.Limiter

	eventChan chan Event
	quitChan  chan struct{}

	mtx     sync.Mutex
	started bool
	stopped bool
}

// NewService returns a poller that is ready to watch the payment identified
// by opts.PaymentId. Use Start and Stop methods to manage it.
func NewService(opts Opts) *Service {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	rateLimiter := opts.RateLimiter
	if rateLimiter == nil {
		rateLimiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}

	return &Service{
		gatewaySvc:  opts.GatewaySvc,
		paymentId:   opts.PaymentId,
		interval:    interval,
		rateLimiter: rateLimiter,
		eventChan:   make(chan Event, eventQueueMaxSize),
		quitChan:    make(chan struct{}),
	}
}

// Start begins polling, issuing a first fetch immediately and then one per
// interval until Stop is called or the payment subject is torn down.
func (s *Service) Start() {
	s.mtx.Lock()
	if s.started || s.stopped {
		s.mtx.Unlock()
		return
	}
	s.started = true
	s.mtx.Unlock()

	go s.loop()
}

// Stop cancels the polling timer. It is idempotent and guarantees that the
// result of a fetch already in flight is discarded at the emit boundary,
// timer cancellation alone cannot cancel an outstanding request.
func (s *Service) Stop() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	close(s.quitChan)
}

// Events returns the channel the poller emits status events on.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

func (s *Service) loop() {
	log.Debugf("start polling payment %s", s.paymentId)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.poll()
	for {
		select {
		case <-ticker.C:
			s.poll()
		case <-s.quitChan:
			log.Debugf("stop polling payment %s", s.paymentId)
			return
		}
	}
}

func (s *Service) poll() {
	if err := s.rateLimiter.Wait(context.Background()); err != nil {
		return
	}

	info, err := s.gatewaySvc.GetPaymentStatus(s.paymentId)
	if err != nil {
		stats.PollCounter.WithLabelValues("error").Inc()
		log.WithError(err).Warnf(
			"failed to fetch status of payment %s, retrying next tick",
			s.paymentId,
		)
		return
	}
	stats.PollCounter.WithLabelValues("ok").Inc()

	status, ok := gateway.ParseStatus(info.Status)
	if !ok {
		log.Warnf(
			"payment %s reported unknown status %s", s.paymentId, info.Status,
		)
		return
	}

	s.emit(StatusEvent{
		PaymentId:      s.paymentId,
		Status:         status,
		TransactionUrl: info.TransactionUrl,
	})
}

func (s *Service) emit(event Event) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.stopped {
		return
	}

	select {
	case s.eventChan <- event:
	default:
		log.Warnf("event queue for payment %s is full, dropping event", s.paymentId)
	}
}
