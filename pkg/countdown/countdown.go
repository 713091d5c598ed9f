package countdown

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const eventQueueMaxSize = 100

// DefaultTickInterval is the wall-clock resolution of the countdown.
const DefaultTickInterval = time.Second

// Opts defines the parameters needed for creating a countdown with
// NewService.
type Opts struct {
	ExpiresAt    time.Time
	TickInterval time.Duration
}

// Service derives the remaining time from an absolute expiry timestamp. It
// emits a TickEvent once per interval while there is time left and a single
// ExpireEvent when the deadline is reached, then stops its own timer. The
// countdown is driven purely by wall-clock time, it keeps ticking no matter
// how degraded the gateway is.
type Service struct {
	expiresAt    time.Time
	tickInterval time.Duration

	eventChan chan Event
	quitChan  chan struct{}

	mtx     sync.Mutex
	started bool
	stopped bool
}

// NewService returns a countdown for the given deadline. Use Start and Stop
// methods to manage it.
func NewService(opts Opts) *Service {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}

	return &Service{
		expiresAt:    opts.ExpiresAt,
		tickInterval: tickInterval,
		eventChan:    make(chan Event, eventQueueMaxSize),
		quitChan:     make(chan struct{}),
	}
}

// Start begins ticking, emitting the current remaining time immediately.
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

// Stop cancels the countdown timer. It is idempotent.
func (s *Service) Stop() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	close(s.quitChan)
}

// Events returns the channel the countdown emits tick and expire events on.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

func (s *Service) loop() {
	log.Debugf("start countdown expiring at %s", s.expiresAt)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	if expired := s.tick(); expired {
		return
	}
	for {
		select {
		case <-ticker.C:
			if expired := s.tick(); expired {
				return
			}
		case <-s.quitChan:
			log.Debug("stop countdown")
			return
		}
	}
}

// tick emits the current remaining time, or the one-shot expire event when
// the deadline has been reached. It reports whether the countdown is over.
func (s *Service) tick() bool {
	remaining := s.remaining()
	if remaining > 0 {
		s.emit(TickEvent{Remaining: remaining})
		return false
	}

	s.emit(ExpireEvent{})
	return true
}

// remaining rounds up to the next whole second so that the expire event is
// only emitted once the deadline has actually passed.
func (s *Service) remaining() int64 {
	until := time.Until(s.expiresAt)
	if until <= 0 {
		return 0
	}
	return int64((until + time.Second - 1) / time.Second)
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
		log.Warn("countdown event queue is full, dropping event")
	}
}
