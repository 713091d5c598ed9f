package application_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pawmart/paytracker/internal/core/application"
	"github.com/pawmart/paytracker/internal/core/domain"
	"github.com/pawmart/paytracker/internal/infrastructure/storage/db/inmemory"
	"github.com/pawmart/paytracker/pkg/gateway"
)

func TestLifecycleConfirmation(t *testing.T) {
	mockedGateway := newMockGateway()
	polls := int32(0)
	mockedGateway.setStatusFn(func(paymentId string) (*gateway.PaymentInfo, error) {
		status := "confirming"
		if atomic.AddInt32(&polls, 1) > 1 {
			status = "confirmed"
		}
		return &gateway.PaymentInfo{
			Id:             paymentId,
			Status:         status,
			TransactionUrl: "https://explorer.test/tx/abc",
		}, nil
	})

	repository := inmemory.NewPaymentRepositoryImpl()
	mockedNotifier := &mockNotifier{}
	payment := newTrackedPayment(t, repository, 5*time.Second)

	terminalCalls := int32(0)
	terminalChan := make(chan application.Snapshot, 1)

	controller, err := application.NewLifecycleController(application.LifecycleOpts{
		Payment:           payment,
		GatewaySvc:        mockedGateway,
		PaymentRepository: repository,
		NotifierSvc:       mockedNotifier,
		PollInterval:      20 * time.Millisecond,
		TickInterval:      20 * time.Millisecond,
		TerminalDelay:     20 * time.Millisecond,
		OnTerminal: func(s application.Snapshot) {
			atomic.AddInt32(&terminalCalls, 1)
			terminalChan <- s
		},
	})
	require.NoError(t, err)

	controller.Start()
	defer controller.Stop()

	var terminalSnapshot application.Snapshot
	select {
	case terminalSnapshot = <-terminalChan:
	case <-time.After(2 * time.Second):
		t.Fatal("terminal callback was not invoked")
	}

	require.True(t, terminalSnapshot.Status.IsTerminal())
	require.Equal(t, domain.PaymentStatusCodeConfirmed, terminalSnapshot.Status.Code)
	require.Equal(t, "https://explorer.test/tx/abc", terminalSnapshot.TransactionUrl)

	// no second invocation and no status regression afterwards
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&terminalCalls))
	require.True(t, payment.IsConfirmed())
	require.Equal(t, 1, mockedNotifier.countCalls())

	storedPayment, err := repository.GetPayment(context.Background(), payment.Id)
	require.NoError(t, err)
	require.True(t, storedPayment.IsConfirmed())
	require.Greater(t, storedPayment.SettlementTime, int64(0))

	pollsAtTerminal := atomic.LoadInt32(&polls)
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, pollsAtTerminal, atomic.LoadInt32(&polls))
}

func TestLifecycleExpiry(t *testing.T) {
	mockedGateway := newMockGateway()
	repository := inmemory.NewPaymentRepositoryImpl()
	payment := newTrackedPayment(t, repository, time.Second)

	terminalChan := make(chan application.Snapshot, 1)
	controller, err := application.NewLifecycleController(application.LifecycleOpts{
		Payment:           payment,
		GatewaySvc:        mockedGateway,
		PaymentRepository: repository,
		PollInterval:      50 * time.Millisecond,
		TickInterval:      50 * time.Millisecond,
		TerminalDelay:     20 * time.Millisecond,
		OnTerminal: func(s application.Snapshot) {
			terminalChan <- s
		},
	})
	require.NoError(t, err)

	controller.Start()
	defer controller.Stop()

	var terminalSnapshot application.Snapshot
	select {
	case terminalSnapshot = <-terminalChan:
	case <-time.After(5 * time.Second):
		t.Fatal("terminal callback was not invoked")
	}

	require.Equal(t, domain.PaymentStatusCodeExpired, terminalSnapshot.Status.Code)
	require.Zero(t, terminalSnapshot.RemainingSeconds)
	require.True(t, payment.IsExpired())

	storedPayment, err := repository.GetPayment(context.Background(), payment.Id)
	require.NoError(t, err)
	require.True(t, storedPayment.IsExpired())
}

func TestLifecycleConfirmationBeatsExpiry(t *testing.T) {
	mockedGateway := newMockGateway()
	mockedGateway.setStatusFn(func(paymentId string) (*gateway.PaymentInfo, error) {
		return &gateway.PaymentInfo{Id: paymentId, Status: "confirmed"}, nil
	})
	payment := newTrackedPayment(t, nil, time.Second)

	terminalCalls := int32(0)
	controller, err := application.NewLifecycleController(application.LifecycleOpts{
		Payment:       payment,
		GatewaySvc:    mockedGateway,
		PollInterval:  20 * time.Millisecond,
		TickInterval:  20 * time.Millisecond,
		TerminalDelay: 20 * time.Millisecond,
		OnTerminal: func(s application.Snapshot) {
			atomic.AddInt32(&terminalCalls, 1)
		},
	})
	require.NoError(t, err)

	controller.Start()
	defer controller.Stop()

	require.Eventually(t, func() bool {
		return controller.Snapshot().Status.IsTerminal()
	}, time.Second, 10*time.Millisecond)
	require.True(t, payment.IsConfirmed())

	// the expiry deadline passes afterwards and must not override the
	// settled status nor fire the callback a second time
	time.Sleep(1500 * time.Millisecond)
	require.True(t, payment.IsConfirmed())
	require.Equal(t, int32(1), atomic.LoadInt32(&terminalCalls))
}

func TestLifecycleTeardown(t *testing.T) {
	mockedGateway := newMockGateway()
	payment := newTrackedPayment(t, nil, 5*time.Second)

	terminalCalls := int32(0)
	controller, err := application.NewLifecycleController(application.LifecycleOpts{
		Payment:      payment,
		GatewaySvc:   mockedGateway,
		PollInterval: 20 * time.Millisecond,
		TickInterval: 20 * time.Millisecond,
		OnTerminal: func(s application.Snapshot) {
			atomic.AddInt32(&terminalCalls, 1)
		},
	})
	require.NoError(t, err)

	controller.Start()
	time.Sleep(100 * time.Millisecond)
	controller.Stop()
	controller.Stop()

	statusCallsAtStop := mockedGateway.countStatusCalls()
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, statusCallsAtStop, mockedGateway.countStatusCalls())
	require.Zero(t, atomic.LoadInt32(&terminalCalls))
	require.False(t, payment.IsTerminal())
}

func TestFailingNewLifecycleController(t *testing.T) {
	mockedGateway := newMockGateway()
	paymentWithoutExpiry := newTrackedPayment(t, nil, time.Minute)
	paymentWithoutExpiry.ExpiryTime = 0

	tests := []struct {
		name        string
		opts        application.LifecycleOpts
		expectedErr error
	}{
		{
			name:        "with_null_payment",
			opts:        application.LifecycleOpts{GatewaySvc: mockedGateway},
			expectedErr: application.ErrNullPayment,
		},
		{
			name:        "with_null_gateway",
			opts:        application.LifecycleOpts{Payment: newTrackedPayment(t, nil, time.Minute)},
			expectedErr: application.ErrNullGateway,
		},
		{
			name: "with_null_expiry_time",
			opts: application.LifecycleOpts{
				Payment:    paymentWithoutExpiry,
				GatewaySvc: mockedGateway,
			},
			expectedErr: domain.ErrPaymentNullExpiryTime,
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			controller, err := application.NewLifecycleController(tt.opts)
			require.EqualError(t, err, tt.expectedErr.Error())
			require.Nil(t, controller)
		})
	}
}

func TestLifecycleInitialRemainingRoundsUp(t *testing.T) {
	mockedGateway := newMockGateway()
	payment := newTrackedPayment(t, nil, 90*time.Second)

	controller, err := application.NewLifecycleController(application.LifecycleOpts{
		Payment:    payment,
		GatewaySvc: mockedGateway,
	})
	require.NoError(t, err)

	// the first tick reports the rounded-up remaining time, the initial
	// snapshot must not show one second less than it
	remaining := controller.Snapshot().RemainingSeconds
	require.GreaterOrEqual(t, remaining, payment.ExpiryTime-time.Now().Unix())
	require.LessOrEqual(t, remaining, int64(90))
}

func TestTrackerReleasesTerminalPayments(t *testing.T) {
	mockedGateway := newMockGateway()
	mockedGateway.setStatusFn(func(paymentId string) (*gateway.PaymentInfo, error) {
		return &gateway.PaymentInfo{Id: paymentId, Status: "confirmed"}, nil
	})
	trackerSvc := application.NewTrackerService(application.TrackerOpts{
		GatewaySvc:    mockedGateway,
		PollInterval:  20 * time.Millisecond,
		TickInterval:  20 * time.Millisecond,
		TerminalDelay: 20 * time.Millisecond,
	})
	defer trackerSvc.StopAll()

	payment := newTrackedPayment(t, nil, time.Minute)
	controller, err := trackerSvc.TrackPayment(payment, nil)
	require.NoError(t, err)

	// a payment reaching a terminal status releases its registry entry on
	// its own, without any StopTracking call
	require.Eventually(t, func() bool {
		_, ok := trackerSvc.Controller(payment.Id)
		return !ok
	}, time.Second, 10*time.Millisecond)
	require.True(t, payment.IsConfirmed())

	// the same payment can be tracked again and a late teardown of the
	// released controller stays harmless
	controller.Stop()
	controller.Stop()

	duplicate, err := trackerSvc.TrackPayment(payment, nil)
	require.NoError(t, err)
	require.NotNil(t, duplicate)
}

func TestTrackerRejectsDuplicatePayment(t *testing.T) {
	mockedGateway := newMockGateway()
	trackerSvc := application.NewTrackerService(application.TrackerOpts{
		GatewaySvc:   mockedGateway,
		PollInterval: 50 * time.Millisecond,
	})
	defer trackerSvc.StopAll()

	payment := newTrackedPayment(t, nil, time.Minute)

	controller, err := trackerSvc.TrackPayment(payment, nil)
	require.NoError(t, err)
	require.NotNil(t, controller)

	duplicate, err := trackerSvc.TrackPayment(payment, nil)
	require.EqualError(t, err, application.ErrPaymentAlreadyTracked.Error())
	require.Nil(t, duplicate)

	tracked, ok := trackerSvc.Controller(payment.Id)
	require.True(t, ok)
	require.Equal(t, controller, tracked)

	trackerSvc.StopTracking(payment.Id)
	_, ok = trackerSvc.Controller(payment.Id)
	require.False(t, ok)
}

func TestTrackerResumesPendingPayments(t *testing.T) {
	mockedGateway := newMockGateway()
	repository := inmemory.NewPaymentRepositoryImpl()

	pendingPayment := newTrackedPayment(t, repository, time.Minute)
	settledPayment := newTrackedPayment(t, repository, time.Minute)
	settledPayment.Confirm("")
	err := repository.UpdatePayment(
		context.Background(), settledPayment.Id,
		func(p *domain.Payment) (*domain.Payment, error) { return settledPayment, nil },
	)
	require.NoError(t, err)

	trackerSvc := application.NewTrackerService(application.TrackerOpts{
		GatewaySvc:        mockedGateway,
		PaymentRepository: repository,
		PollInterval:      50 * time.Millisecond,
	})
	defer trackerSvc.StopAll()

	err = trackerSvc.ResumePendingPayments(context.Background())
	require.NoError(t, err)

	_, ok := trackerSvc.Controller(pendingPayment.Id)
	require.True(t, ok)
	_, ok = trackerSvc.Controller(settledPayment.Id)
	require.False(t, ok)
}

type mockNotifier struct {
	mtx   sync.Mutex
	calls []string
}

func (m *mockNotifier) PublishTerminal(paymentId, status, transactionUrl string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.calls = append(m.calls, status)
	return nil
}

func (m *mockNotifier) countCalls() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.calls)
}

func newTrackedPayment(
	t *testing.T, repository domain.PaymentRepository, expiresIn time.Duration,
) *domain.Payment {
	payment := domain.NewPayment(
		"order-1", "btc", "bitcoin", decimal.NewFromFloat(0.005),
		"bc1qtestaddress", "bitcoin:bc1qtestaddress?amount=0.005",
		time.Now().Add(expiresIn).Unix(),
	)
	if repository != nil {
		require.NoError(t, repository.AddPayment(context.Background(), payment))
	}
	return payment
}
