package poller_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/pawmart/paytracker/internal/core/domain"
	"github.com/pawmart/paytracker/pkg/gateway"
	"github.com/pawmart/paytracker/pkg/poller"
)

func TestPollerEmitsStatusEvents(t *testing.T) {
	mockedGateway := newMockGateway("confirming")
	pollerSvc := newTestPoller(mockedGateway, "pay-1")

	pollerSvc.Start()
	defer pollerSvc.Stop()

	event := nextEvent(t, pollerSvc)
	statusEvent, ok := event.(poller.StatusEvent)
	require.True(t, ok)
	require.Equal(t, poller.PaymentStatusUpdate, event.Type())
	require.Equal(t, "pay-1", statusEvent.PaymentId)
	require.Equal(t, domain.PaymentStatusCodeConfirming, statusEvent.Status.Code)

	// one more event per interval
	nextEvent(t, pollerSvc)
	require.GreaterOrEqual(t, mockedGateway.countStatusCalls(), 2)
}

func TestPollerRetriesOnError(t *testing.T) {
	mockedGateway := newMockGateway("confirmed")
	mockedGateway.failures = 2
	pollerSvc := newTestPoller(mockedGateway, "pay-1")

	pollerSvc.Start()
	defer pollerSvc.Stop()

	event := nextEvent(t, pollerSvc)
	statusEvent, ok := event.(poller.StatusEvent)
	require.True(t, ok)
	require.Equal(t, domain.PaymentStatusCodeConfirmed, statusEvent.Status.Code)
	require.GreaterOrEqual(t, mockedGateway.countStatusCalls(), 3)
}

func TestPollerIgnoresUnknownStatus(t *testing.T) {
	mockedGateway := newMockGateway("on_hold")
	pollerSvc := newTestPoller(mockedGateway, "pay-1")

	pollerSvc.Start()
	defer pollerSvc.Stop()

	select {
	case event := <-pollerSvc.Events():
		t.Fatalf("expected no event, got %v", event)
	case <-time.After(100 * time.Millisecond):
	}
	require.GreaterOrEqual(t, mockedGateway.countStatusCalls(), 1)
}

func TestPollerStop(t *testing.T) {
	mockedGateway := newMockGateway("new")
	pollerSvc := newTestPoller(mockedGateway, "pay-1")

	pollerSvc.Start()
	nextEvent(t, pollerSvc)

	pollerSvc.Stop()
	pollerSvc.Stop()

	statusCallsAtStop := mockedGateway.countStatusCalls()
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, statusCallsAtStop, mockedGateway.countStatusCalls())

	for len(pollerSvc.Events()) > 0 {
		<-pollerSvc.Events()
	}
	select {
	case event := <-pollerSvc.Events():
		t.Fatalf("expected no event after stop, got %v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestPoller(mockedGateway *mockGateway, paymentId string) *poller.Service {
	return poller.NewService(poller.Opts{
		GatewaySvc:  mockedGateway,
		PaymentId:   paymentId,
		Interval:    20 * time.Millisecond,
		RateLimiter: rate.NewLimiter(rate.Inf, 1),
	})
}

func nextEvent(t *testing.T, pollerSvc *poller.Service) poller.Event {
	select {
	case event := <-pollerSvc.Events():
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for poller event")
		return nil
	}
}

type mockGateway struct {
	mtx sync.Mutex

	status      string
	failures    int
	statusCalls int
}

func newMockGateway(status string) *mockGateway {
	return &mockGateway{status: status}
}

func (m *mockGateway) GetCurrencies() ([]gateway.Currency, error) {
	return nil, nil
}

func (m *mockGateway) GetNetworks(currencyCode string) ([]gateway.Network, error) {
	return nil, nil
}

func (m *mockGateway) GetEstimate(
	amount decimal.Decimal, fromCurrency, toCurrency string,
) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *mockGateway) CreatePayment(
	req gateway.CreatePaymentRequest,
) (*gateway.PaymentInfo, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGateway) GetPaymentStatus(paymentId string) (*gateway.PaymentInfo, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.statusCalls++
	if m.failures > 0 {
		m.failures--
		return nil, errors.New("gateway timeout")
	}
	return &gateway.PaymentInfo{Id: paymentId, Status: m.status}, nil
}

func (m *mockGateway) countStatusCalls() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.statusCalls
}
