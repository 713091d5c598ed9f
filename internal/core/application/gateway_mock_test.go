package application_test

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/pawmart/paytracker/pkg/gateway"
)

var errRateServiceDown = errors.New("rate service down")

// mockGateway is a programmable in-process gateway.Service. Behaviors not
// overridden with the func fields fall back to serving the fixture catalog.
type mockGateway struct {
	mtx sync.Mutex

	currencies []gateway.Currency
	networks   map[string][]gateway.Network

	networksFn func(currencyCode string) ([]gateway.Network, error)
	estimateFn func(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
	createFn   func(req gateway.CreatePaymentRequest) (*gateway.PaymentInfo, error)
	statusFn   func(paymentId string) (*gateway.PaymentInfo, error)

	currenciesCalls int
	networksCalls   int
	estimateCalls   int
	createCalls     int
	statusCalls     int
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		currencies: []gateway.Currency{
			{
				Code: "btc", Name: "Bitcoin", Symbol: "₿",
				MinAmount: decimal.NewFromFloat(0.001),
				MaxAmount: decimal.NewFromInt(10),
			},
			{
				Code: "eth", Name: "Ethereum", Symbol: "Ξ",
				MinAmount: decimal.NewFromFloat(0.01),
				MaxAmount: decimal.NewFromInt(100),
			},
		},
		networks: map[string][]gateway.Network{
			"btc": {
				{Code: "bitcoin", Name: "Bitcoin"},
				{Code: "lightning", Name: "Lightning"},
			},
			"eth": {
				{Code: "ethereum", Name: "Ethereum"},
			},
		},
	}
}

func (m *mockGateway) GetCurrencies() ([]gateway.Currency, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.currenciesCalls++
	return m.currencies, nil
}

func (m *mockGateway) GetNetworks(currencyCode string) ([]gateway.Network, error) {
	m.mtx.Lock()
	m.networksCalls++
	networksFn := m.networksFn
	networks, ok := m.networks[currencyCode]
	m.mtx.Unlock()

	if networksFn != nil {
		return networksFn(currencyCode)
	}
	if !ok {
		return nil, fmt.Errorf("unknown currency %s", currencyCode)
	}
	return networks, nil
}

func (m *mockGateway) GetEstimate(
	amount decimal.Decimal, fromCurrency, toCurrency string,
) (decimal.Decimal, error) {
	m.mtx.Lock()
	m.estimateCalls++
	estimateFn := m.estimateFn
	m.mtx.Unlock()

	if estimateFn != nil {
		return estimateFn(amount, fromCurrency, toCurrency)
	}
	return amount.Div(decimal.NewFromInt(2)), nil
}

func (m *mockGateway) CreatePayment(
	req gateway.CreatePaymentRequest,
) (*gateway.PaymentInfo, error) {
	m.mtx.Lock()
	m.createCalls++
	createFn := m.createFn
	m.mtx.Unlock()

	if createFn != nil {
		return createFn(req)
	}
	return nil, errors.New("create not programmed")
}

func (m *mockGateway) GetPaymentStatus(paymentId string) (*gateway.PaymentInfo, error) {
	m.mtx.Lock()
	m.statusCalls++
	statusFn := m.statusFn
	m.mtx.Unlock()

	if statusFn != nil {
		return statusFn(paymentId)
	}
	return &gateway.PaymentInfo{Id: paymentId, Status: "new"}, nil
}

func (m *mockGateway) countCreateCalls() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.createCalls
}

func (m *mockGateway) countStatusCalls() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.statusCalls
}

func (m *mockGateway) setEstimateFn(
	fn func(amount decimal.Decimal, from, to string) (decimal.Decimal, error),
) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.estimateFn = fn
}

func (m *mockGateway) setNetworksFn(
	fn func(currencyCode string) ([]gateway.Network, error),
) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.networksFn = fn
}

func (m *mockGateway) setStatusFn(
	fn func(paymentId string) (*gateway.PaymentInfo, error),
) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.statusFn = fn
}

var _ gateway.Service = (*mockGateway)(nil)
