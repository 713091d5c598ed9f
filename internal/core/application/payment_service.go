package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/thanhpk/randstr"

	"github.com/pawmart/paytracker/internal/core/domain"
	"github.com/pawmart/paytracker/pkg/gateway"
)

// PaymentService creates payment intents on the gateway. It is the only
// place a domain Payment is constructed.
type PaymentService struct {
	gatewaySvc gateway.Service
	catalog    *CurrencyCatalog
	repository domain.PaymentRepository
}

// NewPaymentService returns a payment service backed by the given gateway.
// The repository is optional, payments are persisted only when one is given.
func NewPaymentService(
	gatewaySvc gateway.Service,
	catalog *CurrencyCatalog,
	repository domain.PaymentRepository,
) *PaymentService {
	return &PaymentService{
		gatewaySvc: gatewaySvc,
		catalog:    catalog,
		repository: repository,
	}
}

// CreatePayment validates the finalized selection and submits it to the
// gateway. An amount outside the currency range fails fast with
// ErrAmountOutOfRange before any gateway call. On success the returned
// payment carries the deposit address issued by the gateway and status New.
func (s *PaymentService) CreatePayment(
	ctx context.Context,
	orderId, currencyCode, networkCode string, amount decimal.Decimal,
) (*domain.Payment, error) {
	currency, err := s.catalog.Currency(currencyCode)
	if err != nil {
		return nil, err
	}

	if !currency.InRange(amount) {
		return nil, ErrAmountOutOfRange
	}

	networks, err := s.catalog.Networks(currencyCode)
	if err != nil {
		return nil, ErrCatalogUnavailable
	}
	if !containsNetwork(networks, networkCode) {
		return nil, ErrNetworkNotFound
	}

	if len(orderId) <= 0 {
		orderId = randstr.Hex(16)
	}

	info, err := s.gatewaySvc.CreatePayment(gateway.CreatePaymentRequest{
		OrderId:  orderId,
		Currency: currencyCode,
		Network:  networkCode,
		Amount:   amount,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntentCreationFailed, err)
	}

	payment := domain.NewPayment(
		orderId, currencyCode, networkCode, amount,
		info.Address, info.QrPayload, info.ExpiresAt.Unix(),
	)
	// the gateway is the authority on payment ids
	if len(info.Id) > 0 {
		payment.Id = info.Id
	}
	if len(info.TransactionUrl) > 0 {
		payment.TransactionUrl = info.TransactionUrl
	}

	if s.repository != nil {
		if err := s.repository.AddPayment(ctx, payment); err != nil {
			return nil, err
		}
	}

	log.Debugf("created payment %s for order %s", payment.Id, orderId)
	return payment, nil
}

func containsNetwork(networks []domain.Network, code string) bool {
	for _, n := range networks {
		if n.Code == code {
			return true
		}
	}
	return false
}
