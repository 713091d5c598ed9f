package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/thanhpk/randstr"

	"github.com/pawmart/paytracker/pkg/httputil"
)

type payGateway struct {
	apiURL string
	cb     *gobreaker.CircuitBreaker
}

// NewService returns a new client for the payment gateway reachable at the
// given base URL as a gateway.Service interface.
func NewService(apiURL string) (Service, error) {
	service := &payGateway{
		apiURL: apiURL,
		cb:     newCircuitBreaker(),
	}

	if err := service.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (g *payGateway) healthCheck() error {
	endpoint := fmt.Sprintf("%s/currencies", g.apiURL)
	status, resp, err := g.doRequest("GET", endpoint, "")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("gateway replied with status %d: %s", status, resp)
	}
	return nil
}

func (g *payGateway) GetCurrencies() ([]Currency, error) {
	endpoint := fmt.Sprintf("%s/currencies", g.apiURL)
	status, resp, err := g.doRequest("GET", endpoint, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("gateway replied with status %d: %s", status, resp)
	}

	currencies := make([]Currency, 0)
	if err := json.Unmarshal([]byte(resp), &currencies); err != nil {
		return nil, fmt.Errorf("parsing currencies: %w", err)
	}
	return currencies, nil
}

func (g *payGateway) GetNetworks(currencyCode string) ([]Network, error) {
	endpoint := fmt.Sprintf(
		"%s/currencies/%s/networks", g.apiURL, url.PathEscape(currencyCode),
	)
	status, resp, err := g.doRequest("GET", endpoint, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("gateway replied with status %d: %s", status, resp)
	}

	networks := make([]Network, 0)
	if err := json.Unmarshal([]byte(resp), &networks); err != nil {
		return nil, fmt.Errorf("parsing networks: %w", err)
	}
	return networks, nil
}

func (g *payGateway) GetEstimate(
	amount decimal.Decimal, fromCurrency, toCurrency string,
) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf(
		"%s/estimate?amount=%s&from=%s&to=%s",
		g.apiURL, amount.String(),
		url.QueryEscape(fromCurrency), url.QueryEscape(toCurrency),
	)
	status, resp, err := g.doRequest("GET", endpoint, "")
	if err != nil {
		return decimal.Zero, err
	}
	if status != http.StatusOK {
		return decimal.Zero, fmt.Errorf(
			"gateway replied with status %d: %s", status, resp,
		)
	}

	estimate := estimateResponse{}
	if err := json.Unmarshal([]byte(resp), &estimate); err != nil {
		return decimal.Zero, fmt.Errorf("parsing estimate: %w", err)
	}
	return estimate.EstimatedAmount, nil
}

func (g *payGateway) CreatePayment(req CreatePaymentRequest) (*PaymentInfo, error) {
	body, _ := json.Marshal(req)

	endpoint := fmt.Sprintf("%s/payments", g.apiURL)
	status, resp, err := g.doRequest("POST", endpoint, string(body))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("gateway replied with status %d: %s", status, resp)
	}

	payment := &PaymentInfo{}
	if err := json.Unmarshal([]byte(resp), payment); err != nil {
		return nil, fmt.Errorf("parsing payment: %w", err)
	}
	return payment, nil
}

func (g *payGateway) GetPaymentStatus(paymentId string) (*PaymentInfo, error) {
	endpoint := fmt.Sprintf(
		"%s/payments/%s/status", g.apiURL, url.PathEscape(paymentId),
	)
	status, resp, err := g.doRequest("GET", endpoint, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("gateway replied with status %d: %s", status, resp)
	}

	payment := &PaymentInfo{}
	if err := json.Unmarshal([]byte(resp), payment); err != nil {
		return nil, fmt.Errorf("parsing payment status: %w", err)
	}
	return payment, nil
}

func (g *payGateway) doRequest(
	method, endpoint, body string,
) (int, string, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
		"X-Request-Id": randstr.Hex(16),
	}

	res, err := g.cb.Execute(func() (interface{}, error) {
		status, resp, err := g.httpCall(method, endpoint, body, headers)
		if err != nil {
			return nil, err
		}
		if status >= http.StatusInternalServerError {
			return nil, fmt.Errorf(
				"gateway replied with status %d: %s", status, resp,
			)
		}
		return httpResponse{status, resp}, nil
	})
	if err != nil {
		return 0, "", err
	}

	r := res.(httpResponse)
	return r.status, r.body, nil
}

func (g *payGateway) httpCall(
	method, endpoint, body string, headers map[string]string,
) (int, string, error) {
	return httputil.NewHTTPRequest(method, endpoint, body, headers)
}

type httpResponse struct {
	status int
	body   string
}

func newCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "gateway",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests > 20 && failureRatio >= 0.7
		},
	})
}
