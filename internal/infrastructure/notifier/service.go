package notifier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/pawmart/paytracker/pkg/httputil"
)

// Webhook is an endpoint to be invoked when a tracked payment reaches a
// terminal status. When a secret is set, requests carry an HS256 signed
// bearer token.
type Webhook struct {
	Endpoint string
	Secret   string
}

// IsSecured returns whether invocations of the webhook are authenticated.
func (w Webhook) IsSecured() bool {
	return len(w.Secret) > 0
}

// Service is the interface of the terminal-status notification channel.
type Service interface {
	// PublishTerminal notifies every registered endpoint that a payment
	// reached the given terminal status.
	PublishTerminal(paymentId, status, transactionUrl string) error
}

type webhookService struct {
	hooks []Webhook
	cb    *gobreaker.CircuitBreaker
}

// NewWebhookService returns a notifier that POSTs the terminal payload to
// all the given endpoints.
func NewWebhookService(hooks []Webhook) (Service, error) {
	for _, hook := range hooks {
		if len(hook.Endpoint) <= 0 {
			return nil, ErrNullEndpoint
		}
	}

	return &webhookService{
		hooks: hooks,
		cb:    newCircuitBreaker(),
	}, nil
}

// PublishTerminal makes a POST request to every registered endpoint. This
// method adopts a circuit breaker approach in order to maximize the chances
// that every endpoint gets invoked without errors.
func (ws *webhookService) PublishTerminal(
	paymentId, status, transactionUrl string,
) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"paymentId":      paymentId,
		"status":         status,
		"transactionUrl": transactionUrl,
		"timestamp":      time.Now().Unix(),
	})

	eg := &errgroup.Group{}
	for i := range ws.hooks {
		hook := ws.hooks[i]
		eg.Go(func() error { return ws.doRequest(hook, string(payload)) })
	}
	return eg.Wait()
}

func (ws *webhookService) doRequest(hook Webhook, payload string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if hook.IsSecured() {
			token := jwt.New(jwt.SigningMethodHS256)
			tokenString, _ := token.SignedString([]byte(hook.Secret))
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := httputil.NewHTTPRequest(
			"POST", hook.Endpoint, payload, headers,
		)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("webhook replied with status %d: %s", status, resp)
		}
		return nil, nil
	})
	return err
}

func newCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "notifier",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests > 20 && failureRatio >= 0.7
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				log.Warn("webhook endpoints seem down, stop allowing requests")
			}
			if from == gobreaker.StateOpen && to == gobreaker.StateHalfOpen {
				log.Info("checking webhook endpoints status")
			}
		},
	})
}
