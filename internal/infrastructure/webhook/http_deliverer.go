package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	appgateway "github.com/dinehub/backend/internal/application/gateway"
	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// HTTPDeliverer posts events to webhook endpoints. Each delivery carries a
// short-lived JWT signed with the endpoint's secret so receivers can verify
// origin and payload integrity without a shared clock tighter than the TTL.
type HTTPDeliverer struct {
	httpClient   *http.Client
	signatureTTL time.Duration
	logger       *zap.Logger
}

// NewHTTPDeliverer creates the webhook HTTP deliverer
func NewHTTPDeliverer(timeout, signatureTTL time.Duration, logger *zap.Logger) *HTTPDeliverer {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if signatureTTL == 0 {
		signatureTTL = 5 * time.Minute
	}
	return &HTTPDeliverer{
		httpClient:   &http.Client{Timeout: timeout},
		signatureTTL: signatureTTL,
		logger:       logger,
	}
}

// envelope is the webhook payload shape
type envelope struct {
	EventID    string             `json:"event_id"`
	EventType  string             `json:"event_type"`
	OccurredAt time.Time          `json:"occurred_at"`
	Data       shared.DomainEvent `json:"data"`
}

// Deliver implements the Deliverer interface. The returned attempt is always
// populated; transport failures surface as status code 0 with the error text.
func (d *HTTPDeliverer) Deliver(ctx context.Context, target appgateway.DeliveryTarget, event shared.DomainEvent) gateway.DeliveryAttempt {
	attempt := gateway.DeliveryAttempt{
		EventID:     event.EventID(),
		EventType:   event.EventType(),
		AttemptedAt: time.Now(),
	}

	body, err := json.Marshal(envelope{
		EventID:    event.EventID().String(),
		EventType:  event.EventType(),
		OccurredAt: event.OccurredAt(),
		Data:       event,
	})
	if err != nil {
		attempt.Error = "marshal payload: " + err.Error()
		return attempt
	}

	token, err := d.signaturize(target.SigningSecret, event)
	if err != nil {
		attempt.Error = "sign payload: " + err.Error()
		return attempt
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		attempt.Error = "build request: " + err.Error()
		return attempt
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", token)
	req.Header.Set("X-Webhook-Event", event.EventType())
	req.Header.Set("X-Webhook-Delivery", event.EventID().String())

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	attempt.Duration = time.Since(start)
	if err != nil {
		attempt.Error = err.Error()
		return attempt
	}
	defer resp.Body.Close()

	attempt.StatusCode = resp.StatusCode
	attempt.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !attempt.Success {
		attempt.Error = http.StatusText(resp.StatusCode)
	}
	return attempt
}

// signaturize issues the delivery JWT: HS256 with the endpoint's secret,
// binding the event ID and type for the signature TTL.
func (d *HTTPDeliverer) signaturize(secret string, event shared.DomainEvent) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": "dinehub",
		"iat": now.Unix(),
		"exp": now.Add(d.signatureTTL).Unix(),
		"jti": event.EventID().String(),
		"evt": event.EventType(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
