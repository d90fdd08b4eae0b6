package gateway

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultRecentDeliveries bounds the ring when no size is configured
const DefaultRecentDeliveries = 25

// DeliveryAttempt is the recorded outcome of one webhook delivery
type DeliveryAttempt struct {
	EventID     uuid.UUID     `json:"event_id"`
	EventType   string        `json:"event_type"`
	StatusCode  int           `json:"status_code"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	AttemptedAt time.Time     `json:"attempted_at"`
}

// WebhookEndpoint is the aggregate root for an outbound webhook subscription.
// It filters events and records delivery outcomes in a bounded ring; the
// actual HTTP delivery happens outside the aggregate.
type WebhookEndpoint struct {
	shared.TenantAggregateRoot
	URL                 string            `json:"url"`
	SigningSecret       string            `json:"signing_secret"`
	Enabled             bool              `json:"enabled"`
	EnabledEvents       []string          `json:"enabled_events"`
	RecentDeliveries    []DeliveryAttempt `json:"recent_deliveries"`
	MaxRecentDeliveries int               `json:"max_recent_deliveries"`
	LastDeliveryAt      *time.Time        `json:"last_delivery_at,omitempty"`
	ConsecutiveFailures int               `json:"consecutive_failures"`
}

// NewWebhookEndpoint registers an endpoint. An empty enabledEvents list means
// every event type is delivered.
func NewWebhookEndpoint(tenantID, endpointID uuid.UUID, url, signingSecret string, enabledEvents []string, ringSize int) (*WebhookEndpoint, error) {
	if url == "" {
		return nil, shared.NewDomainError("INVALID_URL", "Webhook URL cannot be empty")
	}
	if signingSecret == "" {
		return nil, shared.NewDomainError("INVALID_SECRET", "Webhook signing secret cannot be empty")
	}
	if ringSize <= 0 {
		ringSize = DefaultRecentDeliveries
	}

	return &WebhookEndpoint{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithID(tenantID, endpointID),
		URL:                 url,
		SigningSecret:       signingSecret,
		Enabled:             true,
		EnabledEvents:       enabledEvents,
		RecentDeliveries:    make([]DeliveryAttempt, 0, ringSize),
		MaxRecentDeliveries: ringSize,
	}, nil
}

// ShouldReceiveEvent reports whether a delivery attempt should be made for
// the event type. Disabled endpoints receive nothing.
func (w *WebhookEndpoint) ShouldReceiveEvent(eventType string) bool {
	if !w.Enabled {
		return false
	}
	if len(w.EnabledEvents) == 0 {
		return true
	}
	for _, t := range w.EnabledEvents {
		if t == eventType {
			return true
		}
	}
	return false
}

// RecordDeliveryAttempt appends an outcome to the bounded ring and updates
// the failure streak. The oldest entries are dropped, never the newest.
func (w *WebhookEndpoint) RecordDeliveryAttempt(attempt DeliveryAttempt) {
	w.RecentDeliveries = append(w.RecentDeliveries, attempt)
	if overflow := len(w.RecentDeliveries) - w.MaxRecentDeliveries; overflow > 0 {
		w.RecentDeliveries = append(w.RecentDeliveries[:0:0], w.RecentDeliveries[overflow:]...)
	}

	at := attempt.AttemptedAt
	w.LastDeliveryAt = &at
	if attempt.Success {
		w.ConsecutiveFailures = 0
	} else {
		w.ConsecutiveFailures++
	}
	w.UpdatedAt = time.Now()
}

// SetEnabledEvents replaces the event-type filter
func (w *WebhookEndpoint) SetEnabledEvents(eventTypes []string) {
	w.EnabledEvents = eventTypes
	w.UpdatedAt = time.Now()
}

// Disable stops all deliveries to the endpoint
func (w *WebhookEndpoint) Disable() {
	if !w.Enabled {
		return
	}
	w.Enabled = false
	w.UpdatedAt = time.Now()
}

// Enable resumes deliveries and clears the failure streak
func (w *WebhookEndpoint) Enable() {
	if w.Enabled {
		return
	}
	w.Enabled = true
	w.ConsecutiveFailures = 0
	w.UpdatedAt = time.Now()
}
