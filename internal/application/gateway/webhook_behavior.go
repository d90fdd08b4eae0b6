package gateway

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Command types accepted by the webhook endpoint actor
const (
	CmdRegisterEndpoint = "gateway.register_endpoint"
	CmdSetEnabledEvents = "gateway.set_enabled_events"
	CmdEnableEndpoint   = "gateway.enable_endpoint"
	CmdDisableEndpoint  = "gateway.disable_endpoint"
	CmdRecordDelivery   = "gateway.record_delivery"
	CmdGetEndpoint      = "gateway.get_endpoint"
)

// RegisterEndpointCommand registers the endpoint addressed by the actor key
type RegisterEndpointCommand struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	EndpointID    uuid.UUID `json:"endpoint_id"`
	URL           string    `json:"url" binding:"required,url"`
	SigningSecret string    `json:"signing_secret" binding:"required,min=16"`
	EnabledEvents []string  `json:"enabled_events"`
	RingSize      int       `json:"ring_size"`
}

func (c RegisterEndpointCommand) CommandType() string { return CmdRegisterEndpoint }

// SetEnabledEventsCommand replaces the endpoint's event filter
type SetEnabledEventsCommand struct {
	EnabledEvents []string `json:"enabled_events"`
}

func (c SetEnabledEventsCommand) CommandType() string { return CmdSetEnabledEvents }

// EnableEndpointCommand turns delivery back on and clears the failure streak
type EnableEndpointCommand struct{}

func (c EnableEndpointCommand) CommandType() string { return CmdEnableEndpoint }

// DisableEndpointCommand turns delivery off
type DisableEndpointCommand struct{}

func (c DisableEndpointCommand) CommandType() string { return CmdDisableEndpoint }

// RecordDeliveryCommand appends one delivery attempt to the endpoint's ring.
// Dispatched by the webhook dispatcher after each HTTP attempt.
type RecordDeliveryCommand struct {
	Attempt gateway.DeliveryAttempt `json:"attempt"`
}

func (c RecordDeliveryCommand) CommandType() string { return CmdRecordDelivery }

// GetEndpointCommand returns the endpoint state
type GetEndpointCommand struct{}

func (c GetEndpointCommand) CommandType() string { return CmdGetEndpoint }

// WebhookEndpointBehavior is the actor behavior for the WebhookEndpoint
// aggregate
type WebhookEndpointBehavior struct{}

// NewWebhookEndpointBehavior creates a new webhook endpoint behavior
func NewWebhookEndpointBehavior() *WebhookEndpointBehavior { return &WebhookEndpointBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *WebhookEndpointBehavior) ActorType() string { return gateway.AggregateTypeWebhookEndpoint }

// NewState returns an empty endpoint state
func (b *WebhookEndpointBehavior) NewState() any { return &gateway.WebhookEndpoint{} }

// Handle applies one command to the endpoint
func (b *WebhookEndpointBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	endpoint, ok := state.(*gateway.WebhookEndpoint)
	if !ok {
		return nil, fmt.Errorf("webhook endpoint behavior: unexpected state type %T", state)
	}

	if c, ok := cmd.(RegisterEndpointCommand); ok {
		if endpoint.ID != uuid.Nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Webhook endpoint already registered")
		}
		created, err := gateway.NewWebhookEndpoint(c.TenantID, c.EndpointID, c.URL, c.SigningSecret, c.EnabledEvents, c.RingSize)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: created, State: created, Events: created.GetDomainEvents()}, nil
	}

	if endpoint.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	switch c := cmd.(type) {
	case SetEnabledEventsCommand:
		endpoint.SetEnabledEvents(c.EnabledEvents)
	case EnableEndpointCommand:
		endpoint.Enable()
	case DisableEndpointCommand:
		endpoint.Disable()
	case RecordDeliveryCommand:
		endpoint.RecordDeliveryAttempt(c.Attempt)
	case GetEndpointCommand:
		return &actor.Outcome{Response: endpoint}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("webhook endpoint actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: endpoint, State: endpoint, Events: endpoint.GetDomainEvents()}, nil
}
