package gateway

import (
	"context"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/dinehub/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EndpointDirectory lists the webhook endpoints registered for a tenant. The
// persistence layer maintains it as a read model off the endpoint events.
type EndpointDirectory interface {
	// EndpointsForTenant returns the endpoint IDs registered for the tenant
	EndpointsForTenant(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
}

// DeliveryTarget is the addressing data the deliverer needs for one endpoint
type DeliveryTarget struct {
	EndpointID    uuid.UUID
	URL           string
	SigningSecret string
}

// Deliverer performs the outbound HTTP POST for one event. Implementations
// own retry and backoff; the returned attempt is the final verdict.
type Deliverer interface {
	Deliver(ctx context.Context, target DeliveryTarget, event shared.DomainEvent) gateway.DeliveryAttempt
}

// WebhookDispatcher fans business events out to the tenant's registered
// webhook endpoints. Endpoint state is read through snapshots (filtering must
// not block the endpoint actor); each attempt's outcome is recorded through
// the endpoint actor afterwards. Delivery is best-effort per event: a down
// endpoint shows up in its failure streak, it never wedges the subscription.
type WebhookDispatcher struct {
	directory  EndpointDirectory
	snapshots  actor.SnapshotReader
	deliverer  Deliverer
	dispatcher actor.Dispatcher
	eventTypes []string
	logger     *zap.Logger
}

// NewWebhookDispatcher creates the webhook fan-out reactor. An empty
// eventTypes list forwards every event on the subscribed namespaces.
func NewWebhookDispatcher(directory EndpointDirectory, snapshots actor.SnapshotReader, deliverer Deliverer, dispatcher actor.Dispatcher, eventTypes []string, logger *zap.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		directory:  directory,
		snapshots:  snapshots,
		deliverer:  deliverer,
		dispatcher: dispatcher,
		eventTypes: eventTypes,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (d *WebhookDispatcher) EventTypes() []string { return d.eventTypes }

// Handle fans one event out to every matching endpoint
func (d *WebhookDispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "webhook", "dispatch",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, event.TenantID().String()),
		telemetry.WithAttribute(telemetry.SpanAttrEventType, event.EventType()))
	defer span.End()

	endpointIDs, err := d.directory.EndpointsForTenant(ctx, event.TenantID())
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	for _, endpointID := range endpointIDs {
		key := actor.NewKey(event.TenantID(), gateway.AggregateTypeWebhookEndpoint, endpointID)

		var endpoint gateway.WebhookEndpoint
		if _, err := d.snapshots.Snapshot(ctx, key, &endpoint); err != nil {
			d.logger.Warn("webhook endpoint snapshot failed",
				zap.String("endpoint_id", endpointID.String()), zap.Error(err))
			continue
		}
		if !endpoint.ShouldReceiveEvent(event.EventType()) {
			continue
		}

		attempt := d.deliverer.Deliver(ctx, DeliveryTarget{
			EndpointID:    endpointID,
			URL:           endpoint.URL,
			SigningSecret: endpoint.SigningSecret,
		}, event)
		telemetry.AddEvent(span, "delivery_attempted",
			telemetry.SpanAttrEndpointID, endpointID.String(),
			"success", attempt.Success)

		if _, _, err := d.dispatcher.Dispatch(ctx, key, RecordDeliveryCommand{Attempt: attempt}); err != nil {
			d.logger.Warn("recording webhook delivery attempt failed",
				zap.String("endpoint_id", endpointID.String()),
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	return nil
}
