package shared

import "context"

// EventHandler consumes domain events from one or more namespaces.
// Delivery is at-least-once: handlers must be idempotent. Events from the same
// source aggregate arrive in publish order; no ordering is guaranteed across
// source aggregates.
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in.
	// An empty slice means the handler receives every event on its namespaces.
	EventTypes() []string
}

// EventPublisher publishes domain events onto the fabric
type EventPublisher interface {
	// Publish publishes one or more domain events to their namespaces.
	// It is fire-and-forget from the publisher's perspective: delivery to
	// subscribers happens asynchronously.
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers handlers on fabric namespaces
type EventSubscriber interface {
	// Subscribe registers a handler for a namespace. The handler's EventTypes
	// further narrow which events it receives.
	Subscribe(ns Namespace, handler EventHandler)
}

// EventFabric combines publish and subscribe over the fixed namespaces
type EventFabric interface {
	EventPublisher
	EventSubscriber
	// Start starts background delivery
	Start(ctx context.Context) error
	// Stop drains subscriber queues and stops delivery
	Stop(ctx context.Context) error
}

// OutboxEventSaver saves domain events to the outbox table within the same
// transaction as the state write, so events are never published for state
// that did not commit.
type OutboxEventSaver interface {
	// SaveEvents saves domain events within the current transaction.
	// The txProvider is a *gorm.DB transaction.
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
