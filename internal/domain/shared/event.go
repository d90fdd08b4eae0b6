package shared

import (
	"time"

	"github.com/google/uuid"
)

// Namespace is a fixed logical event channel. Each namespace carries a closed
// set of event shapes; subscribers match on the concrete event types.
type Namespace string

const (
	NamespaceUser           Namespace = "user"
	NamespaceEmployee       Namespace = "employee"
	NamespaceOrder          Namespace = "order"
	NamespaceInventory      Namespace = "inventory"
	NamespaceSales          Namespace = "sales"
	NamespaceAlert          Namespace = "alert"
	NamespaceBookingDeposit Namespace = "booking-deposit"
	NamespaceGiftCard       Namespace = "gift-card"
	NamespaceCustomerSpend  Namespace = "customer-spend"
	NamespaceAccounting     Namespace = "accounting"
)

// AllNamespaces returns every namespace the fabric recognizes
func AllNamespaces() []Namespace {
	return []Namespace{
		NamespaceUser, NamespaceEmployee, NamespaceOrder, NamespaceInventory,
		NamespaceSales, NamespaceAlert, NamespaceBookingDeposit,
		NamespaceGiftCard, NamespaceCustomerSpend, NamespaceAccounting,
	}
}

// IsValid checks whether the namespace is one of the fixed channels
func (n Namespace) IsValid() bool {
	for _, ns := range AllNamespaces() {
		if n == ns {
			return true
		}
	}
	return false
}

// String returns the string form of the namespace
func (n Namespace) String() string {
	return string(n)
}

// DomainEvent represents an immutable fact published after a committed state
// change. Ordering is guaranteed per (source aggregate, namespace) only.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	EventNamespace() Namespace
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Channel       Namespace `json:"namespace"`
	Timestamp     time.Time `json:"timestamp"`
	AggID         uuid.UUID `json:"aggregate_id"`
	AggType       string    `json:"aggregate_type"`
	TenantIDValue uuid.UUID `json:"tenant_id"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// EventNamespace returns the fabric channel this event is published on
func (e *BaseDomainEvent) EventNamespace() Namespace {
	return e.Channel
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() uuid.UUID {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// TenantID returns the tenant ID
func (e *BaseDomainEvent) TenantID() uuid.UUID {
	return e.TenantIDValue
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType string, ns Namespace, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Channel:       ns,
		Timestamp:     time.Now(),
		AggID:         aggID,
		AggType:       aggType,
		TenantIDValue: tenantID,
	}
}
