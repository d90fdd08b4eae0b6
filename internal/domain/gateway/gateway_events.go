package gateway

import (
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeMerchant        = "Merchant"
	AggregateTypeTerminal        = "Terminal"
	AggregateTypeRefund          = "Refund"
	AggregateTypeWebhookEndpoint = "WebhookEndpoint"
)

// Event type constants
const (
	EventTypeMerchantCreated    = "MerchantCreated"
	EventTypeAPIKeyCreated      = "MerchantAPIKeyCreated"
	EventTypeAPIKeyRevoked      = "MerchantAPIKeyRevoked"
	EventTypeAPIKeyRolled       = "MerchantAPIKeyRolled"
	EventTypeTerminalRegistered = "TerminalRegistered"
	EventTypeRefundRequested    = "RefundRequested"
	EventTypeRefundResolved     = "RefundResolved"
)

// MerchantCreatedEvent is raised when a merchant account is created
type MerchantCreatedEvent struct {
	shared.BaseDomainEvent
	MerchantID uuid.UUID `json:"merchant_id"`
	Name       string    `json:"name"`
}

// NewMerchantCreatedEvent creates a new MerchantCreatedEvent
func NewMerchantCreatedEvent(m *Merchant) *MerchantCreatedEvent {
	return &MerchantCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMerchantCreated, shared.NamespaceUser, AggregateTypeMerchant, m.ID, m.TenantID),
		MerchantID:      m.ID,
		Name:            m.Name,
	}
}

// APIKeyCreatedEvent is raised when a merchant API key is issued.
// It carries the prefix only, never secret material.
type APIKeyCreatedEvent struct {
	shared.BaseDomainEvent
	MerchantID uuid.UUID `json:"merchant_id"`
	KeyID      uuid.UUID `json:"key_id"`
	Label      string    `json:"label"`
	Prefix     string    `json:"prefix"`
}

// NewAPIKeyCreatedEvent creates a new APIKeyCreatedEvent
func NewAPIKeyCreatedEvent(m *Merchant, key *APIKey) *APIKeyCreatedEvent {
	return &APIKeyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAPIKeyCreated, shared.NamespaceUser, AggregateTypeMerchant, m.ID, m.TenantID),
		MerchantID:      m.ID,
		KeyID:           key.ID,
		Label:           key.Label,
		Prefix:          key.Prefix,
	}
}

// APIKeyRevokedEvent is raised when a key is invalidated
type APIKeyRevokedEvent struct {
	shared.BaseDomainEvent
	MerchantID uuid.UUID `json:"merchant_id"`
	KeyID      uuid.UUID `json:"key_id"`
}

// NewAPIKeyRevokedEvent creates a new APIKeyRevokedEvent
func NewAPIKeyRevokedEvent(m *Merchant, key *APIKey) *APIKeyRevokedEvent {
	return &APIKeyRevokedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAPIKeyRevoked, shared.NamespaceUser, AggregateTypeMerchant, m.ID, m.TenantID),
		MerchantID:      m.ID,
		KeyID:           key.ID,
	}
}

// APIKeyRolledEvent is raised when a key is replaced by a successor
type APIKeyRolledEvent struct {
	shared.BaseDomainEvent
	MerchantID uuid.UUID `json:"merchant_id"`
	OldKeyID   uuid.UUID `json:"old_key_id"`
	NewKeyID   uuid.UUID `json:"new_key_id"`
}

// NewAPIKeyRolledEvent creates a new APIKeyRolledEvent
func NewAPIKeyRolledEvent(m *Merchant, old, replacement *APIKey) *APIKeyRolledEvent {
	return &APIKeyRolledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAPIKeyRolled, shared.NamespaceUser, AggregateTypeMerchant, m.ID, m.TenantID),
		MerchantID:      m.ID,
		OldKeyID:        old.ID,
		NewKeyID:        replacement.ID,
	}
}

// TerminalRegisteredEvent is raised when a terminal is registered
type TerminalRegisteredEvent struct {
	shared.BaseDomainEvent
	TerminalID uuid.UUID `json:"terminal_id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Label      string    `json:"label"`
}

// NewTerminalRegisteredEvent creates a new TerminalRegisteredEvent
func NewTerminalRegisteredEvent(t *Terminal) *TerminalRegisteredEvent {
	return &TerminalRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTerminalRegistered, shared.NamespaceUser, AggregateTypeTerminal, t.ID, t.TenantID),
		TerminalID:      t.ID,
		MerchantID:      t.MerchantID,
		Label:           t.Label,
	}
}

// RefundRequestedEvent is raised when a refund enters the pending state
type RefundRequestedEvent struct {
	shared.BaseDomainEvent
	RefundID   uuid.UUID       `json:"refund_id"`
	MerchantID uuid.UUID       `json:"merchant_id"`
	PaymentID  uuid.UUID       `json:"payment_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// NewRefundRequestedEvent creates a new RefundRequestedEvent
func NewRefundRequestedEvent(r *Refund) *RefundRequestedEvent {
	return &RefundRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundRequested, shared.NamespaceAccounting, AggregateTypeRefund, r.ID, r.TenantID),
		RefundID:        r.ID,
		MerchantID:      r.MerchantID,
		PaymentID:       r.PaymentID,
		Amount:          r.Amount,
		Currency:        r.Currency,
	}
}

// RefundResolvedEvent is raised when a refund reaches a terminal status
type RefundResolvedEvent struct {
	shared.BaseDomainEvent
	RefundID    uuid.UUID       `json:"refund_id"`
	MerchantID  uuid.UUID       `json:"merchant_id"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      RefundStatus    `json:"status"`
	FailureCode string          `json:"failure_code,omitempty"`
}

// NewRefundResolvedEvent creates a new RefundResolvedEvent
func NewRefundResolvedEvent(r *Refund) *RefundResolvedEvent {
	return &RefundResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundResolved, shared.NamespaceAccounting, AggregateTypeRefund, r.ID, r.TenantID),
		RefundID:        r.ID,
		MerchantID:      r.MerchantID,
		PaymentID:       r.PaymentID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		Status:          r.Status,
		FailureCode:     r.FailureCode,
	}
}
