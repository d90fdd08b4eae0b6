package giftcard

import (
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeGiftCard = "GiftCard"

// Event type constants
const (
	EventTypeGiftCardIssued   = "GiftCardIssued"
	EventTypeGiftCardReloaded = "GiftCardReloaded"
	EventTypeGiftCardRedeemed = "GiftCardRedeemed"
)

// GiftCardIssuedEvent is raised when a card is issued
type GiftCardIssuedEvent struct {
	shared.BaseDomainEvent
	CardID         uuid.UUID       `json:"card_id"`
	Code           string          `json:"code"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Currency       string          `json:"currency"`
}

// NewGiftCardIssuedEvent creates a new GiftCardIssuedEvent
func NewGiftCardIssuedEvent(g *GiftCard, initialBalance decimal.Decimal) *GiftCardIssuedEvent {
	return &GiftCardIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGiftCardIssued, shared.NamespaceGiftCard, AggregateTypeGiftCard, g.ID, g.TenantID),
		CardID:          g.ID,
		Code:            g.Code,
		InitialBalance:  initialBalance,
		Currency:        g.Currency,
	}
}

// GiftCardReloadedEvent is raised when value is added to a card
type GiftCardReloadedEvent struct {
	shared.BaseDomainEvent
	CardID  uuid.UUID       `json:"card_id"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

// NewGiftCardReloadedEvent creates a new GiftCardReloadedEvent
func NewGiftCardReloadedEvent(g *GiftCard, amount decimal.Decimal) *GiftCardReloadedEvent {
	return &GiftCardReloadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGiftCardReloaded, shared.NamespaceGiftCard, AggregateTypeGiftCard, g.ID, g.TenantID),
		CardID:          g.ID,
		Amount:          amount,
		Balance:         g.Balance,
	}
}

// GiftCardRedeemedEvent is raised when a card pays for an order
type GiftCardRedeemedEvent struct {
	shared.BaseDomainEvent
	CardID  uuid.UUID       `json:"card_id"`
	OrderID uuid.UUID       `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

// NewGiftCardRedeemedEvent creates a new GiftCardRedeemedEvent
func NewGiftCardRedeemedEvent(g *GiftCard, orderID uuid.UUID, amount decimal.Decimal) *GiftCardRedeemedEvent {
	return &GiftCardRedeemedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGiftCardRedeemed, shared.NamespaceGiftCard, AggregateTypeGiftCard, g.ID, g.TenantID),
		CardID:          g.ID,
		OrderID:         orderID,
		Amount:          amount,
		Balance:         g.Balance,
	}
}
