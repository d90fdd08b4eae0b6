package giftcard

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GiftCardTransactionType classifies a balance movement
type GiftCardTransactionType string

const (
	GiftCardTransactionIssue  GiftCardTransactionType = "ISSUE"
	GiftCardTransactionReload GiftCardTransactionType = "RELOAD"
	GiftCardTransactionRedeem GiftCardTransactionType = "REDEEM"
)

// GiftCardTransaction is an immutable ledger row. Amounts are signed: issues
// and reloads positive, redemptions negative.
type GiftCardTransaction struct {
	ID            uuid.UUID               `json:"id"`
	Type          GiftCardTransactionType `json:"type"`
	Amount        decimal.Decimal         `json:"amount"`
	BalanceBefore decimal.Decimal         `json:"balance_before"`
	BalanceAfter  decimal.Decimal         `json:"balance_after"`
	OrderID       *uuid.UUID              `json:"order_id,omitempty"`
	ProcessedAt   time.Time               `json:"processed_at"`
}

// GiftCard is the aggregate root for a stored-value card. The balance is a
// materialized cache over the append-only transaction log.
type GiftCard struct {
	shared.TenantAggregateRoot
	Code           string                `json:"code"`
	Balance        decimal.Decimal       `json:"balance"`
	Currency       string                `json:"currency"`
	Active         bool                  `json:"active"`
	IssuedAt       time.Time             `json:"issued_at"`
	RedeemedOrders map[uuid.UUID]bool    `json:"redeemed_orders"`
	Transactions   []GiftCardTransaction `json:"transactions"`
}

// NewGiftCard issues a card with an initial balance
func NewGiftCard(tenantID, cardID uuid.UUID, code string, initialBalance decimal.Decimal, currency string) (*GiftCard, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Gift card code cannot be empty")
	}
	if initialBalance.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial balance must be positive")
	}
	if currency == "" {
		currency = "USD"
	}

	card := &GiftCard{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithID(tenantID, cardID),
		Code:                code,
		Balance:             decimal.Zero,
		Currency:            currency,
		Active:              true,
		IssuedAt:            time.Now(),
		RedeemedOrders:      make(map[uuid.UUID]bool),
		Transactions:        make([]GiftCardTransaction, 0),
	}
	card.appendTransaction(GiftCardTransactionIssue, initialBalance, nil)

	card.AddDomainEvent(NewGiftCardIssuedEvent(card, initialBalance))
	return card, nil
}

// Reload adds value to the card
func (g *GiftCard) Reload(amount decimal.Decimal) error {
	if !g.Active {
		return shared.ErrInvalidStateTransition
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reload amount must be positive")
	}

	g.appendTransaction(GiftCardTransactionReload, amount, nil)
	g.UpdatedAt = time.Now()

	g.AddDomainEvent(NewGiftCardReloadedEvent(g, amount))
	return nil
}

// Redeem deducts payment for an order. Repeated redemption for the same order
// is a no-op, which keeps at-least-once event delivery safe.
func (g *GiftCard) Redeem(orderID uuid.UUID, amount decimal.Decimal) error {
	if !g.Active {
		return shared.ErrInvalidStateTransition
	}
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Redeem amount must be positive")
	}
	if g.RedeemedOrders[orderID] {
		return nil
	}
	if amount.GreaterThan(g.Balance) {
		return shared.ErrInsufficientFunds
	}

	g.appendTransaction(GiftCardTransactionRedeem, amount.Neg(), &orderID)
	g.RedeemedOrders[orderID] = true
	g.UpdatedAt = time.Now()

	g.AddDomainEvent(NewGiftCardRedeemedEvent(g, orderID, amount))
	return nil
}

// Deactivate blocks further movements; the remaining balance stays on record
func (g *GiftCard) Deactivate() {
	if !g.Active {
		return
	}
	g.Active = false
	g.UpdatedAt = time.Now()
}

// RecomputeBalanceFromLog returns the signed sum of the ledger. It must
// always equal Balance.
func (g *GiftCard) RecomputeBalanceFromLog() decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range g.Transactions {
		sum = sum.Add(tx.Amount)
	}
	return sum
}

func (g *GiftCard) appendTransaction(txType GiftCardTransactionType, amount decimal.Decimal, orderID *uuid.UUID) {
	before := g.Balance
	g.Balance = g.Balance.Add(amount)
	g.Transactions = append(g.Transactions, GiftCardTransaction{
		ID:            uuid.New(),
		Type:          txType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  g.Balance,
		OrderID:       orderID,
		ProcessedAt:   time.Now(),
	})
}
