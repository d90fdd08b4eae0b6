package booking

import (
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeBookingDeposit = "BookingDeposit"

// Event type constants
const (
	EventTypeDepositHeld     = "BookingDepositHeld"
	EventTypeDepositResolved = "BookingDepositResolved"
)

// DepositHeldEvent is raised when a deposit is taken for a booking
type DepositHeldEvent struct {
	shared.BaseDomainEvent
	DepositID  uuid.UUID       `json:"deposit_id"`
	BookingID  uuid.UUID       `json:"booking_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// NewDepositHeldEvent creates a new DepositHeldEvent
func NewDepositHeldEvent(d *BookingDeposit) *DepositHeldEvent {
	return &DepositHeldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepositHeld, shared.NamespaceBookingDeposit, AggregateTypeBookingDeposit, d.ID, d.TenantID),
		DepositID:       d.ID,
		BookingID:       d.BookingID,
		CustomerID:      d.CustomerID,
		Amount:          d.Amount,
		Currency:        d.Currency,
	}
}

// DepositResolvedEvent is raised when a deposit reaches a terminal status.
// The accounting projection journals it by outcome.
type DepositResolvedEvent struct {
	shared.BaseDomainEvent
	DepositID  uuid.UUID       `json:"deposit_id"`
	BookingID  uuid.UUID       `json:"booking_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     DepositStatus   `json:"status"`
	OrderID    *uuid.UUID      `json:"order_id,omitempty"`
}

// NewDepositResolvedEvent creates a new DepositResolvedEvent
func NewDepositResolvedEvent(d *BookingDeposit) *DepositResolvedEvent {
	return &DepositResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepositResolved, shared.NamespaceBookingDeposit, AggregateTypeBookingDeposit, d.ID, d.TenantID),
		DepositID:       d.ID,
		BookingID:       d.BookingID,
		CustomerID:      d.CustomerID,
		Amount:          d.Amount,
		Currency:        d.Currency,
		Status:          d.Status,
		OrderID:         d.OrderID,
	}
}
