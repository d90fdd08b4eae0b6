package booking

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositStatus is a forward-only state machine:
// Held -> Applied | Forfeited | Refunded. A terminal status is immutable.
type DepositStatus string

const (
	DepositStatusHeld      DepositStatus = "HELD"
	DepositStatusApplied   DepositStatus = "APPLIED"
	DepositStatusForfeited DepositStatus = "FORFEITED"
	DepositStatusRefunded  DepositStatus = "REFUNDED"
)

// IsTerminal reports whether the status allows no further transitions
func (s DepositStatus) IsTerminal() bool {
	return s != DepositStatusHeld
}

// BookingDeposit is the aggregate root for a table-booking deposit. The
// deposit is held when the booking is made and resolves exactly once: applied
// to the bill, forfeited on a no-show, or refunded on timely cancellation.
type BookingDeposit struct {
	shared.TenantAggregateRoot
	BookingID  uuid.UUID       `json:"booking_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     DepositStatus   `json:"status"`
	BookingFor time.Time       `json:"booking_for"`
	OrderID    *uuid.UUID      `json:"order_id,omitempty"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

// NewBookingDeposit holds a deposit for a booking
func NewBookingDeposit(tenantID, depositID, bookingID, customerID uuid.UUID, amount decimal.Decimal, currency string, bookingFor time.Time) (*BookingDeposit, error) {
	if bookingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BOOKING", "Booking ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Deposit amount must be positive")
	}
	if currency == "" {
		currency = "USD"
	}

	dep := &BookingDeposit{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithID(tenantID, depositID),
		BookingID:           bookingID,
		CustomerID:          customerID,
		Amount:              amount,
		Currency:            currency,
		Status:              DepositStatusHeld,
		BookingFor:          bookingFor,
	}
	dep.AddDomainEvent(NewDepositHeldEvent(dep))
	return dep, nil
}

// Apply credits the deposit against the final bill
func (d *BookingDeposit) Apply(orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if err := d.ensureHeld(); err != nil {
		return err
	}

	d.Status = DepositStatusApplied
	d.OrderID = &orderID
	d.resolve()

	d.AddDomainEvent(NewDepositResolvedEvent(d))
	return nil
}

// Forfeit keeps the deposit after a no-show
func (d *BookingDeposit) Forfeit() error {
	if err := d.ensureHeld(); err != nil {
		return err
	}
	d.Status = DepositStatusForfeited
	d.resolve()

	d.AddDomainEvent(NewDepositResolvedEvent(d))
	return nil
}

// Refund returns the deposit after a timely cancellation
func (d *BookingDeposit) Refund() error {
	if err := d.ensureHeld(); err != nil {
		return err
	}
	d.Status = DepositStatusRefunded
	d.resolve()

	d.AddDomainEvent(NewDepositResolvedEvent(d))
	return nil
}

func (d *BookingDeposit) ensureHeld() error {
	if d.Status != DepositStatusHeld {
		return shared.ErrInvalidStateTransition
	}
	return nil
}

func (d *BookingDeposit) resolve() {
	now := time.Now()
	d.ResolvedAt = &now
	d.UpdatedAt = now
}
