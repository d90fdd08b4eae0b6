package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/booking"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command types accepted by the booking deposit actor
const (
	CmdHoldDeposit    = "booking.hold_deposit"
	CmdApplyDeposit   = "booking.apply_deposit"
	CmdForfeitDeposit = "booking.forfeit_deposit"
	CmdRefundDeposit  = "booking.refund_deposit"
	CmdGetDeposit     = "booking.get_deposit"
)

// HoldDepositCommand places the deposit addressed by the actor key on hold
type HoldDepositCommand struct {
	TenantID   uuid.UUID       `json:"tenant_id"`
	DepositID  uuid.UUID       `json:"deposit_id"`
	BookingID  uuid.UUID       `json:"booking_id" binding:"required"`
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	BookingFor time.Time       `json:"booking_for" binding:"required"`
}

func (c HoldDepositCommand) CommandType() string { return CmdHoldDeposit }

// ApplyDepositCommand settles the deposit against an order when the party
// shows up
type ApplyDepositCommand struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

func (c ApplyDepositCommand) CommandType() string { return CmdApplyDeposit }

// ForfeitDepositCommand keeps the deposit after a no-show
type ForfeitDepositCommand struct{}

func (c ForfeitDepositCommand) CommandType() string { return CmdForfeitDeposit }

// RefundDepositCommand returns the deposit after a timely cancellation
type RefundDepositCommand struct{}

func (c RefundDepositCommand) CommandType() string { return CmdRefundDeposit }

// GetDepositCommand returns the deposit state
type GetDepositCommand struct{}

func (c GetDepositCommand) CommandType() string { return CmdGetDeposit }

// DepositBehavior is the actor behavior for the BookingDeposit aggregate
type DepositBehavior struct{}

// NewDepositBehavior creates a new booking deposit behavior
func NewDepositBehavior() *DepositBehavior { return &DepositBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *DepositBehavior) ActorType() string { return booking.AggregateTypeBookingDeposit }

// NewState returns an empty deposit state
func (b *DepositBehavior) NewState() any { return &booking.BookingDeposit{} }

// Handle applies one command to the deposit
func (b *DepositBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	deposit, ok := state.(*booking.BookingDeposit)
	if !ok {
		return nil, fmt.Errorf("deposit behavior: unexpected state type %T", state)
	}

	if c, ok := cmd.(HoldDepositCommand); ok {
		if deposit.ID != uuid.Nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Deposit already held")
		}
		created, err := booking.NewBookingDeposit(c.TenantID, c.DepositID, c.BookingID, c.CustomerID, c.Amount, c.Currency, c.BookingFor)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: created, State: created, Events: created.GetDomainEvents()}, nil
	}

	if deposit.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	switch c := cmd.(type) {
	case ApplyDepositCommand:
		if err := deposit.Apply(c.OrderID); err != nil {
			return nil, err
		}
	case ForfeitDepositCommand:
		if err := deposit.Forfeit(); err != nil {
			return nil, err
		}
	case RefundDepositCommand:
		if err := deposit.Refund(); err != nil {
			return nil, err
		}
	case GetDepositCommand:
		return &actor.Outcome{Response: deposit}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("deposit actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: deposit, State: deposit, Events: deposit.GetDomainEvents()}, nil
}
