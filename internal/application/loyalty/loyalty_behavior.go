package loyalty

import (
	"context"
	"fmt"
	"time"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/loyalty"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command types accepted by the customer-spend actor
const (
	CmdInitializeAccount = "loyalty.initialize_account"
	CmdRecordSpend       = "loyalty.record_spend"
	CmdReverseSpend      = "loyalty.reverse_spend"
	CmdRedeemPoints      = "loyalty.redeem_points"
	CmdConfigureTiers    = "loyalty.configure_tiers"
	CmdResetYearToDate   = "loyalty.reset_year_to_date"
	CmdGetSnapshot       = "loyalty.get_snapshot"
)

// InitializeAccountCommand creates the spend projection for a customer
type InitializeAccountCommand struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

func (c InitializeAccountCommand) CommandType() string { return CmdInitializeAccount }

// RecordSpendCommand applies one settled order to the projection. Dispatched
// by the order-completed reactor, so it carries the source event ID.
type RecordSpendCommand struct {
	EventID        uuid.UUID       `json:"event_id"`
	OrderID        uuid.UUID       `json:"order_id" binding:"required"`
	NetSpend       decimal.Decimal `json:"net_spend"`
	GrossSpend     decimal.Decimal `json:"gross_spend"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ItemCount      int             `json:"item_count"`
	Date           time.Time       `json:"date"`
}

func (c RecordSpendCommand) CommandType() string { return CmdRecordSpend }

// SourceEventID implements actor.EventSourced
func (c RecordSpendCommand) SourceEventID() uuid.UUID { return c.EventID }

// ReverseSpendCommand backs a refunded order's spend out of the projection
type ReverseSpendCommand struct {
	EventID uuid.UUID       `json:"event_id"`
	OrderID uuid.UUID       `json:"order_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Reason  string          `json:"reason"`
}

func (c ReverseSpendCommand) CommandType() string { return CmdReverseSpend }

// SourceEventID implements actor.EventSourced
func (c ReverseSpendCommand) SourceEventID() uuid.UUID { return c.EventID }

// RedeemPointsCommand spends points against an order
type RedeemPointsCommand struct {
	OrderID    uuid.UUID `json:"order_id" binding:"required"`
	Points     int64     `json:"points" binding:"required,min=1"`
	RewardType string    `json:"reward_type" binding:"required"`
}

func (c RedeemPointsCommand) CommandType() string { return CmdRedeemPoints }

// ConfigureTiersCommand replaces the tier ladder
type ConfigureTiersCommand struct {
	Tiers []loyalty.Tier `json:"tiers" binding:"required,min=1"`
}

func (c ConfigureTiersCommand) CommandType() string { return CmdConfigureTiers }

// ResetYearToDateCommand zeroes the YTD accumulator at fiscal rollover
type ResetYearToDateCommand struct{}

func (c ResetYearToDateCommand) CommandType() string { return CmdResetYearToDate }

// GetSnapshotCommand returns the current projection state
type GetSnapshotCommand struct{}

func (c GetSnapshotCommand) CommandType() string { return CmdGetSnapshot }

// RedemptionResult is the response to a successful RedeemPointsCommand
type RedemptionResult struct {
	PointsRedeemed  int64           `json:"points_redeemed"`
	Value           decimal.Decimal `json:"value"`
	RemainingPoints int64           `json:"remaining_points"`
}

// LoyaltyBehavior is the actor behavior for the customer spend projection
type LoyaltyBehavior struct{}

// NewLoyaltyBehavior creates a new loyalty behavior
func NewLoyaltyBehavior() *LoyaltyBehavior { return &LoyaltyBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *LoyaltyBehavior) ActorType() string { return loyalty.AggregateTypeCustomerSpendProjection }

// NewState returns an empty projection state
func (b *LoyaltyBehavior) NewState() any { return &loyalty.CustomerSpendProjection{} }

// Handle applies one command to the projection
func (b *LoyaltyBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	projection, ok := state.(*loyalty.CustomerSpendProjection)
	if !ok {
		return nil, fmt.Errorf("loyalty behavior: unexpected state type %T", state)
	}

	if c, ok := cmd.(InitializeAccountCommand); ok {
		if projection.ID != uuid.Nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Loyalty account already initialized")
		}
		created, err := loyalty.NewCustomerSpendProjection(c.TenantID, c.CustomerID)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: ToSnapshotResponse(created), State: created, Events: created.GetDomainEvents()}, nil
	}

	if projection.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	switch c := cmd.(type) {
	case RecordSpendCommand:
		if err := projection.RecordSpend(c.OrderID, c.NetSpend, c.GrossSpend, c.DiscountAmount, c.ItemCount, c.Date); err != nil {
			return nil, err
		}
	case ReverseSpendCommand:
		if err := projection.ReverseSpend(c.OrderID, c.Amount, c.Reason); err != nil {
			return nil, err
		}
	case RedeemPointsCommand:
		value, err := projection.RedeemPoints(c.OrderID, c.Points, c.RewardType)
		if err != nil {
			return nil, err
		}
		result := &RedemptionResult{
			PointsRedeemed:  c.Points,
			Value:           value,
			RemainingPoints: projection.AvailablePoints,
		}
		return &actor.Outcome{Response: result, State: projection, Events: projection.GetDomainEvents()}, nil
	case ConfigureTiersCommand:
		if err := projection.ConfigureTiers(c.Tiers); err != nil {
			return nil, err
		}
	case ResetYearToDateCommand:
		projection.ResetYearToDate()
	case GetSnapshotCommand:
		return &actor.Outcome{Response: ToSnapshotResponse(projection)}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("loyalty actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: ToSnapshotResponse(projection), State: projection, Events: projection.GetDomainEvents()}, nil
}
