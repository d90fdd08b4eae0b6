package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/sales"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command types accepted by the sales day actor
const (
	CmdRecordOrderSales  = "sales.record_order"
	CmdRecordRefundSales = "sales.record_refund"
	CmdGetDaySales       = "sales.get_day"
)

// DayKeyFor derives the deterministic actor entity ID for a business day.
// Every reactor instance maps the same (tenant, day) to the same actor.
func DayKeyFor(tenantID uuid.UUID, day time.Time) (uuid.UUID, string) {
	dayKey := day.UTC().Format(sales.DayFormat)
	entityID := uuid.NewSHA1(tenantID, []byte("sales-day:"+dayKey))
	return entityID, dayKey
}

// RecordOrderCommand folds one settled order into the day's totals.
// Dispatched by the sales reactor, so it carries the source event ID.
type RecordOrderCommand struct {
	EventID   uuid.UUID       `json:"event_id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Day       string          `json:"day"`
	OrderID   uuid.UUID       `json:"order_id" binding:"required"`
	Net       decimal.Decimal `json:"net"`
	Gross     decimal.Decimal `json:"gross"`
	Discount  decimal.Decimal `json:"discount"`
	ItemCount int             `json:"item_count"`
}

func (c RecordOrderCommand) CommandType() string { return CmdRecordOrderSales }

// SourceEventID implements actor.EventSourced
func (c RecordOrderCommand) SourceEventID() uuid.UUID { return c.EventID }

// RecordRefundCommand books a refund against the day's totals
type RecordRefundCommand struct {
	EventID  uuid.UUID       `json:"event_id"`
	TenantID uuid.UUID       `json:"tenant_id"`
	Day      string          `json:"day"`
	OrderID  uuid.UUID       `json:"order_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

func (c RecordRefundCommand) CommandType() string { return CmdRecordRefundSales }

// SourceEventID implements actor.EventSourced
func (c RecordRefundCommand) SourceEventID() uuid.UUID { return c.EventID }

// GetDaySalesCommand returns the day's totals
type GetDaySalesCommand struct{}

func (c GetDaySalesCommand) CommandType() string { return CmdGetDaySales }

// SalesDayBehavior is the actor behavior for the SalesDay aggregate. The
// accumulator is created implicitly by the first order of the day; there is
// no explicit create command.
type SalesDayBehavior struct{}

// NewSalesDayBehavior creates a new sales day behavior
func NewSalesDayBehavior() *SalesDayBehavior { return &SalesDayBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *SalesDayBehavior) ActorType() string { return sales.AggregateTypeSalesDay }

// NewState returns an empty sales day state
func (b *SalesDayBehavior) NewState() any { return &sales.SalesDay{} }

// Handle applies one command to the sales day
func (b *SalesDayBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	day, ok := state.(*sales.SalesDay)
	if !ok {
		return nil, fmt.Errorf("sales day behavior: unexpected state type %T", state)
	}

	switch c := cmd.(type) {
	case RecordOrderCommand:
		var err error
		if day, err = b.materialize(day, c.TenantID, c.Day); err != nil {
			return nil, err
		}
		if err := day.RecordOrder(c.OrderID, c.Net, c.Gross, c.Discount, c.ItemCount); err != nil {
			return nil, err
		}
	case RecordRefundCommand:
		var err error
		if day, err = b.materialize(day, c.TenantID, c.Day); err != nil {
			return nil, err
		}
		if err := day.RecordRefund(c.OrderID, c.Amount); err != nil {
			return nil, err
		}
	case GetDaySalesCommand:
		if day.ID == uuid.Nil {
			return nil, shared.ErrNotFound
		}
		return &actor.Outcome{Response: day}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("sales day actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: day, State: day, Events: day.GetDomainEvents()}, nil
}

// materialize creates the accumulator on first use
func (b *SalesDayBehavior) materialize(day *sales.SalesDay, tenantID uuid.UUID, dayKey string) (*sales.SalesDay, error) {
	if day.ID != uuid.Nil {
		return day, nil
	}
	entityID := uuid.NewSHA1(tenantID, []byte("sales-day:"+dayKey))
	return sales.NewSalesDay(tenantID, entityID, dayKey)
}
