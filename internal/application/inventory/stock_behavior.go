package inventory

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/inventory"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command types accepted by the ingredient stock actor
const (
	CmdCreateIngredient = "inventory.create_ingredient"
	CmdReceiveStock     = "inventory.receive_stock"
	CmdConsumeStock     = "inventory.consume_stock"
	CmdSetPrice         = "inventory.set_price"
	CmdSetThreshold     = "inventory.set_threshold"
	CmdAdjustStock      = "inventory.adjust_stock"
	CmdGetStock         = "inventory.get_stock"
)

// CreateIngredientCommand creates the stock record addressed by the actor key
type CreateIngredientCommand struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	IngredientID  uuid.UUID `json:"ingredient_id"`
	Name          string    `json:"name" binding:"required"`
	UnitOfMeasure string    `json:"unit_of_measure" binding:"required"`
}

func (c CreateIngredientCommand) CommandType() string { return CmdCreateIngredient }

// ReceiveStockCommand books a delivery in, folding its price into the moving
// weighted-average unit cost
type ReceiveStockCommand struct {
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

func (c ReceiveStockCommand) CommandType() string { return CmdReceiveStock }

// ConsumeStockCommand deducts the kitchen's usage for one order. Dispatched
// by the order-completed reactor, so it carries the source event ID.
type ConsumeStockCommand struct {
	EventID  uuid.UUID       `json:"event_id"`
	OrderID  uuid.UUID       `json:"order_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

func (c ConsumeStockCommand) CommandType() string { return CmdConsumeStock }

// SourceEventID implements actor.EventSourced
func (c ConsumeStockCommand) SourceEventID() uuid.UUID { return c.EventID }

// SetPriceCommand overrides the unit cost directly
type SetPriceCommand struct {
	UnitCost decimal.Decimal `json:"unit_cost"`
}

func (c SetPriceCommand) CommandType() string { return CmdSetPrice }

// SetThresholdCommand sets the low-stock alert threshold
type SetThresholdCommand struct {
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

func (c SetThresholdCommand) CommandType() string { return CmdSetThreshold }

// AdjustStockCommand corrects the on-hand quantity after a physical count
type AdjustStockCommand struct {
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason" binding:"required"`
}

func (c AdjustStockCommand) CommandType() string { return CmdAdjustStock }

// GetStockCommand returns the current stock state
type GetStockCommand struct{}

func (c GetStockCommand) CommandType() string { return CmdGetStock }

// StockBehavior is the actor behavior for the IngredientStock aggregate
type StockBehavior struct{}

// NewStockBehavior creates a new ingredient stock behavior
func NewStockBehavior() *StockBehavior { return &StockBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *StockBehavior) ActorType() string { return inventory.AggregateTypeIngredientStock }

// NewState returns an empty stock state
func (b *StockBehavior) NewState() any { return &inventory.IngredientStock{} }

// Handle applies one command to the stock record
func (b *StockBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	stock, ok := state.(*inventory.IngredientStock)
	if !ok {
		return nil, fmt.Errorf("stock behavior: unexpected state type %T", state)
	}

	if c, ok := cmd.(CreateIngredientCommand); ok {
		if stock.ID != uuid.Nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Ingredient stock already exists")
		}
		created, err := inventory.NewIngredientStock(c.TenantID, c.IngredientID, c.Name, c.UnitOfMeasure)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: created, State: created, Events: created.GetDomainEvents()}, nil
	}

	if stock.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	switch c := cmd.(type) {
	case ReceiveStockCommand:
		if err := stock.Receive(c.Quantity, c.UnitCost); err != nil {
			return nil, err
		}
	case ConsumeStockCommand:
		if err := stock.Consume(c.OrderID, c.Quantity); err != nil {
			return nil, err
		}
	case SetPriceCommand:
		if err := stock.SetPrice(c.UnitCost); err != nil {
			return nil, err
		}
	case SetThresholdCommand:
		if err := stock.SetThreshold(c.MinQuantity); err != nil {
			return nil, err
		}
	case AdjustStockCommand:
		if err := stock.Adjust(c.NewQuantity, c.Reason); err != nil {
			return nil, err
		}
	case GetStockCommand:
		return &actor.Outcome{Response: stock}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("ingredient stock actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: stock, State: stock, Events: stock.GetDomainEvents()}, nil
}
