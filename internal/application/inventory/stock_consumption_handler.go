package inventory

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/inventory"
	"github.com/dinehub/backend/internal/domain/ordering"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IngredientUsage is one ingredient requirement of a menu item
type IngredientUsage struct {
	IngredientID       uuid.UUID
	QuantityPerPortion decimal.Decimal
}

// RecipeUsageSource resolves a menu item to its ingredient requirements. The
// persistence layer backs it with the recipe read model.
type RecipeUsageSource interface {
	// IngredientsForMenuItem returns the per-portion ingredient usage for a
	// menu item, or an empty slice when no recipe is on file
	IngredientsForMenuItem(ctx context.Context, tenantID, menuItemID uuid.UUID) ([]IngredientUsage, error)
}

// StockConsumptionHandler depletes ingredient stock when orders settle.
// Usage is summed per ingredient across the whole order before dispatch: the
// stock actor deduplicates on order ID, so it must see exactly one Consume
// per (ingredient, order).
type StockConsumptionHandler struct {
	dispatcher actor.Dispatcher
	recipes    RecipeUsageSource
	logger     *zap.Logger
}

// NewStockConsumptionHandler creates the stock depletion reactor
func NewStockConsumptionHandler(dispatcher actor.Dispatcher, recipes RecipeUsageSource, logger *zap.Logger) *StockConsumptionHandler {
	return &StockConsumptionHandler{dispatcher: dispatcher, recipes: recipes, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StockConsumptionHandler) EventTypes() []string {
	return []string{ordering.EventTypeOrderCompleted}
}

// Handle processes one OrderCompleted event
func (h *StockConsumptionHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	evt, ok := event.(*ordering.OrderCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}

	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, line := range evt.Lines {
		usages, err := h.recipes.IngredientsForMenuItem(ctx, evt.TenantID(), line.MenuItemID)
		if err != nil {
			return fmt.Errorf("resolve recipe for menu item %s: %w", line.MenuItemID, err)
		}
		portions := decimal.NewFromInt(int64(line.Quantity))
		for _, usage := range usages {
			totals[usage.IngredientID] = totals[usage.IngredientID].Add(usage.QuantityPerPortion.Mul(portions))
		}
	}

	var firstErr error
	for ingredientID, quantity := range totals {
		if quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		key := actor.NewKey(evt.TenantID(), inventory.AggregateTypeIngredientStock, ingredientID)
		cmd := ConsumeStockCommand{EventID: evt.EventID(), OrderID: evt.OrderID, Quantity: quantity}
		if _, _, err := h.dispatcher.Dispatch(ctx, key, cmd); err != nil {
			if shared.IsBusinessError(err) {
				// Stock record missing or invalid: a redelivery cannot fix
				// it, surface it in the logs and move on.
				h.logger.Warn("stock consumption skipped",
					zap.String("ingredient_id", ingredientID.String()),
					zap.String("order_id", evt.OrderID.String()),
					zap.Error(err))
				continue
			}
			h.logger.Warn("stock consumption dispatch failed",
				zap.String("ingredient_id", ingredientID.String()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
