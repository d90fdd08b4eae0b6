package costing

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/costing"
	"github.com/dinehub/backend/internal/domain/inventory"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecipeDirectory answers which recipes use a given ingredient. The
// persistence layer maintains it as a read model off the recipe events.
type RecipeDirectory interface {
	// RecipesUsingIngredient returns the recipe IDs whose current ingredient
	// list contains the ingredient
	RecipesUsingIngredient(ctx context.Context, tenantID, ingredientID uuid.UUID) ([]uuid.UUID, error)
}

// IngredientCostChangedHandler reprices every recipe that uses an ingredient
// whose weighted-average unit cost moved. Delivery is at-least-once; the
// dispatched command carries the source event ID so replays are absorbed by
// the recipe actor.
type IngredientCostChangedHandler struct {
	dispatcher actor.Dispatcher
	directory  RecipeDirectory
	logger     *zap.Logger
}

// NewIngredientCostChangedHandler creates the repricing reactor
func NewIngredientCostChangedHandler(dispatcher actor.Dispatcher, directory RecipeDirectory, logger *zap.Logger) *IngredientCostChangedHandler {
	return &IngredientCostChangedHandler{
		dispatcher: dispatcher,
		directory:  directory,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *IngredientCostChangedHandler) EventTypes() []string {
	return []string{inventory.EventTypeIngredientCostChanged}
}

// Handle processes one IngredientCostChanged event
func (h *IngredientCostChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	evt, ok := event.(*inventory.IngredientCostChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}

	recipeIDs, err := h.directory.RecipesUsingIngredient(ctx, evt.TenantID(), evt.IngredientID)
	if err != nil {
		return fmt.Errorf("look up recipes for ingredient %s: %w", evt.IngredientID, err)
	}
	if len(recipeIDs) == 0 {
		return nil
	}

	cmd := RecalculateFromPricesCommand{
		EventID:  evt.EventID(),
		PriceMap: map[uuid.UUID]decimal.Decimal{evt.IngredientID: evt.NewUnitCost},
	}
	var firstErr error
	for _, recipeID := range recipeIDs {
		key := actor.NewKey(evt.TenantID(), costing.AggregateTypeRecipe, recipeID)
		if _, _, err := h.dispatcher.Dispatch(ctx, key, cmd); err != nil {
			// Keep going so one wedged recipe does not starve the rest; the
			// returned error makes the fabric redeliver for the stragglers.
			h.logger.Warn("recipe repricing dispatch failed",
				zap.String("recipe_id", recipeID.String()),
				zap.String("ingredient_id", evt.IngredientID.String()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
