package costing

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/costing"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command types accepted by the recipe actor
const (
	CmdCreateRecipe          = "costing.create_recipe"
	CmdUpdateRecipe          = "costing.update_recipe"
	CmdAddIngredient         = "costing.add_ingredient"
	CmdUpdateIngredient      = "costing.update_ingredient"
	CmdRemoveIngredient      = "costing.remove_ingredient"
	CmdCalculateCost         = "costing.calculate_cost"
	CmdRecalculateFromPrices = "costing.recalculate_from_prices"
	CmdCreateCostSnapshot    = "costing.create_cost_snapshot"
	CmdGetCostHistory        = "costing.get_cost_history"
	CmdGetRecipe             = "costing.get_recipe"
)

// CreateRecipeCommand creates the recipe addressed by the actor key. TenantID
// and RecipeID mirror the key so the behavior can construct the aggregate
// without access to the dispatch envelope.
type CreateRecipeCommand struct {
	TenantID     uuid.UUID `json:"tenant_id"`
	RecipeID     uuid.UUID `json:"recipe_id"`
	MenuItemID   uuid.UUID `json:"menu_item_id" binding:"required"`
	Name         string    `json:"name" binding:"required"`
	PortionYield int       `json:"portion_yield" binding:"required,min=1"`
}

func (c CreateRecipeCommand) CommandType() string { return CmdCreateRecipe }

// UpdateRecipeCommand renames the recipe or changes its portion yield
type UpdateRecipeCommand struct {
	Name         string `json:"name" binding:"required"`
	PortionYield int    `json:"portion_yield" binding:"required,min=1"`
}

func (c UpdateRecipeCommand) CommandType() string { return CmdUpdateRecipe }

// AddIngredientCommand adds one ingredient line
type AddIngredientCommand struct {
	IngredientID    uuid.UUID       `json:"ingredient_id" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitOfMeasure   string          `json:"unit_of_measure" binding:"required"`
	WastePercentage decimal.Decimal `json:"waste_percentage"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

func (c AddIngredientCommand) CommandType() string { return CmdAddIngredient }

// UpdateIngredientCommand changes quantity, waste or unit cost of one line
type UpdateIngredientCommand struct {
	IngredientID    uuid.UUID       `json:"ingredient_id" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	WastePercentage decimal.Decimal `json:"waste_percentage"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

func (c UpdateIngredientCommand) CommandType() string { return CmdUpdateIngredient }

// RemoveIngredientCommand removes one ingredient line
type RemoveIngredientCommand struct {
	IngredientID uuid.UUID `json:"ingredient_id" binding:"required"`
}

func (c RemoveIngredientCommand) CommandType() string { return CmdRemoveIngredient }

// CalculateCostCommand recalculates and returns the full cost breakdown,
// optionally against a menu price
type CalculateCostCommand struct {
	MenuPrice *decimal.Decimal `json:"menu_price,omitempty"`
}

func (c CalculateCostCommand) CommandType() string { return CmdCalculateCost }

// RecalculateFromPricesCommand reprices ingredient lines from the supplied
// map. Dispatched by the ingredient-cost reactor, so it carries the source
// event for idempotent re-delivery.
type RecalculateFromPricesCommand struct {
	EventID  uuid.UUID                     `json:"event_id"`
	PriceMap map[uuid.UUID]decimal.Decimal `json:"price_map" binding:"required"`
}

func (c RecalculateFromPricesCommand) CommandType() string { return CmdRecalculateFromPrices }

// SourceEventID implements actor.EventSourced
func (c RecalculateFromPricesCommand) SourceEventID() uuid.UUID { return c.EventID }

// CreateCostSnapshotCommand freezes the current cost into the history
type CreateCostSnapshotCommand struct {
	MenuPrice *decimal.Decimal `json:"menu_price,omitempty"`
	Notes     string           `json:"notes"`
}

func (c CreateCostSnapshotCommand) CommandType() string { return CmdCreateCostSnapshot }

// GetCostHistoryCommand returns the most recent cost snapshots
type GetCostHistoryCommand struct {
	Count int `json:"count" binding:"min=0"`
}

func (c GetCostHistoryCommand) CommandType() string { return CmdGetCostHistory }

// GetRecipeCommand returns the current recipe state
type GetRecipeCommand struct{}

func (c GetRecipeCommand) CommandType() string { return CmdGetRecipe }

// RecipeBehavior is the actor behavior for the Recipe aggregate
type RecipeBehavior struct{}

// NewRecipeBehavior creates a new recipe behavior
func NewRecipeBehavior() *RecipeBehavior { return &RecipeBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *RecipeBehavior) ActorType() string { return costing.AggregateTypeRecipe }

// NewState returns an empty recipe state
func (b *RecipeBehavior) NewState() any { return &costing.Recipe{} }

// Handle applies one command to the recipe
func (b *RecipeBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	recipe, ok := state.(*costing.Recipe)
	if !ok {
		return nil, fmt.Errorf("recipe behavior: unexpected state type %T", state)
	}

	if c, ok := cmd.(CreateRecipeCommand); ok {
		if recipe.ID != uuid.Nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Recipe already exists")
		}
		created, err := costing.NewRecipe(c.TenantID, c.RecipeID, c.MenuItemID, c.Name, c.PortionYield)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: ToRecipeResponse(created), State: created, Events: created.GetDomainEvents()}, nil
	}

	if recipe.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	switch c := cmd.(type) {
	case UpdateRecipeCommand:
		if err := recipe.Update(c.Name, c.PortionYield); err != nil {
			return nil, err
		}
	case AddIngredientCommand:
		err := recipe.AddIngredient(costing.RecipeIngredient{
			IngredientID:    c.IngredientID,
			Name:            c.Name,
			Quantity:        c.Quantity,
			UnitOfMeasure:   c.UnitOfMeasure,
			WastePercentage: c.WastePercentage,
			UnitCost:        c.UnitCost,
		})
		if err != nil {
			return nil, err
		}
	case UpdateIngredientCommand:
		if err := recipe.UpdateIngredient(c.IngredientID, c.Quantity, c.WastePercentage, c.UnitCost); err != nil {
			return nil, err
		}
	case RemoveIngredientCommand:
		if err := recipe.RemoveIngredient(c.IngredientID); err != nil {
			return nil, err
		}
	case CalculateCostCommand:
		breakdown, err := recipe.CalculateCost(c.MenuPrice)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: breakdown, State: recipe, Events: recipe.GetDomainEvents()}, nil
	case RecalculateFromPricesCommand:
		if err := recipe.RecalculateFromPrices(c.PriceMap); err != nil {
			return nil, err
		}
		if len(recipe.GetDomainEvents()) == 0 {
			// No line matched: nothing changed, skip the state write.
			return &actor.Outcome{Response: ToRecipeResponse(recipe)}, nil
		}
	case CreateCostSnapshotCommand:
		snapshot, err := recipe.CreateCostSnapshot(c.MenuPrice, c.Notes)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: snapshot, State: recipe, Events: recipe.GetDomainEvents()}, nil
	case GetCostHistoryCommand:
		return &actor.Outcome{Response: recipe.CostHistoryEntries(c.Count)}, nil
	case GetRecipeCommand:
		return &actor.Outcome{Response: ToRecipeResponse(recipe)}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("recipe actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: ToRecipeResponse(recipe), State: recipe, Events: recipe.GetDomainEvents()}, nil
}
