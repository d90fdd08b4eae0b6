package costing

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeRecipe = "Recipe"

// Event type constants
const (
	EventTypeRecipeCreated        = "RecipeCreated"
	EventTypeRecipeUpdated        = "RecipeUpdated"
	EventTypeIngredientAdded      = "RecipeIngredientAdded"
	EventTypeIngredientUpdated    = "RecipeIngredientUpdated"
	EventTypeIngredientRemoved    = "RecipeIngredientRemoved"
	EventTypeRecipeCostCalculated = "RecipeCostCalculated"
	EventTypeCostSnapshotCreated  = "RecipeCostSnapshotCreated"
)

// RecipeCreatedEvent is raised when a recipe is created
type RecipeCreatedEvent struct {
	shared.BaseDomainEvent
	RecipeID     uuid.UUID `json:"recipe_id"`
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	Name         string    `json:"name"`
	PortionYield int       `json:"portion_yield"`
}

// NewRecipeCreatedEvent creates a new RecipeCreatedEvent
func NewRecipeCreatedEvent(recipe *Recipe) *RecipeCreatedEvent {
	return &RecipeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecipeCreated, shared.NamespaceInventory, AggregateTypeRecipe, recipe.ID, recipe.TenantID),
		RecipeID:        recipe.ID,
		MenuItemID:      recipe.MenuItemID,
		Name:            recipe.Name,
		PortionYield:    recipe.PortionYield,
	}
}

// RecipeUpdatedEvent is raised when recipe name or yield changes
type RecipeUpdatedEvent struct {
	shared.BaseDomainEvent
	RecipeID     uuid.UUID `json:"recipe_id"`
	Name         string    `json:"name"`
	PortionYield int       `json:"portion_yield"`
}

// NewRecipeUpdatedEvent creates a new RecipeUpdatedEvent
func NewRecipeUpdatedEvent(recipe *Recipe) *RecipeUpdatedEvent {
	return &RecipeUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecipeUpdated, shared.NamespaceInventory, AggregateTypeRecipe, recipe.ID, recipe.TenantID),
		RecipeID:        recipe.ID,
		Name:            recipe.Name,
		PortionYield:    recipe.PortionYield,
	}
}

// IngredientAddedEvent is raised when a costed line is added to a recipe
type IngredientAddedEvent struct {
	shared.BaseDomainEvent
	RecipeID     uuid.UUID       `json:"recipe_id"`
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LineCost     decimal.Decimal `json:"line_cost"`
}

// NewIngredientAddedEvent creates a new IngredientAddedEvent
func NewIngredientAddedEvent(recipe *Recipe, ing *RecipeIngredient) *IngredientAddedEvent {
	return &IngredientAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIngredientAdded, shared.NamespaceInventory, AggregateTypeRecipe, recipe.ID, recipe.TenantID),
		RecipeID:        recipe.ID,
		IngredientID:    ing.IngredientID,
		Quantity:        ing.Quantity,
		UnitCost:        ing.UnitCost,
		LineCost:        ing.LineCost,
	}
}

// IngredientUpdatedEvent is raised when a recipe line changes
type IngredientUpdatedEvent struct {
	shared.BaseDomainEvent
	RecipeID     uuid.UUID       `json:"recipe_id"`
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LineCost     decimal.Decimal `json:"line_cost"`
}

// NewIngredientUpdatedEvent creates a new IngredientUpdatedEvent
func NewIngredientUpdatedEvent(recipe *Recipe, ing *RecipeIngredient) *IngredientUpdatedEvent {
	return &IngredientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIngredientUpdated, shared.NamespaceInventory, AggregateTypeRecipe, recipe.ID, recipe.TenantID),
		RecipeID:        recipe.ID,
		IngredientID:    ing.IngredientID,
		Quantity:        ing.Quantity,
		UnitCost:        ing.UnitCost,
		LineCost:        ing.LineCost,
	}
}

// IngredientRemovedEvent is raised when a recipe line is removed
type IngredientRemovedEvent struct {
	shared.BaseDomainEvent
	RecipeID     uuid.UUID `json:"recipe_id"`
	IngredientID uuid.UUID `json:"ingredient_id"`
}

// NewIngredientRemovedEvent creates a new IngredientRemovedEvent
func NewIngredientRemovedEvent(recipe *Recipe, ingredientID uuid.UUID) *IngredientRemovedEvent {
	return &IngredientRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIngredientRemoved, shared.NamespaceInventory, AggregateTypeRecipe, recipe.ID, recipe.TenantID),
		RecipeID:        recipe.ID,
		IngredientID:    ingredientID,
	}
}

// RecipeCostCalculatedEvent is raised after every cost-affecting command
type RecipeCostCalculatedEvent struct {
	shared.BaseDomainEvent
	RecipeID         uuid.UUID       `json:"recipe_id"`
	MenuItemID       uuid.UUID       `json:"menu_item_id"`
	CostPerPortion   decimal.Decimal `json:"cost_per_portion"`
	CostCalculatedAt *time.Time      `json:"cost_calculated_at,omitempty"`
}

// NewRecipeCostCalculatedEvent creates a new RecipeCostCalculatedEvent
func NewRecipeCostCalculatedEvent(recipe *Recipe) *RecipeCostCalculatedEvent {
	return &RecipeCostCalculatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeRecipeCostCalculated, shared.NamespaceInventory, AggregateTypeRecipe, recipe.ID, recipe.TenantID),
		RecipeID:         recipe.ID,
		MenuItemID:       recipe.MenuItemID,
		CostPerPortion:   recipe.CurrentCostPerPortion,
		CostCalculatedAt: recipe.CostCalculatedAt,
	}
}

// CostSnapshotCreatedEvent is raised when a cost snapshot is recorded
type CostSnapshotCreatedEvent struct {
	shared.BaseDomainEvent
	RecipeID       uuid.UUID       `json:"recipe_id"`
	SnapshotID     uuid.UUID       `json:"snapshot_id"`
	CostPerPortion decimal.Decimal `json:"cost_per_portion"`
}

// NewCostSnapshotCreatedEvent creates a new CostSnapshotCreatedEvent
func NewCostSnapshotCreatedEvent(recipe *Recipe, snapshot *CostSnapshot) *CostSnapshotCreatedEvent {
	return &CostSnapshotCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCostSnapshotCreated, shared.NamespaceInventory, AggregateTypeRecipe, recipe.ID, recipe.TenantID),
		RecipeID:        recipe.ID,
		SnapshotID:      snapshot.ID,
		CostPerPortion:  snapshot.CostPerPortion,
	}
}
