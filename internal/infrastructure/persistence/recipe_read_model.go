package persistence

import (
	"context"
	"fmt"
	"time"

	appinventory "github.com/dinehub/backend/internal/application/inventory"
	"github.com/dinehub/backend/internal/domain/costing"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeRefRecord is the read-model row for one recipe
type RecipeRefRecord struct {
	TenantID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	RecipeID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	MenuItemID   uuid.UUID `gorm:"type:uuid;not null;index:idx_recipe_refs_menu_item"`
	PortionYield int       `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RecipeRefRecord) TableName() string {
	return "recipe_refs"
}

// RecipeIngredientRecord is the read-model row for one recipe ingredient line
type RecipeIngredientRecord struct {
	TenantID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RecipeID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	IngredientID uuid.UUID       `gorm:"type:uuid;primaryKey;index:idx_recipe_ingredients_ingredient"`
	Quantity     decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RecipeIngredientRecord) TableName() string {
	return "recipe_ingredient_refs"
}

// RecipeReadModel is the query side of the recipe data: it resolves
// ingredient-to-recipe and menu-item-to-ingredient lookups without touching
// any recipe actor. The projection keeps it current off the recipe events;
// upserts keyed by (tenant, recipe, ingredient) make redelivery harmless.
type RecipeReadModel struct {
	db *gorm.DB
}

// NewRecipeReadModel creates the recipe read model
func NewRecipeReadModel(db *gorm.DB) *RecipeReadModel {
	return &RecipeReadModel{db: db}
}

// RecipesUsingIngredient implements the costing RecipeDirectory interface
func (m *RecipeReadModel) RecipesUsingIngredient(ctx context.Context, tenantID, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := m.db.WithContext(ctx).
		Model(&RecipeIngredientRecord{}).
		Where("tenant_id = ? AND ingredient_id = ?", tenantID, ingredientID).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("recipes using ingredient %s: %w", ingredientID, err)
	}
	return ids, nil
}

// IngredientsForMenuItem implements the inventory RecipeUsageSource
// interface. Batch quantities are divided by the recipe's portion yield.
func (m *RecipeReadModel) IngredientsForMenuItem(ctx context.Context, tenantID, menuItemID uuid.UUID) ([]appinventory.IngredientUsage, error) {
	var recipe RecipeRefRecord
	err := m.db.WithContext(ctx).
		Where("tenant_id = ? AND menu_item_id = ?", tenantID, menuItemID).
		First(&recipe).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("recipe for menu item %s: %w", menuItemID, err)
	}
	if recipe.PortionYield <= 0 {
		return nil, nil
	}

	var lines []RecipeIngredientRecord
	err = m.db.WithContext(ctx).
		Where("tenant_id = ? AND recipe_id = ?", tenantID, recipe.RecipeID).
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("ingredient lines for recipe %s: %w", recipe.RecipeID, err)
	}

	yield := decimal.NewFromInt(int64(recipe.PortionYield))
	usage := make([]appinventory.IngredientUsage, 0, len(lines))
	for _, line := range lines {
		usage = append(usage, appinventory.IngredientUsage{
			IngredientID:       line.IngredientID,
			QuantityPerPortion: line.Quantity.DivRound(yield, 4),
		})
	}
	return usage, nil
}

// RecipeProjectionHandler maintains the recipe read model off the recipe
// events. Every write is an idempotent upsert or delete.
type RecipeProjectionHandler struct {
	db *gorm.DB
}

// NewRecipeProjectionHandler creates the recipe projection
func NewRecipeProjectionHandler(db *gorm.DB) *RecipeProjectionHandler {
	return &RecipeProjectionHandler{db: db}
}

// EventTypes returns the event types this handler is interested in
func (h *RecipeProjectionHandler) EventTypes() []string {
	return []string{
		costing.EventTypeRecipeCreated,
		costing.EventTypeRecipeUpdated,
		costing.EventTypeIngredientAdded,
		costing.EventTypeIngredientUpdated,
		costing.EventTypeIngredientRemoved,
	}
}

// Handle applies one recipe event to the read model
func (h *RecipeProjectionHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *costing.RecipeCreatedEvent:
		return h.upsertRecipe(ctx, evt.TenantID(), evt.RecipeID, evt.MenuItemID, evt.PortionYield)

	case *costing.RecipeUpdatedEvent:
		result := h.db.WithContext(ctx).
			Model(&RecipeRefRecord{}).
			Where("tenant_id = ? AND recipe_id = ?", evt.TenantID(), evt.RecipeID).
			Updates(map[string]interface{}{
				"portion_yield": evt.PortionYield,
				"updated_at":    time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("update recipe ref %s: %w", evt.RecipeID, result.Error)
		}
		return nil

	case *costing.IngredientAddedEvent:
		return h.upsertIngredient(ctx, evt.TenantID(), evt.RecipeID, evt.IngredientID, evt.Quantity)

	case *costing.IngredientUpdatedEvent:
		return h.upsertIngredient(ctx, evt.TenantID(), evt.RecipeID, evt.IngredientID, evt.Quantity)

	case *costing.IngredientRemovedEvent:
		err := h.db.WithContext(ctx).
			Where("tenant_id = ? AND recipe_id = ? AND ingredient_id = ?",
				evt.TenantID(), evt.RecipeID, evt.IngredientID).
			Delete(&RecipeIngredientRecord{}).Error
		if err != nil {
			return fmt.Errorf("delete ingredient ref %s: %w", evt.IngredientID, err)
		}
		return nil

	default:
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}
}

func (h *RecipeProjectionHandler) upsertRecipe(ctx context.Context, tenantID, recipeID, menuItemID uuid.UUID, portionYield int) error {
	record := RecipeRefRecord{
		TenantID:     tenantID,
		RecipeID:     recipeID,
		MenuItemID:   menuItemID,
		PortionYield: portionYield,
		UpdatedAt:    time.Now(),
	}
	err := h.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "recipe_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"menu_item_id", "portion_yield", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("upsert recipe ref %s: %w", recipeID, err)
	}
	return nil
}

func (h *RecipeProjectionHandler) upsertIngredient(ctx context.Context, tenantID, recipeID, ingredientID uuid.UUID, quantity decimal.Decimal) error {
	record := RecipeIngredientRecord{
		TenantID:     tenantID,
		RecipeID:     recipeID,
		IngredientID: ingredientID,
		Quantity:     quantity,
		UpdatedAt:    time.Now(),
	}
	err := h.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "recipe_id"}, {Name: "ingredient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("upsert ingredient ref %s: %w", ingredientID, err)
	}
	return nil
}
