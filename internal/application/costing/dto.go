package costing

import (
	"time"

	"github.com/dinehub/backend/internal/domain/costing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeResponse represents a recipe in API responses
type RecipeResponse struct {
	ID                    uuid.UUID                  `json:"id"`
	TenantID              uuid.UUID                  `json:"tenant_id"`
	MenuItemID            uuid.UUID                  `json:"menu_item_id"`
	Name                  string                     `json:"name"`
	PortionYield          int                        `json:"portion_yield"`
	Ingredients           []costing.RecipeIngredient `json:"ingredients"`
	CurrentCostPerPortion decimal.Decimal            `json:"current_cost_per_portion"`
	CostCalculatedAt      *time.Time                 `json:"cost_calculated_at,omitempty"`
	CostStale             bool                       `json:"cost_stale"`
}

// ToRecipeResponse converts a recipe aggregate to its response shape
func ToRecipeResponse(r *costing.Recipe) *RecipeResponse {
	return &RecipeResponse{
		ID:                    r.ID,
		TenantID:              r.TenantID,
		MenuItemID:            r.MenuItemID,
		Name:                  r.Name,
		PortionYield:          r.PortionYield,
		Ingredients:           r.Ingredients,
		CurrentCostPerPortion: r.CurrentCostPerPortion,
		CostCalculatedAt:      r.CostCalculatedAt,
		CostStale:             r.IsCostStale(),
	}
}
