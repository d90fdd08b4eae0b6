package handler

import (
	"net/http"
	"strconv"

	appcosting "github.com/dinehub/backend/internal/application/costing"
	"github.com/dinehub/backend/internal/domain/costing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RecipeHandler exposes the recipe costing actor over HTTP
type RecipeHandler struct {
	BaseHandler
}

// NewRecipeHandler creates a recipe handler
func NewRecipeHandler(base BaseHandler) *RecipeHandler {
	return &RecipeHandler{BaseHandler: base}
}

// RegisterRoutes registers recipe routes on the group
func (h *RecipeHandler) RegisterRoutes(r *gin.RouterGroup) {
	recipes := r.Group("/recipes")
	{
		recipes.POST("", h.Create)
		recipes.GET("/:id", h.Get)
		recipes.PUT("/:id", h.Update)
		recipes.POST("/:id/ingredients", h.AddIngredient)
		recipes.PUT("/:id/ingredients", h.UpdateIngredient)
		recipes.DELETE("/:id/ingredients/:ingredientId", h.RemoveIngredient)
		recipes.POST("/:id/cost", h.CalculateCost)
		recipes.POST("/:id/snapshots", h.CreateSnapshot)
		recipes.GET("/:id/history", h.CostHistory)
	}
}

// Create creates a new recipe for a menu item
func (h *RecipeHandler) Create(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var cmd appcosting.CreateRecipeCommand
	if !bind(c, &cmd) {
		return
	}
	cmd.TenantID = tenant
	cmd.RecipeID = uuid.New()
	h.executeForTenant(c, tenant, costing.AggregateTypeRecipe, cmd.RecipeID, cmd, http.StatusCreated)
}

// Get returns the recipe with its current cost
func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, costing.AggregateTypeRecipe, id, appcosting.GetRecipeCommand{}, http.StatusOK)
}

// Update changes the recipe name and portion yield
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appcosting.UpdateRecipeCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, costing.AggregateTypeRecipe, id, cmd, http.StatusOK)
}

// AddIngredient adds a costed line to the recipe
func (h *RecipeHandler) AddIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appcosting.AddIngredientCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, costing.AggregateTypeRecipe, id, cmd, http.StatusOK)
}

// UpdateIngredient replaces the quantity, waste, and cost of a line
func (h *RecipeHandler) UpdateIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appcosting.UpdateIngredientCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, costing.AggregateTypeRecipe, id, cmd, http.StatusOK)
}

// RemoveIngredient drops a line from the recipe
func (h *RecipeHandler) RemoveIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := pathID(c, "ingredientId")
	if !ok {
		return
	}
	cmd := appcosting.RemoveIngredientCommand{IngredientID: ingredientID}
	h.execute(c, costing.AggregateTypeRecipe, id, cmd, http.StatusOK)
}

// CalculateCost computes the cost breakdown, optionally against a menu price
func (h *RecipeHandler) CalculateCost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appcosting.CalculateCostCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, costing.AggregateTypeRecipe, id, cmd, http.StatusOK)
}

// CreateSnapshot freezes the current cost into the recipe's history
func (h *RecipeHandler) CreateSnapshot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appcosting.CreateCostSnapshotCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, costing.AggregateTypeRecipe, id, cmd, http.StatusCreated)
}

// CostHistory returns the most recent cost snapshots
func (h *RecipeHandler) CostHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	count, _ := strconv.Atoi(c.DefaultQuery("count", "0"))
	h.execute(c, costing.AggregateTypeRecipe, id, appcosting.GetCostHistoryCommand{Count: count}, http.StatusOK)
}
