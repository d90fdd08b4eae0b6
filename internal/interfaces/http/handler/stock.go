package handler

import (
	"net/http"

	appinventory "github.com/dinehub/backend/internal/application/inventory"
	"github.com/dinehub/backend/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockHandler exposes the ingredient stock actor over HTTP
type StockHandler struct {
	BaseHandler
}

// NewStockHandler creates a stock handler
func NewStockHandler(base BaseHandler) *StockHandler {
	return &StockHandler{BaseHandler: base}
}

// RegisterRoutes registers ingredient stock routes on the group
func (h *StockHandler) RegisterRoutes(r *gin.RouterGroup) {
	ingredients := r.Group("/ingredients")
	{
		ingredients.POST("", h.Create)
		ingredients.GET("/:id", h.Get)
		ingredients.POST("/:id/receive", h.Receive)
		ingredients.POST("/:id/adjust", h.Adjust)
		ingredients.PUT("/:id/price", h.SetPrice)
		ingredients.PUT("/:id/threshold", h.SetThreshold)
	}
}

// Create registers a new tracked ingredient
func (h *StockHandler) Create(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var cmd appinventory.CreateIngredientCommand
	if !bind(c, &cmd) {
		return
	}
	cmd.TenantID = tenant
	if cmd.IngredientID == uuid.Nil {
		cmd.IngredientID = uuid.New()
	}
	h.executeForTenant(c, tenant, inventory.AggregateTypeIngredientStock, cmd.IngredientID, cmd, http.StatusCreated)
}

// Get returns the current stock record
func (h *StockHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, inventory.AggregateTypeIngredientStock, id, appinventory.GetStockCommand{}, http.StatusOK)
}

// Receive books a delivery into stock at its unit cost
func (h *StockHandler) Receive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appinventory.ReceiveStockCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, inventory.AggregateTypeIngredientStock, id, cmd, http.StatusOK)
}

// Adjust corrects the on-hand quantity after a physical count
func (h *StockHandler) Adjust(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appinventory.AdjustStockCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, inventory.AggregateTypeIngredientStock, id, cmd, http.StatusOK)
}

// SetPrice updates the ingredient's unit cost
func (h *StockHandler) SetPrice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appinventory.SetPriceCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, inventory.AggregateTypeIngredientStock, id, cmd, http.StatusOK)
}

// SetThreshold updates the low-stock alert threshold
func (h *StockHandler) SetThreshold(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appinventory.SetThresholdCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, inventory.AggregateTypeIngredientStock, id, cmd, http.StatusOK)
}
