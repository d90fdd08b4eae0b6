package handler

import (
	"net/http"

	apployalty "github.com/dinehub/backend/internal/application/loyalty"
	"github.com/dinehub/backend/internal/domain/loyalty"
	"github.com/gin-gonic/gin"
)

// LoyaltyHandler exposes the customer spend projection actor over HTTP. The
// projection itself is fed by order events; the API covers initialization,
// reads, redemption, and tier configuration.
type LoyaltyHandler struct {
	BaseHandler
}

// NewLoyaltyHandler creates a loyalty handler
func NewLoyaltyHandler(base BaseHandler) *LoyaltyHandler {
	return &LoyaltyHandler{BaseHandler: base}
}

// RegisterRoutes registers loyalty routes on the group
func (h *LoyaltyHandler) RegisterRoutes(r *gin.RouterGroup) {
	accounts := r.Group("/loyalty/accounts")
	{
		accounts.POST("", h.Initialize)
		accounts.GET("/:id", h.Get)
		accounts.POST("/:id/redeem", h.Redeem)
		accounts.PUT("/:id/tiers", h.ConfigureTiers)
	}
}

// Initialize creates the spend projection for a customer
func (h *LoyaltyHandler) Initialize(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var cmd apployalty.InitializeAccountCommand
	if !bind(c, &cmd) {
		return
	}
	cmd.TenantID = tenant
	h.executeForTenant(c, tenant, loyalty.AggregateTypeCustomerSpendProjection, cmd.CustomerID, cmd, http.StatusCreated)
}

// Get returns the customer's spend and points snapshot
func (h *LoyaltyHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, loyalty.AggregateTypeCustomerSpendProjection, id, apployalty.GetSnapshotCommand{}, http.StatusOK)
}

// Redeem spends loyalty points against an order
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd apployalty.RedeemPointsCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, loyalty.AggregateTypeCustomerSpendProjection, id, cmd, http.StatusOK)
}

// ConfigureTiers replaces the account's tier table
func (h *LoyaltyHandler) ConfigureTiers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd apployalty.ConfigureTiersCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, loyalty.AggregateTypeCustomerSpendProjection, id, cmd, http.StatusOK)
}
