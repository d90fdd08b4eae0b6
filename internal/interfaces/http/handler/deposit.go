package handler

import (
	"net/http"

	appbooking "github.com/dinehub/backend/internal/application/booking"
	"github.com/dinehub/backend/internal/domain/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DepositHandler exposes the booking deposit actor over HTTP
type DepositHandler struct {
	BaseHandler
}

// NewDepositHandler creates a booking deposit handler
func NewDepositHandler(base BaseHandler) *DepositHandler {
	return &DepositHandler{BaseHandler: base}
}

// RegisterRoutes registers deposit routes on the group
func (h *DepositHandler) RegisterRoutes(r *gin.RouterGroup) {
	deposits := r.Group("/deposits")
	{
		deposits.POST("", h.Hold)
		deposits.GET("/:id", h.Get)
		deposits.POST("/:id/apply", h.Apply)
		deposits.POST("/:id/refund", h.Refund)
		deposits.POST("/:id/forfeit", h.Forfeit)
	}
}

// Hold takes a deposit against a booking
func (h *DepositHandler) Hold(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var cmd appbooking.HoldDepositCommand
	if !bind(c, &cmd) {
		return
	}
	cmd.TenantID = tenant
	cmd.DepositID = uuid.New()
	h.executeForTenant(c, tenant, booking.AggregateTypeBookingDeposit, cmd.DepositID, cmd, http.StatusCreated)
}

// Get returns the deposit state
func (h *DepositHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, booking.AggregateTypeBookingDeposit, id, appbooking.GetDepositCommand{}, http.StatusOK)
}

// Apply credits the deposit against an order when the party shows up
func (h *DepositHandler) Apply(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appbooking.ApplyDepositCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, booking.AggregateTypeBookingDeposit, id, cmd, http.StatusOK)
}

// Refund returns the deposit after a timely cancellation
func (h *DepositHandler) Refund(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, booking.AggregateTypeBookingDeposit, id, appbooking.RefundDepositCommand{}, http.StatusOK)
}

// Forfeit keeps the deposit after a no-show
func (h *DepositHandler) Forfeit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, booking.AggregateTypeBookingDeposit, id, appbooking.ForfeitDepositCommand{}, http.StatusOK)
}
