package handler

import (
	"net/http"
	"time"

	appgateway "github.com/dinehub/backend/internal/application/gateway"
	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GatewayHandler exposes the payment gateway actors over HTTP: merchants and
// their API keys, card terminals, refunds, and webhook endpoints.
type GatewayHandler struct {
	BaseHandler
	heartbeatStaleness time.Duration
	defaultRingSize    int
}

// NewGatewayHandler creates a gateway handler. heartbeatStaleness is how old
// the last heartbeat may be before a terminal reports offline;
// defaultRingSize is the delivery history kept for endpoints that do not ask
// for a specific depth.
func NewGatewayHandler(base BaseHandler, heartbeatStaleness time.Duration, defaultRingSize int) *GatewayHandler {
	return &GatewayHandler{BaseHandler: base, heartbeatStaleness: heartbeatStaleness, defaultRingSize: defaultRingSize}
}

// RegisterRoutes registers gateway routes on the group
func (h *GatewayHandler) RegisterRoutes(r *gin.RouterGroup) {
	merchants := r.Group("/merchants")
	{
		merchants.POST("", h.CreateMerchant)
		merchants.GET("/:id", h.GetMerchant)
		merchants.POST("/:id/suspend", h.SuspendMerchant)
		merchants.POST("/:id/reactivate", h.ReactivateMerchant)
		merchants.POST("/:id/keys", h.CreateAPIKey)
		merchants.POST("/:id/keys/revoke", h.RevokeAPIKey)
		merchants.POST("/:id/keys/roll", h.RollAPIKey)
	}

	terminals := r.Group("/terminals")
	{
		terminals.POST("", h.RegisterTerminal)
		terminals.GET("/:id", h.GetTerminalStatus)
		terminals.POST("/:id/heartbeat", h.Heartbeat)
	}

	refunds := r.Group("/refunds")
	{
		refunds.POST("", h.RequestRefund)
		refunds.GET("/:id", h.GetRefund)
		refunds.POST("/:id/cancel", h.CancelRefund)
	}

	endpoints := r.Group("/webhook-endpoints")
	{
		endpoints.POST("", h.RegisterEndpoint)
		endpoints.GET("/:id", h.GetEndpoint)
		endpoints.PUT("/:id/events", h.SetEnabledEvents)
		endpoints.POST("/:id/enable", h.EnableEndpoint)
		endpoints.POST("/:id/disable", h.DisableEndpoint)
	}
}

// CreateMerchant onboards a merchant
func (h *GatewayHandler) CreateMerchant(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var cmd appgateway.CreateMerchantCommand
	if !bind(c, &cmd) {
		return
	}
	cmd.TenantID = tenant
	cmd.MerchantID = uuid.New()
	h.executeForTenant(c, tenant, gateway.AggregateTypeMerchant, cmd.MerchantID, cmd, http.StatusCreated)
}

// GetMerchant returns the merchant with its key metadata
func (h *GatewayHandler) GetMerchant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, gateway.AggregateTypeMerchant, id, appgateway.GetMerchantCommand{}, http.StatusOK)
}

// SuspendMerchant blocks the merchant's processing
func (h *GatewayHandler) SuspendMerchant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appgateway.SuspendMerchantCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, gateway.AggregateTypeMerchant, id, cmd, http.StatusOK)
}

// ReactivateMerchant lifts a suspension
func (h *GatewayHandler) ReactivateMerchant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, gateway.AggregateTypeMerchant, id, appgateway.ReactivateMerchantCommand{}, http.StatusOK)
}

// CreateAPIKey mints an API key; the raw secret appears in this response only
func (h *GatewayHandler) CreateAPIKey(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appgateway.CreateAPIKeyCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, gateway.AggregateTypeMerchant, id, cmd, http.StatusCreated)
}

// RevokeAPIKey permanently disables a key
func (h *GatewayHandler) RevokeAPIKey(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appgateway.RevokeAPIKeyCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, gateway.AggregateTypeMerchant, id, cmd, http.StatusOK)
}

// RollAPIKey replaces a key's secret, keeping its identity
func (h *GatewayHandler) RollAPIKey(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appgateway.RollAPIKeyCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, gateway.AggregateTypeMerchant, id, cmd, http.StatusOK)
}

// RegisterTerminal registers a physical card terminal
func (h *GatewayHandler) RegisterTerminal(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var cmd appgateway.RegisterTerminalCommand
	if !bind(c, &cmd) {
		return
	}
	cmd.TenantID = tenant
	cmd.TerminalID = uuid.New()
	h.executeForTenant(c, tenant, gateway.AggregateTypeTerminal, cmd.TerminalID, cmd, http.StatusCreated)
}

// GetTerminalStatus reports the terminal's liveness from its last heartbeat
func (h *GatewayHandler) GetTerminalStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cmd := appgateway.GetTerminalStatusCommand{Staleness: h.heartbeatStaleness}
	h.execute(c, gateway.AggregateTypeTerminal, id, cmd, http.StatusOK)
}

// Heartbeat records a terminal check-in
func (h *GatewayHandler) Heartbeat(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cmd := appgateway.TerminalHeartbeatCommand{At: time.Now()}
	h.execute(c, gateway.AggregateTypeTerminal, id, cmd, http.StatusOK)
}

// RequestRefund opens a refund against a captured payment
func (h *GatewayHandler) RequestRefund(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var cmd appgateway.RequestRefundCommand
	if !bind(c, &cmd) {
		return
	}
	cmd.TenantID = tenant
	cmd.RefundID = uuid.New()
	h.executeForTenant(c, tenant, gateway.AggregateTypeRefund, cmd.RefundID, cmd, http.StatusCreated)
}

// GetRefund returns the refund state
func (h *GatewayHandler) GetRefund(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, gateway.AggregateTypeRefund, id, appgateway.GetRefundCommand{}, http.StatusOK)
}

// CancelRefund withdraws a refund that has not reached the processor
func (h *GatewayHandler) CancelRefund(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appgateway.CancelRefundCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, gateway.AggregateTypeRefund, id, cmd, http.StatusOK)
}

// RegisterEndpoint registers a webhook delivery target
func (h *GatewayHandler) RegisterEndpoint(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var cmd appgateway.RegisterEndpointCommand
	if !bind(c, &cmd) {
		return
	}
	cmd.TenantID = tenant
	cmd.EndpointID = uuid.New()
	if cmd.RingSize == 0 {
		cmd.RingSize = h.defaultRingSize
	}
	h.executeForTenant(c, tenant, gateway.AggregateTypeWebhookEndpoint, cmd.EndpointID, cmd, http.StatusCreated)
}

// GetEndpoint returns the endpoint with its recent delivery history
func (h *GatewayHandler) GetEndpoint(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, gateway.AggregateTypeWebhookEndpoint, id, appgateway.GetEndpointCommand{}, http.StatusOK)
}

// SetEnabledEvents replaces the endpoint's event subscription list
func (h *GatewayHandler) SetEnabledEvents(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appgateway.SetEnabledEventsCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, gateway.AggregateTypeWebhookEndpoint, id, cmd, http.StatusOK)
}

// EnableEndpoint turns delivery on
func (h *GatewayHandler) EnableEndpoint(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, gateway.AggregateTypeWebhookEndpoint, id, appgateway.EnableEndpointCommand{}, http.StatusOK)
}

// DisableEndpoint turns delivery off
func (h *GatewayHandler) DisableEndpoint(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, gateway.AggregateTypeWebhookEndpoint, id, appgateway.DisableEndpointCommand{}, http.StatusOK)
}
