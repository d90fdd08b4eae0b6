package handler

import (
	"net/http"

	appgiftcard "github.com/dinehub/backend/internal/application/giftcard"
	"github.com/dinehub/backend/internal/domain/giftcard"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GiftCardHandler exposes the gift card actor over HTTP
type GiftCardHandler struct {
	BaseHandler
}

// NewGiftCardHandler creates a gift card handler
func NewGiftCardHandler(base BaseHandler) *GiftCardHandler {
	return &GiftCardHandler{BaseHandler: base}
}

// RegisterRoutes registers gift card routes on the group
func (h *GiftCardHandler) RegisterRoutes(r *gin.RouterGroup) {
	cards := r.Group("/giftcards")
	{
		cards.POST("", h.Issue)
		cards.GET("/:id", h.Get)
		cards.POST("/:id/reload", h.Reload)
		cards.POST("/:id/redeem", h.Redeem)
		cards.POST("/:id/deactivate", h.Deactivate)
	}
}

// Issue issues a new gift card
func (h *GiftCardHandler) Issue(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var cmd appgiftcard.IssueCardCommand
	if !bind(c, &cmd) {
		return
	}
	cmd.TenantID = tenant
	cmd.CardID = uuid.New()
	h.executeForTenant(c, tenant, giftcard.AggregateTypeGiftCard, cmd.CardID, cmd, http.StatusCreated)
}

// Get returns the card state and balance
func (h *GiftCardHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, giftcard.AggregateTypeGiftCard, id, appgiftcard.GetCardCommand{}, http.StatusOK)
}

// Reload adds funds to the card
func (h *GiftCardHandler) Reload(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appgiftcard.ReloadCardCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, giftcard.AggregateTypeGiftCard, id, cmd, http.StatusOK)
}

// Redeem spends card balance against an order
func (h *GiftCardHandler) Redeem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appgiftcard.RedeemCardCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, giftcard.AggregateTypeGiftCard, id, cmd, http.StatusOK)
}

// Deactivate blocks further use of the card
func (h *GiftCardHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, giftcard.AggregateTypeGiftCard, id, appgiftcard.DeactivateCardCommand{}, http.StatusOK)
}
