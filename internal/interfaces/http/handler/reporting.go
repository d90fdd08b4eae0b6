package handler

import (
	"net/http"
	"time"

	appaccounting "github.com/dinehub/backend/internal/application/accounting"
	appsales "github.com/dinehub/backend/internal/application/sales"
	"github.com/dinehub/backend/internal/domain/accounting"
	"github.com/dinehub/backend/internal/domain/sales"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

var errInvalidDay = shared.NewDomainError("VALIDATION_ERROR",
	"Path parameter day must be formatted as 2006-01-02")

// ReportingHandler reads the per-day sales and accounting actors. Day actors
// are addressed by (tenant, day); the day in the path picks the actor.
type ReportingHandler struct {
	BaseHandler
}

// NewReportingHandler creates a reporting handler
func NewReportingHandler(base BaseHandler) *ReportingHandler {
	return &ReportingHandler{BaseHandler: base}
}

// RegisterRoutes registers sales and accounting routes on the group
func (h *ReportingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/sales/days/:day", h.DaySales)
	r.GET("/accounting/journal/:day", h.Journal)
	r.GET("/accounting/trial-balance/:day", h.TrialBalance)
}

func pathDay(c *gin.Context) (time.Time, bool) {
	day, err := time.Parse("2006-01-02", c.Param("day"))
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// DaySales returns one day's sales totals
func (h *ReportingHandler) DaySales(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	day, ok := pathDay(c)
	if !ok {
		h.respondError(c, errInvalidDay)
		return
	}
	dayID, _ := appsales.DayKeyFor(tenant, day)
	h.executeForTenant(c, tenant, sales.AggregateTypeSalesDay, dayID, appsales.GetDaySalesCommand{}, http.StatusOK)
}

// Journal returns one day's journal entries
func (h *ReportingHandler) Journal(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	day, ok := pathDay(c)
	if !ok {
		h.respondError(c, errInvalidDay)
		return
	}
	journalID, _ := appaccounting.JournalKeyFor(tenant, day)
	h.executeForTenant(c, tenant, accounting.AggregateTypeJournalDay, journalID, appaccounting.GetJournalCommand{}, http.StatusOK)
}

// TrialBalance returns one day's per-account balance
func (h *ReportingHandler) TrialBalance(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	day, ok := pathDay(c)
	if !ok {
		h.respondError(c, errInvalidDay)
		return
	}
	journalID, _ := appaccounting.JournalKeyFor(tenant, day)
	h.executeForTenant(c, tenant, accounting.AggregateTypeJournalDay, journalID, appaccounting.GetTrialBalanceCommand{}, http.StatusOK)
}
