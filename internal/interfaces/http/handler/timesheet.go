package handler

import (
	"net/http"
	"time"

	appworkforce "github.com/dinehub/backend/internal/application/workforce"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/dinehub/backend/internal/domain/workforce"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errInvalidPeriod = shared.NewDomainError("VALIDATION_ERROR",
	"Query parameters from and to must be RFC3339 timestamps")

// TimesheetHandler exposes the employee timesheet actor over HTTP
type TimesheetHandler struct {
	BaseHandler
}

// NewTimesheetHandler creates a timesheet handler
func NewTimesheetHandler(base BaseHandler) *TimesheetHandler {
	return &TimesheetHandler{BaseHandler: base}
}

// RegisterRoutes registers timesheet routes on the group
func (h *TimesheetHandler) RegisterRoutes(r *gin.RouterGroup) {
	timesheets := r.Group("/timesheets")
	{
		timesheets.POST("", h.Create)
		timesheets.GET("/:id", h.Get)
		timesheets.POST("/:id/clock-in", h.ClockIn)
		timesheets.POST("/:id/clock-out", h.ClockOut)
		timesheets.POST("/:id/approve", h.ApproveShift)
		timesheets.GET("/:id/hours", h.WorkedHours)
	}
}

// Create opens a timesheet for an employee
func (h *TimesheetHandler) Create(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var cmd appworkforce.CreateTimesheetCommand
	if !bind(c, &cmd) {
		return
	}
	cmd.TenantID = tenant
	if cmd.EmployeeID == uuid.Nil {
		cmd.EmployeeID = uuid.New()
	}
	h.executeForTenant(c, tenant, workforce.AggregateTypeEmployeeTimesheet, cmd.EmployeeID, cmd, http.StatusCreated)
}

// Get returns the timesheet with its shifts
func (h *TimesheetHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.execute(c, workforce.AggregateTypeEmployeeTimesheet, id, appworkforce.GetTimesheetCommand{}, http.StatusOK)
}

// ClockIn opens a shift
func (h *TimesheetHandler) ClockIn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appworkforce.ClockInCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, workforce.AggregateTypeEmployeeTimesheet, id, cmd, http.StatusOK)
}

// ClockOut closes the open shift
func (h *TimesheetHandler) ClockOut(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appworkforce.ClockOutCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, workforce.AggregateTypeEmployeeTimesheet, id, cmd, http.StatusOK)
}

// ApproveShift marks a closed shift as approved for payroll
func (h *TimesheetHandler) ApproveShift(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cmd appworkforce.ApproveShiftCommand
	if !bind(c, &cmd) {
		return
	}
	h.execute(c, workforce.AggregateTypeEmployeeTimesheet, id, cmd, http.StatusOK)
}

// WorkedHours sums approved hours over a period
func (h *TimesheetHandler) WorkedHours(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		h.respondError(c, errInvalidPeriod)
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		h.respondError(c, errInvalidPeriod)
		return
	}
	cmd := appworkforce.GetWorkedHoursCommand{From: from, To: to}
	h.execute(c, workforce.AggregateTypeEmployeeTimesheet, id, cmd, http.StatusOK)
}
