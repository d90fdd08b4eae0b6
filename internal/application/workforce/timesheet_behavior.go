package workforce

import (
	"context"
	"fmt"
	"time"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/dinehub/backend/internal/domain/workforce"
	"github.com/google/uuid"
)

// Command types accepted by the timesheet actor
const (
	CmdCreateTimesheet = "workforce.create_timesheet"
	CmdClockIn         = "workforce.clock_in"
	CmdClockOut        = "workforce.clock_out"
	CmdApproveShift    = "workforce.approve_shift"
	CmdGetWorkedHours  = "workforce.get_worked_hours"
	CmdGetTimesheet    = "workforce.get_timesheet"
)

// CreateTimesheetCommand creates the timesheet addressed by the actor key
type CreateTimesheetCommand struct {
	TenantID     uuid.UUID `json:"tenant_id"`
	EmployeeID   uuid.UUID `json:"employee_id"`
	EmployeeName string    `json:"employee_name" binding:"required"`
}

func (c CreateTimesheetCommand) CommandType() string { return CmdCreateTimesheet }

// ClockInCommand opens a shift
type ClockInCommand struct {
	At time.Time `json:"at"`
}

func (c ClockInCommand) CommandType() string { return CmdClockIn }

// ClockOutCommand closes the open shift
type ClockOutCommand struct {
	At time.Time `json:"at"`
}

func (c ClockOutCommand) CommandType() string { return CmdClockOut }

// ApproveShiftCommand marks a closed shift as approved for payroll
type ApproveShiftCommand struct {
	ShiftID    uuid.UUID `json:"shift_id" binding:"required"`
	ApproverID uuid.UUID `json:"approver_id" binding:"required"`
}

func (c ApproveShiftCommand) CommandType() string { return CmdApproveShift }

// GetWorkedHoursCommand sums worked time over a window
type GetWorkedHoursCommand struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (c GetWorkedHoursCommand) CommandType() string { return CmdGetWorkedHours }

// GetTimesheetCommand returns the full timesheet state
type GetTimesheetCommand struct{}

func (c GetTimesheetCommand) CommandType() string { return CmdGetTimesheet }

// WorkedHoursResult is the response to GetWorkedHoursCommand
type WorkedHoursResult struct {
	Worked time.Duration `json:"worked"`
}

// TimesheetBehavior is the actor behavior for the EmployeeTimesheet aggregate
type TimesheetBehavior struct{}

// NewTimesheetBehavior creates a new timesheet behavior
func NewTimesheetBehavior() *TimesheetBehavior { return &TimesheetBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *TimesheetBehavior) ActorType() string { return workforce.AggregateTypeEmployeeTimesheet }

// NewState returns an empty timesheet state
func (b *TimesheetBehavior) NewState() any { return &workforce.EmployeeTimesheet{} }

// Handle applies one command to the timesheet
func (b *TimesheetBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	sheet, ok := state.(*workforce.EmployeeTimesheet)
	if !ok {
		return nil, fmt.Errorf("timesheet behavior: unexpected state type %T", state)
	}

	if c, ok := cmd.(CreateTimesheetCommand); ok {
		if sheet.ID != uuid.Nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Timesheet already exists")
		}
		created, err := workforce.NewEmployeeTimesheet(c.TenantID, c.EmployeeID, c.EmployeeName)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: created, State: created, Events: created.GetDomainEvents()}, nil
	}

	if sheet.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	switch c := cmd.(type) {
	case ClockInCommand:
		at := c.At
		if at.IsZero() {
			at = time.Now()
		}
		shift, err := sheet.ClockIn(at)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: shift, State: sheet, Events: sheet.GetDomainEvents()}, nil
	case ClockOutCommand:
		at := c.At
		if at.IsZero() {
			at = time.Now()
		}
		shift, err := sheet.ClockOut(at)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: shift, State: sheet, Events: sheet.GetDomainEvents()}, nil
	case ApproveShiftCommand:
		if err := sheet.ApproveShift(c.ShiftID, c.ApproverID); err != nil {
			return nil, err
		}
	case GetWorkedHoursCommand:
		return &actor.Outcome{Response: &WorkedHoursResult{Worked: sheet.WorkedBetween(c.From, c.To)}}, nil
	case GetTimesheetCommand:
		return &actor.Outcome{Response: sheet}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("timesheet actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: sheet, State: sheet, Events: sheet.GetDomainEvents()}, nil
}
