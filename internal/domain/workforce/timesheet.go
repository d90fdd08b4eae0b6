package workforce

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Shift is one clock-in/clock-out pair. An open shift has no end time.
type Shift struct {
	ID         uuid.UUID  `json:"id"`
	ClockIn    time.Time  `json:"clock_in"`
	ClockOut   *time.Time `json:"clock_out,omitempty"`
	Approved   bool       `json:"approved"`
	ApprovedBy *uuid.UUID `json:"approved_by,omitempty"`
}

// IsOpen reports whether the shift has not been clocked out yet
func (s *Shift) IsOpen() bool {
	return s.ClockOut == nil
}

// Duration returns the worked time of a closed shift
func (s *Shift) Duration() time.Duration {
	if s.ClockOut == nil {
		return 0
	}
	return s.ClockOut.Sub(s.ClockIn)
}

// EmployeeTimesheet is the aggregate root for one employee's time tracking.
// The employee ID doubles as the aggregate identity.
type EmployeeTimesheet struct {
	shared.TenantAggregateRoot
	EmployeeName string  `json:"employee_name"`
	Shifts       []Shift `json:"shifts"`
}

// NewEmployeeTimesheet creates a timesheet for an employee
func NewEmployeeTimesheet(tenantID, employeeID uuid.UUID, employeeName string) (*EmployeeTimesheet, error) {
	if employeeName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Employee name cannot be empty")
	}
	return &EmployeeTimesheet{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithID(tenantID, employeeID),
		EmployeeName:        employeeName,
		Shifts:              make([]Shift, 0),
	}, nil
}

// OpenShift returns the currently open shift, if any
func (t *EmployeeTimesheet) OpenShift() *Shift {
	for i := range t.Shifts {
		if t.Shifts[i].IsOpen() {
			return &t.Shifts[i]
		}
	}
	return nil
}

// ClockIn opens a new shift. An already-open shift or an overlap with a
// recorded shift is rejected.
func (t *EmployeeTimesheet) ClockIn(at time.Time) (*Shift, error) {
	if t.OpenShift() != nil {
		return nil, shared.NewDomainError("SHIFT_OPEN", "Employee is already clocked in")
	}
	for i := range t.Shifts {
		if t.Shifts[i].ClockOut != nil && at.Before(*t.Shifts[i].ClockOut) && t.Shifts[i].ClockIn.Before(at) {
			return nil, shared.NewDomainError("SHIFT_OVERLAP", "Clock-in overlaps a recorded shift")
		}
	}

	shift := Shift{ID: uuid.New(), ClockIn: at}
	t.Shifts = append(t.Shifts, shift)
	t.UpdatedAt = time.Now()

	t.AddDomainEvent(NewEmployeeClockedInEvent(t, &shift))
	return &shift, nil
}

// ClockOut closes the open shift
func (t *EmployeeTimesheet) ClockOut(at time.Time) (*Shift, error) {
	open := t.OpenShift()
	if open == nil {
		return nil, shared.NewDomainError("NO_OPEN_SHIFT", "Employee is not clocked in")
	}
	if !at.After(open.ClockIn) {
		return nil, shared.NewDomainError("INVALID_CLOCK_OUT", "Clock-out must be after clock-in")
	}

	open.ClockOut = &at
	t.UpdatedAt = time.Now()

	t.AddDomainEvent(NewEmployeeClockedOutEvent(t, open))
	return open, nil
}

// ApproveShift marks a closed shift as approved by a manager
func (t *EmployeeTimesheet) ApproveShift(shiftID, approverID uuid.UUID) error {
	var shift *Shift
	for i := range t.Shifts {
		if t.Shifts[i].ID == shiftID {
			shift = &t.Shifts[i]
			break
		}
	}
	if shift == nil {
		return shared.NewDomainError("SHIFT_NOT_FOUND", "Shift not found")
	}
	if shift.IsOpen() {
		return shared.NewDomainError("SHIFT_OPEN", "Cannot approve an open shift")
	}
	if shift.Approved {
		return nil
	}

	shift.Approved = true
	shift.ApprovedBy = &approverID
	t.UpdatedAt = time.Now()

	t.AddDomainEvent(NewShiftApprovedEvent(t, shift))
	return nil
}

// WorkedBetween sums closed-shift durations that started within [from, to)
func (t *EmployeeTimesheet) WorkedBetween(from, to time.Time) time.Duration {
	var total time.Duration
	for i := range t.Shifts {
		s := &t.Shifts[i]
		if s.ClockOut == nil {
			continue
		}
		if !s.ClockIn.Before(from) && s.ClockIn.Before(to) {
			total += s.Duration()
		}
	}
	return total
}
