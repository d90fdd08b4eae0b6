package workforce

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeEmployeeTimesheet = "EmployeeTimesheet"

// Event type constants
const (
	EventTypeEmployeeClockedIn  = "EmployeeClockedIn"
	EventTypeEmployeeClockedOut = "EmployeeClockedOut"
	EventTypeShiftApproved      = "ShiftApproved"
)

// EmployeeClockedInEvent is raised when a shift opens
type EmployeeClockedInEvent struct {
	shared.BaseDomainEvent
	EmployeeID uuid.UUID `json:"employee_id"`
	ShiftID    uuid.UUID `json:"shift_id"`
	ClockIn    time.Time `json:"clock_in"`
}

// NewEmployeeClockedInEvent creates a new EmployeeClockedInEvent
func NewEmployeeClockedInEvent(t *EmployeeTimesheet, shift *Shift) *EmployeeClockedInEvent {
	return &EmployeeClockedInEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmployeeClockedIn, shared.NamespaceEmployee, AggregateTypeEmployeeTimesheet, t.ID, t.TenantID),
		EmployeeID:      t.ID,
		ShiftID:         shift.ID,
		ClockIn:         shift.ClockIn,
	}
}

// EmployeeClockedOutEvent is raised when a shift closes
type EmployeeClockedOutEvent struct {
	shared.BaseDomainEvent
	EmployeeID    uuid.UUID     `json:"employee_id"`
	ShiftID       uuid.UUID     `json:"shift_id"`
	ClockIn       time.Time     `json:"clock_in"`
	ClockOut      time.Time     `json:"clock_out"`
	ShiftDuration time.Duration `json:"shift_duration"`
}

// NewEmployeeClockedOutEvent creates a new EmployeeClockedOutEvent
func NewEmployeeClockedOutEvent(t *EmployeeTimesheet, shift *Shift) *EmployeeClockedOutEvent {
	return &EmployeeClockedOutEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmployeeClockedOut, shared.NamespaceEmployee, AggregateTypeEmployeeTimesheet, t.ID, t.TenantID),
		EmployeeID:      t.ID,
		ShiftID:         shift.ID,
		ClockIn:         shift.ClockIn,
		ClockOut:        *shift.ClockOut,
		ShiftDuration:   shift.Duration(),
	}
}

// ShiftApprovedEvent is raised when a manager approves a closed shift
type ShiftApprovedEvent struct {
	shared.BaseDomainEvent
	EmployeeID uuid.UUID `json:"employee_id"`
	ShiftID    uuid.UUID `json:"shift_id"`
	ApprovedBy uuid.UUID `json:"approved_by"`
}

// NewShiftApprovedEvent creates a new ShiftApprovedEvent
func NewShiftApprovedEvent(t *EmployeeTimesheet, shift *Shift) *ShiftApprovedEvent {
	return &ShiftApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShiftApproved, shared.NamespaceEmployee, AggregateTypeEmployeeTimesheet, t.ID, t.TenantID),
		EmployeeID:      t.ID,
		ShiftID:         shift.ID,
		ApprovedBy:      *shift.ApprovedBy,
	}
}
