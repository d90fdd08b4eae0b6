package alerting

import (
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant. Alerts are notifications, not persisted actor
// state; the aggregate type only labels the event envelope.
const AggregateTypeAlert = "Alert"

// Event type constant
const EventTypeAlertRaised = "AlertRaised"

// Severity grades an alert
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Alert codes raised by the operational monitors
const (
	CodeStockBelowThreshold = "STOCK_BELOW_THRESHOLD"
	CodeIngredientCostSpike = "INGREDIENT_COST_SPIKE"
)

// AlertRaisedEvent is published on the alert namespace for notification
// channels to pick up. SourceEventID points at the event that triggered the
// alert so consumers can deduplicate redeliveries.
type AlertRaisedEvent struct {
	shared.BaseDomainEvent
	AlertID       uuid.UUID `json:"alert_id"`
	Code          string    `json:"code"`
	Severity      Severity  `json:"severity"`
	Message       string    `json:"message"`
	SubjectID     uuid.UUID `json:"subject_id"`
	SourceEventID uuid.UUID `json:"source_event_id"`
}

// NewAlertRaisedEvent creates a new AlertRaisedEvent
func NewAlertRaisedEvent(tenantID uuid.UUID, code string, severity Severity, message string, subjectID, sourceEventID uuid.UUID) *AlertRaisedEvent {
	alertID := uuid.New()
	return &AlertRaisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAlertRaised, shared.NamespaceAlert, AggregateTypeAlert, alertID, tenantID),
		AlertID:         alertID,
		Code:            code,
		Severity:        severity,
		Message:         message,
		SubjectID:       subjectID,
		SourceEventID:   sourceEventID,
	}
}
