package alerting

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/domain/alerting"
	"github.com/dinehub/backend/internal/domain/inventory"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultCostSpikeRatio flags ingredient cost jumps of 25% or more
var DefaultCostSpikeRatio = decimal.NewFromFloat(0.25)

// OperationalAlertHandler watches the inventory namespace and raises alerts
// for conditions a manager should act on. Alerts are published straight back
// onto the fabric; they are notifications, not actor state, so a crash
// between consume and publish loses at most one alert.
type OperationalAlertHandler struct {
	publisher      shared.EventPublisher
	costSpikeRatio decimal.Decimal
	logger         *zap.Logger
}

// NewOperationalAlertHandler creates the alerting reactor
func NewOperationalAlertHandler(publisher shared.EventPublisher, logger *zap.Logger) *OperationalAlertHandler {
	return &OperationalAlertHandler{
		publisher:      publisher,
		costSpikeRatio: DefaultCostSpikeRatio,
		logger:         logger,
	}
}

// WithCostSpikeRatio overrides the relative cost increase that triggers a
// cost spike alert.
func (h *OperationalAlertHandler) WithCostSpikeRatio(ratio decimal.Decimal) *OperationalAlertHandler {
	h.costSpikeRatio = ratio
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *OperationalAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold, inventory.EventTypeIngredientCostChanged}
}

// Handle inspects one inventory event and raises alerts as needed
func (h *OperationalAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *inventory.StockBelowThresholdEvent:
		severity := alerting.SeverityWarning
		if !evt.QuantityOnHand.IsPositive() {
			severity = alerting.SeverityCritical
		}
		alert := alerting.NewAlertRaisedEvent(evt.TenantID(), alerting.CodeStockBelowThreshold, severity,
			fmt.Sprintf("Stock for %s is at %s, below the minimum of %s",
				evt.Name, evt.QuantityOnHand.String(), evt.MinQuantity.String()),
			evt.IngredientID, evt.EventID())
		return h.publisher.Publish(ctx, alert)

	case *inventory.IngredientCostChangedEvent:
		if !h.isSpike(evt.OldUnitCost, evt.NewUnitCost) {
			return nil
		}
		alert := alerting.NewAlertRaisedEvent(evt.TenantID(), alerting.CodeIngredientCostSpike, alerting.SeverityWarning,
			fmt.Sprintf("Ingredient unit cost jumped from %s to %s",
				evt.OldUnitCost.String(), evt.NewUnitCost.String()),
			evt.IngredientID, evt.EventID())
		return h.publisher.Publish(ctx, alert)

	default:
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}
}

// isSpike reports whether the cost increase meets the spike ratio. Cost
// decreases and moves from a zero baseline never alert.
func (h *OperationalAlertHandler) isSpike(oldCost, newCost decimal.Decimal) bool {
	if !oldCost.IsPositive() || newCost.LessThanOrEqual(oldCost) {
		return false
	}
	increase := newCost.Sub(oldCost).Div(oldCost)
	return increase.GreaterThanOrEqual(h.costSpikeRatio)
}
