package sales

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/ordering"
	"github.com/dinehub/backend/internal/domain/sales"
	"github.com/dinehub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SalesAggregationHandler folds settled and refunded orders into the
// per-(tenant, day) sales accumulator. Refunds land on the day they are
// issued, not the day of the original order.
type SalesAggregationHandler struct {
	dispatcher actor.Dispatcher
	logger     *zap.Logger
}

// NewSalesAggregationHandler creates the sales aggregation reactor
func NewSalesAggregationHandler(dispatcher actor.Dispatcher, logger *zap.Logger) *SalesAggregationHandler {
	return &SalesAggregationHandler{dispatcher: dispatcher, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SalesAggregationHandler) EventTypes() []string {
	return []string{ordering.EventTypeOrderCompleted, ordering.EventTypeOrderRefunded}
}

// Handle processes one order namespace event
func (h *SalesAggregationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *ordering.OrderCompletedEvent:
		entityID, dayKey := DayKeyFor(evt.TenantID(), evt.CompletedAt)
		cmd := RecordOrderCommand{
			EventID:   evt.EventID(),
			TenantID:  evt.TenantID(),
			Day:       dayKey,
			OrderID:   evt.OrderID,
			Net:       evt.NetAmount,
			Gross:     evt.GrossAmount,
			Discount:  evt.DiscountAmount,
			ItemCount: evt.ItemCount,
		}
		key := actor.NewKey(evt.TenantID(), sales.AggregateTypeSalesDay, entityID)
		_, _, err := h.dispatcher.Dispatch(ctx, key, cmd)
		return err

	case *ordering.OrderRefundedEvent:
		entityID, dayKey := DayKeyFor(evt.TenantID(), evt.OccurredAt())
		cmd := RecordRefundCommand{
			EventID:  evt.EventID(),
			TenantID: evt.TenantID(),
			Day:      dayKey,
			OrderID:  evt.OrderID,
			Amount:   evt.Amount,
		}
		key := actor.NewKey(evt.TenantID(), sales.AggregateTypeSalesDay, entityID)
		_, _, err := h.dispatcher.Dispatch(ctx, key, cmd)
		return err

	default:
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}
}
