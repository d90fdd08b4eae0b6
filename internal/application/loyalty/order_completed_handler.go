package loyalty

import (
	"context"
	"errors"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/loyalty"
	"github.com/dinehub/backend/internal/domain/ordering"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderCompletedHandler feeds settled and refunded orders into the customer
// spend projection. A guest order (nil customer) is skipped. The dispatched
// commands carry the source event ID, so at-least-once redelivery is absorbed
// by the loyalty actor.
type OrderCompletedHandler struct {
	dispatcher actor.Dispatcher
	logger     *zap.Logger
}

// NewOrderCompletedHandler creates the loyalty reactor
func NewOrderCompletedHandler(dispatcher actor.Dispatcher, logger *zap.Logger) *OrderCompletedHandler {
	return &OrderCompletedHandler{dispatcher: dispatcher, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderCompletedHandler) EventTypes() []string {
	return []string{ordering.EventTypeOrderCompleted, ordering.EventTypeOrderRefunded}
}

// Handle processes one order namespace event
func (h *OrderCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *ordering.OrderCompletedEvent:
		if evt.CustomerID == uuid.Nil {
			return nil
		}
		cmd := RecordSpendCommand{
			EventID:        evt.EventID(),
			OrderID:        evt.OrderID,
			NetSpend:       evt.NetAmount,
			GrossSpend:     evt.GrossAmount,
			DiscountAmount: evt.DiscountAmount,
			ItemCount:      evt.ItemCount,
			Date:           evt.CompletedAt,
		}
		return h.dispatch(ctx, evt.TenantID(), evt.CustomerID, cmd)

	case *ordering.OrderRefundedEvent:
		if evt.CustomerID == uuid.Nil {
			return nil
		}
		cmd := ReverseSpendCommand{
			EventID: evt.EventID(),
			OrderID: evt.OrderID,
			Amount:  evt.Amount,
			Reason:  evt.Reason,
		}
		return h.dispatch(ctx, evt.TenantID(), evt.CustomerID, cmd)

	default:
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}
}

func (h *OrderCompletedHandler) dispatch(ctx context.Context, tenantID, customerID uuid.UUID, cmd actor.Command) error {
	key := actor.NewKey(tenantID, loyalty.AggregateTypeCustomerSpendProjection, customerID)
	_, _, err := h.dispatcher.Dispatch(ctx, key, cmd)
	var notFound *shared.DomainError
	if errors.As(err, &notFound) && notFound.Code == "NOT_FOUND" {
		// Customer was never enrolled: initialize lazily, then replay.
		if _, _, ierr := h.dispatcher.Dispatch(ctx, key, InitializeAccountCommand{TenantID: tenantID, CustomerID: customerID}); ierr != nil {
			return fmt.Errorf("initialize loyalty account %s: %w", customerID, ierr)
		}
		_, _, err = h.dispatcher.Dispatch(ctx, key, cmd)
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == "ORDER_NOT_RECORDED" {
		// A reversal for an order this projection never saw cannot be fixed
		// by redelivery; drop it rather than wedge the subscription.
		h.logger.Warn("skipping reversal for unrecorded order",
			zap.String("customer_id", customerID.String()))
		return nil
	}
	if err != nil {
		h.logger.Warn("loyalty dispatch failed",
			zap.String("customer_id", customerID.String()),
			zap.String("command", cmd.CommandType()),
			zap.Error(err))
	}
	return err
}
