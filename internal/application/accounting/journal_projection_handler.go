package accounting

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/accounting"
	"github.com/dinehub/backend/internal/domain/booking"
	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/dinehub/backend/internal/domain/sales"
	"github.com/dinehub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// JournalProjectionHandler turns revenue-moving events into balanced journal
// entries on the per-(tenant, day) journal actor. Entries land on the day the
// event occurred. The journal's own posted events are not subscribed, so the
// projection cannot feed itself.
type JournalProjectionHandler struct {
	dispatcher actor.Dispatcher
	logger     *zap.Logger
}

// NewJournalProjectionHandler creates the journal projection reactor
func NewJournalProjectionHandler(dispatcher actor.Dispatcher, logger *zap.Logger) *JournalProjectionHandler {
	return &JournalProjectionHandler{dispatcher: dispatcher, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *JournalProjectionHandler) EventTypes() []string {
	return []string{
		sales.EventTypeDailySalesUpdated,
		gateway.EventTypeRefundResolved,
		booking.EventTypeDepositHeld,
		booking.EventTypeDepositResolved,
	}
}

// Handle journals one revenue-moving event
func (h *JournalProjectionHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *sales.DailySalesUpdatedEvent:
		return h.post(ctx, evt, "order settled", []accounting.JournalLine{
			accounting.DebitLine(accounting.AccountCash, evt.OrderNet),
			accounting.CreditLine(accounting.AccountSalesRevenue, evt.OrderNet),
		})

	case *gateway.RefundResolvedEvent:
		// Failed and cancelled refunds never move money.
		if evt.Status != gateway.RefundStatusSucceeded {
			return nil
		}
		return h.post(ctx, evt, "refund paid out", []accounting.JournalLine{
			accounting.DebitLine(accounting.AccountSalesReturns, evt.Amount),
			accounting.CreditLine(accounting.AccountCash, evt.Amount),
		})

	case *booking.DepositHeldEvent:
		return h.post(ctx, evt, "booking deposit held", []accounting.JournalLine{
			accounting.DebitLine(accounting.AccountCash, evt.Amount),
			accounting.CreditLine(accounting.AccountCustomerDeposits, evt.Amount),
		})

	case *booking.DepositResolvedEvent:
		switch evt.Status {
		case booking.DepositStatusApplied:
			return h.post(ctx, evt, "booking deposit applied to order", []accounting.JournalLine{
				accounting.DebitLine(accounting.AccountCustomerDeposits, evt.Amount),
				accounting.CreditLine(accounting.AccountSalesRevenue, evt.Amount),
			})
		case booking.DepositStatusRefunded:
			return h.post(ctx, evt, "booking deposit refunded", []accounting.JournalLine{
				accounting.DebitLine(accounting.AccountCustomerDeposits, evt.Amount),
				accounting.CreditLine(accounting.AccountCash, evt.Amount),
			})
		case booking.DepositStatusForfeited:
			return h.post(ctx, evt, "booking deposit forfeited", []accounting.JournalLine{
				accounting.DebitLine(accounting.AccountCustomerDeposits, evt.Amount),
				accounting.CreditLine(accounting.AccountBreakageIncome, evt.Amount),
			})
		default:
			return nil
		}

	default:
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}
}

func (h *JournalProjectionHandler) post(ctx context.Context, evt shared.DomainEvent, memo string, lines []accounting.JournalLine) error {
	entityID, dayKey := JournalKeyFor(evt.TenantID(), evt.OccurredAt())
	cmd := AppendJournalEntryCommand{
		EventID:  evt.EventID(),
		TenantID: evt.TenantID(),
		Day:      dayKey,
		Memo:     memo,
		Lines:    lines,
	}
	key := actor.NewKey(evt.TenantID(), accounting.AggregateTypeJournalDay, entityID)
	if _, _, err := h.dispatcher.Dispatch(ctx, key, cmd); err != nil {
		if shared.IsBusinessError(err) {
			// A malformed posting will stay malformed on redelivery.
			h.logger.Warn("dropping unjournalable event",
				zap.String("event_type", evt.EventType()),
				zap.String("event_id", evt.EventID().String()),
				zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}
