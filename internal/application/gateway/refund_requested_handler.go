package gateway

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CardProcessor is the tokenized payment processor boundary. The real
// processor lives outside this module; infrastructure/payment ships a
// simulator for local use.
type CardProcessor interface {
	// Refund sends a refund for a captured payment and returns the
	// processor's reference on success
	Refund(ctx context.Context, req ProcessorRefundRequest) (ProcessorRefundResult, error)
}

// ProcessorRefundRequest is the outbound refund instruction
type ProcessorRefundRequest struct {
	MerchantID uuid.UUID
	PaymentID  uuid.UUID
	RefundID   uuid.UUID
	Amount     decimal.Decimal
	Currency   string
}

// ProcessorRefundResult is the processor's verdict on one refund
type ProcessorRefundResult struct {
	Succeeded    bool
	ProcessorRef string
	FailureCode  string
}

// RefundRequestedHandler drives pending refunds through the card processor
// and resolves the refund actor with the verdict. A processor transport error
// is returned so the fabric redelivers; a declined refund is a terminal
// verdict and resolves the refund as failed.
type RefundRequestedHandler struct {
	dispatcher actor.Dispatcher
	processor  CardProcessor
	logger     *zap.Logger
}

// NewRefundRequestedHandler creates the refund settlement reactor
func NewRefundRequestedHandler(dispatcher actor.Dispatcher, processor CardProcessor, logger *zap.Logger) *RefundRequestedHandler {
	return &RefundRequestedHandler{dispatcher: dispatcher, processor: processor, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *RefundRequestedHandler) EventTypes() []string {
	return []string{gateway.EventTypeRefundRequested}
}

// Handle processes one RefundRequested event
func (h *RefundRequestedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	evt, ok := event.(*gateway.RefundRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}

	result, err := h.processor.Refund(ctx, ProcessorRefundRequest{
		MerchantID: evt.MerchantID,
		PaymentID:  evt.PaymentID,
		RefundID:   evt.RefundID,
		Amount:     evt.Amount,
		Currency:   evt.Currency,
	})
	if err != nil {
		h.logger.Warn("card processor unreachable, refund left pending",
			zap.String("refund_id", evt.RefundID.String()), zap.Error(err))
		return err
	}

	cmd := MarkRefundOutcomeCommand{
		EventID:      evt.EventID(),
		Succeeded:    result.Succeeded,
		ProcessorRef: result.ProcessorRef,
		FailureCode:  result.FailureCode,
	}
	key := actor.NewKey(evt.TenantID(), gateway.AggregateTypeRefund, evt.RefundID)
	if _, _, err := h.dispatcher.Dispatch(ctx, key, cmd); err != nil {
		if shared.IsBusinessError(err) {
			// Already resolved (cancelled while in flight, or a replay):
			// nothing left to do.
			h.logger.Info("refund already resolved",
				zap.String("refund_id", evt.RefundID.String()), zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}
