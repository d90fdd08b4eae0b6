package gateway

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command types accepted by the refund actor
const (
	CmdRequestRefund     = "gateway.request_refund"
	CmdMarkRefundOutcome = "gateway.mark_refund_outcome"
	CmdCancelRefund      = "gateway.cancel_refund"
	CmdGetRefund         = "gateway.get_refund"
)

// RequestRefundCommand opens a pending refund against a captured payment
type RequestRefundCommand struct {
	TenantID   uuid.UUID       `json:"tenant_id"`
	RefundID   uuid.UUID       `json:"refund_id"`
	MerchantID uuid.UUID       `json:"merchant_id" binding:"required"`
	PaymentID  uuid.UUID       `json:"payment_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Reason     string          `json:"reason"`
}

func (c RequestRefundCommand) CommandType() string { return CmdRequestRefund }

// MarkRefundOutcomeCommand resolves a pending refund with the processor's
// verdict. Dispatched by the refund-requested reactor, so it carries the
// source event ID.
type MarkRefundOutcomeCommand struct {
	EventID      uuid.UUID `json:"event_id"`
	Succeeded    bool      `json:"succeeded"`
	ProcessorRef string    `json:"processor_ref,omitempty"`
	FailureCode  string    `json:"failure_code,omitempty"`
}

func (c MarkRefundOutcomeCommand) CommandType() string { return CmdMarkRefundOutcome }

// SourceEventID implements actor.EventSourced
func (c MarkRefundOutcomeCommand) SourceEventID() uuid.UUID { return c.EventID }

// CancelRefundCommand withdraws a still-pending refund
type CancelRefundCommand struct {
	Reason string `json:"reason"`
}

func (c CancelRefundCommand) CommandType() string { return CmdCancelRefund }

// GetRefundCommand returns the refund state
type GetRefundCommand struct{}

func (c GetRefundCommand) CommandType() string { return CmdGetRefund }

// RefundBehavior is the actor behavior for the Refund aggregate
type RefundBehavior struct{}

// NewRefundBehavior creates a new refund behavior
func NewRefundBehavior() *RefundBehavior { return &RefundBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *RefundBehavior) ActorType() string { return gateway.AggregateTypeRefund }

// NewState returns an empty refund state
func (b *RefundBehavior) NewState() any { return &gateway.Refund{} }

// Handle applies one command to the refund
func (b *RefundBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	refund, ok := state.(*gateway.Refund)
	if !ok {
		return nil, fmt.Errorf("refund behavior: unexpected state type %T", state)
	}

	if c, ok := cmd.(RequestRefundCommand); ok {
		if refund.ID != uuid.Nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Refund already requested")
		}
		created, err := gateway.NewRefund(c.TenantID, c.RefundID, c.MerchantID, c.PaymentID, c.Amount, c.Currency, c.Reason)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: created, State: created, Events: created.GetDomainEvents()}, nil
	}

	if refund.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	switch c := cmd.(type) {
	case MarkRefundOutcomeCommand:
		var err error
		if c.Succeeded {
			err = refund.MarkSucceeded(c.ProcessorRef)
		} else {
			err = refund.MarkFailed(c.FailureCode)
		}
		if err != nil {
			return nil, err
		}
	case CancelRefundCommand:
		if err := refund.Cancel(c.Reason); err != nil {
			return nil, err
		}
	case GetRefundCommand:
		return &actor.Outcome{Response: refund}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("refund actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: refund, State: refund, Events: refund.GetDomainEvents()}, nil
}
