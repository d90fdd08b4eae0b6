package gateway

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundStatus is a strict forward-only state machine:
// Pending -> Succeeded | Failed | Cancelled. A terminal status is immutable.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "PENDING"
	RefundStatusSucceeded RefundStatus = "SUCCEEDED"
	RefundStatusFailed    RefundStatus = "FAILED"
	RefundStatusCancelled RefundStatus = "CANCELLED"
)

// IsTerminal reports whether the status allows no further transitions
func (s RefundStatus) IsTerminal() bool {
	return s == RefundStatusSucceeded || s == RefundStatusFailed || s == RefundStatusCancelled
}

// Refund is the aggregate root for a payment refund request
type Refund struct {
	shared.TenantAggregateRoot
	MerchantID   uuid.UUID       `json:"merchant_id"`
	PaymentID    uuid.UUID       `json:"payment_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Reason       string          `json:"reason,omitempty"`
	Status       RefundStatus    `json:"status"`
	ProcessorRef string          `json:"processor_ref,omitempty"`
	FailureCode  string          `json:"failure_code,omitempty"`
	ResolvedAt   *time.Time      `json:"resolved_at,omitempty"`
}

// NewRefund creates a pending refund request
func NewRefund(tenantID, refundID, merchantID, paymentID uuid.UUID, amount decimal.Decimal, currency, reason string) (*Refund, error) {
	if merchantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MERCHANT", "Merchant ID cannot be empty")
	}
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	if currency == "" {
		currency = "USD"
	}

	r := &Refund{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithID(tenantID, refundID),
		MerchantID:          merchantID,
		PaymentID:           paymentID,
		Amount:              amount,
		Currency:            currency,
		Reason:              reason,
		Status:              RefundStatusPending,
	}
	r.AddDomainEvent(NewRefundRequestedEvent(r))
	return r, nil
}

// MarkSucceeded records that the processor confirmed the refund
func (r *Refund) MarkSucceeded(processorRef string) error {
	if err := r.ensurePending(); err != nil {
		return err
	}
	r.Status = RefundStatusSucceeded
	r.ProcessorRef = processorRef
	r.resolve()

	r.AddDomainEvent(NewRefundResolvedEvent(r))
	return nil
}

// MarkFailed records a processor failure
func (r *Refund) MarkFailed(failureCode string) error {
	if err := r.ensurePending(); err != nil {
		return err
	}
	r.Status = RefundStatusFailed
	r.FailureCode = failureCode
	r.resolve()

	r.AddDomainEvent(NewRefundResolvedEvent(r))
	return nil
}

// Cancel withdraws a refund before the processor resolves it
func (r *Refund) Cancel(reason string) error {
	if err := r.ensurePending(); err != nil {
		return err
	}
	r.Status = RefundStatusCancelled
	if reason != "" {
		r.Reason = reason
	}
	r.resolve()

	r.AddDomainEvent(NewRefundResolvedEvent(r))
	return nil
}

func (r *Refund) ensurePending() error {
	if r.Status != RefundStatusPending {
		return shared.ErrInvalidStateTransition
	}
	return nil
}

func (r *Refund) resolve() {
	now := time.Now()
	r.ResolvedAt = &now
	r.UpdatedAt = now
}
