package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestedRefund(t *testing.T, b *RefundBehavior) *gateway.Refund {
	t.Helper()
	outcome, err := b.Handle(context.Background(), b.NewState(), RequestRefundCommand{
		TenantID:   uuid.New(),
		RefundID:   uuid.New(),
		MerchantID: uuid.New(),
		PaymentID:  uuid.New(),
		Amount:     decimal.NewFromInt(25),
		Currency:   "USD",
		Reason:     "duplicate charge",
	})
	require.NoError(t, err)
	refund := outcome.State.(*gateway.Refund)
	refund.ClearDomainEvents()
	return refund
}

func TestRefundBehavior_SucceededOutcome(t *testing.T) {
	b := NewRefundBehavior()
	refund := requestedRefund(t, b)

	outcome, err := b.Handle(context.Background(), refund, MarkRefundOutcomeCommand{
		EventID:      uuid.New(),
		Succeeded:    true,
		ProcessorRef: "pr_123",
	})
	require.NoError(t, err)
	resolved := outcome.State.(*gateway.Refund)
	assert.Equal(t, gateway.RefundStatusSucceeded, resolved.Status)
	assert.Equal(t, "pr_123", resolved.ProcessorRef)
}

func TestRefundBehavior_FailedOutcome(t *testing.T) {
	b := NewRefundBehavior()
	refund := requestedRefund(t, b)

	outcome, err := b.Handle(context.Background(), refund, MarkRefundOutcomeCommand{
		EventID:     uuid.New(),
		Succeeded:   false,
		FailureCode: "insufficient_funds",
	})
	require.NoError(t, err)
	resolved := outcome.State.(*gateway.Refund)
	assert.Equal(t, gateway.RefundStatusFailed, resolved.Status)
	assert.Equal(t, "insufficient_funds", resolved.FailureCode)
}

func TestRefundBehavior_ResolveTwiceRejected(t *testing.T) {
	b := NewRefundBehavior()
	refund := requestedRefund(t, b)

	_, err := b.Handle(context.Background(), refund, CancelRefundCommand{Reason: "customer withdrew"})
	require.NoError(t, err)

	_, err = b.Handle(context.Background(), refund, MarkRefundOutcomeCommand{EventID: uuid.New(), Succeeded: true})
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
}

func TestTerminalBehavior_OnlineDerivedAtRead(t *testing.T) {
	b := NewTerminalBehavior(time.Minute)
	outcome, err := b.Handle(context.Background(), b.NewState(), RegisterTerminalCommand{
		TenantID:     uuid.New(),
		TerminalID:   uuid.New(),
		MerchantID:   uuid.New(),
		Label:        "Front counter",
		SerialNumber: "SN-001",
	})
	require.NoError(t, err)
	terminal := outcome.State.(*gateway.Terminal)
	terminal.ClearDomainEvents()

	// No heartbeat yet: offline.
	status, err := b.Handle(context.Background(), terminal, GetTerminalStatusCommand{})
	require.NoError(t, err)
	assert.Nil(t, status.State)
	assert.False(t, status.Response.(*TerminalStatus).Online)

	_, err = b.Handle(context.Background(), terminal, TerminalHeartbeatCommand{At: time.Now()})
	require.NoError(t, err)

	status, err = b.Handle(context.Background(), terminal, GetTerminalStatusCommand{})
	require.NoError(t, err)
	assert.True(t, status.Response.(*TerminalStatus).Online)

	// A tight staleness window takes precedence over the default.
	status, err = b.Handle(context.Background(), terminal, GetTerminalStatusCommand{Staleness: time.Nanosecond})
	require.NoError(t, err)
	assert.False(t, status.Response.(*TerminalStatus).Online)
}

func TestWebhookEndpointBehavior_Lifecycle(t *testing.T) {
	b := NewWebhookEndpointBehavior()
	outcome, err := b.Handle(context.Background(), b.NewState(), RegisterEndpointCommand{
		TenantID:      uuid.New(),
		EndpointID:    uuid.New(),
		URL:           "https://partner.example.com/hooks",
		SigningSecret: "whsec_1234567890abcdef",
		EnabledEvents: []string{gateway.EventTypeRefundResolved},
	})
	require.NoError(t, err)
	endpoint := outcome.State.(*gateway.WebhookEndpoint)
	endpoint.ClearDomainEvents()

	assert.True(t, endpoint.ShouldReceiveEvent(gateway.EventTypeRefundResolved))
	assert.False(t, endpoint.ShouldReceiveEvent(gateway.EventTypeMerchantCreated))

	_, err = b.Handle(context.Background(), endpoint, RecordDeliveryCommand{Attempt: gateway.DeliveryAttempt{
		EventID:     uuid.New(),
		EventType:   gateway.EventTypeRefundResolved,
		StatusCode:  500,
		Success:     false,
		AttemptedAt: time.Now(),
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, endpoint.ConsecutiveFailures)

	_, err = b.Handle(context.Background(), endpoint, DisableEndpointCommand{})
	require.NoError(t, err)
	assert.False(t, endpoint.ShouldReceiveEvent(gateway.EventTypeRefundResolved))

	_, err = b.Handle(context.Background(), endpoint, EnableEndpointCommand{})
	require.NoError(t, err)
	assert.Equal(t, 0, endpoint.ConsecutiveFailures)
}
