package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dinehub/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// installRecorder swaps the global tracer provider for one backed by a
// SpanRecorder, restoring the previous provider on cleanup.
func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func recordedAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartSpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := telemetry.StartSpan(context.Background(), "gift_card.redeem",
		telemetry.WithAttribute("card_id", "gc-2041"),
		telemetry.WithAttribute("amount", 25.50),
	)
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "gift_card.redeem", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())

	cardID, ok := recordedAttr(spans[0], "card_id")
	require.True(t, ok)
	assert.Equal(t, "gc-2041", cardID.AsString())
	amount, ok := recordedAttr(spans[0], "amount")
	require.True(t, ok)
	assert.Equal(t, 25.50, amount.AsFloat64())
}

func TestStartSpan_Kind(t *testing.T) {
	recorder := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "outbox.publish",
		telemetry.WithSpanKind(trace.SpanKindProducer))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindProducer, spans[0].SpanKind())
}

func TestStartServiceSpan(t *testing.T) {
	recorder := installRecorder(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "loyalty", "order_completed")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "loyalty.order_completed", spans[0].Name())
}

func TestSetAttributes(t *testing.T) {
	recorder := installRecorder(t)

	orderID := uuid.New()
	_, span := telemetry.StartSpan(context.Background(), "costing.recalculate")
	telemetry.SetAttributes(span,
		"order_id", orderID,
		"line_count", 3,
		42, "non-string key is skipped",
		"dangling", // odd trailing value is ignored
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	got, ok := recordedAttr(spans[0], "order_id")
	require.True(t, ok)
	assert.Equal(t, orderID.String(), got.AsString())

	lines, ok := recordedAttr(spans[0], "line_count")
	require.True(t, ok)
	assert.Equal(t, int64(3), lines.AsInt64())

	_, ok = recordedAttr(spans[0], "dangling")
	assert.False(t, ok)
}

func TestSetAttributes_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "tenant_id", "osteria-7")
		telemetry.SetAttribute(nil, "tenant_id", "osteria-7")
	})
}

func TestRecordError(t *testing.T) {
	recorder := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "payment.capture")
	telemetry.RecordError(span, errors.New("gateway timeout"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "gateway timeout", spans[0].Status().Description)

	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestRecordError_NilInputs(t *testing.T) {
	recorder := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "payment.capture")
	telemetry.RecordError(span, nil)
	telemetry.RecordError(nil, errors.New("ignored"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Empty(t, spans[0].Events())
}

func TestSetOK(t *testing.T) {
	recorder := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "shift.approve")
	telemetry.SetOK(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestAddEvent(t *testing.T) {
	recorder := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "stock.consume")
	telemetry.AddEvent(span, "stock_depleted",
		"ingredient_id", "ing-outofstock",
		"remaining", 0,
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)

	event := spans[0].Events()[0]
	assert.Equal(t, "stock_depleted", event.Name)

	attrs := make(map[string]attribute.Value, len(event.Attributes))
	for _, kv := range event.Attributes {
		attrs[string(kv.Key)] = kv.Value
	}
	assert.Equal(t, "ing-outofstock", attrs["ingredient_id"].AsString())
	assert.Equal(t, int64(0), attrs["remaining"].AsInt64())
}

func TestTraceAndSpanIDs(t *testing.T) {
	installRecorder(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "booking.confirm")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), telemetry.GetTraceID(ctx))
	assert.Equal(t, span.SpanContext().SpanID().String(), telemetry.GetSpanID(ctx))
}

func TestSpanContextHelpers(t *testing.T) {
	installRecorder(t)

	ctx, span := telemetry.StartSpan(context.Background(), "journal.post")
	defer span.End()

	assert.Equal(t, span, telemetry.SpanFromContext(ctx))

	detached := telemetry.ContextWithSpan(context.Background(), span)
	assert.Equal(t, span, telemetry.SpanFromContext(detached))
}

func TestAttributeCoercion(t *testing.T) {
	recorder := installRecorder(t)

	entityID := uuid.New() // fmt.Stringer
	_, span := telemetry.StartSpan(context.Background(), "actor.dispatch",
		telemetry.WithAttribute("entity_id", entityID),
		telemetry.WithAttribute("attempt", int64(2)),
		telemetry.WithAttribute("replayed", true),
		telemetry.WithAttribute("event_types", []string{"OrderPlaced", "OrderPaid"}),
		telemetry.WithAttribute("weights", []float64{0.2, 0.8}),
		telemetry.WithAttribute("fallback", struct{ A int }{A: 1}),
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	got := func(key string) attribute.Value {
		v, ok := recordedAttr(spans[0], key)
		require.True(t, ok, "missing attribute %q", key)
		return v
	}
	assert.Equal(t, entityID.String(), got("entity_id").AsString())
	assert.Equal(t, int64(2), got("attempt").AsInt64())
	assert.True(t, got("replayed").AsBool())
	assert.Equal(t, []string{"OrderPlaced", "OrderPaid"}, got("event_types").AsStringSlice())
	assert.Equal(t, []float64{0.2, 0.8}, got("weights").AsFloat64Slice())
	assert.Equal(t, "{1}", got("fallback").AsString())
}
