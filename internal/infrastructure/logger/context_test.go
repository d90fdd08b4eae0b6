package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func startTestSpan(t *testing.T) (context.Context, trace.Span) {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp.Tracer("test").Start(context.Background(), "dispatch")
}

func TestWithContext(t *testing.T) {
	base := zap.NewNop().Named("scoped")
	ctx := WithContext(context.Background(), base)

	assert.Same(t, base, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	log := FromContext(context.Background())

	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("safe on empty context") })
}

func TestContextEnrichment(t *testing.T) {
	base := zap.NewNop()

	t.Run("request ID", func(t *testing.T) {
		ctx, enriched := WithRequestID(context.Background(), base, "req-9")

		assert.Equal(t, "req-9", GetRequestID(ctx))
		assert.Same(t, enriched, FromContext(ctx))
	})

	t.Run("tenant ID", func(t *testing.T) {
		ctx, _ := WithTenantID(context.Background(), base, "tenant-bistro")

		assert.Equal(t, "tenant-bistro", GetTenantID(ctx))
	})

	t.Run("user ID", func(t *testing.T) {
		ctx, _ := WithUserID(context.Background(), base, "user-manager")

		assert.Equal(t, "user-manager", GetUserID(ctx))
	})

	t.Run("enriched logger carries the bound field", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		_, enriched := WithTenantID(context.Background(), zap.New(core), "tenant-osteria")

		enriched.Info("menu published")

		require.Equal(t, 1, logs.Len())
		fields := make(map[string]string)
		for _, f := range logs.All()[0].Context {
			fields[f.Key] = f.String
		}
		assert.Equal(t, "tenant-osteria", fields["tenant_id"])
	})

	t.Run("chained values all survive", func(t *testing.T) {
		ctx, log := WithRequestID(context.Background(), base, "req-1")
		ctx, log = WithTenantID(ctx, log, "tenant-2")
		ctx, log = WithUserID(ctx, log, "user-3")

		assert.Equal(t, "req-1", GetRequestID(ctx))
		assert.Equal(t, "tenant-2", GetTenantID(ctx))
		assert.Equal(t, "user-3", GetUserID(ctx))
		assert.Same(t, log, FromContext(ctx))
	})

	t.Run("getters return empty on a bare context", func(t *testing.T) {
		ctx := context.Background()

		assert.Empty(t, GetRequestID(ctx))
		assert.Empty(t, GetTenantID(ctx))
		assert.Empty(t, GetUserID(ctx))
	})
}

func TestTraceCorrelation(t *testing.T) {
	t.Run("no span yields empty IDs", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
		assert.Empty(t, GetSpanID(context.Background()))
	})

	t.Run("recording span yields valid IDs", func(t *testing.T) {
		ctx, span := startTestSpan(t)
		defer span.End()

		assert.Len(t, GetTraceID(ctx), 32)
		assert.Len(t, GetSpanID(ctx), 16)
	})

	t.Run("WithTraceContext is a no-op without a span", func(t *testing.T) {
		base := zap.NewNop()
		assert.Same(t, base, WithTraceContext(context.Background(), base))
	})

	t.Run("WithTraceContext attaches trace fields", func(t *testing.T) {
		ctx, span := startTestSpan(t)
		defer span.End()

		core, logs := observer.New(zapcore.InfoLevel)
		WithTraceContext(ctx, zap.New(core)).Info("traced")

		require.Equal(t, 1, logs.Len())
		fields := make(map[string]string)
		for _, f := range logs.All()[0].Context {
			fields[f.Key] = f.String
		}
		assert.Equal(t, GetTraceID(ctx), fields["trace_id"])
		assert.Equal(t, GetSpanID(ctx), fields["span_id"])
	})
}

func TestContextKeysAreDistinct(t *testing.T) {
	keys := []contextKey{LoggerKey, RequestIDKey, TenantIDKey, UserIDKey}
	seen := make(map[contextKey]bool)
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate context key %q", k)
		seen[k] = true
	}
}
