package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pprofLabel(ctx context.Context, key string) (string, bool) {
	return pprof.Label(ctx, key)
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("nil and empty label maps still invoke fn", func(t *testing.T) {
		for _, labels := range []map[string]string{nil, {}} {
			called := false
			WithProfilingLabels(context.Background(), labels, func(context.Context) {
				called = true
			})
			assert.True(t, called)
		}
	})

	t.Run("labels visible through pprof inside fn", func(t *testing.T) {
		labels := map[string]string{
			ProfilingLabelController: "gift-cards",
			ProfilingLabelMethod:     "POST",
			ProfilingLabelTenantID:   "osteria-7",
		}

		var inner context.Context
		WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
			inner = ctx
		})
		require.NotNil(t, inner)

		got, ok := pprofLabel(inner, "controller")
		require.True(t, ok)
		assert.Equal(t, "gift-cards", got)

		got, ok = pprofLabel(inner, "tenant_id")
		require.True(t, ok)
		assert.Equal(t, "osteria-7", got)
	})

	t.Run("fully filtered labels degrade to plain call", func(t *testing.T) {
		var inner context.Context
		WithProfilingLabels(context.Background(), map[string]string{
			"request_id": "req-123",
			"order_id":   "ord-456",
		}, func(ctx context.Context) {
			inner = ctx
		})

		_, ok := pprofLabel(inner, "request_id")
		assert.False(t, ok)
	})
}

func TestHTTPRequestLabels(t *testing.T) {
	t.Run("all components", func(t *testing.T) {
		labels := HTTPRequestLabels("orders", "/api/v1/orders/:id", "GET", "trattoria-2")
		assert.Equal(t, map[string]string{
			"controller": "orders",
			"route":      "/api/v1/orders/:id",
			"method":     "GET",
			"tenant_id":  "trattoria-2",
		}, labels)
	})

	t.Run("blanks omitted", func(t *testing.T) {
		labels := HTTPRequestLabels("", "/health", "GET", "")
		assert.Equal(t, map[string]string{
			"route":  "/health",
			"method": "GET",
		}, labels)
	})
}

func TestSanitizeLabels(t *testing.T) {
	t.Run("drops high-cardinality keys", func(t *testing.T) {
		pairs := sanitizeLabels(map[string]string{
			"user_id":   "u-1",
			"order_id":  "o-2",
			"card_id":   "c-3",
			"tenant_id": "osteria-7",
		})
		assert.Equal(t, []string{"tenant_id", "osteria-7"}, pairs)
	})

	t.Run("drops empty keys and values", func(t *testing.T) {
		pairs := sanitizeLabels(map[string]string{
			"":       "value",
			"method": "",
			"route":  "/api/v1/stock",
		})
		assert.Equal(t, []string{"route", "/api/v1/stock"}, pairs)
	})

	t.Run("truncates long values", func(t *testing.T) {
		long := strings.Repeat("x", MaxLabelValueLength+50)
		pairs := sanitizeLabels(map[string]string{"route": long})
		require.Len(t, pairs, 2)
		assert.Len(t, pairs[1], MaxLabelValueLength)
	})

	t.Run("deterministic ordering", func(t *testing.T) {
		labels := map[string]string{
			"route":      "/api/v1/bookings",
			"controller": "bookings",
			"method":     "POST",
		}
		first := sanitizeLabels(labels)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, sanitizeLabels(labels))
		}
		assert.Equal(t, []string{
			"controller", "bookings",
			"method", "POST",
			"route", "/api/v1/bookings",
		}, first)
	})

	t.Run("normalizes keys", func(t *testing.T) {
		pairs := sanitizeLabels(map[string]string{"Shift Type": "evening"})
		assert.Equal(t, []string{"shift_type", "evening"}, pairs)
	})

	t.Run("nil map", func(t *testing.T) {
		assert.Nil(t, sanitizeLabels(nil))
	})
}

func TestSanitizeLabelKey(t *testing.T) {
	cases := map[string]string{
		"method":       "method",
		"HTTP Method":  "http_method",
		"tenant-id":    "tenant_id",
		"röute":        "rute",
		"__reserved__": "__reserved__",
		"CAPS123":      "caps123",
		"!@#$%":        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeLabelKey(in), "key: %q", in)
	}
}
