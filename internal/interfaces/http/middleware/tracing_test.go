package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordSpans installs a recording tracer provider globally, restoring the
// previous one on cleanup.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
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

func spanAttrValue(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

// serveTraced runs one request through the given middleware chain plus a
// terminal handler and returns the single recorded span.
func serveTraced(t *testing.T, recorder *tracetest.SpanRecorder, req *http.Request, status int, chain ...gin.HandlerFunc) sdktrace.ReadOnlySpan {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(chain...)
	router.Handle(req.Method, "/api/v1/gift-cards/:id", func(c *gin.Context) {
		c.Status(status)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, status, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func TestTracing_Disabled(t *testing.T) {
	recorder := recordSpans(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/api/v1/menu", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.Ended(), "disabled tracing must not create spans")
}

func TestTracing_CreatesServerSpan(t *testing.T) {
	recorder := recordSpans(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gift-cards/gc-1", nil)
	span := serveTraced(t, recorder, req, http.StatusOK,
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dinehub-backend"}))

	assert.Contains(t, span.Name(), "/api/v1/gift-cards/:id")
	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestTracing_RequestIDAttribute(t *testing.T) {
	recorder := recordSpans(t)

	t.Run("from header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/gift-cards/gc-1", nil)
		req.Header.Set("X-Request-ID", "req-balance-check-42")
		span := serveTraced(t, recorder, req, http.StatusOK,
			TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dinehub-backend"}))

		v, ok := spanAttrValue(span, "request_id")
		require.True(t, ok)
		assert.Equal(t, "req-balance-check-42", v.AsString())
	})

	t.Run("oversized header is truncated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/gift-cards/gc-1", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("r", MaxRequestIDLength+50))
		span := serveTraced(t, recorder, req, http.StatusOK,
			TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dinehub-backend"}))

		v, ok := spanAttrValue(span, "request_id")
		require.True(t, ok)
		assert.Len(t, v.AsString(), MaxRequestIDLength)
	})
}

func TestTracing_TenantFromHeader(t *testing.T) {
	recorder := recordSpans(t)
	tenantID := uuid.NewString()

	t.Run("valid UUID accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/gift-cards/gc-1", nil)
		req.Header.Set(TenantHeaderKey, tenantID)
		span := serveTraced(t, recorder, req, http.StatusOK,
			TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dinehub-backend"}))

		v, ok := spanAttrValue(span, "tenant_id")
		require.True(t, ok)
		assert.Equal(t, tenantID, v.AsString())
	})

	t.Run("non-UUID rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/gift-cards/gc-1", nil)
		req.Header.Set(TenantHeaderKey, "<script>alert(1)</script>")
		span := serveTraced(t, recorder, req, http.StatusOK,
			TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dinehub-backend"}))

		_, ok := spanAttrValue(span, "tenant_id")
		assert.False(t, ok, "header injection must not reach trace attributes")
	})
}

func TestTracingAttributeInjector_AfterAuth(t *testing.T) {
	recorder := recordSpans(t)

	authTenant := uuid.NewString()
	injectIdentity := func(c *gin.Context) {
		c.Set(AuthTenantIDKey, authTenant)
		c.Set(AuthUserIDKey, "user-waiter-5")
		c.Next()
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gift-cards/gc-1", nil)
	span := serveTraced(t, recorder, req, http.StatusOK,
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dinehub-backend"}),
		injectIdentity,
		TracingAttributeInjector(),
	)

	tenant, ok := spanAttrValue(span, "tenant_id")
	require.True(t, ok)
	assert.Equal(t, authTenant, tenant.AsString())

	user, ok := spanAttrValue(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, "user-waiter-5", user.AsString())
}

func TestTracing_AuthContextBeatsHeader(t *testing.T) {
	recorder := recordSpans(t)

	authTenant := uuid.NewString()
	headerTenant := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gift-cards/gc-1", nil)
	req.Header.Set(TenantHeaderKey, headerTenant)
	span := serveTraced(t, recorder, req, http.StatusOK,
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dinehub-backend"}),
		func(c *gin.Context) { c.Set(AuthTenantIDKey, authTenant); c.Next() },
		TracingAttributeInjector(),
	)

	tenant, ok := spanAttrValue(span, "tenant_id")
	require.True(t, ok)
	assert.Equal(t, authTenant, tenant.AsString())
}

func TestSpanErrorMarker(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		message string
	}{
		{"bad request", http.StatusBadRequest, "Bad Request"},
		{"unauthorized", http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", http.StatusForbidden, "Forbidden"},
		{"not found", http.StatusNotFound, "Not Found"},
		{"internal error", http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := recordSpans(t)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/gift-cards/gc-1", nil)
			span := serveTraced(t, recorder, req, tc.status,
				TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dinehub-backend"}),
				SpanErrorMarker(),
			)

			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tc.message, span.Status().Description)

			status, ok := spanAttrValue(span, "http.status_code")
			require.True(t, ok)
			assert.Equal(t, int64(tc.status), status.AsInt64())
		})
	}
}

func TestSpanErrorMarker_SuccessLeavesSpanAlone(t *testing.T) {
	recorder := recordSpans(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gift-cards/gc-1", nil)
	span := serveTraced(t, recorder, req, http.StatusCreated,
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dinehub-backend"}),
		SpanErrorMarker(),
	)

	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestSpanErrorMarker_WithoutTracing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// No span in the context; the marker must be a harmless no-op.
	router := gin.New()
	router.Use(SpanErrorMarker())
	router.GET("/api/v1/menu", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
