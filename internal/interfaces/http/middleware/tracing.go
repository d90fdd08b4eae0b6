package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds request IDs taken from headers; anything longer
// is truncated before it reaches a span attribute.
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "dinehub-backend",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin and enriches each server span with
// identity attributes: tenant_id (auth context or validated X-Tenant-ID
// header), user_id (auth context) and request_id (X-Request-ID). The span
// name is otelgin's "METHOD route_pattern".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passthrough
	}

	otelMiddleware := otelgin.Middleware(cfg.ServiceName)
	return func(c *gin.Context) {
		otelMiddleware(c)

		// otelgin has created the span by now; attach what we know.
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(identityAttributes(c)...)
		}
	}
}

// TracingAttributeInjector re-applies the identity attributes after the auth
// and tenant middleware have run, since TracingWithConfig fires before them
// in the chain.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(identityAttributes(c)...)
		}
		c.Next()
	}
}

func identityAttributes(c *gin.Context) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if requestID := traceRequestID(c); requestID != "" {
		attrs = append(attrs, attribute.String("request_id", requestID))
	}
	if tenantID := traceTenantID(c); tenantID != "" {
		attrs = append(attrs, attribute.String("tenant_id", tenantID))
	}
	if userID := contextString(c, AuthUserIDKey); userID != "" {
		attrs = append(attrs, attribute.String("user_id", userID))
	}
	return attrs
}

func traceRequestID(c *gin.Context) string {
	if id := contextString(c, "request_id"); id != "" {
		return id
	}
	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// traceTenantID prefers the gateway-injected identity; the raw header is
// accepted only when it parses as a UUID, so arbitrary header content never
// lands in trace attributes.
func traceTenantID(c *gin.Context) string {
	if id := contextString(c, AuthTenantIDKey); id != "" {
		return id
	}
	headerID := c.GetHeader(TenantHeaderKey)
	if headerID == "" {
		return ""
	}
	if _, err := uuid.Parse(headerID); err != nil {
		return ""
	}
	return headerID
}

func contextString(c *gin.Context, key string) string {
	if v, exists := c.Get(key); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SpanErrorMarker marks the server span as errored on 4xx/5xx responses.
// Place it after Tracing in the chain.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}

		message := http.StatusText(statusCode)
		if message == "" {
			message = "Client Error"
		}
		span.SetStatus(codes.Error, message)
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
}
