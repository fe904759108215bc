package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Limits on trace attribute values taken from request headers.
const (
	maxTraceRequestIDLength = 128
)

var tenantIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns OpenTelemetry tracing middleware wrapping the request in
// an otelgin span. When disabled it is a passthrough. Place
// TraceAttributes after it in the chain to enrich the span.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TraceAttributes returns middleware that enriches the active request
// span with the request ID and tenant ID. It must run after Tracing (and
// after RequestID) so the span is still open.
func TraceAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpanAttributes(c, span)
		}
		c.Next()
	}
}

func enrichSpanAttributes(c *gin.Context, span trace.Span) {
	if requestID := traceRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if tenantID := traceTenantID(c); tenantID != "" {
		span.SetAttributes(attribute.String("tenant_id", tenantID))
	}
}

// traceRequestID prefers the ID set by the RequestID middleware, falling
// back to the header truncated to a sane length.
func traceRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok && id != "" {
			return id
		}
	}
	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > maxTraceRequestIDLength {
		return headerID[:maxTraceRequestIDLength]
	}
	return headerID
}

// traceTenantID returns the X-Tenant-ID header only when it is a valid
// UUID, so malformed input cannot be injected into trace attributes.
func traceTenantID(c *gin.Context) string {
	headerTenantID := c.GetHeader("X-Tenant-ID")
	if headerTenantID != "" && tenantIDPattern.MatchString(headerTenantID) {
		return headerTenantID
	}
	return ""
}
