package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/riskboard/pkg/constants"
)

// HTTPRecorder receives one observation per served request.
type HTTPRecorder interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
}

// Observability starts a server span per request, continuing any W3C trace context the
// caller sent, and records request count and latency against the route template.
// Observability 为每个请求创建服务端跟踪范围，并按路由模板记录请求指标。
func Observability(tracer trace.Tracer, rec HTTPRecorder) gin.HandlerFunc {
	propagator := propagation.TraceContext{}
	return func(c *gin.Context) {
		start := time.Now()

		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethodKey.String(c.Request.Method),
				semconv.HTTPTargetKey.String(c.Request.URL.Path),
			),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			ctx = context.WithValue(ctx, constants.ContextKeyTraceID, traceID)
			c.Set(string(constants.ContextKeyTraceID), traceID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		// route template keeps label cardinality low
		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}
		status := c.Writer.Status()
		if rec != nil {
			rec.RecordHTTPRequest(c.Request.Method, path, status, time.Since(start))
		}

		span.SetAttributes(
			semconv.HTTPRouteKey.String(path),
			semconv.HTTPStatusCodeKey.Int(status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
	}
}
