package middleware

import (
	"time"

	"huddle/internal/core/domain"
	"huddle/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TracingMiddleware opens a span per request and annotates it with the
// caller and the addressed channel once the handler chain has resolved
// them.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.TraceHTTPRequest(c.Request.Context(), c.Request.Method, c.FullPath())
		defer span.End()

		span.SetAttributes(
			attribute.String("http.host", c.Request.Host),
			attribute.String("http.remote_addr", c.ClientIP()),
		)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		// The auth middleware runs inside c.Next; the caller's uid and the
		// channel id are only known afterwards.
		if v, ok := c.Get("user_id"); ok {
			if uid, ok := v.(domain.UserID); ok && uid != "" {
				span.SetAttributes(tracing.UserIDKey.String(string(uid)))
			}
		}
		if channelID := c.Param("id"); channelID != "" {
			span.SetAttributes(tracing.ChannelIDKey.String(channelID))
		}

		span.SetAttributes(
			attribute.Int("http.status_code", c.Writer.Status()),
			attribute.Int64("http.duration_ms", time.Since(start).Milliseconds()),
		)

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors {
				tracing.RecordError(ctx, ginErr.Err)
			}
			return
		}
		span.SetStatus(codes.Ok, "")
	}
}
