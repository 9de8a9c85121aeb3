package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/consciousness-backend/internal/platform/ctxutil"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

// RequestLogger writes one line per finished request. Route params naming a
// reflection are logged as reflection_id.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := requestFields(c, status, time.Since(start))

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func requestFields(c *gin.Context, status int, took time.Duration) []interface{} {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	fields := []interface{}{
		"method", c.Request.Method,
		"route", route,
		"status", status,
		"duration_ms", took.Milliseconds(),
	}
	if n := c.Writer.Size(); n > 0 {
		fields = append(fields, "bytes", n)
	}
	for _, p := range []string{"id", "reflectionId"} {
		if v := c.Param(p); v != "" {
			fields = append(fields, "reflection_id", v)
			break
		}
	}

	ctx := c.Request.Context()
	if td := ctxutil.GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			fields = append(fields, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			fields = append(fields, "request_id", td.RequestID)
		}
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		fields = append(fields, "user_id", rd.UserID.String())
	}
	if len(c.Errors) > 0 {
		fields = append(fields, "error", c.Errors.String())
	}
	return fields
}
