package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/consciousness-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxRequestIDLen = 128
)

// AttachTraceContext gives every request a request id and a trace id, echoes
// both as response headers and stores them for loggers and background jobs.
// A live span's trace id wins over a client-supplied one.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.NewString()
		}

		span := trace.SpanFromContext(c.Request.Context())
		traceID := ""
		if sc := span.SpanContext(); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		} else if h := strings.TrimSpace(c.GetHeader(headerTraceID)); h != "" && len(h) <= maxRequestIDLen {
			traceID = h
		} else {
			traceID = uuid.NewString()
		}
		span.SetAttributes(attribute.String("request.id", reqID))

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		}))
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}
