package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/consciousness-backend/internal/observability"
)

// Scrapes and open event streams are not counted.
var unmeteredRoutes = map[string]bool{
	"/metrics":             true,
	"/api/analysis/stream": true,
}

// Metrics records per-route request counts and latency. Unmatched paths share
// the "unmatched" route label.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if unmeteredRoutes[route] {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		m.ApiInflightInc()
		start := time.Now()
		c.Next()
		m.ApiInflightDec()

		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
