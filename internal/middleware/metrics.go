package middleware

import (
	"time"

	"github.com/JMan003/banking-system-project/pkg/metricspkg"
	"github.com/gin-gonic/gin"
)

// Metrics records the count and latency of every routed request.
func Metrics(m *metricspkg.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
