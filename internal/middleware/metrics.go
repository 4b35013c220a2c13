package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/decepticons/linkshortener/internal/metrics"
)

// MetricsMiddleware records request metrics for each request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		// Use the route pattern instead of the raw path for grouping.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.RecordHTTPMetrics(c.Request.Method, path, status, duration)
	}
}
