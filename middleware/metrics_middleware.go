package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"crudapi/metrics"
)

// Metrics records per-request counters and latency for every route it wraps,
// including the generated entity endpoints.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		metrics.RequestInProgress.WithLabelValues(method, path).Inc()
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestCounter.WithLabelValues(status, method, path).Inc()
		metrics.RequestDuration.WithLabelValues(status, method, path).Observe(time.Since(start).Seconds())
		metrics.RequestInProgress.WithLabelValues(method, path).Dec()
	}
}
