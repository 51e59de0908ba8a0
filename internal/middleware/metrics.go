package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/spimexpulse/internal/metrics"
)

// PrometheusMiddleware observes the latency of every request, labelled by route template
// rather than raw path to keep label cardinality bounded.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := metrics.NewTimer()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		timer.ObserveDuration(metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status())))
	}
}
