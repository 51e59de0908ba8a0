package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/spimexpulse/internal/logger"
)

// RequestLogger is a Gin middleware that logs one structured line per request:
// method, route, status, latency and the request id injected by RequestID().
//
// Requests answered with 5xx are logged at error level, 4xx at warn.
//
// Example log output:
//
//	{"level":"info","component":"http","request_id":"123e...","method":"GET","path":"/get_trading_results/","status":200,"latency_ms":4}
func RequestLogger() gin.HandlerFunc {
	log := logger.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		rid, _ := c.Get(RequestIDKey)

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("request_id", toString(rid)).
			Str("method", method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
