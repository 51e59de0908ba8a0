package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/spimexpulse/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterOptions tunes the global middlewares.
type RouterOptions struct {
	RateLimitRPS   float64       // per client IP; 0 disables limiting
	RateLimitBurst int           // token bucket size per client IP
	RequestTimeout time.Duration // deadline attached to every request context; 0 means none
}

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, Prometheus, ErrorHandler, RateLimiter).
//   - Adds the request timeout.
//   - Mounts Swagger docs (/swagger/*any) and Prometheus metrics (/metrics).
//   - Configures the trading and ingestion routes.
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
	)

	// ─── Timeout ──────────────────────────────────
	if opts.RequestTimeout > 0 {
		router.Use(func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), opts.RequestTimeout)
			defer cancel()
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}

	// ─── Swagger & metrics ────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ─── Ingestion ────────────────────────────────
	router.POST("/fetch_data/", handler.FetchData)

	// ─── Queries ──────────────────────────────────
	router.GET("/get_last_trading_dates/", handler.GetLastTradingDates)
	router.GET("/get_dynamics/", handler.GetDynamics)
	router.GET("/get_trading_results/", handler.GetTradingResults)

	return router
}
