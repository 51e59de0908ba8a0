package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/spimexpulse/config"
	"github.com/guttosm/spimexpulse/internal/api"
	"github.com/guttosm/spimexpulse/internal/ingestion"
	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/scheduler"
	"github.com/guttosm/spimexpulse/internal/service"
	"github.com/guttosm/spimexpulse/internal/storage"
)

// shutdownTimeout bounds how long cleanup waits for the scheduler.
const shutdownTimeout = 10 * time.Second

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL and applies migrations when MIGRATIONS_AUTO is on.
//   - Connects the Redis query cache and schedules its daily reset.
//   - Starts the background ingestion queue.
//   - Builds the service, handler and router, and registers health probes.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig
	ctx := context.Background()

	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if cfg.Migrations.Auto {
		if err := migrator(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	rc, err := redisOpener(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	sched := scheduler.New(cfg.Cache.Location())
	if err := sched.ScheduleCacheReset(cfg.Cache.ResetHour, cfg.Cache.ResetMinute, rc); err != nil {
		_ = rc.Close()
		_ = db.Close()
		return nil, nil, err
	}

	repo := storage.NewTradingResultsRepository(db)
	svc := service.NewTradingService(repo, rc)

	queue := ingestion.NewQueue(NewIngestor(cfg, repo), cfg.Ingestion.QueueSize)
	queue.Start(ctx)
	sched.Start()

	handler := api.NewHandler(svc, queue)
	router := api.NewRouter(handler, api.RouterOptions{
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	api.NewHealthHandler(map[string]api.Check{
		"postgres": db.PingContext,
		"redis":    rc.Ping,
	}).Register(router)

	cleanup := func() {
		queue.Stop()

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		sched.Stop(sctx)

		if err := rc.Close(); err != nil {
			logger.L().Warn().Err(err).Msg("redis close")
		}
		if err := db.Close(); err != nil {
			logger.L().Warn().Err(err).Msg("postgres close")
		}
	}

	return router, cleanup, nil
}
