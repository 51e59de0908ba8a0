package main

//
//  @title           spimexpulse API
//  @version         1.0
//  @description     SPIMEX oil products trading report ingestion and query service.
//  @termsOfService  https://github.com/guttosm/spimexpulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/spimexpulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        ingestion
//  @tag.description Background ingestion of daily exchange reports
//
//  @tag.name        trading
//  @tag.description Queries over stored trading results
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/guttosm/spimexpulse/config"
	_ "github.com/guttosm/spimexpulse/docs" // swagger docs
	"github.com/guttosm/spimexpulse/internal/app"
	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/storage"
)

// maxReports mirrors the upper bound of POST /fetch_data/.
const maxReports = 30

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback releasing the queue, scheduler, cache and DB.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Error().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// newRootCmd builds the CLI:
//
//	spimexpulse serve   [--port 8080]   start the REST API and the background ingestion queue
//	spimexpulse ingest  [--n 10]        ingest the n most recent reports once and exit
//	spimexpulse migrate                 apply database migrations and exit
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "spimexpulse",
		Short:         "SPIMEX trading report ingestion service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
			logger.Init()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetString("port")
			if port == "" {
				port = config.AppConfig.Server.Port
			}
			return runServe(cmd.Context(), port)
		},
	}
	serveCmd.Flags().StringP("port", "p", "", "Port for the API server (default from SERVER_PORT)")

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest the most recent daily reports once",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := cmd.Flags().GetInt("n")
			return runIngest(cmd.Context(), n)
		},
	}
	ingestCmd.Flags().IntP("n", "n", 10, "Number of recent reports to ingest (1-30)")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}

	root.AddCommand(serveCmd, ingestCmd, migrateCmd)
	return root
}

func runServe(ctx context.Context, port string) error {
	logger.L().Info().Msg("starting API server")

	router, cleanup, err := app.InitializeApp()
	if err != nil {
		return err
	}

	server := startServer(router, port)
	gracefulShutdown(ctx, server, cleanup)
	return nil
}

func runIngest(ctx context.Context, n int) error {
	if n < 1 || n > maxReports {
		return errors.New("n must be between 1 and 30")
	}

	db, err := app.InitPostgres(config.AppConfig)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if config.AppConfig.Migrations.Auto {
		if err := app.RunMigrations(db); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ingestor := app.NewIngestor(config.AppConfig, storage.NewTradingResultsRepository(db))
	sum, err := ingestor.Ingest(ctx, n)
	if err != nil {
		return err
	}
	logger.L().Info().Interface("summary", sum).Msg("ingestion completed successfully")
	return nil
}

func runMigrate() error {
	db, err := app.InitPostgres(config.AppConfig)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return app.RunMigrations(db)
}

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.L().Fatal().Err(err).Msg("command failed")
	}
}
