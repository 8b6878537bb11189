/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift payroll server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment), then apply flags
  2. Build the logger
  3. Open the store selected by DB_DRIVER
  4. Create calculator, handler and close scheduler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port    HTTP server port (APP_PORT, default: 8080)
  -driver  sqlite, postgres or memory (DB_DRIVER, default: sqlite)
  -db      SQLite database path (DB_PATH, default: payroll.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  See config/config.go. DATABASE_URL is required for postgres.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the close scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/payroll.db"

  # Run against PostgreSQL
  DATABASE_URL=postgres://localhost/payroll ./server -driver=postgres

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go, store/postgres/postgres.go: Database implementations
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/shift-payroll/api"
	"github.com/warp/shift-payroll/config"
	"github.com/warp/shift-payroll/payroll"
	memstore "github.com/warp/shift-payroll/payroll/store"
	"github.com/warp/shift-payroll/store/postgres"
	"github.com/warp/shift-payroll/store/sqlite"
)

// repository is a payroll store the server can close on shutdown.
type repository interface {
	payroll.Repository
	Close() error
}

type memoryRepository struct{ *memstore.Memory }

func (memoryRepository) Close() error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Flags
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	driver := flag.String("driver", cfg.Database.Driver, "Storage driver: sqlite, postgres or memory")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	flag.Parse()

	cfg.App.Port = *port
	cfg.Database.Driver = *driver
	cfg.Database.Path = *dbPath
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := api.NewLogger(os.Stdout, cfg.Log.Format, cfg.SlogLevel())
	slog.SetDefault(logger)

	// Initialize store
	store, err := openStore(context.Background(), cfg.Database)
	if err != nil {
		logger.Error("failed to initialize database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	calc := payroll.NewCalculator(store, logger)
	calc.Workers = cfg.Payroll.SummaryWorkers

	scheduler := api.NewCloseScheduler(store, calc, logger)
	scheduler.Enabled = cfg.Scheduler.Enabled
	scheduler.CheckInterval = cfg.Scheduler.Interval

	handler := api.NewHandler(store, calc, logger)
	handler.Scheduler = scheduler

	router := api.NewRouter(handler, api.RouterOptions{
		Logger:          logger,
		CORSOrigins:     cfg.App.CORSOrigins,
		RequestLogLevel: slog.LevelDebug,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	scheduler.Start()

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "addr", server.Addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func openStore(ctx context.Context, db config.DatabaseConfig) (repository, error) {
	switch db.Driver {
	case config.DriverPostgres:
		return postgres.New(ctx, db.URL)
	case config.DriverMemory:
		return memoryRepository{memstore.NewMemory()}, nil
	default:
		return sqlite.New(db.Path)
	}
}
