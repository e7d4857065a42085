package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quizmith/adapt-api/internal/api"
	"github.com/quizmith/adapt-api/internal/config"
	"github.com/quizmith/adapt-api/internal/platform/postgres"
	"github.com/quizmith/adapt-api/internal/service/assessment"
)

// defaultShutdownTimeout bounds graceful shutdown when the configuration
// does not set one.
const defaultShutdownTimeout = 10 * time.Second

// application holds the wired dependencies of the running server.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	service assessment.AssessmentService
	sweeper *assessment.Sweeper
	router  http.Handler
}

// newApplication wires the full dependency graph: database, migrations,
// stores, the assessment engine, the sweeper and the HTTP router.
func newApplication(cfg *config.Config) (*application, error) {
	logger := slog.Default()

	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		closeDatabase(db, logger)
		return nil, err
	}

	sessionStore := postgres.NewPostgresSessionStore(db, logger)
	questionStore := postgres.NewPostgresQuestionStore(db, logger)

	params := assessment.ParamsFromConfig(cfg.Assessment)
	service, err := assessment.NewService(sessionStore, questionStore, params, logger)
	if err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("failed to create assessment service: %w", err)
	}

	sweeper := assessment.NewSweeper(sessionStore, assessment.SweeperConfig{
		Interval:  cfg.Assessment.SweepInterval,
		Retention: cfg.Assessment.Retention,
	}, logger)

	handler := api.NewAssessmentHandler(service, logger)

	return &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		service: service,
		sweeper: sweeper,
		router:  api.NewRouter(handler),
	}, nil
}

// run starts the sweeper and the HTTP server, then blocks until a shutdown
// signal arrives and the server has drained.
func (app *application) run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.sweeper.Start(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.router,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	serverErrCh := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	select {
	case sig := <-shutdownCh:
		app.logger.Info("Shutting down server...", "signal", sig.String())
	case err := <-serverErrCh:
		app.logger.Error("Server failed", "error", err)
		app.cleanup(cancel)
		return err
	}

	shutdownTimeout := app.config.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		app.cleanup(cancel)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.cleanup(cancel)
	app.logger.Info("Server shutdown completed")
	return nil
}

// cleanup stops the background sweeper and closes the database.
func (app *application) cleanup(cancel context.CancelFunc) {
	cancel()
	app.sweeper.Stop()
	closeDatabase(app.db, app.logger)
}

// closeDatabase closes the connection pool, logging any failure.
func closeDatabase(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}
}
