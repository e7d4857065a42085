// Package main implements the entry point for the adapt-api server, which
// delivers computerized adaptive assessments and synthesizes learner
// profiles from the results.
package main

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/quizmith/adapt-api/internal/config"
	"github.com/quizmith/adapt-api/internal/platform/logger"
)

// main loads configuration, wires the application together and runs the
// HTTP server until a shutdown signal arrives.
func main() {
	cfg, err := initializeConfig()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app, err := newApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.run(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

// initializeConfig loads configuration and sets up structured logging.
func initializeConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if _, err := logger.Setup(cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"strategy", cfg.Assessment.Strategy,
		"quota", fmt.Sprintf("%d/%d/%d",
			cfg.Assessment.EasyQuota, cfg.Assessment.MediumQuota, cfg.Assessment.HardQuota))

	return cfg, nil
}
