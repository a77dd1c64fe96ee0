// Package bootstrap handles application initialization and lifecycle
// management for the analytics service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/phenomwatch/analytics/internal/logger"
)

// Start initializes and runs the analytics service.
func Start() error {
	cfg, configErr := LoadConfig()
	if configErr != nil {
		return fmt.Errorf("config: %w", configErr)
	}

	log, logErr := CreateLogger(cfg)
	if logErr != nil {
		return fmt.Errorf("logger: %w", logErr)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Analytics Service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.String("timezone", cfg.Analytics.Timezone),
	)

	db, dbErr := SetupDatabase(cfg)
	if dbErr != nil {
		return fmt.Errorf("database: %w", dbErr)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", logger.Error(closeErr))
		}
	}()
	log.Info("Database connection established")

	server, serverErr := SetupHTTPServer(cfg, db, log)
	if serverErr != nil {
		return fmt.Errorf("server setup: %w", serverErr)
	}

	if runErr := server.RunWithGracefulShutdown(context.Background()); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server: %w", runErr)
	}

	log.Info("Analytics Service stopped")
	return nil
}
