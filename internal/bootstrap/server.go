package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phenomwatch/analytics/internal/api"
	"github.com/phenomwatch/analytics/internal/config"
	"github.com/phenomwatch/analytics/internal/database"
	"github.com/phenomwatch/analytics/internal/httpserver"
	"github.com/phenomwatch/analytics/internal/insight"
	"github.com/phenomwatch/analytics/internal/logger"
	"github.com/phenomwatch/analytics/internal/service"
	"github.com/phenomwatch/analytics/internal/telemetry"
)

const healthCheckTimeout = 2 * time.Second

// SetupHTTPServer wires the repository, gateway, handlers, and middleware
// into a runnable server.
func SetupHTTPServer(cfg *config.Config, db *database.Connection, log logger.Logger) (*httpserver.Server, error) {
	repo := database.NewRepository(db.DB)
	metrics := telemetry.New()
	engine := insight.NewEngine(insight.DefaultThresholds())

	analyticsSvc, svcErr := service.NewAnalyticsService(repo, log, metrics, engine, cfg.Analytics)
	if svcErr != nil {
		return nil, fmt.Errorf("analytics service: %w", svcErr)
	}

	analyticsHandler := api.NewAnalyticsHandler(analyticsSvc, cfg.Analytics.CacheMaxAge)
	insightsHandler := api.NewInsightsHandler(analyticsSvc, cfg.Analytics.CacheMaxAge)

	serverCfg := &httpserver.Config{
		Port:           cfg.Service.Port,
		Debug:          cfg.Service.Debug,
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		WriteTimeout:   cfg.Analytics.RequestTimeout,
		CORS:           httpserver.CORSConfig{Enabled: true},
	}

	server := httpserver.New(serverCfg, log, func(router *gin.Engine) {
		router.Use(httpserver.MetricsMiddleware(metrics))

		httpserver.RegisterHealthRoutes(router, httpserver.HealthOptions{
			ServiceName:    cfg.Service.Name,
			ServiceVersion: cfg.Service.Version,
			Checks: map[string]httpserver.HealthChecker{
				"database": httpserver.DatabaseHealthChecker(func() error {
					ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
					defer cancel()
					return db.Ping(ctx)
				}),
			},
		})

		router.GET("/metrics", metrics.Handler())

		api.SetupRoutes(router, analyticsHandler, insightsHandler, cfg.Auth.JWTSecret)
	})

	return server, nil
}
