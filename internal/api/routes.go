package api

import (
	"github.com/gin-gonic/gin"

	"github.com/phenomwatch/analytics/internal/auth"
)

// SetupRoutes configures the API routes. The read path is JWT-protected;
// health and metrics are registered separately and stay public.
func SetupRoutes(router *gin.Engine, analyticsHandler *AnalyticsHandler,
	insightsHandler *InsightsHandler, jwtSecret string,
) {
	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware(jwtSecret))

	v1.GET("/analytics", analyticsHandler.GetSummary)
	v1.GET("/analytics/insights", insightsHandler.GetInsights)
}
