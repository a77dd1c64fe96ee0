package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phenomwatch/analytics/internal/domain"
)

// InsightProvider defines the insight derivation operation needed by the handler.
type InsightProvider interface {
	Insights(ctx context.Context, categoryFilter string) []domain.Insight
}

// InsightsHandler handles the insights endpoint.
type InsightsHandler struct {
	svc         InsightProvider
	cacheMaxAge time.Duration
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(svc InsightProvider, cacheMaxAge time.Duration) *InsightsHandler {
	return &InsightsHandler{svc: svc, cacheMaxAge: cacheMaxAge}
}

// insightsResponse is the insights endpoint payload. An empty list is a
// valid answer meaning no pattern cleared its threshold.
type insightsResponse struct {
	Insights    []domain.Insight `json:"insights"`
	Category    string           `json:"category,omitempty"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// GetInsights handles GET /api/v1/analytics/insights.
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	category := c.Query("category")

	insights := h.svc.Insights(c.Request.Context(), category)
	if insights == nil {
		insights = []domain.Insight{}
	}

	c.Header("Cache-Control", "public, max-age="+strconv.Itoa(int(h.cacheMaxAge.Seconds())))
	c.JSON(http.StatusOK, insightsResponse{
		Insights:    insights,
		Category:    category,
		GeneratedAt: time.Now().UTC(),
	})
}
