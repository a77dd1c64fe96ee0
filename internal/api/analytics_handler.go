// Package api provides HTTP handlers for the analytics service.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phenomwatch/analytics/internal/domain"
)

// SummaryProvider defines the aggregation operations needed by the handler.
type SummaryProvider interface {
	Summary(ctx context.Context) *domain.Summary
}

// AnalyticsHandler handles the summary endpoint.
type AnalyticsHandler struct {
	svc         SummaryProvider
	cacheMaxAge time.Duration
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(svc SummaryProvider, cacheMaxAge time.Duration) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, cacheMaxAge: cacheMaxAge}
}

// GetSummary handles GET /api/v1/analytics. The envelope always comes back
// complete; degraded fields are flagged in the dataSources map rather than
// failing the response.
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	summary := h.svc.Summary(c.Request.Context())

	c.Header("Cache-Control", "public, max-age="+strconv.Itoa(int(h.cacheMaxAge.Seconds())))
	c.JSON(http.StatusOK, summary)
}
