package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phenomwatch/analytics/internal/api"
	"github.com/phenomwatch/analytics/internal/domain"
)

const testCacheMaxAge = 300 * time.Second

func setupAnalyticsRouter(t *testing.T, handler *api.AnalyticsHandler) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.GET("/analytics", handler.GetSummary)

	return router
}

type mockSummaryService struct {
	summaryFunc func() *domain.Summary
}

func (m *mockSummaryService) Summary(_ context.Context) *domain.Summary {
	if m.summaryFunc != nil {
		return m.summaryFunc()
	}

	return &domain.Summary{
		CategoryBreakdown: []domain.Bucket{},
		DataSources:       map[string]string{},
		GeneratedAt:       time.Now().UTC(),
	}
}

func TestAnalyticsHandler_GetSummary(t *testing.T) {
	svc := &mockSummaryService{
		summaryFunc: func() *domain.Summary {
			return &domain.Summary{
				BasicStats:        domain.BasicStats{TotalReports: 1200},
				CategoryBreakdown: []domain.Bucket{{Key: "sighting", Count: 800}},
				DataSources:       map[string]string{"basicStats": "optimized"},
				GeneratedAt:       time.Now().UTC(),
			}
		},
	}

	handler := api.NewAnalyticsHandler(svc, testCacheMaxAge)
	router := setupAnalyticsRouter(t, handler)

	w := httptest.NewRecorder()

	req, reqErr := http.NewRequestWithContext(t.Context(), http.MethodGet, "/api/v1/analytics", http.NoBody)
	if reqErr != nil {
		t.Fatalf("failed to create request: %v", reqErr)
	}

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	if got := w.Header().Get("Cache-Control"); got != "public, max-age=300" {
		t.Errorf("Cache-Control = %q, want %q", got, "public, max-age=300")
	}

	var body struct {
		BasicStats  domain.BasicStats `json:"basicStats"`
		DataSources map[string]string `json:"dataSources"`
	}
	if decodeErr := json.Unmarshal(w.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("failed to decode response: %v", decodeErr)
	}

	if body.BasicStats.TotalReports != 1200 {
		t.Errorf("totalReports = %d, want 1200", body.BasicStats.TotalReports)
	}

	if body.DataSources["basicStats"] != "optimized" {
		t.Errorf("dataSources[basicStats] = %q, want optimized", body.DataSources["basicStats"])
	}
}

func TestAnalyticsHandler_EnvelopeListsNeverNull(t *testing.T) {
	handler := api.NewAnalyticsHandler(&mockSummaryService{}, testCacheMaxAge)
	router := setupAnalyticsRouter(t, handler)

	w := httptest.NewRecorder()

	req, reqErr := http.NewRequestWithContext(t.Context(), http.MethodGet, "/api/v1/analytics", http.NoBody)
	if reqErr != nil {
		t.Fatalf("failed to create request: %v", reqErr)
	}

	router.ServeHTTP(w, req)

	var body map[string]json.RawMessage
	if decodeErr := json.Unmarshal(w.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("failed to decode response: %v", decodeErr)
	}

	if string(body["categoryBreakdown"]) == "null" {
		t.Error("categoryBreakdown rendered as null, want []")
	}
}
