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

const insightsCacheMaxAge = 300 * time.Second

func setupInsightsRouter(t *testing.T, handler *api.InsightsHandler) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.GET("/analytics/insights", handler.GetInsights)

	return router
}

type mockInsightService struct {
	insightsFunc func(categoryFilter string) []domain.Insight
}

func (m *mockInsightService) Insights(_ context.Context, categoryFilter string) []domain.Insight {
	if m.insightsFunc != nil {
		return m.insightsFunc(categoryFilter)
	}

	return nil
}

func TestInsightsHandler_GetInsights(t *testing.T) {
	var gotFilter string

	svc := &mockInsightService{
		insightsFunc: func(categoryFilter string) []domain.Insight {
			gotFilter = categoryFilter
			return []domain.Insight{
				{Title: "Nighttime Dominance", Strength: domain.StrengthStrong, Category: categoryFilter},
			}
		},
	}

	handler := api.NewInsightsHandler(svc, insightsCacheMaxAge)
	router := setupInsightsRouter(t, handler)

	w := httptest.NewRecorder()

	req, reqErr := http.NewRequestWithContext(t.Context(), http.MethodGet,
		"/api/v1/analytics/insights?category=sighting", http.NoBody)
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

	if gotFilter != "sighting" {
		t.Errorf("category filter = %q, want %q", gotFilter, "sighting")
	}

	var body struct {
		Insights []domain.Insight `json:"insights"`
		Category string           `json:"category"`
	}
	if decodeErr := json.Unmarshal(w.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("failed to decode response: %v", decodeErr)
	}

	if len(body.Insights) != 1 || body.Insights[0].Title != "Nighttime Dominance" {
		t.Errorf("insights = %+v, want one Nighttime Dominance entry", body.Insights)
	}

	if body.Category != "sighting" {
		t.Errorf("category = %q, want %q", body.Category, "sighting")
	}
}

func TestInsightsHandler_NoInsightsRendersEmptyList(t *testing.T) {
	handler := api.NewInsightsHandler(&mockInsightService{}, insightsCacheMaxAge)
	router := setupInsightsRouter(t, handler)

	w := httptest.NewRecorder()

	req, reqErr := http.NewRequestWithContext(t.Context(), http.MethodGet,
		"/api/v1/analytics/insights", http.NoBody)
	if reqErr != nil {
		t.Fatalf("failed to create request: %v", reqErr)
	}

	router.ServeHTTP(w, req)

	var body map[string]json.RawMessage
	if decodeErr := json.Unmarshal(w.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("failed to decode response: %v", decodeErr)
	}

	if string(body["insights"]) != "[]" {
		t.Errorf("insights = %s, want []", body["insights"])
	}
}
