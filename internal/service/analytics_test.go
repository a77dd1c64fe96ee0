//nolint:testpackage // Testing internal assembly requires same package access
package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phenomwatch/analytics/internal/config"
	"github.com/phenomwatch/analytics/internal/domain"
	"github.com/phenomwatch/analytics/internal/insight"
	"github.com/phenomwatch/analytics/internal/logger"
	"github.com/phenomwatch/analytics/internal/resolver"
)

var errProcMissing = errors.New("function does not exist")

// mockStore serves canned values; any method listed in failing returns an
// error instead. sampleCalls counts capped-scan queries.
type mockStore struct {
	failing     map[string]bool
	sample      []domain.ReportRecord
	patterns    []domain.DetectedPattern
	sampleCalls atomic.Int64
	panicOn     string
}

func (m *mockStore) fail(name string) bool { return m.failing[name] }

func (m *mockStore) BasicStats(_ context.Context, _ string) (domain.BasicStats, error) {
	if m.panicOn == "basic_stats" {
		panic("boom")
	}
	if m.fail("basic_stats") {
		return domain.BasicStats{}, errProcMissing
	}
	return domain.BasicStats{TotalReports: 100}, nil
}

func (m *mockStore) CategoryCounts(context.Context) ([]domain.Bucket, error) {
	if m.fail("category") {
		return nil, errProcMissing
	}
	return []domain.Bucket{{Key: "sighting", Count: 80}, {Key: "encounter", Count: 20}}, nil
}

func (m *mockStore) CountryCounts(context.Context) ([]domain.Bucket, error) {
	if m.fail("country") {
		return nil, errProcMissing
	}
	return []domain.Bucket{{Key: "US", Count: 60}}, nil
}

func (m *mockStore) CredibilityCounts(context.Context) ([]domain.Bucket, error) {
	if m.fail("credibility") {
		return nil, errProcMissing
	}
	return []domain.Bucket{{Key: "high", Count: 10}}, nil
}

func (m *mockStore) SourceCounts(context.Context) ([]domain.Bucket, error) {
	if m.fail("source") {
		return nil, errProcMissing
	}
	return []domain.Bucket{{Key: "web", Count: 100}}, nil
}

func (m *mockStore) HourlyCounts(context.Context) ([]domain.TemporalBucket, error) {
	if m.fail("hourly") {
		return nil, errProcMissing
	}
	buckets := make([]domain.TemporalBucket, domain.HourBuckets)
	for i := range buckets {
		buckets[i].ByCategory = map[string]int64{}
	}
	return buckets, nil
}

func (m *mockStore) DailyCounts(_ context.Context, _ string) ([]domain.TemporalBucket, error) {
	if m.fail("daily") {
		return nil, errProcMissing
	}
	buckets := make([]domain.TemporalBucket, domain.DayBuckets)
	for i := range buckets {
		buckets[i].ByCategory = map[string]int64{}
	}
	return buckets, nil
}

func (m *mockStore) MonthlyTrend(_ context.Context, _ time.Time, _ *time.Location) ([]domain.MonthlyTrendPoint, error) {
	if m.fail("trend") {
		return nil, errProcMissing
	}
	return make([]domain.MonthlyTrendPoint, domain.TrendMonths), nil
}

func (m *mockStore) EvidenceSummary(context.Context) (domain.EvidenceSummary, error) {
	if m.fail("evidence") {
		return domain.EvidenceSummary{}, errProcMissing
	}
	return domain.EvidenceSummary{Total: 100}, nil
}

func (m *mockStore) WitnessStats(context.Context) (domain.WitnessSummary, error) {
	if m.fail("witness") {
		return domain.WitnessSummary{}, errProcMissing
	}
	return domain.WitnessSummary{TotalReports: 100}, nil
}

func (m *mockStore) SampleApprovedReports(_ context.Context, _ int) ([]domain.ReportRecord, error) {
	m.sampleCalls.Add(1)
	if m.fail("sample") {
		return nil, errProcMissing
	}
	return m.sample, nil
}

func (m *mockStore) RecentReports(_ context.Context, _ int) ([]domain.RecentReport, error) {
	if m.fail("recent") {
		return nil, errProcMissing
	}
	return []domain.RecentReport{{ID: 1, Title: "Lights over ridge"}}, nil
}

func (m *mockStore) ActivePatterns(_ context.Context, _ int) ([]domain.DetectedPattern, error) {
	if m.fail("patterns") {
		return nil, errProcMissing
	}
	return m.patterns, nil
}

type nopTelemetry struct{}

func (nopTelemetry) ObserveResolution(string, string)        {}
func (nopTelemetry) ObserveResolverDuration(string, float64) {}

func newTestService(t *testing.T, store Store) *AnalyticsService {
	t.Helper()

	cfg := config.AnalyticsConfig{
		Timezone:         "UTC",
		BreakdownScanCap: 10000,
		TimeOfDayScanCap: 5000,
		ResolverTimeout:  time.Second,
		RequestTimeout:   5 * time.Second,
	}

	svc, newErr := NewAnalyticsService(store, logger.NewNop(), nopTelemetry{},
		insight.NewEngine(insight.DefaultThresholds()), cfg)
	if newErr != nil {
		t.Fatalf("NewAnalyticsService() error = %v", newErr)
	}

	return svc
}

func TestSummary_AllOptimized(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store)

	summary := svc.Summary(context.Background())

	if summary.BasicStats.TotalReports != 100 {
		t.Errorf("TotalReports = %d, want 100", summary.BasicStats.TotalReports)
	}

	for field, source := range summary.DataSources {
		if source != string(resolver.SourceOptimized) {
			t.Errorf("DataSources[%s] = %q, want optimized", field, source)
		}
	}

	if got := store.sampleCalls.Load(); got != 0 {
		t.Errorf("sample queried %d times, want 0 on the optimized path", got)
	}
}

func TestSummary_DegradesToCappedScan(t *testing.T) {
	created := time.Date(2026, 4, 2, 22, 15, 0, 0, time.UTC)
	eventTime := "22:30"

	store := &mockStore{
		failing: map[string]bool{"category": true, "evidence": true},
		sample: []domain.ReportRecord{
			{ID: 1, Category: "sighting", CreatedAt: created, EventTime: &eventTime, HasPhotoVideo: true},
			{ID: 2, Category: "sighting", CreatedAt: created},
			{ID: 3, Category: "encounter", CreatedAt: created},
		},
	}
	svc := newTestService(t, store)

	summary := svc.Summary(context.Background())

	if summary.DataSources["categoryBreakdown"] != string(resolver.SourceDegraded) {
		t.Errorf("categoryBreakdown source = %q, want degraded", summary.DataSources["categoryBreakdown"])
	}

	if len(summary.CategoryBreakdown) != 2 || summary.CategoryBreakdown[0].Key != "sighting" {
		t.Errorf("CategoryBreakdown = %+v, want sighting first", summary.CategoryBreakdown)
	}

	if summary.EvidenceAnalysis.AnyEvidence.Count != 1 {
		t.Errorf("AnyEvidence.Count = %d, want 1", summary.EvidenceAnalysis.AnyEvidence.Count)
	}

	// Two degraded resolvers share one capped scan.
	if got := store.sampleCalls.Load(); got != 1 {
		t.Errorf("sample queried %d times, want 1", got)
	}

	if summary.DataSources["basicStats"] != string(resolver.SourceOptimized) {
		t.Errorf("basicStats source = %q, want optimized", summary.DataSources["basicStats"])
	}
}

func TestSummary_UnavailableKeepsEnvelopeShape(t *testing.T) {
	store := &mockStore{
		failing: map[string]bool{"hourly": true, "daily": true, "sample": true},
	}
	svc := newTestService(t, store)

	summary := svc.Summary(context.Background())

	if summary.DataSources["timeOfDayData"] != string(resolver.SourceUnavailable) {
		t.Errorf("timeOfDayData source = %q, want unavailable", summary.DataSources["timeOfDayData"])
	}

	if len(summary.TimeOfDayData) != domain.HourBuckets {
		t.Errorf("TimeOfDayData has %d buckets, want %d", len(summary.TimeOfDayData), domain.HourBuckets)
	}

	if len(summary.DayOfWeekData) != domain.DayBuckets {
		t.Errorf("DayOfWeekData has %d buckets, want %d", len(summary.DayOfWeekData), domain.DayBuckets)
	}
}

func TestSummary_ResolverPanicDegradesOneField(t *testing.T) {
	store := &mockStore{panicOn: "basic_stats"}
	svc := newTestService(t, store)

	summary := svc.Summary(context.Background())

	if summary.DataSources["basicStats"] != string(resolver.SourceUnavailable) {
		t.Errorf("basicStats source = %q, want unavailable", summary.DataSources["basicStats"])
	}

	if summary.DataSources["categoryBreakdown"] != string(resolver.SourceOptimized) {
		t.Errorf("categoryBreakdown source = %q, want optimized", summary.DataSources["categoryBreakdown"])
	}
}

func TestSummary_MissingPatternRegistryYieldsEmptyList(t *testing.T) {
	store := &mockStore{patterns: nil}
	svc := newTestService(t, store)

	summary := svc.Summary(context.Background())

	if summary.EmergingPatterns == nil {
		t.Error("EmergingPatterns is nil, want empty list")
	}

	if len(summary.EmergingPatterns) != 0 {
		t.Errorf("EmergingPatterns has %d entries, want 0", len(summary.EmergingPatterns))
	}
}

func TestInsights_CategoryFilter(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store)

	insights := svc.Insights(context.Background(), "sighting")
	for _, in := range insights {
		if in.Title == "Dominant Category" {
			t.Error("dominance insight emitted under a category filter")
		}
	}
}
