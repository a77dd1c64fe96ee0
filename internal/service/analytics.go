// Package service contains the aggregation gateway: it fans the metric
// resolvers out in parallel, settles every one of them, and assembles the
// analytics envelope. A resolver failure degrades that field to a default;
// it never fails the whole envelope.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/phenomwatch/analytics/internal/aggregate"
	"github.com/phenomwatch/analytics/internal/config"
	"github.com/phenomwatch/analytics/internal/domain"
	"github.com/phenomwatch/analytics/internal/insight"
	"github.com/phenomwatch/analytics/internal/logger"
	"github.com/phenomwatch/analytics/internal/resolver"
)

// Envelope list limits.
const (
	recentActivityLimit   = 10
	emergingPatternsLimit = 5
)

// Store is the read access the gateway needs. The analytics_* methods are
// the precomputed primary path; SampleApprovedReports feeds the capped
// fallback scans.
type Store interface {
	BasicStats(ctx context.Context, tz string) (domain.BasicStats, error)
	CategoryCounts(ctx context.Context) ([]domain.Bucket, error)
	CountryCounts(ctx context.Context) ([]domain.Bucket, error)
	CredibilityCounts(ctx context.Context) ([]domain.Bucket, error)
	SourceCounts(ctx context.Context) ([]domain.Bucket, error)
	HourlyCounts(ctx context.Context) ([]domain.TemporalBucket, error)
	DailyCounts(ctx context.Context, tz string) ([]domain.TemporalBucket, error)
	MonthlyTrend(ctx context.Context, now time.Time, loc *time.Location) ([]domain.MonthlyTrendPoint, error)
	EvidenceSummary(ctx context.Context) (domain.EvidenceSummary, error)
	WitnessStats(ctx context.Context) (domain.WitnessSummary, error)
	SampleApprovedReports(ctx context.Context, limit int) ([]domain.ReportRecord, error)
	RecentReports(ctx context.Context, limit int) ([]domain.RecentReport, error)
	ActivePatterns(ctx context.Context, limit int) ([]domain.DetectedPattern, error)
}

// Telemetry receives resolver outcomes and timings.
type Telemetry interface {
	ObserveResolution(resolver, source string)
	ObserveResolverDuration(resolver string, seconds float64)
}

// AnalyticsService assembles the analytics summary envelope.
type AnalyticsService struct {
	store   Store
	log     logger.Logger
	metrics Telemetry
	engine  *insight.Engine
	cfg     config.AnalyticsConfig
	loc     *time.Location
	now     func() time.Time
}

// NewAnalyticsService creates the gateway. The configured timezone must be
// a valid IANA zone; config validation guarantees that before we get here.
func NewAnalyticsService(store Store, log logger.Logger, metrics Telemetry,
	engine *insight.Engine, cfg config.AnalyticsConfig,
) (*AnalyticsService, error) {
	loc, locErr := time.LoadLocation(cfg.Timezone)
	if locErr != nil {
		return nil, locErr
	}

	return &AnalyticsService{
		store:   store,
		log:     log,
		metrics: metrics,
		engine:  engine,
		cfg:     cfg,
		loc:     loc,
		now:     time.Now,
	}, nil
}

// sample is a lazily fetched, shared slice of approved reports. The first
// resolver whose fallback needs it pays for the query; the rest reuse it.
type sample struct {
	once sync.Once
	rows []domain.ReportRecord
	err  error
}

func (s *sample) load(ctx context.Context, store Store, limit int) ([]domain.ReportRecord, error) {
	s.once.Do(func() {
		s.rows, s.err = store.SampleApprovedReports(ctx, limit)
	})
	return s.rows, s.err
}

// Summary resolves every metric family concurrently and assembles the
// envelope. Each resolver gets its own timeout and its own goroutine; a
// panic or failure in one degrades that field only. Summary itself never
// fails.
func (s *AnalyticsService) Summary(ctx context.Context) *domain.Summary {
	now := s.now()
	tz := s.loc.String()

	var (
		breakdownSample sample
		temporalSample  sample
	)

	var (
		basicStats  resolver.Outcome[domain.BasicStats]
		categories  resolver.Outcome[[]domain.Bucket]
		countries   resolver.Outcome[[]domain.Bucket]
		trend       resolver.Outcome[[]domain.MonthlyTrendPoint]
		credibility resolver.Outcome[[]domain.Bucket]
		timeOfDay   resolver.Outcome[[]domain.TemporalBucket]
		dayOfWeek   resolver.Outcome[[]domain.TemporalBucket]
		evidence    resolver.Outcome[domain.EvidenceSummary]
		sources     resolver.Outcome[[]domain.Bucket]
		recent      resolver.Outcome[[]domain.RecentReport]
		patterns    resolver.Outcome[[]domain.DetectedPattern]
		witnesses   resolver.Outcome[domain.WitnessSummary]
	)

	var wg sync.WaitGroup

	run(ctx, s, &wg, "basic_stats", &basicStats,
		func(ctx context.Context) (domain.BasicStats, error) {
			return s.store.BasicStats(ctx, tz)
		},
		func(ctx context.Context) (domain.BasicStats, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return domain.BasicStats{}, err
			}
			return aggregate.BasicStats(rows, now, s.loc), nil
		})

	run(ctx, s, &wg, "category_breakdown", &categories,
		s.store.CategoryCounts,
		func(ctx context.Context) ([]domain.Bucket, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.CategoryBreakdown(rows), nil
		})

	run(ctx, s, &wg, "country_breakdown", &countries,
		s.store.CountryCounts,
		func(ctx context.Context) ([]domain.Bucket, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.CountryBreakdown(rows), nil
		})

	run(ctx, s, &wg, "monthly_trend", &trend,
		func(ctx context.Context) ([]domain.MonthlyTrendPoint, error) {
			return s.store.MonthlyTrend(ctx, now, s.loc)
		},
		func(ctx context.Context) ([]domain.MonthlyTrendPoint, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.MonthlyTrend(rows, now, s.loc), nil
		})

	run(ctx, s, &wg, "credibility_breakdown", &credibility,
		s.store.CredibilityCounts,
		func(ctx context.Context) ([]domain.Bucket, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.CredibilityBreakdown(rows), nil
		})

	run(ctx, s, &wg, "time_of_day", &timeOfDay,
		s.store.HourlyCounts,
		func(ctx context.Context) ([]domain.TemporalBucket, error) {
			rows, err := temporalSample.load(ctx, s.store, s.cfg.TimeOfDayScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.TimeOfDay(rows), nil
		})

	run(ctx, s, &wg, "day_of_week", &dayOfWeek,
		func(ctx context.Context) ([]domain.TemporalBucket, error) {
			return s.store.DailyCounts(ctx, tz)
		},
		func(ctx context.Context) ([]domain.TemporalBucket, error) {
			rows, err := temporalSample.load(ctx, s.store, s.cfg.TimeOfDayScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.DayOfWeek(rows), nil
		})

	run(ctx, s, &wg, "evidence_analysis", &evidence,
		s.store.EvidenceSummary,
		func(ctx context.Context) (domain.EvidenceSummary, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return domain.EvidenceSummary{}, err
			}
			return aggregate.Evidence(rows), nil
		})

	run(ctx, s, &wg, "source_analysis", &sources,
		s.store.SourceCounts,
		func(ctx context.Context) ([]domain.Bucket, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.SourceBreakdown(rows), nil
		})

	run(ctx, s, &wg, "recent_activity", &recent,
		func(ctx context.Context) ([]domain.RecentReport, error) {
			return s.store.RecentReports(ctx, recentActivityLimit)
		},
		func(ctx context.Context) ([]domain.RecentReport, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return nil, err
			}
			return recentFromSample(rows), nil
		})

	run(ctx, s, &wg, "emerging_patterns", &patterns,
		func(ctx context.Context) ([]domain.DetectedPattern, error) {
			return s.store.ActivePatterns(ctx, emergingPatternsLimit)
		},
		func(ctx context.Context) ([]domain.DetectedPattern, error) {
			return []domain.DetectedPattern{}, nil
		})

	run(ctx, s, &wg, "witness_stats", &witnesses,
		s.store.WitnessStats,
		func(ctx context.Context) (domain.WitnessSummary, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return domain.WitnessSummary{}, err
			}
			return aggregate.Witness(rows), nil
		})

	wg.Wait()

	summary := &domain.Summary{
		BasicStats:           basicStats.Value,
		CategoryBreakdown:    emptyNotNil(categories.Value),
		CountryBreakdown:     emptyNotNil(countries.Value),
		MonthlyTrend:         trendOrScaffold(trend, now, s.loc),
		CredibilityBreakdown: emptyNotNil(credibility.Value),
		TimeOfDayData:        bucketsOrScaffold(timeOfDay, aggregate.HourScaffold),
		DayOfWeekData:        bucketsOrScaffold(dayOfWeek, aggregate.DayScaffold),
		EvidenceAnalysis:     evidence.Value,
		SourceAnalysis:       emptyNotNil(sources.Value),
		RecentActivity:       emptyNotNil(recent.Value),
		EmergingPatterns:     emptyNotNil(patterns.Value),
		WitnessStats:         witnesses.Value,
		DataSources: map[string]string{
			"basicStats":           string(basicStats.Source),
			"categoryBreakdown":    string(categories.Source),
			"countryBreakdown":     string(countries.Source),
			"monthlyTrend":         string(trend.Source),
			"credibilityBreakdown": string(credibility.Source),
			"timeOfDayData":        string(timeOfDay.Source),
			"dayOfWeekData":        string(dayOfWeek.Source),
			"evidenceAnalysis":     string(evidence.Source),
			"sourceAnalysis":       string(sources.Source),
			"recentActivity":       string(recent.Source),
			"emergingPatterns":     string(patterns.Source),
			"witnessStats":         string(witnesses.Source),
		},
		GeneratedAt: now,
	}

	summary.Insights = s.engine.Derive(insight.Breakdowns{
		TimeOfDay:   summary.TimeOfDayData,
		DayOfWeek:   summary.DayOfWeekData,
		Categories:  summary.CategoryBreakdown,
		Credibility: summary.CredibilityBreakdown,
	}, "")

	return summary
}

// Insights resolves only the breakdowns the rules read and derives the
// insight list, optionally restricted to one category.
func (s *AnalyticsService) Insights(ctx context.Context, categoryFilter string) []domain.Insight {
	var (
		temporalSample  sample
		breakdownSample sample
	)

	var (
		categories  resolver.Outcome[[]domain.Bucket]
		credibility resolver.Outcome[[]domain.Bucket]
		timeOfDay   resolver.Outcome[[]domain.TemporalBucket]
		dayOfWeek   resolver.Outcome[[]domain.TemporalBucket]
	)

	var wg sync.WaitGroup

	run(ctx, s, &wg, "category_breakdown", &categories,
		s.store.CategoryCounts,
		func(ctx context.Context) ([]domain.Bucket, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.CategoryBreakdown(rows), nil
		})

	run(ctx, s, &wg, "credibility_breakdown", &credibility,
		s.store.CredibilityCounts,
		func(ctx context.Context) ([]domain.Bucket, error) {
			rows, err := breakdownSample.load(ctx, s.store, s.cfg.BreakdownScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.CredibilityBreakdown(rows), nil
		})

	run(ctx, s, &wg, "time_of_day", &timeOfDay,
		s.store.HourlyCounts,
		func(ctx context.Context) ([]domain.TemporalBucket, error) {
			rows, err := temporalSample.load(ctx, s.store, s.cfg.TimeOfDayScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.TimeOfDay(rows), nil
		})

	run(ctx, s, &wg, "day_of_week", &dayOfWeek,
		func(ctx context.Context) ([]domain.TemporalBucket, error) {
			return s.store.DailyCounts(ctx, s.loc.String())
		},
		func(ctx context.Context) ([]domain.TemporalBucket, error) {
			rows, err := temporalSample.load(ctx, s.store, s.cfg.TimeOfDayScanCap)
			if err != nil {
				return nil, err
			}
			return aggregate.DayOfWeek(rows), nil
		})

	wg.Wait()

	return s.engine.Derive(insight.Breakdowns{
		TimeOfDay:   bucketsOrScaffold(timeOfDay, aggregate.HourScaffold),
		DayOfWeek:   bucketsOrScaffold(dayOfWeek, aggregate.DayScaffold),
		Categories:  categories.Value,
		Credibility: credibility.Value,
	}, categoryFilter)
}

// run executes one resolver unit in its own goroutine with its own timeout,
// capturing panics so a misbehaving unit cannot take the envelope down.
func run[T any](ctx context.Context, s *AnalyticsService, wg *sync.WaitGroup,
	name string, out *resolver.Outcome[T],
	primary, fallback func(context.Context) (T, error),
) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		started := time.Now()
		defer func() {
			s.metrics.ObserveResolverDuration(name, time.Since(started).Seconds())
			if r := recover(); r != nil {
				s.log.Error("resolver panicked",
					logger.String("resolver", name),
					logger.Any("panic", r),
				)
				*out = resolver.Outcome[T]{Source: resolver.SourceUnavailable}
				s.metrics.ObserveResolution(name, string(resolver.SourceUnavailable))
			}
		}()

		unitCtx, cancel := context.WithTimeout(ctx, s.cfg.ResolverTimeout)
		defer cancel()

		*out = resolver.Resolve(unitCtx, name, s.log, s.metrics, primary, fallback)
	}()
}

// recentFromSample builds the activity feed from the newest-first sample.
func recentFromSample(rows []domain.ReportRecord) []domain.RecentReport {
	n := len(rows)
	if n > recentActivityLimit {
		n = recentActivityLimit
	}

	recent := make([]domain.RecentReport, 0, n)
	for _, row := range rows[:n] {
		entry := domain.RecentReport{
			ID:          row.ID,
			Title:       row.Title,
			Category:    row.Category,
			Credibility: row.Credibility,
			CreatedAt:   row.CreatedAt,
		}
		if row.Country != nil {
			entry.Country = *row.Country
		}
		recent = append(recent, entry)
	}

	return recent
}

// emptyNotNil keeps degraded list fields rendering as [] instead of null.
func emptyNotNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// bucketsOrScaffold substitutes the fully enumerated zero scaffold when a
// temporal resolver came back unavailable, keeping the bucket-count
// contract intact.
func bucketsOrScaffold(out resolver.Outcome[[]domain.TemporalBucket],
	scaffold func() []domain.TemporalBucket,
) []domain.TemporalBucket {
	if out.Source == resolver.SourceUnavailable || out.Value == nil {
		return scaffold()
	}
	return out.Value
}

// trendOrScaffold works like bucketsOrScaffold for the monthly trend.
func trendOrScaffold(out resolver.Outcome[[]domain.MonthlyTrendPoint],
	now time.Time, loc *time.Location,
) []domain.MonthlyTrendPoint {
	if out.Source == resolver.SourceUnavailable || out.Value == nil {
		return aggregate.TrendScaffold(now, loc)
	}
	return out.Value
}
