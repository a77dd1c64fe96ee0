package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/phenomwatch/analytics/internal/aggregate"
	"github.com/phenomwatch/analytics/internal/domain"
)

// Repository handles read access to the report store, the precomputed
// analytics functions, and the pattern registry. All operations are
// read-only.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository with the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ---- Optimized path: precomputed analytics functions ----
//
// Each method invokes one SQL function created by the analytics migration.
// When a function is missing or errors, callers fall back to a capped scan;
// these methods just surface the error.

// BasicStats invokes analytics_basic_stats. Calendar-month boundaries are
// evaluated in the given IANA time zone.
func (r *Repository) BasicStats(ctx context.Context, tz string) (domain.BasicStats, error) {
	query := `
		SELECT total_reports, total_views, country_count,
			reports_this_month, reports_last_month,
			reports_last_24h, reports_last_7d
		FROM analytics_basic_stats($1)
	`

	var stats domain.BasicStats
	scanErr := r.db.QueryRowContext(ctx, query, tz).Scan(
		&stats.TotalReports,
		&stats.TotalViews,
		&stats.CountryCount,
		&stats.ReportsThisMonth,
		&stats.ReportsLastMonth,
		&stats.ReportsLast24h,
		&stats.ReportsLast7d,
	)
	if scanErr != nil {
		return domain.BasicStats{}, fmt.Errorf("basic stats: %w", scanErr)
	}

	stats.MonthOverMonth = domain.PercentChange(stats.ReportsThisMonth, stats.ReportsLastMonth)
	return stats, nil
}

// CategoryCounts invokes analytics_category_counts.
func (r *Repository) CategoryCounts(ctx context.Context) ([]domain.Bucket, error) {
	return r.queryBuckets(ctx, "SELECT category, report_count FROM analytics_category_counts()", "category counts")
}

// CountryCounts invokes analytics_country_counts. The function excludes
// null countries and returns at most the top 15.
func (r *Repository) CountryCounts(ctx context.Context) ([]domain.Bucket, error) {
	return r.queryBuckets(ctx, "SELECT country, report_count FROM analytics_country_counts()", "country counts")
}

// CredibilityCounts invokes analytics_credibility_counts. The function
// orders levels by the fixed severity ladder and omits zero-count levels.
func (r *Repository) CredibilityCounts(ctx context.Context) ([]domain.Bucket, error) {
	return r.queryBuckets(ctx, "SELECT credibility, report_count FROM analytics_credibility_counts()", "credibility counts")
}

// SourceCounts invokes analytics_source_counts.
func (r *Repository) SourceCounts(ctx context.Context) ([]domain.Bucket, error) {
	return r.queryBuckets(ctx, "SELECT source_type, report_count FROM analytics_source_counts()", "source counts")
}

// HourlyCounts invokes analytics_hourly_counts and expands the sparse
// result onto the full 24-bucket scaffold.
func (r *Repository) HourlyCounts(ctx context.Context) ([]domain.TemporalBucket, error) {
	query := "SELECT event_hour, category, report_count FROM analytics_hourly_counts()"

	rows, queryErr := r.db.QueryContext(ctx, query)
	if queryErr != nil {
		return nil, fmt.Errorf("query hourly counts: %w", queryErr)
	}
	defer rows.Close()

	buckets := aggregate.HourScaffold()
	for rows.Next() {
		var (
			hour     int
			category string
			count    int64
		)
		if scanErr := rows.Scan(&hour, &category, &count); scanErr != nil {
			return nil, fmt.Errorf("scan hourly row: %w", scanErr)
		}
		if hour < 0 || hour >= domain.HourBuckets {
			continue
		}
		buckets[hour].Count += count
		buckets[hour].ByCategory[category] += count
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("hourly rows: %w", rowsErr)
	}

	return buckets, nil
}

// DailyCounts invokes analytics_daily_counts (weekday evaluated in tz) and
// expands the sparse result onto the full 7-bucket scaffold.
func (r *Repository) DailyCounts(ctx context.Context, tz string) ([]domain.TemporalBucket, error) {
	query := "SELECT event_day, category, report_count FROM analytics_daily_counts($1)"

	rows, queryErr := r.db.QueryContext(ctx, query, tz)
	if queryErr != nil {
		return nil, fmt.Errorf("query daily counts: %w", queryErr)
	}
	defer rows.Close()

	buckets := aggregate.DayScaffold()
	for rows.Next() {
		var (
			day      int
			category string
			count    int64
		)
		if scanErr := rows.Scan(&day, &category, &count); scanErr != nil {
			return nil, fmt.Errorf("scan daily row: %w", scanErr)
		}
		if day < 0 || day >= domain.DayBuckets {
			continue
		}
		buckets[day].Count += count
		buckets[day].ByCategory[category] += count
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("daily rows: %w", rowsErr)
	}

	return buckets, nil
}

// MonthlyTrend invokes analytics_monthly_trend and expands the sparse
// result onto the trailing-twelve-month scaffold ending at now.
func (r *Repository) MonthlyTrend(ctx context.Context, now time.Time, loc *time.Location) ([]domain.MonthlyTrendPoint, error) {
	query := "SELECT month_key, category, report_count FROM analytics_monthly_trend($1)"

	rows, queryErr := r.db.QueryContext(ctx, query, loc.String())
	if queryErr != nil {
		return nil, fmt.Errorf("query monthly trend: %w", queryErr)
	}
	defer rows.Close()

	points := aggregate.TrendScaffold(now, loc)
	index := make(map[string]int, len(points))
	for i := range points {
		index[points[i].Month] = i
	}

	for rows.Next() {
		var (
			month    string
			category string
			count    int64
		)
		if scanErr := rows.Scan(&month, &category, &count); scanErr != nil {
			return nil, fmt.Errorf("scan trend row: %w", scanErr)
		}
		at, ok := index[month]
		if !ok {
			continue
		}
		points[at].Count += count
		points[at].ByCategory[category] += count
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("trend rows: %w", rowsErr)
	}

	return points, nil
}

// EvidenceSummary invokes analytics_evidence_summary. The any-evidence
// column is computed as a union in SQL, so overlapping evidence types are
// not double-counted.
func (r *Repository) EvidenceSummary(ctx context.Context) (domain.EvidenceSummary, error) {
	query := `
		SELECT total_reports, with_photo_video, with_physical, with_official, with_any
		FROM analytics_evidence_summary()
	`

	var summary domain.EvidenceSummary
	scanErr := r.db.QueryRowContext(ctx, query).Scan(
		&summary.Total,
		&summary.PhotoVideo.Count,
		&summary.Physical.Count,
		&summary.OfficialReport.Count,
		&summary.AnyEvidence.Count,
	)
	if scanErr != nil {
		return domain.EvidenceSummary{}, fmt.Errorf("evidence summary: %w", scanErr)
	}

	summary.PhotoVideo.Percentage = domain.Percent(summary.PhotoVideo.Count, summary.Total)
	summary.Physical.Percentage = domain.Percent(summary.Physical.Count, summary.Total)
	summary.OfficialReport.Percentage = domain.Percent(summary.OfficialReport.Count, summary.Total)
	summary.AnyEvidence.Percentage = domain.Percent(summary.AnyEvidence.Count, summary.Total)

	return summary, nil
}

// WitnessStats invokes analytics_witness_stats.
func (r *Repository) WitnessStats(ctx context.Context) (domain.WitnessSummary, error) {
	query := `
		SELECT total_reports, total_witnesses, multi_witness_reports,
			first_hand_reports, anonymous_reports
		FROM analytics_witness_stats()
	`

	var summary domain.WitnessSummary
	scanErr := r.db.QueryRowContext(ctx, query).Scan(
		&summary.TotalReports,
		&summary.TotalWitnesses,
		&summary.MultiWitnessReports,
		&summary.FirstHandReports,
		&summary.AnonymousReports,
	)
	if scanErr != nil {
		return domain.WitnessSummary{}, fmt.Errorf("witness stats: %w", scanErr)
	}

	if summary.TotalReports > 0 {
		summary.AverageWitnesses = domain.Round1(
			float64(summary.TotalWitnesses) / float64(summary.TotalReports),
		)
	}
	summary.AnonymousPercentage = domain.Percent(summary.AnonymousReports, summary.TotalReports)

	return summary, nil
}

// ---- Fallback path ----

// SampleApprovedReports fetches at most limit approved reports, newest
// first. The sample is the input to the in-memory fallback computations:
// at scale the resulting breakdowns describe the sampled window only.
func (r *Repository) SampleApprovedReports(ctx context.Context, limit int) ([]domain.ReportRecord, error) {
	query := `
		SELECT id, title, category, country, credibility, created_at,
			event_date, event_time, has_photo_video, has_physical_evidence,
			has_official_report, witness_count, is_first_hand, is_anonymous,
			view_count, source_type
		FROM reports
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, queryErr := r.db.QueryContext(ctx, query, string(domain.StatusApproved), limit)
	if queryErr != nil {
		return nil, fmt.Errorf("query report sample: %w", queryErr)
	}
	defer rows.Close()

	var records []domain.ReportRecord
	for rows.Next() {
		record, scanErr := scanReport(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan report row: %w", scanErr)
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("report sample rows: %w", rowsErr)
	}

	return records, nil
}

// scanReport scans one report row, normalizing nullable columns.
func scanReport(rows *sql.Rows) (domain.ReportRecord, error) {
	var (
		record       domain.ReportRecord
		country      sql.NullString
		eventDate    sql.NullTime
		eventTime    sql.NullString
		witnessCount sql.NullInt64
	)

	scanErr := rows.Scan(
		&record.ID, &record.Title, &record.Category, &country,
		&record.Credibility, &record.CreatedAt, &eventDate, &eventTime,
		&record.HasPhotoVideo, &record.HasPhysicalEvidence, &record.HasOfficialReport,
		&witnessCount, &record.IsFirstHand, &record.IsAnonymous,
		&record.ViewCount, &record.SourceType,
	)
	if scanErr != nil {
		return domain.ReportRecord{}, scanErr
	}

	record.Status = domain.StatusApproved
	if country.Valid {
		record.Country = &country.String
	}
	if eventDate.Valid {
		record.EventDate = &eventDate.Time
	}
	if eventTime.Valid {
		record.EventTime = &eventTime.String
	}
	if witnessCount.Valid {
		count := int(witnessCount.Int64)
		record.WitnessCount = &count
	}

	return record, nil
}

// queryBuckets runs a two-column (key, count) query and scans the result.
func (r *Repository) queryBuckets(ctx context.Context, query, what string) ([]domain.Bucket, error) {
	rows, queryErr := r.db.QueryContext(ctx, query)
	if queryErr != nil {
		return nil, fmt.Errorf("query %s: %w", what, queryErr)
	}
	defer rows.Close()

	var buckets []domain.Bucket
	for rows.Next() {
		var bucket domain.Bucket
		if scanErr := rows.Scan(&bucket.Key, &bucket.Count); scanErr != nil {
			return nil, fmt.Errorf("scan %s row: %w", what, scanErr)
		}
		buckets = append(buckets, bucket)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%s rows: %w", what, rowsErr)
	}

	return buckets, nil
}
