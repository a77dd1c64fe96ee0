package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/phenomwatch/analytics/internal/domain"
)

// pgUndefinedTable is the Postgres error code for a missing relation.
const pgUndefinedTable = "42P01"

// RecentReports fetches the newest approved reports for the activity feed.
func (r *Repository) RecentReports(ctx context.Context, limit int) ([]domain.RecentReport, error) {
	query := `
		SELECT id, title, category, country, credibility, created_at
		FROM reports
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, queryErr := r.db.QueryContext(ctx, query, string(domain.StatusApproved), limit)
	if queryErr != nil {
		return nil, fmt.Errorf("query recent reports: %w", queryErr)
	}
	defer rows.Close()

	var reports []domain.RecentReport
	for rows.Next() {
		var (
			report  domain.RecentReport
			country sql.NullString
		)
		scanErr := rows.Scan(
			&report.ID, &report.Title, &report.Category,
			&country, &report.Credibility, &report.CreatedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("scan recent report: %w", scanErr)
		}
		if country.Valid {
			report.Country = country.String
		}
		reports = append(reports, report)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("recent report rows: %w", rowsErr)
	}

	return reports, nil
}

// ActivePatterns fetches the highest-significance active and emerging
// patterns from the detection registry. Deployments without the detection
// job have no registry table; that is a normal condition, not an error,
// and yields an empty list.
func (r *Repository) ActivePatterns(ctx context.Context, limit int) ([]domain.DetectedPattern, error) {
	query := `
		SELECT id, pattern_type, title, summary, report_count,
			confidence_score, significance_score, categories, status,
			first_detected_at, last_detected_at
		FROM detected_patterns
		WHERE status IN ($1, $2)
		ORDER BY significance_score DESC
		LIMIT $3
	`

	rows, queryErr := r.db.QueryContext(ctx, query,
		string(domain.PatternStatusActive), string(domain.PatternStatusEmerging), limit)
	if queryErr != nil {
		if isUndefinedTable(queryErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("query detected patterns: %w", queryErr)
	}
	defer rows.Close()

	var patterns []domain.DetectedPattern
	for rows.Next() {
		var pattern domain.DetectedPattern
		scanErr := rows.Scan(
			&pattern.ID, &pattern.PatternType, &pattern.Title, &pattern.Summary,
			&pattern.ReportCount, &pattern.Confidence, &pattern.Significance,
			pq.Array(&pattern.Categories), &pattern.Status,
			&pattern.FirstDetectedAt, &pattern.LastDetectedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("scan detected pattern: %w", scanErr)
		}
		patterns = append(patterns, pattern)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("detected pattern rows: %w", rowsErr)
	}

	return patterns, nil
}

// isUndefinedTable reports whether err is a Postgres undefined-relation error.
func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUndefinedTable
}
