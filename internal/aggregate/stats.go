package aggregate

import (
	"time"

	"github.com/phenomwatch/analytics/internal/domain"
)

// multiWitnessThreshold is the minimum witness count for a report to count
// as multi-witness.
const multiWitnessThreshold = 2

// BasicStats computes headline counts from the sample. Month boundaries are
// evaluated in loc. TotalViews is reported as 0 on this path: summing views
// over a capped sample would misstate the real total, so the fallback skips
// view aggregation entirely.
func BasicStats(rows []domain.ReportRecord, now time.Time, loc *time.Location) domain.BasicStats {
	local := now.In(loc)
	thisMonthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.AddDate(0, 0, -7)

	stats := domain.BasicStats{TotalReports: int64(len(rows))}

	countries := make(map[string]struct{})
	for i := range rows {
		if rows[i].Country != nil && *rows[i].Country != "" {
			countries[*rows[i].Country] = struct{}{}
		}

		created := rows[i].CreatedAt
		switch {
		case !created.Before(thisMonthStart):
			stats.ReportsThisMonth++
		case !created.Before(lastMonthStart):
			stats.ReportsLastMonth++
		}

		if created.After(dayAgo) {
			stats.ReportsLast24h++
		}
		if created.After(weekAgo) {
			stats.ReportsLast7d++
		}
	}

	stats.CountryCount = int64(len(countries))
	stats.MonthOverMonth = domain.PercentChange(stats.ReportsThisMonth, stats.ReportsLastMonth)

	return stats
}

// Evidence computes the evidence breakdown from the sample. AnyEvidence
// counts the union of the three evidence types, never their sum, so a
// record with several evidence types is counted once.
func Evidence(rows []domain.ReportRecord) domain.EvidenceSummary {
	summary := domain.EvidenceSummary{Total: int64(len(rows))}

	for i := range rows {
		if rows[i].HasPhotoVideo {
			summary.PhotoVideo.Count++
		}
		if rows[i].HasPhysicalEvidence {
			summary.Physical.Count++
		}
		if rows[i].HasOfficialReport {
			summary.OfficialReport.Count++
		}
		if rows[i].HasAnyEvidence() {
			summary.AnyEvidence.Count++
		}
	}

	summary.PhotoVideo.Percentage = domain.Percent(summary.PhotoVideo.Count, summary.Total)
	summary.Physical.Percentage = domain.Percent(summary.Physical.Count, summary.Total)
	summary.OfficialReport.Percentage = domain.Percent(summary.OfficialReport.Count, summary.Total)
	summary.AnyEvidence.Percentage = domain.Percent(summary.AnyEvidence.Count, summary.Total)

	return summary
}

// Witness computes witness statistics from the sample. A report with no
// witness count contributes 0 witnesses, not 1.
func Witness(rows []domain.ReportRecord) domain.WitnessSummary {
	summary := domain.WitnessSummary{TotalReports: int64(len(rows))}

	for i := range rows {
		witnesses := rows[i].Witnesses()
		summary.TotalWitnesses += int64(witnesses)

		if witnesses >= multiWitnessThreshold {
			summary.MultiWitnessReports++
		}
		if rows[i].IsFirstHand {
			summary.FirstHandReports++
		}
		if rows[i].IsAnonymous {
			summary.AnonymousReports++
		}
	}

	if summary.TotalReports > 0 {
		summary.AverageWitnesses = domain.Round1(
			float64(summary.TotalWitnesses) / float64(summary.TotalReports),
		)
	}
	summary.AnonymousPercentage = domain.Percent(summary.AnonymousReports, summary.TotalReports)

	return summary
}
