package aggregate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/phenomwatch/analytics/internal/domain"
)

// HourScaffold returns all 24 hourly buckets with zero counts.
// Partial enumeration is a defect: every hour 0-23 is always present.
func HourScaffold() []domain.TemporalBucket {
	buckets := make([]domain.TemporalBucket, domain.HourBuckets)
	for hour := range domain.HourBuckets {
		buckets[hour] = domain.TemporalBucket{
			Key:        strconv.Itoa(hour),
			Label:      domain.HourLabel(hour),
			ByCategory: make(map[string]int64),
		}
	}
	return buckets
}

// DayScaffold returns all 7 day-of-week buckets (Sunday=0) with zero counts.
func DayScaffold() []domain.TemporalBucket {
	buckets := make([]domain.TemporalBucket, domain.DayBuckets)
	for day := range domain.DayBuckets {
		buckets[day] = domain.TemporalBucket{
			Key:        strconv.Itoa(day),
			Label:      domain.DayLabel(day),
			ByCategory: make(map[string]int64),
		}
	}
	return buckets
}

// TimeOfDay buckets the sample by event hour. Records without a usable
// event time are excluded from this breakdown only.
func TimeOfDay(rows []domain.ReportRecord) []domain.TemporalBucket {
	buckets := HourScaffold()
	for i := range rows {
		hour, ok := rows[i].EventHour()
		if !ok {
			continue
		}
		buckets[hour].Count++
		buckets[hour].ByCategory[rows[i].Category]++
	}
	return buckets
}

// DayOfWeek buckets the sample by the weekday of the event date. The date
// is a calendar value (the driver scans it as midnight UTC), so the weekday
// is read straight off the stored date; converting it into another zone
// would shift it to the prior day. Records without an event date are
// excluded from this breakdown.
func DayOfWeek(rows []domain.ReportRecord) []domain.TemporalBucket {
	buckets := DayScaffold()
	for i := range rows {
		if rows[i].EventDate == nil {
			continue
		}
		day := int(rows[i].EventDate.Weekday())
		buckets[day].Count++
		buckets[day].ByCategory[rows[i].Category]++
	}
	return buckets
}

// TrendScaffold returns the trailing 12 calendar months ending at now
// (evaluated in loc), oldest first, all counts zero.
func TrendScaffold(now time.Time, loc *time.Location) []domain.MonthlyTrendPoint {
	local := now.In(loc)
	points := make([]domain.MonthlyTrendPoint, 0, domain.TrendMonths)

	for offset := domain.TrendMonths - 1; offset >= 0; offset-- {
		month := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -offset, 0)
		points = append(points, domain.MonthlyTrendPoint{
			Month:      monthKey(month),
			ByCategory: make(map[string]int64),
		})
	}

	return points
}

// MonthlyTrend buckets the sample by the calendar month of creation in loc.
// Exactly 12 points are emitted ending at the current month, zero-filled
// for months with no reports.
func MonthlyTrend(rows []domain.ReportRecord, now time.Time, loc *time.Location) []domain.MonthlyTrendPoint {
	points := TrendScaffold(now, loc)

	index := make(map[string]int, len(points))
	for i := range points {
		index[points[i].Month] = i
	}

	for i := range rows {
		key := monthKey(rows[i].CreatedAt.In(loc))
		at, ok := index[key]
		if !ok {
			continue // outside the trailing window
		}
		points[at].Count++
		points[at].ByCategory[rows[i].Category]++
	}

	return points
}

// monthKey formats t as "YYYY-MM".
func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}
