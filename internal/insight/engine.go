// Package insight derives short natural-language observations from the
// aggregate breakdowns. Every rule is a pure threshold check; the engine
// holds no state and touches no storage.
package insight

import (
	"fmt"
	"math"

	"github.com/phenomwatch/analytics/internal/domain"
)

// Night hours run from 9 PM through 4 AM inclusive.
const (
	nightStartHour = 21
	nightEndHour   = 5
)

// Weekend day indexes (Sunday=0, Saturday=6).
const (
	sundayIndex   = 0
	saturdayIndex = 6
)

// weekendShare is the weekend's share of a uniform week.
const weekendShare = 2.0 / 7.0

// Breakdowns is the slice of the analytics envelope the engine reads.
type Breakdowns struct {
	TimeOfDay   []domain.TemporalBucket
	DayOfWeek   []domain.TemporalBucket
	Categories  []domain.Bucket
	Credibility []domain.Bucket
}

// Engine derives insights from aggregate breakdowns.
type Engine struct {
	thresholds Thresholds
}

// NewEngine creates an engine with the given rule cutoffs.
func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{thresholds: thresholds}
}

// Derive runs every rule in a fixed order: nighttime, weekend, category
// dominance, credibility, peak hour. The order is part of the response
// contract; insights are never re-sorted by strength. When categoryFilter
// is non-empty, temporal denominators are restricted to that category's
// sub-totals and the dominance rule is suppressed. An empty result is
// valid and means no pattern cleared its threshold.
func (e *Engine) Derive(data Breakdowns, categoryFilter string) []domain.Insight {
	insights := make([]domain.Insight, 0, 5)

	if in, ok := e.nighttime(data.TimeOfDay, categoryFilter); ok {
		insights = append(insights, in)
	}
	if in, ok := e.weekend(data.DayOfWeek, categoryFilter); ok {
		insights = append(insights, in)
	}
	if categoryFilter == "" {
		if in, ok := e.dominance(data.Categories); ok {
			insights = append(insights, in)
		}
	}
	if in, ok := e.credibility(data.Credibility); ok {
		insights = append(insights, in)
	}
	if in, ok := e.peakHour(data.TimeOfDay, categoryFilter); ok {
		insights = append(insights, in)
	}

	return insights
}

// nighttime flags a concentration of reports in the night hours.
func (e *Engine) nighttime(hours []domain.TemporalBucket, categoryFilter string) (domain.Insight, bool) {
	var night, total int64
	for i := range hours {
		count := bucketCount(hours[i], categoryFilter)
		total += count
		if isNightHour(i) {
			night += count
		}
	}

	nightPct := domain.Percent(night, total)
	switch {
	case nightPct > e.thresholds.NightStrongPct:
		return domain.Insight{
			Title: "Nighttime Dominance",
			Description: fmt.Sprintf(
				"%d%% of reports describe events between 9 PM and 5 AM.", nightPct),
			Strength: domain.StrengthStrong,
			Category: categoryFilter,
		}, true
	case nightPct > e.thresholds.NightModeratePct:
		return domain.Insight{
			Title: "Evening Peak",
			Description: fmt.Sprintf(
				"%d%% of reports describe events between 9 PM and 5 AM.", nightPct),
			Strength: domain.StrengthModerate,
			Category: categoryFilter,
		}, true
	}

	return domain.Insight{}, false
}

// weekend flags weekend report volume above the uniform-week baseline.
func (e *Engine) weekend(days []domain.TemporalBucket, categoryFilter string) (domain.Insight, bool) {
	var weekend, total int64
	for i := range days {
		count := bucketCount(days[i], categoryFilter)
		total += count
		if i == sundayIndex || i == saturdayIndex {
			weekend += count
		}
	}

	expected := float64(total) * weekendShare
	ratio := 1.0
	if expected > 0 {
		ratio = float64(weekend) / expected
	}

	if ratio <= e.thresholds.WeekendEmitRatio {
		return domain.Insight{}, false
	}

	strength := domain.StrengthModerate
	if ratio > e.thresholds.WeekendStrongRatio {
		strength = domain.StrengthStrong
	}

	magnitude := int(math.Floor((ratio-1)*100 + 0.5))
	return domain.Insight{
		Title: "Weekend Spike",
		Description: fmt.Sprintf(
			"Weekend reporting runs %d%% above the even-week baseline.", magnitude),
		Strength: strength,
		Category: categoryFilter,
	}, true
}

// dominance flags a single category holding the majority of all reports.
func (e *Engine) dominance(categories []domain.Bucket) (domain.Insight, bool) {
	var top domain.Bucket
	var total int64
	for _, bucket := range categories {
		total += bucket.Count
		if bucket.Count > top.Count {
			top = bucket
		}
	}

	topPct := domain.Percent(top.Count, total)
	if topPct <= e.thresholds.DominancePct {
		return domain.Insight{}, false
	}

	return domain.Insight{
		Title: "Dominant Category",
		Description: fmt.Sprintf(
			"%s accounts for %d%% of all reports.", top.Key, topPct),
		Strength: domain.StrengthStrong,
		Category: top.Key,
	}, true
}

// credibility flags an unusually high share of well-vetted reports. The
// credibility breakdown carries no per-category sub-totals, so this rule
// always reads raw totals.
func (e *Engine) credibility(levels []domain.Bucket) (domain.Insight, bool) {
	var vetted, total int64
	for _, bucket := range levels {
		total += bucket.Count
		if bucket.Key == string(domain.CredibilityConfirmed) || bucket.Key == string(domain.CredibilityHigh) {
			vetted += bucket.Count
		}
	}

	vettedPct := domain.Percent(vetted, total)
	if vettedPct <= e.thresholds.CredibilityEmitPct {
		return domain.Insight{}, false
	}

	strength := domain.StrengthModerate
	if vettedPct > e.thresholds.CredibilityStrongPct {
		strength = domain.StrengthStrong
	}

	return domain.Insight{
		Title: "High Credibility Rate",
		Description: fmt.Sprintf(
			"%d%% of reports are rated high credibility or confirmed.", vettedPct),
		Strength: strength,
	}, true
}

// peakHour flags one hour drawing a large multiple of the hourly average.
func (e *Engine) peakHour(hours []domain.TemporalBucket, categoryFilter string) (domain.Insight, bool) {
	var peak, total int64
	peakIndex := -1
	for i := range hours {
		count := bucketCount(hours[i], categoryFilter)
		total += count
		if count > peak {
			peak = count
			peakIndex = i
		}
	}

	ratio := 1.0
	if total > 0 {
		ratio = float64(peak) / (float64(total) / float64(domain.HourBuckets))
	}

	if ratio <= e.thresholds.PeakEmitRatio || peak == 0 {
		return domain.Insight{}, false
	}

	strength := domain.StrengthModerate
	if ratio > e.thresholds.PeakStrongRatio {
		strength = domain.StrengthStrong
	}

	return domain.Insight{
		Title: "Peak Reporting Hour",
		Description: fmt.Sprintf(
			"Reports cluster around %s, well above the hourly average.",
			domain.HourLabel(peakIndex)),
		Strength: strength,
		Category: categoryFilter,
	}, true
}

// bucketCount returns the bucket's count, restricted to one category's
// sub-total when a filter is set.
func bucketCount(bucket domain.TemporalBucket, categoryFilter string) int64 {
	if categoryFilter == "" {
		return bucket.Count
	}
	return bucket.ByCategory[categoryFilter]
}

// isNightHour reports whether hour falls in the 9 PM through 4 AM window.
func isNightHour(hour int) bool {
	return hour >= nightStartHour || hour < nightEndHour
}
