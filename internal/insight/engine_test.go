//nolint:testpackage // Testing internal rule helpers requires same package access
package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenomwatch/analytics/internal/domain"
)

func hourBuckets(counts map[int]int64) []domain.TemporalBucket {
	buckets := make([]domain.TemporalBucket, domain.HourBuckets)
	for i := range buckets {
		buckets[i].ByCategory = map[string]int64{}
	}
	for hour, count := range counts {
		buckets[hour].Count = count
		buckets[hour].ByCategory["sighting"] = count
	}
	return buckets
}

func dayBuckets(counts map[int]int64) []domain.TemporalBucket {
	buckets := make([]domain.TemporalBucket, domain.DayBuckets)
	for i := range buckets {
		buckets[i].ByCategory = map[string]int64{}
	}
	for day, count := range counts {
		buckets[day].Count = count
		buckets[day].ByCategory["sighting"] = count
	}
	return buckets
}

func insightsTitled(insights []domain.Insight, title string) []domain.Insight {
	var matched []domain.Insight
	for _, in := range insights {
		if in.Title == title {
			matched = append(matched, in)
		}
	}
	return matched
}

func TestEngine_NighttimeDominanceStrong(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	// Every report in hour 22: night share is 100%.
	insights := engine.Derive(Breakdowns{
		TimeOfDay: hourBuckets(map[int]int64{22: 50}),
		DayOfWeek: dayBuckets(nil),
	}, "")

	night := insightsTitled(insights, "Nighttime Dominance")
	require.Len(t, night, 1)
	assert.Equal(t, domain.StrengthStrong, night[0].Strength)
	assert.Empty(t, insightsTitled(insights, "Evening Peak"))
}

func TestEngine_EveningPeakModerate(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	// 45 of 100 reports at night: above 40, below 60.
	insights := engine.Derive(Breakdowns{
		TimeOfDay: hourBuckets(map[int]int64{22: 30, 2: 15, 10: 25, 14: 30}),
		DayOfWeek: dayBuckets(nil),
	}, "")

	peak := insightsTitled(insights, "Evening Peak")
	require.Len(t, peak, 1)
	assert.Equal(t, domain.StrengthModerate, peak[0].Strength)
	assert.Empty(t, insightsTitled(insights, "Nighttime Dominance"))
}

func TestEngine_WeekendSpikeStrong(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	// 80 of 200 reports on weekend days: 1.4x the two-sevenths baseline.
	insights := engine.Derive(Breakdowns{
		TimeOfDay: hourBuckets(nil),
		DayOfWeek: dayBuckets(map[int]int64{0: 40, 6: 40, 1: 30, 2: 30, 3: 30, 4: 30}),
	}, "")

	weekend := insightsTitled(insights, "Weekend Spike")
	require.Len(t, weekend, 1)
	assert.Equal(t, domain.StrengthStrong, weekend[0].Strength)
	assert.Contains(t, weekend[0].Description, "40%")
}

func TestEngine_WeekendBelowThresholdSilent(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	// Uniform week: ratio 1.0, no insight.
	insights := engine.Derive(Breakdowns{
		TimeOfDay: hourBuckets(nil),
		DayOfWeek: dayBuckets(map[int]int64{0: 10, 1: 10, 2: 10, 3: 10, 4: 10, 5: 10, 6: 10}),
	}, "")

	assert.Empty(t, insightsTitled(insights, "Weekend Spike"))
}

func TestEngine_CategoryDominance(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	data := Breakdowns{
		TimeOfDay: hourBuckets(nil),
		DayOfWeek: dayBuckets(nil),
		Categories: []domain.Bucket{
			{Key: "ufos_aliens", Count: 120},
			{Key: "cryptids", Count: 80},
		},
	}

	insights := engine.Derive(data, "")
	dominance := insightsTitled(insights, "Dominant Category")
	require.Len(t, dominance, 1)
	assert.Equal(t, domain.StrengthStrong, dominance[0].Strength)
	assert.Equal(t, "ufos_aliens", dominance[0].Category)
	assert.Contains(t, dominance[0].Description, "60%")
}

func TestEngine_CategoryFilterSuppressesDominance(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	data := Breakdowns{
		TimeOfDay: hourBuckets(nil),
		DayOfWeek: dayBuckets(nil),
		Categories: []domain.Bucket{
			{Key: "ufos_aliens", Count: 120},
			{Key: "cryptids", Count: 80},
		},
	}

	insights := engine.Derive(data, "ufos_aliens")
	assert.Empty(t, insightsTitled(insights, "Dominant Category"))
}

func TestEngine_HighCredibilityRate(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	tests := []struct {
		name     string
		levels   []domain.Bucket
		strength domain.InsightStrength
		emitted  bool
	}{
		{
			name: "strong above thirty percent",
			levels: []domain.Bucket{
				{Key: "confirmed", Count: 15},
				{Key: "high", Count: 20},
				{Key: "medium", Count: 65},
			},
			strength: domain.StrengthStrong,
			emitted:  true,
		},
		{
			name: "moderate between twenty and thirty",
			levels: []domain.Bucket{
				{Key: "high", Count: 25},
				{Key: "unverified", Count: 75},
			},
			strength: domain.StrengthModerate,
			emitted:  true,
		},
		{
			name: "silent at twenty percent",
			levels: []domain.Bucket{
				{Key: "high", Count: 20},
				{Key: "unverified", Count: 80},
			},
			emitted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insights := engine.Derive(Breakdowns{
				TimeOfDay:   hourBuckets(nil),
				DayOfWeek:   dayBuckets(nil),
				Credibility: tt.levels,
			}, "")

			rated := insightsTitled(insights, "High Credibility Rate")
			if !tt.emitted {
				assert.Empty(t, rated)
				return
			}
			require.Len(t, rated, 1)
			assert.Equal(t, tt.strength, rated[0].Strength)
		})
	}
}

func TestEngine_PeakHour(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	// Hour 21 holds 30 of 120 reports: six times the hourly average.
	insights := engine.Derive(Breakdowns{
		TimeOfDay: hourBuckets(map[int]int64{21: 30, 9: 30, 10: 30, 11: 30}),
		DayOfWeek: dayBuckets(nil),
	}, "")

	peak := insightsTitled(insights, "Peak Reporting Hour")
	require.Len(t, peak, 1)
	assert.Equal(t, domain.StrengthStrong, peak[0].Strength)
	assert.Contains(t, peak[0].Description, "9 PM")
}

func TestEngine_EmptyBreakdownsYieldNoInsights(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	insights := engine.Derive(Breakdowns{
		TimeOfDay: hourBuckets(nil),
		DayOfWeek: dayBuckets(nil),
	}, "")

	assert.Empty(t, insights)
}

func TestEngine_FixedRuleOrder(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	// Trigger nighttime, dominance, and credibility together; the output
	// order must follow rule order, not strength.
	insights := engine.Derive(Breakdowns{
		TimeOfDay: hourBuckets(map[int]int64{1: 30, 2: 20, 13: 10}),
		DayOfWeek: dayBuckets(nil),
		Categories: []domain.Bucket{
			{Key: "hauntings", Count: 55},
			{Key: "cryptids", Count: 5},
		},
		Credibility: []domain.Bucket{
			{Key: "confirmed", Count: 25},
			{Key: "low", Count: 75},
		},
	}, "")

	require.GreaterOrEqual(t, len(insights), 3)
	assert.Equal(t, "Nighttime Dominance", insights[0].Title)
	assert.Equal(t, "Dominant Category", insights[1].Title)
	assert.Equal(t, "High Credibility Rate", insights[2].Title)
}

func TestEngine_CategoryFilterRestrictsDenominators(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	// Overall night share is low, but within "sighting" it is total.
	buckets := make([]domain.TemporalBucket, domain.HourBuckets)
	for i := range buckets {
		buckets[i].ByCategory = map[string]int64{}
	}
	buckets[22].Count = 10
	buckets[22].ByCategory["sighting"] = 10
	buckets[12].Count = 90
	buckets[12].ByCategory["hauntings"] = 90

	insights := engine.Derive(Breakdowns{
		TimeOfDay: buckets,
		DayOfWeek: dayBuckets(nil),
	}, "sighting")

	night := insightsTitled(insights, "Nighttime Dominance")
	require.Len(t, night, 1)
	assert.Equal(t, "sighting", night[0].Category)
}
