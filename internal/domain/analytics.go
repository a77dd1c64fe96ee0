package domain

import (
	"math"
	"time"
)

// Bucket counts in the aggregations.
const (
	// HourBuckets is the number of time-of-day buckets (hours 0-23).
	HourBuckets = 24
	// DayBuckets is the number of day-of-week buckets (Sunday=0 .. Saturday=6).
	DayBuckets = 7
	// TrendMonths is the number of trailing calendar months in the monthly trend.
	TrendMonths = 12
)

// Bucket is a single keyed count in a breakdown.
type Bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// TemporalBucket is a keyed count with a per-category sub-breakdown.
// Time-of-day and day-of-week breakdowns always enumerate every bucket,
// including zero-count ones.
type TemporalBucket struct {
	Key        string           `json:"key"`
	Label      string           `json:"label"`
	Count      int64            `json:"count"`
	ByCategory map[string]int64 `json:"byCategory"`
}

// MonthlyTrendPoint is one calendar month in the trailing-twelve-month trend.
type MonthlyTrendPoint struct {
	Month      string           `json:"monthKey"` // "YYYY-MM"
	Count      int64            `json:"count"`
	ByCategory map[string]int64 `json:"byCategory"`
}

// BasicStats summarizes headline counts over approved reports.
type BasicStats struct {
	TotalReports     int64 `json:"totalReports"`
	TotalViews       int64 `json:"totalViews"`
	CountryCount     int64 `json:"countryCount"`
	ReportsThisMonth int64 `json:"reportsThisMonth"`
	ReportsLastMonth int64 `json:"reportsLastMonth"`
	MonthOverMonth   int   `json:"monthOverMonthPct"`
	ReportsLast24h   int64 `json:"reportsLast24h"`
	ReportsLast7d    int64 `json:"reportsLast7d"`
}

// EvidenceStat is a count with its share of the evidence total.
type EvidenceStat struct {
	Count      int64 `json:"count"`
	Percentage int   `json:"percentage"`
}

// EvidenceSummary breaks approved reports down by evidence type.
// AnyEvidence is the union of the three types, never their sum.
type EvidenceSummary struct {
	Total          int64        `json:"total"`
	PhotoVideo     EvidenceStat `json:"photoVideo"`
	Physical       EvidenceStat `json:"physical"`
	OfficialReport EvidenceStat `json:"officialReport"`
	AnyEvidence    EvidenceStat `json:"anyEvidence"`
}

// WitnessSummary aggregates witness-related statistics.
type WitnessSummary struct {
	TotalReports        int64   `json:"totalReports"`
	TotalWitnesses      int64   `json:"totalWitnesses"`
	AverageWitnesses    float64 `json:"averageWitnesses"` // one decimal place
	MultiWitnessReports int64   `json:"multiWitnessReports"`
	FirstHandReports    int64   `json:"firstHandReports"`
	AnonymousReports    int64   `json:"anonymousReports"`
	AnonymousPercentage int     `json:"anonymousPercentage"`
}

// RecentReport is one entry in the recent-activity feed.
type RecentReport struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Country     string      `json:"country,omitempty"`
	Credibility Credibility `json:"credibility"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// InsightStrength ranks how pronounced a detected pattern is.
type InsightStrength string

const (
	// StrengthStrong marks a clearly dominant pattern.
	StrengthStrong InsightStrength = "strong"
	// StrengthModerate marks a noticeable but not dominant pattern.
	StrengthModerate InsightStrength = "moderate"
	// StrengthWeak marks a marginal pattern.
	StrengthWeak InsightStrength = "weak"
)

// Insight is a short human-readable statement about a statistically notable
// pattern. It is derived on every request and never persisted.
type Insight struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Strength    InsightStrength `json:"strength"`
	Category    string          `json:"category,omitempty"`
}

// Summary is the full analytics response envelope.
type Summary struct {
	BasicStats           BasicStats          `json:"basicStats"`
	CategoryBreakdown    []Bucket            `json:"categoryBreakdown"`
	CountryBreakdown     []Bucket            `json:"countryBreakdown"`
	MonthlyTrend         []MonthlyTrendPoint `json:"monthlyTrend"`
	CredibilityBreakdown []Bucket            `json:"credibilityBreakdown"`
	TimeOfDayData        []TemporalBucket    `json:"timeOfDayData"`
	DayOfWeekData        []TemporalBucket    `json:"dayOfWeekData"`
	EvidenceAnalysis     EvidenceSummary     `json:"evidenceAnalysis"`
	SourceAnalysis       []Bucket            `json:"sourceAnalysis"`
	RecentActivity       []RecentReport      `json:"recentActivity"`
	EmergingPatterns     []DetectedPattern   `json:"emergingPatterns"`
	WitnessStats         WitnessSummary      `json:"witnessStats"`
	Insights             []Insight           `json:"insights"`
	// DataSources records, per breakdown, whether the value came from the
	// optimized path or a capped fallback scan. Fallback values are
	// approximations over the sampled window, not population statistics.
	DataSources map[string]string `json:"dataSources"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// Percent computes round(part/whole*100) with half-up rounding.
// A zero denominator yields 0, never a division fault.
func Percent(part, whole int64) int {
	if whole == 0 {
		return 0
	}
	return int(math.Floor(float64(part)/float64(whole)*100 + 0.5))
}

// PercentChange computes round((current-previous)/previous*100).
// Returns 0 when previous is 0.
func PercentChange(current, previous int64) int {
	if previous == 0 {
		return 0
	}
	return int(math.Floor(float64(current-previous)/float64(previous)*100 + 0.5))
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// HourLabel formats an hour [0,24) as a 12-hour clock label, e.g. "9 PM".
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return formatClock(hour, "AM")
	case hour == 12:
		return "12 PM"
	default:
		return formatClock(hour-12, "PM")
	}
}

func formatClock(h int, meridiem string) string {
	digits := [...]string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}
	return digits[h-1] + " " + meridiem
}

// dayNames maps day-of-week indexes (Sunday=0) to labels.
var dayNames = [DayBuckets]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// DayLabel returns the weekday name for a day index (Sunday=0).
func DayLabel(day int) string {
	if day < 0 || day >= DayBuckets {
		return "Unknown"
	}
	return dayNames[day]
}
