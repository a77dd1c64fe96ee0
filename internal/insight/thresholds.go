package insight

// Thresholds holds the cutoffs for every rule. Keeping them in one place
// makes the rules tunable and testable without touching control flow.
type Thresholds struct {
	// NightStrongPct and NightModeratePct gate the nighttime concentration
	// rule on the percentage of reports falling in night hours.
	NightStrongPct   int
	NightModeratePct int

	// WeekendEmitRatio and WeekendStrongRatio gate the weekend rule on the
	// ratio of weekend reports to the uniform two-sevenths baseline.
	WeekendEmitRatio   float64
	WeekendStrongRatio float64

	// DominancePct gates the category dominance rule on the top category's
	// share of all reports.
	DominancePct int

	// CredibilityEmitPct and CredibilityStrongPct gate the credibility rule
	// on the share of reports rated high or confirmed.
	CredibilityEmitPct   int
	CredibilityStrongPct int

	// PeakEmitRatio and PeakStrongRatio gate the peak hour rule on the
	// busiest hour's multiple of the hourly average.
	PeakEmitRatio   float64
	PeakStrongRatio float64
}

// DefaultThresholds returns the production rule cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NightStrongPct:       60,
		NightModeratePct:     40,
		WeekendEmitRatio:     1.2,
		WeekendStrongRatio:   1.4,
		DominancePct:         50,
		CredibilityEmitPct:   20,
		CredibilityStrongPct: 30,
		PeakEmitRatio:        2,
		PeakStrongRatio:      3,
	}
}
