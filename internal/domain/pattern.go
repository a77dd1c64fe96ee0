package domain

import "time"

// PatternStatus is the lifecycle state of a machine-detected pattern.
type PatternStatus string

const (
	// PatternStatusActive marks an established pattern still accumulating reports.
	PatternStatusActive PatternStatus = "active"
	// PatternStatusEmerging marks a recently detected pattern.
	PatternStatusEmerging PatternStatus = "emerging"
	// PatternStatusArchived marks a pattern no longer surfaced to readers.
	PatternStatusArchived PatternStatus = "archived"
)

// DetectedPattern is a machine-detected cluster of related reports, written
// by the offline detection job and read-only here. Title and summary are
// authored by the detection job.
type DetectedPattern struct {
	ID              int64         `json:"id"`
	PatternType     string        `json:"patternType"`
	Title           string        `json:"title"`
	Summary         string        `json:"summary"`
	ReportCount     int64         `json:"reportCount"`
	Confidence      float64       `json:"confidenceScore"`   // [0,1]
	Significance    float64       `json:"significanceScore"` // [0,1]
	Categories      []string      `json:"categories"`
	Status          PatternStatus `json:"status"`
	FirstDetectedAt time.Time     `json:"firstDetectedAt"`
	LastDetectedAt  time.Time     `json:"lastDetectedAt"`
}
