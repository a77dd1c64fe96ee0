// Package domain contains the core domain models for the report analytics service.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// ReportStatus is the moderation state of a report. Only approved reports
// are visible to aggregation.
type ReportStatus string

const (
	// StatusPending indicates a report awaiting moderation.
	StatusPending ReportStatus = "pending"
	// StatusApproved indicates a report that passed moderation.
	StatusApproved ReportStatus = "approved"
	// StatusRejected indicates a report that failed moderation.
	StatusRejected ReportStatus = "rejected"
)

// Credibility is the assessed reliability level of a report.
type Credibility string

const (
	// CredibilityConfirmed indicates independently corroborated reports.
	CredibilityConfirmed Credibility = "confirmed"
	// CredibilityHigh indicates reports with strong supporting evidence.
	CredibilityHigh Credibility = "high"
	// CredibilityMedium indicates reports with partial supporting evidence.
	CredibilityMedium Credibility = "medium"
	// CredibilityLow indicates reports with weak supporting evidence.
	CredibilityLow Credibility = "low"
	// CredibilityUnverified indicates reports with no assessment yet.
	CredibilityUnverified Credibility = "unverified"
)

// credibilityLadderSize is the number of credibility levels.
const credibilityLadderSize = 5

// CredibilityLadder returns the fixed severity ordering used for the
// credibility breakdown, most credible first.
func CredibilityLadder() []Credibility {
	ladder := make([]Credibility, 0, credibilityLadderSize)
	ladder = append(ladder,
		CredibilityConfirmed, CredibilityHigh, CredibilityMedium,
		CredibilityLow, CredibilityUnverified,
	)
	return ladder
}

// ReportRecord is a single approved incident report as read from the raw
// store. It is immutable from the analytics service's perspective.
type ReportRecord struct {
	ID                  int64        `json:"id"`
	Title               string       `json:"title"`
	Category            string       `json:"category"`
	Country             *string      `json:"country,omitempty"`
	Credibility         Credibility  `json:"credibility"`
	CreatedAt           time.Time    `json:"createdAt"`
	EventDate           *time.Time   `json:"eventDate,omitempty"`
	EventTime           *string      `json:"eventTime,omitempty"` // "HH:MM"
	HasPhotoVideo       bool         `json:"hasPhotoVideo"`
	HasPhysicalEvidence bool         `json:"hasPhysicalEvidence"`
	HasOfficialReport   bool         `json:"hasOfficialReport"`
	WitnessCount        *int         `json:"witnessCount,omitempty"`
	IsFirstHand         bool         `json:"isFirstHand"`
	IsAnonymous         bool         `json:"isAnonymous"`
	ViewCount           int64        `json:"viewCount"`
	SourceType          string       `json:"sourceType"`
	Status              ReportStatus `json:"status"`
}

// HasAnyEvidence reports whether the record carries at least one evidence
// type. Logical OR: a record with several evidence types still counts once.
func (r *ReportRecord) HasAnyEvidence() bool {
	return r.HasPhotoVideo || r.HasPhysicalEvidence || r.HasOfficialReport
}

// EventHour returns the hour [0,24) parsed from the optional event time.
// The second return is false when the record has no usable event time.
func (r *ReportRecord) EventHour() (int, bool) {
	if r.EventTime == nil {
		return 0, false
	}

	parts := strings.SplitN(*r.EventTime, ":", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, false
	}

	hour, parseErr := strconv.Atoi(parts[0])
	if parseErr != nil || hour < 0 || hour > 23 {
		return 0, false
	}

	return hour, true
}

// Witnesses returns the witness count, treating a missing value as 0.
func (r *ReportRecord) Witnesses() int {
	if r.WitnessCount == nil {
		return 0
	}
	return *r.WitnessCount
}
