// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package models

import (
	"time"
)

// Gap is a maximal contiguous run of shotpoints on a line with no deployment
// event in the queried channel. "Contiguous" means consecutive entries in the
// line's ordered shotpoint sequence; shotpoint numbers themselves are not
// guaranteed to be contiguous integers. Never persisted.
type Gap struct {
	Line           int `json:"line"`
	StartShotpoint int `json:"start_shotpoint"`
	EndShotpoint   int `json:"end_shotpoint"`
	Size           int `json:"size"`
}

// Severity buckets a line's total missing shotpoints for triage.
type Severity string

const (
	SeverityCritical   Severity = "CRITICAL"
	SeverityHigh       Severity = "HIGH"
	SeverityMedium     Severity = "MEDIUM"
	SeverityLow        Severity = "LOW"
	SeverityAcceptable Severity = "ACCEPTABLE"
)

// SeverityThresholds classifies total missing points per line. Boundaries are
// exclusive on the upper bucket, inclusive on the lower: exactly Critical
// missing points is HIGH, exactly Low missing points is LOW, and anything
// below Low is ACCEPTABLE. Values come from coverage.* configuration.
type SeverityThresholds struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Classify buckets a line's total missing shotpoints.
func (t SeverityThresholds) Classify(totalMissing int) Severity {
	switch {
	case totalMissing > t.Critical:
		return SeverityCritical
	case totalMissing > t.High:
		return SeverityHigh
	case totalMissing > t.Medium:
		return SeverityMedium
	case totalMissing >= t.Low:
		return SeverityLow
	default:
		return SeverityAcceptable
	}
}

// LineGapReport summarizes one line's gaps for project-level statistics.
type LineGapReport struct {
	Line           int      `json:"line"`
	GapCount       int      `json:"gap_count"`
	TotalGapPoints int      `json:"total_gap_points"`
	Severity       Severity `json:"severity"`
	Gaps           []Gap    `json:"gaps,omitempty"`
}

// GapStatistics is the project-wide gap rollup. NeedsAttention lists lines at
// LOW severity or worse, ordered worst-first; lines below the LOW threshold
// are excluded from the listing but included in the totals.
type GapStatistics struct {
	Channel        Channel          `json:"channel"`
	MinGapSize     int              `json:"min_gap_size"`
	LinesScanned   int              `json:"lines_scanned"`
	LinesWithGaps  int              `json:"lines_with_gaps"`
	TotalGaps      int              `json:"total_gaps"`
	TotalGapPoints int              `json:"total_gap_points"`
	SeverityCounts map[Severity]int `json:"severity_counts"`
	NeedsAttention []LineGapReport  `json:"needs_attention"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// CoverageStat aggregates ledger counters for a line, swath, or the project.
// Covered counts shotpoints with any event; Deployed/Retrieved count events
// by type suffix; Outstanding = Total - Covered.
type CoverageStat struct {
	Scope            string    `json:"scope"`
	Line             int       `json:"line,omitempty"`
	Swath            int       `json:"swath,omitempty"`
	Channel          Channel   `json:"channel"`
	TotalShotpoints  int       `json:"total_shotpoints"`
	DeployedCount    int       `json:"deployed_count"`
	RetrievedCount   int       `json:"retrieved_count"`
	CoveredCount     int       `json:"covered_count"`
	OutstandingCount int       `json:"outstanding_count"`
	PercentComplete  float64   `json:"percent_complete"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Scope values for CoverageStat.
const (
	ScopeLine    = "line"
	ScopeSwath   = "swath"
	ScopeProject = "project"
)

// TypeProgress reports deploy/retrieve progress for one equipment family.
// Outstanding = Deployed - Retrieved (equipment still in the field).
type TypeProgress struct {
	Family      string `json:"family"`
	Deployed    int    `json:"deployed"`
	Retrieved   int    `json:"retrieved"`
	Outstanding int    `json:"outstanding"`
}

// UserActivity counts one user's ledger writes in a channel.
type UserActivity struct {
	Username   string    `json:"username"`
	EventCount int       `json:"event_count"`
	LastActive time.Time `json:"last_active"`
}
