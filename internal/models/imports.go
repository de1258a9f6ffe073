// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package models

// ImportResult is the outcome of a bulk operation. Rejected rows never abort
// the batch: the result always carries full per-row detail so the source file
// can be fixed without guessing. Re-running an identical input produces the
// same Applied/Rejected counts (idempotence).
type ImportResult struct {
	Applied  int           `json:"applied"`
	Rejected []RejectedRow `json:"rejected"`
}

// RejectedRow records why one input row was not applied. Row numbers are
// 1-based positions in the input, counting a header row if present.
type RejectedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Reject appends a per-row failure.
func (r *ImportResult) Reject(row int, reason string) {
	r.Rejected = append(r.Rejected, RejectedRow{Row: row, Reason: reason})
}

// PartialFailure reports whether any rows were rejected.
func (r *ImportResult) PartialFailure() bool {
	return len(r.Rejected) > 0
}

// EventRow is one parsed deployment-import row bound for BulkSetEvents.
// A blank DeploymentType clears the key instead of writing an event.
type EventRow struct {
	Row            int    `json:"row"`
	Line           int    `json:"line"`
	Shotpoint      int    `json:"shotpoint"`
	DeploymentType string `json:"deployment_type"`
	Username       string `json:"username"`
}

// SurveyPlanRow is one parsed survey-plan (coordinates) import row. The
// validate tags carry the coordinate range and point-type rules enforced on
// every row before it reaches storage.
type SurveyPlanRow struct {
	Row       int     `json:"row"`
	Line      int     `json:"line"`
	Shotpoint int     `json:"shotpoint"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	PointType string  `json:"point_type" validate:"required,oneof=Receiver Source Source/Receiver"`
}

// SwathDefinitionRow is one parsed swath-definition import row.
type SwathDefinitionRow struct {
	Row       int `json:"row"`
	Line      int `json:"line"`
	FirstShot int `json:"first_shot"`
	LastShot  int `json:"last_shot"`
}
