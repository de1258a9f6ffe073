// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's query/command surface. Callers match them
// with errors.Is; the HTTP layer maps them to status codes in api/errors.go.
var (
	// ErrLineNotFound indicates the requested line has no shotpoints in the
	// coordinate store.
	ErrLineNotFound = errors.New("line not found")

	// ErrSwathNotFound indicates a swath with no definitions (or a swath
	// number outside the configured range).
	ErrSwathNotFound = errors.New("swath not found")

	// ErrUnknownShotpoint indicates a write against a (line, shotpoint) key
	// that is not part of the survey plan.
	ErrUnknownShotpoint = errors.New("unknown shotpoint")

	// ErrInvalidChannel indicates a channel string that is neither "global"
	// nor "swath-N" within the configured swath count.
	ErrInvalidChannel = errors.New("invalid channel")

	// ErrCacheInconsistency indicates the spatial cache build encountered a
	// declared shotpoint absent from the coordinate store. Fatal to the
	// rebuild: nothing is persisted.
	ErrCacheInconsistency = errors.New("spatial cache inconsistency")
)

// ValidationError describes one rejected input value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
