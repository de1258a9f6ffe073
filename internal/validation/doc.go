// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package validation provides struct validation using go-playground/validator
// v10 behind a thread-safe singleton, shared by the HTTP request decoders and
// the CSV import row parsers.
//
// Validator errors are translated into stable human-readable messages so a
// rejected import row reads the same in the HTTP response, the log line, and
// a test assertion. The set of supported tags is deliberately small: the
// built-in latitude/longitude range checks, oneof for the planned point
// types, and the usual required/min/max bounds for request parameters.
//
// Example:
//
//	type row struct {
//	    Latitude  float64 `validate:"latitude"`
//	    Longitude float64 `validate:"longitude"`
//	    PointType string  `validate:"required,oneof=Receiver Source Source/Receiver"`
//	}
//
//	if verr := validation.ValidateStruct(&row); verr != nil {
//	    result.Reject(rowNum, verr.Error())
//	}
package validation
