// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package logging provides centralized zerolog-based structured logging
// for Swathline.
//
// All components log through a single global zerolog instance configured
// once at startup. JSON output is the production default; console output
// is available for development.
//
// # Quick Start
//
//	import "github.com/swathline/swathline/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages with structured fields
//	logging.Info().Int("line", 5000).Str("channel", "global").Msg("Coverage recomputed")
//	logging.Error().Err(err).Int("swath", 3).Msg("Geometry rebuild failed")
//
//	// Context-aware logging (request_id propagated by middleware)
//	logging.Ctx(ctx).Info().Msg("Import accepted")
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Int("line", n).Msg("message")  // Correct
//	logging.Info().Int("line", n)                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	logging.Info().Int("applied", n).Str("kind", k).Msg("import complete")  // Correct
//	logging.Info().Msgf("imported %d rows of %s", n, k)                     // Avoid
//
// # slog Bridge
//
// NewSlogLogger returns an *slog.Logger backed by zerolog, used to feed
// suture's sutureslog hook so supervision events land in the same stream
// as application logs.
package logging
