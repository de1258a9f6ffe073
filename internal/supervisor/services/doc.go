// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package services adapts the server's long-running components to
// suture's Service interface.
//
// Each wrapper is deliberately thin: it owns the translation between a
// component's lifecycle (blocking ListenAndServe, a run loop, a ticker)
// and supervised Serve semantics, and nothing else. The wrappers
// declare small local interfaces for their dependencies so this package
// never imports the component packages it supervises.
package services
