// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package middleware provides HTTP middleware shared by the API router.
//
// RequestID tags every request with an X-Request-ID header and threads the
// ID through the logging context, so each log line emitted while serving a
// request carries the same identifier. Metrics records per-endpoint request
// counts and latencies against the route pattern, keeping label cardinality
// bounded regardless of path parameters.
//
// Cross-cutting concerns with hardened ecosystem implementations (CORS,
// rate limiting, compression, panic recovery) are wired directly from
// go-chi packages in the router instead of being reimplemented here.
package middleware
