// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package api is the HTTP adapter over the survey engine.
//
// Every endpoint is a thin translation layer: parse path and query
// parameters, call one engine method, wrap the result in the standard
// envelope (models.APIResponse). No handler touches the database or the
// cache directly.
//
// Layout:
//   - handler.go: Handler struct and constructor
//   - respond.go: envelope writing, weak ETags, If-None-Match
//   - errors.go: engine sentinel to HTTP status mapping
//   - params.go: path/query parameter parsing
//   - middleware.go: CORS and per-IP rate limit construction
//   - router.go: the chi route table
//   - handlers_*.go: endpoint implementations grouped by resource
//
// GET responses carry a weak ETag (FNV-1a over the marshaled envelope)
// and honor If-None-Match with 304, so polling clients pay for a body
// only when the data changed.
package api
