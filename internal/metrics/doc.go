// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package metrics defines the Prometheus instrumentation for the service.
//
// All collectors are registered on the default registry via promauto and
// exposed by the router on GET /metrics. The package holds no state beyond
// the collectors themselves; callers record through the helper functions:
//
//	metrics.RecordAPIRequest("GET", "/api/v1/lines/{line}/stats", "200", elapsed)
//	metrics.RecordImport("deployments", result.Applied, len(result.Rejected), elapsed)
//	metrics.RecordLedgerWrite("global", "set")
//
// Gauges that mirror internal state (cache occupancy, database pool usage,
// uptime) are refreshed periodically by the stats refresher service rather
// than on every operation.
package metrics
