// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package survey assembles the storage, coverage, geometry, and import
// components into the Engine, the single facade the HTTP layer and the
// background services call.
//
// The Engine owns the write-path contract: every ledger mutation
// commits to the database, synchronously invalidates the cached
// rollups a reader could otherwise see stale, and then publishes a
// deployment change on the event stream. The publish is the only best
// effort step; the first two must succeed before a write is
// acknowledged.
//
// Reads delegate to the coverage aggregator and gap detector (cached),
// the geometry builder (persisted spatial cache), or the database
// directly. Imports compose the CSV parsers with the bulk write path,
// merging parse-level and storage-level row rejections into a single
// ImportResult.
package survey
