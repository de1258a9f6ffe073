// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package coverage computes gap reports and coverage statistics from the
// deployment ledger.
//
// Two components share one result cache:
//
//   - Detector walks a line's ordered shotpoint sequence in a single pass and
//     reports maximal runs with no deployment event. A gap is measured in
//     sequence positions, not shotpoint arithmetic: lines numbered 1010, 1020,
//     1030 with 1020 missing have a gap of size one. Per-line scans are cheap
//     enough to run uncached; swath and project rollups are cached under
//     "gaps:" keys.
//
//   - Aggregator turns ledger counters into CoverageStat values for a line, a
//     swath, or the whole project, plus per-family progress and user activity
//     rollups. Results are cached under "stats:" keys.
//
// Swath rollups aggregate the full lines a swath declares. The declared
// first/last shot ranges only scope the spatial cache; a swath stat or swath
// gap scan always covers each declared line end to end.
//
// Caching is short-TTL and advisory, but invalidation is not: every ledger
// write must call Aggregator.InvalidateLine (or InvalidateAll for bulk
// imports) before the write is acknowledged. The Detector additionally keeps
// per-line shotpoint sequences in a small LRU; sequences only change when the
// survey plan is re-imported, which must call ResetSequences.
package coverage
