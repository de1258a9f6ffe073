// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package cache provides in-memory caches for derived survey data.
//
// Coverage statistics and gap reports are cheap to recompute but are
// requested far more often than deployments change, so handlers cache them
// behind the Cacher interface. Two implementations are available:
//
//   - Cache: TTL-based, unbounded, with periodic cleanup (default)
//   - LFUCache: capacity-bounded with least-frequently-used eviction, for
//     deployments where a few hot lines dominate read traffic
//
// Both support DeletePrefix so a write to one line can invalidate exactly
// the entries derived from it ("stats:line:5000:" and nothing else).
//
// The package also provides LRUCache, a small generic LRU used to hold
// per-line shotpoint sequences between gap scans. Sequences change only on
// survey plan imports, so that cache is cleared wholesale on import.
//
// Key layout convention:
//
//	stats:line:<line>:<channel>
//	stats:swath:<swath>:<channel>
//	stats:project:<channel>
//	gaps:swath:<swath>:<channel>:<minGap>
//	gaps:project:<channel>:<minGap>
//
// Writers invalidate synchronously before returning; the TTL is a backstop,
// not the consistency mechanism.
package cache
