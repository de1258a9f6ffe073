// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package geometry builds and serves the spatial cache: per-line endpoint
// segments and the oriented bounding box of each swath, persisted in the
// swath_lines and swath_boxes tables.
//
// A rebuild reads the swath's declared definitions, resolves each declared
// first/last shotpoint against the survey plan, and replaces the swath's
// cached rows in one transaction. A declared endpoint missing from the plan
// aborts the whole rebuild with models.ErrCacheInconsistency; a partial cache
// is worse than none, it renders lines that silently vanish.
//
// Reads are lazy: GetLineGeometry and GetSwathBox rebuild on a cache miss, so
// the first map load after ClearSwathCache pays the rebuild cost and later
// loads are row scans. The GeoJSON renderers sit on top of the lazy reads.
package geometry
