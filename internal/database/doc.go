// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package database provides DuckDB-backed storage for survey reference
// data, deployment events, and derived swath geometry.
//
// # Architecture
//
// The package wraps a single DuckDB connection pool behind the DB type.
// Five tables hold all persistent state:
//
//   - coordinates: the planned shotpoint reference table, keyed by
//     (line, shotpoint). Written once per survey-plan import, read-only
//     afterward.
//   - swath_definitions: which line ranges belong to which swath, keyed
//     by (swath, line).
//   - deployments: the current deployment event per
//     (line, shotpoint, channel). Writes are last-write-wins upserts;
//     exactly one row exists per key, never a journal.
//   - swath_lines: derived per-line endpoint geometry for map rendering,
//     keyed by (swath, line). Rebuilt as a whole swath, never patched.
//   - swath_boxes: derived oriented bounding box per swath, stored with
//     corner and edge coordinates as JSON.
//
// # Concurrency
//
// Deployment upserts acquire a per-key mutex so concurrent edits to the
// same cell serialize in-process before reaching DuckDB, then retry on
// storage-level transaction conflicts with exponential backoff. Distinct
// keys proceed in parallel. Derived geometry is replaced inside a single
// transaction so readers observe either the old swath or the new one.
//
// # Usage
//
//	db, err := database.New(cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	prev, err := db.UpsertDeploymentEvent(ctx, &models.DeploymentEvent{
//		Line:           5000,
//		Shotpoint:      103,
//		Channel:        models.ChannelGlobal,
//		DeploymentType: "Node-Deployed",
//		Username:       "jsmith",
//		EventTime:      time.Now().UTC(),
//	})
//
// All read methods that look up a single row return (nil, nil) when the
// row does not exist; callers translate that into their own not-found
// errors where required.
package database
