// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package database

import (
	"context"
	"fmt"
)

// createTables creates all tables if they do not exist. Statements are
// idempotent so startup after an unclean shutdown is safe.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// getTableCreationQueries returns the CREATE TABLE statements for the
// survey schema.
func (db *DB) getTableCreationQueries() []string {
	return []string{
		// Planned shotpoints. Reference data: written by survey-plan
		// import, read-only afterward. point_id is a stable opaque
		// identifier assigned at import and preserved across re-imports.
		`CREATE TABLE IF NOT EXISTS coordinates (
			line BIGINT NOT NULL,
			shotpoint BIGINT NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			point_type VARCHAR NOT NULL,
			point_id VARCHAR NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (line, shotpoint)
		)`,

		// Swath membership: which shotpoint range of a line belongs to a
		// swath. A line may span multiple swaths with disjoint ranges.
		`CREATE TABLE IF NOT EXISTS swath_definitions (
			swath INTEGER NOT NULL,
			line BIGINT NOT NULL,
			first_shot BIGINT NOT NULL,
			last_shot BIGINT NOT NULL,
			PRIMARY KEY (swath, line)
		)`,

		// Current deployment event per (line, shotpoint, channel).
		// Last-write-wins: upserts replace the row, so this is a current
		// state table, not a journal.
		`CREATE TABLE IF NOT EXISTS deployments (
			line BIGINT NOT NULL,
			shotpoint BIGINT NOT NULL,
			channel VARCHAR NOT NULL,
			deployment_type VARCHAR NOT NULL,
			username VARCHAR NOT NULL,
			event_time TIMESTAMP NOT NULL,
			PRIMARY KEY (line, shotpoint, channel)
		)`,

		// Derived line endpoint geometry per swath, for map rendering.
		// Rebuilt whole-swath inside one transaction, never patched.
		`CREATE TABLE IF NOT EXISTS swath_lines (
			swath INTEGER NOT NULL,
			line BIGINT NOT NULL,
			first_shot BIGINT NOT NULL,
			last_shot BIGINT NOT NULL,
			lon1 DOUBLE NOT NULL,
			lat1 DOUBLE NOT NULL,
			lon2 DOUBLE NOT NULL,
			lat2 DOUBLE NOT NULL,
			line_type VARCHAR NOT NULL,
			PRIMARY KEY (swath, line)
		)`,

		// Derived oriented bounding box per swath. Corner and edge
		// coordinate lists are stored as JSON arrays of [lon, lat]
		// pairs.
		`CREATE TABLE IF NOT EXISTS swath_boxes (
			swath INTEGER NOT NULL,
			corners VARCHAR NOT NULL,
			edge VARCHAR NOT NULL,
			rotation_deg DOUBLE NOT NULL,
			built_at TIMESTAMP NOT NULL,
			PRIMARY KEY (swath)
		)`,
	}
}

// createIndexes builds secondary indexes. Runs after migrations so
// indexes always match the final schema shape.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getIndexCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// getIndexCreationQueries returns secondary index statements. The
// primary keys already cover point lookups and per-line scans; these
// serve the aggregation queries.
func (db *DB) getIndexCreationQueries() []string {
	return []string{
		// Channel-scoped scans for coverage counts and type breakdowns.
		`CREATE INDEX IF NOT EXISTS idx_deployments_channel_type
			ON deployments (channel, deployment_type)`,

		// Per-user activity aggregation.
		`CREATE INDEX IF NOT EXISTS idx_deployments_channel_user
			ON deployments (channel, username)`,

		// Recent-activity queries ordered by event time.
		`CREATE INDEX IF NOT EXISTS idx_deployments_channel_time
			ON deployments (channel, event_time)`,

		// Reverse lookup: which swaths contain a given line.
		`CREATE INDEX IF NOT EXISTS idx_swath_definitions_line
			ON swath_definitions (line)`,
	}
}

// RecordCounts reports table sizes for health checks and startup logs.
type RecordCounts struct {
	Shotpoints  int64
	Deployments int64
	SwathLines  int64
}

// GetRecordCounts returns row counts for the primary tables.
func (db *DB) GetRecordCounts(ctx context.Context) (RecordCounts, error) {
	var counts RecordCounts

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM coordinates),
			(SELECT COUNT(*) FROM deployments),
			(SELECT COUNT(*) FROM swath_lines)`)
	if err := row.Scan(&counts.Shotpoints, &counts.Deployments, &counts.SwathLines); err != nil {
		return counts, fmt.Errorf("failed to count records: %w", err)
	}
	return counts, nil
}
