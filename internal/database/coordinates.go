// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/swathline/swathline/internal/models"
)

// UpsertShotpoint inserts or updates one planned shotpoint. On conflict
// the coordinates and point type are refreshed but the point_id is
// preserved, so external references survive a survey-plan re-import.
func (db *DB) UpsertShotpoint(ctx context.Context, sp *models.Shotpoint) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO coordinates (line, shotpoint, latitude, longitude, point_type, point_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (line, shotpoint) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			point_type = EXCLUDED.point_type`,
		sp.Line, sp.Shotpoint, sp.Latitude, sp.Longitude, sp.PointType, sp.PointID)
	if err != nil {
		return fmt.Errorf("failed to upsert shotpoint %d/%d: %w", sp.Line, sp.Shotpoint, err)
	}
	return nil
}

// BulkUpsertShotpoints applies a survey-plan batch in a single
// transaction. Used by the survey-plan importer after per-row
// validation; a storage failure here rolls back the whole batch.
func (db *DB) BulkUpsertShotpoints(ctx context.Context, points []models.Shotpoint) error {
	if len(points) == 0 {
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO coordinates (line, shotpoint, latitude, longitude, point_type, point_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (line, shotpoint) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			point_type = EXCLUDED.point_type`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range points {
		sp := &points[i]
		if _, err := stmt.ExecContext(ctx,
			sp.Line, sp.Shotpoint, sp.Latitude, sp.Longitude, sp.PointType, sp.PointID); err != nil {
			return fmt.Errorf("failed to upsert shotpoint %d/%d: %w", sp.Line, sp.Shotpoint, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit shotpoint batch: %w", err)
	}
	return nil
}

// GetShotpoint returns one planned shotpoint, or (nil, nil) when the
// key is unknown.
func (db *DB) GetShotpoint(ctx context.Context, line, shotpoint int) (*models.Shotpoint, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var sp models.Shotpoint
	err := db.conn.QueryRowContext(ctx, `
		SELECT line, shotpoint, latitude, longitude, point_type, point_id
		FROM coordinates
		WHERE line = ? AND shotpoint = ?`,
		line, shotpoint).Scan(
		&sp.Line, &sp.Shotpoint, &sp.Latitude, &sp.Longitude, &sp.PointType, &sp.PointID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shotpoint %d/%d: %w", line, shotpoint, err)
	}
	return &sp, nil
}

// GetLineShotpoints returns every planned shotpoint on a line in
// ascending shotpoint order. An unknown line returns an empty slice;
// callers that must distinguish translate that into a not-found error.
func (db *DB) GetLineShotpoints(ctx context.Context, line int) ([]models.Shotpoint, error) {
	return queryAndScan(ctx, db, `
		SELECT line, shotpoint, latitude, longitude, point_type, point_id
		FROM coordinates
		WHERE line = ?
		ORDER BY shotpoint ASC`,
		[]any{line},
		func(rows *sql.Rows) (models.Shotpoint, error) {
			var sp models.Shotpoint
			err := rows.Scan(&sp.Line, &sp.Shotpoint, &sp.Latitude, &sp.Longitude,
				&sp.PointType, &sp.PointID)
			return sp, err
		})
}

// GetLineSequence returns the ordered shotpoint numbers of a line. The
// gap scan needs only the sequence, not the coordinates, so this avoids
// materializing full rows.
func (db *DB) GetLineSequence(ctx context.Context, line int) ([]int, error) {
	return queryAndScan(ctx, db, `
		SELECT shotpoint
		FROM coordinates
		WHERE line = ?
		ORDER BY shotpoint ASC`,
		[]any{line},
		func(rows *sql.Rows) (int, error) {
			var sp int
			err := rows.Scan(&sp)
			return sp, err
		})
}

// ListLines returns every line number present in the coordinate store,
// ascending.
func (db *DB) ListLines(ctx context.Context) ([]int, error) {
	return queryAndScan(ctx, db, `
		SELECT DISTINCT line
		FROM coordinates
		ORDER BY line ASC`,
		nil,
		func(rows *sql.Rows) (int, error) {
			var line int
			err := rows.Scan(&line)
			return line, err
		})
}

// CountLineShotpoints returns the number of planned shotpoints on a
// line. Zero means the line is unknown.
func (db *DB) CountLineShotpoints(ctx context.Context, line int) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM coordinates WHERE line = ?", line).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count shotpoints for line %d: %w", line, err)
	}
	return count, nil
}

// GetShotpointKeysForLines returns the set of known (line, shotpoint)
// keys restricted to the given lines. Bulk imports preload this set to
// validate rows without a round trip per row.
func (db *DB) GetShotpointKeysForLines(ctx context.Context, lines []int) (map[models.ShotpointKey]struct{}, error) {
	keys := make(map[models.ShotpointKey]struct{})
	if len(lines) == 0 {
		return keys, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(lines)), ",")
	args := make([]any, len(lines))
	for i, line := range lines {
		args[i] = line
	}

	rows, err := queryAndScan(ctx, db,
		"SELECT line, shotpoint FROM coordinates WHERE line IN ("+placeholders+")",
		args,
		func(rows *sql.Rows) (models.ShotpointKey, error) {
			var k models.ShotpointKey
			err := rows.Scan(&k.Line, &k.Shotpoint)
			return k, err
		})
	if err != nil {
		return nil, err
	}
	for _, k := range rows {
		keys[k] = struct{}{}
	}
	return keys, nil
}
