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

	json "github.com/goccy/go-json"
	"github.com/swathline/swathline/internal/models"
)

// ReplaceSwathGeometry swaps a swath's derived geometry in a single
// transaction: readers see either the previous swath or the new one,
// never a mix. The box's corner and edge lists are stored as JSON.
func (db *DB) ReplaceSwathGeometry(ctx context.Context, geom *models.SwathGeometry) error {
	if geom == nil || geom.Box == nil {
		return fmt.Errorf("swath geometry is incomplete")
	}

	corners, err := json.Marshal(geom.Box.Corners)
	if err != nil {
		return fmt.Errorf("failed to encode swath %d corners: %w", geom.Swath, err)
	}
	edge, err := json.Marshal(geom.Box.Edge)
	if err != nil {
		return fmt.Errorf("failed to encode swath %d edge: %w", geom.Swath, err)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM swath_lines WHERE swath = ?", geom.Swath); err != nil {
		return fmt.Errorf("failed to clear swath %d lines: %w", geom.Swath, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM swath_boxes WHERE swath = ?", geom.Swath); err != nil {
		return fmt.Errorf("failed to clear swath %d box: %w", geom.Swath, err)
	}

	if len(geom.Lines) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO swath_lines (swath, line, first_shot, last_shot, lon1, lat1, lon2, lat2, line_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare line geometry insert: %w", err)
		}
		defer closeQuietly(stmt)

		for i := range geom.Lines {
			lg := &geom.Lines[i]
			if _, err := stmt.ExecContext(ctx,
				lg.Swath, lg.Line, lg.FirstShot, lg.LastShot,
				lg.Lon1, lg.Lat1, lg.Lon2, lg.Lat2, lg.LineType); err != nil {
				return fmt.Errorf("failed to insert geometry for line %d: %w", lg.Line, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO swath_boxes (swath, corners, edge, rotation_deg, built_at)
		VALUES (?, ?, ?, ?, ?)`,
		geom.Swath, string(corners), string(edge), geom.Box.RotationDeg, geom.Box.BuiltAt); err != nil {
		return fmt.Errorf("failed to insert swath %d box: %w", geom.Swath, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit swath %d geometry: %w", geom.Swath, err)
	}
	return nil
}

// GetSwathLineGeometries returns a swath's cached line geometry,
// ascending by line. Empty when the swath has never been built.
func (db *DB) GetSwathLineGeometries(ctx context.Context, swath int) ([]models.LineGeometry, error) {
	return queryAndScan(ctx, db, `
		SELECT swath, line, first_shot, last_shot, lon1, lat1, lon2, lat2, line_type
		FROM swath_lines
		WHERE swath = ?
		ORDER BY line ASC`,
		[]any{swath},
		scanLineGeometry)
}

// GetAllLineGeometries returns the cached line geometry of every built
// swath, for project-wide map rendering.
func (db *DB) GetAllLineGeometries(ctx context.Context) ([]models.LineGeometry, error) {
	return queryAndScan(ctx, db, `
		SELECT swath, line, first_shot, last_shot, lon1, lat1, lon2, lat2, line_type
		FROM swath_lines
		ORDER BY swath ASC, line ASC`,
		nil,
		scanLineGeometry)
}

// GetSwathBox returns a swath's cached bounding box, or (nil, nil) when
// the swath has never been built. The box row doubles as the built
// marker for lazy rebuilds.
func (db *DB) GetSwathBox(ctx context.Context, swath int) (*models.SwathBox, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var box models.SwathBox
	var corners, edge string
	err := db.conn.QueryRowContext(ctx, `
		SELECT swath, corners, edge, rotation_deg, built_at
		FROM swath_boxes
		WHERE swath = ?`,
		swath).Scan(&box.Swath, &corners, &edge, &box.RotationDeg, &box.BuiltAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get swath %d box: %w", swath, err)
	}

	if err := decodeBoxCoordinates(&box, corners, edge); err != nil {
		return nil, fmt.Errorf("swath %d box is corrupt: %w", swath, err)
	}
	return &box, nil
}

// GetAllSwathBoxes returns every built swath's bounding box, ascending
// by swath.
func (db *DB) GetAllSwathBoxes(ctx context.Context) ([]models.SwathBox, error) {
	boxes, err := queryAndScan(ctx, db, `
		SELECT swath, corners, edge, rotation_deg, built_at
		FROM swath_boxes
		ORDER BY swath ASC`,
		nil,
		func(rows *sql.Rows) (rawSwathBox, error) {
			var raw rawSwathBox
			err := rows.Scan(&raw.box.Swath, &raw.corners, &raw.edge,
				&raw.box.RotationDeg, &raw.box.BuiltAt)
			return raw, err
		})
	if err != nil {
		return nil, err
	}

	out := make([]models.SwathBox, 0, len(boxes))
	for _, raw := range boxes {
		if err := decodeBoxCoordinates(&raw.box, raw.corners, raw.edge); err != nil {
			return nil, fmt.Errorf("swath %d box is corrupt: %w", raw.box.Swath, err)
		}
		out = append(out, raw.box)
	}
	return out, nil
}

type rawSwathBox struct {
	box     models.SwathBox
	corners string
	edge    string
}

// ClearSwathGeometry drops a swath's cached geometry and returns the
// number of rows removed. The next map read rebuilds it.
func (db *DB) ClearSwathGeometry(ctx context.Context, swath int) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var removed int64
	res, err := tx.ExecContext(ctx, "DELETE FROM swath_lines WHERE swath = ?", swath)
	if err != nil {
		return 0, fmt.Errorf("failed to clear swath %d lines: %w", swath, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += n
	}

	res, err = tx.ExecContext(ctx, "DELETE FROM swath_boxes WHERE swath = ?", swath)
	if err != nil {
		return 0, fmt.Errorf("failed to clear swath %d box: %w", swath, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit swath %d clear: %w", swath, err)
	}
	return removed, nil
}

func scanLineGeometry(rows *sql.Rows) (models.LineGeometry, error) {
	var lg models.LineGeometry
	err := rows.Scan(&lg.Swath, &lg.Line, &lg.FirstShot, &lg.LastShot,
		&lg.Lon1, &lg.Lat1, &lg.Lon2, &lg.Lat2, &lg.LineType)
	return lg, err
}

func decodeBoxCoordinates(box *models.SwathBox, corners, edge string) error {
	if err := json.Unmarshal([]byte(corners), &box.Corners); err != nil {
		return fmt.Errorf("corners: %w", err)
	}
	if err := json.Unmarshal([]byte(edge), &box.Edge); err != nil {
		return fmt.Errorf("edge: %w", err)
	}
	return nil
}
