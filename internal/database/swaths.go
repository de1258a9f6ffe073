// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/swathline/swathline/internal/models"
)

// ReplaceSwathDefinitions swaps a swath's line membership in one
// transaction. Definition imports always carry the full swath, so the
// old rows are dropped rather than merged.
func (db *DB) ReplaceSwathDefinitions(ctx context.Context, swath int, defs []models.SwathDefinition) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM swath_definitions WHERE swath = ?", swath); err != nil {
		return fmt.Errorf("failed to clear swath %d definitions: %w", swath, err)
	}

	if len(defs) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO swath_definitions (swath, line, first_shot, last_shot)
			VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare definition insert: %w", err)
		}
		defer closeQuietly(stmt)

		for _, def := range defs {
			if _, err := stmt.ExecContext(ctx, swath, def.Line, def.FirstShot, def.LastShot); err != nil {
				return fmt.Errorf("failed to insert definition for line %d: %w", def.Line, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit swath %d definitions: %w", swath, err)
	}
	return nil
}

// GetSwathDefinitions returns a swath's line membership, ascending by
// line. An undefined swath returns an empty slice.
func (db *DB) GetSwathDefinitions(ctx context.Context, swath int) ([]models.SwathDefinition, error) {
	return queryAndScan(ctx, db, `
		SELECT swath, line, first_shot, last_shot
		FROM swath_definitions
		WHERE swath = ?
		ORDER BY line ASC`,
		[]any{swath},
		func(rows *sql.Rows) (models.SwathDefinition, error) {
			var def models.SwathDefinition
			err := rows.Scan(&def.Swath, &def.Line, &def.FirstShot, &def.LastShot)
			return def, err
		})
}

// ListDefinedSwaths returns every swath number with at least one
// definition row, ascending.
func (db *DB) ListDefinedSwaths(ctx context.Context) ([]int, error) {
	return queryAndScan(ctx, db, `
		SELECT DISTINCT swath
		FROM swath_definitions
		ORDER BY swath ASC`,
		nil,
		func(rows *sql.Rows) (int, error) {
			var swath int
			err := rows.Scan(&swath)
			return swath, err
		})
}

// GetSwathsForLine returns the swaths whose definitions include a line.
// Writers use this to invalidate swath-scoped stats after a ledger
// change on the line.
func (db *DB) GetSwathsForLine(ctx context.Context, line int) ([]int, error) {
	return queryAndScan(ctx, db, `
		SELECT DISTINCT swath
		FROM swath_definitions
		WHERE line = ?
		ORDER BY swath ASC`,
		[]any{line},
		func(rows *sql.Rows) (int, error) {
			var swath int
			err := rows.Scan(&swath)
			return swath, err
		})
}
