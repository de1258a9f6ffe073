// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package database

import (
	"fmt"
	"time"

	"github.com/swathline/swathline/internal/logging"
)

// Migration is a single versioned schema change. Migrations run in
// version order, exactly once, inside a transaction together with the
// record of their application.
type Migration struct {
	Version     int
	Name        string
	Description string
	SQL         string
	AppliedAt   time.Time
}

// getMigrations returns all schema migrations in version order.
//
// The list is empty because every schema change so far has been folded
// into getTableCreationQueries before any release shipped. Post-release
// changes append here and must never modify earlier entries.
func getMigrations() []Migration {
	return []Migration{}
}

// runMigrations applies any unapplied migrations in version order.
func (db *DB) runMigrations() error {
	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	for _, migration := range getMigrations() {
		if applied[migration.Version] {
			continue
		}
		if err := db.applyMigration(migration); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w",
				migration.Version, migration.Name, err)
		}
		logging.Info().
			Int("version", migration.Version).
			Str("name", migration.Name).
			Msg("Applied schema migration")
	}
	return nil
}

func (db *DB) createMigrationsTable() error {
	ctx, cancel := schemaContext()
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR NOT NULL,
			description VARCHAR,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (db *DB) getAppliedMigrations() (map[int]bool, error) {
	ctx, cancel := schemaContext()
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "migration rows")

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// applyMigration runs one migration and records it in the same
// transaction, so a failure leaves neither the change nor the record.
func (db *DB) applyMigration(migration Migration) error {
	ctx, cancel := schemaContext()
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, description) VALUES (?, ?, ?)",
		migration.Version, migration.Name, migration.Description); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
