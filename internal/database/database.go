// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/logging"
)

const (
	// defaultQueryTimeout bounds queries issued with a context that
	// carries no deadline of its own.
	defaultQueryTimeout = 30 * time.Second

	// maxUpsertRetries bounds the retry loop for write conflicts.
	maxUpsertRetries = 3
)

// DB wraps the DuckDB connection and provides all data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// keyLocks serializes concurrent upserts to the same
	// (line, shotpoint, channel) key. Values are *sync.Mutex.
	keyLocks sync.Map

	queryTimeout time.Duration
}

// New creates a database connection, configures the pool, and runs
// schema initialization and migrations.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is nil")
	}

	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed databases.
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	preserveOrder := "false"
	if cfg.PreserveInsertionOrder {
		preserveOrder = "true"
	}

	// Extension autoloading is disabled: the schema is plain relational
	// DuckDB and autoload attempts network fetches on first use.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", cfg.Path, err)
	}

	queryTimeout := cfg.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}

	db := &DB{
		conn:         conn,
		cfg:          cfg,
		queryTimeout: queryTimeout,
	}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Str("max_memory", cfg.MaxMemory).
		Msg("Database initialized")

	return db, nil
}

// configureConnectionPool applies pool limits appropriate for an
// embedded database. DuckDB handles its own intra-query parallelism, so
// the pool only needs enough connections to cover concurrent requests.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// initialize creates tables, applies versioned migrations, and builds
// indexes. A checkpoint afterwards persists the schema to disk so a
// crash directly after startup does not lose it.
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	ctx, cancel := schemaContext()
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Post-initialization checkpoint failed")
	}

	return nil
}

// Close checkpoints the database and closes the connection pool. The
// checkpoint flushes the WAL so the database file is complete on disk.
func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()

	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint before close failed")
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db == nil || db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Conn exposes the underlying pool for health checks and tests.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the configured database location.
func (db *DB) Path() string {
	return db.cfg.Path
}

// PoolStats reports connection pool usage for the metrics refresher.
func (db *DB) PoolStats() sql.DBStats {
	return db.conn.Stats()
}

// Checkpoint forces DuckDB to flush the write-ahead log into the main
// database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// ensureContext attaches the configured query timeout when the caller's
// context carries no deadline, so no query can hang indefinitely.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// schemaContext returns a context for DDL statements, which get a longer
// timeout than regular queries.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// acquireKeyLock locks the per-key mutex for a deployment key, creating
// it on first use. The returned function releases the lock.
func (db *DB) acquireKeyLock(key string) func() {
	muInterface, _ := db.keyLocks.LoadOrStore(key, &sync.Mutex{})
	mu, ok := muInterface.(*sync.Mutex)
	if !ok {
		// Unreachable unless the map is corrupted; fall back to a fresh
		// mutex rather than panic.
		mu = &sync.Mutex{}
		db.keyLocks.Store(key, mu)
	}
	mu.Lock()
	return mu.Unlock
}

// isTransactionConflict reports whether an error is a DuckDB write-write
// conflict that a retry can resolve.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction conflict") ||
		strings.Contains(msg, "Conflict on update") ||
		strings.Contains(msg, "cannot update a table that has been altered")
}

// isInternalError reports whether an error is a DuckDB INTERNAL error.
// These indicate database corruption and must never be retried.
func isInternalError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "INTERNAL Error")
}

// retryBackoff waits for the exponential backoff interval before the
// next upsert attempt, or returns early when the context is done.
func retryBackoff(ctx context.Context, attempt int) error {
	backoff := time.Millisecond * time.Duration(1<<uint(attempt))
	select {
	case <-time.After(backoff):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
