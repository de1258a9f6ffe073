// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/swathline/swathline/internal/models"
)

// scanFunc maps one result row to a value of type T.
type scanFunc[T any] func(rows *sql.Rows) (T, error)

// queryAndScan executes a query and scans every row with scan. It
// applies the standard query timeout and closes the rows on all paths.
func queryAndScan[T any](ctx context.Context, db *DB, query string, args []any, scan scanFunc[T]) ([]T, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer closeWithLog(rows, "query rows")

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return results, nil
}

// whereBuilder accumulates WHERE clauses with positional arguments, so
// queries with optional filters stay parameterized.
type whereBuilder struct {
	clauses []string
	args    []any
}

func newWhereBuilder() *whereBuilder {
	return &whereBuilder{}
}

// addClause appends a raw clause with its arguments.
func (wb *whereBuilder) addClause(clause string, args ...any) {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
}

// addChannel filters on a ledger channel.
func (wb *whereBuilder) addChannel(channel models.Channel) {
	wb.addClause("channel = ?", channel.String())
}

// addSince filters rows at or after the given instant. A zero time adds
// no filter.
func (wb *whereBuilder) addSince(column string, since time.Time) {
	if since.IsZero() {
		return
	}
	wb.addClause(column+" >= ?", since)
}

// addLine filters on a line number. Zero means all lines.
func (wb *whereBuilder) addLine(line int) {
	if line == 0 {
		return
	}
	wb.addClause("line = ?", line)
}

// build returns the combined WHERE expression and its arguments. An
// empty builder yields "1=1" so callers can always interpolate it.
func (wb *whereBuilder) build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}
