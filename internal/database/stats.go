// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/swathline/swathline/internal/models"
)

// ChannelCounts carries raw ledger counters for one scope. Covered is
// the number of keys with any event; Deployed and Retrieved count
// events whose type carries the matching suffix.
type ChannelCounts struct {
	Covered   int
	Deployed  int
	Retrieved int
}

// TypeCount is one deployment type's ledger row count.
type TypeCount struct {
	DeploymentType string `json:"deployment_type"`
	Count          int    `json:"count"`
}

const channelCountsSelect = `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE deployment_type LIKE ?),
		COUNT(*) FILTER (WHERE deployment_type LIKE ?)`

func suffixPatterns() (deployed, retrieved string) {
	return "%" + models.DeployedSuffix, "%" + models.RetrievedSuffix
}

// GetLineCounts returns ledger counters for one line in a channel.
func (db *DB) GetLineCounts(ctx context.Context, line int, channel models.Channel) (ChannelCounts, error) {
	deployed, retrieved := suffixPatterns()
	return db.scanCounts(ctx, channelCountsSelect+`
		FROM deployments
		WHERE line = ? AND channel = ?`,
		deployed, retrieved, line, channel.String())
}

// GetSwathCounts returns ledger counters for a swath in a channel.
// Swath rollups cover the declared lines in full; the declared shot
// ranges only scope geometry, not statistics.
func (db *DB) GetSwathCounts(ctx context.Context, swath int, channel models.Channel) (ChannelCounts, error) {
	deployed, retrieved := suffixPatterns()
	return db.scanCounts(ctx, channelCountsSelect+`
		FROM deployments d
		JOIN swath_definitions sd ON sd.line = d.line
		WHERE sd.swath = ? AND d.channel = ?`,
		deployed, retrieved, swath, channel.String())
}

// GetProjectCounts returns ledger counters for the whole project in a
// channel.
func (db *DB) GetProjectCounts(ctx context.Context, channel models.Channel) (ChannelCounts, error) {
	deployed, retrieved := suffixPatterns()
	return db.scanCounts(ctx, channelCountsSelect+`
		FROM deployments
		WHERE channel = ?`,
		deployed, retrieved, channel.String())
}

func (db *DB) scanCounts(ctx context.Context, query string, args ...any) (ChannelCounts, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var counts ChannelCounts
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(
		&counts.Covered, &counts.Deployed, &counts.Retrieved)
	if err != nil {
		return counts, fmt.Errorf("failed to aggregate deployment counts: %w", err)
	}
	return counts, nil
}

// CountSwathShotpoints returns the number of planned shotpoints on a
// swath's declared lines, whole lines. Zero means the swath is
// undefined or covers no planned points.
func (db *DB) CountSwathShotpoints(ctx context.Context, swath int) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM coordinates c
		JOIN swath_definitions sd ON sd.line = c.line
		WHERE sd.swath = ?`,
		swath).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count swath %d shotpoints: %w", swath, err)
	}
	return count, nil
}

// CountProjectShotpoints returns the total number of planned shotpoints.
func (db *DB) CountProjectShotpoints(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM coordinates").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count shotpoints: %w", err)
	}
	return count, nil
}

// GetTypeCounts returns per-type ledger row counts for a channel,
// largest first. Feeds the progress-by-equipment-family rollup.
func (db *DB) GetTypeCounts(ctx context.Context, channel models.Channel) ([]TypeCount, error) {
	return queryAndScan(ctx, db, `
		SELECT deployment_type, COUNT(*)
		FROM deployments
		WHERE channel = ?
		GROUP BY deployment_type
		ORDER BY COUNT(*) DESC, deployment_type ASC`,
		[]any{channel.String()},
		func(rows *sql.Rows) (TypeCount, error) {
			var tc TypeCount
			err := rows.Scan(&tc.DeploymentType, &tc.Count)
			return tc, err
		})
}

// GetUserActivity returns per-user ledger write counts in a channel,
// busiest first. A zero since means all time.
func (db *DB) GetUserActivity(ctx context.Context, channel models.Channel, since time.Time) ([]models.UserActivity, error) {
	wb := newWhereBuilder()
	wb.addChannel(channel)
	wb.addSince("event_time", since)
	where, args := wb.build()

	return queryAndScan(ctx, db, fmt.Sprintf(`
		SELECT username, COUNT(*), MAX(event_time)
		FROM deployments
		WHERE %s
		GROUP BY username
		ORDER BY COUNT(*) DESC, username ASC`, where),
		args,
		func(rows *sql.Rows) (models.UserActivity, error) {
			var ua models.UserActivity
			err := rows.Scan(&ua.Username, &ua.EventCount, &ua.LastActive)
			return ua, err
		})
}

// GetRecentEvents returns the newest ledger writes in a channel,
// optionally restricted to a line and a time window. Limit <= 0 means
// a default page of 100.
func (db *DB) GetRecentEvents(ctx context.Context, channel models.Channel, line int, since time.Time, limit int) ([]models.DeploymentEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	wb := newWhereBuilder()
	wb.addChannel(channel)
	wb.addLine(line)
	wb.addSince("event_time", since)
	where, args := wb.build()
	args = append(args, limit)

	return queryAndScan(ctx, db, fmt.Sprintf(`
		SELECT line, shotpoint, channel, deployment_type, username, event_time
		FROM deployments
		WHERE %s
		ORDER BY event_time DESC
		LIMIT ?`, where),
		args,
		scanDeploymentEvent)
}
