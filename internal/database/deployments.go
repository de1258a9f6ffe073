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

	"github.com/swathline/swathline/internal/models"
)

const upsertDeploymentSQL = `
	INSERT INTO deployments (line, shotpoint, channel, deployment_type, username, event_time)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (line, shotpoint, channel) DO UPDATE SET
		deployment_type = EXCLUDED.deployment_type,
		username = EXCLUDED.username,
		event_time = EXCLUDED.event_time`

// UpsertDeploymentEvent writes the current event for a key and returns
// the previous event, if any. Last-write-wins: concurrent writers to
// the same key serialize on a per-key mutex, then retry on storage
// conflicts, and the later commit is the value readers see.
func (db *DB) UpsertDeploymentEvent(ctx context.Context, ev *models.DeploymentEvent) (*models.DeploymentEvent, error) {
	key := deploymentKey(ev.Line, ev.Shotpoint, ev.Channel)
	release := db.acquireKeyLock(key)
	defer release()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	previous, err := db.GetDeploymentEvent(ctx, ev.Line, ev.Shotpoint, ev.Channel)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxUpsertRetries; attempt++ {
		_, err := db.conn.ExecContext(ctx, upsertDeploymentSQL,
			ev.Line, ev.Shotpoint, ev.Channel.String(), ev.DeploymentType, ev.Username, ev.EventTime)
		if err == nil {
			return previous, nil
		}

		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("deployment upsert for %s canceled: %w", key, ctx.Err())
		case isInternalError(err):
			return nil, fmt.Errorf("FATAL: internal database error during upsert for %s, not retrying: %w", key, err)
		case isTransactionConflict(err):
			lastErr = err
			if berr := retryBackoff(ctx, attempt); berr != nil {
				return nil, fmt.Errorf("deployment upsert for %s canceled during backoff: %w", key, berr)
			}
		default:
			return nil, fmt.Errorf("failed to upsert deployment for %s: %w", key, err)
		}
	}
	return nil, fmt.Errorf("deployment upsert for %s failed after %d attempts: %w", key, maxUpsertRetries, lastErr)
}

// GetDeploymentEvent returns the current event for a key, or (nil, nil)
// when the key has no event in the channel.
func (db *DB) GetDeploymentEvent(ctx context.Context, line, shotpoint int, channel models.Channel) (*models.DeploymentEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var ev models.DeploymentEvent
	var channelStr string
	err := db.conn.QueryRowContext(ctx, `
		SELECT line, shotpoint, channel, deployment_type, username, event_time
		FROM deployments
		WHERE line = ? AND shotpoint = ? AND channel = ?`,
		line, shotpoint, channel.String()).Scan(
		&ev.Line, &ev.Shotpoint, &channelStr, &ev.DeploymentType, &ev.Username, &ev.EventTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment for %d/%d on %s: %w", line, shotpoint, channel, err)
	}
	ev.Channel = models.Channel(channelStr)
	return &ev, nil
}

// DeleteDeploymentEvent removes the current event for a key. Returns
// whether an event existed.
func (db *DB) DeleteDeploymentEvent(ctx context.Context, line, shotpoint int, channel models.Channel) (bool, error) {
	key := deploymentKey(line, shotpoint, channel)
	release := db.acquireKeyLock(key)
	defer release()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM deployments WHERE line = ? AND shotpoint = ? AND channel = ?",
		line, shotpoint, channel.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete deployment for %s: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result for %s: %w", key, err)
	}
	return affected > 0, nil
}

// GetLineDeployments returns every current event on a line in a channel,
// ascending by shotpoint.
func (db *DB) GetLineDeployments(ctx context.Context, line int, channel models.Channel) ([]models.DeploymentEvent, error) {
	return queryAndScan(ctx, db, `
		SELECT line, shotpoint, channel, deployment_type, username, event_time
		FROM deployments
		WHERE line = ? AND channel = ?
		ORDER BY shotpoint ASC`,
		[]any{line, channel.String()},
		scanDeploymentEvent)
}

// GetLineDeployedSet returns shotpoint -> deployment type for a line in
// a channel. The gap scan consumes this as a presence set; the map
// layer uses the type for marker colors.
func (db *DB) GetLineDeployedSet(ctx context.Context, line int, channel models.Channel) (map[int]string, error) {
	rows, err := queryAndScan(ctx, db, `
		SELECT shotpoint, deployment_type
		FROM deployments
		WHERE line = ? AND channel = ?`,
		[]any{line, channel.String()},
		func(rows *sql.Rows) (deployedRow, error) {
			var r deployedRow
			err := rows.Scan(&r.shotpoint, &r.deploymentType)
			return r, err
		})
	if err != nil {
		return nil, err
	}

	set := make(map[int]string, len(rows))
	for _, r := range rows {
		set[r.shotpoint] = r.deploymentType
	}
	return set, nil
}

type deployedRow struct {
	shotpoint      int
	deploymentType string
}

// ClearLineDeployments removes every event on a line in a channel and
// returns the number of rows removed. Administrative reset.
func (db *DB) ClearLineDeployments(ctx context.Context, line int, channel models.Channel) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM deployments WHERE line = ? AND channel = ?",
		line, channel.String())
	if err != nil {
		return 0, fmt.Errorf("failed to clear deployments for line %d on %s: %w", line, channel, err)
	}
	return res.RowsAffected()
}

// BulkApplyDeploymentEvents applies pre-validated import rows in one
// transaction: sets are upserted, clears are deleted. Callers reduce
// duplicate keys beforehand (last row wins), so the statement order
// within the transaction does not matter. The whole batch retries on
// storage conflicts with interactive writers.
func (db *DB) BulkApplyDeploymentEvents(ctx context.Context, sets []models.DeploymentEvent, clears []models.ShotpointKey, channel models.Channel) error {
	if len(sets) == 0 && len(clears) == 0 {
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxUpsertRetries; attempt++ {
		err := db.applyDeploymentBatch(ctx, sets, clears, channel)
		if err == nil {
			return nil
		}

		switch {
		case ctx.Err() != nil:
			return fmt.Errorf("deployment batch canceled: %w", ctx.Err())
		case isInternalError(err):
			return fmt.Errorf("FATAL: internal database error during deployment batch, not retrying: %w", err)
		case isTransactionConflict(err):
			lastErr = err
			if berr := retryBackoff(ctx, attempt); berr != nil {
				return fmt.Errorf("deployment batch canceled during backoff: %w", berr)
			}
		default:
			return fmt.Errorf("failed to apply deployment batch: %w", err)
		}
	}
	return fmt.Errorf("deployment batch failed after %d attempts: %w", maxUpsertRetries, lastErr)
}

func (db *DB) applyDeploymentBatch(ctx context.Context, sets []models.DeploymentEvent, clears []models.ShotpointKey, channel models.Channel) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(sets) > 0 {
		stmt, err := tx.PrepareContext(ctx, upsertDeploymentSQL)
		if err != nil {
			return fmt.Errorf("failed to prepare batch upsert: %w", err)
		}
		defer closeQuietly(stmt)

		for i := range sets {
			ev := &sets[i]
			if _, err := stmt.ExecContext(ctx,
				ev.Line, ev.Shotpoint, channel.String(), ev.DeploymentType, ev.Username, ev.EventTime); err != nil {
				return fmt.Errorf("batch upsert for %d/%d failed: %w", ev.Line, ev.Shotpoint, err)
			}
		}
	}

	for _, k := range clears {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM deployments WHERE line = ? AND shotpoint = ? AND channel = ?",
			k.Line, k.Shotpoint, channel.String()); err != nil {
			return fmt.Errorf("batch clear for %s failed: %w", k, err)
		}
	}

	return tx.Commit()
}

// GetDeployedPoints returns ledger entries joined with their planned
// coordinates for map rendering. A swath of 0 means the whole project;
// otherwise rows are restricted to the swath's declared line ranges.
func (db *DB) GetDeployedPoints(ctx context.Context, channel models.Channel, swath int) ([]models.DeployedPoint, error) {
	query := `
		SELECT d.line, d.shotpoint, c.latitude, c.longitude, d.deployment_type, d.username
		FROM deployments d
		JOIN coordinates c ON c.line = d.line AND c.shotpoint = d.shotpoint
		WHERE d.channel = ?
		ORDER BY d.line ASC, d.shotpoint ASC`
	args := []any{channel.String()}

	if swath != 0 {
		query = `
			SELECT d.line, d.shotpoint, c.latitude, c.longitude, d.deployment_type, d.username
			FROM deployments d
			JOIN coordinates c ON c.line = d.line AND c.shotpoint = d.shotpoint
			JOIN swath_definitions sd ON sd.line = d.line
				AND d.shotpoint BETWEEN sd.first_shot AND sd.last_shot
			WHERE d.channel = ? AND sd.swath = ?
			ORDER BY d.line ASC, d.shotpoint ASC`
		args = append(args, swath)
	}

	return queryAndScan(ctx, db, query, args,
		func(rows *sql.Rows) (models.DeployedPoint, error) {
			var p models.DeployedPoint
			err := rows.Scan(&p.Line, &p.Shotpoint, &p.Latitude, &p.Longitude,
				&p.DeploymentType, &p.Username)
			return p, err
		})
}

func scanDeploymentEvent(rows *sql.Rows) (models.DeploymentEvent, error) {
	var ev models.DeploymentEvent
	var channelStr string
	err := rows.Scan(&ev.Line, &ev.Shotpoint, &channelStr, &ev.DeploymentType,
		&ev.Username, &ev.EventTime)
	ev.Channel = models.Channel(channelStr)
	return ev, err
}

func deploymentKey(line, shotpoint int, channel models.Channel) string {
	return fmt.Sprintf("%d:%d:%s", line, shotpoint, channel)
}
