// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package survey

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"

	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/models"
)

// ImportDeployments streams a deployments CSV into one channel. Rows
// are stamped with the importing username. Parse-level and
// storage-level rejections merge into one result ordered by row number.
func (e *Engine) ImportDeployments(ctx context.Context, channel models.Channel, r io.Reader, username string) (*models.ImportResult, error) {
	rows, rejected, err := e.imports.ParseDeployments(r, username)
	if err != nil {
		return nil, err
	}
	result, err := e.BulkSetEvents(ctx, rows, channel)
	if err != nil {
		return nil, err
	}
	mergeRejections(result, rejected)
	return result, nil
}

// ImportAcquisition marks acquisition-matched source points in one
// channel with the configured acquired type. Stations absent from the
// survey plan are rejected per row, never silently dropped.
func (e *Engine) ImportAcquisition(ctx context.Context, channel models.Channel, r io.Reader, username string) (*models.ImportResult, error) {
	rows, rejected, err := e.imports.ParseAcquisition(r, username)
	if err != nil {
		return nil, err
	}
	result, err := e.BulkSetEvents(ctx, rows, channel)
	if err != nil {
		return nil, err
	}
	mergeRejections(result, rejected)
	return result, nil
}

// ImportSurveyPlan bootstraps or extends the coordinate store from a
// survey plan CSV. Existing points keep their PointID; coordinates and
// type are overwritten. A batch that applies rows resets the gap
// detector's sequence cache and clears every cached rollup, since any
// line may have changed shape.
func (e *Engine) ImportSurveyPlan(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	rows, rejected, err := e.imports.ParseSurveyPlan(r)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{Rejected: rejected}
	if result.Rejected == nil {
		result.Rejected = []models.RejectedRow{}
	}
	if len(rows) == 0 {
		return result, nil
	}

	points := make([]models.Shotpoint, 0, len(rows))
	for _, row := range rows {
		// The fresh PointID lands only on new rows; the upsert keeps
		// the existing ID on conflict.
		points = append(points, models.Shotpoint{
			Line:      row.Line,
			Shotpoint: row.Shotpoint,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
			PointType: row.PointType,
			PointID:   uuid.New().String(),
		})
	}
	if err := e.db.BulkUpsertShotpoints(ctx, points); err != nil {
		return nil, err
	}
	result.Applied = len(points)

	e.gaps.ResetSequences()
	e.stats.InvalidateAll()
	return result, nil
}

// ImportSwathDefinitions replaces a swath's line declarations from a
// definitions CSV. Rows whose first or last shotpoint is absent from
// the survey plan are rejected; duplicate lines resolve last row wins.
// When rows apply, the swath's cached rollups and persisted geometry
// are dropped and rebuilt on the next read.
func (e *Engine) ImportSwathDefinitions(ctx context.Context, swath int, r io.Reader) (*models.ImportResult, error) {
	if swath < 1 || swath > e.swathCount {
		return nil, fmt.Errorf("%w: swath %d", models.ErrSwathNotFound, swath)
	}

	rows, rejected, err := e.imports.ParseSwathDefinitions(r)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{Rejected: rejected}
	if result.Rejected == nil {
		result.Rejected = []models.RejectedRow{}
	}
	if len(rows) == 0 {
		return result, nil
	}

	lines := make([]int, 0, len(rows))
	seenLines := make(map[int]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seenLines[row.Line]; !ok {
			seenLines[row.Line] = struct{}{}
			lines = append(lines, row.Line)
		}
	}
	known, err := e.db.GetShotpointKeysForLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	order := make([]int, 0, len(rows))
	latest := make(map[int]models.SwathDefinitionRow, len(rows))
	for _, row := range rows {
		if _, ok := known[models.ShotpointKey{Line: row.Line, Shotpoint: row.FirstShot}]; !ok {
			result.Reject(row.Row, fmt.Sprintf("first_shot %d/%d is not in the survey plan", row.Line, row.FirstShot))
			continue
		}
		if _, ok := known[models.ShotpointKey{Line: row.Line, Shotpoint: row.LastShot}]; !ok {
			result.Reject(row.Row, fmt.Sprintf("last_shot %d/%d is not in the survey plan", row.Line, row.LastShot))
			continue
		}
		if _, seen := latest[row.Line]; !seen {
			order = append(order, row.Line)
		}
		latest[row.Line] = row
		result.Applied++
	}
	sortRejected(result)
	if len(order) == 0 {
		return result, nil
	}

	defs := make([]models.SwathDefinition, 0, len(order))
	for _, line := range order {
		row := latest[line]
		defs = append(defs, models.SwathDefinition{
			Swath:     swath,
			Line:      line,
			FirstShot: row.FirstShot,
			LastShot:  row.LastShot,
		})
	}
	if err := e.db.ReplaceSwathDefinitions(ctx, swath, defs); err != nil {
		return nil, err
	}

	e.cache.DeletePrefix(fmt.Sprintf("stats:swath:%d:", swath))
	e.cache.DeletePrefix(fmt.Sprintf("gaps:swath:%d:", swath))
	if _, err := e.spatial.ClearSwathCache(ctx, swath); err != nil {
		logging.Warn().Err(err).Int("swath", swath).
			Msg("Stale swath geometry left behind after definition import")
	}
	return result, nil
}

// mergeRejections folds parse-level rejections into a storage-level
// result and restores row order.
func mergeRejections(result *models.ImportResult, parseRejected []models.RejectedRow) {
	if len(parseRejected) == 0 {
		return
	}
	result.Rejected = append(result.Rejected, parseRejected...)
	sortRejected(result)
}

func sortRejected(result *models.ImportResult) {
	sort.Slice(result.Rejected, func(i, j int) bool {
		return result.Rejected[i].Row < result.Rejected[j].Row
	})
}
