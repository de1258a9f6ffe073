// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package survey

import (
	"context"

	"github.com/swathline/swathline/internal/models"
)

// Gap detection. Semantics and caching live in the coverage package;
// the engine only lends them its facade.

// FindGaps scans one line for uncovered runs of at least minGapSize
// shotpoints. minGapSize <= 0 selects the configured default.
func (e *Engine) FindGaps(ctx context.Context, line int, channel models.Channel, minGapSize int) ([]models.Gap, error) {
	return e.gaps.FindGaps(ctx, line, channel, minGapSize)
}

// FindAllGapsInSwath scans every line a swath declares. Lines without
// qualifying gaps are absent from the result.
func (e *Engine) FindAllGapsInSwath(ctx context.Context, swath int, channel models.Channel, minGapSize int) (map[int][]models.Gap, error) {
	return e.gaps.FindAllGapsInSwath(ctx, swath, channel, minGapSize)
}

// ProjectGapStatistics rolls per-line gap totals into the severity
// triage report.
func (e *Engine) ProjectGapStatistics(ctx context.Context, channel models.Channel, minGapSize int) (*models.GapStatistics, error) {
	return e.gaps.ProjectGapStatistics(ctx, channel, minGapSize)
}

// Coverage rollups.

// LineStats returns coverage counters for one line in one channel.
func (e *Engine) LineStats(ctx context.Context, line int, channel models.Channel) (*models.CoverageStat, error) {
	return e.stats.LineStats(ctx, line, channel)
}

// SwathStats returns coverage counters aggregated over a swath's lines.
func (e *Engine) SwathStats(ctx context.Context, swath int, channel models.Channel) (*models.CoverageStat, error) {
	return e.stats.SwathStats(ctx, swath, channel)
}

// ProjectStats returns coverage counters across the whole survey plan.
func (e *Engine) ProjectStats(ctx context.Context, channel models.Channel) (*models.CoverageStat, error) {
	return e.stats.ProjectStats(ctx, channel)
}

// ProgressByType returns deploy/retrieve progress per equipment family.
func (e *Engine) ProgressByType(ctx context.Context, channel models.Channel) ([]models.TypeProgress, error) {
	return e.stats.ProgressByType(ctx, channel)
}

// UserStats returns per-user event counts, busiest first.
func (e *Engine) UserStats(ctx context.Context, channel models.Channel, limit int) ([]models.UserActivity, error) {
	return e.stats.UserStats(ctx, channel, limit)
}

// RecentActivity returns the channel's newest events.
func (e *Engine) RecentActivity(ctx context.Context, channel models.Channel, limit int) ([]models.DeploymentEvent, error) {
	return e.stats.RecentActivity(ctx, channel, limit)
}

// LineActivity returns one line's newest events.
func (e *Engine) LineActivity(ctx context.Context, line int, channel models.Channel, limit int) ([]models.DeploymentEvent, error) {
	return e.stats.LineActivity(ctx, line, channel, limit)
}

// Spatial cache and GeoJSON rendering.

// GetLineGeometry serves a swath's line endpoints from the persisted
// spatial cache, rebuilding on miss.
func (e *Engine) GetLineGeometry(ctx context.Context, swath int) ([]models.LineGeometry, error) {
	return e.spatial.GetLineGeometry(ctx, swath)
}

// GetSwathBox serves a swath's oriented bounding box, rebuilding on
// miss.
func (e *Engine) GetSwathBox(ctx context.Context, swath int) (*models.SwathBox, error) {
	return e.spatial.GetSwathBox(ctx, swath)
}

// RebuildSwathGeometry recomputes and persists a swath's spatial cache.
func (e *Engine) RebuildSwathGeometry(ctx context.Context, swath int) (*models.SwathGeometry, error) {
	return e.spatial.RebuildSwathGeometry(ctx, swath)
}

// ClearSwathCache drops a swath's persisted geometry; the next read
// rebuilds it.
func (e *Engine) ClearSwathCache(ctx context.Context, swath int) (int64, error) {
	return e.spatial.ClearSwathCache(ctx, swath)
}

// SwathLinesGeoJSON renders a swath's lines as a FeatureCollection.
func (e *Engine) SwathLinesGeoJSON(ctx context.Context, swath int) (models.FeatureCollection, error) {
	return e.spatial.SwathLinesGeoJSON(ctx, swath)
}

// SwathBoxGeoJSON renders a swath's bounding box as a FeatureCollection.
func (e *Engine) SwathBoxGeoJSON(ctx context.Context, swath int) (models.FeatureCollection, error) {
	return e.spatial.SwathBoxGeoJSON(ctx, swath)
}

// LinePointsGeoJSON renders a line's shotpoints with their deployment
// status in one channel.
func (e *Engine) LinePointsGeoJSON(ctx context.Context, line int, channel models.Channel) (models.FeatureCollection, error) {
	return e.spatial.LinePointsGeoJSON(ctx, line, channel)
}
