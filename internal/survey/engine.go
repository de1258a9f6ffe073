// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package survey

import (
	"context"
	"fmt"

	"github.com/swathline/swathline/internal/cache"
	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/coverage"
	"github.com/swathline/swathline/internal/database"
	"github.com/swathline/swathline/internal/events"
	"github.com/swathline/swathline/internal/geometry"
	"github.com/swathline/swathline/internal/importer"
	"github.com/swathline/swathline/internal/models"
)

// Engine is the service facade over the survey components. All HTTP
// handlers and background services go through it; nothing else touches
// the database directly.
type Engine struct {
	db      *database.DB
	cache   cache.Cacher
	stats   *coverage.Aggregator
	gaps    *coverage.Detector
	spatial *geometry.Builder
	imports *importer.Importer
	stream  *events.Publisher

	swathCount int
	registry   []models.DeploymentType
}

// New wires the engine over a database handle and the shared result
// cache. The publisher may be nil; ledger writes then skip the change
// stream but keep their synchronous invalidation.
func New(db *database.DB, c cache.Cacher, cfg *config.Config, stream *events.Publisher) *Engine {
	registry := cfg.Survey.Registry()
	return &Engine{
		db:         db,
		cache:      c,
		stats:      coverage.NewAggregator(db, c),
		gaps:       coverage.NewDetector(db, c, cfg.Coverage, cfg.Cache.SequenceCapacity),
		spatial:    geometry.NewBuilder(db, cfg.Geometry, registry),
		imports:    importer.New(cfg.Import),
		stream:     stream,
		swathCount: cfg.Survey.SwathCount,
		registry:   registry,
	}
}

// ParseChannel validates a channel string against the configured swath
// count. An empty string selects the global channel.
func (e *Engine) ParseChannel(s string) (models.Channel, error) {
	return models.ParseChannel(s, e.swathCount)
}

// SwathCount returns the configured number of swaths.
func (e *Engine) SwathCount() int {
	return e.swathCount
}

// GetShotpoints returns a line's planned shotpoints, ascending. Returns
// models.ErrLineNotFound when the line is not in the survey plan.
func (e *Engine) GetShotpoints(ctx context.Context, line int) ([]models.Shotpoint, error) {
	points, err := e.db.GetLineShotpoints(ctx, line)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: line %d", models.ErrLineNotFound, line)
	}
	return points, nil
}

// ListLines returns every planned line number, ascending.
func (e *Engine) ListLines(ctx context.Context) ([]int, error) {
	return e.db.ListLines(ctx)
}

// SwathLineNumbers returns the lines a swath declares, ascending.
// Returns models.ErrSwathNotFound when the swath has no definitions.
func (e *Engine) SwathLineNumbers(ctx context.Context, swath int) ([]int, error) {
	defs, err := e.db.GetSwathDefinitions(ctx, swath)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: swath %d", models.ErrSwathNotFound, swath)
	}
	lines := make([]int, 0, len(defs))
	for _, def := range defs {
		lines = append(lines, def.Line)
	}
	return lines, nil
}

// SwathsForLine returns the swaths whose shot ranges include the line.
// A line outside every swath definition yields an empty slice, not an
// error; the stats refresher uses this to decide which swath rollups a
// ledger write dirtied.
func (e *Engine) SwathsForLine(ctx context.Context, line int) ([]int, error) {
	return e.db.GetSwathsForLine(ctx, line)
}

// DeploymentTypes returns the configured type registry. The ledger
// accepts types outside the registry; this list drives display colors
// and the editor's type picker.
func (e *Engine) DeploymentTypes() []models.DeploymentType {
	out := make([]models.DeploymentType, len(e.registry))
	copy(out, e.registry)
	return out
}

// CacheStats reports the shared result cache counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.GetStats()
}
