// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package geometry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/database"
	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/models"
)

const (
	defaultBoxPaddingDeg   = 0.0001
	defaultBottomOffsetDeg = 0.002

	// defaultPointColor renders shotpoints with no event, and events whose
	// type is not in the registry.
	defaultPointColor = "#ffffff"
)

// Builder derives and caches swath geometry from the survey plan.
type Builder struct {
	db     *database.DB
	cfg    config.GeometryConfig
	colors map[string]string
}

// NewBuilder wires the builder to the store. The registry supplies display
// colors for point rendering; zero config values fall back to the defaults.
func NewBuilder(db *database.DB, cfg config.GeometryConfig, registry []models.DeploymentType) *Builder {
	if cfg.BoxPaddingDeg <= 0 {
		cfg.BoxPaddingDeg = defaultBoxPaddingDeg
	}
	if cfg.BottomOffsetDeg <= 0 {
		cfg.BottomOffsetDeg = defaultBottomOffsetDeg
	}
	colors := make(map[string]string, len(registry))
	for _, dt := range registry {
		colors[dt.Name] = dt.Color
	}
	return &Builder{db: db, cfg: cfg, colors: colors}
}

// RebuildSwathGeometry recomputes one swath's line segments and bounding box
// and replaces the cached rows atomically. Every declared first/last
// shotpoint must exist in the survey plan; a missing one aborts with
// models.ErrCacheInconsistency and persists nothing. Returns
// models.ErrSwathNotFound when the swath has no definitions.
func (b *Builder) RebuildSwathGeometry(ctx context.Context, swath int) (*models.SwathGeometry, error) {
	start := time.Now()

	defs, err := b.db.GetSwathDefinitions(ctx, swath)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: swath %d", models.ErrSwathNotFound, swath)
	}

	lines := make([]models.LineGeometry, 0, len(defs))
	for _, def := range defs {
		first, err := b.resolveEndpoint(ctx, def.Line, def.FirstShot)
		if err != nil {
			return nil, err
		}
		last, err := b.resolveEndpoint(ctx, def.Line, def.LastShot)
		if err != nil {
			return nil, err
		}

		lineType := first.PointType
		if last.PointType != first.PointType {
			lineType = first.PointType + "/" + last.PointType
		}
		lines = append(lines, models.LineGeometry{
			Swath:     swath,
			Line:      def.Line,
			FirstShot: def.FirstShot,
			LastShot:  def.LastShot,
			Lon1:      first.Longitude,
			Lat1:      first.Latitude,
			Lon2:      last.Longitude,
			Lat2:      last.Latitude,
			LineType:  lineType,
		})
	}

	geom := &models.SwathGeometry{
		Swath: swath,
		Lines: lines,
		Box:   b.buildBox(swath, lines),
	}
	if err := b.db.ReplaceSwathGeometry(ctx, geom); err != nil {
		return nil, err
	}

	logging.Info().
		Int("swath", swath).
		Int("lines", len(lines)).
		Dur("elapsed", time.Since(start)).
		Msg("Rebuilt swath geometry")
	return geom, nil
}

// GetLineGeometry serves the swath's cached line segments, rebuilding on a
// cache miss.
func (b *Builder) GetLineGeometry(ctx context.Context, swath int) ([]models.LineGeometry, error) {
	lines, err := b.db.GetSwathLineGeometries(ctx, swath)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		return lines, nil
	}

	geom, err := b.RebuildSwathGeometry(ctx, swath)
	if err != nil {
		return nil, err
	}
	return geom.Lines, nil
}

// GetSwathBox serves the swath's cached bounding box, rebuilding on a cache
// miss.
func (b *Builder) GetSwathBox(ctx context.Context, swath int) (*models.SwathBox, error) {
	box, err := b.db.GetSwathBox(ctx, swath)
	if err != nil {
		return nil, err
	}
	if box != nil {
		return box, nil
	}

	geom, err := b.RebuildSwathGeometry(ctx, swath)
	if err != nil {
		return nil, err
	}
	return geom.Box, nil
}

// ClearSwathCache drops the swath's cached rows. The next read rebuilds.
// Returns the number of rows removed; clearing an unbuilt swath is a no-op.
func (b *Builder) ClearSwathCache(ctx context.Context, swath int) (int64, error) {
	removed, err := b.db.ClearSwathGeometry(ctx, swath)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logging.Info().Int("swath", swath).Int64("rows", removed).Msg("Cleared swath geometry cache")
	}
	return removed, nil
}

func (b *Builder) resolveEndpoint(ctx context.Context, line, shotpoint int) (*models.Shotpoint, error) {
	sp, err := b.db.GetShotpoint(ctx, line, shotpoint)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, fmt.Errorf("%w: declared endpoint %d/%d not in survey plan",
			models.ErrCacheInconsistency, line, shotpoint)
	}
	return sp, nil
}

// buildBox computes the oriented bounding rectangle of the line endpoints.
// The rotation angle is the mean of per-line direction angles; endpoints are
// rotated into an axis-aligned frame around their bounding center, padded,
// pushed down by the bottom offset for label space, and the corners rotated
// back. Zero-length lines contribute no angle; a swath of only those gets an
// axis-aligned box.
func (b *Builder) buildBox(swath int, lines []models.LineGeometry) *models.SwathBox {
	coords := make([][2]float64, 0, len(lines)*2)
	var angleSum float64
	var angleCount int
	for _, lg := range lines {
		coords = append(coords, [2]float64{lg.Lon1, lg.Lat1}, [2]float64{lg.Lon2, lg.Lat2})
		dx, dy := lg.Lon2-lg.Lon1, lg.Lat2-lg.Lat1
		if dx != 0 || dy != 0 {
			angleSum += math.Atan2(dy, dx) * 180 / math.Pi
			angleCount++
		}
	}

	var rotationDeg float64
	if angleCount > 0 {
		rotationDeg = angleSum / float64(angleCount)
	}
	theta := rotationDeg * math.Pi / 180

	minLon, maxLon := coords[0][0], coords[0][0]
	minLat, maxLat := coords[0][1], coords[0][1]
	for _, c := range coords[1:] {
		minLon, maxLon = math.Min(minLon, c[0]), math.Max(maxLon, c[0])
		minLat, maxLat = math.Min(minLat, c[1]), math.Max(maxLat, c[1])
	}
	centerLon := (minLon + maxLon) / 2
	centerLat := (minLat + maxLat) / 2

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range coords {
		x, y := rotate(c[0]-centerLon, c[1]-centerLat, -theta)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	minX -= b.cfg.BoxPaddingDeg
	maxX += b.cfg.BoxPaddingDeg
	minY -= b.cfg.BoxPaddingDeg
	maxY += b.cfg.BoxPaddingDeg
	minY -= b.cfg.BottomOffsetDeg

	unrotate := func(x, y float64) [2]float64 {
		rx, ry := rotate(x, y, theta)
		return [2]float64{rx + centerLon, ry + centerLat}
	}

	// Bottom-left, bottom-right, top-right, top-left. The first two double
	// as the display edge.
	corners := [][2]float64{
		unrotate(minX, minY),
		unrotate(maxX, minY),
		unrotate(maxX, maxY),
		unrotate(minX, maxY),
	}

	return &models.SwathBox{
		Swath:       swath,
		Corners:     corners,
		Edge:        [][2]float64{corners[0], corners[1]},
		RotationDeg: rotationDeg,
		BuiltAt:     time.Now().UTC(),
	}
}

// rotate maps a point through a rotation of theta radians about the origin.
func rotate(x, y, theta float64) (float64, float64) {
	cos, sin := math.Cos(theta), math.Sin(theta)
	return x*cos - y*sin, x*sin + y*cos
}
