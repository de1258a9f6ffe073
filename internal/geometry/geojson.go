// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package geometry

import (
	"context"
	"fmt"
	"strconv"

	"github.com/swathline/swathline/internal/models"
)

// SwathLinesGeoJSON renders the swath's lines as LineString features. Each
// line number is labeled once; repeats get an empty display_label so the map
// does not stack text.
func (b *Builder) SwathLinesGeoJSON(ctx context.Context, swath int) (models.FeatureCollection, error) {
	lines, err := b.GetLineGeometry(ctx, swath)
	if err != nil {
		return models.FeatureCollection{}, err
	}

	labeled := make(map[int]bool, len(lines))
	features := make([]models.Feature, 0, len(lines))
	for _, lg := range lines {
		label := ""
		if !labeled[lg.Line] {
			labeled[lg.Line] = true
			label = strconv.Itoa(lg.Line)
		}
		features = append(features, models.LineStringFeature(
			[][2]float64{{lg.Lon1, lg.Lat1}, {lg.Lon2, lg.Lat2}},
			map[string]interface{}{
				"line":          lg.Line,
				"line_id":       fmt.Sprintf("S%d_L%d", lg.Swath, lg.Line),
				"display_label": label,
				"first_shot":    lg.FirstShot,
				"last_shot":     lg.LastShot,
				"swath":         lg.Swath,
				"type":          lg.LineType,
			}))
	}
	return models.NewFeatureCollection(features), nil
}

// SwathBoxGeoJSON renders the swath's bounding box as a single closed
// Polygon feature carrying the rotation angle.
func (b *Builder) SwathBoxGeoJSON(ctx context.Context, swath int) (models.FeatureCollection, error) {
	box, err := b.GetSwathBox(ctx, swath)
	if err != nil {
		return models.FeatureCollection{}, err
	}

	ring := make([][2]float64, 0, len(box.Corners)+1)
	ring = append(ring, box.Corners...)
	ring = append(ring, box.Corners[0])

	feature := models.PolygonFeature(ring, map[string]interface{}{
		"swath":        box.Swath,
		"type":         "swath_box",
		"name":         fmt.Sprintf("Swath %d", box.Swath),
		"rotation_deg": box.RotationDeg,
	})
	return models.NewFeatureCollection([]models.Feature{feature}), nil
}

// LinePointsGeoJSON renders every planned shotpoint of a line as a Point
// feature with its deployment state in the given channel and the registry
// color for that state. Returns models.ErrLineNotFound for unplanned lines.
func (b *Builder) LinePointsGeoJSON(ctx context.Context, line int, channel models.Channel) (models.FeatureCollection, error) {
	points, err := b.db.GetLineShotpoints(ctx, line)
	if err != nil {
		return models.FeatureCollection{}, err
	}
	if len(points) == 0 {
		return models.FeatureCollection{}, fmt.Errorf("%w: line %d", models.ErrLineNotFound, line)
	}
	deployed, err := b.db.GetLineDeployedSet(ctx, line, channel)
	if err != nil {
		return models.FeatureCollection{}, err
	}

	features := make([]models.Feature, 0, len(points))
	for _, sp := range points {
		deploymentType := deployed[sp.Shotpoint]
		color, ok := b.colors[deploymentType]
		if !ok {
			color = defaultPointColor
		}
		features = append(features, models.PointFeature(sp.Longitude, sp.Latitude,
			map[string]interface{}{
				"line":            sp.Line,
				"shotpoint":       sp.Shotpoint,
				"point_type":      sp.PointType,
				"point_id":        sp.PointID,
				"deployment_type": deploymentType,
				"color":           color,
			}))
	}
	return models.NewFeatureCollection(features), nil
}
