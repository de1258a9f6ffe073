// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package models

import (
	"time"
)

// LineGeometry is one cached line entry for map rendering: the declared shot
// range of the line within a swath and the coordinates of both endpoints.
// Pure memoization of coordinate-store data; rebuilt whole-swath, never
// partially updated.
type LineGeometry struct {
	Swath     int     `json:"swath"`
	Line      int     `json:"line"`
	FirstShot int     `json:"first_shot"`
	LastShot  int     `json:"last_shot"`
	Lon1      float64 `json:"lon1"`
	Lat1      float64 `json:"lat1"`
	Lon2      float64 `json:"lon2"`
	Lat2      float64 `json:"lat2"`
	// LineType is the endpoint point type, or "T1/T2" when the two ends differ.
	LineType string `json:"line_type"`
}

// SwathBox is the oriented bounding rectangle of a swath's line endpoints,
// plus the display edge (the rectangle's bottom side) and the rotation angle
// used to build it. Corners and edge are [lon, lat] pairs.
type SwathBox struct {
	Swath       int          `json:"swath"`
	Corners     [][2]float64 `json:"corners"`
	Edge        [][2]float64 `json:"edge"`
	RotationDeg float64      `json:"rotation_deg"`
	BuiltAt     time.Time    `json:"built_at"`
}

// SwathGeometry is the result of one swath rebuild.
type SwathGeometry struct {
	Swath int            `json:"swath"`
	Lines []LineGeometry `json:"lines"`
	Box   *SwathBox      `json:"box"`
}

// GeoJSON shapes (RFC 7946 subset used by the map layer).

// FeatureCollection wraps rendered features.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection builds a collection; an empty one still renders.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Feature is one renderable geometry with display properties.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry holds GeoJSON coordinates in [lon, lat] order. Coordinates is
// [2]float64 for Point, [][2]float64 for LineString, [][][2]float64 for
// Polygon.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// PointFeature builds a Point feature.
func PointFeature(lon, lat float64, props map[string]interface{}) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Point", Coordinates: [2]float64{lon, lat}},
		Properties: props,
	}
}

// LineStringFeature builds a LineString feature from endpoint pairs.
func LineStringFeature(coords [][2]float64, props map[string]interface{}) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "LineString", Coordinates: coords},
		Properties: props,
	}
}

// PolygonFeature builds a single-ring Polygon feature. The ring is closed by
// the caller (first corner repeated last).
func PolygonFeature(ring [][2]float64, props map[string]interface{}) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Polygon", Coordinates: [][][2]float64{ring}},
		Properties: props,
	}
}
