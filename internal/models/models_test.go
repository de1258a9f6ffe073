// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package models

import (
	"errors"
	"testing"
)

func TestParseChannel(t *testing.T) {
	const swathCount = 8

	tests := []struct {
		name    string
		input   string
		want    Channel
		wantErr bool
	}{
		{"empty defaults to global", "", ChannelGlobal, false},
		{"explicit global", "global", ChannelGlobal, false},
		{"first swath", "swath-1", Channel("swath-1"), false},
		{"last swath", "swath-8", Channel("swath-8"), false},
		{"swath beyond count", "swath-9", "", true},
		{"swath zero", "swath-0", "", true},
		{"negative swath", "swath--1", "", true},
		{"non-numeric swath", "swath-one", "", true},
		{"bare prefix", "swath-", "", true},
		{"unknown word", "everything", "", true},
		{"uppercase global rejected", "GLOBAL", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChannel(tt.input, swathCount)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseChannel(%q) = %q, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidChannel) {
					t.Errorf("error %v is not ErrInvalidChannel", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChannel(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseChannel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestChannelSwath(t *testing.T) {
	if n, ok := SwathChannel(3).Swath(); !ok || n != 3 {
		t.Errorf("SwathChannel(3).Swath() = %d, %v; want 3, true", n, ok)
	}
	if _, ok := ChannelGlobal.Swath(); ok {
		t.Error("global channel should not report a swath number")
	}
	if !ChannelGlobal.IsGlobal() {
		t.Error("ChannelGlobal.IsGlobal() = false")
	}
	if SwathChannel(1).IsGlobal() {
		t.Error("swath channel reported as global")
	}
}

func TestSeverityClassifyBoundaries(t *testing.T) {
	thresholds := SeverityThresholds{Critical: 50, High: 20, Medium: 10, Low: 5}

	tests := []struct {
		missing int
		want    Severity
	}{
		{51, SeverityCritical},
		// Exactly 50 is HIGH: the upper bound of each bucket is exclusive.
		{50, SeverityHigh},
		{21, SeverityHigh},
		{20, SeverityMedium},
		{11, SeverityMedium},
		{10, SeverityLow},
		{5, SeverityLow},
		{4, SeverityAcceptable},
		{0, SeverityAcceptable},
	}

	for _, tt := range tests {
		if got := thresholds.Classify(tt.missing); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.missing, got, tt.want)
		}
	}
}

func TestEquipmentFamily(t *testing.T) {
	tests := []struct {
		deploymentType string
		family         string
		deployed       bool
		retrieved      bool
	}{
		{"NODES DEPLOYED", "NODES", true, false},
		{"NODES RETRIEVED", "NODES", false, true},
		{"SM10 GEOPHONES DEPLOYED", "SM10 GEOPHONES", true, false},
		{"FORBIDDEN BUSH", "FORBIDDEN BUSH", false, false},
		{"OFFSETS", "OFFSETS", false, false},
		{"", "", false, false},
	}

	for _, tt := range tests {
		if got := EquipmentFamily(tt.deploymentType); got != tt.family {
			t.Errorf("EquipmentFamily(%q) = %q, want %q", tt.deploymentType, got, tt.family)
		}
		if got := IsDeployedType(tt.deploymentType); got != tt.deployed {
			t.Errorf("IsDeployedType(%q) = %v, want %v", tt.deploymentType, got, tt.deployed)
		}
		if got := IsRetrievedType(tt.deploymentType); got != tt.retrieved {
			t.Errorf("IsRetrievedType(%q) = %v, want %v", tt.deploymentType, got, tt.retrieved)
		}
	}
}

func TestImportResultReject(t *testing.T) {
	var result ImportResult
	if result.PartialFailure() {
		t.Error("empty result reported partial failure")
	}

	result.Applied = 2
	result.Reject(3, "unknown shotpoint 5000/999")
	result.Reject(7, "line is not an integer")

	if !result.PartialFailure() {
		t.Error("result with rejections did not report partial failure")
	}
	if len(result.Rejected) != 2 {
		t.Fatalf("expected 2 rejected rows, got %d", len(result.Rejected))
	}
	if result.Rejected[0].Row != 3 || result.Rejected[1].Row != 7 {
		t.Errorf("rejected rows out of order: %+v", result.Rejected)
	}
}

func TestNewFeatureCollection(t *testing.T) {
	fc := NewFeatureCollection(nil)
	if fc.Type != "FeatureCollection" {
		t.Errorf("Type = %q", fc.Type)
	}
	if fc.Features == nil {
		t.Error("Features must be non-nil so JSON renders [] instead of null")
	}

	pt := PointFeature(54.1, 24.3, map[string]interface{}{"line": 5000})
	if pt.Geometry.Type != "Point" {
		t.Errorf("point geometry type = %q", pt.Geometry.Type)
	}
	ls := LineStringFeature([][2]float64{{54.1, 24.3}, {54.2, 24.4}}, nil)
	if ls.Geometry.Type != "LineString" {
		t.Errorf("line geometry type = %q", ls.Geometry.Type)
	}
	pg := PolygonFeature([][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, nil)
	if pg.Geometry.Type != "Polygon" {
		t.Errorf("polygon geometry type = %q", pg.Geometry.Type)
	}
}

func TestShotpointKeyString(t *testing.T) {
	k := Shotpoint{Line: 5000, Shotpoint: 103}.Key()
	if k.String() != "5000/103" {
		t.Errorf("Key().String() = %q, want %q", k.String(), "5000/103")
	}
}
