// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

/*
Package models defines data structures shared across the Swathline application.

This package is the single source of truth for domain types: survey reference
data, the deployment ledger entities, derived coverage results, and the API
response envelope. Models are plain data; behavior lives in the packages that
own it (internal/coverage, internal/geometry, internal/survey). The only logic
here is channel parsing and severity classification, both pure functions.

Model Categories:

1. Reference Data:
  - Shotpoint: one planned acquisition location (line, shotpoint, lat/lon, type)
  - SwathDefinition: declared swath membership (swath, line, shot range)

2. Ledger Models:
  - DeploymentEvent: the current event for a (line, shotpoint, channel) key
  - Channel: ledger partition ("global" or "swath-N")
  - DeploymentType: registry entry with display color

3. Derived Results (never persisted as source of truth):
  - Gap, LineGapReport, GapStatistics: gap detection output
  - CoverageStat, TypeProgress, UserActivity: aggregation output
  - LineGeometry, SwathBox, SwathGeometry: spatial cache entries
  - FeatureCollection / Feature: GeoJSON rendering shapes

4. Import Models:
  - ImportResult / RejectedRow: bulk operation outcome with per-row detail
  - EventRow, SurveyPlanRow, SwathDefinitionRow, AcquisitionRow: CSV rows

5. API Models:
  - APIResponse, APIError, Metadata: standardized HTTP envelope
  - HealthStatus: liveness payload

Usage Example - API Response:

	response := models.APIResponse{
	    Status: "success",
	    Data:   stats,
	    Metadata: models.Metadata{
	        Timestamp:   time.Now(),
	        QueryTimeMS: 12,
	    },
	}

Thread Safety:

All models are immutable after creation and safe for concurrent reads; none
carry internal synchronization.
*/
package models
