// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"time"

	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/database"
	"github.com/swathline/swathline/internal/survey"
)

// Handler carries the dependencies shared by all endpoint methods.
//
// Endpoint methods are split across files by resource:
//   - handlers_core.go: health, lines, shotpoints, deployment types, cache
//   - handlers_deployments.go: the deployment ledger
//   - handlers_stats.go: coverage rollups and activity feeds
//   - handlers_gaps.go: gap detection
//   - handlers_geometry.go: spatial cache and GeoJSON
//   - handlers_imports.go: CSV bulk loads
type Handler struct {
	engine    *survey.Engine
	db        *database.DB
	config    *config.Config
	version   string
	startTime time.Time
}

// NewHandler wires the endpoint methods over the engine facade. The db
// handle is only used for health reporting; all domain reads and writes
// go through the engine.
func NewHandler(engine *survey.Engine, db *database.DB, cfg *config.Config, version string) *Handler {
	return &Handler{
		engine:    engine,
		db:        db,
		config:    cfg,
		version:   version,
		startTime: time.Now(),
	}
}
