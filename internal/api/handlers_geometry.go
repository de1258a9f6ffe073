// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"net/http"

	"github.com/swathline/swathline/internal/logging"
)

// SwathLines serves a swath's line endpoint geometry from the persisted
// spatial cache, rebuilding on miss.
func (h *Handler) SwathLines(w http.ResponseWriter, r *http.Request) {
	swath, err := urlInt(r, "swath")
	if err != nil {
		respondValidation(w, r, "swath", err.Error())
		return
	}

	lines, err := h.engine.GetLineGeometry(r.Context(), swath)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"swath": swath,
		"lines": lines,
		"count": len(lines),
	})
}

// SwathBox serves a swath's oriented bounding box.
func (h *Handler) SwathBox(w http.ResponseWriter, r *http.Request) {
	swath, err := urlInt(r, "swath")
	if err != nil {
		respondValidation(w, r, "swath", err.Error())
		return
	}

	box, err := h.engine.GetSwathBox(r.Context(), swath)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, box)
}

// SwathLinesGeoJSON renders a swath's lines as a FeatureCollection for
// map overlays.
func (h *Handler) SwathLinesGeoJSON(w http.ResponseWriter, r *http.Request) {
	swath, err := urlInt(r, "swath")
	if err != nil {
		respondValidation(w, r, "swath", err.Error())
		return
	}

	fc, err := h.engine.SwathLinesGeoJSON(r.Context(), swath)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, fc)
}

// SwathBoxGeoJSON renders a swath's bounding box as a FeatureCollection.
func (h *Handler) SwathBoxGeoJSON(w http.ResponseWriter, r *http.Request) {
	swath, err := urlInt(r, "swath")
	if err != nil {
		respondValidation(w, r, "swath", err.Error())
		return
	}

	fc, err := h.engine.SwathBoxGeoJSON(r.Context(), swath)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, fc)
}

// LinePointsGeoJSON renders a line's shotpoints with their deployment
// status in one channel.
func (h *Handler) LinePointsGeoJSON(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channelParam(r)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	line, err := urlInt(r, "line")
	if err != nil {
		respondValidation(w, r, "line", err.Error())
		return
	}

	fc, err := h.engine.LinePointsGeoJSON(r.Context(), line, channel)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, fc)
}

// RebuildSwathGeometry recomputes and persists a swath's spatial cache.
// An inconsistency between the declared swath membership and the survey
// plan aborts the rebuild with nothing persisted.
func (h *Handler) RebuildSwathGeometry(w http.ResponseWriter, r *http.Request) {
	swath, err := urlInt(r, "swath")
	if err != nil {
		respondValidation(w, r, "swath", err.Error())
		return
	}

	geom, err := h.engine.RebuildSwathGeometry(r.Context(), swath)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	logging.Info().Int("swath", swath).Int("lines", len(geom.Lines)).Msg("Swath geometry rebuilt")
	respondSuccess(w, r, geom)
}

// ClearSwathGeometry drops a swath's persisted geometry; the next read
// rebuilds it from the survey plan.
func (h *Handler) ClearSwathGeometry(w http.ResponseWriter, r *http.Request) {
	swath, err := urlInt(r, "swath")
	if err != nil {
		respondValidation(w, r, "swath", err.Error())
		return
	}

	removed, err := h.engine.ClearSwathCache(r.Context(), swath)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"swath":   swath,
		"removed": removed,
	})
}
