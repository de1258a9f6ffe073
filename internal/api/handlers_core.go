// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"net/http"
	"time"

	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/metrics"
	"github.com/swathline/swathline/internal/models"
)

// HealthCheck reports liveness and component status. A failing database
// ping degrades the response to 503 so load balancers stop routing here,
// but the body still carries whatever detail is available.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if err := h.db.Ping(r.Context()); err != nil {
		logging.Warn().Err(err).Msg("Health check database ping failed")
		status.Status = "degraded"
	} else {
		status.DatabaseConnected = true
		if counts, err := h.db.GetRecordCounts(r.Context()); err == nil {
			status.ShotpointCount = counts.Shotpoints
		}
	}

	if !status.DatabaseConnected {
		respondJSON(w, r, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "error",
			Data:   status,
			Metadata: models.Metadata{
				Timestamp: time.Now().UTC(),
				RequestID: logging.RequestIDFromContext(r.Context()),
			},
			Error: &models.APIError{
				Code:    codeDatabase,
				Message: "database unreachable",
			},
		})
		return
	}
	respondSuccess(w, r, status)
}

// ListLines returns every planned line number.
func (h *Handler) ListLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.engine.ListLines(r.Context())
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"lines": lines,
		"count": len(lines),
	})
}

// GetLineShotpoints returns a line's planned shotpoints, ascending.
func (h *Handler) GetLineShotpoints(w http.ResponseWriter, r *http.Request) {
	line, err := urlInt(r, "line")
	if err != nil {
		respondValidation(w, r, "line", err.Error())
		return
	}
	points, err := h.engine.GetShotpoints(r.Context(), line)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"line":       line,
		"shotpoints": points,
		"count":      len(points),
	})
}

// DeploymentTypes returns the configured type registry with display
// colors for the editor's picker.
func (h *Handler) DeploymentTypes(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]interface{}{
		"deployment_types": h.engine.DeploymentTypes(),
	})
}

// cacheStatsPayload is the JSON shape for the cache stats endpoint.
type cacheStatsPayload struct {
	Hits           int64     `json:"hits"`
	Misses         int64     `json:"misses"`
	Evictions      int64     `json:"evictions"`
	TotalKeys      int64     `json:"total_keys"`
	HitRatePercent float64   `json:"hit_rate_percent"`
	LastCleanup    time.Time `json:"last_cleanup"`
}

// CacheStats reports the shared result cache counters and refreshes the
// mirrored Prometheus gauges while it is at it.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.CacheStats()
	metrics.UpdateCacheGauges(stats.Hits, stats.Misses, stats.Evictions, stats.TotalKeys)

	payload := cacheStatsPayload{
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Evictions:   stats.Evictions,
		TotalKeys:   stats.TotalKeys,
		LastCleanup: stats.LastCleanup,
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		payload.HitRatePercent = float64(stats.Hits) / float64(total) * 100.0
	}
	respondSuccess(w, r, payload)
}
