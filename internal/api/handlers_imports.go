// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/metrics"
	"github.com/swathline/swathline/internal/models"
)

// defaultImportUsername attributes rows from files that carry no
// operator name.
const defaultImportUsername = "import"

// importPayload wraps an ImportResult for the response envelope.
type importPayload struct {
	Kind           string               `json:"kind"`
	Applied        int                  `json:"applied"`
	Rejected       []models.RejectedRow `json:"rejected"`
	PartialFailure bool                 `json:"partial_failure"`
}

// ImportSurveyPlan loads the planned shotpoint grid from a CSV body.
// Re-importing the same plan is idempotent.
func (h *Handler) ImportSurveyPlan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := h.engine.ImportSurveyPlan(r.Context(), r.Body)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	h.respondImport(w, r, "survey_plan", result, start)
}

// ImportSwathDefinitions replaces a swath's declared line membership
// from a CSV body.
func (h *Handler) ImportSwathDefinitions(w http.ResponseWriter, r *http.Request) {
	swath, err := urlInt(r, "swath")
	if err != nil {
		respondValidation(w, r, "swath", err.Error())
		return
	}

	start := time.Now()
	result, err := h.engine.ImportSwathDefinitions(r.Context(), swath, r.Body)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	h.respondImport(w, r, "swath_definitions", result, start)
}

// ImportDeployments bulk-loads ledger events into one channel from a
// CSV body. Duplicate keys in the file resolve last-row-wins.
func (h *Handler) ImportDeployments(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channelParam(r)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	start := time.Now()
	result, err := h.engine.ImportDeployments(r.Context(), channel, r.Body, importUsername(r))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	h.respondImport(w, r, "deployments", result, start)
}

// ImportAcquisition marks shotpoints acquired from an observer log CSV.
func (h *Handler) ImportAcquisition(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channelParam(r)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	start := time.Now()
	result, err := h.engine.ImportAcquisition(r.Context(), channel, r.Body, importUsername(r))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	h.respondImport(w, r, "acquisition", result, start)
}

// respondImport records import metrics and writes the result payload.
// Per-row rejections are part of a successful response; the client
// inspects rejected rows to fix the source file.
func (h *Handler) respondImport(w http.ResponseWriter, r *http.Request, kind string, result *models.ImportResult, start time.Time) {
	duration := time.Since(start)
	metrics.RecordImport(kind, result.Applied, len(result.Rejected), duration)

	if result.PartialFailure() {
		logging.Warn().
			Str("kind", kind).
			Int("applied", result.Applied).
			Int("rejected", len(result.Rejected)).
			Dur("duration", duration).
			Msg("Import completed with rejected rows")
	} else {
		logging.Info().
			Str("kind", kind).
			Int("applied", result.Applied).
			Dur("duration", duration).
			Msg("Import completed")
	}

	respondSuccess(w, r, importPayload{
		Kind:           kind,
		Applied:        result.Applied,
		Rejected:       result.Rejected,
		PartialFailure: result.PartialFailure(),
	})
}

// importUsername resolves the operator attribution for imported rows.
func importUsername(r *http.Request) string {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		return defaultImportUsername
	}
	return username
}
