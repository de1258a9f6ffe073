// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"net/http"
	"time"
)

// LineGaps scans one line for coverage gaps.
func (h *Handler) LineGaps(w http.ResponseWriter, r *http.Request) {
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
	minGapSize := minGapSizeParam(r)

	gaps, err := h.engine.FindGaps(r.Context(), line, channel, minGapSize)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"line":    line,
		"channel": channel,
		"gaps":    gaps,
		"count":   len(gaps),
	})
}

// SwathGaps scans every line a swath declares. The result maps line
// numbers to their gap lists; lines without qualifying gaps are absent.
func (h *Handler) SwathGaps(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channelParam(r)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	swath, err := urlInt(r, "swath")
	if err != nil {
		respondValidation(w, r, "swath", err.Error())
		return
	}
	minGapSize := minGapSizeParam(r)

	gapsByLine, err := h.engine.FindAllGapsInSwath(r.Context(), swath, channel, minGapSize)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	totalGaps := 0
	for _, gaps := range gapsByLine {
		totalGaps += len(gaps)
	}
	respondSuccess(w, r, map[string]interface{}{
		"swath":           swath,
		"channel":         channel,
		"gaps_by_line":    gapsByLine,
		"lines_with_gaps": len(gapsByLine),
		"total_gaps":      totalGaps,
	})
}

// GapStatistics rolls project-wide gap totals into the severity triage
// report.
func (h *Handler) GapStatistics(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channelParam(r)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	minGapSize := minGapSizeParam(r)

	start := time.Now()
	stats, err := h.engine.ProjectGapStatistics(r.Context(), channel, minGapSize)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccessMeta(w, r, stats, time.Since(start), stats.GeneratedAt.Before(start))
}
