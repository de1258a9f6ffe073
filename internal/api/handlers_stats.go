// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"net/http"
	"time"
)

const (
	defaultUserLimit     = 20
	maxUserLimit         = 200
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// LineStats returns coverage counters for one line.
func (h *Handler) LineStats(w http.ResponseWriter, r *http.Request) {
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

	start := time.Now()
	stat, err := h.engine.LineStats(r.Context(), line, channel)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccessMeta(w, r, stat, time.Since(start), stat.GeneratedAt.Before(start))
}

// SwathStats returns coverage counters aggregated over a swath.
func (h *Handler) SwathStats(w http.ResponseWriter, r *http.Request) {
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

	start := time.Now()
	stat, err := h.engine.SwathStats(r.Context(), swath, channel)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccessMeta(w, r, stat, time.Since(start), stat.GeneratedAt.Before(start))
}

// ProjectStats returns coverage counters across the whole survey plan.
func (h *Handler) ProjectStats(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channelParam(r)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	start := time.Now()
	stat, err := h.engine.ProjectStats(r.Context(), channel)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccessMeta(w, r, stat, time.Since(start), stat.GeneratedAt.Before(start))
}

// ProgressByType returns deploy/retrieve progress per equipment family.
func (h *Handler) ProgressByType(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channelParam(r)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	progress, err := h.engine.ProgressByType(r.Context(), channel)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"channel":  channel,
		"progress": progress,
	})
}

// UserStats returns per-user event counts, busiest first.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channelParam(r)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	limit := limitParam(r, defaultUserLimit, maxUserLimit)

	users, err := h.engine.UserStats(r.Context(), channel, limit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"channel": channel,
		"users":   users,
		"count":   len(users),
	})
}

// RecentActivity returns the channel's newest ledger events.
func (h *Handler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channelParam(r)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	limit := limitParam(r, defaultActivityLimit, maxActivityLimit)

	events, err := h.engine.RecentActivity(r.Context(), channel, limit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"channel": channel,
		"events":  events,
		"count":   len(events),
	})
}

// LineActivity returns one line's newest ledger events.
func (h *Handler) LineActivity(w http.ResponseWriter, r *http.Request) {
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
	limit := limitParam(r, defaultActivityLimit, maxActivityLimit)

	events, err := h.engine.LineActivity(r.Context(), line, channel, limit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"line":    line,
		"channel": channel,
		"events":  events,
		"count":   len(events),
	})
}
