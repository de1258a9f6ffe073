// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/swathline/swathline/internal/models"
)

// urlInt parses an integer path parameter. chi guarantees the parameter
// exists for matched routes, so an empty value only happens on a
// mis-wired route table.
func urlInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", name, raw)
	}
	return v, nil
}

// channelParam resolves the channel from either a path parameter or the
// channel query parameter, in that order. Absent both, the global
// channel applies.
func (h *Handler) channelParam(r *http.Request) (models.Channel, error) {
	raw := chi.URLParam(r, "channel")
	if raw == "" {
		raw = r.URL.Query().Get("channel")
	}
	return h.engine.ParseChannel(raw)
}

// queryInt extracts an integer query parameter, falling back to the
// default on absence or garbage.
func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// minGapSizeParam reads min_gap_size. Zero means "use the configured
// default"; the engine resolves that, so it passes through unchanged.
func minGapSizeParam(r *http.Request) int {
	return queryInt(r, "min_gap_size", 0)
}

// limitParam reads limit with a cap so one request cannot dump the
// whole ledger.
func limitParam(r *http.Request, defaultValue, maxValue int) int {
	v := queryInt(r, "limit", defaultValue)
	if v < 1 {
		return defaultValue
	}
	if v > maxValue {
		return maxValue
	}
	return v
}
