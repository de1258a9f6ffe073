// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/swathline/swathline/internal/metrics"
	"github.com/swathline/swathline/internal/models"
)

// maxBodyBytes bounds JSON request bodies. CSV imports have their own
// row cap and are exempt.
const maxBodyBytes = 1 << 20

// GetEvent returns the current ledger event for one key, or a null
// event when the key has none. Absence of an event is a normal state,
// not an error.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
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
	shotpoint, err := urlInt(r, "shotpoint")
	if err != nil {
		respondValidation(w, r, "shotpoint", err.Error())
		return
	}

	event, err := h.engine.GetEvent(r.Context(), line, shotpoint, channel)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"line":      line,
		"shotpoint": shotpoint,
		"channel":   channel,
		"event":     event,
	})
}

// eventRequest is the PUT body for a single ledger write.
type eventRequest struct {
	DeploymentType string `json:"deployment_type"`
	Username       string `json:"username"`
}

// SetEvent overwrites the ledger event for one key and returns both the
// new event and the one it displaced.
func (h *Handler) SetEvent(w http.ResponseWriter, r *http.Request) {
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
	shotpoint, err := urlInt(r, "shotpoint")
	if err != nil {
		respondValidation(w, r, "shotpoint", err.Error())
		return
	}

	var req eventRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondValidation(w, r, "body", err.Error())
		return
	}

	previous, err := h.engine.SetEvent(r.Context(), line, shotpoint, channel, req.DeploymentType, req.Username)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	metrics.RecordLedgerWrite(channel.String(), "set")

	current, err := h.engine.GetEvent(r.Context(), line, shotpoint, channel)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"event":    current,
		"previous": previous,
	})
}

// ClearEvent removes the ledger event for one key. Clearing an empty
// key succeeds without side effects.
func (h *Handler) ClearEvent(w http.ResponseWriter, r *http.Request) {
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
	shotpoint, err := urlInt(r, "shotpoint")
	if err != nil {
		respondValidation(w, r, "shotpoint", err.Error())
		return
	}

	if err := h.engine.ClearEvent(r.Context(), line, shotpoint, channel); err != nil {
		respondEngineError(w, r, err)
		return
	}
	metrics.RecordLedgerWrite(channel.String(), "clear")

	respondSuccess(w, r, map[string]interface{}{
		"line":      line,
		"shotpoint": shotpoint,
		"channel":   channel,
		"cleared":   true,
	})
}

// saveRequest is the POST body for an interactive dual-channel save.
type saveRequest struct {
	Line           int    `json:"line"`
	Shotpoint      int    `json:"shotpoint"`
	Swath          int    `json:"swath"`
	DeploymentType string `json:"deployment_type"`
	Username       string `json:"username"`
}

// SaveDeployment writes one event to the swath channel and mirrors it
// to the global channel, so swath-scoped views and the unified project
// view both see the save. A blank deployment type is the editor's erase
// action and clears the key on both channels instead. The swath write
// lands first; if the global mirror fails the swath channel keeps the
// event and the error reports the partial state.
func (h *Handler) SaveDeployment(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondValidation(w, r, "body", err.Error())
		return
	}
	if req.Swath < 1 || req.Swath > h.engine.SwathCount() {
		respondValidation(w, r, "swath",
			fmt.Sprintf("must be 1 to %d, got %d", h.engine.SwathCount(), req.Swath))
		return
	}

	swathChannel := models.SwathChannel(req.Swath)
	channels := []models.Channel{swathChannel, models.ChannelGlobal}

	if strings.TrimSpace(req.DeploymentType) == "" {
		for _, ch := range channels {
			if err := h.engine.ClearEvent(r.Context(), req.Line, req.Shotpoint, ch); err != nil {
				respondEngineError(w, r, err)
				return
			}
			metrics.RecordLedgerWrite(ch.String(), "clear")
		}
		respondSuccess(w, r, map[string]interface{}{
			"line":      req.Line,
			"shotpoint": req.Shotpoint,
			"cleared":   true,
			"channels":  channels,
		})
		return
	}

	if _, err := h.engine.SetEvent(r.Context(), req.Line, req.Shotpoint, swathChannel, req.DeploymentType, req.Username); err != nil {
		respondEngineError(w, r, err)
		return
	}
	metrics.RecordLedgerWrite(swathChannel.String(), "set")

	if _, err := h.engine.SetEvent(r.Context(), req.Line, req.Shotpoint, models.ChannelGlobal, req.DeploymentType, req.Username); err != nil {
		respondEngineError(w, r, err)
		return
	}
	metrics.RecordLedgerWrite(models.ChannelGlobal.String(), "set")

	respondSuccess(w, r, map[string]interface{}{
		"line":            req.Line,
		"shotpoint":       req.Shotpoint,
		"deployment_type": req.DeploymentType,
		"channels":        channels,
	})
}

// ClearLine removes every event on a line in one channel. Returns the
// removed count so operators can sanity-check a reset.
func (h *Handler) ClearLine(w http.ResponseWriter, r *http.Request) {
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

	removed, err := h.engine.ClearLineEvents(r.Context(), line, channel)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	metrics.RecordLedgerWrite(channel.String(), "clear_line")

	respondSuccess(w, r, map[string]interface{}{
		"line":    line,
		"channel": channel,
		"removed": removed,
	})
}

// decodeBody parses a JSON request body with a size cap.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}
