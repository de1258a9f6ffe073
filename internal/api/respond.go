// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/models"
)

// Error codes carried in the envelope's error.code field.
const (
	codeValidation   = "VALIDATION_ERROR"
	codeNotFound     = "NOT_FOUND"
	codeChannel      = "INVALID_CHANNEL"
	codeImport       = "IMPORT_ERROR"
	codeImportSize   = "IMPORT_TOO_LARGE"
	codeInconsistent = "CACHE_INCONSISTENCY"
	codeDatabase     = "DATABASE_ERROR"
	codeRateLimit    = "RATE_LIMIT_EXCEEDED"
)

// respondSuccess writes a success envelope. GET responses get a weak
// ETag over the marshaled body; when the client's If-None-Match already
// matches, the body is dropped and 304 goes out instead.
func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// respondSuccessMeta writes a success envelope with query timing and
// cache attribution. Cached results carry a GeneratedAt that predates
// the request, which is how the stats handlers derive the flag.
func respondSuccessMeta(w http.ResponseWriter, r *http.Request, data interface{}, queryTime time.Duration, cached bool) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: queryTime.Milliseconds(),
			Cached:      cached,
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	})
}

// respondError writes an error envelope. The request ID rides along in
// both the metadata and the error payload so a client report can be
// matched to server logs.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := logging.RequestIDFromContext(r.Context())
	respondJSON(w, r, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: requestID,
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondValidation writes a 400 envelope carrying the failing field.
func respondValidation(w http.ResponseWriter, r *http.Request, field, reason string) {
	requestID := logging.RequestIDFromContext(r.Context())
	respondJSON(w, r, http.StatusBadRequest, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: requestID,
		},
		Error: &models.APIError{
			Code:    codeValidation,
			Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
			Details: map[string]interface{}{"field": field, "reason": reason},
		},
	})
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Vary", "Accept-Encoding")

	// Conditional GETs: a matching If-None-Match short-circuits to 304.
	// The tag hashes the data payload, not the whole envelope; the
	// metadata timestamp changes every response and would defeat
	// revalidation.
	if r.Method == http.MethodGet && status == http.StatusOK {
		if payload, err := json.Marshal(response.Data); err == nil {
			etag := weakETag(payload)
			w.Header().Set("ETag", etag)
			if etagMatches(r.Header.Get("If-None-Match"), etag) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	body, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// weakETag builds a weak validator from an FNV-1a hash of the payload.
func weakETag(payload []byte) string {
	h := fnv.New32a()
	h.Write(payload) //nolint:errcheck // fnv Write never fails
	return fmt.Sprintf(`W/"%08x"`, h.Sum32())
}

// etagMatches implements the weak-comparison rules for If-None-Match:
// "*" matches anything, and strong/weak prefixes are ignored when
// comparing opaque tags.
func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}

// sanitizeLogValue strips control characters so attacker-supplied
// strings cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			b.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
