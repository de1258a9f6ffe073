// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"errors"
	"net/http"

	"github.com/swathline/swathline/internal/importer"
	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/models"
)

// respondEngineError maps an engine error to an HTTP status and writes
// the error envelope. The mapping:
//
//	ErrLineNotFound, ErrSwathNotFound, ErrUnknownShotpoint -> 404
//	ErrInvalidChannel, *models.ValidationError             -> 400
//	importer.ErrTooManyRows                                -> 413
//	ErrCacheInconsistency                                  -> 500
//	anything else                                          -> 500 DATABASE_ERROR
//
// Unmapped errors are logged with the request ID before the generic
// message goes out; sentinel messages are safe to surface verbatim.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.Is(err, models.ErrLineNotFound),
		errors.Is(err, models.ErrSwathNotFound),
		errors.Is(err, models.ErrUnknownShotpoint):
		respondError(w, r, http.StatusNotFound, codeNotFound, err.Error())

	case errors.Is(err, models.ErrInvalidChannel):
		respondError(w, r, http.StatusBadRequest, codeChannel, err.Error())

	case errors.As(err, &vErr):
		respondValidation(w, r, vErr.Field, vErr.Reason)

	case errors.Is(err, importer.ErrTooManyRows):
		respondError(w, r, http.StatusRequestEntityTooLarge, codeImportSize, err.Error())

	case errors.Is(err, models.ErrCacheInconsistency):
		logging.Error().
			Err(err).
			Str("request_id", logging.RequestIDFromContext(r.Context())).
			Msg("Spatial cache rebuild aborted")
		respondError(w, r, http.StatusInternalServerError, codeInconsistent, err.Error())

	default:
		logging.Error().
			Err(err).
			Str("request_id", logging.RequestIDFromContext(r.Context())).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg("Unhandled engine error")
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "internal error")
	}
}
