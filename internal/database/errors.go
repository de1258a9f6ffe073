// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package database

import (
	"io"

	"github.com/swathline/swathline/internal/logging"
)

// closeWithLog closes a resource and logs a warning when the close
// fails. Used in defer statements where the error cannot change the
// outcome but should not vanish silently.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().
			Err(err).
			Str("resource", resourceType).
			Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and discards the error. Used during
// error cleanup paths where a close failure has nothing useful to add.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
