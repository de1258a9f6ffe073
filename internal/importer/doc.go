// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package importer parses the four CSV formats the survey exchanges with
// field software: survey plans, swath definitions, deployment events, and
// acquisition matching files.
//
// Parsers stream from an io.Reader and never abort on a bad row. Each row
// either becomes a typed value or a models.RejectedRow carrying its 1-based
// record number and a reason a human can act on; only an unreadable body or
// an input past import.max_rows is an error. The engine applies the accepted
// rows, merges storage-level rejections (unknown shotpoints) into the same
// result, and reports one models.ImportResult for the whole file.
//
// All four formats tolerate a column-header row: when the first record's
// first field is not an integer it is skipped. Swath definition files are
// headerless in the field (the per-swath CSVs predate this service), the
// others usually carry headers; detection makes the difference invisible.
// Acquisition files often arrive with extra bookkeeping columns, so only the
// leading Line and Station columns are read.
package importer
