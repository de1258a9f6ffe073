// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/models"
	"github.com/swathline/swathline/internal/validation"
)

// Fallbacks for zero-value import configuration.
const (
	// fallbackAcquiredType marks acquisition-matched source points when the
	// import config leaves the type unset.
	fallbackAcquiredType = "OFFSETS"
	fallbackMaxRows      = 200000
)

// ErrTooManyRows aborts an import whose input exceeds import.max_rows. The
// cap protects the service from runaway uploads; a legitimate survey plan
// stays far below it.
var ErrTooManyRows = errors.New("import exceeds maximum row count")

// Importer parses import CSVs into typed rows. Stateless apart from
// configuration; safe for concurrent use.
type Importer struct {
	acquiredType string
	maxRows      int
}

// New builds an Importer from the import configuration.
func New(cfg config.ImportConfig) *Importer {
	acquiredType := strings.TrimSpace(cfg.AcquiredType)
	if acquiredType == "" {
		acquiredType = fallbackAcquiredType
	}
	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = fallbackMaxRows
	}
	return &Importer{acquiredType: acquiredType, maxRows: maxRows}
}

// AcquiredType returns the deployment type stamped on acquisition-matched
// rows.
func (im *Importer) AcquiredType() string {
	return im.acquiredType
}

// ParseDeployments reads deployment rows (line, shotpoint, event-type). A
// missing or blank event-type clears the key instead of setting it, matching
// the interactive editor. Duplicate keys are preserved in file order; the
// ledger applies them last-row-wins. Deployment CSVs carry no username, so
// the caller's is stamped on every row.
func (im *Importer) ParseDeployments(r io.Reader, username string) ([]models.EventRow, []models.RejectedRow, error) {
	var rows []models.EventRow
	var rejected []models.RejectedRow
	reject := func(row int, reason string) {
		rejected = append(rejected, models.RejectedRow{Row: row, Reason: reason})
	}

	err := im.forEachRecord(r, reject, func(row int, fields []string) {
		if len(fields) < 2 || len(fields) > 3 {
			reject(row, "expected line,shotpoint,event-type")
			return
		}

		line, err := parseInt(fields[0])
		if err != nil {
			reject(row, fmt.Sprintf("line %q is not an integer", strings.TrimSpace(fields[0])))
			return
		}
		shotpoint, err := parseInt(fields[1])
		if err != nil {
			reject(row, fmt.Sprintf("shotpoint %q is not an integer", strings.TrimSpace(fields[1])))
			return
		}

		var eventType string
		if len(fields) == 3 {
			eventType = strings.TrimSpace(fields[2])
		}

		rows = append(rows, models.EventRow{
			Row:            row,
			Line:           line,
			Shotpoint:      shotpoint,
			DeploymentType: eventType,
			Username:       username,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return rows, rejected, nil
}

// ParseAcquisition reads acquisition matching rows (Line, Station, ...).
// Only the two leading columns are read; acquisition exports carry extra
// bookkeeping columns that vary by vendor. Every accepted row becomes a set
// of the configured acquired type on the station's shotpoint.
func (im *Importer) ParseAcquisition(r io.Reader, username string) ([]models.EventRow, []models.RejectedRow, error) {
	var rows []models.EventRow
	var rejected []models.RejectedRow
	reject := func(row int, reason string) {
		rejected = append(rejected, models.RejectedRow{Row: row, Reason: reason})
	}

	err := im.forEachRecord(r, reject, func(row int, fields []string) {
		if len(fields) < 2 {
			reject(row, "expected Line,Station leading columns")
			return
		}

		line, err := parseInt(fields[0])
		if err != nil {
			reject(row, fmt.Sprintf("Line %q is not an integer", strings.TrimSpace(fields[0])))
			return
		}
		station, err := parseInt(fields[1])
		if err != nil {
			reject(row, fmt.Sprintf("Station %q is not an integer", strings.TrimSpace(fields[1])))
			return
		}

		rows = append(rows, models.EventRow{
			Row:            row,
			Line:           line,
			Shotpoint:      station,
			DeploymentType: im.acquiredType,
			Username:       username,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return rows, rejected, nil
}

// ParseSurveyPlan reads planned shotpoint rows (line, shotpoint, latitude,
// longitude, type). Coordinate ranges and the point type enum are validated
// per row; the engine assigns point IDs when it applies the batch.
func (im *Importer) ParseSurveyPlan(r io.Reader) ([]models.SurveyPlanRow, []models.RejectedRow, error) {
	var rows []models.SurveyPlanRow
	var rejected []models.RejectedRow
	reject := func(row int, reason string) {
		rejected = append(rejected, models.RejectedRow{Row: row, Reason: reason})
	}
	seen := make(map[models.ShotpointKey]int)

	err := im.forEachRecord(r, reject, func(row int, fields []string) {
		if len(fields) != 5 {
			reject(row, "expected line,shotpoint,latitude,longitude,type")
			return
		}

		line, err := parseInt(fields[0])
		if err != nil {
			reject(row, fmt.Sprintf("line %q is not an integer", strings.TrimSpace(fields[0])))
			return
		}
		shotpoint, err := parseInt(fields[1])
		if err != nil {
			reject(row, fmt.Sprintf("shotpoint %q is not an integer", strings.TrimSpace(fields[1])))
			return
		}
		latitude, err := parseFloat(fields[2])
		if err != nil {
			reject(row, fmt.Sprintf("latitude %q is not a number", strings.TrimSpace(fields[2])))
			return
		}
		longitude, err := parseFloat(fields[3])
		if err != nil {
			reject(row, fmt.Sprintf("longitude %q is not a number", strings.TrimSpace(fields[3])))
			return
		}

		// Each planned shot must be unique. The first occurrence wins;
		// later ones are rejected rather than silently overwritten.
		key := models.ShotpointKey{Line: line, Shotpoint: shotpoint}
		if firstRow, dup := seen[key]; dup {
			reject(row, fmt.Sprintf("duplicate shotpoint %d/%d, first defined on row %d", line, shotpoint, firstRow))
			return
		}

		planRow := models.SurveyPlanRow{
			Row:       row,
			Line:      line,
			Shotpoint: shotpoint,
			Latitude:  latitude,
			Longitude: longitude,
			PointType: strings.TrimSpace(fields[4]),
		}
		if verr := validation.ValidateStruct(&planRow); verr != nil {
			reject(row, verr.Error())
			return
		}

		seen[key] = row
		rows = append(rows, planRow)
	})
	if err != nil {
		return nil, nil, err
	}
	return rows, rejected, nil
}

// ParseSwathDefinitions reads swath membership rows (line, first_shot,
// last_shot). Shot order is preserved as written; some crews number lines in
// descending shot order. Whether the declared shots exist in the survey plan
// is checked by the engine against the coordinate store.
func (im *Importer) ParseSwathDefinitions(r io.Reader) ([]models.SwathDefinitionRow, []models.RejectedRow, error) {
	var rows []models.SwathDefinitionRow
	var rejected []models.RejectedRow
	reject := func(row int, reason string) {
		rejected = append(rejected, models.RejectedRow{Row: row, Reason: reason})
	}

	err := im.forEachRecord(r, reject, func(row int, fields []string) {
		if len(fields) != 3 {
			reject(row, "expected line,first_shot,last_shot")
			return
		}

		line, err := parseInt(fields[0])
		if err != nil {
			reject(row, fmt.Sprintf("line %q is not an integer", strings.TrimSpace(fields[0])))
			return
		}
		firstShot, err := parseInt(fields[1])
		if err != nil {
			reject(row, fmt.Sprintf("first_shot %q is not an integer", strings.TrimSpace(fields[1])))
			return
		}
		lastShot, err := parseInt(fields[2])
		if err != nil {
			reject(row, fmt.Sprintf("last_shot %q is not an integer", strings.TrimSpace(fields[2])))
			return
		}

		rows = append(rows, models.SwathDefinitionRow{
			Row:       row,
			Line:      line,
			FirstShot: firstShot,
			LastShot:  lastShot,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return rows, rejected, nil
}

// forEachRecord streams CSV records to handle with their 1-based record
// numbers. A malformed record goes to reject and the reader resumes on the
// next line, so one mangled row never sinks the file. Blank records and a
// detected header are skipped but still counted, keeping row numbers aligned
// with the source file. Only an unreadable body or an input past the row cap
// returns an error.
func (im *Importer) forEachRecord(r io.Reader, reject func(row int, reason string), handle func(row int, fields []string)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		row++
		if row > im.maxRows {
			return fmt.Errorf("%w (limit %d)", ErrTooManyRows, im.maxRows)
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				reject(row, fmt.Sprintf("malformed CSV record: %v", parseErr.Err))
				continue
			}
			return fmt.Errorf("failed to read import data: %w", err)
		}

		if row == 1 && len(record) > 0 {
			// Field software on Windows likes to prepend a UTF-8 BOM.
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
			if !isInt(record[0]) {
				continue // column header
			}
		}
		if isBlank(record) {
			continue
		}

		handle(row, record)
	}
}

func parseInt(field string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(field))
}

func parseFloat(field string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(field), 64)
}

func isInt(field string) bool {
	_, err := parseInt(field)
	return err == nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
