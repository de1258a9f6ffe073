// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package coverage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/swathline/swathline/internal/cache"
	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/database"
	"github.com/swathline/swathline/internal/models"
)

const (
	// fallbackMinGapSize applies when neither the caller nor the
	// configuration provides a minimum run length.
	fallbackMinGapSize = 1

	// fallbackStatsMinGapSize keeps project statistics focused on holes a
	// crew would actually steam back for.
	fallbackStatsMinGapSize = 5
)

// Detector finds runs of shotpoints without a deployment event. It reads the
// planned sequence and the deployed set from the store, never raw events, so
// a scan is two queries regardless of line length.
type Detector struct {
	db         *database.DB
	results    cache.Cacher
	sequences  *cache.LRUCache[[]int]
	thresholds models.SeverityThresholds

	defaultMinGap int
	statsMinGap   int
}

// NewDetector builds a Detector sharing the given result cache. The sequence
// LRU is private: survey plans change only on import, which resets it
// explicitly, so the LRU's default expiry is just a backstop.
func NewDetector(db *database.DB, results cache.Cacher, cfg config.CoverageConfig, sequenceCapacity int) *Detector {
	defaultMinGap := cfg.DefaultMinGapSize
	if defaultMinGap <= 0 {
		defaultMinGap = fallbackMinGapSize
	}
	statsMinGap := cfg.StatsMinGapSize
	if statsMinGap <= 0 {
		statsMinGap = fallbackStatsMinGapSize
	}
	return &Detector{
		db:            db,
		results:       results,
		sequences:     cache.NewLRUCache[[]int](sequenceCapacity, 0),
		thresholds:    cfg.Thresholds(),
		defaultMinGap: defaultMinGap,
		statsMinGap:   statsMinGap,
	}
}

// FindGaps scans one line in the given channel. Runs shorter than minGapSize
// are dropped; minGapSize <= 0 selects the configured default. Returns
// models.ErrLineNotFound when the line has no planned shotpoints.
func (d *Detector) FindGaps(ctx context.Context, line int, channel models.Channel, minGapSize int) ([]models.Gap, error) {
	if minGapSize <= 0 {
		minGapSize = d.defaultMinGap
	}

	sequence, err := d.lineSequence(ctx, line)
	if err != nil {
		return nil, err
	}
	deployed, err := d.db.GetLineDeployedSet(ctx, line, channel)
	if err != nil {
		return nil, err
	}
	return scanGaps(line, sequence, deployed, minGapSize), nil
}

// FindAllGapsInSwath runs a whole-line scan for every line the swath
// declares. Lines without qualifying gaps are absent from the result; lines
// declared but missing from the survey plan are skipped. Returns
// models.ErrSwathNotFound when the swath has no definitions.
func (d *Detector) FindAllGapsInSwath(ctx context.Context, swath int, channel models.Channel, minGapSize int) (map[int][]models.Gap, error) {
	if minGapSize <= 0 {
		minGapSize = d.defaultMinGap
	}

	key := fmt.Sprintf("gaps:swath:%d:%s:%d", swath, channel, minGapSize)
	if v, ok := d.results.Get(key); ok {
		if gaps, ok := v.(map[int][]models.Gap); ok {
			return gaps, nil
		}
	}

	defs, err := d.db.GetSwathDefinitions(ctx, swath)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: swath %d", models.ErrSwathNotFound, swath)
	}

	result := make(map[int][]models.Gap)
	for _, def := range defs {
		gaps, err := d.FindGaps(ctx, def.Line, channel, minGapSize)
		if err != nil {
			if errors.Is(err, models.ErrLineNotFound) {
				continue
			}
			return nil, err
		}
		if len(gaps) > 0 {
			result[def.Line] = gaps
		}
	}

	d.results.Set(key, result)
	return result, nil
}

// ProjectGapStatistics scans every planned line and rolls the results into a
// triage report. minGapSize <= 0 selects the statistics default, which is
// deliberately higher than the per-line default. Lines with no qualifying
// gaps count toward LinesScanned only.
func (d *Detector) ProjectGapStatistics(ctx context.Context, channel models.Channel, minGapSize int) (*models.GapStatistics, error) {
	if minGapSize <= 0 {
		minGapSize = d.statsMinGap
	}

	key := fmt.Sprintf("gaps:project:%s:%d", channel, minGapSize)
	if v, ok := d.results.Get(key); ok {
		if stats, ok := v.(*models.GapStatistics); ok {
			return stats, nil
		}
	}

	lines, err := d.db.ListLines(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.GapStatistics{
		Channel:        channel,
		MinGapSize:     minGapSize,
		SeverityCounts: make(map[models.Severity]int),
		NeedsAttention: []models.LineGapReport{},
		GeneratedAt:    time.Now().UTC(),
	}

	for _, line := range lines {
		gaps, err := d.FindGaps(ctx, line, channel, minGapSize)
		if err != nil {
			return nil, err
		}
		stats.LinesScanned++
		if len(gaps) == 0 {
			continue
		}

		totalPoints := 0
		for _, g := range gaps {
			totalPoints += g.Size
		}
		stats.LinesWithGaps++
		stats.TotalGaps += len(gaps)
		stats.TotalGapPoints += totalPoints

		severity := d.thresholds.Classify(totalPoints)
		stats.SeverityCounts[severity]++
		if severity == models.SeverityAcceptable {
			continue
		}
		stats.NeedsAttention = append(stats.NeedsAttention, models.LineGapReport{
			Line:           line,
			GapCount:       len(gaps),
			TotalGapPoints: totalPoints,
			Severity:       severity,
			Gaps:           gaps,
		})
	}

	sortReports(stats.NeedsAttention)

	d.results.Set(key, stats)
	return stats, nil
}

// InvalidateLineSequence drops one line's cached shotpoint sequence.
func (d *Detector) InvalidateLineSequence(line int) {
	d.sequences.Remove(strconv.Itoa(line))
}

// ResetSequences clears the sequence cache. Survey plan imports call this;
// deployment writes never need to.
func (d *Detector) ResetSequences() {
	d.sequences.Clear()
}

// lineSequence returns the line's ordered shotpoint numbers, from the LRU
// when possible. An empty sequence is reported as models.ErrLineNotFound and
// never cached, so a later plan import is picked up immediately.
func (d *Detector) lineSequence(ctx context.Context, line int) ([]int, error) {
	key := strconv.Itoa(line)
	if seq, ok := d.sequences.Get(key); ok {
		return seq, nil
	}

	seq, err := d.db.GetLineSequence(ctx, line)
	if err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: line %d", models.ErrLineNotFound, line)
	}

	d.sequences.Add(key, seq)
	return seq, nil
}

// scanGaps walks an ordered sequence once, opening a run at the first
// uncovered shotpoint and closing it at the next covered one. Runs shorter
// than minGapSize are discarded at close time.
func scanGaps(line int, sequence []int, deployed map[int]string, minGapSize int) []models.Gap {
	var gaps []models.Gap
	var start, end, size int
	open := false

	closeRun := func() {
		if size >= minGapSize {
			gaps = append(gaps, models.Gap{
				Line:           line,
				StartShotpoint: start,
				EndShotpoint:   end,
				Size:           size,
			})
		}
		open = false
	}

	for _, sp := range sequence {
		if _, covered := deployed[sp]; covered {
			if open {
				closeRun()
			}
			continue
		}
		if !open {
			open = true
			start = sp
			size = 0
		}
		end = sp
		size++
	}
	if open {
		closeRun()
	}
	return gaps
}

// severityRank orders severities worst-first for the needs-attention listing.
var severityRank = map[models.Severity]int{
	models.SeverityCritical:   4,
	models.SeverityHigh:       3,
	models.SeverityMedium:     2,
	models.SeverityLow:        1,
	models.SeverityAcceptable: 0,
}

// sortReports orders reports by severity, then missing points, then line
// number so equal entries render stably.
func sortReports(reports []models.LineGapReport) {
	sort.Slice(reports, func(i, j int) bool {
		if severityRank[reports[i].Severity] != severityRank[reports[j].Severity] {
			return severityRank[reports[i].Severity] > severityRank[reports[j].Severity]
		}
		if reports[i].TotalGapPoints != reports[j].TotalGapPoints {
			return reports[i].TotalGapPoints > reports[j].TotalGapPoints
		}
		return reports[i].Line < reports[j].Line
	})
}
