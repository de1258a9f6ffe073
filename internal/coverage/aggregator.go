// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package coverage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/swathline/swathline/internal/cache"
	"github.com/swathline/swathline/internal/database"
	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/models"
)

// Aggregator computes coverage counters and activity rollups from the ledger.
// Reads go through the shared cache; every ledger write must invalidate
// through InvalidateLine or InvalidateAll before it is acknowledged, so a
// cached value is never older than the last write plus the TTL.
type Aggregator struct {
	db    *database.DB
	cache cache.Cacher
}

// NewAggregator builds an Aggregator over the shared result cache.
func NewAggregator(db *database.DB, c cache.Cacher) *Aggregator {
	return &Aggregator{db: db, cache: c}
}

// LineStats returns coverage counters for one line in one channel. Returns
// models.ErrLineNotFound when the line has no planned shotpoints.
func (a *Aggregator) LineStats(ctx context.Context, line int, channel models.Channel) (*models.CoverageStat, error) {
	key := fmt.Sprintf("stats:line:%d:%s", line, channel)
	if stat, ok := a.cachedStat(key); ok {
		return stat, nil
	}

	total, err := a.db.CountLineShotpoints(ctx, line)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: line %d", models.ErrLineNotFound, line)
	}
	counts, err := a.db.GetLineCounts(ctx, line, channel)
	if err != nil {
		return nil, err
	}

	stat := buildStat(models.ScopeLine, channel, total, counts)
	stat.Line = line
	a.cache.Set(key, stat)
	return stat, nil
}

// SwathStats returns coverage counters for one swath, aggregated over the
// full length of every line the swath declares. Returns
// models.ErrSwathNotFound when the swath has no definitions; a defined swath
// whose lines are absent from the survey plan yields a zero stat instead.
func (a *Aggregator) SwathStats(ctx context.Context, swath int, channel models.Channel) (*models.CoverageStat, error) {
	key := fmt.Sprintf("stats:swath:%d:%s", swath, channel)
	if stat, ok := a.cachedStat(key); ok {
		return stat, nil
	}

	total, err := a.db.CountSwathShotpoints(ctx, swath)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		defs, err := a.db.GetSwathDefinitions(ctx, swath)
		if err != nil {
			return nil, err
		}
		if len(defs) == 0 {
			return nil, fmt.Errorf("%w: swath %d", models.ErrSwathNotFound, swath)
		}
	}

	var counts database.ChannelCounts
	if total > 0 {
		counts, err = a.db.GetSwathCounts(ctx, swath, channel)
		if err != nil {
			return nil, err
		}
	}

	stat := buildStat(models.ScopeSwath, channel, total, counts)
	stat.Swath = swath
	a.cache.Set(key, stat)
	return stat, nil
}

// ProjectStats returns coverage counters across every planned line. An empty
// survey plan yields a zero stat, not an error.
func (a *Aggregator) ProjectStats(ctx context.Context, channel models.Channel) (*models.CoverageStat, error) {
	key := fmt.Sprintf("stats:project:%s", channel)
	if stat, ok := a.cachedStat(key); ok {
		return stat, nil
	}

	total, err := a.db.CountProjectShotpoints(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := a.db.GetProjectCounts(ctx, channel)
	if err != nil {
		return nil, err
	}

	stat := buildStat(models.ScopeProject, channel, int(total), counts)
	a.cache.Set(key, stat)
	return stat, nil
}

// ProgressByType folds per-type event counts into equipment families:
// "NODES DEPLOYED" and "NODES RETRIEVED" both land on family "NODES". Marker
// types without a deploy/retrieve suffix are excluded; they record ground
// conditions, not equipment movement.
func (a *Aggregator) ProgressByType(ctx context.Context, channel models.Channel) ([]models.TypeProgress, error) {
	key := fmt.Sprintf("stats:types:%s", channel)
	if v, ok := a.cache.Get(key); ok {
		if progress, ok := v.([]models.TypeProgress); ok {
			return progress, nil
		}
	}

	counts, err := a.db.GetTypeCounts(ctx, channel)
	if err != nil {
		return nil, err
	}

	byFamily := make(map[string]*models.TypeProgress)
	for _, tc := range counts {
		var deployed, retrieved int
		switch {
		case models.IsDeployedType(tc.DeploymentType):
			deployed = tc.Count
		case models.IsRetrievedType(tc.DeploymentType):
			retrieved = tc.Count
		default:
			continue
		}

		family := models.EquipmentFamily(tc.DeploymentType)
		prog, ok := byFamily[family]
		if !ok {
			prog = &models.TypeProgress{Family: family}
			byFamily[family] = prog
		}
		prog.Deployed += deployed
		prog.Retrieved += retrieved
	}

	progress := make([]models.TypeProgress, 0, len(byFamily))
	for _, prog := range byFamily {
		prog.Outstanding = prog.Deployed - prog.Retrieved
		progress = append(progress, *prog)
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].Family < progress[j].Family })

	a.cache.Set(key, progress)
	return progress, nil
}

// UserStats returns per-user event counts for a channel, busiest first.
// limit <= 0 returns all users.
func (a *Aggregator) UserStats(ctx context.Context, channel models.Channel, limit int) ([]models.UserActivity, error) {
	key := fmt.Sprintf("stats:users:%s:%d", channel, limit)
	if v, ok := a.cache.Get(key); ok {
		if users, ok := v.([]models.UserActivity); ok {
			return users, nil
		}
	}

	users, err := a.db.GetUserActivity(ctx, channel, time.Time{})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}

	a.cache.Set(key, users)
	return users, nil
}

// RecentActivity returns the channel's newest events. Uncached: the activity
// feed must reflect a write on the very next read.
func (a *Aggregator) RecentActivity(ctx context.Context, channel models.Channel, limit int) ([]models.DeploymentEvent, error) {
	return a.db.GetRecentEvents(ctx, channel, 0, time.Time{}, limit)
}

// LineActivity returns one line's newest events. Uncached for the same
// reason as RecentActivity. An unknown line yields an empty slice.
func (a *Aggregator) LineActivity(ctx context.Context, line int, channel models.Channel, limit int) ([]models.DeploymentEvent, error) {
	return a.db.GetRecentEvents(ctx, channel, line, time.Time{}, limit)
}

// InvalidateLine drops every cached value a write to the line could have
// staled: the line's stats on all channels, the stats and gap rollups of
// each swath declaring the line, and the project-wide rollups. When the
// swath lookup fails the swath and gap caches are cleared wholesale;
// over-invalidation costs a recompute, a stale acknowledgment costs trust.
func (a *Aggregator) InvalidateLine(ctx context.Context, line int) {
	a.cache.DeletePrefix(fmt.Sprintf("stats:line:%d:", line))

	swaths, err := a.db.GetSwathsForLine(ctx, line)
	if err != nil {
		logging.Warn().Err(err).Int("line", line).Msg("Swath lookup failed during invalidation, clearing all swath rollups")
		a.cache.DeletePrefix("stats:swath:")
		a.cache.DeletePrefix("gaps:")
	} else {
		for _, swath := range swaths {
			a.cache.DeletePrefix(fmt.Sprintf("stats:swath:%d:", swath))
			a.cache.DeletePrefix(fmt.Sprintf("gaps:swath:%d:", swath))
		}
		a.cache.DeletePrefix("gaps:project:")
	}

	a.cache.DeletePrefix("stats:project:")
	a.cache.DeletePrefix("stats:types:")
	a.cache.DeletePrefix("stats:users:")
}

// InvalidateAll clears every cached rollup. Imports touch too many lines for
// per-line invalidation to be worth the bookkeeping.
func (a *Aggregator) InvalidateAll() {
	a.cache.Clear()
}

func (a *Aggregator) cachedStat(key string) (*models.CoverageStat, bool) {
	v, ok := a.cache.Get(key)
	if !ok {
		return nil, false
	}
	stat, ok := v.(*models.CoverageStat)
	return stat, ok
}

// buildStat assembles a CoverageStat from a shotpoint total and ledger
// counters. PercentComplete is rounded to two decimals for display.
func buildStat(scope string, channel models.Channel, total int, counts database.ChannelCounts) *models.CoverageStat {
	stat := &models.CoverageStat{
		Scope:            scope,
		Channel:          channel,
		TotalShotpoints:  total,
		DeployedCount:    counts.Deployed,
		RetrievedCount:   counts.Retrieved,
		CoveredCount:     counts.Covered,
		OutstandingCount: total - counts.Covered,
		GeneratedAt:      time.Now().UTC(),
	}
	if total > 0 {
		stat.PercentComplete = math.Round(float64(counts.Covered)/float64(total)*10000) / 100
	}
	return stat
}
