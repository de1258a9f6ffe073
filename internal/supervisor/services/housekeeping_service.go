// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/swathline/swathline/internal/cache"
	"github.com/swathline/swathline/internal/metrics"
)

const defaultHousekeepingInterval = 15 * time.Second

// CacheStatsSource reports the stats cache counters. *survey.Engine
// satisfies it.
type CacheStatsSource interface {
	CacheStats() cache.Stats
}

// PoolStatsSource reports database connection pool counters.
// *database.DB satisfies it.
type PoolStatsSource interface {
	PoolStats() sql.DBStats
}

// HousekeepingService mirrors cache and pool counters into the
// Prometheus gauges on a ticker and keeps the uptime gauge current.
// Sampling on an interval keeps gauge writes off the request paths.
type HousekeepingService struct {
	cache    CacheStatsSource
	pool     PoolStatsSource
	interval time.Duration
	start    time.Time
	name     string
}

// NewHousekeepingService builds the gauge sampling loop. A non-positive
// interval falls back to 15s.
func NewHousekeepingService(cache CacheStatsSource, pool PoolStatsSource, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = defaultHousekeepingInterval
	}
	return &HousekeepingService{
		cache:    cache,
		pool:     pool,
		interval: interval,
		start:    time.Now(),
		name:     "housekeeping",
	}
}

// Serve implements suture.Service. It samples once immediately so the
// gauges are populated right after startup, then on every tick.
func (h *HousekeepingService) Serve(ctx context.Context) error {
	h.collect()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.collect()
		}
	}
}

func (h *HousekeepingService) collect() {
	s := h.cache.CacheStats()
	metrics.UpdateCacheGauges(s.Hits, s.Misses, s.Evictions, s.TotalKeys)

	ps := h.pool.PoolStats()
	metrics.UpdateDBPoolGauges(ps.InUse, ps.Idle)

	metrics.UpdateUptime(h.start)
}

// String implements fmt.Stringer; suture uses it in log events.
func (h *HousekeepingService) String() string {
	return h.name
}
