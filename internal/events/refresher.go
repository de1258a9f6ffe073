// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/time/rate"

	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/metrics"
	"github.com/swathline/swathline/internal/models"
)

const (
	defaultRefreshPerSecond = 2.0

	// defaultLinger is how long the refresher keeps collecting after the
	// first change of a batch, so a drag-fill or import burst collapses
	// into one recompute per scope instead of one per shotpoint.
	defaultLinger = 100 * time.Millisecond
)

// StatsWarmer recomputes coverage rollups for a scope, repopulating the
// stats cache as a side effect. *survey.Engine satisfies it.
type StatsWarmer interface {
	LineStats(ctx context.Context, line int, channel models.Channel) (*models.CoverageStat, error)
	SwathStats(ctx context.Context, swath int, channel models.Channel) (*models.CoverageStat, error)
	ProjectStats(ctx context.Context, channel models.Channel) (*models.CoverageStat, error)
	SwathsForLine(ctx context.Context, line int) ([]int, error)
}

// refreshKey identifies one dirty stats scope. Changes to the same line
// and channel coalesce regardless of shotpoint.
type refreshKey struct {
	line    int
	channel models.Channel
}

// Refresher re-warms coverage stats after ledger writes. It subscribes
// to the deployment change stream, coalesces bursts into distinct
// (line, channel) scopes, and recomputes each scope's line, swath, and
// project rollups under a rate limit so imports cannot stampede the
// database. Correctness never depends on it; the synchronous
// invalidation in the write path already dropped the stale entries.
type Refresher struct {
	stream  *Publisher
	warmer  StatsWarmer
	limiter *rate.Limiter
	linger  time.Duration
}

// NewRefresher creates a stats refresher over the change stream.
func NewRefresher(stream *Publisher, warmer StatsWarmer, cfg config.EventsConfig) *Refresher {
	perSecond := cfg.RefreshPerSecond
	if perSecond <= 0 {
		perSecond = defaultRefreshPerSecond
	}
	return &Refresher{
		stream:  stream,
		warmer:  warmer,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		linger:  defaultLinger,
	}
}

// Run subscribes and consumes until ctx is cancelled or the publisher
// closes. It returns ctx.Err() on cancellation and nil when the stream
// closes, which lets a supervisor treat both as clean shutdown.
func (r *Refresher) Run(ctx context.Context) error {
	msgs, err := r.stream.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicDeploymentsChanged, err)
	}

	logging.Info().
		Float64("refresh_per_second", float64(r.limiter.Limit())).
		Msg("Stats refresher started")

	return r.loop(ctx, msgs)
}

func (r *Refresher) loop(ctx context.Context, msgs <-chan *message.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				logging.Info().Msg("Change stream closed, stats refresher stopping")
				return nil
			}
			batch := r.gather(ctx, msg, msgs)
			if err := r.warm(ctx, batch); err != nil {
				return err
			}
		}
	}
}

// gather folds the first message and any burst arriving within the
// linger window into a set of dirty scopes. Every message is acked;
// malformed payloads are counted and dropped.
func (r *Refresher) gather(ctx context.Context, first *message.Message, msgs <-chan *message.Message) map[refreshKey]struct{} {
	batch := make(map[refreshKey]struct{})
	r.consume(first, batch)

	deadline := time.NewTimer(r.linger)
	defer deadline.Stop()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return batch
			}
			r.consume(msg, batch)
		case <-deadline.C:
			return batch
		case <-ctx.Done():
			return batch
		}
	}
}

func (r *Refresher) consume(msg *message.Message, batch map[refreshKey]struct{}) {
	defer msg.Ack()

	change, err := ParseChange(msg)
	if err != nil {
		metrics.RecordChangeParseFailure()
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed deployment change")
		return
	}
	metrics.RecordChangeConsumed()
	batch[refreshKey{line: change.Line, channel: change.Channel}] = struct{}{}
}

// warm recomputes the rollups each dirty scope feeds. A failed
// recompute is logged and skipped. The returned error is only ever the
// context's, from waiting on the limiter.
func (r *Refresher) warm(ctx context.Context, batch map[refreshKey]struct{}) error {
	remaining := len(batch)
	metrics.UpdateRefreshBacklog(remaining)
	defer metrics.UpdateRefreshBacklog(0)

	channels := make(map[models.Channel]struct{})
	for key := range batch {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		start := time.Now()
		r.warmScope(ctx, key)
		metrics.RecordStatsRefresh(time.Since(start))

		channels[key.channel] = struct{}{}
		remaining--
		metrics.UpdateRefreshBacklog(remaining)
	}

	// One project rollup per distinct channel, not per scope.
	for channel := range channels {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		start := time.Now()
		if _, err := r.warmer.ProjectStats(ctx, channel); err != nil {
			logging.Warn().Err(err).
				Str("channel", channel.String()).
				Msg("Project stats refresh failed")
		}
		metrics.RecordStatsRefresh(time.Since(start))
	}
	return nil
}

// warmScope recomputes one line's stats plus the rollups of every swath
// that declares the line.
func (r *Refresher) warmScope(ctx context.Context, key refreshKey) {
	if _, err := r.warmer.LineStats(ctx, key.line, key.channel); err != nil {
		logging.Warn().Err(err).
			Int("line", key.line).
			Str("channel", key.channel.String()).
			Msg("Line stats refresh failed")
		return
	}

	swaths, err := r.warmer.SwathsForLine(ctx, key.line)
	if err != nil {
		logging.Warn().Err(err).
			Int("line", key.line).
			Msg("Swath lookup failed during stats refresh")
		return
	}
	for _, swath := range swaths {
		if _, err := r.warmer.SwathStats(ctx, swath, key.channel); err != nil {
			logging.Warn().Err(err).
				Int("swath", swath).
				Str("channel", key.channel.String()).
				Msg("Swath stats refresh failed")
		}
	}
}
