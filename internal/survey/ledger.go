// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package survey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/swathline/swathline/internal/events"
	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/models"
)

// GetEvent returns the current event for a key, or nil when the key has
// no event in the channel.
func (e *Engine) GetEvent(ctx context.Context, line, shotpoint int, channel models.Channel) (*models.DeploymentEvent, error) {
	return e.db.GetDeploymentEvent(ctx, line, shotpoint, channel)
}

// SetEvent overwrites the current event for a key and returns the
// previous event, if any. Fails with models.ErrUnknownShotpoint when
// the key is not in the survey plan. The write commits, the affected
// rollups invalidate, and then the change publishes; only the publish
// is best effort.
func (e *Engine) SetEvent(ctx context.Context, line, shotpoint int, channel models.Channel, deploymentType, username string) (*models.DeploymentEvent, error) {
	deploymentType = strings.TrimSpace(deploymentType)
	if deploymentType == "" {
		return nil, models.NewValidationError("deployment_type", "must not be empty")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewValidationError("username", "must not be empty")
	}

	point, err := e.db.GetShotpoint(ctx, line, shotpoint)
	if err != nil {
		return nil, err
	}
	if point == nil {
		return nil, fmt.Errorf("%w: %d/%d", models.ErrUnknownShotpoint, line, shotpoint)
	}

	ev := &models.DeploymentEvent{
		Line:           line,
		Shotpoint:      shotpoint,
		Channel:        channel,
		DeploymentType: deploymentType,
		Username:       username,
		EventTime:      time.Now().UTC(),
	}
	previous, err := e.db.UpsertDeploymentEvent(ctx, ev)
	if err != nil {
		return nil, err
	}

	e.stats.InvalidateLine(ctx, line)
	e.publishChange(events.DeploymentChange{
		Line:      line,
		Shotpoint: shotpoint,
		Channel:   channel,
		Type:      deploymentType,
		Username:  username,
		ChangedAt: ev.EventTime,
	})
	return previous, nil
}

// ClearEvent removes the current event for a key. Clearing a key with
// no event is a no-op with no side effects, not an error.
func (e *Engine) ClearEvent(ctx context.Context, line, shotpoint int, channel models.Channel) error {
	existed, err := e.db.DeleteDeploymentEvent(ctx, line, shotpoint, channel)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}

	e.stats.InvalidateLine(ctx, line)
	e.publishChange(events.DeploymentChange{
		Line:      line,
		Shotpoint: shotpoint,
		Channel:   channel,
		Cleared:   true,
		ChangedAt: time.Now().UTC(),
	})
	return nil
}

// BulkSetEvents applies parsed event rows to one channel. Rows keyed to
// shotpoints outside the survey plan are rejected per row; the rest
// reduce to a single storage batch with the last row per key winning,
// matching file order. A row with a blank type clears its key. Applied
// counts accepted input rows rather than distinct keys, so re-running
// the same file reports the same numbers.
func (e *Engine) BulkSetEvents(ctx context.Context, rows []models.EventRow, channel models.Channel) (*models.ImportResult, error) {
	result := &models.ImportResult{Rejected: []models.RejectedRow{}}
	if len(rows) == 0 {
		return result, nil
	}

	lines := make([]int, 0, 8)
	seenLines := make(map[int]struct{})
	for _, row := range rows {
		if _, ok := seenLines[row.Line]; !ok {
			seenLines[row.Line] = struct{}{}
			lines = append(lines, row.Line)
		}
	}
	known, err := e.db.GetShotpointKeysForLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	order := make([]models.ShotpointKey, 0, len(rows))
	latest := make(map[models.ShotpointKey]models.EventRow, len(rows))
	for _, row := range rows {
		key := models.ShotpointKey{Line: row.Line, Shotpoint: row.Shotpoint}
		if _, ok := known[key]; !ok {
			result.Reject(row.Row, fmt.Sprintf("unknown shotpoint %s", key))
			continue
		}
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = row
		result.Applied++
	}
	if len(order) == 0 {
		return result, nil
	}

	now := time.Now().UTC()
	sets := make([]models.DeploymentEvent, 0, len(order))
	var clears []models.ShotpointKey
	for _, key := range order {
		row := latest[key]
		if row.DeploymentType == "" {
			clears = append(clears, key)
			continue
		}
		sets = append(sets, models.DeploymentEvent{
			Line:           key.Line,
			Shotpoint:      key.Shotpoint,
			Channel:        channel,
			DeploymentType: row.DeploymentType,
			Username:       row.Username,
			EventTime:      now,
		})
	}
	if err := e.db.BulkApplyDeploymentEvents(ctx, sets, clears, channel); err != nil {
		return nil, err
	}

	changed := make(map[int]struct{})
	for _, key := range order {
		changed[key.Line] = struct{}{}
	}
	for line := range changed {
		e.stats.InvalidateLine(ctx, line)
	}

	for i := range sets {
		e.publishChange(events.DeploymentChange{
			Line:      sets[i].Line,
			Shotpoint: sets[i].Shotpoint,
			Channel:   channel,
			Type:      sets[i].DeploymentType,
			Username:  sets[i].Username,
			ChangedAt: now,
		})
	}
	for _, key := range clears {
		e.publishChange(events.DeploymentChange{
			Line:      key.Line,
			Shotpoint: key.Shotpoint,
			Channel:   channel,
			Cleared:   true,
			ChangedAt: now,
		})
	}
	return result, nil
}

// ClearLineEvents removes every event on a line in one channel and
// returns the removed count. Administrative reset for re-shooting a
// line.
func (e *Engine) ClearLineEvents(ctx context.Context, line int, channel models.Channel) (int64, error) {
	current, err := e.db.GetLineDeployments(ctx, line, channel)
	if err != nil {
		return 0, err
	}
	removed, err := e.db.ClearLineDeployments(ctx, line, channel)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}

	e.stats.InvalidateLine(ctx, line)
	now := time.Now().UTC()
	for i := range current {
		e.publishChange(events.DeploymentChange{
			Line:      current[i].Line,
			Shotpoint: current[i].Shotpoint,
			Channel:   channel,
			Cleared:   true,
			ChangedAt: now,
		})
	}
	return removed, nil
}

// publishChange emits a deployment change on the event stream. The
// write has already committed and invalidated when this runs, so a
// publish failure is logged and swallowed; the stream only feeds cache
// re-warming.
func (e *Engine) publishChange(change events.DeploymentChange) {
	if e.stream == nil {
		return
	}
	if err := e.stream.PublishChange(change); err != nil {
		logging.Warn().
			Err(err).
			Int("line", change.Line).
			Int("shotpoint", change.Shotpoint).
			Str("channel", change.Channel.String()).
			Msg("Deployment change publish failed")
	}
}
