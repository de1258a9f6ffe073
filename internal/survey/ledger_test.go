// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package survey

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/swathline/swathline/internal/events"
	"github.com/swathline/swathline/internal/models"
)

func TestSetEventRoundtrip(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	previous, err := e.SetEvent(ctx, 5000, 100, models.ChannelGlobal, "NODES DEPLOYED", "jsmith")
	if err != nil {
		t.Fatalf("SetEvent() error = %v", err)
	}
	if previous != nil {
		t.Errorf("SetEvent() previous = %+v, want nil on first write", previous)
	}

	ev, err := e.GetEvent(ctx, 5000, 100, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if ev == nil || ev.DeploymentType != "NODES DEPLOYED" || ev.Username != "jsmith" {
		t.Fatalf("GetEvent() = %+v, want NODES DEPLOYED by jsmith", ev)
	}

	previous, err = e.SetEvent(ctx, 5000, 100, models.ChannelGlobal, "NODES RETRIEVED", "kbrown")
	if err != nil {
		t.Fatalf("SetEvent() overwrite error = %v", err)
	}
	if previous == nil || previous.DeploymentType != "NODES DEPLOYED" {
		t.Errorf("SetEvent() previous = %+v, want the overwritten NODES DEPLOYED event", previous)
	}

	ev, err = e.GetEvent(ctx, 5000, 100, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("GetEvent() after overwrite error = %v", err)
	}
	if ev.DeploymentType != "NODES RETRIEVED" || ev.Username != "kbrown" {
		t.Errorf("GetEvent() = %+v, want the later write", ev)
	}
}

func TestSetEventUnknownShotpoint(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)

	_, err := e.SetEvent(context.Background(), 5000, 999, models.ChannelGlobal, "NODES DEPLOYED", "jsmith")
	if !errors.Is(err, models.ErrUnknownShotpoint) {
		t.Errorf("SetEvent() error = %v, want ErrUnknownShotpoint", err)
	}
}

func TestSetEventValidation(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	var verr *models.ValidationError
	if _, err := e.SetEvent(ctx, 5000, 100, models.ChannelGlobal, "  ", "jsmith"); !errors.As(err, &verr) {
		t.Errorf("SetEvent() with blank type error = %v, want ValidationError", err)
	} else if verr.Field != "deployment_type" {
		t.Errorf("ValidationError.Field = %q, want deployment_type", verr.Field)
	}

	if _, err := e.SetEvent(ctx, 5000, 100, models.ChannelGlobal, "NODES DEPLOYED", ""); !errors.As(err, &verr) {
		t.Errorf("SetEvent() with blank username error = %v, want ValidationError", err)
	} else if verr.Field != "username" {
		t.Errorf("ValidationError.Field = %q, want username", verr.Field)
	}
}

func TestSetEventInvalidatesStats(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	before, err := e.LineStats(ctx, 5000, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("LineStats() error = %v", err)
	}
	if before.CoveredCount != 0 {
		t.Fatalf("LineStats() covered = %d, want 0 before any write", before.CoveredCount)
	}

	if _, err := e.SetEvent(ctx, 5000, 100, models.ChannelGlobal, "NODES DEPLOYED", "jsmith"); err != nil {
		t.Fatalf("SetEvent() error = %v", err)
	}

	after, err := e.LineStats(ctx, 5000, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("LineStats() after write error = %v", err)
	}
	if after.CoveredCount != 1 {
		t.Errorf("LineStats() covered = %d immediately after write, want 1", after.CoveredCount)
	}
}

func TestClearEvent(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	if _, err := e.SetEvent(ctx, 5000, 100, models.ChannelGlobal, "NODES DEPLOYED", "jsmith"); err != nil {
		t.Fatalf("SetEvent() error = %v", err)
	}
	if err := e.ClearEvent(ctx, 5000, 100, models.ChannelGlobal); err != nil {
		t.Fatalf("ClearEvent() error = %v", err)
	}

	ev, err := e.GetEvent(ctx, 5000, 100, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if ev != nil {
		t.Errorf("GetEvent() = %+v after clear, want nil", ev)
	}

	if err := e.ClearEvent(ctx, 5000, 100, models.ChannelGlobal); err != nil {
		t.Errorf("ClearEvent() on an empty key error = %v, want nil", err)
	}
}

// TestCoverageFixture drives the reference scenario end to end: eleven
// planned shotpoints, six covered, one five-point hole in the middle.
func TestCoverageFixture(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	rows := []models.EventRow{
		{Row: 1, Line: 5000, Shotpoint: 100, DeploymentType: "NODES DEPLOYED", Username: "jsmith"},
		{Row: 2, Line: 5000, Shotpoint: 101, DeploymentType: "NODES DEPLOYED", Username: "jsmith"},
		{Row: 3, Line: 5000, Shotpoint: 102, DeploymentType: "NODES DEPLOYED", Username: "jsmith"},
		{Row: 4, Line: 5000, Shotpoint: 108, DeploymentType: "NODES RETRIEVED", Username: "kbrown"},
		{Row: 5, Line: 5000, Shotpoint: 109, DeploymentType: "NODES RETRIEVED", Username: "kbrown"},
		{Row: 6, Line: 5000, Shotpoint: 110, DeploymentType: "NODES RETRIEVED", Username: "kbrown"},
	}
	result, err := e.BulkSetEvents(ctx, rows, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("BulkSetEvents() error = %v", err)
	}
	if result.Applied != 6 || len(result.Rejected) != 0 {
		t.Fatalf("BulkSetEvents() = %+v, want 6 applied", result)
	}

	gaps, err := e.FindGaps(ctx, 5000, models.ChannelGlobal, 1)
	if err != nil {
		t.Fatalf("FindGaps() error = %v", err)
	}
	wantGaps := []models.Gap{{Line: 5000, StartShotpoint: 103, EndShotpoint: 107, Size: 5}}
	if !reflect.DeepEqual(gaps, wantGaps) {
		t.Errorf("FindGaps() = %+v, want %+v", gaps, wantGaps)
	}

	stat, err := e.LineStats(ctx, 5000, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("LineStats() error = %v", err)
	}
	if stat.TotalShotpoints != 11 || stat.CoveredCount != 6 || stat.OutstandingCount != 5 {
		t.Errorf("LineStats() = %+v, want 11 total, 6 covered, 5 outstanding", stat)
	}
	if stat.DeployedCount != 3 || stat.RetrievedCount != 3 {
		t.Errorf("LineStats() deployed/retrieved = %d/%d, want 3/3", stat.DeployedCount, stat.RetrievedCount)
	}
	if stat.PercentComplete != 54.55 {
		t.Errorf("LineStats() percent = %v, want 54.55", stat.PercentComplete)
	}

	gapStats, err := e.ProjectGapStatistics(ctx, models.ChannelGlobal, 0)
	if err != nil {
		t.Fatalf("ProjectGapStatistics() error = %v", err)
	}
	if gapStats.TotalGaps != 1 || gapStats.TotalGapPoints != 5 {
		t.Errorf("ProjectGapStatistics() = %+v, want one five-point gap", gapStats)
	}
	if gapStats.SeverityCounts[models.SeverityLow] != 1 {
		t.Errorf("SeverityCounts = %+v, want one LOW line", gapStats.SeverityCounts)
	}
	if len(gapStats.NeedsAttention) != 1 || gapStats.NeedsAttention[0].Line != 5000 {
		t.Errorf("NeedsAttention = %+v, want line 5000", gapStats.NeedsAttention)
	}
}

func TestBulkSetEventsRejectsAndLastWins(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	rows := []models.EventRow{
		{Row: 1, Line: 5000, Shotpoint: 100, DeploymentType: "NODES DEPLOYED", Username: "jsmith"},
		{Row: 2, Line: 5000, Shotpoint: 999, DeploymentType: "NODES DEPLOYED", Username: "jsmith"},
		{Row: 3, Line: 5000, Shotpoint: 100, DeploymentType: "NODES RETRIEVED", Username: "kbrown"},
	}
	result, err := e.BulkSetEvents(ctx, rows, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("BulkSetEvents() error = %v", err)
	}

	if result.Applied != 2 {
		t.Errorf("Applied = %d, want 2 (both rows for the duplicate key count)", result.Applied)
	}
	wantRejected := []models.RejectedRow{{Row: 2, Reason: "unknown shotpoint 5000/999"}}
	if !reflect.DeepEqual(result.Rejected, wantRejected) {
		t.Errorf("Rejected = %+v, want %+v", result.Rejected, wantRejected)
	}

	ev, err := e.GetEvent(ctx, 5000, 100, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if ev == nil || ev.DeploymentType != "NODES RETRIEVED" {
		t.Errorf("GetEvent() = %+v, want the last row's NODES RETRIEVED", ev)
	}
}

func TestBulkSetEventsIdempotent(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	rows := []models.EventRow{
		{Row: 1, Line: 5000, Shotpoint: 100, DeploymentType: "NODES DEPLOYED", Username: "jsmith"},
		{Row: 2, Line: 5000, Shotpoint: 999, DeploymentType: "NODES DEPLOYED", Username: "jsmith"},
		{Row: 3, Line: 5000, Shotpoint: 103, DeploymentType: "NODES RETRIEVED", Username: "kbrown"},
	}
	first, err := e.BulkSetEvents(ctx, rows, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("BulkSetEvents() error = %v", err)
	}
	second, err := e.BulkSetEvents(ctx, rows, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("BulkSetEvents() re-run error = %v", err)
	}

	if second.Applied != first.Applied || !reflect.DeepEqual(second.Rejected, first.Rejected) {
		t.Errorf("re-run = %+v, want the same counts as the first run %+v", second, first)
	}

	for sp, wantType := range map[int]string{100: "NODES DEPLOYED", 103: "NODES RETRIEVED"} {
		ev, err := e.GetEvent(ctx, 5000, sp, models.ChannelGlobal)
		if err != nil {
			t.Fatalf("GetEvent(%d) error = %v", sp, err)
		}
		if ev == nil || ev.DeploymentType != wantType {
			t.Errorf("GetEvent(%d) = %+v, want %s after both runs", sp, ev, wantType)
		}
	}
}

func TestBulkSetEventsClearRows(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	seedFixtureEvents(t, e, models.ChannelGlobal)

	rows := []models.EventRow{
		{Row: 1, Line: 5000, Shotpoint: 100, Username: "jsmith"},
		{Row: 2, Line: 5000, Shotpoint: 101, Username: "jsmith"},
	}
	result, err := e.BulkSetEvents(ctx, rows, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("BulkSetEvents() error = %v", err)
	}
	if result.Applied != 2 {
		t.Errorf("Applied = %d, want 2", result.Applied)
	}

	for _, sp := range []int{100, 101} {
		ev, err := e.GetEvent(ctx, 5000, sp, models.ChannelGlobal)
		if err != nil {
			t.Fatalf("GetEvent(%d) error = %v", sp, err)
		}
		if ev != nil {
			t.Errorf("GetEvent(%d) = %+v after clear row, want nil", sp, ev)
		}
	}

	stat, err := e.LineStats(ctx, 5000, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("LineStats() error = %v", err)
	}
	if stat.CoveredCount != 4 {
		t.Errorf("LineStats() covered = %d, want 4 after two clears", stat.CoveredCount)
	}
}

func TestBulkSetEventsChannelIsolation(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	rows := []models.EventRow{
		{Row: 1, Line: 5000, Shotpoint: 100, DeploymentType: "NODES DEPLOYED", Username: "jsmith"},
	}
	if _, err := e.BulkSetEvents(ctx, rows, models.SwathChannel(2)); err != nil {
		t.Fatalf("BulkSetEvents() error = %v", err)
	}

	ev, err := e.GetEvent(ctx, 5000, 100, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if ev != nil {
		t.Errorf("global channel saw a swath-2 write: %+v", ev)
	}

	ev, err = e.GetEvent(ctx, 5000, 100, models.SwathChannel(2))
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if ev == nil {
		t.Error("swath-2 write not visible on swath-2 channel")
	}
}

func TestClearLineEvents(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	seedFixtureEvents(t, e, models.ChannelGlobal)

	removed, err := e.ClearLineEvents(ctx, 5000, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("ClearLineEvents() error = %v", err)
	}
	if removed != 6 {
		t.Errorf("ClearLineEvents() removed = %d, want 6", removed)
	}

	gaps, err := e.FindGaps(ctx, 5000, models.ChannelGlobal, 1)
	if err != nil {
		t.Fatalf("FindGaps() error = %v", err)
	}
	if len(gaps) != 1 || gaps[0].StartShotpoint != 100 || gaps[0].EndShotpoint != 110 || gaps[0].Size != 11 {
		t.Errorf("FindGaps() = %+v, want one whole-line gap", gaps)
	}

	removed, err = e.ClearLineEvents(ctx, 5000, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("ClearLineEvents() on an empty line error = %v", err)
	}
	if removed != 0 {
		t.Errorf("ClearLineEvents() removed = %d on an empty line, want 0", removed)
	}
}

func TestSetEventPublishesChange(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	msgs, err := e.stream.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if _, err := e.SetEvent(ctx, 5000, 104, models.SwathChannel(1), "NODES DEPLOYED", "jsmith"); err != nil {
		t.Fatalf("SetEvent() error = %v", err)
	}

	select {
	case msg := <-msgs:
		msg.Ack()
		change, err := events.ParseChange(msg)
		if err != nil {
			t.Fatalf("ParseChange() error = %v", err)
		}
		if change.Line != 5000 || change.Shotpoint != 104 || change.Channel != models.SwathChannel(1) {
			t.Errorf("change = %+v, want 5000/104 on swath-1", change)
		}
		if change.Type != "NODES DEPLOYED" || change.Username != "jsmith" || change.Cleared {
			t.Errorf("change = %+v, want NODES DEPLOYED by jsmith", change)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for deployment change")
	}
}
