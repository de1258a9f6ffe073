// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package survey

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/swathline/swathline/internal/models"
)

func TestImportSurveyPlanIdempotent(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	first, err := e.ImportSurveyPlan(ctx, strings.NewReader(planCSV()))
	if err != nil {
		t.Fatalf("ImportSurveyPlan() error = %v", err)
	}
	if first.Applied != 11 || len(first.Rejected) != 0 {
		t.Fatalf("first import = %+v, want 11 applied", first)
	}

	points, err := e.GetShotpoints(ctx, 5000)
	if err != nil {
		t.Fatalf("GetShotpoints() error = %v", err)
	}
	originalIDs := make(map[int]string, len(points))
	for _, p := range points {
		if p.PointID == "" {
			t.Fatalf("shotpoint %d has no PointID", p.Shotpoint)
		}
		originalIDs[p.Shotpoint] = p.PointID
	}

	second, err := e.ImportSurveyPlan(ctx, strings.NewReader(planCSV()))
	if err != nil {
		t.Fatalf("ImportSurveyPlan() re-run error = %v", err)
	}
	if second.Applied != first.Applied || len(second.Rejected) != 0 {
		t.Errorf("re-run = %+v, want the same counts as the first run", second)
	}

	points, err = e.GetShotpoints(ctx, 5000)
	if err != nil {
		t.Fatalf("GetShotpoints() after re-run error = %v", err)
	}
	for _, p := range points {
		if p.PointID != originalIDs[p.Shotpoint] {
			t.Errorf("shotpoint %d PointID changed on re-import: %s -> %s",
				p.Shotpoint, originalIDs[p.Shotpoint], p.PointID)
		}
	}
}

func TestImportSurveyPlanPartialFailure(t *testing.T) {
	e := setupTestEngine(t)

	input := "line,shotpoint,latitude,longitude,type\n" +
		"5000,100,58.0,6.0,Receiver\n" +
		"5000,101,95.0,6.0,Receiver\n" +
		"5000,100,58.2,6.0,Source\n" +
		"5000,102,58.1,6.0,Source\n"

	result, err := e.ImportSurveyPlan(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportSurveyPlan() error = %v", err)
	}
	if result.Applied != 2 {
		t.Errorf("Applied = %d, want 2", result.Applied)
	}
	wantRejected := []models.RejectedRow{
		{Row: 3, Reason: "Latitude must be a valid latitude (-90 to 90)"},
		{Row: 4, Reason: "duplicate shotpoint 5000/100, first defined on row 2"},
	}
	if !reflect.DeepEqual(result.Rejected, wantRejected) {
		t.Errorf("Rejected = %+v, want %+v", result.Rejected, wantRejected)
	}
	if !result.PartialFailure() {
		t.Error("PartialFailure() = false, want true")
	}
}

func TestImportDeployments(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	input := "line,shotpoint,event-type\n" +
		"5000,100,NODES DEPLOYED\n" +
		"5000,101,NODES DEPLOYED\n" +
		"5000,102,NODES DEPLOYED\n" +
		"5000,108,NODES RETRIEVED\n" +
		"5000,109,NODES RETRIEVED\n" +
		"5000,110,NODES RETRIEVED\n" +
		"5000,abc,NODES DEPLOYED\n" +
		"5000,999,NODES DEPLOYED\n"

	result, err := e.ImportDeployments(ctx, models.ChannelGlobal, strings.NewReader(input), "import")
	if err != nil {
		t.Fatalf("ImportDeployments() error = %v", err)
	}
	if result.Applied != 6 {
		t.Errorf("Applied = %d, want 6", result.Applied)
	}
	wantRejected := []models.RejectedRow{
		{Row: 8, Reason: `shotpoint "abc" is not an integer`},
		{Row: 9, Reason: "unknown shotpoint 5000/999"},
	}
	if !reflect.DeepEqual(result.Rejected, wantRejected) {
		t.Errorf("Rejected = %+v, want %+v", result.Rejected, wantRejected)
	}

	gaps, err := e.FindGaps(ctx, 5000, models.ChannelGlobal, 1)
	if err != nil {
		t.Fatalf("FindGaps() error = %v", err)
	}
	wantGaps := []models.Gap{{Line: 5000, StartShotpoint: 103, EndShotpoint: 107, Size: 5}}
	if !reflect.DeepEqual(gaps, wantGaps) {
		t.Errorf("FindGaps() = %+v, want %+v", gaps, wantGaps)
	}

	users, err := e.UserStats(ctx, models.ChannelGlobal, 0)
	if err != nil {
		t.Fatalf("UserStats() error = %v", err)
	}
	if len(users) != 1 || users[0].Username != "import" || users[0].EventCount != 6 {
		t.Errorf("UserStats() = %+v, want import with 6 events", users)
	}
}

func TestImportDeploymentsUnreadableBody(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)

	result, err := e.ImportDeployments(context.Background(), models.ChannelGlobal, failingReader{}, "import")
	if err == nil {
		t.Fatal("ImportDeployments() with unreadable body expected error")
	}
	if result != nil {
		t.Errorf("result = %+v, want nil on operation error", result)
	}
}

func TestImportAcquisition(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	input := "Line,Station,Index,FFID\n" +
		"5000,103,1,2001\n" +
		"5000,104,2,2002\n" +
		"5000,999,3,2003\n"

	result, err := e.ImportAcquisition(ctx, models.ChannelGlobal, strings.NewReader(input), "obs")
	if err != nil {
		t.Fatalf("ImportAcquisition() error = %v", err)
	}
	if result.Applied != 2 {
		t.Errorf("Applied = %d, want 2", result.Applied)
	}
	wantRejected := []models.RejectedRow{{Row: 4, Reason: "unknown shotpoint 5000/999"}}
	if !reflect.DeepEqual(result.Rejected, wantRejected) {
		t.Errorf("Rejected = %+v, want %+v", result.Rejected, wantRejected)
	}

	ev, err := e.GetEvent(ctx, 5000, 103, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if ev == nil || ev.DeploymentType != "OFFSETS" || ev.Username != "obs" {
		t.Errorf("GetEvent() = %+v, want OFFSETS by obs", ev)
	}
}

func TestImportSwathDefinitionsReplace(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	var plan strings.Builder
	plan.WriteString("line,shotpoint,latitude,longitude,type\n")
	for sp := 100; sp <= 110; sp++ {
		fmt.Fprintf(&plan, "5000,%d,58.0,6.0,Receiver\n", sp)
	}
	for sp := 100; sp <= 104; sp++ {
		fmt.Fprintf(&plan, "5001,%d,58.1,6.0,Receiver\n", sp)
	}
	if _, err := e.ImportSurveyPlan(ctx, strings.NewReader(plan.String())); err != nil {
		t.Fatalf("ImportSurveyPlan() error = %v", err)
	}

	result, err := e.ImportSwathDefinitions(ctx, 1, strings.NewReader("5000,100,110\n5001,100,104\n"))
	if err != nil {
		t.Fatalf("ImportSwathDefinitions() error = %v", err)
	}
	if result.Applied != 2 || len(result.Rejected) != 0 {
		t.Fatalf("first import = %+v, want 2 applied", result)
	}

	stat, err := e.SwathStats(ctx, 1, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("SwathStats() error = %v", err)
	}
	if stat.TotalShotpoints != 16 {
		t.Fatalf("SwathStats() total = %d, want 16 across both lines", stat.TotalShotpoints)
	}

	// Re-importing with a single line replaces the membership instead of
	// merging, and the cached rollup is dropped with it.
	result, err = e.ImportSwathDefinitions(ctx, 1, strings.NewReader("5001,100,104\n"))
	if err != nil {
		t.Fatalf("ImportSwathDefinitions() re-import error = %v", err)
	}
	if result.Applied != 1 {
		t.Fatalf("re-import = %+v, want 1 applied", result)
	}

	lines, err := e.SwathLineNumbers(ctx, 1)
	if err != nil {
		t.Fatalf("SwathLineNumbers() error = %v", err)
	}
	if !reflect.DeepEqual(lines, []int{5001}) {
		t.Errorf("SwathLineNumbers() = %v, want [5001]", lines)
	}

	stat, err = e.SwathStats(ctx, 1, models.ChannelGlobal)
	if err != nil {
		t.Fatalf("SwathStats() after replace error = %v", err)
	}
	if stat.TotalShotpoints != 5 {
		t.Errorf("SwathStats() total = %d immediately after replace, want 5", stat.TotalShotpoints)
	}
}

func TestImportSwathDefinitionsRejects(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	input := "5000,100,110\n" +
		"5000,100,999\n" +
		"5001,100,110\n"
	result, err := e.ImportSwathDefinitions(ctx, 2, strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportSwathDefinitions() error = %v", err)
	}
	if result.Applied != 1 {
		t.Errorf("Applied = %d, want 1", result.Applied)
	}
	wantRejected := []models.RejectedRow{
		{Row: 2, Reason: "last_shot 5000/999 is not in the survey plan"},
		{Row: 3, Reason: "first_shot 5001/100 is not in the survey plan"},
	}
	if !reflect.DeepEqual(result.Rejected, wantRejected) {
		t.Errorf("Rejected = %+v, want %+v", result.Rejected, wantRejected)
	}

	// Row 1 was accepted, then row 2 failed for the same line. The
	// accepted row still carries the declaration: last row wins only
	// among accepted rows.
	lines, err := e.SwathLineNumbers(ctx, 2)
	if err != nil {
		t.Fatalf("SwathLineNumbers() error = %v", err)
	}
	if !reflect.DeepEqual(lines, []int{5000}) {
		t.Errorf("SwathLineNumbers() = %v, want [5000]", lines)
	}
}

func TestImportSwathDefinitionsOutOfRange(t *testing.T) {
	e := setupTestEngine(t)
	seedPlan(t, e)
	ctx := context.Background()

	for _, swath := range []int{0, 5, 99} {
		_, err := e.ImportSwathDefinitions(ctx, swath, strings.NewReader("5000,100,110\n"))
		if !errors.Is(err, models.ErrSwathNotFound) {
			t.Errorf("ImportSwathDefinitions(%d) error = %v, want ErrSwathNotFound", swath, err)
		}
	}
}

// failingReader simulates a client that drops the connection mid-body.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}
