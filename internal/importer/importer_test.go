// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package importer

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/models"
)

func TestParseDeployments(t *testing.T) {
	input := "line,shotpoint,event-type\n" +
		"5000,100,NODES DEPLOYED\n" +
		" 5000 , 101 ,NODES DEPLOYED\n" +
		"5000,102,\n" +
		"5000,103\n"

	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseDeployments(strings.NewReader(input), "jsmith")
	if err != nil {
		t.Fatalf("ParseDeployments() error: %v", err)
	}
	if len(rejected) != 0 {
		t.Fatalf("rejected = %+v, want none", rejected)
	}

	want := []models.EventRow{
		{Row: 2, Line: 5000, Shotpoint: 100, DeploymentType: "NODES DEPLOYED", Username: "jsmith"},
		{Row: 3, Line: 5000, Shotpoint: 101, DeploymentType: "NODES DEPLOYED", Username: "jsmith"},
		{Row: 4, Line: 5000, Shotpoint: 102, DeploymentType: "", Username: "jsmith"},
		{Row: 5, Line: 5000, Shotpoint: 103, DeploymentType: "", Username: "jsmith"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestParseDeploymentsHeaderless(t *testing.T) {
	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseDeployments(
		strings.NewReader("5000,100,NODES DEPLOYED\n"), "jsmith")
	if err != nil {
		t.Fatalf("ParseDeployments() error: %v", err)
	}
	if len(rejected) != 0 {
		t.Fatalf("rejected = %+v, want none", rejected)
	}
	if len(rows) != 1 || rows[0].Row != 1 || rows[0].Shotpoint != 100 {
		t.Errorf("rows = %+v, want one row numbered 1", rows)
	}
}

func TestParseDeploymentsRejects(t *testing.T) {
	input := "line,shotpoint,event-type\n" +
		"bad,100,X\n" +
		"5000,bad,X\n" +
		"5000,100,X,extra\n" +
		"5000\n" +
		"5000,101,NODES DEPLOYED\n"

	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseDeployments(strings.NewReader(input), "jsmith")
	if err != nil {
		t.Fatalf("ParseDeployments() error: %v", err)
	}

	if len(rows) != 1 || rows[0].Row != 6 {
		t.Errorf("rows = %+v, want only row 6", rows)
	}

	wantRejected := []models.RejectedRow{
		{Row: 2, Reason: `line "bad" is not an integer`},
		{Row: 3, Reason: `shotpoint "bad" is not an integer`},
		{Row: 4, Reason: "expected line,shotpoint,event-type"},
		{Row: 5, Reason: "expected line,shotpoint,event-type"},
	}
	if !reflect.DeepEqual(rejected, wantRejected) {
		t.Errorf("rejected = %+v, want %+v", rejected, wantRejected)
	}
}

func TestParseDeploymentsMalformedRecord(t *testing.T) {
	input := "5000,100,NODES DEPLOYED\n" +
		"5000,101,NO\"DES\n" +
		"5000,102,NODES DEPLOYED\n"

	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseDeployments(strings.NewReader(input), "jsmith")
	if err != nil {
		t.Fatalf("ParseDeployments() error: %v", err)
	}

	if len(rows) != 2 || rows[0].Shotpoint != 100 || rows[1].Shotpoint != 102 {
		t.Errorf("rows = %+v, want shotpoints 100 and 102", rows)
	}
	if len(rejected) != 1 || rejected[0].Row != 2 {
		t.Fatalf("rejected = %+v, want one rejection on row 2", rejected)
	}
	if !strings.HasPrefix(rejected[0].Reason, "malformed CSV record") {
		t.Errorf("reason = %q, want malformed CSV record prefix", rejected[0].Reason)
	}
}

func TestParseDeploymentsEmptyAndBlank(t *testing.T) {
	im := New(config.ImportConfig{})

	rows, rejected, err := im.ParseDeployments(strings.NewReader(""), "jsmith")
	if err != nil || len(rows) != 0 || len(rejected) != 0 {
		t.Errorf("empty input: rows=%v rejected=%v err=%v, want all empty", rows, rejected, err)
	}

	input := "5000,100,NODES DEPLOYED\n" +
		",,\n" +
		"\n" +
		"5000,101,NODES DEPLOYED\n"
	rows, rejected, err = im.ParseDeployments(strings.NewReader(input), "jsmith")
	if err != nil {
		t.Fatalf("ParseDeployments() error: %v", err)
	}
	if len(rejected) != 0 {
		t.Errorf("rejected = %+v, want none", rejected)
	}
	// The empty line is invisible to the reader; the all-blank record is
	// counted but skipped.
	if len(rows) != 2 || rows[0].Row != 1 || rows[1].Row != 3 {
		t.Errorf("rows = %+v, want rows 1 and 3", rows)
	}
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) {
	return 0, f.err
}

func TestParseDeploymentsUnreadableBody(t *testing.T) {
	im := New(config.ImportConfig{})
	r := io.MultiReader(
		strings.NewReader("5000,100,NODES DEPLOYED\n"),
		failingReader{err: errors.New("stream reset")},
	)

	rows, rejected, err := im.ParseDeployments(r, "jsmith")
	if err == nil {
		t.Fatal("ParseDeployments() = nil error, want read failure")
	}
	if rows != nil || rejected != nil {
		t.Errorf("rows = %v, rejected = %v, want nil on read failure", rows, rejected)
	}
}

func TestParseDeploymentsRowCap(t *testing.T) {
	im := New(config.ImportConfig{MaxRows: 2})
	input := "5000,100,X\n5000,101,X\n5000,102,X\n"

	_, _, err := im.ParseDeployments(strings.NewReader(input), "jsmith")
	if !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("ParseDeployments() error = %v, want ErrTooManyRows", err)
	}

	under := "5000,100,X\n5000,101,X\n"
	rows, rejected, err := im.ParseDeployments(strings.NewReader(under), "jsmith")
	if err != nil || len(rejected) != 0 || len(rows) != 2 {
		t.Errorf("rows=%v rejected=%v err=%v, want two clean rows", rows, rejected, err)
	}
}

func TestParseAcquisition(t *testing.T) {
	input := "Line,Station,Index,FFID\n" +
		"5000,108,1,2001\n" +
		"5000,109,2,2002\n" +
		"6000,50,3,2003\n"

	im := New(config.ImportConfig{AcquiredType: "OFFSETS"})
	rows, rejected, err := im.ParseAcquisition(strings.NewReader(input), "kbrown")
	if err != nil {
		t.Fatalf("ParseAcquisition() error: %v", err)
	}
	if len(rejected) != 0 {
		t.Fatalf("rejected = %+v, want none", rejected)
	}

	want := []models.EventRow{
		{Row: 2, Line: 5000, Shotpoint: 108, DeploymentType: "OFFSETS", Username: "kbrown"},
		{Row: 3, Line: 5000, Shotpoint: 109, DeploymentType: "OFFSETS", Username: "kbrown"},
		{Row: 4, Line: 6000, Shotpoint: 50, DeploymentType: "OFFSETS", Username: "kbrown"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestParseAcquisitionCustomType(t *testing.T) {
	im := New(config.ImportConfig{AcquiredType: "SHOT OFFSETS"})
	rows, _, err := im.ParseAcquisition(strings.NewReader("5000,108\n"), "kbrown")
	if err != nil {
		t.Fatalf("ParseAcquisition() error: %v", err)
	}
	if len(rows) != 1 || rows[0].DeploymentType != "SHOT OFFSETS" {
		t.Errorf("rows = %+v, want one SHOT OFFSETS row", rows)
	}
}

func TestParseAcquisitionRejects(t *testing.T) {
	input := "5000,108\n" +
		"abc,109\n" +
		"6000\n"

	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseAcquisition(strings.NewReader(input), "kbrown")
	if err != nil {
		t.Fatalf("ParseAcquisition() error: %v", err)
	}
	if len(rows) != 1 || rows[0].Row != 1 {
		t.Errorf("rows = %+v, want only row 1", rows)
	}

	wantRejected := []models.RejectedRow{
		{Row: 2, Reason: `Line "abc" is not an integer`},
		{Row: 3, Reason: "expected Line,Station leading columns"},
	}
	if !reflect.DeepEqual(rejected, wantRejected) {
		t.Errorf("rejected = %+v, want %+v", rejected, wantRejected)
	}
}

func TestNewFallbackAcquiredType(t *testing.T) {
	if got := New(config.ImportConfig{}).AcquiredType(); got != "OFFSETS" {
		t.Errorf("AcquiredType() = %q, want OFFSETS", got)
	}
	if got := New(config.ImportConfig{AcquiredType: "  "}).AcquiredType(); got != "OFFSETS" {
		t.Errorf("AcquiredType() = %q, want OFFSETS for blank config", got)
	}
	if got := New(config.ImportConfig{AcquiredType: "SHOT"}).AcquiredType(); got != "SHOT" {
		t.Errorf("AcquiredType() = %q, want SHOT", got)
	}
}

func TestParseSurveyPlan(t *testing.T) {
	input := "line,shotpoint,latitude,longitude,type\n" +
		"5000,100,58.0,6.0,Receiver\n" +
		"5000,101,58.001,6.0005,Source/Receiver\n" +
		"6000,50,-33.9,151.2,Source\n"

	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseSurveyPlan(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSurveyPlan() error: %v", err)
	}
	if len(rejected) != 0 {
		t.Fatalf("rejected = %+v, want none", rejected)
	}

	want := []models.SurveyPlanRow{
		{Row: 2, Line: 5000, Shotpoint: 100, Latitude: 58.0, Longitude: 6.0, PointType: "Receiver"},
		{Row: 3, Line: 5000, Shotpoint: 101, Latitude: 58.001, Longitude: 6.0005, PointType: "Source/Receiver"},
		{Row: 4, Line: 6000, Shotpoint: 50, Latitude: -33.9, Longitude: 151.2, PointType: "Source"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestParseSurveyPlanRejects(t *testing.T) {
	input := "line,shotpoint,latitude,longitude,type\n" +
		"5000,100,91.5,6.0,Receiver\n" +
		"5000,101,58.0,-181.0,Receiver\n" +
		"5000,102,abc,6.0,Receiver\n" +
		"5000,103,58.0,6.0,Node\n" +
		"5000,104,58.0,6.0\n" +
		"5000,105,58.0,6.0,Receiver\n"

	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseSurveyPlan(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSurveyPlan() error: %v", err)
	}

	if len(rows) != 1 || rows[0].Row != 7 || rows[0].Shotpoint != 105 {
		t.Errorf("rows = %+v, want only row 7", rows)
	}

	wantRejected := []models.RejectedRow{
		{Row: 2, Reason: "Latitude must be a valid latitude (-90 to 90)"},
		{Row: 3, Reason: "Longitude must be a valid longitude (-180 to 180)"},
		{Row: 4, Reason: `latitude "abc" is not a number`},
		{Row: 5, Reason: "PointType must be one of: Receiver Source Source/Receiver"},
		{Row: 6, Reason: "expected line,shotpoint,latitude,longitude,type"},
	}
	if !reflect.DeepEqual(rejected, wantRejected) {
		t.Errorf("rejected = %+v, want %+v", rejected, wantRejected)
	}
}

func TestParseSurveyPlanDuplicateShotpoint(t *testing.T) {
	input := "5000,100,58.0,6.0,Receiver\n" +
		"5000,101,58.1,6.0,Receiver\n" +
		"5000,100,58.2,6.0,Source\n" +
		"5001,100,58.3,6.0,Receiver\n"

	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseSurveyPlan(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSurveyPlan() error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows = %+v, want 3 accepted rows", rows)
	}
	if rows[0].Latitude != 58.0 {
		t.Errorf("first occurrence latitude = %v, want the row 1 value 58.0", rows[0].Latitude)
	}
	if rows[2].Line != 5001 {
		t.Errorf("rows[2].Line = %d, want 5001 (same shotpoint on another line is not a duplicate)", rows[2].Line)
	}

	wantRejected := []models.RejectedRow{
		{Row: 3, Reason: "duplicate shotpoint 5000/100, first defined on row 1"},
	}
	if !reflect.DeepEqual(rejected, wantRejected) {
		t.Errorf("rejected = %+v, want %+v", rejected, wantRejected)
	}
}

func TestParseSurveyPlanByteOrderMark(t *testing.T) {
	im := New(config.ImportConfig{})

	withHeader := "\ufeffline,shotpoint,latitude,longitude,type\n" +
		"5000,100,58.0,6.0,Receiver\n"
	rows, rejected, err := im.ParseSurveyPlan(strings.NewReader(withHeader))
	if err != nil || len(rejected) != 0 || len(rows) != 1 {
		t.Errorf("BOM+header: rows=%v rejected=%v err=%v, want one row", rows, rejected, err)
	}

	headerless := "\ufeff5000,100,58.0,6.0,Receiver\n"
	rows, rejected, err = im.ParseSurveyPlan(strings.NewReader(headerless))
	if err != nil || len(rejected) != 0 {
		t.Fatalf("BOM headerless: rejected=%v err=%v, want clean parse", rejected, err)
	}
	if len(rows) != 1 || rows[0].Row != 1 || rows[0].Line != 5000 {
		t.Errorf("rows = %+v, want row 1 for line 5000", rows)
	}
}

func TestParseSwathDefinitions(t *testing.T) {
	input := "5000,100,110\n" +
		"5001,100,110\n" +
		"5002,110,100\n"

	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseSwathDefinitions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSwathDefinitions() error: %v", err)
	}
	if len(rejected) != 0 {
		t.Fatalf("rejected = %+v, want none", rejected)
	}

	want := []models.SwathDefinitionRow{
		{Row: 1, Line: 5000, FirstShot: 100, LastShot: 110},
		{Row: 2, Line: 5001, FirstShot: 100, LastShot: 110},
		{Row: 3, Line: 5002, FirstShot: 110, LastShot: 100},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestParseSwathDefinitionsHeaderTolerated(t *testing.T) {
	input := "line,first_shot,last_shot\n" +
		"5000,100,110\n"

	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseSwathDefinitions(strings.NewReader(input))
	if err != nil || len(rejected) != 0 {
		t.Fatalf("rejected=%v err=%v, want clean parse", rejected, err)
	}
	if len(rows) != 1 || rows[0].Row != 2 || rows[0].Line != 5000 {
		t.Errorf("rows = %+v, want row 2 for line 5000", rows)
	}
}

func TestParseSwathDefinitionsRejects(t *testing.T) {
	// Row 1 starts with an integer, so it is data with a missing column,
	// not a tolerated header.
	input := "5000,100\n" +
		"5001,abc,110\n" +
		"5002,100,110\n"

	im := New(config.ImportConfig{})
	rows, rejected, err := im.ParseSwathDefinitions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSwathDefinitions() error: %v", err)
	}
	if len(rows) != 1 || rows[0].Line != 5002 {
		t.Errorf("rows = %+v, want only line 5002", rows)
	}

	wantRejected := []models.RejectedRow{
		{Row: 1, Reason: "expected line,first_shot,last_shot"},
		{Row: 2, Reason: `first_shot "abc" is not an integer`},
	}
	if !reflect.DeepEqual(rejected, wantRejected) {
		t.Errorf("rejected = %+v, want %+v", rejected, wantRejected)
	}
}
