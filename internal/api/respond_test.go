// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
)

func TestWeakETagFormat(t *testing.T) {
	tag := weakETag([]byte(`{"lines":[5000]}`))
	if matched, _ := regexp.MatchString(`^W/"[0-9a-f]{8}"$`, tag); !matched {
		t.Errorf("weakETag = %q, want W/\"xxxxxxxx\" hex form", tag)
	}

	if weakETag([]byte("a")) == weakETag([]byte("b")) {
		t.Error("different payloads produced the same tag")
	}
	if weakETag([]byte("same")) != weakETag([]byte("same")) {
		t.Error("identical payloads produced different tags")
	}
}

func TestETagMatches(t *testing.T) {
	tests := []struct {
		name        string
		ifNoneMatch string
		etag        string
		want        bool
	}{
		{"empty header", "", `W/"cafe0042"`, false},
		{"star", "*", `W/"cafe0042"`, true},
		{"exact weak", `W/"cafe0042"`, `W/"cafe0042"`, true},
		{"strong form matches weak", `"cafe0042"`, `W/"cafe0042"`, true},
		{"mismatch", `W/"deadbeef"`, `W/"cafe0042"`, false},
		{"list with match", `W/"deadbeef", W/"cafe0042"`, `W/"cafe0042"`, true},
		{"list without match", `W/"deadbeef", W/"00000000"`, `W/"cafe0042"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := etagMatches(tt.ifNoneMatch, tt.etag); got != tt.want {
				t.Errorf("etagMatches(%q, %q) = %v, want %v", tt.ifNoneMatch, tt.etag, got, tt.want)
			}
		})
	}
}

func TestConditionalGet(t *testing.T) {
	ts := setupTestServer(t)
	seedPlan(t, ts)

	rec := doRequest(t, ts, http.MethodGet, "/api/v1/coordinates/lines", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header on GET response")
	}

	// Replaying with If-None-Match yields 304 and no body.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/coordinates/lines", nil)
	req.Header.Set("If-None-Match", etag)
	rec2 := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec2, req)

	if rec2.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304\nbody: %s", rec2.Code, rec2.Body.String())
	}
	if rec2.Body.Len() != 0 {
		t.Errorf("304 body = %q, want empty", rec2.Body.String())
	}
	if got := rec2.Header().Get("ETag"); got != etag {
		t.Errorf("304 ETag = %q, want %q", got, etag)
	}
}

func TestConditionalGetChangesWithData(t *testing.T) {
	ts := setupTestServer(t)
	seedPlan(t, ts)

	rec := doRequest(t, ts, http.MethodGet, "/api/v1/deployments/global/5000/105", nil)
	etag := rec.Header().Get("ETag")

	// A write changes the payload; the stale tag no longer matches.
	body := `{"deployment_type":"NODES DEPLOYED","username":"jsmith"}`
	doRequest(t, ts, http.MethodPut, "/api/v1/deployments/global/5000/105", strings.NewReader(body))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deployments/global/5000/105", nil)
	req.Header.Set("If-None-Match", etag)
	rec2 := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec2, req)

	if rec2.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 after payload change", rec2.Code)
	}
	if got := rec2.Header().Get("ETag"); got == etag {
		t.Error("ETag unchanged after the payload changed")
	}
}

func TestErrorEnvelopeCarriesRequestID(t *testing.T) {
	ts := setupTestServer(t)
	seedPlan(t, ts)

	rec := doRequest(t, ts, http.MethodGet, "/api/v1/coordinates/lines/9999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	env := decodeEnvelope(t, rec, "error")
	if env.Metadata.RequestID == "" {
		t.Error("expected request ID in error metadata")
	}
	if env.Metadata.RequestID != rec.Header().Get("X-Request-ID") {
		t.Errorf("metadata request_id = %q, header = %q, want equal",
			env.Metadata.RequestID, rec.Header().Get("X-Request-ID"))
	}
}

func TestValidationEnvelopeDetails(t *testing.T) {
	ts := setupTestServer(t)

	rec := doRequest(t, ts, http.MethodGet, "/api/v1/coordinates/lines/notanumber", nil)
	env := decodeEnvelope(t, rec, "error")

	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
	if env.Error.Details["field"] != "line" {
		t.Errorf("details.field = %v, want line", env.Error.Details["field"])
	}
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain/path", "plain/path"},
		{"with\nnewline", `with\x0anewline`},
		{"with\rreturn", `with\x0dreturn`},
		{"tab\there", `tab\x09here`},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
