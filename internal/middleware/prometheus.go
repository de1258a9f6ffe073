// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/metrics"
)

// slowRequestThreshold is the latency above which a request is logged as
// slow. Every operation in the service should complete well inside it.
const slowRequestThreshold = time.Second

// Metrics records Prometheus metrics for every request: totals and latency
// per method and endpoint, plus an active-request gauge. The endpoint label
// is the matched route pattern ("/api/v1/lines/{line}/stats"), not the raw
// path, so path parameters never blow up label cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()

		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		endpoint := routePattern(r)

		metrics.RecordAPIRequest(
			r.Method,
			endpoint,
			strconv.Itoa(wrapper.statusCode),
			duration,
		)

		if duration > slowRequestThreshold {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("endpoint", endpoint).
				Int("status", wrapper.statusCode).
				Dur("duration", duration).
				Msg("Slow request")
		}
	})
}

// routePattern returns the chi route pattern matched for the request. The
// pattern is only complete after the handler ran, which is why it is read
// on the way out. Falls back to the raw path outside a chi router.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// metricsResponseWriter wraps http.ResponseWriter to capture the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
