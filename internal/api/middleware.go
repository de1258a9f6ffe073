// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/metrics"
)

// RateLimitConfig defines one endpoint class's per-IP budget.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Endpoint-class budgets. Reads come from the map dashboard, which
// polls several endpoints per refresh, so the read budget is set in
// the config (api.rate_limit_per_minute) and defaults high. Writes are
// interactive single-key saves; imports move whole files and get the
// tightest budget.
var (
	rateLimitWrite  = RateLimitConfig{Requests: 120, Window: time.Minute}
	rateLimitImport = RateLimitConfig{Requests: 10, Window: time.Minute}
	rateLimitHealth = RateLimitConfig{Requests: 300, Window: time.Minute}
)

// Middleware builds the cross-cutting wrappers the router mounts:
// CORS from the configured origins and per-IP rate limiting per
// endpoint class.
type Middleware struct {
	cors      func(http.Handler) http.Handler
	readLimit RateLimitConfig
}

// NewMiddleware constructs the factory from the API config.
func NewMiddleware(cfg config.APIConfig) *Middleware {
	readRequests := cfg.RateLimitPerMinute
	if readRequests < 1 {
		readRequests = 600
	}

	return &Middleware{
		cors: cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "If-None-Match", "X-Request-ID"},
			ExposedHeaders: []string{"ETag", "X-Request-ID"},
			MaxAge:         86400,
		}),
		readLimit: RateLimitConfig{Requests: readRequests, Window: time.Minute},
	}
}

// CORS returns the configured go-chi/cors handler.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimitRead limits query endpoints (stats, gaps, geometry, ledger
// reads).
func (m *Middleware) RateLimitRead() func(http.Handler) http.Handler {
	return rateLimit("read", m.readLimit)
}

// RateLimitWrite limits ledger write endpoints.
func (m *Middleware) RateLimitWrite() func(http.Handler) http.Handler {
	return rateLimit("write", rateLimitWrite)
}

// RateLimitImport limits CSV bulk load endpoints.
func (m *Middleware) RateLimitImport() func(http.Handler) http.Handler {
	return rateLimit("import", rateLimitImport)
}

// RateLimitHealth limits the health endpoint enough to shrug off abuse
// without starving monitoring probes.
func (m *Middleware) RateLimitHealth() func(http.Handler) http.Handler {
	return rateLimit("health", rateLimitHealth)
}

// rateLimit builds a per-IP httprate limiter that counts rejections per
// endpoint class and answers them with the standard envelope.
func rateLimit(class string, cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimitHit(class)
			respondError(w, r, http.StatusTooManyRequests, codeRateLimit, "rate limit exceeded, retry later")
		}),
	)
}

// securityHeaders adds the standard hardening headers to every API
// response. HSTS only applies when the request arrived over TLS,
// directly or via a terminating proxy.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
