// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swathline/swathline/internal/middleware"
)

// Router binds the endpoint methods to paths.
type Router struct {
	handler *Handler
	mw      *Middleware
}

// NewRouter creates the route builder.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	return &Router{handler: handler, mw: mw}
}

// Setup builds the chi route tree. Each rate limit class is built once
// so endpoints in the same class share one counter.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	readLimit := router.mw.RateLimitRead()
	writeLimit := router.mw.RateLimitWrite()
	importLimit := router.mw.RateLimitImport()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to all routes in order. RealIP must precede the rate
	// limiters so proxied clients are keyed by their real address, and
	// the request ID must precede anything that logs.
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(router.mw.CORS())
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Compress(5, "application/json", "application/geo+json"))

	// ========================
	// Health
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.mw.RateLimitHealth())
		r.Get("/", h.HealthCheck)
	})

	// ========================
	// Survey Plan
	// ========================
	r.Route("/api/v1/coordinates", func(r chi.Router) {
		r.Use(readLimit)
		r.Get("/lines", h.ListLines)
		r.Get("/lines/{line}", h.GetLineShotpoints)
		r.Get("/lines/{line}/geojson", h.LinePointsGeoJSON)
	})

	// ========================
	// Deployment Ledger
	// ========================
	r.Route("/api/v1/deployments", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(readLimit)
			r.Get("/{channel}/{line}/{shotpoint}", h.GetEvent)
		})
		r.Group(func(r chi.Router) {
			r.Use(writeLimit)
			r.Post("/save", h.SaveDeployment)
			r.Put("/{channel}/{line}/{shotpoint}", h.SetEvent)
			r.Delete("/{channel}/{line}/{shotpoint}", h.ClearEvent)
			r.Delete("/{channel}/lines/{line}", h.ClearLine)
		})
	})

	// ========================
	// Gap Analysis
	// ========================
	r.Route("/api/v1/gaps", func(r chi.Router) {
		r.Use(readLimit)
		r.Get("/lines/{line}", h.LineGaps)
		r.Get("/swaths/{swath}", h.SwathGaps)
		r.Get("/statistics", h.GapStatistics)
	})

	// ========================
	// Coverage Rollups
	// ========================
	r.Route("/api/v1/stats", func(r chi.Router) {
		r.Use(readLimit)
		r.Get("/lines/{line}", h.LineStats)
		r.Get("/swaths/{swath}", h.SwathStats)
		r.Get("/project", h.ProjectStats)
		r.Get("/progress", h.ProgressByType)
		r.Get("/users", h.UserStats)
	})

	// ========================
	// Activity Feeds
	// ========================
	r.Route("/api/v1/activity", func(r chi.Router) {
		r.Use(readLimit)
		r.Get("/recent", h.RecentActivity)
		r.Get("/lines/{line}", h.LineActivity)
	})

	// ========================
	// Spatial Cache
	// ========================
	r.Route("/api/v1/geometry/swaths/{swath}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(readLimit)
			r.Get("/lines", h.SwathLines)
			r.Get("/box", h.SwathBox)
			r.Get("/geojson", h.SwathLinesGeoJSON)
			r.Get("/box/geojson", h.SwathBoxGeoJSON)
		})
		r.Group(func(r chi.Router) {
			r.Use(writeLimit)
			r.Post("/rebuild", h.RebuildSwathGeometry)
			r.Delete("/cache", h.ClearSwathGeometry)
		})
	})

	// ========================
	// CSV Imports
	// ========================
	r.Route("/api/v1/import", func(r chi.Router) {
		r.Use(importLimit)
		r.Post("/survey-plan", h.ImportSurveyPlan)
		r.Post("/swaths/{swath}/definitions", h.ImportSwathDefinitions)
		r.Post("/deployments/{channel}", h.ImportDeployments)
		r.Post("/acquisition/{channel}", h.ImportAcquisition)
	})

	// ========================
	// Registry and Introspection
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(readLimit)
		r.Get("/api/v1/deployment-types", h.DeploymentTypes)
		r.Get("/api/v1/cache/stats", h.CacheStats)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
