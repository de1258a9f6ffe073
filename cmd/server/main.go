// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package main is the entry point for the Swathline server.
//
// Swathline tracks receiver deployment coverage across a seismic survey:
// field crews post deployment events against surveyed shotpoints, and the
// server answers coverage, gap, and progress queries over the resulting
// ledger.
//
// # Application Architecture
//
// The server runs under a Suture v4 supervisor tree:
//
//	Root ("swathline")
//	├── AnalysisSupervisor ("analysis-layer")
//	│   ├── stats-refresher   (re-warms stats after deployment writes)
//	│   └── housekeeping      (samples cache and pool gauges)
//	└── APISupervisor ("api-layer")
//	    └── http-server       (Chi router, REST API)
//
// Component initialization order:
//
//  1. Configuration: Koanf v2 with environment variables and config files
//  2. Logging: zerolog with JSON/console output modes
//  3. Database: DuckDB ledger and shotpoint tables
//  4. Event stream: Watermill in-process pub/sub for deployment changes
//  5. Cache: TTL or LFU stats cache
//  6. Survey engine: coverage aggregation, gap detection, spatial builder
//  7. Supervisor tree: Suture v4 process supervision
//  8. HTTP server: Chi router with middleware stack
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//
//	Priority: Environment variables > Config file > Defaults
//
// Core environment variables:
//
//	SWATHLINE_SERVER_PORT=4326        # HTTP server port
//	SWATHLINE_DATABASE_PATH=data/swathline.duckdb
//	SWATHLINE_SURVEY_SWATH_COUNT=8    # Number of swaths in the survey
//	SWATHLINE_LOGGING_LEVEL=info      # trace, debug, info, warn, error
//	SWATHLINE_LOGGING_FORMAT=json     # json or console
//	SWATHLINE_CACHE_TYPE=ttl          # ttl or lfu
//
// A YAML config file is read from CONFIG_PATH, ./config.yaml, or
// /etc/swathline/config.yaml, whichever exists first.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM:
//
//  1. Stops accepting new HTTP connections
//  2. Waits for in-flight requests (server.shutdown_timeout)
//  3. Stops the stats refresher and housekeeping loops
//  4. Closes the event stream and database
//  5. Reports any services that failed to stop
//
// # Port 4326
//
// The default port 4326 references EPSG:4326 (WGS84), the coordinate
// system shotpoint positions are expressed in.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swathline/swathline/internal/api"
	"github.com/swathline/swathline/internal/cache"
	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/database"
	"github.com/swathline/swathline/internal/events"
	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/metrics"
	"github.com/swathline/swathline/internal/supervisor"
	"github.com/swathline/swathline/internal/supervisor/services"
	"github.com/swathline/swathline/internal/survey"
)

// version is stamped at release build time:
//
//	go build -ldflags "-X main.version=v1.2.0" ./cmd/server
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// The default logger handles this; the configured one never loaded.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Int("swath_count", cfg.Survey.SwathCount).
		Msg("Starting Swathline")

	metrics.SetAppInfo(version)

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	stream := events.NewPublisher(cfg.Events)
	defer func() {
		if err := stream.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event stream")
		}
	}()

	statsCache := cache.NewCacher(cache.CacheConfig{
		Type:     cache.CacheType(cfg.Cache.Type),
		TTL:      cfg.Cache.StatsTTL,
		Capacity: cfg.Cache.Capacity,
	})

	engine := survey.New(db, statsCache, cfg, stream)
	refresher := events.NewRefresher(stream, engine, cfg.Events)

	handler := api.NewHandler(engine, db, cfg, version)
	mw := api.NewMiddleware(cfg.API)
	router := api.NewRouter(handler, mw)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAnalysisService(services.NewRefresherService(refresher))
	tree.AddAnalysisService(services.NewHousekeepingService(engine, db, 0))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// Wait for a shutdown signal or a supervisor failure.
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
