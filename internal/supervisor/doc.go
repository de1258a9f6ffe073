// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

/*
Package supervisor provides process supervision for the Swathline
server using suture v4.

The package builds an Erlang/OTP-style supervision tree: long-running
services restart automatically after crashes, failures stay isolated in
their layer, and a context cancellation shuts the whole tree down in
order.

# Overview

Services are grouped into two layers:

	Root ("swathline")
	├── AnalysisSupervisor ("analysis-layer")
	│   ├── RefresherService (stats re-warm from the change stream)
	│   └── HousekeepingService (cache/pool/uptime gauges)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The split means a crash looping in the refresher backs off inside the
analysis layer while the HTTP server keeps serving. Nothing in the API
layer depends on the analysis layer being up; the write path performs
its own synchronous cache invalidation.

# Usage

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddAnalysisService(services.NewRefresherService(refresher))
	tree.AddAnalysisService(services.NewHousekeepingService(engine, db, 0))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	// Blocks until ctx is canceled.
	return tree.Serve(ctx)

# Configuration

TreeConfig controls restart behavior; the defaults match suture's
documented production defaults:

  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

Each service failure increments a counter that decays exponentially.
When the counter passes the threshold the supervisor waits out the
backoff before restarting, which prevents restart storms from a
persistently broken dependency.

# Service interface

Services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return nil to stop cleanly without restart, return an error to be
restarted, and return promptly once the context is canceled. The
wrappers in internal/supervisor/services adapt the server's components
to this contract.

# What is not supervised

DuckDB is an embedded library, not a process; the database package owns
its connection pool, and a failure there surfaces as request errors,
not a crashed service. The stats cache runs its own expiry loop
internally for the same reason.

# Debugging shutdown

If shutdown hangs past the timeout, UnstoppedServiceReport names the
services that did not return; the usual cause is a goroutine ignoring
context cancellation.
*/
package supervisor
