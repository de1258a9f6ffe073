// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

// Package events carries deployment ledger changes to in-process
// subscribers over a Watermill pub/sub channel.
//
// Every applied write publishes one DeploymentChange on
// TopicDeploymentsChanged after the database write and cache
// invalidation have completed, so a consumer that recomputes derived
// state always observes the post-write ledger. Publishing is best
// effort: the survey engine logs failures without surfacing them to
// the caller, and messages published while no subscriber is attached
// are dropped. The background stats refresher is the primary
// consumer; it coalesces changes per line and re-warms the coverage
// statistics cache.
package events
