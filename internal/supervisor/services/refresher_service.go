// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package services

import (
	"context"

	"github.com/thejerf/suture/v4"
)

// ChangeConsumer matches the stats refresher's run loop. A local
// interface keeps this package from importing the events package.
type ChangeConsumer interface {
	Run(ctx context.Context) error
}

// RefresherService runs the stats refresher under supervision.
type RefresherService struct {
	consumer ChangeConsumer
	name     string
}

// NewRefresherService wraps the refresher for supervision.
func NewRefresherService(consumer ChangeConsumer) *RefresherService {
	return &RefresherService{
		consumer: consumer,
		name:     "stats-refresher",
	}
}

// Serve implements suture.Service by delegating to the refresher's run
// loop. A nil return means the change stream closed; there is nothing
// to resubscribe to, so the service asks not to be restarted.
func (r *RefresherService) Serve(ctx context.Context) error {
	err := r.consumer.Run(ctx)
	if err == nil {
		return suture.ErrDoNotRestart
	}
	return err
}

// String implements fmt.Stringer; suture uses it in log events.
func (r *RefresherService) String() string {
	return r.name
}
