// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillAdapter implements watermill.LoggerAdapter using zerolog as the
// backend, so the event stream logs into the same structured output as the
// rest of the service.
//
// Usage:
//
//	pubsub := gochannel.NewGoChannel(cfg, logging.NewWatermillAdapter())
type WatermillAdapter struct {
	logger zerolog.Logger
}

// NewWatermillAdapter creates a watermill.LoggerAdapter that wraps the global
// zerolog logger.
func NewWatermillAdapter() *WatermillAdapter {
	return &WatermillAdapter{logger: Logger()}
}

// NewWatermillAdapterWithLogger creates a watermill.LoggerAdapter with a
// specific zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatermillAdapterWithLogger(logger zerolog.Logger) *WatermillAdapter {
	return &WatermillAdapter{logger: logger}
}

// Error logs an error message with fields.
func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	addFields(a.logger.Error().Err(err), fields).Msg(msg)
}

// Info logs an informational message with fields. Watermill's internals are
// chatty at this level, so it maps to zerolog debug.
func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	addFields(a.logger.Debug(), fields).Msg(msg)
}

// Debug logs a debug message with fields.
func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	addFields(a.logger.Debug(), fields).Msg(msg)
}

// Trace logs a trace message with fields.
func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	addFields(a.logger.Trace(), fields).Msg(msg)
}

// With returns an adapter whose logger carries the fields on every message.
func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := a.logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return &WatermillAdapter{logger: ctx.Logger()}
}

func addFields(event *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	return event
}
