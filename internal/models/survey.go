// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Point types for planned shotpoints. The coordinate store accepts exactly
// these three values; combined line types like "Receiver/Source" appear only
// in derived geometry when a line's two endpoints differ.
const (
	PointTypeReceiver       = "Receiver"
	PointTypeSource         = "Source"
	PointTypeSourceReceiver = "Source/Receiver"
)

// Shotpoint is one planned acquisition location. Reference data: created by
// survey-plan import, immutable afterward. Identity is (Line, Shotpoint);
// PointID is a server-assigned UUID used by external tooling.
type Shotpoint struct {
	Line      int     `json:"line"`
	Shotpoint int     `json:"shotpoint"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PointType string  `json:"point_type"`
	PointID   string  `json:"point_id"`
}

// Key returns the (line, shotpoint) identity as a comparable value.
func (s Shotpoint) Key() ShotpointKey {
	return ShotpointKey{Line: s.Line, Shotpoint: s.Shotpoint}
}

// ShotpointKey identifies a shotpoint across all components.
type ShotpointKey struct {
	Line      int `json:"line"`
	Shotpoint int `json:"shotpoint"`
}

func (k ShotpointKey) String() string {
	return fmt.Sprintf("%d/%d", k.Line, k.Shotpoint)
}

// SwathDefinition declares that a line (or a shot range of it) belongs to a
// swath. Loaded from per-swath definition imports; a line may appear in more
// than one swath.
type SwathDefinition struct {
	Swath     int `json:"swath"`
	Line      int `json:"line"`
	FirstShot int `json:"first_shot"`
	LastShot  int `json:"last_shot"`
}

// Channel names a deployment ledger partition. The global channel and the
// per-swath channels are independent ledgers over the same key space.
type Channel string

// ChannelGlobal is the unified ledger every interactive save also writes to.
const ChannelGlobal Channel = "global"

const swathChannelPrefix = "swath-"

// SwathChannel returns the channel for a swath number.
func SwathChannel(swath int) Channel {
	return Channel(swathChannelPrefix + strconv.Itoa(swath))
}

// ParseChannel validates a channel string against the configured swath count.
// An empty string means the global channel. Returns ErrInvalidChannel (wrapped
// with the offending value) otherwise.
func ParseChannel(s string, swathCount int) (Channel, error) {
	if s == "" || s == string(ChannelGlobal) {
		return ChannelGlobal, nil
	}
	if n, ok := parseSwathChannel(s); ok && n >= 1 && n <= swathCount {
		return Channel(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChannel, s)
}

// Swath returns the swath number for a per-swath channel, or false for the
// global channel (and anything unparseable).
func (c Channel) Swath() (int, bool) {
	return parseSwathChannel(string(c))
}

// IsGlobal reports whether this is the unified global ledger.
func (c Channel) IsGlobal() bool {
	return c == ChannelGlobal
}

func (c Channel) String() string {
	return string(c)
}

func parseSwathChannel(s string) (int, bool) {
	rest, found := strings.CutPrefix(s, swathChannelPrefix)
	if !found || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
