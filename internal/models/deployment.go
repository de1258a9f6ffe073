// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package models

import (
	"strings"
	"time"
)

// DeploymentEvent is the current recorded action for a (line, shotpoint,
// channel) key. The ledger keeps at most one row per key: writing a new event
// replaces the previous value (last-write-wins), it is not a journal.
type DeploymentEvent struct {
	Line           int       `json:"line"`
	Shotpoint      int       `json:"shotpoint"`
	Channel        Channel   `json:"channel"`
	DeploymentType string    `json:"deployment_type"`
	Username       string    `json:"username"`
	EventTime      time.Time `json:"event_time"`
}

// DeploymentType is a registry entry: a known event type with its display
// color. The ledger itself accepts unknown types (open enum); the registry
// exists for rendering and progress grouping.
type DeploymentType struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Deployment types ending in these suffixes form equipment families
// ("NODES DEPLOYED" / "NODES RETRIEVED" -> family "NODES"). Types without
// either suffix (markers like "FORBIDDEN BUSH") still count as coverage but
// not toward deploy/retrieve progress.
const (
	DeployedSuffix  = " DEPLOYED"
	RetrievedSuffix = " RETRIEVED"
)

// IsDeployedType reports whether a deployment type records equipment going out.
func IsDeployedType(deploymentType string) bool {
	return strings.HasSuffix(deploymentType, DeployedSuffix)
}

// IsRetrievedType reports whether a deployment type records equipment coming back.
func IsRetrievedType(deploymentType string) bool {
	return strings.HasSuffix(deploymentType, RetrievedSuffix)
}

// EquipmentFamily returns the family shared by a DEPLOYED/RETRIEVED pair, or
// the type itself for marker types.
func EquipmentFamily(deploymentType string) string {
	if f, ok := strings.CutSuffix(deploymentType, DeployedSuffix); ok {
		return f
	}
	if f, ok := strings.CutSuffix(deploymentType, RetrievedSuffix); ok {
		return f
	}
	return deploymentType
}

// DeployedPoint is a ledger entry joined with its planned coordinates,
// the shape the map layer renders deployment markers from.
type DeployedPoint struct {
	Line           int     `json:"line"`
	Shotpoint      int     `json:"shotpoint"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	DeploymentType string  `json:"deployment_type"`
	Username       string  `json:"username"`
}
