// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/swathline/swathline/internal/models"
)

// TopicDeploymentsChanged carries one message per applied deployment
// ledger write, including clears.
const TopicDeploymentsChanged = "deployments.changed"

// DeploymentChange describes a single applied ledger write. Cleared
// reports a removal; Type is empty on those messages.
type DeploymentChange struct {
	Line      int            `json:"line"`
	Shotpoint int            `json:"shotpoint"`
	Channel   models.Channel `json:"channel"`
	Type      string         `json:"type"`
	Username  string         `json:"username"`
	Cleared   bool           `json:"cleared"`
	ChangedAt time.Time      `json:"changed_at"`
}

// ParseChange decodes a deployment change from a stream message.
func ParseChange(msg *message.Message) (DeploymentChange, error) {
	var change DeploymentChange
	if err := json.Unmarshal(msg.Payload, &change); err != nil {
		return DeploymentChange{}, fmt.Errorf("unmarshal deployment change: %w", err)
	}
	return change, nil
}
