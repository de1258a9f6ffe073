// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package events

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/logging"
	"github.com/swathline/swathline/internal/metrics"
)

const defaultBufferSize = 256

// Publisher fans deployment changes out to in-process subscribers.
// Delivery happens asynchronously, so PublishChange never blocks a
// ledger write behind a slow consumer.
type Publisher struct {
	pubsub *gochannel.GoChannel

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates the in-process deployment change stream.
func NewPublisher(cfg config.EventsConfig) *Publisher {
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = defaultBufferSize
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(buffer),
	}, logging.NewWatermillAdapter())

	return &Publisher{pubsub: pubsub}
}

// PublishChange serializes and publishes a deployment change.
func (p *Publisher) PublishChange(change DeploymentChange) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal deployment change: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), data)
	msg.Metadata.Set("channel", change.Channel.String())
	msg.Metadata.Set("line", strconv.Itoa(change.Line))

	err = p.pubsub.Publish(TopicDeploymentsChanged, msg)
	metrics.RecordChangePublished(err)
	return err
}

// Subscribe returns a channel of deployment change messages. The
// subscription ends when ctx is cancelled or the publisher closes.
// Messages must be acked for delivery to continue.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, TopicDeploymentsChanged)
}

// Close shuts down the stream and all subscriptions.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.pubsub.Close()
}
