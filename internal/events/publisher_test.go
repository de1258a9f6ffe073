// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package events

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/models"
)

func TestPublishSubscribeRoundtrip(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{BufferSize: 8})
	t.Cleanup(func() {
		if err := pub.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	msgs, err := pub.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	want := DeploymentChange{
		Line:      5000,
		Shotpoint: 104,
		Channel:   models.SwathChannel(2),
		Type:      "NODES DEPLOYED",
		Username:  "jsmith",
		ChangedAt: time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC),
	}
	if err := pub.PublishChange(want); err != nil {
		t.Fatalf("PublishChange() error = %v", err)
	}

	var msg *message.Message
	select {
	case msg = <-msgs:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for deployment change")
	}
	msg.Ack()

	if got := msg.Metadata.Get("channel"); got != "swath-2" {
		t.Errorf("channel metadata = %q, want %q", got, "swath-2")
	}
	if got := msg.Metadata.Get("line"); got != "5000" {
		t.Errorf("line metadata = %q, want %q", got, "5000")
	}

	got, err := ParseChange(msg)
	if err != nil {
		t.Fatalf("ParseChange() error = %v", err)
	}
	if got.Line != want.Line || got.Shotpoint != want.Shotpoint {
		t.Errorf("ParseChange() key = %d/%d, want %d/%d", got.Line, got.Shotpoint, want.Line, want.Shotpoint)
	}
	if got.Channel != want.Channel {
		t.Errorf("ParseChange() channel = %q, want %q", got.Channel, want.Channel)
	}
	if got.Type != want.Type || got.Username != want.Username {
		t.Errorf("ParseChange() = %q by %q, want %q by %q", got.Type, got.Username, want.Type, want.Username)
	}
	if got.Cleared {
		t.Error("ParseChange() cleared = true, want false")
	}
	if !got.ChangedAt.Equal(want.ChangedAt) {
		t.Errorf("ParseChange() changed_at = %v, want %v", got.ChangedAt, want.ChangedAt)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{})
	t.Cleanup(func() { _ = pub.Close() })

	change := DeploymentChange{
		Line:      5000,
		Shotpoint: 100,
		Channel:   models.ChannelGlobal,
		Cleared:   true,
		ChangedAt: time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC),
	}
	if err := pub.PublishChange(change); err != nil {
		t.Errorf("PublishChange() with no subscribers error = %v", err)
	}
}

func TestPublishAfterClose(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{BufferSize: 8})

	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	err := pub.PublishChange(DeploymentChange{Line: 5000, Shotpoint: 100, Channel: models.ChannelGlobal})
	if err == nil {
		t.Fatal("PublishChange() after Close() expected error")
	}
	if !strings.Contains(err.Error(), "closed") {
		t.Errorf("PublishChange() error = %v, want mention of closed publisher", err)
	}
}

func TestSubscriptionEndsOnClose(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{BufferSize: 8})

	msgs, err := pub.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case _, open := <-msgs:
		if open {
			t.Error("expected subscription channel to close")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for subscription to close")
	}
}

func TestParseChangeInvalidPayload(t *testing.T) {
	msg := message.NewMessage("test", []byte("{not json"))
	if _, err := ParseChange(msg); err == nil {
		t.Fatal("ParseChange() with invalid payload expected error")
	}
}
