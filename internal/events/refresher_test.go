// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package events

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/swathline/swathline/internal/config"
	"github.com/swathline/swathline/internal/models"
)

type warmCall struct {
	line    int
	swath   int
	channel models.Channel
}

// fakeWarmer records which scopes the refresher recomputed.
type fakeWarmer struct {
	mu           sync.Mutex
	lineCalls    []warmCall
	swathCalls   []warmCall
	projectCalls []models.Channel
	swathsByLine map[int][]int
	lineErr      error
}

func (f *fakeWarmer) LineStats(_ context.Context, line int, channel models.Channel) (*models.CoverageStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lineCalls = append(f.lineCalls, warmCall{line: line, channel: channel})
	if f.lineErr != nil {
		return nil, f.lineErr
	}
	return &models.CoverageStat{}, nil
}

func (f *fakeWarmer) SwathStats(_ context.Context, swath int, channel models.Channel) (*models.CoverageStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swathCalls = append(f.swathCalls, warmCall{swath: swath, channel: channel})
	return &models.CoverageStat{}, nil
}

func (f *fakeWarmer) ProjectStats(_ context.Context, channel models.Channel) (*models.CoverageStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projectCalls = append(f.projectCalls, channel)
	return &models.CoverageStat{}, nil
}

func (f *fakeWarmer) SwathsForLine(_ context.Context, line int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.swathsByLine[line], nil
}

func (f *fakeWarmer) counts() (lines, swaths, projects int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lineCalls), len(f.swathCalls), len(f.projectCalls)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

// startRefresher subscribes before returning so tests can publish
// without racing the subscription.
func startRefresher(t *testing.T, pub *Publisher, fake *fakeWarmer, linger time.Duration) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	msgs, err := pub.Subscribe(ctx)
	if err != nil {
		cancel()
		t.Fatalf("Subscribe() error = %v", err)
	}

	ref := NewRefresher(pub, fake, config.EventsConfig{RefreshPerSecond: 1000})
	ref.linger = linger

	errCh := make(chan error, 1)
	go func() {
		errCh <- ref.loop(ctx, msgs)
	}()
	return cancel, errCh
}

func TestNewRefresherDefaults(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{})
	t.Cleanup(func() { _ = pub.Close() })

	ref := NewRefresher(pub, &fakeWarmer{}, config.EventsConfig{})
	if got := float64(ref.limiter.Limit()); got != defaultRefreshPerSecond {
		t.Errorf("default refresh rate = %v, want %v", got, defaultRefreshPerSecond)
	}
	if ref.linger != defaultLinger {
		t.Errorf("default linger = %v, want %v", ref.linger, defaultLinger)
	}
}

func TestRefresherWarmsChangedScopes(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{BufferSize: 8})
	t.Cleanup(func() { _ = pub.Close() })

	fake := &fakeWarmer{swathsByLine: map[int][]int{5000: {2}}}
	cancel, errCh := startRefresher(t, pub, fake, 50*time.Millisecond)
	defer cancel()

	change := DeploymentChange{
		Line:      5000,
		Shotpoint: 104,
		Channel:   models.SwathChannel(2),
		Type:      "NODES DEPLOYED",
		Username:  "jsmith",
		ChangedAt: time.Now().UTC(),
	}
	if err := pub.PublishChange(change); err != nil {
		t.Fatalf("PublishChange() error = %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		_, _, projects := fake.counts()
		return projects >= 1
	}, "timed out waiting for stats refresh")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.lineCalls) != 1 || fake.lineCalls[0] != (warmCall{line: 5000, channel: models.SwathChannel(2)}) {
		t.Errorf("line warms = %+v, want one call for line 5000 on swath-2", fake.lineCalls)
	}
	if len(fake.swathCalls) != 1 || fake.swathCalls[0] != (warmCall{swath: 2, channel: models.SwathChannel(2)}) {
		t.Errorf("swath warms = %+v, want one call for swath 2 on swath-2", fake.swathCalls)
	}
	if len(fake.projectCalls) != 1 || fake.projectCalls[0] != models.SwathChannel(2) {
		t.Errorf("project warms = %v, want one call on swath-2", fake.projectCalls)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("loop() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for refresher to stop")
	}
}

func TestRefresherCoalescesBursts(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{BufferSize: 8})
	t.Cleanup(func() { _ = pub.Close() })

	fake := &fakeWarmer{}
	cancel, _ := startRefresher(t, pub, fake, 300*time.Millisecond)
	defer cancel()

	// A drag-fill burst: same line and channel, different shotpoints.
	for sp := 100; sp < 103; sp++ {
		change := DeploymentChange{
			Line:      5000,
			Shotpoint: sp,
			Channel:   models.ChannelGlobal,
			Type:      "NODES DEPLOYED",
			Username:  "jsmith",
			ChangedAt: time.Now().UTC(),
		}
		if err := pub.PublishChange(change); err != nil {
			t.Fatalf("PublishChange(%d) error = %v", sp, err)
		}
	}

	waitFor(t, 5*time.Second, func() bool {
		_, _, projects := fake.counts()
		return projects >= 1
	}, "timed out waiting for stats refresh")

	// Give a second, incorrect batch time to appear before asserting.
	time.Sleep(500 * time.Millisecond)

	lines, _, projects := fake.counts()
	if lines != 1 {
		t.Errorf("line warms = %d, want 1 coalesced recompute", lines)
	}
	if projects != 1 {
		t.Errorf("project warms = %d, want 1", projects)
	}
}

func TestRefresherDropsMalformedChange(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{BufferSize: 8})
	t.Cleanup(func() { _ = pub.Close() })

	fake := &fakeWarmer{}
	cancel, _ := startRefresher(t, pub, fake, 50*time.Millisecond)
	defer cancel()

	bad := message.NewMessage("malformed", []byte("{not json"))
	if err := pub.pubsub.Publish(TopicDeploymentsChanged, bad); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	// The valid change only arrives once the malformed one was acked.
	change := DeploymentChange{
		Line:      5000,
		Shotpoint: 100,
		Channel:   models.ChannelGlobal,
		Cleared:   true,
		ChangedAt: time.Now().UTC(),
	}
	if err := pub.PublishChange(change); err != nil {
		t.Fatalf("PublishChange() error = %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		lines, _, _ := fake.counts()
		return lines >= 1
	}, "timed out waiting for stats refresh after malformed change")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.lineCalls) != 1 || fake.lineCalls[0].line != 5000 {
		t.Errorf("line warms = %+v, want only the valid change's line", fake.lineCalls)
	}
}

func TestRefresherSkipsScopeOnLineFailure(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{BufferSize: 8})
	t.Cleanup(func() { _ = pub.Close() })

	fake := &fakeWarmer{
		swathsByLine: map[int][]int{5000: {2}},
		lineErr:      errors.New("recompute failed"),
	}
	cancel, _ := startRefresher(t, pub, fake, 50*time.Millisecond)
	defer cancel()

	change := DeploymentChange{
		Line:      5000,
		Shotpoint: 100,
		Channel:   models.ChannelGlobal,
		Type:      "NODES DEPLOYED",
		ChangedAt: time.Now().UTC(),
	}
	if err := pub.PublishChange(change); err != nil {
		t.Fatalf("PublishChange() error = %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		_, _, projects := fake.counts()
		return projects >= 1
	}, "timed out waiting for stats refresh")

	_, swaths, _ := fake.counts()
	if swaths != 0 {
		t.Errorf("swath warms = %d, want 0 after line recompute failure", swaths)
	}
}

func TestRefresherStopsWhenStreamCloses(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{BufferSize: 8})

	fake := &fakeWarmer{}
	cancel, errCh := startRefresher(t, pub, fake, 50*time.Millisecond)
	defer cancel()

	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("loop() after stream close error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for refresher to stop")
	}
}

func TestRefresherRunSubscribeFailure(t *testing.T) {
	pub := NewPublisher(config.EventsConfig{BufferSize: 8})
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ref := NewRefresher(pub, &fakeWarmer{}, config.EventsConfig{})
	err := ref.Run(context.Background())
	if err == nil {
		t.Fatal("Run() on closed publisher expected error")
	}
	if !strings.Contains(err.Error(), "subscribe") {
		t.Errorf("Run() error = %v, want subscribe failure", err)
	}
}
