// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// lfuEntry is the value stored in a frequency bucket's list element.
type lfuEntry struct {
	key       string
	value     interface{}
	freq      int
	expiresAt time.Time
}

// LFUCache is a thread-safe least-frequently-used cache with O(1) get,
// set, and eviction. It suits coverage workloads where crews poll the
// same few active lines while completed lines go quiet: hot keys climb
// frequency buckets and stale ones drain out the bottom.
//
// Entries live in per-frequency lists (front = most recently touched at
// that frequency); an index maps keys to their list element, and
// minFreq names the bucket the next eviction drains. Ties within the
// minimum bucket evict least-recently-touched first.
type LFUCache struct {
	mu sync.RWMutex

	capacity int
	ttl      time.Duration

	index   map[string]*list.Element
	buckets map[int]*list.List
	minFreq int

	hits   int64
	misses int64
}

// NewLFUCache creates an LFU cache. Non-positive capacity defaults to
// 10000 entries, non-positive ttl to 2 minutes.
func NewLFUCache(capacity int, ttl time.Duration) *LFUCache {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	return &LFUCache{
		capacity: capacity,
		ttl:      ttl,
		index:    make(map[string]*list.Element, capacity),
		buckets:  make(map[int]*list.List),
	}
}

// Get returns the value for key and bumps its frequency. Expired
// entries are dropped on the spot and count as misses.
func (c *LFUCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*lfuEntry)
	if time.Now().After(entry.expiresAt) {
		c.unlink(key, elem)
		c.misses++
		return nil, false
	}

	c.promote(elem)
	c.hits++
	return entry.value, true
}

// Set stores value under key with the default TTL.
func (c *LFUCache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL. Updating an
// existing key counts as an access; inserting a new key at capacity
// evicts from the minimum-frequency bucket first.
func (c *LFUCache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl)

	if elem, ok := c.index[key]; ok {
		entry := elem.Value.(*lfuEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		c.promote(elem)
		return
	}

	if len(c.index) >= c.capacity {
		c.evict()
	}

	entry := &lfuEntry{
		key:       key,
		value:     value,
		freq:      1,
		expiresAt: expiresAt,
	}
	c.index[key] = c.bucket(1).PushFront(entry)
	c.minFreq = 1
}

// Delete removes key from the cache. Returns whether it was present.
func (c *LFUCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if ok {
		c.unlink(key, elem)
	}
	return ok
}

// DeletePrefix removes every entry whose key starts with prefix and
// returns how many were removed.
func (c *LFUCache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, elem := range c.index {
		if strings.HasPrefix(key, prefix) {
			c.unlink(key, elem)
			removed++
		}
	}
	return removed
}

// Contains reports whether key is present and unexpired, without
// counting an access.
func (c *LFUCache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	elem, ok := c.index[key]
	if !ok {
		return false
	}
	return !time.Now().After(elem.Value.(*lfuEntry).expiresAt)
}

// Len returns the number of entries, expired or not.
func (c *LFUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index)
}

// Clear drops every entry. Hit and miss counters survive.
func (c *LFUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = make(map[string]*list.Element, c.capacity)
	c.buckets = make(map[int]*list.List)
	c.minFreq = 0
}

// Stats returns the hit and miss counters and the current entry count.
func (c *LFUCache) Stats() (hits, misses int64, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, len(c.index)
}

// HitRate returns hits as a percentage of all lookups.
func (c *LFUCache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	if total == 0 {
		return 0.0
	}
	return float64(c.hits) / float64(total) * 100.0
}

// GetFrequency returns key's access count, or 0 if absent.
func (c *LFUCache) GetFrequency(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if elem, ok := c.index[key]; ok {
		return elem.Value.(*lfuEntry).freq
	}
	return 0
}

// CleanupExpired sweeps out expired entries and returns how many were
// removed.
func (c *LFUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, elem := range c.index {
		if now.After(elem.Value.(*lfuEntry).expiresAt) {
			c.unlink(key, elem)
			removed++
		}
	}
	return removed
}

// bucket returns the list for freq, creating it on first use. Caller
// holds the write lock.
func (c *LFUCache) bucket(freq int) *list.List {
	l, ok := c.buckets[freq]
	if !ok {
		l = list.New()
		c.buckets[freq] = l
	}
	return l
}

// promote moves an entry up one frequency bucket. Caller holds the
// write lock.
func (c *LFUCache) promote(elem *list.Element) {
	entry := elem.Value.(*lfuEntry)

	old := c.buckets[entry.freq]
	old.Remove(elem)
	if old.Len() == 0 {
		delete(c.buckets, entry.freq)
		if c.minFreq == entry.freq {
			c.minFreq++
		}
	}

	entry.freq++
	c.index[entry.key] = c.bucket(entry.freq).PushFront(entry)
}

// evict drops the least-recently-touched entry from the minimum
// frequency bucket. Caller holds the write lock.
func (c *LFUCache) evict() {
	l, ok := c.buckets[c.minFreq]
	if !ok || l.Len() == 0 {
		return
	}

	elem := l.Back()
	entry := elem.Value.(*lfuEntry)
	l.Remove(elem)
	if l.Len() == 0 {
		delete(c.buckets, c.minFreq)
	}
	delete(c.index, entry.key)
}

// unlink removes an entry from its bucket and the index. Caller holds
// the write lock.
func (c *LFUCache) unlink(key string, elem *list.Element) {
	entry := elem.Value.(*lfuEntry)
	if l, ok := c.buckets[entry.freq]; ok {
		l.Remove(elem)
		if l.Len() == 0 {
			delete(c.buckets, entry.freq)
		}
	}
	delete(c.index, key)
}
