// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package cache

import (
	"sync"
	"time"
)

// lruEntry represents an entry in the LRU cache with TTL support.
type lruEntry[V any] struct {
	key       string
	value     V
	prev      *lruEntry[V]
	next      *lruEntry[V]
	expiresAt time.Time
}

// LRUCache implements a thread-safe Least Recently Used cache with TTL
// support, generic over the value type.
//
// The gap detector uses LRUCache[[]int] to hold ordered shotpoint sequences
// per line between scans. A project survey has a bounded number of lines, so
// a small capacity keeps the working set of active lines resident without
// ever holding the whole survey in memory.
//
// Key features:
//   - O(1) Get, Add, Remove operations
//   - O(1) LRU eviction when capacity is reached
//   - TTL support with lazy expiration
//   - Thread-safe operations
//
// This implementation uses a doubly-linked list for ordering and a hashmap
// for lookups.
type LRUCache[V any] struct {
	mu sync.RWMutex

	// capacity is the maximum number of entries
	capacity int

	// ttl is the time-to-live for entries
	ttl time.Duration

	// items maps keys to linked list nodes for O(1) lookup
	items map[string]*lruEntry[V]

	// head and tail are sentinel nodes for the doubly-linked list
	// head.next is the most recently used, tail.prev is the least recently used
	head *lruEntry[V]
	tail *lruEntry[V]

	// stats
	hits   int64
	misses int64
}

// NewLRUCache creates a new LRU cache with the specified capacity and TTL.
func NewLRUCache[V any](capacity int, ttl time.Duration) *LRUCache[V] {
	if capacity <= 0 {
		capacity = 256 // Default capacity
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute // Default TTL
	}

	c := &LRUCache[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruEntry[V], capacity),
		head:     &lruEntry[V]{},
		tail:     &lruEntry[V]{},
	}

	// Initialize linked list sentinels
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get retrieves an entry from the cache.
// Returns the value and true if found and not expired, false otherwise.
// Found entries are moved to the front (most recently used).
func (c *LRUCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	if entry, exists := c.items[key]; exists {
		// Check if expired
		if time.Now().After(entry.expiresAt) {
			c.removeEntry(entry)
			c.misses++
			return zero, false
		}

		// Move to front (most recently used)
		c.moveToFront(entry)
		c.hits++
		return entry.value, true
	}

	c.misses++
	return zero, false
}

// Contains checks if a key exists in the cache without updating access order.
func (c *LRUCache[V]) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if entry, exists := c.items[key]; exists {
		return !time.Now().After(entry.expiresAt)
	}
	return false
}

// Add adds or updates an entry in the cache.
// If the cache is at capacity, the least recently used entry is evicted.
func (c *LRUCache[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiresAt := now.Add(c.ttl)

	// Check if key already exists
	if entry, exists := c.items[key]; exists {
		entry.value = value
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}

	// Create new entry
	entry := &lruEntry[V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	}

	// Add to front of list and map
	c.addToFront(entry)
	c.items[key] = entry

	// Evict if over capacity
	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Remove removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *LRUCache[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.items[key]; exists {
		c.removeEntry(entry)
		return true
	}
	return false
}

// Len returns the current number of entries in the cache.
func (c *LRUCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all entries from the cache.
func (c *LRUCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*lruEntry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired removes all expired entries from the cache.
// Returns the number of entries removed.
func (c *LRUCache[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0

	// Walk from tail (oldest) to head (newest)
	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			removed++
		}
		entry = prev
	}

	return removed
}

// Stats returns cache hit/miss statistics.
func (c *LRUCache[V]) Stats() (hits, misses int64, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with lock held)

// addToFront adds an entry to the front of the list (most recently used).
func (c *LRUCache[V]) addToFront(entry *lruEntry[V]) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

// moveToFront moves an existing entry to the front of the list.
func (c *LRUCache[V]) moveToFront(entry *lruEntry[V]) {
	// Remove from current position
	entry.prev.next = entry.next
	entry.next.prev = entry.prev

	// Add to front
	c.addToFront(entry)
}

// removeEntry removes an entry from both the list and the map.
func (c *LRUCache[V]) removeEntry(entry *lruEntry[V]) {
	// Remove from list
	entry.prev.next = entry.next
	entry.next.prev = entry.prev

	// Remove from map
	delete(c.items, entry.key)
}

// evictOldest removes the least recently used entry.
func (c *LRUCache[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return // List is empty
	}
	c.removeEntry(oldest)
}
