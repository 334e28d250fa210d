// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

// Package cache provides the caller-owned cache abstraction injected in
// front of the engine's pool builder and behavior profiler. The engine
// itself holds no mutable state between requests; whoever constructs the
// engine decides whether and how results are cached.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Cache is the abstraction the engine accepts. Implementations must be safe
// for concurrent use. A nil Cache disables caching entirely.
type Cache interface {
	// Get retrieves a value by key. Returns false for missing or expired keys.
	Get(key string) (interface{}, bool)

	// Set stores a value with the given time-to-live.
	Set(key string, value interface{}, ttl time.Duration)

	// Delete removes a key.
	Delete(key string)

	// Purge removes all keys.
	Purge()
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// entry is a cached value with its expiration.
type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Memory is a thread-safe in-memory Cache with per-entry TTL and periodic
// cleanup of expired entries.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	stats   Stats
	stop    chan struct{}
	once    sync.Once
}

// cleanupInterval is how often the background sweep removes expired entries.
const cleanupInterval = 5 * time.Minute

// NewMemory creates an in-memory cache and starts its cleanup goroutine.
// Call Close when the cache is no longer needed.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

// Get retrieves a value by key, removing it if expired.
func (m *Memory) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		m.stats.Misses++
		m.mu.Unlock()
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.stats.Misses++
		m.stats.Evictions++
		m.mu.Unlock()
		return nil, false
	}

	m.mu.Lock()
	m.stats.Hits++
	m.mu.Unlock()
	return e.value, true
}

// Set stores a value with the given TTL. Non-positive TTLs store nothing.
func (m *Memory) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes a key.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Purge removes all keys.
func (m *Memory) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}

// Len returns the number of entries, including any not yet swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Stats returns a snapshot of the cache counters.
func (m *Memory) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Close stops the background cleanup goroutine.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

// cleanupLoop periodically removes expired entries.
func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeExpired()
		case <-m.stop:
			return
		}
	}
}

// removeExpired deletes all entries past their expiration.
func (m *Memory) removeExpired() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
			m.stats.Evictions++
		}
	}
}

// GenerateKey builds a deterministic cache key from a prefix and any
// JSON-serializable parts. Identical inputs always produce identical keys.
func GenerateKey(prefix string, parts ...interface{}) string {
	data, err := json.Marshal(parts)
	if err != nil {
		// Fall back to the raw representation; still deterministic for
		// the value types the engine passes in.
		data = []byte(fmt.Sprintf("%v", parts))
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, sum[:8])
}

// Ensure Memory implements the interface.
var _ Cache = (*Memory)(nil)
