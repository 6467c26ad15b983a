// Package expiry provides a small concurrency-safe map whose entries
// carry an expiry deadline. Expired entries are treated as absent on
// every read and can be swept in bulk.
package expiry

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Map is a mutex-guarded map with per-entry TTL.
type Map[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	now     func() time.Time
}

// NewMap creates an empty expiring map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		entries: make(map[K]entry[V]),
		now:     time.Now,
	}
}

// Set stores a value with the given TTL, replacing any existing entry.
// A non-positive TTL stores an already-expired entry.
func (m *Map[K, V]) Set(key K, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry[V]{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}
}

// Add stores a value only if no live entry exists for the key.
// It returns false when a live entry is already present.
func (m *Map[K, V]) Add(key K, value V, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && m.now().Before(e.expiresAt) {
		return false
	}
	m.entries[key] = entry[V]{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}
	return true
}

// Get returns the live value for key. An expired entry is evicted and
// reported as absent.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Pop atomically removes and returns the live value for key.
// Two concurrent Pop calls for the same key yield exactly one success.
func (m *Map[K, V]) Pop(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(m.entries, key)
	if !m.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes an entry regardless of expiry.
func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[K]entry[V])
}

// Values sweeps expired entries and returns a snapshot of the live values.
func (m *Map[K, V]) Values() []V {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	values := make([]V, 0, len(m.entries))
	for key, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, key)
			continue
		}
		values = append(values, e.value)
	}
	return values
}

// Sweep removes expired entries and returns how many were removed.
func (m *Map[K, V]) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including any not yet swept.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
