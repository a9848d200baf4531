package cache

import (
	"context"
	"sync"
	"time"
)

// entry stores a cached value and its absolute expiration timestamp.
type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
}

func (e entry) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && at.After(e.expiresAt)
}

// Memory is a map-backed cache. There is no background janitor: expired
// entries are hidden on read and removed by PurgeExpired.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
}

// NewMemory constructs an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]entry)}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// Get implements Cache.Get.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.items[key]
	if !ok || e.expired(now()) {
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set implements Cache.Set.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = now().Add(ttl)
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry{value: stored, expiresAt: exp}
	return nil
}

// Delete implements Cache.Delete.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Len counts only non-expired entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at := now()
	count := 0
	for _, e := range m.items {
		if !e.expired(at) {
			count++
		}
	}
	return count
}

// PurgeExpired implements Purger.
func (m *Memory) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	at := now()
	removed := 0
	for k, e := range m.items {
		if e.expired(at) {
			delete(m.items, k)
			removed++
		}
	}
	return removed
}

// Close implements Cache.Close.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]entry)
	return nil
}

var (
	_ Cache  = (*Memory)(nil)
	_ Purger = (*Memory)(nil)
)
