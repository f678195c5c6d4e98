package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value      []byte
	insertedAt time.Time
	ttl        time.Duration
}

func (e entry) live(now time.Time) bool {
	return now.Before(e.insertedAt.Add(e.ttl))
}

// Memory is the in-process cache tier. Reads and writes are safe for
// unlimited concurrent callers; eviction is passive (expired entries are
// dropped lazily on read).
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
	now     func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the time source. Tests use this to cross TTL
// boundaries without sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load LoadFunc) ([]byte, error) {
	if v, ok := m.get(key); ok {
		cacheHits.WithLabelValues("memory").Inc()
		return v, nil
	}
	cacheMisses.WithLabelValues("memory").Inc()

	v, err, _ := m.group.Do(key, func() (any, error) {
		// A concurrent flight may have populated the key while this caller
		// was queued behind the singleflight lock.
		if v, ok := m.get(key); ok {
			return v, nil
		}
		value, err := load(ctx)
		if err != nil {
			cacheLoadFailures.WithLabelValues("memory").Inc()
			return nil, err
		}
		m.put(key, value, ttl)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	if v, ok := m.get(key); ok {
		cacheHits.WithLabelValues("memory").Inc()
		return v, true, nil
	}
	cacheMisses.WithLabelValues("memory").Inc()
	return nil, false, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.put(key, value, ttl)
	return nil
}

func (m *Memory) get(key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.live(m.now()) {
		m.mu.Lock()
		// Re-check under the write lock; a refresh may have replaced it.
		if e, ok := m.entries[key]; ok && !e.live(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (m *Memory) put(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.entries[key] = entry{value: value, insertedAt: m.now(), ttl: ttl}
	m.mu.Unlock()
}
