package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Typed is a JSON codec over a Store so callers work with domain values
// instead of raw bytes. A refresh replaces the whole entry atomically; cached
// values are never mutated in place.
type Typed[V any] struct {
	store Store
}

// NewTyped wraps a byte store with a typed JSON view.
func NewTyped[V any](store Store) Typed[V] {
	return Typed[V]{store: store}
}

func (t Typed[V]) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (V, error)) (V, error) {
	var zero V
	raw, err := t.store.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, fmt.Errorf("decode cached value for %q: %w", key, err)
	}
	return v, nil
}

// Get checks the cache without loading. The second return reports presence.
func (t Typed[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	raw, ok, err := t.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, fmt.Errorf("decode cached value for %q: %w", key, err)
	}
	return v, true, nil
}

func (t Typed[V]) Put(ctx context.Context, key string, v V, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	return t.store.Put(ctx, key, raw, ttl)
}
