package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Redis is the shared cache tier for multi-instance deployments. Loads are
// still collapsed per process with singleflight; instances racing on the same
// key at worst each load once, which the upstreams tolerate.
//
// A redis transport failure is wrapped in ErrBackend: the caller cannot tell
// hit from miss, so the whole batch is surfaced for redelivery rather than
// hammering the upstreams blind.
type Redis struct {
	client *redis.Client
	group  singleflight.Group
}

// NewRedis wraps an established go-redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load LoadFunc) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		cacheHits.WithLabelValues("redis").Inc()
		return value, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("cache get %q: %v: %w", key, err, ErrBackend)
	}
	cacheMisses.WithLabelValues("redis").Inc()

	v, err, _ := r.group.Do(key, func() (any, error) {
		value, err := r.client.Get(ctx, key).Bytes()
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("cache get %q: %v: %w", key, err, ErrBackend)
		}
		loaded, err := load(ctx)
		if err != nil {
			cacheLoadFailures.WithLabelValues("redis").Inc()
			return nil, err
		}
		if err := r.client.Set(ctx, key, loaded, ttl).Err(); err != nil {
			return nil, fmt.Errorf("cache set %q: %v: %w", key, err, ErrBackend)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		cacheHits.WithLabelValues("redis").Inc()
		return value, true, nil
	}
	if errors.Is(err, redis.Nil) {
		cacheMisses.WithLabelValues("redis").Inc()
		return nil, false, nil
	}
	return nil, false, fmt.Errorf("cache get %q: %v: %w", key, err, ErrBackend)
}

func (r *Redis) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %v: %w", key, err, ErrBackend)
	}
	return nil
}
