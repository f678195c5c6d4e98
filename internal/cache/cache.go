// Package cache implements the cache-aside store shared by all registry
// clients and the boundary resolver.
//
// Values are opaque byte slices with a TTL stamped at insert time; an entry is
// never returned once its TTL has elapsed, and expiry is indistinguishable
// from absence to callers. For a given key only one load is ever in flight at
// a time regardless of how many transformers ask concurrently (singleflight);
// a failed load is propagated to every waiter and caches nothing, so the next
// caller retries.
package cache

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrBackend marks a cache backing-store failure (e.g. redis unreachable).
// Unlike a loader failure this is a batch-level fault: the orchestrator aborts
// the batch so the outer consumption layer can redeliver it.
var ErrBackend = errors.New("cache backend unavailable")

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enricher_cache_hits_total",
		Help: "Cache hits by tier",
	}, []string{"tier"})
	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enricher_cache_misses_total",
		Help: "Cache misses by tier",
	}, []string{"tier"})
	cacheLoadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enricher_cache_load_failures_total",
		Help: "Loader failures observed through the cache by tier",
	}, []string{"tier"})
)

// LoadFunc fetches the authoritative value on a cache miss.
type LoadFunc func(ctx context.Context) ([]byte, error)

// Store is the cache-aside contract. GetOrLoad returns the cached value when
// present and live, otherwise invokes load exactly once per in-flight key,
// stores the result with the given TTL and returns it. Get is the plain
// lookup batch callers use to split hits from misses before issuing one
// upstream call for the misses. Put supports write-through population.
type Store interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load LoadFunc) ([]byte, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key builds a namespaced cache key: {tenantId}:{entityKind}:{identifier}.
func Key(tenantID, kind string, parts ...string) string {
	elems := append([]string{tenantID, kind}, parts...)
	return strings.Join(elems, ":")
}

// CriteriaHash folds a search criteria into a stable short identifier so
// name/filter lookups share the same key namespace as id lookups.
func CriteriaHash(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
