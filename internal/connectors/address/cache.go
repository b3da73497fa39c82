package address

import (
	"context"
	"sync"
	"time"

	"meldeflow/internal/domain"
)

// Cache stores canonicalization results keyed by the raw input string.
type Cache interface {
	Get(ctx context.Context, raw string) (domain.CanonicalAddress, bool, error)
	Put(ctx context.Context, raw string, addr domain.CanonicalAddress, ttl time.Duration) error
}

// Cached decorates a Canonicalizer with a cache. Only unambiguous results are
// cached; an ambiguous parse should be retried against the live service after
// a human has corrected the input.
type Cached struct {
	inner Canonicalizer
	cache Cache
	ttl   time.Duration
}

func NewCached(inner Canonicalizer, cache Cache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: cache, ttl: ttl}
}

func (c *Cached) Canonicalize(ctx context.Context, raw string) (domain.CanonicalAddress, error) {
	if cached, ok, err := c.cache.Get(ctx, raw); err == nil && ok {
		return cached, nil
	}
	addr, err := c.inner.Canonicalize(ctx, raw)
	if err != nil {
		return domain.CanonicalAddress{}, err
	}
	if !addr.Ambiguous {
		// Best effort; a cache write failure must not fail the step.
		_ = c.cache.Put(ctx, raw, addr, c.ttl)
	}
	return addr, nil
}

// InMemoryCache keeps results for the process lifetime with a TTL, mirroring
// the semantics of the Redis cache for single-node runs.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cachedAddress
}

type cachedAddress struct {
	addr     domain.CanonicalAddress
	storedAt time.Time
	ttl      time.Duration
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]cachedAddress)}
}

func (c *InMemoryCache) Get(_ context.Context, raw string) (domain.CanonicalAddress, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.entries[raw]; ok {
		if time.Since(cached.storedAt) < cached.ttl {
			return cached.addr, true, nil
		}
	}
	return domain.CanonicalAddress{}, false, nil
}

func (c *InMemoryCache) Put(_ context.Context, raw string, addr domain.CanonicalAddress, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[raw] = cachedAddress{addr: addr, storedAt: time.Now(), ttl: ttl}
	return nil
}
