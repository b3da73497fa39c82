package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"meldeflow/internal/domain"
	"meldeflow/internal/platform/redis"
)

// RedisCache shares canonicalization results across instances.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(raw string) string {
	return "meldeflow:addr:" + raw
}

func (c *RedisCache) Get(ctx context.Context, raw string) (domain.CanonicalAddress, bool, error) {
	payload, err := c.client.Get(ctx, cacheKey(raw)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.CanonicalAddress{}, false, nil
	}
	if err != nil {
		return domain.CanonicalAddress{}, false, fmt.Errorf("address cache get: %w", err)
	}
	var addr domain.CanonicalAddress
	if err := json.Unmarshal(payload, &addr); err != nil {
		return domain.CanonicalAddress{}, false, fmt.Errorf("address cache decode: %w", err)
	}
	return addr, true, nil
}

func (c *RedisCache) Put(ctx context.Context, raw string, addr domain.CanonicalAddress, ttl time.Duration) error {
	payload, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("address cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(raw), payload, ttl).Err(); err != nil {
		return fmt.Errorf("address cache put: %w", err)
	}
	return nil
}
