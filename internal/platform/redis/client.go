// Package redis holds the shared connection behind the canonical-address
// cache. The service runs without it: a nil client tells the wiring to fall
// back to the in-process cache.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"meldeflow/internal/platform/config"
)

// Client embeds go-redis so cache implementations issue commands directly.
type Client struct {
	*redis.Client
}

// New connects using the configured URL, with pool and timeout settings
// layered on top. An empty URL yields a nil client and no error, which the
// caller treats as "cache not configured".
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	// Fail at startup rather than on the first cached lookup.
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{Client: client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
