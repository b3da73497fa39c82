// Package registry simulates the residents-registry update collaborator. It
// records applied updates in memory so tests and the admin surface can inspect
// what would have been written.
package registry

import (
	"context"
	"sync"

	"meldeflow/internal/workflow/ports"
	"meldeflow/pkg/platform/sentinel"
)

type Client struct {
	mu      sync.Mutex
	applied map[string]ports.RegistryUpdate

	// conflictFn lets tests force the conflict path; nil means no conflicts.
	conflictFn func(ports.RegistryUpdate) bool
}

type Option func(*Client)

// WithConflictFn injects a conflict predicate.
func WithConflictFn(fn func(ports.RegistryUpdate) bool) Option {
	return func(c *Client) {
		c.conflictFn = fn
	}
}

func New(opts ...Option) *Client {
	c := &Client{applied: make(map[string]ports.RegistryUpdate)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Update applies the address change, keyed by citizen identity. Conflicting
// registry state surfaces as sentinel.ErrConflict so the workflow can report
// it as a soft failure.
func (c *Client) Update(_ context.Context, u ports.RegistryUpdate) error {
	if c.conflictFn != nil && c.conflictFn(u) {
		return sentinel.ErrConflict
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied[u.CitizenName+"|"+u.CitizenDOB] = u
	return nil
}

// Applied returns the recorded update for a citizen, if any.
func (c *Client) Applied(citizenName, citizenDOB string) (ports.RegistryUpdate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.applied[citizenName+"|"+citizenDOB]
	return u, ok
}
