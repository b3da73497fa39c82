// Package casefile owns case records. Every mutation flows through
// Store.Apply so per-case serialization, audit completeness, and the
// no-partial-writes rule are enforced in one place rather than by convention.
package casefile

import (
	"context"

	"meldeflow/internal/domain"
)

// Mutation is a single atomic change to one case. It mutates the passed copy
// and returns exactly one audit entry describing what changed. Returning an
// error discards the mutation entirely: no state change, no audit entry.
//
// The store assigns the entry's ID and timestamp and appends it; mutations
// must not touch c.Audit themselves.
type Mutation func(c *domain.Case) (domain.AuditEntry, error)

// Store is the exclusive owner of all case records.
//
// Apply calls on the same case serialize; calls on distinct cases proceed in
// parallel. Get returns a deep-copied snapshot, so no caller ever holds a
// live reference into the store.
type Store interface {
	Create(ctx context.Context, intake domain.IntakeData) (domain.Case, error)
	Get(ctx context.Context, id string) (domain.Case, error)
	Apply(ctx context.Context, id string, fn Mutation) (domain.Case, error)
	List(ctx context.Context) ([]domain.Case, error)
}

// AuditMirror receives a copy of every appended audit entry. Implementations
// must not block; the store calls it inside the per-case critical section.
type AuditMirror interface {
	Publish(caseID string, entry domain.AuditEntry)
}

// NopMirror satisfies AuditMirror when no external sink is configured.
type NopMirror struct{}

func (NopMirror) Publish(string, domain.AuditEntry) {}
