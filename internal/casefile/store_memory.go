package casefile

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"meldeflow/internal/domain"
	"meldeflow/pkg/platform/sentinel"
	"meldeflow/pkg/requestcontext"
)

// InMemoryStore keeps cases for the lifetime of the process. The outer lock
// only guards the map; each case carries its own mutex, so mutations on
// distinct cases never contend.
type InMemoryStore struct {
	mu     sync.RWMutex
	cases  map[string]*caseEntry
	seq    int
	mirror AuditMirror
}

type caseEntry struct {
	mu sync.Mutex
	c  *domain.Case
}

// Option configures the store.
type Option func(*InMemoryStore)

// WithMirror attaches an external audit sink.
func WithMirror(m AuditMirror) Option {
	return func(s *InMemoryStore) {
		if m != nil {
			s.mirror = m
		}
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		cases:  make(map[string]*caseEntry),
		mirror: NopMirror{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Create(ctx context.Context, intake domain.IntakeData) (domain.Case, error) {
	s.mu.Lock()
	s.seq++
	id := fmt.Sprintf("CASE-%04d", s.seq)
	now := requestcontext.Now(ctx)
	c := &domain.Case{
		ID:        id,
		Intake:    intake,
		Overrides: make(map[domain.Field]string),
		Working:   make(map[domain.Field]string),
		Status:    domain.StatusCreated,
		CreatedAt: now,
	}
	c.Audit = append(c.Audit, domain.AuditEntry{
		ID:        uuid.New(),
		Timestamp: now,
		Event:     domain.EventCaseCreated,
		Details:   map[string]any{"message": "case created with citizen data"},
	})
	s.cases[id] = &caseEntry{c: c}
	s.mu.Unlock()

	s.mirror.Publish(id, c.Audit[0])
	return c.Clone(), nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (domain.Case, error) {
	entry, err := s.entry(id)
	if err != nil {
		return domain.Case{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.c.Clone(), nil
}

// Apply runs the mutation on a working copy and swaps it in only on success,
// so a failing mutation can never leave a half-written case behind.
func (s *InMemoryStore) Apply(ctx context.Context, id string, fn Mutation) (domain.Case, error) {
	entry, err := s.entry(id)
	if err != nil {
		return domain.Case{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	work := entry.c.Clone()
	auditEntry, err := fn(&work)
	if err != nil {
		return domain.Case{}, err
	}
	auditEntry.ID = uuid.New()
	auditEntry.Timestamp = requestcontext.Now(ctx)
	work.Audit = append(work.Audit, auditEntry)
	entry.c = &work

	s.mirror.Publish(id, auditEntry)
	return work.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]domain.Case, error) {
	s.mu.RLock()
	entries := make([]*caseEntry, 0, len(s.cases))
	for _, e := range s.cases {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]domain.Case, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.c.Clone())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) entry(id string) (*caseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cases[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return entry, nil
}
