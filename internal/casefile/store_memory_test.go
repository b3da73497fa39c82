package casefile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"meldeflow/internal/domain"
	"meldeflow/pkg/platform/sentinel"
)

type StoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) newIntake(name string) domain.IntakeData {
	return domain.IntakeData{
		CitizenName:     name,
		CitizenDOB:      "1990-05-15",
		Email:           "citizen@example.com",
		OldAddress:      "Altstraße 5, 67655 Kaiserslautern",
		NewAddressRaw:   "Musterstr 12a KL 12345",
		MoveInDateRaw:   "2026-09-01",
		LandlordDocPath: "uploads/landlord.pdf",
	}
}

func (s *StoreSuite) TestCreate() {
	s.Run("assigns sequential IDs and records creation", func() {
		first, err := s.store.Create(s.ctx, s.newIntake("Max Mustermann"))
		s.Require().NoError(err)
		s.Equal("CASE-0001", first.ID)
		s.Equal(domain.StatusCreated, first.Status)
		s.Require().Len(first.Audit, 1)
		s.Equal(domain.EventCaseCreated, first.Audit[0].Event)
		s.NotNil(first.Overrides)
		s.NotNil(first.Working)

		second, err := s.store.Create(s.ctx, s.newIntake("Erika Mustermann"))
		s.Require().NoError(err)
		s.Equal("CASE-0002", second.ID)
	})
}

func (s *StoreSuite) TestGet() {
	s.Run("returns ErrNotFound for unknown case", func() {
		_, err := s.store.Get(s.ctx, "CASE-9999")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns an isolated snapshot", func() {
		created, err := s.store.Create(s.ctx, s.newIntake("Max Mustermann"))
		s.Require().NoError(err)

		snap, err := s.store.Get(s.ctx, created.ID)
		s.Require().NoError(err)
		snap.Working[domain.FieldNewAddress] = "tampered"
		snap.Audit = append(snap.Audit, domain.AuditEntry{Event: "tampered"})

		fresh, err := s.store.Get(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Empty(fresh.Working[domain.FieldNewAddress])
		s.Len(fresh.Audit, 1)
	})
}

func (s *StoreSuite) TestApply() {
	s.Run("appends exactly one audit entry per mutation", func() {
		created, err := s.store.Create(s.ctx, s.newIntake("Max Mustermann"))
		s.Require().NoError(err)

		updated, err := s.store.Apply(s.ctx, created.ID, func(c *domain.Case) (domain.AuditEntry, error) {
			c.Advance(domain.StatusExtracted)
			return domain.AuditEntry{Event: domain.EventExtracted}, nil
		})
		s.Require().NoError(err)
		s.Equal(domain.StatusExtracted, updated.Status)
		s.Require().Len(updated.Audit, 2)
		s.Equal(domain.EventExtracted, updated.Audit[1].Event)
		s.False(updated.Audit[1].Timestamp.IsZero())
		s.NotEqual(updated.Audit[0].ID, updated.Audit[1].ID)
	})

	s.Run("failing mutation leaves the case untouched", func() {
		created, err := s.store.Create(s.ctx, s.newIntake("Max Mustermann"))
		s.Require().NoError(err)

		boom := errors.New("mutation rejected")
		_, err = s.store.Apply(s.ctx, created.ID, func(c *domain.Case) (domain.AuditEntry, error) {
			c.Status = domain.StatusClosed
			c.Working[domain.FieldNewAddress] = "half written"
			return domain.AuditEntry{}, boom
		})
		s.Require().ErrorIs(err, boom)

		fresh, err := s.store.Get(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusCreated, fresh.Status)
		s.Empty(fresh.Working[domain.FieldNewAddress])
		s.Len(fresh.Audit, 1)
	})

	s.Run("returns ErrNotFound for unknown case", func() {
		_, err := s.store.Apply(s.ctx, "CASE-9999", func(c *domain.Case) (domain.AuditEntry, error) {
			return domain.AuditEntry{Event: "never"}, nil
		})
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StoreSuite) TestConcurrentMutations() {
	created, err := s.store.Create(s.ctx, s.newIntake("Max Mustermann"))
	s.Require().NoError(err)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Apply(s.ctx, created.ID, func(c *domain.Case) (domain.AuditEntry, error) {
				c.SetOverride(domain.FieldMoveInDate, "2026-10-01")
				return domain.AuditEntry{Event: domain.EventHITLOverride}, nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	fresh, err := s.store.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Len(fresh.Audit, workers+1)
	s.Equal("2026-10-01", fresh.Working[domain.FieldMoveInDate])
}

func (s *StoreSuite) TestDistinctCasesDoNotContend() {
	first, err := s.store.Create(s.ctx, s.newIntake("Max Mustermann"))
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx, s.newIntake("Erika Mustermann"))
	s.Require().NoError(err)

	entered := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, err := s.store.Apply(s.ctx, first.ID, func(c *domain.Case) (domain.AuditEntry, error) {
			close(entered)
			<-release
			c.Advance(domain.StatusExtracted)
			return domain.AuditEntry{Event: domain.EventExtracted}, nil
		})
		s.NoError(err)
	}()
	<-entered

	// The first case's lock is now held inside its mutation. Work on the
	// second case must not queue behind it.
	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		_, err := s.store.Apply(s.ctx, second.ID, func(c *domain.Case) (domain.AuditEntry, error) {
			c.SetOverride(domain.FieldMoveInDate, "2026-10-01")
			return domain.AuditEntry{Event: domain.EventHITLOverride}, nil
		})
		s.NoError(err)
		_, err = s.store.Get(s.ctx, second.ID)
		s.NoError(err)
	}()

	select {
	case <-secondDone:
	case <-time.After(2 * time.Second):
		s.FailNow("mutation on a distinct case blocked behind another case's lock")
	}

	close(release)
	<-firstDone

	fresh, err := s.store.Get(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusExtracted, fresh.Status)
}

func (s *StoreSuite) TestList() {
	for _, name := range []string{"A", "B", "C"} {
		_, err := s.store.Create(s.ctx, s.newIntake(name))
		s.Require().NoError(err)
	}
	cases, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(cases, 3)
	s.Equal("CASE-0001", cases[0].ID)
	s.Equal("CASE-0002", cases[1].ID)
	s.Equal("CASE-0003", cases[2].ID)
}

type recordingMirror struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (m *recordingMirror) Publish(_ string, entry domain.AuditEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

func (s *StoreSuite) TestMirror() {
	mirror := &recordingMirror{}
	store := NewInMemoryStore(WithMirror(mirror))

	created, err := store.Create(s.ctx, s.newIntake("Max Mustermann"))
	s.Require().NoError(err)
	_, err = store.Apply(s.ctx, created.ID, func(c *domain.Case) (domain.AuditEntry, error) {
		return domain.AuditEntry{Event: domain.EventExtracted}, nil
	})
	s.Require().NoError(err)

	s.Require().Len(mirror.entries, 2)
	s.Equal(domain.EventCaseCreated, mirror.entries[0].Event)
	s.Equal(domain.EventExtracted, mirror.entries[1].Event)
}
