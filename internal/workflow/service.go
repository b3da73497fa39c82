// Package workflow implements the fixed step sequence of an address-change
// case. Steps are idempotent per invocation: each re-reads the current working
// view, performs its check or transform against the collaborators, and writes
// results back through the case store. Nothing here assumes a step runs
// exactly once; the orchestrating caller may loop through HITL resolution and
// re-run any step.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"meldeflow/internal/casefile"
	"meldeflow/internal/domain"
	"meldeflow/internal/policy"
	"meldeflow/internal/workflow/metrics"
	"meldeflow/internal/workflow/ports"
	"meldeflow/pkg/apperrors"
	"meldeflow/pkg/platform/sentinel"
	"meldeflow/pkg/requestcontext"
)

type Service struct {
	store        casefile.Store
	extractor    ports.Extractor
	identity     ports.IdentityMatcher
	documents    ports.DocumentValidator
	addresses    ports.AddressCanonicalizer
	rules        ports.RulesEngine
	registry     ports.RegistryUpdater
	certificates ports.CertificateGenerator
	notifier     ports.Notifier
	policy       policy.Policy
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// Collaborators bundles the external services so the constructor stays
// readable at the wiring site.
type Collaborators struct {
	Extractor    ports.Extractor
	Identity     ports.IdentityMatcher
	Documents    ports.DocumentValidator
	Addresses    ports.AddressCanonicalizer
	Rules        ports.RulesEngine
	Registry     ports.RegistryUpdater
	Certificates ports.CertificateGenerator
	Notifier     ports.Notifier
}

func NewService(store casefile.Store, collab Collaborators, pol policy.Policy, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:        store,
		extractor:    collab.Extractor,
		identity:     collab.Identity,
		documents:    collab.Documents,
		addresses:    collab.Addresses,
		rules:        collab.Rules,
		registry:     collab.Registry,
		certificates: collab.Certificates,
		notifier:     collab.Notifier,
		policy:       pol,
		logger:       logger,
		metrics:      m,
	}
}

// snapshot fetches the current case and rejects steps on closed cases. Closed
// is terminal: further step invocations fail rather than silently re-running.
func (s *Service) snapshot(ctx context.Context, caseID string) (domain.Case, error) {
	c, err := s.store.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Case{}, apperrors.New(apperrors.CodeCaseNotFound, "unknown case identifier")
		}
		return domain.Case{}, err
	}
	if c.Status.Terminal() {
		return domain.Case{}, apperrors.New(apperrors.CodeCaseClosed, "case is closed")
	}
	return c, nil
}

// apply wraps store.Apply with not-found translation for steps. The terminal
// check runs again inside the mutation: the snapshot check is advisory, and a
// case closed between snapshot and write must not be mutated.
func (s *Service) apply(ctx context.Context, caseID string, fn casefile.Mutation) (domain.Case, error) {
	c, err := s.store.Apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		if c.Status.Terminal() {
			return domain.AuditEntry{}, apperrors.New(apperrors.CodeCaseClosed, "case is closed")
		}
		return fn(c)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Case{}, apperrors.New(apperrors.CodeCaseNotFound, "unknown case identifier")
		}
		return domain.Case{}, err
	}
	return c, nil
}

// observe records metrics and a log line for one completed step invocation.
func (s *Service) observe(ctx context.Context, caseID, step, status string, hitl bool, start time.Time) {
	s.metrics.ObserveStep(step, status, time.Since(start))
	if hitl {
		s.metrics.IncHITLRequired(step)
	}
	s.logger.InfoContext(ctx, "workflow step completed",
		"request_id", requestcontext.RequestID(ctx),
		"case_id", caseID,
		"step", step,
		"status", status,
		"hitl_required", hitl,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
