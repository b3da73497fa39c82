// Package hitl implements the human-in-the-loop override protocol: the one
// sanctioned way a human-supplied correction enters a case without losing the
// original extraction or the provenance of the change.
package hitl

import (
	"context"
	"errors"
	"log/slog"

	"meldeflow/internal/casefile"
	"meldeflow/internal/casefile/metrics"
	"meldeflow/internal/domain"
	"meldeflow/internal/policy"
	"meldeflow/pkg/apperrors"
	"meldeflow/pkg/platform/sentinel"
	"meldeflow/pkg/requestcontext"
)

type Service struct {
	store   casefile.Store
	policy  policy.Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store casefile.Store, pol policy.Policy, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, policy: pol, logger: logger, metrics: m}
}

// Resolution reports the pre- and post-image of an applied override so the
// caller can relay the change back to the reviewing officer.
type Resolution struct {
	CaseID   string       `json:"case_id"`
	Field    domain.Field `json:"field"`
	OldValue string       `json:"old_value"`
	NewValue string       `json:"new_value"`
	Actor    string       `json:"actor"`
}

// ResolveOverride atomically records the correction in overrides and the
// working view, and appends one audit entry. Re-submitting the same value is
// a no-op in effect but still audits: the trail records that a human
// re-confirmed the value, it is not a deduplicated snapshot.
func (s *Service) ResolveOverride(ctx context.Context, caseID string, field domain.Field, value string) (Resolution, error) {
	if !field.Known() || !s.policy.Overridable(field) {
		return Resolution{}, apperrors.Newf(apperrors.CodeUnknownField, "field %q is not an overridable working field", field)
	}

	actor := requestcontext.ActorID(ctx)
	if actor == "" {
		actor = "unknown"
	}

	var resolution Resolution
	_, err := s.store.Apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		if c.Status.Terminal() {
			return domain.AuditEntry{}, apperrors.New(apperrors.CodeCaseClosed, "case is closed")
		}
		oldValue := c.Working[field]
		c.SetOverride(field, value)
		resolution = Resolution{
			CaseID:   caseID,
			Field:    field,
			OldValue: oldValue,
			NewValue: value,
			Actor:    actor,
		}
		return domain.AuditEntry{
			Event: domain.EventHITLOverride,
			Details: map[string]any{
				"field":     string(field),
				"old_value": oldValue,
				"new_value": value,
				"source":    "human",
				"actor":     actor,
			},
		}, nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Resolution{}, apperrors.New(apperrors.CodeCaseNotFound, "unknown case identifier")
		}
		return Resolution{}, err
	}

	s.metrics.IncHITLOverrides()
	s.logger.InfoContext(ctx, "hitl override applied",
		"request_id", requestcontext.RequestID(ctx),
		"case_id", caseID,
		"field", field,
		"actor", actor,
	)
	return resolution, nil
}
