package workflow

import (
	"context"
	"sort"
	"time"

	"meldeflow/internal/domain"
	"meldeflow/pkg/apperrors"
)

// Extract runs the extraction collaborator over the intake payload, stores the
// result, and seeds the working view. Re-running replaces the extraction but
// keeps existing overrides on top: a human correction survives re-extraction.
func (s *Service) Extract(ctx context.Context, caseID string) (ExtractResult, error) {
	start := time.Now()
	c, err := s.snapshot(ctx, caseID)
	if err != nil {
		return ExtractResult{}, err
	}

	extraction, err := s.extractor.Extract(ctx, c.Intake)
	if err != nil {
		return ExtractResult{}, apperrors.Wrap(apperrors.CodeCollaboratorFailure, "extraction service failed", err)
	}
	lowConf := s.lowConfidenceFields(extraction.Confidence)

	_, err = s.apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		c.Extraction = &extraction
		c.SeedWorking(s.policy.WorkingFields)
		c.Advance(domain.StatusExtracted)
		return domain.AuditEntry{
			Event:   domain.EventExtracted,
			Details: map[string]any{"low_conf": fieldNames(lowConf)},
		}, nil
	})
	if err != nil {
		return ExtractResult{}, err
	}

	s.observe(ctx, caseID, "extract", StatusOK, false, start)
	return ExtractResult{
		ExtractedFields: extraction.Fields,
		Confidence:      extraction.Confidence,
		LowConfFields:   lowConf,
	}, nil
}

// CheckCompleteness reports the extracted fields whose confidence falls below
// the policy threshold. It writes nothing but the audit record of the check.
func (s *Service) CheckCompleteness(ctx context.Context, caseID string) (CompletenessResult, error) {
	start := time.Now()
	c, err := s.snapshot(ctx, caseID)
	if err != nil {
		return CompletenessResult{}, err
	}
	if c.Extraction == nil {
		return CompletenessResult{}, apperrors.New(apperrors.CodeConflict, "extraction has not run for this case")
	}

	lowConf := s.lowConfidenceFields(c.Extraction.Confidence)
	status := StatusOK
	hitl := len(lowConf) > 0
	if hitl {
		status = StatusHITLRequired
	}

	_, err = s.apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		if hitl {
			c.Advance(domain.StatusInReview)
		}
		return domain.AuditEntry{
			Event:   domain.EventCompletenessChecked,
			Details: map[string]any{"status": status, "low_conf": fieldNames(lowConf)},
		}, nil
	})
	if err != nil {
		return CompletenessResult{}, err
	}

	s.observe(ctx, caseID, "check_completeness", status, hitl, start)
	return CompletenessResult{Status: status, LowConfFields: lowConf, HITLRequired: hitl}, nil
}

func (s *Service) lowConfidenceFields(confidence map[domain.Field]float64) []domain.Field {
	var low []domain.Field
	for f, score := range confidence {
		if score < s.policy.ConfidenceThreshold {
			low = append(low, f)
		}
	}
	sort.Slice(low, func(i, j int) bool { return low[i] < low[j] })
	return low
}

func fieldNames(fields []domain.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}
