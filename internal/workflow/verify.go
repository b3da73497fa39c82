package workflow

import (
	"context"
	"time"

	"meldeflow/internal/domain"
	"meldeflow/internal/workflow/ports"
	"meldeflow/pkg/apperrors"
)

// MatchIdentity scores the case identity against the residents registry.
// A score at or below the policy threshold is a mismatch and needs a human.
func (s *Service) MatchIdentity(ctx context.Context, caseID string) (IdentityResult, error) {
	start := time.Now()
	c, err := s.snapshot(ctx, caseID)
	if err != nil {
		return IdentityResult{}, err
	}

	score, err := s.identity.MatchScore(ctx, ports.IdentityQuery{
		CitizenName: c.Intake.CitizenName,
		CitizenDOB:  c.Intake.CitizenDOB,
		OldAddress:  c.Intake.OldAddress,
	})
	if err != nil {
		return IdentityResult{}, apperrors.Wrap(apperrors.CodeCollaboratorFailure, "identity matching service failed", err)
	}

	status := StatusMatch
	if score <= s.policy.IdentityMatchThreshold {
		status = StatusMismatch
	}
	hitl := status != StatusMatch

	_, err = s.apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		return domain.AuditEntry{
			Event:   domain.EventIdentityMatched,
			Details: map[string]any{"score": score, "status": status},
		}, nil
	})
	if err != nil {
		return IdentityResult{}, err
	}

	s.observe(ctx, caseID, "match_registry_identity", status, hitl, start)
	return IdentityResult{Status: status, Score: score, HITLRequired: hitl}, nil
}

// ValidateLandlordDoc checks the landlord confirmation document.
func (s *Service) ValidateLandlordDoc(ctx context.Context, caseID string) (LandlordDocResult, error) {
	start := time.Now()
	c, err := s.snapshot(ctx, caseID)
	if err != nil {
		return LandlordDocResult{}, err
	}

	valid, err := s.documents.ValidateLandlordDoc(ctx, c.Intake.LandlordDocPath)
	if err != nil {
		return LandlordDocResult{}, apperrors.Wrap(apperrors.CodeCollaboratorFailure, "document validation service failed", err)
	}

	status := StatusValid
	if !valid {
		status = StatusInvalid
	}

	_, err = s.apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		return domain.AuditEntry{
			Event:   domain.EventLandlordDocChecked,
			Details: map[string]any{"status": status},
		}, nil
	})
	if err != nil {
		return LandlordDocResult{}, err
	}

	s.observe(ctx, caseID, "validate_landlord_confirmation", status, !valid, start)
	return LandlordDocResult{Status: status, HITLRequired: !valid}, nil
}

// CanonicalizeAddress normalizes the working new address. It always reads the
// working view, so an override applied after a failed attempt is picked up on
// re-run.
func (s *Service) CanonicalizeAddress(ctx context.Context, caseID string) (AddressResult, error) {
	start := time.Now()
	c, err := s.snapshot(ctx, caseID)
	if err != nil {
		return AddressResult{}, err
	}
	raw, ok := c.Working[domain.FieldNewAddress]
	if !ok || raw == "" {
		return AddressResult{}, apperrors.New(apperrors.CodeConflict, "no working new address; run extraction first")
	}

	canonical, err := s.addresses.Canonicalize(ctx, raw)
	if err != nil {
		return AddressResult{}, apperrors.Wrap(apperrors.CodeCollaboratorFailure, "address canonicalization service failed", err)
	}

	status := StatusOK
	if canonical.Ambiguous {
		status = StatusAmbiguous
	}

	_, err = s.apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		return domain.AuditEntry{
			Event: domain.EventAddressCanonical,
			Details: map[string]any{
				"status":      status,
				"postal_code": canonical.PostalCode,
				"city":        canonical.City,
			},
		}, nil
	})
	if err != nil {
		return AddressResult{}, err
	}

	s.observe(ctx, caseID, "canonicalize_address", status, canonical.Ambiguous, start)
	return AddressResult{Status: status, CanonicalAddress: canonical, HITLRequired: canonical.Ambiguous}, nil
}

// CheckBusinessRules runs the policy rules over the working view. A clean pass
// marks the case verified.
func (s *Service) CheckBusinessRules(ctx context.Context, caseID string) (RulesResult, error) {
	start := time.Now()
	c, err := s.snapshot(ctx, caseID)
	if err != nil {
		return RulesResult{}, err
	}

	signatureFound := false
	if c.Extraction != nil {
		signatureFound = c.Extraction.Fields[domain.FieldLandlordSignature] == "true"
	}
	violations, err := s.rules.Violations(ctx, ports.RulesInput{
		CaseID:                 c.ID,
		Working:                c.Working,
		LandlordSignatureFound: signatureFound,
	})
	if err != nil {
		return RulesResult{}, apperrors.Wrap(apperrors.CodeCollaboratorFailure, "rules engine failed", err)
	}

	status := StatusPass
	if len(violations) > 0 {
		status = StatusFail
	}
	if violations == nil {
		violations = []string{}
	}

	_, err = s.apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		if status == StatusPass {
			c.Advance(domain.StatusVerified)
		}
		return domain.AuditEntry{
			Event:   domain.EventRulesChecked,
			Details: map[string]any{"status": status, "violations": violations},
		}, nil
	})
	if err != nil {
		return RulesResult{}, err
	}

	s.observe(ctx, caseID, "check_business_rules", status, status == StatusFail, start)
	return RulesResult{Status: status, Violations: violations, HITLRequired: status == StatusFail}, nil
}
