package workflow

import (
	"context"
	"errors"
	"time"

	"meldeflow/internal/domain"
	"meldeflow/internal/workflow/ports"
	"meldeflow/pkg/apperrors"
	"meldeflow/pkg/platform/sentinel"
)

// UpdateRegistry writes the working fields to the residents registry. A
// registry conflict is a soft failure: it is audited and reported for human
// resolution, not raised as an error.
func (s *Service) UpdateRegistry(ctx context.Context, caseID string) (RegistryResult, error) {
	start := time.Now()
	c, err := s.snapshot(ctx, caseID)
	if err != nil {
		return RegistryResult{}, err
	}

	err = s.registry.Update(ctx, ports.RegistryUpdate{
		CaseID:      c.ID,
		CitizenName: c.Intake.CitizenName,
		CitizenDOB:  c.Intake.CitizenDOB,
		OldAddress:  c.Intake.OldAddress,
		NewAddress:  c.Working[domain.FieldNewAddress],
		MoveInDate:  c.Working[domain.FieldMoveInDate],
	})
	conflict := errors.Is(err, sentinel.ErrConflict)
	if err != nil && !conflict {
		return RegistryResult{}, apperrors.Wrap(apperrors.CodeCollaboratorFailure, "registry update service failed", err)
	}

	status := StatusUpdated
	if conflict {
		status = StatusConflict
	}

	_, err = s.apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		if status == StatusUpdated {
			c.Advance(domain.StatusRegistered)
		}
		return domain.AuditEntry{
			Event:   domain.EventRegistryUpdated,
			Details: map[string]any{"status": status},
		}, nil
	})
	if err != nil {
		return RegistryResult{}, err
	}

	s.observe(ctx, caseID, "update_registry", status, conflict, start)
	return RegistryResult{Status: status, HITLRequired: conflict}, nil
}

// GenerateCertificate renders the registration certificate for the case.
func (s *Service) GenerateCertificate(ctx context.Context, caseID string) (CertificateResult, error) {
	start := time.Now()
	c, err := s.snapshot(ctx, caseID)
	if err != nil {
		return CertificateResult{}, err
	}

	path, err := s.certificates.Generate(ctx, c)
	if err != nil {
		return CertificateResult{}, apperrors.Wrap(apperrors.CodeCollaboratorFailure, "certificate generator failed", err)
	}

	_, err = s.apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		c.Advance(domain.StatusCertified)
		return domain.AuditEntry{
			Event:   domain.EventCertificateIssued,
			Details: map[string]any{"path": path},
		}, nil
	})
	if err != nil {
		return CertificateResult{}, err
	}

	s.observe(ctx, caseID, "generate_certificate", StatusGenerated, false, start)
	return CertificateResult{Status: StatusGenerated, CertificatePath: path}, nil
}

// NotifyCitizen sends the confirmation email to the address supplied at
// intake.
func (s *Service) NotifyCitizen(ctx context.Context, caseID string) (NotifyResult, error) {
	start := time.Now()
	c, err := s.snapshot(ctx, caseID)
	if err != nil {
		return NotifyResult{}, err
	}
	email := c.Intake.Email
	if email == "" {
		return NotifyResult{}, apperrors.New(apperrors.CodeConflict, "case has no citizen email on record")
	}

	err = s.notifier.Send(ctx, ports.Notification{
		CaseID:     c.ID,
		Email:      email,
		NewAddress: c.Working[domain.FieldNewAddress],
	})
	if err != nil {
		return NotifyResult{}, apperrors.Wrap(apperrors.CodeCollaboratorFailure, "notification service failed", err)
	}

	_, err = s.apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		c.Advance(domain.StatusNotified)
		return domain.AuditEntry{
			Event:   domain.EventCitizenNotified,
			Details: map[string]any{"sent_to": email},
		}, nil
	})
	if err != nil {
		return NotifyResult{}, err
	}

	s.observe(ctx, caseID, "notify_citizen", StatusSent, false, start)
	return NotifyResult{Status: StatusSent, Email: email}, nil
}

// CloseCase finalizes the case and returns the complete audit trail in
// chronological order, including the closing entry itself. No transitions are
// defined out of closed; any later step invocation is rejected.
func (s *Service) CloseCase(ctx context.Context, caseID string) (CloseResult, error) {
	start := time.Now()
	if _, err := s.snapshot(ctx, caseID); err != nil {
		return CloseResult{}, err
	}

	closed, err := s.apply(ctx, caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		c.Advance(domain.StatusClosed)
		return domain.AuditEntry{
			Event:   domain.EventCaseClosed,
			Details: map[string]any{"message": "case closed"},
		}, nil
	})
	if err != nil {
		return CloseResult{}, err
	}

	s.observe(ctx, caseID, "close_case_and_audit", StatusClosed, false, start)
	return CloseResult{Status: StatusClosed, AuditLog: closed.Audit}, nil
}
