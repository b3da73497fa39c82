// Package identity simulates the registry identity-matching collaborator.
package identity

import (
	"context"

	"meldeflow/internal/workflow/ports"
)

type Service struct{}

func New() *Service {
	return &Service{}
}

// MatchScore returns a deterministic score: a complete identity triple matches
// well; missing attributes drop the score below any sane threshold so the
// mismatch path stays reachable.
func (s *Service) MatchScore(_ context.Context, q ports.IdentityQuery) (float64, error) {
	if q.CitizenName == "" || q.CitizenDOB == "" {
		return 0.42, nil
	}
	if q.OldAddress == "" {
		return 0.81, nil
	}
	return 0.94, nil
}
