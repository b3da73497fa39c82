// Package document simulates the landlord-confirmation validation
// collaborator.
package document

import (
	"context"
	"strings"
)

type Service struct{}

func New() *Service {
	return &Service{}
}

// ValidateLandlordDoc accepts any referenced PDF. A missing or non-PDF
// reference is invalid and routes the case to a human.
func (s *Service) ValidateLandlordDoc(_ context.Context, docPath string) (bool, error) {
	return docPath != "" && strings.HasSuffix(strings.ToLower(docPath), ".pdf"), nil
}
