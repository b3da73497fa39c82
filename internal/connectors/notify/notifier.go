// Package notify simulates the citizen email notification collaborator.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"meldeflow/internal/workflow/ports"
)

type Service struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []ports.Notification
}

func New(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

func (s *Service) Send(ctx context.Context, n ports.Notification) error {
	s.mu.Lock()
	s.sent = append(s.sent, n)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "citizen notification sent",
		"case_id", n.CaseID,
		"email", n.Email,
	)
	return nil
}

// Sent returns a copy of delivered notifications for inspection in tests.
func (s *Service) Sent() []ports.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Notification{}, s.sent...)
}
