// Package certificate simulates the registration-certificate renderer.
package certificate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"meldeflow/internal/domain"
)

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// Generate returns a document reference for the case's Meldebescheinigung.
// No PDF is rendered here; the reference shape matches what the real renderer
// would hand back.
func (g *Generator) Generate(_ context.Context, c domain.Case) (string, error) {
	return fmt.Sprintf("certificates/%s-meldebescheinigung-%s.pdf", c.ID, uuid.NewString()[:8]), nil
}
