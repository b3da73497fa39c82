// Package policy centralizes the tunable decision constants of the workflow
// so they live in one place instead of being scattered as literals.
package policy

import (
	"time"

	"meldeflow/internal/domain"
)

// Policy carries the thresholds and field whitelist the workflow and HITL
// protocol consult.
type Policy struct {
	// ConfidenceThreshold is the minimum extraction confidence below which a
	// field forces human review.
	ConfidenceThreshold float64
	// IdentityMatchThreshold is the minimum registry match score; scores at or
	// below it are treated as a mismatch.
	IdentityMatchThreshold float64
	// WorkingFields is the set of fields seeded into the working view and
	// eligible for clerk overrides.
	WorkingFields []domain.Field
}

// Default returns the reference policy.
func Default() Policy {
	return Policy{
		ConfidenceThreshold:    0.8,
		IdentityMatchThreshold: 0.9,
		WorkingFields:          domain.DefaultWorkingFields,
	}
}

// Overridable reports whether a clerk may override f.
func (p Policy) Overridable(f domain.Field) bool {
	for _, wf := range p.WorkingFields {
		if wf == f {
			return true
		}
	}
	return false
}

// AddressCacheTTL bounds how long canonicalization results may be reused.
const AddressCacheTTL = 24 * time.Hour

// Notes is the human-readable address-change policy served to reviewing
// officers and calling agents.
const Notes = `Address Change Policy:
- Citizen must provide landlord confirmation (signed, recent).
- Move-in date must be valid and within the registration window.
- Address must be canonical and belong to a valid municipality.
- If any check is low confidence, pause and involve an officer (HITL).`
