// Package ports declares the abstract collaborators the workflow calls.
// Concrete simulated implementations live under internal/connectors; real
// backends can be swapped in without touching the step logic.
//
// Every call may fail. Failures surface to the workflow as step failures and
// never mutate case state.
package ports

import (
	"context"

	"meldeflow/internal/domain"
)

// Extractor turns the intake payload into field values plus confidences.
type Extractor interface {
	Extract(ctx context.Context, intake domain.IntakeData) (domain.Extraction, error)
}

// IdentityQuery carries the identity attributes matched against the registry.
type IdentityQuery struct {
	CitizenName string
	CitizenDOB  string
	OldAddress  string
}

// IdentityMatcher scores how well the case identity matches the registry
// record, in [0,1].
type IdentityMatcher interface {
	MatchScore(ctx context.Context, q IdentityQuery) (float64, error)
}

// DocumentValidator checks the landlord confirmation document.
type DocumentValidator interface {
	ValidateLandlordDoc(ctx context.Context, docPath string) (bool, error)
}

// AddressCanonicalizer normalizes a raw address into canonical components.
type AddressCanonicalizer interface {
	Canonicalize(ctx context.Context, raw string) (domain.CanonicalAddress, error)
}

// RulesInput is the working view the rules engine evaluates.
type RulesInput struct {
	CaseID                 string
	Working                map[domain.Field]string
	LandlordSignatureFound bool
}

// RulesEngine returns the list of violated policy rules; empty means pass.
type RulesEngine interface {
	Violations(ctx context.Context, in RulesInput) ([]string, error)
}

// RegistryUpdate carries the fields written to the residents registry.
type RegistryUpdate struct {
	CaseID      string
	CitizenName string
	CitizenDOB  string
	OldAddress  string
	NewAddress  string
	MoveInDate  string
}

// RegistryUpdater applies the address change to the registry. A conflicting
// record is reported as sentinel.ErrConflict.
type RegistryUpdater interface {
	Update(ctx context.Context, u RegistryUpdate) error
}

// CertificateGenerator renders the registration certificate and returns a
// document reference.
type CertificateGenerator interface {
	Generate(ctx context.Context, c domain.Case) (string, error)
}

// Notification is the delivery request for the citizen notification.
type Notification struct {
	CaseID     string
	Email      string
	NewAddress string
}

// Notifier delivers the confirmation to the citizen.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
