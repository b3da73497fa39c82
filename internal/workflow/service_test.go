package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meldeflow/internal/casefile"
	"meldeflow/internal/connectors/address"
	"meldeflow/internal/connectors/certificate"
	"meldeflow/internal/connectors/document"
	"meldeflow/internal/connectors/extraction"
	"meldeflow/internal/connectors/identity"
	"meldeflow/internal/connectors/notify"
	"meldeflow/internal/connectors/registry"
	"meldeflow/internal/connectors/rules"
	"meldeflow/internal/domain"
	"meldeflow/internal/policy"
	"meldeflow/internal/workflow/ports"
	"meldeflow/pkg/apperrors"
)

type fixture struct {
	svc      *Service
	store    casefile.Store
	registry *registry.Client
	notifier *notify.Service
	caseID   string
}

type fixtureOpt func(*Collaborators)

func newFixture(t *testing.T, opts ...fixtureOpt) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := casefile.NewInMemoryStore()
	reg := registry.New()
	notifier := notify.New(logger)

	collab := Collaborators{
		Extractor:    extraction.New(),
		Identity:     identity.New(),
		Documents:    document.New(),
		Addresses:    address.New(),
		Rules:        rules.New(),
		Registry:     reg,
		Certificates: certificate.New(),
		Notifier:     notifier,
	}
	for _, opt := range opts {
		opt(&collab)
	}
	svc := NewService(store, collab, policy.Default(), logger, nil)

	c, err := store.Create(context.Background(), domain.IntakeData{
		CitizenName:     "Max Mustermann",
		CitizenDOB:      "1990-05-15",
		Email:           "max@example.com",
		OldAddress:      "Altstraße 5, 67655 Kaiserslautern",
		NewAddressRaw:   "Musterstr 12a KL 12345",
		MoveInDateRaw:   time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		LandlordDocPath: "uploads/landlord-confirmation.pdf",
		IDDocPath:       "uploads/id-card.pdf",
	})
	require.NoError(t, err)

	return &fixture{svc: svc, store: store, registry: reg, notifier: notifier, caseID: c.ID}
}

func (f *fixture) snapshot(t *testing.T) domain.Case {
	t.Helper()
	c, err := f.store.Get(context.Background(), f.caseID)
	require.NoError(t, err)
	return c
}

func (f *fixture) override(t *testing.T, field domain.Field, value string) {
	t.Helper()
	_, err := f.store.Apply(context.Background(), f.caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		c.SetOverride(field, value)
		return domain.AuditEntry{Event: domain.EventHITLOverride}, nil
	})
	require.NoError(t, err)
}

// TestHappyPathWithOverride walks a messy intake through the full sequence:
// low extraction confidence pauses the case, a human corrects the address, and
// every later step operates on the corrected working view.
func TestHappyPathWithOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	extract, err := f.svc.Extract(ctx, f.caseID)
	require.NoError(t, err)
	assert.InDelta(t, 0.73, extract.Confidence[domain.FieldNewAddress], 0.001)
	assert.Equal(t, []domain.Field{domain.FieldNewAddress}, extract.LowConfFields)
	assert.Equal(t, domain.StatusExtracted, f.snapshot(t).Status)

	completeness, err := f.svc.CheckCompleteness(ctx, f.caseID)
	require.NoError(t, err)
	assert.Equal(t, StatusHITLRequired, completeness.Status)
	assert.True(t, completeness.HITLRequired)
	assert.Equal(t, []domain.Field{domain.FieldNewAddress}, completeness.LowConfFields)
	assert.Equal(t, domain.StatusInReview, f.snapshot(t).Status)

	f.override(t, domain.FieldNewAddress, "Musterstraße 12a, 67655 Kaiserslautern")

	identityRes, err := f.svc.MatchIdentity(ctx, f.caseID)
	require.NoError(t, err)
	assert.Equal(t, StatusMatch, identityRes.Status)
	assert.InDelta(t, 0.94, identityRes.Score, 0.001)

	docRes, err := f.svc.ValidateLandlordDoc(ctx, f.caseID)
	require.NoError(t, err)
	assert.Equal(t, StatusValid, docRes.Status)

	addrRes, err := f.svc.CanonicalizeAddress(ctx, f.caseID)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, addrRes.Status)
	assert.Equal(t, "Musterstraße", addrRes.CanonicalAddress.Street)
	assert.Equal(t, "67655", addrRes.CanonicalAddress.PostalCode)
	assert.Equal(t, "Kaiserslautern", addrRes.CanonicalAddress.City)

	rulesRes, err := f.svc.CheckBusinessRules(ctx, f.caseID)
	require.NoError(t, err)
	assert.Equal(t, StatusPass, rulesRes.Status)
	assert.Empty(t, rulesRes.Violations)
	assert.Equal(t, domain.StatusVerified, f.snapshot(t).Status)

	regRes, err := f.svc.UpdateRegistry(ctx, f.caseID)
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, regRes.Status)
	applied, ok := f.registry.Applied("Max Mustermann", "1990-05-15")
	require.True(t, ok)
	assert.Equal(t, "Musterstraße 12a, 67655 Kaiserslautern", applied.NewAddress)
	assert.Equal(t, domain.StatusRegistered, f.snapshot(t).Status)

	certRes, err := f.svc.GenerateCertificate(ctx, f.caseID)
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, certRes.Status)
	assert.True(t, strings.HasPrefix(certRes.CertificatePath, "certificates/"+f.caseID+"-meldebescheinigung-"))

	notifyRes, err := f.svc.NotifyCitizen(ctx, f.caseID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, notifyRes.Status)
	require.Len(t, f.notifier.Sent(), 1)
	assert.Equal(t, "max@example.com", f.notifier.Sent()[0].Email)

	closeRes, err := f.svc.CloseCase(ctx, f.caseID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closeRes.Status)
	assert.Equal(t, domain.StatusClosed, f.snapshot(t).Status)

	var events []string
	for _, e := range closeRes.AuditLog {
		events = append(events, e.Event)
	}
	assert.Equal(t, []string{
		domain.EventCaseCreated,
		domain.EventExtracted,
		domain.EventCompletenessChecked,
		domain.EventHITLOverride,
		domain.EventIdentityMatched,
		domain.EventLandlordDocChecked,
		domain.EventAddressCanonical,
		domain.EventRulesChecked,
		domain.EventRegistryUpdated,
		domain.EventCertificateIssued,
		domain.EventCitizenNotified,
		domain.EventCaseClosed,
	}, events)
}

func TestExtract(t *testing.T) {
	t.Run("seeds the working view from extraction", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Extract(context.Background(), f.caseID)
		require.NoError(t, err)

		c := f.snapshot(t)
		assert.Equal(t, "Musterstr 12a KL 12345", c.Working[domain.FieldNewAddress])
		assert.NotEmpty(t, c.Working[domain.FieldMoveInDate])
	})

	t.Run("re-extraction keeps overrides on top", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.svc.Extract(ctx, f.caseID)
		require.NoError(t, err)
		f.override(t, domain.FieldNewAddress, "Musterstraße 12a, 67655 Kaiserslautern")

		_, err = f.svc.Extract(ctx, f.caseID)
		require.NoError(t, err)

		c := f.snapshot(t)
		assert.Equal(t, "Musterstraße 12a, 67655 Kaiserslautern", c.Working[domain.FieldNewAddress])
		assert.Equal(t, "Musterstr 12a KL 12345", c.Extraction.Fields[domain.FieldNewAddress])
	})

	t.Run("collaborator failure leaves the case unchanged", func(t *testing.T) {
		f := newFixture(t, func(c *Collaborators) {
			c.Extractor = failingExtractor{}
		})
		before := f.snapshot(t)

		_, err := f.svc.Extract(context.Background(), f.caseID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeCollaboratorFailure, apperrors.CodeOf(err))

		after := f.snapshot(t)
		assert.Equal(t, before.Status, after.Status)
		assert.Len(t, after.Audit, len(before.Audit))
	})

	t.Run("unknown case", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Extract(context.Background(), "CASE-9999")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeCaseNotFound, apperrors.CodeOf(err))
	})
}

func TestCheckCompleteness(t *testing.T) {
	t.Run("rejects check before extraction", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CheckCompleteness(context.Background(), f.caseID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	})

	t.Run("passes when everything is confident", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.store.Apply(ctx, f.caseID, func(c *domain.Case) (domain.AuditEntry, error) {
			c.Extraction = &domain.Extraction{
				Fields:     map[domain.Field]string{domain.FieldNewAddress: "Musterstraße 12a, 67655 Kaiserslautern"},
				Confidence: map[domain.Field]float64{domain.FieldNewAddress: 0.95},
			}
			c.SeedWorking(domain.DefaultWorkingFields)
			c.Advance(domain.StatusExtracted)
			return domain.AuditEntry{Event: domain.EventExtracted}, nil
		})
		require.NoError(t, err)

		res, err := f.svc.CheckCompleteness(ctx, f.caseID)
		require.NoError(t, err)
		assert.Equal(t, StatusOK, res.Status)
		assert.False(t, res.HITLRequired)
		assert.Equal(t, domain.StatusExtracted, f.snapshot(t).Status)
	})
}

func TestCanonicalizeAddress(t *testing.T) {
	t.Run("rejects when no working address exists", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CanonicalizeAddress(context.Background(), f.caseID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	})

	t.Run("reads the overridden working value on re-run", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.svc.Extract(ctx, f.caseID)
		require.NoError(t, err)

		res, err := f.svc.CanonicalizeAddress(ctx, f.caseID)
		require.NoError(t, err)
		assert.Equal(t, StatusOK, res.Status)

		f.override(t, domain.FieldNewAddress, "Hauptstr 5")
		res, err = f.svc.CanonicalizeAddress(ctx, f.caseID)
		require.NoError(t, err)
		assert.Equal(t, StatusAmbiguous, res.Status)
		assert.True(t, res.HITLRequired)
	})
}

func TestUpdateRegistry(t *testing.T) {
	t.Run("conflict is a soft failure", func(t *testing.T) {
		f := newFixture(t, func(c *Collaborators) {
			c.Registry = registry.New(registry.WithConflictFn(func(ports.RegistryUpdate) bool { return true }))
		})
		ctx := context.Background()
		_, err := f.svc.Extract(ctx, f.caseID)
		require.NoError(t, err)

		res, err := f.svc.UpdateRegistry(ctx, f.caseID)
		require.NoError(t, err)
		assert.Equal(t, StatusConflict, res.Status)
		assert.True(t, res.HITLRequired)

		c := f.snapshot(t)
		assert.NotEqual(t, domain.StatusRegistered, c.Status)
		last := c.Audit[len(c.Audit)-1]
		assert.Equal(t, domain.EventRegistryUpdated, last.Event)
		assert.Equal(t, StatusConflict, last.Details["status"])
	})

	t.Run("case closed during the registry call is not mutated", func(t *testing.T) {
		reg := &closingRegistry{}
		f := newFixture(t, func(c *Collaborators) {
			c.Registry = reg
		})
		ctx := context.Background()
		_, err := f.svc.Extract(ctx, f.caseID)
		require.NoError(t, err)
		reg.store = f.store
		reg.caseID = f.caseID

		_, err = f.svc.UpdateRegistry(ctx, f.caseID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeCaseClosed, apperrors.CodeOf(err))

		c := f.snapshot(t)
		assert.Equal(t, domain.StatusClosed, c.Status)
		assert.Equal(t, domain.EventCaseClosed, c.Audit[len(c.Audit)-1].Event)
	})

	t.Run("hard failure writes nothing", func(t *testing.T) {
		f := newFixture(t, func(c *Collaborators) {
			c.Registry = failingRegistry{}
		})
		ctx := context.Background()
		_, err := f.svc.Extract(ctx, f.caseID)
		require.NoError(t, err)
		before := f.snapshot(t)

		_, err = f.svc.UpdateRegistry(ctx, f.caseID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeCollaboratorFailure, apperrors.CodeOf(err))
		assert.Len(t, f.snapshot(t).Audit, len(before.Audit))
	})
}

func TestNotifyCitizen(t *testing.T) {
	t.Run("rejects a case without email", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		store := casefile.NewInMemoryStore()
		svc := NewService(store, Collaborators{Notifier: notify.New(logger)}, policy.Default(), logger, nil)

		c, err := store.Create(context.Background(), domain.IntakeData{CitizenName: "Max"})
		require.NoError(t, err)

		_, err = svc.NotifyCitizen(context.Background(), c.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	})
}

func TestClosedCaseRejectsSteps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CloseCase(ctx, f.caseID)
	require.NoError(t, err)

	_, err = f.svc.Extract(ctx, f.caseID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCaseClosed, apperrors.CodeOf(err))

	_, err = f.svc.CloseCase(ctx, f.caseID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCaseClosed, apperrors.CodeOf(err))
}

func TestMatchIdentityMismatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := casefile.NewInMemoryStore()
	svc := NewService(store, Collaborators{Identity: identity.New()}, policy.Default(), logger, nil)

	// No old address on file drops the score below the threshold.
	c, err := store.Create(context.Background(), domain.IntakeData{
		CitizenName: "Max Mustermann",
		CitizenDOB:  "1990-05-15",
	})
	require.NoError(t, err)

	res, err := svc.MatchIdentity(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusMismatch, res.Status)
	assert.True(t, res.HITLRequired)
}

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, domain.IntakeData) (domain.Extraction, error) {
	return domain.Extraction{}, errors.New("ocr backend unavailable")
}

// closingRegistry closes the case from inside the collaborator call, so the
// step's own write lands on an already-closed case.
type closingRegistry struct {
	store  casefile.Store
	caseID string
}

func (r *closingRegistry) Update(ctx context.Context, _ ports.RegistryUpdate) error {
	_, err := r.store.Apply(ctx, r.caseID, func(c *domain.Case) (domain.AuditEntry, error) {
		c.Advance(domain.StatusClosed)
		return domain.AuditEntry{Event: domain.EventCaseClosed}, nil
	})
	return err
}

type failingRegistry struct{}

func (failingRegistry) Update(context.Context, ports.RegistryUpdate) error {
	return errors.New("registry unavailable")
}
