package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvance(t *testing.T) {
	c := Case{Status: StatusInReview}

	c.Advance(StatusVerified)
	assert.Equal(t, StatusVerified, c.Status)

	// Re-running an earlier step never regresses the lifecycle.
	c.Advance(StatusExtracted)
	assert.Equal(t, StatusVerified, c.Status)
}

func TestSeedWorking(t *testing.T) {
	c := Case{
		Extraction: &Extraction{
			Fields: map[Field]string{
				FieldNewAddress: "Musterstr 12a KL 12345",
				FieldMoveInDate: "2026-09-01",
			},
		},
		Overrides: map[Field]string{},
		Working:   map[Field]string{},
	}

	c.SeedWorking(DefaultWorkingFields)
	assert.Equal(t, "Musterstr 12a KL 12345", c.Working[FieldNewAddress])
	assert.Equal(t, "2026-09-01", c.Working[FieldMoveInDate])

	c.SetOverride(FieldNewAddress, "Musterstraße 12a, 67655 Kaiserslautern")
	assert.Equal(t, "Musterstraße 12a, 67655 Kaiserslautern", c.Working[FieldNewAddress])

	// Re-seeding after a fresh extraction keeps the override on top.
	c.Extraction.Fields[FieldNewAddress] = "Musterstr 12a KL 12345 (rescan)"
	c.SeedWorking(DefaultWorkingFields)
	assert.Equal(t, "Musterstraße 12a, 67655 Kaiserslautern", c.Working[FieldNewAddress])
	assert.Equal(t, "2026-09-01", c.Working[FieldMoveInDate])
}

func TestClone(t *testing.T) {
	original := Case{
		ID: "CASE-0001",
		Extraction: &Extraction{
			Fields:     map[Field]string{FieldNewAddress: "a"},
			Confidence: map[Field]float64{FieldNewAddress: 0.5},
		},
		Overrides: map[Field]string{FieldNewAddress: "b"},
		Working:   map[Field]string{FieldNewAddress: "b"},
		Audit:     []AuditEntry{{Event: EventCaseCreated}},
	}

	clone := original.Clone()
	clone.Extraction.Fields[FieldNewAddress] = "tampered"
	clone.Overrides[FieldNewAddress] = "tampered"
	clone.Working[FieldNewAddress] = "tampered"
	clone.Audit[0].Event = "tampered"

	assert.Equal(t, "a", original.Extraction.Fields[FieldNewAddress])
	assert.Equal(t, "b", original.Overrides[FieldNewAddress])
	assert.Equal(t, "b", original.Working[FieldNewAddress])
	assert.Equal(t, EventCaseCreated, original.Audit[0].Event)
}
