package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is an immutable, timestamped record of one action taken on a
// case. The store assigns ID and Timestamp when the entry is appended; callers
// only supply Event and Details.
type AuditEntry struct {
	ID        uuid.UUID      `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Details   map[string]any `json:"details,omitempty"`
}

// Audit event names, one per state-mutating operation and one per check.
const (
	EventCaseCreated         = "case_created"
	EventExtracted           = "extraction_completed"
	EventCompletenessChecked = "completeness_checked"
	EventHITLOverride        = "hitl_override"
	EventIdentityMatched     = "identity_matched"
	EventLandlordDocChecked  = "landlord_doc_checked"
	EventAddressCanonical    = "address_canonicalized"
	EventRulesChecked        = "business_rules_checked"
	EventRegistryUpdated     = "registry_updated"
	EventCertificateIssued   = "certificate_generated"
	EventCitizenNotified     = "citizen_notified"
	EventCaseClosed          = "case_closed"
)
