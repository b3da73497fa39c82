package workflow

import "meldeflow/internal/domain"

// Step status values. Soft failures are statuses, not errors: the caller
// decides whether to escalate to a human.
const (
	StatusOK           = "ok"
	StatusHITLRequired = "hitl_required"
	StatusMatch        = "match"
	StatusMismatch     = "mismatch"
	StatusValid        = "valid"
	StatusInvalid      = "invalid"
	StatusAmbiguous    = "ambiguous"
	StatusPass         = "pass"
	StatusFail         = "fail"
	StatusUpdated      = "updated"
	StatusConflict     = "conflict"
	StatusGenerated    = "generated"
	StatusSent         = "sent"
	StatusClosed       = "closed"
)

type ExtractResult struct {
	ExtractedFields map[domain.Field]string  `json:"extracted_fields"`
	Confidence      map[domain.Field]float64 `json:"confidence"`
	LowConfFields   []domain.Field           `json:"low_conf_fields"`
}

type CompletenessResult struct {
	Status        string         `json:"status"`
	LowConfFields []domain.Field `json:"low_conf_fields"`
	HITLRequired  bool           `json:"hitl_required"`
}

type IdentityResult struct {
	Status       string  `json:"status"`
	Score        float64 `json:"score"`
	HITLRequired bool    `json:"hitl_required"`
}

type LandlordDocResult struct {
	Status       string `json:"status"`
	HITLRequired bool   `json:"hitl_required"`
}

type AddressResult struct {
	Status           string                  `json:"status"`
	CanonicalAddress domain.CanonicalAddress `json:"canonical_address"`
	HITLRequired     bool                    `json:"hitl_required"`
}

type RulesResult struct {
	Status       string   `json:"status"`
	Violations   []string `json:"violations"`
	HITLRequired bool     `json:"hitl_required"`
}

type RegistryResult struct {
	Status       string `json:"status"`
	HITLRequired bool   `json:"hitl_required"`
}

type CertificateResult struct {
	Status          string `json:"status"`
	CertificatePath string `json:"certificate_path"`
}

type NotifyResult struct {
	Status string `json:"status"`
	Email  string `json:"email"`
}

type CloseResult struct {
	Status   string              `json:"status"`
	AuditLog []domain.AuditEntry `json:"audit_log"`
}
