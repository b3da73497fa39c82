package domain

import "time"

// IntakeData is the original citizen-submitted payload. Immutable once the
// case is created; corrections happen through working-field overrides, never
// by editing intake.
type IntakeData struct {
	CitizenName     string `json:"citizen_name"`
	CitizenDOB      string `json:"citizen_dob"`
	Email           string `json:"email"`
	OldAddress      string `json:"old_address"`
	NewAddressRaw   string `json:"new_address_raw"`
	MoveInDateRaw   string `json:"move_in_date_raw"`
	LandlordDocPath string `json:"landlord_doc_path"`
	IDDocPath       string `json:"id_doc_path"`
}

// Extraction is the result of the extraction step: field values plus a
// parallel confidence score per field. Never mutated after it is written;
// human corrections go through Overrides.
type Extraction struct {
	Fields     map[Field]string  `json:"fields"`
	Confidence map[Field]float64 `json:"confidence"`
}

// Case is the central per-request record. The case store exclusively owns all
// Case values; callers only ever see deep-copied snapshots.
//
// Invariant, at all times after extraction has run:
//
//	Working[f] == Overrides[f]        if f has an override
//	Working[f] == Extraction.Fields[f] otherwise
type Case struct {
	ID         string           `json:"id"`
	Intake     IntakeData       `json:"intake"`
	Extraction *Extraction      `json:"extraction,omitempty"`
	Overrides  map[Field]string `json:"overrides"`
	Working    map[Field]string `json:"working"`
	Audit      []AuditEntry     `json:"audit"`
	Status     Status           `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Advance moves the lifecycle forward. Regressions are ignored so re-running
// an earlier step can never move a case backwards.
func (c *Case) Advance(s Status) {
	if s.Rank() > c.Status.Rank() {
		c.Status = s
	}
}

// SetOverride records a human-supplied value and keeps the working overlay
// consistent in the same write.
func (c *Case) SetOverride(f Field, value string) {
	c.Overrides[f] = value
	c.Working[f] = value
}

// SeedWorking rebuilds the working view from extraction, then re-applies every
// existing override so the overlay invariant holds across re-extraction.
func (c *Case) SeedWorking(workRelevant []Field) {
	c.Working = make(map[Field]string, len(workRelevant))
	if c.Extraction != nil {
		for _, f := range workRelevant {
			if v, ok := c.Extraction.Fields[f]; ok {
				c.Working[f] = v
			}
		}
	}
	for f, v := range c.Overrides {
		c.Working[f] = v
	}
}

// Clone produces a deep copy safe to hand outside the store.
func (c *Case) Clone() Case {
	out := *c
	if c.Extraction != nil {
		ext := Extraction{
			Fields:     make(map[Field]string, len(c.Extraction.Fields)),
			Confidence: make(map[Field]float64, len(c.Extraction.Confidence)),
		}
		for k, v := range c.Extraction.Fields {
			ext.Fields[k] = v
		}
		for k, v := range c.Extraction.Confidence {
			ext.Confidence[k] = v
		}
		out.Extraction = &ext
	}
	out.Overrides = make(map[Field]string, len(c.Overrides))
	for k, v := range c.Overrides {
		out.Overrides[k] = v
	}
	out.Working = make(map[Field]string, len(c.Working))
	for k, v := range c.Working {
		out.Working[k] = v
	}
	out.Audit = make([]AuditEntry, len(c.Audit))
	copy(out.Audit, c.Audit)
	return out
}

// CanonicalAddress is the canonicalization service's view of an address.
type CanonicalAddress struct {
	Input       string `json:"input"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Ambiguous   bool   `json:"ambiguous"`
}
