package domain

// Field names the closed set of values a case can carry. Keeping the set
// closed prevents a typo in a caller from silently creating a new untracked
// field.
type Field string

const (
	FieldCitizenName       Field = "citizen_name"
	FieldCitizenDOB        Field = "citizen_dob"
	FieldOldAddress        Field = "old_address"
	FieldNewAddress        Field = "new_address"
	FieldMoveInDate        Field = "move_in_date"
	FieldLandlordSignature Field = "landlord_signature_found"
)

var knownFields = map[Field]struct{}{
	FieldCitizenName:       {},
	FieldCitizenDOB:        {},
	FieldOldAddress:        {},
	FieldNewAddress:        {},
	FieldMoveInDate:        {},
	FieldLandlordSignature: {},
}

// Known reports whether f belongs to the closed field set.
func (f Field) Known() bool {
	_, ok := knownFields[f]
	return ok
}

// DefaultWorkingFields are the extracted fields the workflow actually operates
// on downstream, and therefore the fields a clerk may override. The set is
// configurable through policy; this is the baseline.
var DefaultWorkingFields = []Field{FieldNewAddress, FieldMoveInDate}
