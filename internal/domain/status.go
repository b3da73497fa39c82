package domain

// Status is the coarse lifecycle tag of a case. It only ever advances;
// attempts to move backwards are ignored by Case.Advance.
type Status string

const (
	StatusCreated    Status = "created"
	StatusExtracted  Status = "extracted"
	StatusInReview   Status = "in_review"
	StatusVerified   Status = "verified"
	StatusRegistered Status = "registered"
	StatusCertified  Status = "certified"
	StatusNotified   Status = "notified"
	StatusClosed     Status = "closed"
)

var statusRank = map[Status]int{
	StatusCreated:    0,
	StatusExtracted:  1,
	StatusInReview:   2,
	StatusVerified:   3,
	StatusRegistered: 4,
	StatusCertified:  5,
	StatusNotified:   6,
	StatusClosed:     7,
}

// Rank returns the position of s in the lifecycle, -1 for unknown tags.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// Terminal reports whether no further transitions are defined out of s.
func (s Status) Terminal() bool { return s == StatusClosed }
