// Package rules implements the business-rule checks for an address change.
// The rules are pure over the working view: no I/O, no side effects, so the
// engine stays trivially testable.
package rules

import (
	"context"
	"time"

	"meldeflow/internal/domain"
	"meldeflow/internal/workflow/ports"
)

// Violation identifiers reported to the caller and recorded in the audit
// trail.
const (
	ViolationMissingNewAddress      = "missing_new_address"
	ViolationMissingLandlordConfirm = "missing_landlord_confirmation"
	ViolationInvalidMoveInDate      = "invalid_move_in_date"
	ViolationMoveInDateOutOfWindow  = "move_in_date_out_of_window"
)

// Registration window: how far a move-in date may lie in the past or future
// and still be registrable without an officer's sign-off.
const (
	maxPastWindow   = 2 * 365 * 24 * time.Hour
	maxFutureWindow = 365 * 24 * time.Hour
)

type Engine struct {
	now func() time.Time
}

func New() *Engine {
	return &Engine{now: time.Now}
}

// NewWithClock pins the clock for tests.
func NewWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

func (e *Engine) Violations(_ context.Context, in ports.RulesInput) ([]string, error) {
	var violations []string

	if in.Working[domain.FieldNewAddress] == "" {
		violations = append(violations, ViolationMissingNewAddress)
	}
	if !in.LandlordSignatureFound {
		violations = append(violations, ViolationMissingLandlordConfirm)
	}

	rawDate := in.Working[domain.FieldMoveInDate]
	moveIn, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		violations = append(violations, ViolationInvalidMoveInDate)
		return violations, nil
	}
	now := e.now()
	if moveIn.Before(now.Add(-maxPastWindow)) || moveIn.After(now.Add(maxFutureWindow)) {
		violations = append(violations, ViolationMoveInDateOutOfWindow)
	}
	return violations, nil
}
