package hitl

import "fmt"

// EscalationPrompt builds the guidance text handed to a reviewing officer when
// a step pauses for human input.
func EscalationPrompt(caseID, field, problem string) string {
	return fmt.Sprintf(
		"[HUMAN REVIEW REQUIRED]\nCase: %s\nIssue: %s needs manual verification (%s).\n\nPlease confirm or correct this field so processing can continue.",
		caseID, field, problem,
	)
}
