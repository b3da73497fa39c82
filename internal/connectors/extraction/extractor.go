// Package extraction simulates the OCR/text-extraction collaborator. Field
// values are taken from the intake documents verbatim; confidence is a
// heuristic over how tidy the raw value looks, so messy inputs exercise the
// HITL path without any real OCR backend.
package extraction

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode"

	"meldeflow/internal/domain"
)

type Service struct{}

func New() *Service {
	return &Service{}
}

func (s *Service) Extract(_ context.Context, intake domain.IntakeData) (domain.Extraction, error) {
	signature := "false"
	if intake.LandlordDocPath != "" {
		signature = "true"
	}
	return domain.Extraction{
		Fields: map[domain.Field]string{
			domain.FieldCitizenName:       intake.CitizenName,
			domain.FieldCitizenDOB:        intake.CitizenDOB,
			domain.FieldOldAddress:        intake.OldAddress,
			domain.FieldNewAddress:        intake.NewAddressRaw,
			domain.FieldMoveInDate:        intake.MoveInDateRaw,
			domain.FieldLandlordSignature: signature,
		},
		Confidence: map[domain.Field]float64{
			domain.FieldNewAddress: addressConfidence(intake.NewAddressRaw),
			domain.FieldMoveInDate: dateConfidence(intake.MoveInDateRaw),
		},
	}, nil
}

// addressConfidence penalizes the markers a human transcriber leaves behind:
// no separating comma, an abbreviated street suffix, a two-letter city code.
// "Musterstr 12a KL 12345" scores 0.73; the fully spelled form scores 1.0.
func addressConfidence(raw string) float64 {
	score := 1.0
	if !strings.Contains(raw, ",") {
		score -= 0.12
	}
	for _, token := range strings.Fields(raw) {
		token = strings.Trim(token, ",.")
		if strings.HasSuffix(strings.ToLower(token), "str") {
			score -= 0.10
			break
		}
	}
	for _, token := range strings.Fields(raw) {
		if isCityCode(strings.Trim(token, ",.")) {
			score -= 0.05
			break
		}
	}
	if score < 0 {
		score = 0
	}
	return math.Round(score*100) / 100
}

func isCityCode(token string) bool {
	if len(token) != 2 {
		return false
	}
	for _, r := range token {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func dateConfidence(raw string) float64 {
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return 0.40
	}
	return 0.90
}
