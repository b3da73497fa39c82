// Package address simulates the address-canonicalization collaborator and
// provides a cache layer so repeated lookups of the same raw address skip the
// (in production, billed) canonicalization call.
package address

import (
	"context"
	"regexp"
	"strings"

	"meldeflow/internal/domain"
)

// Canonicalizer is the port this package implements and decorates.
type Canonicalizer interface {
	Canonicalize(ctx context.Context, raw string) (domain.CanonicalAddress, error)
}

// cityCodes expands the municipality abbreviations citizens habitually use.
var cityCodes = map[string]string{
	"KL":  "Kaiserslautern",
	"MZ":  "Mainz",
	"LU":  "Ludwigshafen",
	"FFM": "Frankfurt am Main",
}

var houseNumberRe = regexp.MustCompile(`^\d+[a-zA-Z]?$`)
var postalCodeRe = regexp.MustCompile(`^\d{5}$`)

type Service struct{}

func New() *Service {
	return &Service{}
}

// Canonicalize splits a raw German address into components, expanding street
// and city abbreviations. The result is ambiguous when no postal code or no
// city could be determined; ambiguity routes the case to a human.
func (s *Service) Canonicalize(_ context.Context, raw string) (domain.CanonicalAddress, error) {
	out := domain.CanonicalAddress{Input: raw}

	for _, token := range strings.Fields(strings.ReplaceAll(raw, ",", " ")) {
		switch {
		case postalCodeRe.MatchString(token):
			out.PostalCode = token
		case houseNumberRe.MatchString(token):
			out.HouseNumber = strings.ToUpper(token)
		case out.Street == "":
			out.Street = expandStreet(token)
		default:
			if city, ok := cityCodes[token]; ok {
				out.City = city
			} else if out.City == "" {
				out.City = token
			} else {
				out.City += " " + token
			}
		}
	}

	out.Ambiguous = out.PostalCode == "" || out.City == "" || out.Street == ""
	return out, nil
}

func expandStreet(token string) string {
	lower := strings.ToLower(token)
	switch {
	case strings.HasSuffix(lower, "str."):
		return strings.TrimSuffix(token, ".") + "aße"
	case strings.HasSuffix(lower, "str"):
		return token + "aße"
	}
	return token
}
