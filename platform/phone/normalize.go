// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "BR"

// Normalizer parses numbers relative to a default region.
type Normalizer struct {
	region string
}

// NewNormalizer returns a Normalizer for region, falling back to DefaultRegion.
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

// E164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func (n *Normalizer) E164(input string) string {
	if formatted, ok := n.parse(input); ok {
		return formatted
	}
	return strings.TrimSpace(input)
}

// Digits returns the E.164 number without the leading plus, as wa.me expects.
// ok is false when the input is not a valid number.
func (n *Normalizer) Digits(input string) (string, bool) {
	formatted, ok := n.parse(input)
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(formatted, "+"), true
}

func (n *Normalizer) parse(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	number, err := phonenumbers.Parse(trimmed, n.region)
	if err != nil {
		return "", false
	}

	if !phonenumbers.IsValidNumber(number) {
		return "", false
	}

	return phonenumbers.Format(number, phonenumbers.E164), true
}
