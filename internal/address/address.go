// Package address validates shipping addresses, including per-country postal
// code formats against a pattern table. The built-in table covers the
// countries we ship to; deployments can override it with a JSON pattern file
// loaded from disk or S3.
package address

import (
	"regexp"
	"strings"

	"storefront/internal/model"
)

// PatternTable maps upper-case ISO country codes to compiled postal-code
// patterns. Countries absent from the table skip the format check; the
// postal code still must be non-blank.
type PatternTable map[string]*regexp.Regexp

// DefaultPatterns returns the built-in postal-code pattern table.
func DefaultPatterns() PatternTable {
	return PatternTable{
		"IN": regexp.MustCompile(`^[1-9][0-9]{5}$`),
		"US": regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`),
		"GB": regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$`),
		"CA": regexp.MustCompile(`^[A-Z][0-9][A-Z] ?[0-9][A-Z][0-9]$`),
		"AU": regexp.MustCompile(`^[0-9]{4}$`),
		"DE": regexp.MustCompile(`^[0-9]{5}$`),
		"FR": regexp.MustCompile(`^[0-9]{5}$`),
		"SG": regexp.MustCompile(`^[0-9]{6}$`),
		"JP": regexp.MustCompile(`^[0-9]{3}-?[0-9]{4}$`),
		"NL": regexp.MustCompile(`^[0-9]{4} ?[A-Z]{2}$`),
	}
}

// Validator validates shipping addresses against a pattern table.
type Validator struct {
	patterns PatternTable
}

// NewValidator creates an address validator. A nil table falls back to the
// built-in patterns.
func NewValidator(patterns PatternTable) *Validator {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Validator{patterns: patterns}
}

// Validate checks that every required field is populated and non-blank and
// that the postal code matches the country's pattern. AddressLine2 is
// optional.
func (v *Validator) Validate(addr model.Address) error {
	required := []struct {
		name  string
		value string
	}{
		{"fullName", addr.FullName},
		{"addressLine1", addr.AddressLine1},
		{"city", addr.City},
		{"state", addr.State},
		{"postalCode", addr.PostalCode},
		{"country", addr.Country},
	}

	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return model.ErrInvalidAddress(field.name + " is required")
		}
	}

	country := strings.ToUpper(strings.TrimSpace(addr.Country))
	if pattern, ok := v.patterns[country]; ok {
		code := strings.ToUpper(strings.TrimSpace(addr.PostalCode))
		if !pattern.MatchString(code) {
			return model.ErrInvalidAddress("postal code does not match the format for " + country)
		}
	}

	return nil
}
