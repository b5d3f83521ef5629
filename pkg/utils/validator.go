package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	controlChars    = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	innerWhitespace = regexp.MustCompile(`\s+`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// NormalizePlate canonicalizes a registration plate for matching: trimmed,
// upper-cased, internal whitespace collapsed to single spaces.
func NormalizePlate(plate string) string {
	plate = strings.TrimSpace(strings.ToUpper(plate))
	return innerWhitespace.ReplaceAllString(plate, " ")
}

// ValidatePlate checks that a plate looks like a registration number.
func ValidatePlate(plate string) error {
	normalized := NormalizePlate(plate)
	if len(normalized) < 3 || len(normalized) > 12 {
		return fmt.Errorf("plate must be 3-12 characters: %s", plate)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
