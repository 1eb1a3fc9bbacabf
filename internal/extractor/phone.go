package extractor

import (
	"regexp"
	"strings"
)

// Dial-in numbers on Indian concall announcements come in a handful of
// formats. Patterns are tried in order; earlier patterns are the more
// specific ones.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+91[-\s]?\d{2}[-\s]?\d{4}[-\s]?\d{4}`), // +91 22 6280 1234
	regexp.MustCompile(`\+91[-\s]?\d{10}`),                      // +91 9876543210
	regexp.MustCompile(`91[-\s]?\d{2}[-\s]?\d{4}[-\s]?\d{4}`),   // 91 22 6280 1234
	regexp.MustCompile(`\d{4}[-\s]?\d{3}[-\s]?\d{4}`),           // 1800 123 4567
	regexp.MustCompile(`\d{2,4}[-\s]?\d{4}[-\s]?\d{4}`),         // 22 6280 1234
}

// FindPhones extracts up to max dial-in numbers from the given text, in
// pattern order. The patterns overlap (a "+91 22 ..." number also matches the
// bare-digit forms), so matches are deduplicated on their digit string and a
// match whose digits are the tail of an already-kept number is dropped.
func FindPhones(text string, max int) []string {
	var phones []string
	var kept []string

	for _, pattern := range phonePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			digits := digitsOnly(match)
			if coveredBy(kept, digits) {
				continue
			}
			kept = append(kept, digits)
			phones = append(phones, match)
		}
	}

	if max > 0 && len(phones) > max {
		phones = phones[:max]
	}
	return phones
}

func coveredBy(kept []string, digits string) bool {
	for _, k := range kept {
		if k == digits || strings.HasSuffix(k, digits) {
			return true
		}
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
