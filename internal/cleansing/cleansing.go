// Package cleansing normalizes raw street and zone strings into the canonical
// form the geocoding service accepts. Both functions are pure and total:
// malformed input degrades to an empty or partial string, never an error.
package cleansing

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	invalidChars = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
	whitespace   = regexp.MustCompile(`\s+`)
	zipSuffix    = regexp.MustCompile(`-\d+$`)
)

// Street cleanses a raw street string. The ampersand becomes the word "and",
// any character outside letters, digits and spaces is dropped, and runs of
// whitespace collapse to a single space.
func Street(raw string) string {
	street := strings.ReplaceAll(raw, "&", "and")
	street = invalidChars.ReplaceAllString(street, "")
	street = whitespace.ReplaceAllString(street, " ")

	return strings.TrimSpace(street)
}

// Zone cleanses a raw zone (city name or ZIP code). Numeric input is coerced
// to text first and a trailing ZIP+4 suffix is removed, then the same
// character stripping and whitespace collapsing as Street applies. The
// ampersand is dropped here, not substituted.
func Zone(raw any) string {
	zone := strings.TrimSpace(fmt.Sprint(raw))
	zone = zipSuffix.ReplaceAllString(zone, "")
	zone = invalidChars.ReplaceAllString(zone, "")
	zone = whitespace.ReplaceAllString(zone, " ")

	return strings.TrimSpace(zone)
}
