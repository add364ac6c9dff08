package geocoding

import (
	"errors"
	"fmt"
	"regexp"
)

// Common errors for the geocoding client.
var (
	// ErrInvalidAPIKey rejects a structurally invalid key before any request is made.
	ErrInvalidAPIKey = errors.New("invalid API key")
	// ErrMalformedRequest marks a reply that does not match the API envelope.
	// Capitalized on purpose: the text is surfaced as-is in the result artifact.
	ErrMalformedRequest = errors.New("Missing required parameters for URL")
)

// Keys issued by the developer portal never end in a long run of digits;
// one is a sign of a placeholder or a mangled paste.
var implausibleKeySuffix = regexp.MustCompile(`\d{10,}$`)

// ValidateAPIKey checks the key's syntax without contacting the network.
// It runs once per batch, before any row is processed.
func ValidateAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidAPIKey)
	}

	if implausibleKeySuffix.MatchString(key) {
		return fmt.Errorf("%w: %q ends in an implausibly long numeric suffix", ErrInvalidAPIKey, key)
	}

	return nil
}
