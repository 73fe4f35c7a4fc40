// Package shared provides identifier generation and input sanitation used
// by the server services and transports.
package shared

import (
	"strings"

	"github.com/google/uuid"
)

// NewIdentifier returns a fresh random (version 4) UUID string. The
// randomness comes from crypto/rand, so identifiers are unguessable.
func NewIdentifier() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var markupStripper = strings.NewReplacer("<", "", ">", "", "&", "", `"`, "", "'", "")

// Sanitize trims surrounding whitespace, removes markup-significant
// characters and truncates the result to at most maxLength runes, so padding
// never counts against the limit.
func Sanitize(text string, maxLength int) string {
	clean := []rune(strings.TrimSpace(markupStripper.Replace(strings.TrimSpace(text))))
	if len(clean) > maxLength {
		clean = clean[:maxLength]
	}
	return strings.TrimSpace(string(clean))
}
