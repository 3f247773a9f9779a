// Package plate canonicalizes raw license-plate text into the stable key
// used for occupancy tracking. Recognition output is noisy: the same plate
// can arrive with stray punctuation or uneven spacing between reads, and the
// ledger needs all of them to map to one key.
package plate

import (
	"regexp"
	"strings"
)

var (
	invalidChars = regexp.MustCompile(`[^A-Za-z0-9\-. ]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Normalize strips every character outside A-Z, 0-9, dash, dot and space
// (letter case is preserved), collapses whitespace runs to a single space and
// trims the ends. It is pure and idempotent; input with no valid characters
// normalizes to the empty string, which callers must reject before reaching
// the ledger.
func Normalize(raw string) string {
	normalized := invalidChars.ReplaceAllString(raw, "")
	normalized = whitespace.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}
