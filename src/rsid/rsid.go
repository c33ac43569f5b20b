// Package rsid canonicalizes variant identifiers (RSIDs) into the form the
// lookup service expects: a lowercase "rs" marker followed by digits.
package rsid

import (
	"strings"
)

// Marker is the two-character prefix every canonical identifier carries.
const Marker = "rs"

// Identifier is a canonical variant key such as "rs123".
type Identifier string

// String implements fmt.Stringer.
func (id Identifier) String() string { return string(id) }

// Normalize trims surrounding whitespace and makes sure the identifier starts
// with a lowercase "rs" marker. The remaining characters are not validated;
// malformed identifiers are left for the lookup service to reject.
//
// Normalize is idempotent: Normalize(string(Normalize(x))) == Normalize(x).
func Normalize(raw string) Identifier {
	s := strings.TrimSpace(raw)
	if hasMarker(s) {
		return Identifier(Marker + s[len(Marker):])
	}
	return Identifier(Marker + s)
}

// Equal reports whether two identifiers are the same variant. Comparison is
// done on canonical forms and ignores case.
func Equal(a, b Identifier) bool {
	return strings.EqualFold(string(Normalize(string(a))), string(Normalize(string(b))))
}

// Digits returns the identifier with its marker removed ("rs123" -> "123").
func Digits(id Identifier) string {
	s := string(id)
	if hasMarker(s) {
		return s[len(Marker):]
	}
	return s
}

// SplitBatch splits free-form batch input into raw identifier tokens.
// Tokens are separated by commas or newlines, trimmed, and empty tokens are
// dropped. Order and duplicates are preserved.
func SplitBatch(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func hasMarker(s string) bool {
	return len(s) >= len(Marker) && strings.EqualFold(s[:len(Marker)], Marker)
}
