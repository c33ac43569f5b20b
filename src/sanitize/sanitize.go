// Package sanitize cleans text received from the lookup service before it is
// shown to a person or returned from an MCP tool.
//
// Service messages are echoed verbatim into the TUI, the CLI and MCP
// responses, so escape sequences and control characters are removed here.
// For measuring or truncating styled output, use the tui package instead.
package sanitize

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// maxMessageLength caps a cleaned message, in runes.
const maxMessageLength = 500

// StripANSI removes ANSI escape sequences.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// Clean strips escape sequences, normalizes line endings, drops other
// control characters and trims surrounding whitespace.
func Clean(s string) string {
	s = StripANSI(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}

// Message cleans a one-line service message: newlines and runs of spaces
// collapse to single spaces and overly long text is cut with "...".
func Message(s string) string {
	s = strings.Join(strings.Fields(Clean(s)), " ")

	if runes := []rune(s); len(runes) > maxMessageLength {
		s = string(runes[:maxMessageLength-3]) + "..."
	}
	return s
}
