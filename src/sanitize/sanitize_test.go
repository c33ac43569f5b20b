package sanitize

import (
	"strings"
	"testing"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "color codes",
			input:    "\x1b[31mERROR\x1b[0m: No DNA data loaded",
			expected: "ERROR: No DNA data loaded",
		},
		{
			name:     "no ANSI",
			input:    "RSID rs1 not found",
			expected: "RSID rs1 not found",
		},
		{
			name:     "multiple codes",
			input:    "\x1b[1m\x1b[31mbold red\x1b[0m normal",
			expected: "bold red normal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripANSI(tt.input)
			if result != tt.expected {
				t.Errorf("StripANSI(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "full cleanup",
			input:    "\x1b[31mERROR\x1b[0m: message\r\n",
			expected: "ERROR: message",
		},
		{
			name:     "carriage returns",
			input:    "line1\r\nline2\r",
			expected: "line1\nline2",
		},
		{
			name:     "control characters",
			input:    "bad\x00 input\x07",
			expected: "bad input",
		},
		{
			name:     "already clean",
			input:    "clean message",
			expected: "clean message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clean(tt.input)
			if result != tt.expected {
				t.Errorf("Clean(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	if got := Message("  Server error:\n  Failed   to connect  "); got != "Server error: Failed to connect" {
		t.Errorf("Message() = %q", got)
	}

	long := Message(strings.Repeat("x", maxMessageLength+50))
	if len([]rune(long)) != maxMessageLength {
		t.Errorf("Message() length = %d, want %d", len([]rune(long)), maxMessageLength)
	}
	if !strings.HasSuffix(long, "...") {
		t.Errorf("Message() = %q, want ... suffix", long[len(long)-10:])
	}
}
