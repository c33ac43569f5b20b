package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// VisualWidth returns the display width of plain text, accounting for multi-byte characters
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate truncates plain text to maxLen columns with optional ellipsis
func Truncate(s string, maxLen int, ellipsis bool) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 {
		return ""
	}
	if VisualWidth(s) <= maxLen {
		return s
	}
	if ellipsis && maxLen > 3 {
		return runewidth.Truncate(s, maxLen, "...")
	}
	return runewidth.Truncate(s, maxLen, "")
}

// TruncateAndPad truncates text with optional ellipsis and pads to exact width
// Used for table cells to maintain consistent column widths
func TruncateAndPad(s string, width int, ellipsis bool) string {
	s = Truncate(s, width, ellipsis)
	return runewidth.FillRight(s, width)
}

// FitLines cuts every line of styled text to width columns. Escape
// sequences are kept intact, so colors survive truncation.
func FitLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if ansi.StringWidth(line) > width {
			lines[i] = ansi.Truncate(line, width, "…")
		}
	}
	return strings.Join(lines, "\n")
}

// Wrap wraps plain text to width, breaking on spaces when possible.
// Words wider than width (URLs, mostly) are split across lines.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var current strings.Builder
	lineLength := 0

	flush := func() {
		if lineLength > 0 {
			lines = append(lines, current.String())
			current.Reset()
			lineLength = 0
		}
	}

	for _, word := range words {
		wordLen := VisualWidth(word)

		if wordLen > width {
			flush()
			chunks := breakWord(word, width)
			lines = append(lines, chunks[:len(chunks)-1]...)
			last := chunks[len(chunks)-1]
			current.WriteString(last)
			lineLength = VisualWidth(last)
			continue
		}

		switch {
		case lineLength == 0:
			current.WriteString(word)
			lineLength = wordLen
		case lineLength+1+wordLen <= width:
			current.WriteString(" ")
			current.WriteString(word)
			lineLength += 1 + wordLen
		default:
			flush()
			current.WriteString(word)
			lineLength = wordLen
		}
	}
	flush()

	return strings.Join(lines, "\n")
}

// breakWord splits word into chunks no wider than width.
func breakWord(word string, width int) []string {
	var chunks []string
	var chunk strings.Builder
	chunkWidth := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if chunkWidth+rw > width && chunkWidth > 0 {
			chunks = append(chunks, chunk.String())
			chunk.Reset()
			chunkWidth = 0
		}
		chunk.WriteRune(r)
		chunkWidth += rw
	}
	if chunkWidth > 0 {
		chunks = append(chunks, chunk.String())
	}
	return chunks
}
