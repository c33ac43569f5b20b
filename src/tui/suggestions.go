package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// maxSuggestionRows caps how many suggestions are drawn under the field.
const maxSuggestionRows = 8

// moveCursor moves the suggestion highlight by delta. -1 means no highlight.
func (m *MainModel) moveCursor(delta int) {
	n := len(m.sched.Suggestions())
	if n == 0 {
		m.cursor = -1
		return
	}
	next := m.cursor + delta
	if next < -1 {
		next = -1
	}
	if next > n-1 {
		next = n - 1
	}
	m.cursor = next
}

// selectedSuggestion returns the highlighted suggestion, if any.
func (m MainModel) selectedSuggestion() (string, bool) {
	suggestions := m.sched.Suggestions()
	if m.cursor < 0 || m.cursor >= len(suggestions) {
		return "", false
	}
	return suggestions[m.cursor].String(), true
}

// suggestionWindow returns the slice bounds kept visible around the cursor.
func (m MainModel) suggestionWindow(total int) (int, int) {
	if total <= maxSuggestionRows {
		return 0, total
	}
	start := 0
	if m.cursor >= maxSuggestionRows {
		start = m.cursor - maxSuggestionRows + 1
	}
	return start, start + maxSuggestionRows
}

// suggestionsHeight is the rendered height of the suggestion panel.
func (m MainModel) suggestionsHeight() int {
	if m.focus != focusSingle || !m.sched.Visible() {
		return 0
	}
	n := len(m.sched.Suggestions())
	if n > maxSuggestionRows {
		n = maxSuggestionRows
	}
	// border (2)
	return n + 2
}

// renderSuggestions renders the suggestion list beneath the RSID field.
func (m MainModel) renderSuggestions(width int) string {
	suggestions := m.sched.Suggestions()
	if m.focus != focusSingle || len(suggestions) == 0 {
		return ""
	}

	start, end := m.suggestionWindow(len(suggestions))
	cursorStyle := lipgloss.NewStyle().Foreground(m.styles.AccentBlue)
	selected := lipgloss.NewStyle().
		Foreground(m.styles.TextPrimary).
		Background(m.styles.SelectedColor).
		Bold(true)
	normal := lipgloss.NewStyle().Foreground(m.styles.TextSecondary)

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		text := Truncate(suggestions[i].String(), width-6, true)
		if i == m.cursor {
			rows = append(rows, cursorStyle.Render("► ")+selected.Render(text))
		} else {
			rows = append(rows, "  "+normal.Render(text))
		}
	}

	return m.styles.PanelStyle(true).
		Width(width - 2).
		Render(strings.Join(rows, "\n"))
}
