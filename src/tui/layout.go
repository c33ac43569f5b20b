package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// panelDimensions holds calculated layout dimensions
type panelDimensions struct {
	inputHeight   int
	resultsHeight int
}

// calculateDimensions computes panel sizes based on terminal dimensions.
// This centralizes the layout math to ensure consistency across render and resize.
func (m MainModel) calculateDimensions() panelDimensions {
	headerHeight := lipgloss.Height(m.header.Render(m.width))

	inputHeight := 1 + 2 // one line plus borders
	if m.focus == focusBatch {
		inputHeight = batchInputHeight + 2
	}

	// Account for: header + input + status line (1) + help line (1) + results borders (2)
	resultsHeight := m.height - headerHeight - inputHeight - 1 - 1 - 2
	if resultsHeight < 3 {
		resultsHeight = 3
	}

	return panelDimensions{
		inputHeight:   inputHeight,
		resultsHeight: resultsHeight,
	}
}

// View renders the complete TUI layout
func (m MainModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := m.header.Render(m.width)
	dims := m.calculateDimensions()

	parts := []string{header, m.renderInputPanel(m.width)}

	// The suggestion list borrows rows from the results panel.
	resultsHeight := dims.resultsHeight
	if suggestions := m.renderSuggestions(m.width); suggestions != "" {
		parts = append(parts, suggestions)
		resultsHeight -= lipgloss.Height(suggestions)
		if resultsHeight < 1 {
			resultsHeight = 1
		}
	}

	parts = append(parts,
		m.renderResultsPanel(m.width, resultsHeight),
		m.renderStatusLine(),
		m.renderHelpText(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderInputPanel renders the focused search field.
func (m MainModel) renderInputPanel(width int) string {
	panel := m.styles.PanelStyle(true).Width(width - 2)
	if m.focus == focusBatch {
		return panel.Render(m.batch.View())
	}
	return panel.Render(m.input.View())
}

// renderStatusLine shows the spinner while searching, else the last status.
func (m MainModel) renderStatusLine() string {
	if m.progress.Active() {
		return lipgloss.NewStyle().Padding(0, 1).Render(m.progress.View())
	}
	if m.status == "" {
		return ""
	}
	line := Truncate(m.status, m.width-2, true)
	return m.styles.StatusStyle(m.statusColor).Render(line)
}

// renderHelpText renders context-aware help text at the bottom
func (m MainModel) renderHelpText() string {
	keyStyle := lipgloss.NewStyle().Foreground(m.styles.PrimaryBlue).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(m.styles.TextSecondary)

	var helpText string
	if m.focus == focusBatch {
		helpText = fmt.Sprintf("%s: Search %s %s: Single %s %s: History %s %s: Clear %s %s: Quit",
			keyStyle.Render("Ctrl+S"), sepStyle.Render("•"),
			keyStyle.Render("Tab"), sepStyle.Render("•"),
			keyStyle.Render("Ctrl+R"), sepStyle.Render("•"),
			keyStyle.Render("Ctrl+L"), sepStyle.Render("•"),
			keyStyle.Render("Ctrl+C"))
	} else {
		helpText = fmt.Sprintf("%s: Search %s %s: Pick %s %s: Batch %s %s: History %s %s: Clear %s %s: Quit",
			keyStyle.Render("Enter"), sepStyle.Render("•"),
			keyStyle.Render("↑/↓"), sepStyle.Render("•"),
			keyStyle.Render("Tab"), sepStyle.Render("•"),
			keyStyle.Render("Ctrl+R"), sepStyle.Render("•"),
			keyStyle.Render("Ctrl+L"), sepStyle.Render("•"),
			keyStyle.Render("Ctrl+C"))
	}

	return FitLines(m.styles.HelpStyle().Render(helpText), m.width)
}

// resizeComponents handles window resize events
func (m *MainModel) resizeComponents() {
	dims := m.calculateDimensions()

	// Field widths exclude the panel borders and the prompt
	m.input.Width = m.width - 4 - VisualWidth(m.input.Prompt)
	if m.input.Width < 1 {
		m.input.Width = 1
	}
	m.batch.SetWidth(m.width - 4)
	m.batch.SetHeight(batchInputHeight)

	m.results.Width = m.width - 2
	m.results.Height = dims.resultsHeight

	m.refreshResults()
}
