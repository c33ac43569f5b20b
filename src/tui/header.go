package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"snpscope/src/contracts"
	"snpscope/src/present"
)

// Header represents the top status bar component.
type Header struct {
	serviceURL string
	dataset    string
	mode       string
	styles     *StyleConfig
}

// NewHeader creates a new header with default styles
func NewHeader(serviceURL string) Header {
	return NewHeaderWithStyles(serviceURL, DefaultStyles())
}

// NewHeaderWithStyles creates a new header with custom styles
func NewHeaderWithStyles(serviceURL string, styles *StyleConfig) Header {
	return Header{
		serviceURL: serviceURL,
		dataset:    "Checking dataset...",
		mode:       modeSingle,
		styles:     styles,
	}
}

// SetStats updates the dataset badge.
func (h *Header) SetStats(stats contracts.DatasetStats) {
	h.dataset = present.DatasetSummary(stats)
}

// SetStatsError shows that the dataset status could not be read.
func (h *Header) SetStatsError() {
	h.dataset = "Dataset status unavailable"
}

// SetMode sets the search mode label.
func (h *Header) SetMode(mode string) {
	h.mode = mode
}

// Dataset returns the dataset badge text.
func (h Header) Dataset() string { return h.dataset }

// Render renders the header
func (h Header) Render(width int) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(h.styles.PrimaryBlue).
		Bold(true).
		Padding(0, 2)
	title := titleStyle.Render("🧬 snpscope")

	datasetStyle := lipgloss.NewStyle().
		Foreground(h.styles.PrimaryBlue).
		Bold(true).
		Padding(0, 2)
	dataset := datasetStyle.Render(fmt.Sprintf("📊 %s", h.dataset))

	modeStyle := lipgloss.NewStyle().
		Foreground(h.styles.TextSecondary).
		Padding(0, 2)
	mode := modeStyle.Render(fmt.Sprintf("🔍 %s", h.mode))

	leftSection := lipgloss.JoinHorizontal(lipgloss.Left, title, dataset, mode)

	// Service URL is right aligned and dropped first when space runs out.
	var service string
	if h.serviceURL != "" {
		service = lipgloss.NewStyle().
			Foreground(h.styles.TextSecondary).
			Faint(true).
			Padding(0, 2).
			Render(h.serviceURL)
	}
	if lipgloss.Width(leftSection)+lipgloss.Width(service) > width {
		service = ""
	}

	headerStyle := lipgloss.NewStyle().
		Background(h.styles.DarkBackground).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(h.styles.BorderColor).
		Width(width)

	spacerWidth := width - lipgloss.Width(leftSection) - lipgloss.Width(service)
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	content := lipgloss.JoinHorizontal(lipgloss.Left, leftSection, spacer, service)

	return headerStyle.Render(content)
}
