package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"snpscope/src/contracts"
	"snpscope/src/present"
	"snpscope/src/search"
)

// Column widths for the record table
const (
	rsidWidth       = 14
	genotypeWidth   = 10
	chromosomeWidth = 11
	positionWidth   = 14
)

// History column widths
const (
	whenWidth  = 16
	kindWidth  = 8
	queryWidth = 28
)

func (m MainModel) tableHeader() string {
	header := TruncateAndPad("RSID", rsidWidth, false) +
		TruncateAndPad("Genotype", genotypeWidth, false) +
		TruncateAndPad("Chromosome", chromosomeWidth, false) +
		TruncateAndPad("Position", positionWidth, false)
	return m.styles.LabelStyle().Render(header)
}

func tableRow(d present.Display) string {
	return TruncateAndPad(d.RSID, rsidWidth, true) +
		TruncateAndPad(d.Genotype, genotypeWidth, true) +
		TruncateAndPad(d.Chromosome, chromosomeWidth, true) +
		TruncateAndPad(d.PositionText, positionWidth, true)
}

// renderLink prints a label followed by the URL wrapped to maxWidth.
func (m MainModel) renderLink(content *strings.Builder, label, url string, maxWidth int) {
	if url == "" {
		return
	}
	fmt.Fprintln(content, m.styles.LabelStyle().Render(label))
	fmt.Fprintln(content, m.styles.LinkStyle().Render(Wrap(url, maxWidth)))
}

// renderSingle renders the results panel content for one explicit search.
func (m MainModel) renderSingle(out search.Outcome, maxWidth int) string {
	content := strings.Builder{}

	switch out.Kind {
	case search.Found:
		d := out.Display
		title := m.styles.StatusStyle(m.styles.FoundColor).Render("Found RSID: " + d.RSID)
		fmt.Fprintf(&content, "%s\n\n", title)
		fmt.Fprintln(&content, m.tableHeader())
		fmt.Fprintln(&content, tableRow(d))
		fmt.Fprintln(&content)
		m.renderLink(&content, "SNPedia:", d.Links.SNPedia, maxWidth)
		m.renderLink(&content, "Your genotype:", d.Links.Genotype, maxWidth)
		m.renderLink(&content, "Ask an assistant:", d.Links.Assistant, maxWidth)

	case search.NotFound:
		f := out.Fallback
		title := m.styles.StatusStyle(m.styles.NotFoundColor).Render(f.Message)
		fmt.Fprintf(&content, "%s\n\n", title)
		fmt.Fprintln(&content, lipgloss.NewStyle().Foreground(m.styles.TextSecondary).Render(
			Wrap("This RSID is not in your data. General references:", maxWidth)))
		fmt.Fprintln(&content)
		m.renderLink(&content, "SNPedia:", f.Links.SNPedia, maxWidth)
		m.renderLink(&content, "Ask an assistant:", f.Links.Assistant, maxWidth)

	default:
		m.renderError(&content, out.Message, maxWidth)
	}

	fmt.Fprintln(&content)
	fmt.Fprint(&content, m.elapsedLine(out.Elapsed))
	return content.String()
}

// renderBatch renders a reconciled batch: found records in service order,
// then the identifiers that were not found.
func (m MainModel) renderBatch(out search.BatchOutcome, maxWidth int) string {
	content := strings.Builder{}

	if out.Failed() {
		m.renderError(&content, out.Message, maxWidth)
		fmt.Fprintln(&content)
		fmt.Fprint(&content, m.elapsedLine(out.Elapsed))
		return content.String()
	}

	color := m.styles.FoundColor
	if !out.Result.Complete() {
		color = m.styles.NotFoundColor
	}
	fmt.Fprintf(&content, "%s\n\n", m.styles.StatusStyle(color).Render(out.Message))

	if len(out.Displays) > 0 {
		fmt.Fprintln(&content, m.tableHeader())
		for _, d := range out.Displays {
			fmt.Fprintln(&content, tableRow(d))
		}
		fmt.Fprintln(&content)
	}

	if len(out.Result.NotFound) > 0 {
		ids := make([]string, len(out.Result.NotFound))
		for i, id := range out.Result.NotFound {
			ids[i] = id.String()
		}
		missing := Wrap("No matches found for: "+strings.Join(ids, ", "), maxWidth)
		fmt.Fprintln(&content, lipgloss.NewStyle().Foreground(m.styles.NotFoundColor).Render(missing))
		fmt.Fprintln(&content)
	}

	for _, d := range out.Displays {
		fmt.Fprintln(&content, m.styles.TitleStyle().Render(d.RSID+" ("+d.Genotype+")"))
		m.renderLink(&content, "SNPedia:", d.Links.SNPedia, maxWidth)
		m.renderLink(&content, "Your genotype:", d.Links.Genotype, maxWidth)
		m.renderLink(&content, "Ask an assistant:", d.Links.Assistant, maxWidth)
		fmt.Fprintln(&content)
	}

	fmt.Fprint(&content, m.elapsedLine(out.Elapsed))
	return content.String()
}

// renderHistory renders recent searches, newest first.
func (m MainModel) renderHistory(events []contracts.SearchEvent, now time.Time) string {
	content := strings.Builder{}
	fmt.Fprintf(&content, "%s\n\n", m.styles.TitleStyle().Render("Recent searches"))

	if len(events) == 0 {
		fmt.Fprint(&content, lipgloss.NewStyle().Foreground(m.styles.TextSecondary).Faint(true).Render("No searches recorded yet"))
		return content.String()
	}

	header := TruncateAndPad("When", whenWidth, false) +
		TruncateAndPad("Kind", kindWidth, false) +
		TruncateAndPad("Query", queryWidth, false) +
		"Result"
	fmt.Fprintln(&content, m.styles.LabelStyle().Render(header))

	for _, ev := range events {
		when := ev.Timestamp
		if ts, err := time.Parse(time.RFC3339Nano, ev.Timestamp); err == nil {
			when = humanize.RelTime(ts, now, "ago", "from now")
		}

		result := fmt.Sprintf("%d out of %d", ev.Found, ev.Requested)
		style := lipgloss.NewStyle().Foreground(m.styles.FoundColor)
		switch {
		case !ev.Succeeded():
			result = ev.Error
			style = lipgloss.NewStyle().Foreground(m.styles.ErrorColor)
		case len(ev.NotFound) > 0:
			style = lipgloss.NewStyle().Foreground(m.styles.NotFoundColor)
		}

		row := TruncateAndPad(when, whenWidth, true) +
			TruncateAndPad(string(ev.Kind), kindWidth, false) +
			TruncateAndPad(ev.Query, queryWidth, true)
		fmt.Fprintln(&content, row+style.Render(result))
	}

	return strings.TrimRight(content.String(), "\n")
}

func (m MainModel) renderError(content *strings.Builder, message string, maxWidth int) {
	fmt.Fprintln(content, lipgloss.NewStyle().Foreground(m.styles.ErrorColor).Bold(true).Render("ERROR:"))
	fmt.Fprintln(content, lipgloss.NewStyle().Foreground(m.styles.ErrorColor).Render(Wrap(message, maxWidth)))
}

func (m MainModel) elapsedLine(d time.Duration) string {
	return lipgloss.NewStyle().Foreground(m.styles.TextSecondary).Faint(true).Render(present.Elapsed(d))
}

// contentWidth is the usable width inside the results panel.
func (m MainModel) contentWidth() int {
	// 1 char padding on each side
	w := m.results.Width - 2
	if w < 10 {
		w = 10
	}
	return w
}

// renderResultsPanel renders the results viewport, or the logo when empty.
func (m MainModel) renderResultsPanel(width, height int) string {
	panel := m.styles.PanelStyle(false).
		Width(width - 2).
		Height(height)

	if m.resultsContent == "" {
		return panel.
			Align(lipgloss.Center, lipgloss.Center).
			Render(Logo("Type an RSID to search • Tab for batch search"))
	}

	vp := m.results
	vp.Height = height
	return panel.Render(vp.View())
}
