package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"snpscope/src/contracts"
	"snpscope/src/present"
	"snpscope/src/rsid"
	"snpscope/src/search"
)

var variantHeaders = []string{"RSID", "CHROMOSOME", "POSITION", "GENOTYPE"}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func variantTable(displays []present.Display) string {
	t := newTable(variantHeaders...)
	for _, d := range displays {
		t.Row(d.RSID, d.Chromosome, d.PositionText, d.Genotype)
	}
	return t.Render()
}

func printLinks(w io.Writer, links present.Links) {
	fmt.Fprintf(w, "  SNPedia:          %s\n", links.SNPedia)
	if links.Genotype != "" {
		fmt.Fprintf(w, "  Your genotype:    %s\n", links.Genotype)
	}
	fmt.Fprintf(w, "  Ask an assistant: %s\n", links.Assistant)
}

// printSingle renders a single search outcome.
func printSingle(w io.Writer, out search.Outcome) {
	switch out.Kind {
	case search.Found:
		fmt.Fprintf(w, "✅ Found RSID: %s\n\n", out.Display.RSID)
		fmt.Fprintln(w, variantTable([]present.Display{out.Display}))
		fmt.Fprintln(w)
		printLinks(w, out.Display.Links)
	case search.NotFound:
		fmt.Fprintf(w, "⚠️  %s\n\n", out.Fallback.Message)
		fmt.Fprintln(w, "The RSID is not in your data, but these references may still help:")
		printLinks(w, out.Fallback.Links)
	default:
		fmt.Fprintf(w, "❌ ERROR: %s\n", out.Message)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, present.Elapsed(out.Elapsed))
}

// printBatch renders a reconciled batch.
func printBatch(w io.Writer, out search.BatchOutcome) {
	if out.Failed() {
		fmt.Fprintf(w, "❌ ERROR: %s\n", out.Message)
		fmt.Fprintln(w)
		fmt.Fprintln(w, present.Elapsed(out.Elapsed))
		return
	}

	fmt.Fprintln(w, out.Message)
	if len(out.Displays) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, variantTable(out.Displays))
	}
	if len(out.Result.NotFound) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "No matches found for: %s\n", joinIDs(out.Result.NotFound))
	}
	for _, d := range out.Displays {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s (%s)\n", d.RSID, d.Genotype)
		printLinks(w, d.Links)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, present.Elapsed(out.Elapsed))
}

// batchJSON is the --json form of a batch search.
type batchJSON struct {
	Message   string            `json:"message"`
	Requested int               `json:"requested"`
	Found     int               `json:"found"`
	NotFound  []string          `json:"not_found"`
	Variants  []present.Display `json:"variants"`
	Error     string            `json:"error,omitempty"`
	ElapsedMS int64             `json:"elapsed_ms"`
}

func writeBatchJSON(w io.Writer, out search.BatchOutcome) error {
	doc := batchJSON{
		Message:   out.Message,
		Requested: out.Result.Requested,
		Found:     out.Result.Found,
		NotFound:  make([]string, 0, len(out.Result.NotFound)),
		Variants:  out.Displays,
		ElapsedMS: out.Elapsed.Milliseconds(),
	}
	for _, id := range out.Result.NotFound {
		doc.NotFound = append(doc.NotFound, id.String())
	}
	if doc.Variants == nil {
		doc.Variants = []present.Display{}
	}
	if out.Failed() {
		doc.Error = out.Message
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func printSuggestions(w io.Writer, prefix rsid.Identifier, matches []rsid.Identifier) {
	if len(matches) == 0 {
		fmt.Fprintf(w, "No RSIDs start with %s\n", prefix)
		return
	}
	noun := "matches"
	if len(matches) == 1 {
		noun = "match"
	}
	fmt.Fprintf(w, "%d %s for %s:\n", len(matches), noun, prefix)
	for _, m := range matches {
		fmt.Fprintf(w, "  %s\n", m)
	}
}

// printHistory renders recent searches, newest first, with times relative to now.
func printHistory(w io.Writer, events []contracts.SearchEvent, now time.Time) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No searches recorded yet")
		return
	}

	t := newTable("WHEN", "KIND", "QUERY", "RESULT")
	for _, ev := range events {
		when := ev.Timestamp
		if ts, err := time.Parse(time.RFC3339Nano, ev.Timestamp); err == nil {
			when = humanize.RelTime(ts, now, "ago", "from now")
		}

		result := fmt.Sprintf("%d out of %d", ev.Found, ev.Requested)
		if !ev.Succeeded() {
			result = "ERROR: " + ev.Error
		}
		t.Row(when, string(ev.Kind), ev.Query, result)
	}
	fmt.Fprintln(w, t.Render())
}

func printStats(w io.Writer, stats contracts.DatasetStats) {
	fmt.Fprintf(w, "📊 %s\n", present.DatasetSummary(stats))
}

func joinIDs(ids []rsid.Identifier) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
