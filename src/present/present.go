// Package present turns variant records into display values with reference
// links. Everything here is deterministic and makes no network calls.
package present

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"snpscope/src/contracts"
	"snpscope/src/rsid"
)

const (
	snpediaBase   = "https://www.snpedia.com/index.php/Rs"
	assistantBase = "https://chatgpt.com/?q="

	genotypePrompt = "I+have+%s+with+%s%s.+Simply+and+clearly+explain+what+this+allele+and+genotype+combination+implies+for+me.+Highlight+the+benefits+and+risks,+if+any,+of+this+genotype."
	fallbackPrompt = "Tell+me+about+SNP+%s"
)

// Links are external references for a variant.
type Links struct {
	SNPedia   string `json:"snpedia"`
	Genotype  string `json:"genotype,omitempty"`
	Assistant string `json:"assistant"`
}

// Display is a found record ready to render.
type Display struct {
	RSID       string `json:"rsid"`
	Allele1    string `json:"allele1"`
	Allele2    string `json:"allele2"`
	Genotype   string `json:"genotype"`
	Chromosome string `json:"chromosome"`
	Position   int    `json:"position"`
	// Position with thousands separators, e.g. "8,762,685".
	PositionText string `json:"position_text"`
	Links        Links  `json:"links"`
}

// Fallback is shown when a single lookup finds nothing: the identifier is
// not in the user's data but the references may still be useful.
type Fallback struct {
	RSID    string `json:"rsid"`
	Message string `json:"message"`
	Links   Links  `json:"links"`
}

// FromRecord builds the display for a found record.
func FromRecord(rec contracts.VariantRecord) Display {
	digits := rsid.Digits(rsid.Identifier(rec.RSID))
	return Display{
		RSID:         rec.RSID,
		Allele1:      rec.Allele1,
		Allele2:      rec.Allele2,
		Genotype:     rec.Allele1 + ";" + rec.Allele2,
		Chromosome:   rec.Chromosome,
		Position:     rec.Position,
		PositionText: humanize.Comma(int64(rec.Position)),
		Links: Links{
			SNPedia:   snpediaBase + digits,
			Genotype:  fmt.Sprintf("%s%s(%s;%s)", snpediaBase, digits, rec.Allele1, rec.Allele2),
			Assistant: assistantBase + fmt.Sprintf(genotypePrompt, rec.RSID, rec.Allele1, rec.Allele2),
		},
	}
}

// FromRecords maps FromRecord over records, keeping order.
func FromRecords(recs []contracts.VariantRecord) []Display {
	out := make([]Display, 0, len(recs))
	for _, r := range recs {
		out = append(out, FromRecord(r))
	}
	return out
}

// FromNotFound builds the fallback view for an identifier with no record.
func FromNotFound(id rsid.Identifier) Fallback {
	id = rsid.Normalize(id.String())
	return Fallback{
		RSID:    id.String(),
		Message: "No match found for: " + id.String(),
		Links: Links{
			SNPedia:   snpediaBase + rsid.Digits(id),
			Assistant: assistantBase + fmt.Sprintf(fallbackPrompt, id),
		},
	}
}

// Elapsed renders a search duration the way results are footed.
func Elapsed(d time.Duration) string {
	return fmt.Sprintf("Search completed in %.3f seconds", d.Seconds())
}

// DatasetSummary renders dataset statistics for status lines.
func DatasetSummary(s contracts.DatasetStats) string {
	if !s.Loaded() {
		return "No DNA data loaded"
	}
	order := "unsorted"
	if s.IsSorted {
		order = "sorted"
	}
	return fmt.Sprintf("%s SNPs loaded (%s)", humanize.Comma(int64(s.TotalSNPs)), order)
}
