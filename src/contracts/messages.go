// Package contracts defines the records exchanged with the lookup service and
// the events published between snpscope components.
package contracts

// VariantRecord is a single genotype entry returned by the lookup service.
// Records are immutable once received and never cached across searches.
type VariantRecord struct {
	// Canonical identifier as reported by the service (e.g. "rs53576").
	RSID string `json:"rsid"`
	// First allele of the genotype call.
	Allele1 string `json:"allele1"`
	// Second allele of the genotype call.
	Allele2 string `json:"allele2"`
	// Chromosome label ("1".."22", "X", "Y", "MT").
	Chromosome string `json:"chromosome"`
	// Base-pair position on the chromosome.
	Position int `json:"position"`
}

// DatasetStats describes the dataset currently loaded in the lookup service.
type DatasetStats struct {
	TotalSNPs int  `json:"totalSNPs"`
	IsSorted  bool `json:"isSorted"`
}

// Loaded reports whether the service has any variants to search.
func (s DatasetStats) Loaded() bool { return s.TotalSNPs > 0 }

// SearchKind distinguishes explicit search actions.
type SearchKind string

const (
	SearchSingle SearchKind = "single"
	SearchBatch  SearchKind = "batch"
)

// SearchEvent summarizes one completed explicit search.
// Published to: snpscope.searches
// Key: {session_id}
//
// Events carry query summaries only, never genotype data.
type SearchEvent struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Kind      SearchKind `json:"kind"`
	Query     string     `json:"query"`
	Found     int        `json:"found"`
	Requested int        `json:"requested"`
	NotFound  []string   `json:"not_found,omitempty"`
	Error     string     `json:"error,omitempty"`
	ElapsedMS int64      `json:"elapsed_ms"`
	Timestamp string     `json:"timestamp"` // RFC3339Nano
}

// Succeeded reports whether the search reached the service and got an answer.
func (e SearchEvent) Succeeded() bool { return e.Error == "" }

// TopicSearches carries SearchEvent messages.
const TopicSearches = "snpscope.searches"
