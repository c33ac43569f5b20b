// Package mcp provides the MCP server that exposes RSID lookups as tools.
package mcp

import "snpscope/src/present"

// Status values for SingleResult.
const (
	StatusFound    = "found"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// SingleResult is the lookup_rsid tool response.
type SingleResult struct {
	Query     string            `json:"query"`
	Status    string            `json:"status"`
	Variant   *present.Display  `json:"variant,omitempty"`
	Fallback  *present.Fallback `json:"fallback,omitempty"`
	Error     string            `json:"error,omitempty"`
	ErrorKind string            `json:"error_kind,omitempty"`
	ElapsedMS int64             `json:"elapsed_ms"`
}

// BatchManifest is the lookup_batch tool response. Only the first Limit
// variants are inlined; the rest are fetched with get_variant.
type BatchManifest struct {
	RequestID string            `json:"request_id"`
	Message   string            `json:"message"`
	Requested int               `json:"requested"`
	Found     int               `json:"found"`
	NotFound  []string          `json:"not_found"`
	Variants  []present.Display `json:"variants"`
	// Omitted lists found identifiers left out of Variants.
	Omitted   []string `json:"omitted,omitempty"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

// HistoryEntry is one row of the recent_searches tool response.
type HistoryEntry struct {
	Kind      string   `json:"kind"`
	Query     string   `json:"query"`
	Found     int      `json:"found"`
	Requested int      `json:"requested"`
	NotFound  []string `json:"not_found,omitempty"`
	Error     string   `json:"error,omitempty"`
	Timestamp string   `json:"timestamp"`
}
