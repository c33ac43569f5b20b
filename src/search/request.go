package search

import (
	"context"

	"snpscope/src/contracts"
)

// Request is one explicit user action. A new value is built per submit.
type Request struct {
	Kind contracts.SearchKind
	// Text is the raw field content: one identifier for single searches,
	// comma or newline separated identifiers for batches.
	Text string
}

// SingleRequest asks for one identifier.
func SingleRequest(raw string) Request {
	return Request{Kind: contracts.SearchSingle, Text: raw}
}

// BatchRequest asks for every identifier in text.
func BatchRequest(text string) Request {
	return Request{Kind: contracts.SearchBatch, Text: text}
}

// Response holds the answer to a Request. Exactly one field is set.
type Response struct {
	Single *Outcome
	Batch  *BatchOutcome
}

// Run dispatches req to Single or Batch.
func (c *Coordinator) Run(ctx context.Context, req Request) Response {
	if req.Kind == contracts.SearchBatch {
		out := c.Batch(ctx, req.Text)
		return Response{Batch: &out}
	}
	out := c.Single(ctx, req.Text)
	return Response{Single: &out}
}
