// Package reconcile matches batch lookup results against the identifiers the
// user asked for.
package reconcile

import (
	"fmt"
	"strings"

	"snpscope/src/contracts"
	"snpscope/src/lookup"
	"snpscope/src/rsid"
)

// Result is a reconciled batch answer.
type Result struct {
	// Records in the order the service returned them.
	Records []contracts.VariantRecord
	// Distinct normalized identifiers with no matching record, in order of
	// first appearance in the request.
	NotFound []rsid.Identifier
	// Found is the number of returned records.
	Found int
	// Requested counts raw tokens after trimming, duplicates included.
	Requested int
}

// Ratio renders the "N out of M" summary.
func (r Result) Ratio() string {
	return fmt.Sprintf("%d out of %d", r.Found, r.Requested)
}

// Complete reports whether every requested identifier was found.
func (r Result) Complete() bool { return len(r.NotFound) == 0 }

// PrepareBatch splits batch text into raw tokens. It fails with a validation
// error when nothing is left after trimming, so no request is sent.
func PrepareBatch(text string) ([]string, error) {
	tokens := rsid.SplitBatch(text)
	if len(tokens) == 0 {
		return nil, &lookup.Error{Kind: lookup.KindValidation, Message: "Please enter RSIDs to search"}
	}
	return tokens, nil
}

// Reconcile pairs the raw requested tokens with the records the service
// returned. Records are kept untouched in service order.
func Reconcile(requested []string, returned []contracts.VariantRecord) Result {
	records := make([]contracts.VariantRecord, len(returned))
	copy(records, returned)

	have := make(map[string]struct{}, len(returned))
	for _, rec := range returned {
		have[key(rsid.Normalize(rec.RSID))] = struct{}{}
	}

	requestedCount := 0
	seen := make(map[string]struct{}, len(requested))
	notFound := []rsid.Identifier{}
	for _, raw := range requested {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		requestedCount++

		id := rsid.Normalize(raw)
		k := key(id)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		if _, ok := have[k]; !ok {
			notFound = append(notFound, id)
		}
	}

	return Result{
		Records:   records,
		NotFound:  notFound,
		Found:     len(returned),
		Requested: requestedCount,
	}
}

func key(id rsid.Identifier) string {
	return strings.ToLower(id.String())
}
