// Package search runs explicit user searches: it validates input, calls the
// lookup service, reconciles batch answers, prepares display values and
// announces each completed search on the event broker.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"snpscope/src/contracts"
	"snpscope/src/logger"
	"snpscope/src/lookup"
	"snpscope/src/present"
	"snpscope/src/reconcile"
	"snpscope/src/rsid"
)

// Lookup is the service surface the coordinator needs.
type Lookup interface {
	LookupSingle(ctx context.Context, id rsid.Identifier) (contracts.VariantRecord, error)
	LookupBatch(ctx context.Context, ids []string) ([]contracts.VariantRecord, error)
	LookupPartial(ctx context.Context, prefix rsid.Identifier) ([]rsid.Identifier, error)
}

// Publisher receives search events. broker.Broker satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, value []byte) error
}

// Kind is the shape of an outcome.
type Kind int

const (
	Found Kind = iota
	NotFound
	Failed
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "error"
	}
}

// Outcome is the answer to a single search.
type Outcome struct {
	Kind       Kind
	Identifier rsid.Identifier
	Record     contracts.VariantRecord
	Display    present.Display
	Fallback   present.Fallback
	// ErrKind and Message are set when Kind is Failed.
	ErrKind lookup.Kind
	Message string
	Err     error
	Elapsed time.Duration
}

// BatchOutcome is the reconciled answer to a batch search.
type BatchOutcome struct {
	Tokens   []string
	Result   reconcile.Result
	Displays []present.Display
	Message  string
	// Err is set when the batch could not be run at all.
	Err     error
	ErrKind lookup.Kind
	Elapsed time.Duration
}

// Failed reports whether the batch errored before reconciliation.
func (b BatchOutcome) Failed() bool { return b.Err != nil }

// Outcomes flattens a batch into per-identifier outcomes: found records in
// service order, then identifiers that were not found.
func (b BatchOutcome) Outcomes() []Outcome {
	if b.Failed() {
		return nil
	}
	out := make([]Outcome, 0, len(b.Result.Records)+len(b.Result.NotFound))
	for i, rec := range b.Result.Records {
		out = append(out, Outcome{
			Kind:       Found,
			Identifier: rsid.Normalize(rec.RSID),
			Record:     rec,
			Display:    b.Displays[i],
		})
	}
	for _, id := range b.Result.NotFound {
		out = append(out, Outcome{
			Kind:       NotFound,
			Identifier: id,
			Fallback:   present.FromNotFound(id),
		})
	}
	return out
}

// Coordinator runs explicit searches. Overlapping calls are not serialized;
// callers that render results simply keep the last one they receive.
type Coordinator struct {
	lookup    Lookup
	publisher Publisher
	logger    logger.Logger
	sessionID string
	now       func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPublisher announces completed searches on p.
func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(c *Coordinator) { c.sessionID = id }
}

// NewCoordinator creates a coordinator over lookup.
func NewCoordinator(l Lookup, opts ...Option) *Coordinator {
	c := &Coordinator{
		lookup:    l,
		logger:    logger.NewSilentLogger(),
		sessionID: uuid.NewString(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID identifies this coordinator's searches in published events.
func (c *Coordinator) SessionID() string { return c.sessionID }

// Lookup exposes the underlying lookup service for suggestion scheduling.
func (c *Coordinator) Lookup() Lookup { return c.lookup }

// Single looks up one identifier. Empty input fails validation without a
// service call.
func (c *Coordinator) Single(ctx context.Context, raw string) Outcome {
	start := c.now()

	if strings.TrimSpace(raw) == "" {
		out := failed("", &lookup.Error{Kind: lookup.KindValidation, Message: "Please enter an RSID to search"})
		out.Elapsed = c.since(start)
		c.publish(ctx, singleEvent(raw, out))
		return out
	}

	id := rsid.Normalize(raw)
	rec, err := c.lookup.LookupSingle(ctx, id)

	var out Outcome
	switch {
	case err == nil:
		out = Outcome{Kind: Found, Identifier: id, Record: rec, Display: present.FromRecord(rec)}
	case errors.Is(err, lookup.ErrNotFound):
		out = Outcome{Kind: NotFound, Identifier: id, Fallback: present.FromNotFound(id)}
		if le := asLookupError(err); le != nil {
			out.Message = le.Message
		}
	default:
		out = failed(id, err)
	}
	out.Elapsed = c.since(start)

	c.logger.Info("single search %s: %s in %s", id, out.Kind, out.Elapsed)
	c.publish(ctx, singleEvent(raw, out))
	return out
}

// Batch looks up every identifier in comma or newline separated text.
func (c *Coordinator) Batch(ctx context.Context, text string) BatchOutcome {
	start := c.now()

	tokens, err := reconcile.PrepareBatch(text)
	if err != nil {
		out := BatchOutcome{Err: err, ErrKind: lookup.KindOf(err), Message: messageOf(err)}
		out.Elapsed = c.since(start)
		c.publish(ctx, batchEvent(text, out))
		return out
	}

	records, err := c.lookup.LookupBatch(ctx, tokens)
	if err != nil {
		out := BatchOutcome{Tokens: tokens, Err: err, ErrKind: lookup.KindOf(err), Message: messageOf(err)}
		out.Elapsed = c.since(start)
		c.logger.Error("batch search of %d identifiers failed: %v", len(tokens), err)
		c.publish(ctx, batchEvent(text, out))
		return out
	}

	result := reconcile.Reconcile(tokens, records)
	out := BatchOutcome{
		Tokens:   tokens,
		Result:   result,
		Displays: present.FromRecords(result.Records),
		Message:  fmt.Sprintf("Found %s RSIDs", result.Ratio()),
		Elapsed:  c.since(start),
	}

	c.logger.Info("batch search: %s (%d not found) in %s", result.Ratio(), len(result.NotFound), out.Elapsed)
	c.publish(ctx, batchEvent(text, out))
	return out
}

// Suggest returns partial matches for prefix. It is the synchronous
// counterpart of the debounced scheduler, used by the CLI and MCP tools.
func (c *Coordinator) Suggest(ctx context.Context, prefix string) ([]rsid.Identifier, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, &lookup.Error{Kind: lookup.KindValidation, Message: "Please enter an RSID prefix"}
	}
	return c.lookup.LookupPartial(ctx, rsid.Normalize(prefix))
}

func (c *Coordinator) since(start time.Time) time.Duration {
	return c.now().Sub(start)
}

func failed(id rsid.Identifier, err error) Outcome {
	return Outcome{
		Kind:       Failed,
		Identifier: id,
		ErrKind:    lookup.KindOf(err),
		Message:    messageOf(err),
		Err:        err,
	}
}

func asLookupError(err error) *lookup.Error {
	var le *lookup.Error
	if errors.As(err, &le) {
		return le
	}
	return nil
}

// messageOf is the user-facing text of err.
func messageOf(err error) string {
	if le := asLookupError(err); le != nil {
		return le.Message
	}
	return err.Error()
}

func singleEvent(raw string, out Outcome) contracts.SearchEvent {
	ev := contracts.SearchEvent{
		Kind:      contracts.SearchSingle,
		Query:     strings.TrimSpace(raw),
		Requested: 1,
		ElapsedMS: out.Elapsed.Milliseconds(),
	}
	switch out.Kind {
	case Found:
		ev.Found = 1
	case NotFound:
		ev.NotFound = []string{out.Identifier.String()}
	default:
		ev.Requested = 0
		if out.Identifier != "" {
			ev.Requested = 1
		}
		ev.Error = out.Message
	}
	return ev
}

func batchEvent(text string, out BatchOutcome) contracts.SearchEvent {
	ev := contracts.SearchEvent{
		Kind:      contracts.SearchBatch,
		Query:     strings.Join(out.Tokens, ","),
		Requested: len(out.Tokens),
		ElapsedMS: out.Elapsed.Milliseconds(),
	}
	if ev.Query == "" {
		ev.Query = strings.TrimSpace(text)
	}
	if out.Failed() {
		ev.Error = out.Message
		return ev
	}
	ev.Requested = out.Result.Requested
	ev.Found = out.Result.Found
	for _, id := range out.Result.NotFound {
		ev.NotFound = append(ev.NotFound, id.String())
	}
	return ev
}

// publish is best effort: failures are logged and never reach the caller.
func (c *Coordinator) publish(ctx context.Context, ev contracts.SearchEvent) {
	if c.publisher == nil {
		return
	}

	ev.ID = uuid.NewString()
	ev.SessionID = c.sessionID
	ev.Timestamp = c.now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error("failed to encode search event: %v", err)
		return
	}
	if err := c.publisher.Publish(ctx, contracts.TopicSearches, c.sessionID, data); err != nil {
		c.logger.Error("failed to publish search event: %v", err)
	}
}
