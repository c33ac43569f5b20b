// Package lookup provides a client for the remote variant lookup service.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"snpscope/src/contracts"
	"snpscope/src/logger"
	"snpscope/src/rsid"
)

const (
	// DefaultTimeout bounds every request to the service.
	DefaultTimeout = 30 * time.Second

	searchPath      = "/api/search"
	batchSearchPath = "/api/batch-search"
	statsPath       = "/api/stats"

	tracerName = "snpscope/lookup"
)

// Client is a lookup service client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. A client passed with
// WithHTTPClient is copied rather than modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new lookup service client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// envelope is the response wrapper shared by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Matches []string        `json:"matches,omitempty"`
	Partial bool            `json:"partial,omitempty"`
	Count   int             `json:"count,omitempty"`

	TotalSNPs int  `json:"totalSNPs,omitempty"`
	IsSorted  bool `json:"isSorted,omitempty"`
}

type batchRequest struct {
	RSIDs []string `json:"rsids"`
}

// LookupSingle fetches the record for one identifier.
// A miss is reported as an error matching ErrNotFound.
func (c *Client) LookupSingle(ctx context.Context, id rsid.Identifier) (contracts.VariantRecord, error) {
	ctx, span := c.startSpan(ctx, "lookup.single", attribute.String("rsid", id.String()))
	defer span.End()

	if strings.TrimSpace(id.String()) == "" {
		return contracts.VariantRecord{}, c.fail(span, newError(KindValidation, "RSID is required", nil))
	}

	q := url.Values{}
	q.Set("rsid", id.String())

	env, err := c.get(ctx, searchPath, q)
	if err != nil {
		return contracts.VariantRecord{}, c.fail(span, err)
	}
	if !env.Success {
		return contracts.VariantRecord{}, c.fail(span, classifyFailure(env.Message, true))
	}

	var rec contracts.VariantRecord
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		return contracts.VariantRecord{}, c.fail(span, newError(KindTransport, "failed to decode response", err))
	}

	c.logger.Debug("lookup single %s -> %s chr%s:%d", id, rec.RSID, rec.Chromosome, rec.Position)
	return rec, nil
}

// LookupBatch fetches records for an ordered list of raw identifiers.
// Records come back in service order; zero matches is not an error.
func (c *Client) LookupBatch(ctx context.Context, ids []string) ([]contracts.VariantRecord, error) {
	ctx, span := c.startSpan(ctx, "lookup.batch", attribute.Int("requested", len(ids)))
	defer span.End()

	if len(ids) == 0 {
		return nil, c.fail(span, newError(KindValidation, "No RSIDs provided", nil))
	}

	body, err := json.Marshal(batchRequest{RSIDs: ids})
	if err != nil {
		return nil, c.fail(span, newError(KindTransport, "failed to encode request", err))
	}

	env, lerr := c.do(ctx, http.MethodPost, c.baseURL+batchSearchPath, bytes.NewReader(body))
	if lerr != nil {
		return nil, c.fail(span, lerr)
	}
	if !env.Success {
		return nil, c.fail(span, classifyFailure(env.Message, false))
	}

	records := []contracts.VariantRecord{}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return nil, c.fail(span, newError(KindTransport, "failed to decode response", err))
		}
	}

	span.SetAttributes(attribute.Int("found", len(records)))
	c.logger.Debug("lookup batch requested=%d found=%d", len(ids), len(records))
	return records, nil
}

// LookupPartial returns identifiers that start with prefix.
// An empty list is a successful answer.
func (c *Client) LookupPartial(ctx context.Context, prefix rsid.Identifier) ([]rsid.Identifier, error) {
	ctx, span := c.startSpan(ctx, "lookup.partial", attribute.String("prefix", prefix.String()))
	defer span.End()

	if strings.TrimSpace(prefix.String()) == "" {
		return nil, c.fail(span, newError(KindValidation, "RSID prefix is required", nil))
	}

	q := url.Values{}
	q.Set("rsid", prefix.String())
	q.Set("partial", "true")

	env, err := c.get(ctx, searchPath, q)
	if err != nil {
		return nil, c.fail(span, err)
	}
	if !env.Success {
		return nil, c.fail(span, classifyFailure(env.Message, false))
	}

	matches := make([]rsid.Identifier, 0, len(env.Matches))
	for _, m := range env.Matches {
		matches = append(matches, rsid.Identifier(m))
	}

	span.SetAttributes(attribute.Int("matches", len(matches)))
	c.logger.Debug("lookup partial %s -> %d matches", prefix, len(matches))
	return matches, nil
}

// Stats returns statistics for the dataset loaded in the service.
func (c *Client) Stats(ctx context.Context) (contracts.DatasetStats, error) {
	ctx, span := c.startSpan(ctx, "lookup.stats")
	defer span.End()

	env, err := c.get(ctx, statsPath, nil)
	if err != nil {
		return contracts.DatasetStats{}, c.fail(span, err)
	}
	if !env.Success {
		return contracts.DatasetStats{}, c.fail(span, classifyFailure(env.Message, false))
	}

	return contracts.DatasetStats{TotalSNPs: env.TotalSNPs, IsSorted: env.IsSorted}, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (*envelope, *Error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return c.do(ctx, http.MethodGet, u, nil)
}

// do executes a request and decodes the envelope. Failure envelopes are
// returned as-is; only transport problems and rejected statuses are errors.
func (c *Client) do(ctx context.Context, method, u string, body io.Reader) (*envelope, *Error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, newError(KindTransport, "failed to create request", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindTransport, "failed to execute request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindTransport, "failed to read response", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, newError(KindValidation, msg, nil)
	case resp.StatusCode != http.StatusOK:
		return nil, newError(KindTransport,
			fmt.Sprintf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}

	if decodeErr != nil {
		return nil, newError(KindTransport, "failed to decode response", decodeErr)
	}
	return &env, nil
}

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("service.url", c.baseURL))...),
	)
}

func (c *Client) fail(span trace.Span, err *Error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Message)
	span.SetAttributes(attribute.String("error.kind", err.Kind.String()))
	c.logger.Debug("lookup %s failure: %v", err.Kind, err)
	return err
}
