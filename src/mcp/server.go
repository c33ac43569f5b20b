package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"snpscope/src/contracts"
	"snpscope/src/present"
	"snpscope/src/search"
	"snpscope/src/store"
)

// defaultInlineLimit is how many batch variants are returned inline.
const defaultInlineLimit = 25

// StatsSource reports the dataset loaded in the lookup service.
type StatsSource interface {
	Stats(ctx context.Context) (contracts.DatasetStats, error)
}

// HistorySource lists recent searches. store.Store satisfies it.
type HistorySource interface {
	RecentSearches(ctx context.Context, limit int) ([]contracts.SearchEvent, error)
}

// Server is the MCP server for snpscope.
type Server struct {
	mcpServer *server.MCPServer
	coord     *search.Coordinator
	results   ResultStore
	stats     StatsSource
	history   HistorySource
}

// Option configures a Server.
type Option func(*Server)

// WithStats registers the dataset_stats tool.
func WithStats(s StatsSource) Option {
	return func(srv *Server) { srv.stats = s }
}

// WithHistory registers the recent_searches tool.
func WithHistory(h HistorySource) Option {
	return func(srv *Server) { srv.history = h }
}

// NewServer creates a new MCP server over coord.
func NewServer(coord *search.Coordinator, version string, opts ...Option) *Server {
	s := server.NewMCPServer(
		"snpscope",
		version,
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		coord:     coord,
		results:   NewInMemoryStore(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	lookupTool := mcp.NewTool("lookup_rsid",
		mcp.WithDescription("Look up one RSID in the user's uploaded DNA data. Returns the genotype, chromosome and position with reference links, or reference links only when the RSID is not in the data."),
		mcp.WithString("rsid",
			mcp.Required(),
			mcp.Description("RSID such as rs53576; the rs prefix is optional"),
		),
	)

	batchTool := mcp.NewTool("lookup_batch",
		mcp.WithDescription("Look up several RSIDs at once. Reports how many were found and which were not. Large batches return the first variants inline; use get_variant with the request_id for the rest."),
		mcp.WithString("rsids",
			mcp.Required(),
			mcp.Description("Comma or newline separated RSIDs"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Max variants returned inline (default: %d)", defaultInlineLimit)),
		),
	)

	variantTool := mcp.NewTool("get_variant",
		mcp.WithDescription("Get one variant from an earlier lookup_batch response."),
		mcp.WithString("request_id",
			mcp.Required(),
			mcp.Description("Request ID from lookup_batch response"),
		),
		mcp.WithString("rsid",
			mcp.Required(),
			mcp.Description("RSID listed in the batch response"),
		),
	)

	suggestTool := mcp.NewTool("suggest_rsids",
		mcp.WithDescription("List RSIDs in the user's data that start with a prefix."),
		mcp.WithString("prefix",
			mcp.Required(),
			mcp.Description("RSID prefix such as rs535"),
		),
	)

	s.mcpServer.AddTool(lookupTool, s.handleLookup)
	s.mcpServer.AddTool(batchTool, s.handleBatch)
	s.mcpServer.AddTool(variantTool, s.handleGetVariant)
	s.mcpServer.AddTool(suggestTool, s.handleSuggest)

	if s.stats != nil {
		s.mcpServer.AddTool(mcp.NewTool("dataset_stats",
			mcp.WithDescription("Report how many SNPs are loaded in the lookup service."),
		), s.handleStats)
	}
	if s.history != nil {
		s.mcpServer.AddTool(mcp.NewTool("recent_searches",
			mcp.WithDescription("List recent searches, newest first. Only queries and counts are kept, never genotypes."),
			mcp.WithNumber("limit",
				mcp.Description(fmt.Sprintf("Max searches (default: %d)", store.DefaultLimit)),
			),
		), s.handleHistory)
	}
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// handleLookup handles the lookup_rsid tool call.
func (s *Server) handleLookup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("rsid", "")
	if strings.TrimSpace(raw) == "" {
		return mcp.NewToolResultError("rsid parameter is required"), nil
	}

	out := s.coord.Single(ctx, raw)
	result := SingleResult{
		Query:     out.Identifier.String(),
		ElapsedMS: out.Elapsed.Milliseconds(),
	}
	switch out.Kind {
	case search.Found:
		result.Status = StatusFound
		result.Variant = &out.Display
	case search.NotFound:
		result.Status = StatusNotFound
		result.Fallback = &out.Fallback
	default:
		result.Status = StatusError
		result.Error = out.Message
		result.ErrorKind = out.ErrKind.String()
	}

	return jsonResult(result)
}

// handleBatch handles the lookup_batch tool call.
// Returns a manifest; use get_variant for variants beyond the inline limit.
func (s *Server) handleBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("rsids", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("rsids parameter is required"), nil
	}

	limit := request.GetInt("limit", defaultInlineLimit)
	if limit <= 0 {
		limit = defaultInlineLimit
	}

	out := s.coord.Batch(ctx, text)
	if out.Failed() {
		return mcp.NewToolResultError(fmt.Sprintf("batch lookup failed: %s", out.Message)), nil
	}

	requestID := generateRequestID()
	s.results.Store(requestID, out.Displays)

	return jsonResult(toManifest(requestID, out, limit))
}

// handleGetVariant handles the get_variant tool call.
func (s *Server) handleGetVariant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := request.GetString("request_id", "")
	if requestID == "" {
		return mcp.NewToolResultError("request_id parameter is required"), nil
	}

	id := request.GetString("rsid", "")
	if id == "" {
		return mcp.NewToolResultError("rsid parameter is required"), nil
	}

	variant, found := s.results.Get(requestID, id)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("variant not found: request_id=%s, rsid=%s", requestID, id)), nil
	}

	return jsonResult(variant)
}

// handleSuggest handles the suggest_rsids tool call.
func (s *Server) handleSuggest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix := request.GetString("prefix", "")
	matches, err := s.coord.Suggest(ctx, prefix)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("suggest failed: %v", err)), nil
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.String()
	}
	return jsonResult(map[string]any{"prefix": prefix, "matches": ids})
}

// handleStats handles the dataset_stats tool call.
func (s *Server) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"totalSNPs": stats.TotalSNPs,
		"isSorted":  stats.IsSorted,
		"summary":   present.DatasetSummary(stats),
	})
}

// handleHistory handles the recent_searches tool call.
func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", store.DefaultLimit)

	events, err := s.history.RecentSearches(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", err)), nil
	}

	entries := make([]HistoryEntry, 0, len(events))
	for _, ev := range events {
		entries = append(entries, HistoryEntry{
			Kind:      string(ev.Kind),
			Query:     ev.Query,
			Found:     ev.Found,
			Requested: ev.Requested,
			NotFound:  ev.NotFound,
			Error:     ev.Error,
			Timestamp: ev.Timestamp,
		})
	}
	return jsonResult(entries)
}

// toManifest inlines up to limit variants and lists the rest by RSID.
func toManifest(requestID string, out search.BatchOutcome, limit int) BatchManifest {
	notFound := make([]string, len(out.Result.NotFound))
	for i, id := range out.Result.NotFound {
		notFound[i] = id.String()
	}

	inline := out.Displays
	var omitted []string
	if len(inline) > limit {
		for _, d := range inline[limit:] {
			omitted = append(omitted, d.RSID)
		}
		inline = inline[:limit]
	}
	if inline == nil {
		inline = []present.Display{}
	}

	return BatchManifest{
		RequestID: requestID,
		Message:   out.Message,
		Requested: out.Result.Requested,
		Found:     out.Result.Found,
		NotFound:  notFound,
		Variants:  inline,
		Omitted:   omitted,
		ElapsedMS: out.Elapsed.Milliseconds(),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// generateRequestID creates a unique request identifier.
func generateRequestID() string {
	return "req-" + uuid.NewString()
}
