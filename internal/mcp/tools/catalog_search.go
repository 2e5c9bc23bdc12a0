package tools

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/UB-Mannheim/maidisco/internal/relay"
	"github.com/UB-Mannheim/maidisco/library/catalog"
)

// CatalogSearchToolName is the registered MCP tool name.
const CatalogSearchToolName = "catalog_search"

// Searcher runs one natural-language catalog search.
type Searcher interface {
	Search(ctx context.Context, req relay.SearchRequest) (*relay.Outcome, error)
	Backend() catalog.Backend
}

// CatalogSearchTool implements the catalog_search MCP tool.
type CatalogSearchTool struct {
	searcher Searcher
	logger   logSDK.Logger
}

// NewCatalogSearchTool constructs a CatalogSearchTool.
func NewCatalogSearchTool(searcher Searcher, logger logSDK.Logger) (*CatalogSearchTool, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &CatalogSearchTool{
		searcher: searcher,
		logger:   logger,
	}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *CatalogSearchTool) Definition() mcp.Tool {
	return mcp.NewTool(
		CatalogSearchToolName,
		mcp.WithDescription("Search the "+t.searcher.Backend().DisplayName()+
			" library catalog with a natural-language request. Returns the translated query, "+
			"up to ten normalized records and a short summary with follow-up queries."),
		mcp.WithString(
			"query",
			mcp.Required(),
			mcp.Description("Natural-language literature search request."),
		),
		mcp.WithString("language", mcp.Description("Optional language facet, e.g. English.")),
		mcp.WithString("material_type", mcp.Description("Optional material type facet, e.g. Books.")),
		mcp.WithString("year_from", mcp.Description("Optional earliest publication year.")),
		mcp.WithString("year_to", mcp.Description("Optional latest publication year.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes the catalog_search tool.
func (t *CatalogSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return mcp.NewToolResultError("query cannot be empty"), nil
	}

	overrides := catalog.Filters{
		Language:     strings.TrimSpace(req.GetString("language", "")),
		MaterialType: strings.TrimSpace(req.GetString("material_type", "")),
		YearFrom:     strings.TrimSpace(req.GetString("year_from", "")),
		YearTo:       strings.TrimSpace(req.GetString("year_to", "")),
	}

	start := time.Now().UTC()
	t.logger.Debug("catalog_search started", zap.Int("query_len", len(query)))

	out, err := t.searcher.Search(ctx, relay.SearchRequest{Query: query, Overrides: overrides})
	if err != nil {
		t.logger.Warn("catalog_search rejected", zap.Error(err), zap.Int("query_len", len(query)))
		return mcp.NewToolResultError(err.Error()), nil
	}
	if out.Failed() {
		t.logger.Warn("catalog_search failed",
			zap.String("request_id", out.RequestID),
			zap.String("error", out.Error))
		return mcp.NewToolResultError(out.Error), nil
	}

	t.logger.Debug("catalog_search completed",
		zap.String("request_id", out.RequestID),
		zap.Int("results_count", len(out.Records)),
		zap.Duration("duration", time.Since(start)),
	)

	toolResult, err := mcp.NewToolResultJSON(out)
	if err != nil {
		t.logger.Error("encode search outcome", zap.Error(err))
		return mcp.NewToolResultError("failed to encode search outcome"), nil
	}

	return toolResult, nil
}
