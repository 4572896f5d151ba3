package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/index"
)

// SearchArgs defines the input parameters for the xray_search tool.
type SearchArgs struct {
	Query      string `json:"query,omitempty" jsonschema:"Search query: words, \"exact phrase\" or /regex/ over paths, purposes, risk categories and imports"`
	Purpose    string `json:"purpose,omitempty" jsonschema:"Exact purpose tag filter (e.g. Test Script)"`
	Language   string `json:"language,omitempty" jsonschema:"Exact language filter (e.g. TypeScript)"`
	FileGlob   string `json:"fileGlob,omitempty" jsonschema:"Glob pattern to filter by path (e.g. **/*.py)"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of files to return (default 50)"`
}

// SearchHandler holds the dependencies for the search tool.
type SearchHandler struct {
	Search *index.SearchIndex
	Logger *slog.Logger
}

// Handle processes an xray_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" && args.Purpose == "" && args.Language == "" && args.FileGlob == "" {
		h.Logger.Warn("xray_search called without query or filters")
		return errorResult("Error: provide a query or at least one filter"), nil, nil
	}

	hits, total, err := h.Search.Search(index.SearchOptions{
		Query:      args.Query,
		Purpose:    args.Purpose,
		Language:   args.Language,
		FileGlob:   args.FileGlob,
		MaxResults: args.MaxResults,
	})
	if err != nil {
		h.Logger.Error("xray_search failed", "query", args.Query, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("xray_search",
		"query", args.Query,
		"purpose", args.Purpose,
		"results", len(hits),
		"elapsed", time.Since(start),
	)
	return textResult(FormatSearchHits(hits, total)), nil, nil
}
