package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/index"
)

// FilesArgs defines the input parameters for the xray_files tool.
type FilesArgs struct {
	Pattern    string `json:"pattern" jsonschema:"Glob pattern to match files (e.g. **/*.ts or tests/**/*.spec.js)"`
	NameOnly   bool   `json:"nameOnly,omitempty" jsonschema:"If true return only file paths without profile summary"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// FilesHandler holds the dependencies for the files tool.
type FilesHandler struct {
	Records *index.RecordIndex
	Logger  *slog.Logger
}

// Handle processes an xray_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern == "" {
		h.Logger.Warn("xray_files called with empty pattern")
		return errorResult("Error: pattern parameter is required"), nil, nil
	}

	records, err := h.Records.Glob(args.Pattern, args.MaxResults)
	if err != nil {
		h.Logger.Error("xray_files failed", "pattern", args.Pattern, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("xray_files",
		"pattern", args.Pattern,
		"results", len(records),
		"elapsed", time.Since(start),
	)
	return textResult(FormatFileResults(records, args.NameOnly)), nil, nil
}
