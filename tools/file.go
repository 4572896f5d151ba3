package tools

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/index"
	"github.com/lexandro/codexray/workspace"
)

// FileArgs defines the input parameters for the xray_file tool.
type FileArgs struct {
	FilePath string `json:"filePath" jsonschema:"Relative file path (e.g. tests/login.spec.ts)"`
}

// FileHandler holds the dependencies for the file tool.
type FileHandler struct {
	Records   *index.RecordIndex
	Workspace *workspace.Workspace
	Logger    *slog.Logger
}

// Handle processes an xray_file request.
func (h *FileHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FileArgs) (*mcp.CallToolResult, any, error) {
	if args.FilePath == "" {
		h.Logger.Warn("xray_file called with empty filePath")
		return errorResult("Error: filePath parameter is required"), nil, nil
	}

	rec := h.Records.Get(args.FilePath)
	if rec == nil {
		h.Logger.Info("xray_file not found", "filePath", args.FilePath)
		return errorResult("File not found in scan result: %s", args.FilePath), nil, nil
	}

	// dependents are matched on the stem, which is how import tokens name files
	var dependents []string
	if result, err := h.Workspace.Current(); err == nil {
		base := path.Base(rec.RelativePath)
		stem := strings.TrimSuffix(base, path.Ext(base))
		if set, ok := result.UsedBy[stem]; ok {
			dependents = set.Sorted()
		} else if set, ok := result.UsedBy[base]; ok {
			dependents = set.Sorted()
		}
	}

	h.Logger.Info("xray_file", "filePath", rec.RelativePath, "dependents", len(dependents))
	return textResult(FormatRecord(rec, dependents)), nil, nil
}
