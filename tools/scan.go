package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/report"
	"github.com/lexandro/codexray/workspace"
)

// ScanArgs defines the input parameters for the xray_scan tool.
type ScanArgs struct {
	Target string `json:"target,omitempty" jsonschema:"Local directory or repository URL to scan (default: the current target)"`
	Force  bool   `json:"force,omitempty" jsonschema:"Ignore a cached result and scan again"`
}

// ScanHandler holds the dependencies for the scan tool.
type ScanHandler struct {
	Workspace *workspace.Workspace
	Logger    *slog.Logger
}

// Handle processes an xray_scan request.
func (h *ScanHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ScanArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	h.Logger.Info("xray_scan started", "target", args.Target, "force", args.Force)

	target := args.Target
	if target == "" {
		target = h.Workspace.Target()
	}
	if target == "" {
		return errorResult("Error: target parameter is required before the first scan"), nil, nil
	}

	result, err := h.Workspace.Scan(ctx, target, args.Force)
	if err != nil {
		h.Logger.Error("xray_scan failed", "target", target, "error", err)
		return errorResult("Scan error: %v", err), nil, nil
	}

	h.Logger.Info("xray_scan complete",
		"target", target,
		"files", len(result.Records),
		"elapsed", time.Since(start),
	)
	return textResult(report.RenderText(report.NewBundle(ProjectName(target), result, nil))), nil, nil
}
