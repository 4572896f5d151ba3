package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/report"
	"github.com/lexandro/codexray/workspace"
)

// HubsArgs defines the input parameters for the xray_hubs tool.
type HubsArgs struct {
	Token      string `json:"token,omitempty" jsonschema:"Import token to list every dependent of (e.g. LoginPage)"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Number of hubs to return (default 6)"`
	Dependents int    `json:"dependents,omitempty" jsonschema:"Dependents listed per hub (default 5)"`
}

// HubsHandler holds the dependencies for the hubs tool.
type HubsHandler struct {
	Workspace *workspace.Workspace
	Logger    *slog.Logger
}

// Handle processes an xray_hubs request.
func (h *HubsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args HubsArgs) (*mcp.CallToolResult, any, error) {
	result, err := h.Workspace.Current()
	if err != nil {
		return errorResult("Error: %v (run xray_scan first)", err), nil, nil
	}

	if args.Token != "" {
		dependents, ok := result.UsedBy[args.Token]
		if !ok {
			return textResult(fmt.Sprintf("No files reference %q.", args.Token)), nil, nil
		}
		paths := dependents.Sorted()
		h.Logger.Info("xray_hubs", "token", args.Token, "dependents", len(paths))
		return textResult(fmt.Sprintf("%s is used by %d files:\n\n  %s\n", args.Token, len(paths), strings.Join(paths, "\n  "))), nil, nil
	}

	if args.Limit <= 0 {
		args.Limit = report.DefaultHubLimit
	}
	if args.Dependents <= 0 {
		args.Dependents = report.DefaultHubDependents
	}
	hubs := report.TopHubs(result.UsedBy, args.Limit, args.Dependents)

	h.Logger.Info("xray_hubs", "limit", args.Limit, "results", len(hubs))
	return textResult(FormatHubs(hubs, result.UsedBy)), nil, nil
}
