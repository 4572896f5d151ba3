package tools

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/profile"
	"github.com/lexandro/codexray/workspace"
)

// RisksArgs defines the input parameters for the xray_risks tool.
type RisksArgs struct {
	MinSeverity string `json:"minSeverity,omitempty" jsonschema:"Lowest severity to include: Low, Medium, High or Critical (default Low)"`
	Category    string `json:"category,omitempty" jsonschema:"Only this risk category (e.g. hardcoded credential)"`
	FileGlob    string `json:"fileGlob,omitempty" jsonschema:"Glob pattern over relative paths (e.g. tests/**)"`
	MaxResults  int    `json:"maxResults,omitempty" jsonschema:"Maximum number of findings to return (default 100)"`
}

// RisksHandler holds the dependencies for the risks tool.
type RisksHandler struct {
	Workspace *workspace.Workspace
	Logger    *slog.Logger
}

// Handle processes an xray_risks request.
func (h *RisksHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RisksArgs) (*mcp.CallToolResult, any, error) {
	result, err := h.Workspace.Current()
	if err != nil {
		return errorResult("Error: %v (run xray_scan first)", err), nil, nil
	}

	minSeverity := profile.SeverityLow
	if args.MinSeverity != "" {
		parsed, ok := profile.ParseSeverity(normalizeSeverity(args.MinSeverity))
		if !ok {
			return errorResult("Error: unknown severity %q (want Low, Medium, High or Critical)", args.MinSeverity), nil, nil
		}
		minSeverity = parsed
	}
	glob := strings.ReplaceAll(args.FileGlob, "\\", "/")
	if glob != "" && !doublestar.ValidatePattern(glob) {
		return errorResult("Error: invalid glob pattern: %s", args.FileGlob), nil, nil
	}
	if args.MaxResults <= 0 {
		args.MaxResults = 100
	}

	var entries []RiskEntry
	total := 0
	for _, path := range result.SortedPaths() {
		if glob != "" {
			if matched, _ := doublestar.Match(glob, path); !matched {
				continue
			}
		}
		for _, finding := range result.Records[path].Risks {
			if finding.Severity < minSeverity {
				continue
			}
			if args.Category != "" && !strings.EqualFold(string(finding.Category), args.Category) {
				continue
			}
			total++
			if len(entries) < args.MaxResults {
				entries = append(entries, RiskEntry{Path: path, Finding: finding})
			}
		}
	}

	h.Logger.Info("xray_risks", "minSeverity", minSeverity, "category", args.Category, "results", total)
	return textResult(FormatRisks(entries, total)), nil, nil
}

// normalizeSeverity accepts any casing ("high", "HIGH").
func normalizeSeverity(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
