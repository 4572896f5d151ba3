package tools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/summary"
	"github.com/lexandro/codexray/workspace"
)

// SummaryArgs defines the input parameters for the xray_summary tool (none required).
type SummaryArgs struct{}

// SummaryHandler holds the dependencies for the summary tool.
type SummaryHandler struct {
	Workspace  *workspace.Workspace
	Summarizer summary.Summarizer
	Logger     *slog.Logger
}

// Handle processes an xray_summary request.
func (h *SummaryHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SummaryArgs) (*mcp.CallToolResult, any, error) {
	result, err := h.Workspace.Current()
	if err != nil {
		return errorResult("Error: %v (run xray_scan first)", err), nil, nil
	}

	project := ProjectName(h.Workspace.Target())
	s, err := h.Summarizer.Summarize(ctx, project, result)
	if err != nil {
		h.Logger.Error("xray_summary failed", "error", err)
		return errorResult("Summary error: %v", err), nil, nil
	}

	h.Logger.Info("xray_summary", "project", project, "mode", s.Mode)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Project overview: %s (%s)\n\n", project, s.Mode))
	builder.WriteString(s.Text)
	builder.WriteString("\n")
	if len(s.TechStack) > 0 {
		builder.WriteString(fmt.Sprintf("\nTech stack: %s\n", strings.Join(s.TechStack, ", ")))
	}
	if len(s.Capabilities) > 0 {
		builder.WriteString(fmt.Sprintf("Capabilities: %s\n", strings.Join(s.Capabilities, ", ")))
	}
	return textResult(builder.String()), nil, nil
}

// ProjectName is the last path or URL segment of a target.
func ProjectName(target string) string {
	target = strings.TrimRight(strings.ReplaceAll(target, "\\", "/"), "/")
	target = strings.TrimSuffix(target, ".git")
	if i := strings.LastIndex(target, "/"); i >= 0 {
		return target[i+1:]
	}
	return filepath.Base(target)
}
