package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/index"
	"github.com/lexandro/codexray/workspace"
)

// StatusArgs defines the input parameters for the xray_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Workspace *workspace.Workspace
	Records   *index.RecordIndex
	Logger    *slog.Logger
}

// Handle processes an xray_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	status := h.Workspace.Status()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("xray_status",
		"target", status.Target,
		"files", status.Files,
		"memory", memStats.Alloc,
		"uptime", status.Uptime,
	)

	var builder strings.Builder
	builder.WriteString("=== codexray Status ===\n\n")
	if status.Target == "" {
		builder.WriteString("No scan yet. Run xray_scan with a target.\n")
	} else {
		builder.WriteString(fmt.Sprintf("Target: %s\n", status.Target))
		builder.WriteString(fmt.Sprintf("Scan ID: %s\n", status.ScanID))
		builder.WriteString(fmt.Sprintf("Last scan: %s (took %s)\n",
			status.LastScanAt.Format("2006-01-02 15:04:05"), status.LastDuration.Round(1e6)))
		builder.WriteString(fmt.Sprintf("Files: %d  Tests: %d  Risks: %d  Skipped: %d\n",
			status.Files, status.Totals.Tests, status.Totals.Risks, status.Skipped))
		builder.WriteString(fmt.Sprintf("Graph edges: %d\n", status.Edges))
		builder.WriteString(fmt.Sprintf("Search documents: %d\n", status.IndexedDocs))
	}
	builder.WriteString(fmt.Sprintf("Scans run: %d  Cached results: %d\n", status.Scans, status.CachedResults))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(status.Uptime)))
	builder.WriteString(fmt.Sprintf("Memory usage: %.1f MB\n", float64(memStats.Alloc)/(1024*1024)))

	if langCounts := h.Records.LanguageCounts(); len(langCounts) > 0 {
		builder.WriteString("\nLanguages:\n")
		for _, lang := range sortedCounts(langCounts) {
			builder.WriteString(fmt.Sprintf("  %-20s %d files\n", orUnknown(lang), langCounts[lang]))
		}
	}

	purposeCounts := make(map[string]int)
	for purpose, count := range h.Records.PurposeCounts() {
		purposeCounts[string(purpose)] = count
	}
	if len(purposeCounts) > 0 {
		builder.WriteString("\nPurposes:\n")
		for _, purpose := range sortedCounts(purposeCounts) {
			builder.WriteString(fmt.Sprintf("  %-24s %d files\n", purpose, purposeCounts[purpose]))
		}
	}

	return textResult(builder.String()), nil, nil
}
