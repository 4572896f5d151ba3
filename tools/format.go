package tools

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/index"
	"github.com/lexandro/codexray/profile"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// FormatFileResults formats glob results as human-readable text.
func FormatFileResults(records []*profile.FileRecord, nameOnly bool) string {
	if len(records) == 0 {
		return "No files matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d files:\n\n", len(records)))

	for _, rec := range records {
		if nameOnly {
			builder.WriteString(rec.RelativePath)
			builder.WriteString("\n")
			continue
		}
		builder.WriteString(fmt.Sprintf("  %s  (%s, %s, %d risks, %d imports)\n",
			rec.RelativePath,
			orUnknown(rec.Language),
			rec.Purpose,
			len(rec.Risks),
			len(rec.RawImports),
		))
	}
	return builder.String()
}

// FormatSearchHits formats full-text search hits.
func FormatSearchHits(hits []index.SearchHit, total uint64) string {
	if len(hits) == 0 {
		return "No matches found."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d matching files (showing %d):\n\n", total, len(hits)))
	for _, hit := range hits {
		rec := hit.Record
		builder.WriteString(fmt.Sprintf("  %s  [%s]  score %.2f\n", rec.RelativePath, rec.Purpose, hit.Score))
	}
	return builder.String()
}

// RiskEntry is a finding together with the file it was found in.
type RiskEntry struct {
	Path    string
	Finding profile.RiskFinding
}

// FormatRisks lists findings one per line.
func FormatRisks(entries []RiskEntry, total int) string {
	if len(entries) == 0 {
		return "No risks found."
	}

	var builder strings.Builder
	if total > len(entries) {
		builder.WriteString(fmt.Sprintf("Found %d risks (showing %d):\n\n", total, len(entries)))
	} else {
		builder.WriteString(fmt.Sprintf("Found %d risks:\n\n", total))
	}
	for _, entry := range entries {
		builder.WriteString(fmt.Sprintf("  %s:%d  [%s] %s  %s\n",
			entry.Path, entry.Finding.Line, entry.Finding.Severity, entry.Finding.Category, entry.Finding.Remediation))
	}
	return builder.String()
}

// FormatHubs lists hubs with their dependents; totals come from usedBy.
func FormatHubs(hubs []profile.Hub, usedBy profile.UsedByIndex) string {
	if len(hubs) == 0 {
		return "No dependencies found."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Top %d hubs:\n\n", len(hubs)))
	for i, hub := range hubs {
		total := len(usedBy[hub.Token])
		builder.WriteString(fmt.Sprintf("%d. %s  (used by %d files)\n", i+1, hub.Token, total))
		for _, dep := range hub.Dependents {
			builder.WriteString(fmt.Sprintf("     %s\n", dep))
		}
		if more := total - len(hub.Dependents); more > 0 {
			builder.WriteString(fmt.Sprintf("     ... and %d more\n", more))
		}
	}
	return builder.String()
}

// FormatRecord renders the complete profile of one file.
func FormatRecord(rec *profile.FileRecord, dependents []string) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s ──\n", rec.RelativePath))
	builder.WriteString(fmt.Sprintf("Language: %s\n", orUnknown(rec.Language)))
	builder.WriteString(fmt.Sprintf("Purpose: %s\n", rec.Purpose))

	if len(rec.Objectives) > 0 {
		builder.WriteString(fmt.Sprintf("Objectives: %s\n", strings.Join(rec.Objectives, ", ")))
	}

	builder.WriteString(fmt.Sprintf("\nImports (%d):\n", len(rec.RawImports)))
	for _, imp := range rec.RawImports {
		builder.WriteString(fmt.Sprintf("  %s\n", imp))
	}

	builder.WriteString(fmt.Sprintf("\nRisks (%d):\n", len(rec.Risks)))
	for _, risk := range rec.Risks {
		builder.WriteString(fmt.Sprintf("  line %d  [%s] %s  %s\n", risk.Line, risk.Severity, risk.Category, risk.Remediation))
	}

	if len(dependents) > 0 {
		builder.WriteString(fmt.Sprintf("\nReferenced by (%d):\n", len(dependents)))
		for _, dep := range dependents {
			builder.WriteString(fmt.Sprintf("  %s\n", dep))
		}
	}
	return builder.String()
}

// sortedCounts orders a count map by count descending, then key ascending.
func sortedCounts(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func orUnknown(language string) string {
	if language == "" {
		return "unknown"
	}
	return language
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
