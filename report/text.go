package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteText writes the human-readable console report.
func WriteText(w io.Writer, bundle *Bundle) error {
	_, err := io.WriteString(w, RenderText(bundle))
	return err
}

// RenderText renders totals, summary, hubs and every risk finding.
func RenderText(bundle *Bundle) string {
	var builder strings.Builder

	title := bundle.Project
	if title == "" {
		title = bundle.Root
	}
	builder.WriteString(fmt.Sprintf("X-Ray report: %s\n", title))
	builder.WriteString(fmt.Sprintf("Files: %d  Tests: %d  Risks: %d", bundle.Totals.Files, bundle.Totals.Tests, bundle.Totals.Risks))
	if len(bundle.Skipped) > 0 {
		builder.WriteString(fmt.Sprintf("  Skipped: %d", len(bundle.Skipped)))
	}
	if bundle.duration != "" {
		builder.WriteString(fmt.Sprintf("  (%s)", bundle.duration))
	}
	builder.WriteString("\n")

	if bundle.Summary != nil {
		builder.WriteString(fmt.Sprintf("\nSummary (%s):\n%s\n", bundle.Summary.Mode, bundle.Summary.Text))
	}

	builder.WriteString("\nHubs:\n")
	if len(bundle.Hubs) == 0 {
		builder.WriteString("  (none)\n")
	}
	for _, hub := range bundle.Hubs {
		total := len(bundle.UsedBy[hub.Token])
		builder.WriteString(fmt.Sprintf("  %s (%d): %s", hub.Token, total, strings.Join(hub.Dependents, ", ")))
		if more := total - len(hub.Dependents); more > 0 {
			builder.WriteString(fmt.Sprintf(" +%d more", more))
		}
		builder.WriteString("\n")
	}

	builder.WriteString("\nRisks:\n")
	if bundle.Totals.Risks == 0 {
		builder.WriteString("  (none)\n")
	}
	for _, rec := range bundle.Records {
		for _, risk := range rec.Risks {
			builder.WriteString(fmt.Sprintf("  %s:%d  [%s] %s  %s\n",
				rec.RelativePath, risk.Line, risk.Severity, risk.Category, risk.Remediation))
		}
	}

	return builder.String()
}
