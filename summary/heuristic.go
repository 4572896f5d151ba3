package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexandro/codexray/profile"
)

// signal maps a substring of a purpose tag to a label.
type signal struct {
	marker string
	label  string
}

var techSignals = []signal{
	{"Node.js", "Node.js"},
	{"Maven", "Java (Maven)"},
	{"Python", "Python"},
}

var capabilitySignals = []signal{
	{"Docker", "Containerized (Docker)"},
	{"Playwright", "Browser Automation (Playwright)"},
	{"Jenkins", "CI/CD (Jenkins)"},
}

const (
	genericStack        = "Generic Codebase"
	genericCapabilities = "Standard Development"
)

// Heuristic derives the summary from purpose tags alone. It never fails.
type Heuristic struct{}

func (Heuristic) Summarize(_ context.Context, projectName string, result *profile.Result) (Summary, error) {
	var records map[string]*profile.FileRecord
	if result != nil {
		records = result.Records
	}

	stack := collectLabels(records, techSignals)
	capabilities := collectLabels(records, capabilitySignals)

	stackText := genericStack
	if len(stack) > 0 {
		stackText = strings.Join(stack, ", ")
	}
	capabilityText := genericCapabilities
	if len(capabilities) > 0 {
		capabilityText = strings.Join(capabilities, ", ")
	}

	var text strings.Builder
	if projectName != "" {
		text.WriteString(fmt.Sprintf("%s appears to be a %s project designed for %s.\n", projectName, stackText, capabilityText))
	} else {
		text.WriteString(fmt.Sprintf("This appears to be a %s project designed for %s.\n", stackText, capabilityText))
	}
	text.WriteString(fmt.Sprintf("It was analyzed statically without AI. %d files were detected.", len(records)))

	return Summary{
		Mode:         ModeHeuristic,
		TechStack:    stack,
		Capabilities: capabilities,
		Text:         text.String(),
	}, nil
}

// collectLabels returns each label at most once, in signal order.
func collectLabels(records map[string]*profile.FileRecord, signals []signal) []string {
	var labels []string
	for _, sig := range signals {
		for _, rec := range records {
			if strings.Contains(string(rec.Purpose), sig.marker) {
				labels = append(labels, sig.label)
				break
			}
		}
	}
	return labels
}
