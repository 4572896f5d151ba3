// Package report renders a scan result for people and machines: a JSON
// bundle, SARIF 2.1.0 for risk findings, and a plain-text console summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lexandro/codexray/graph"
	"github.com/lexandro/codexray/profile"
	"github.com/lexandro/codexray/summary"
)

const (
	DefaultHubLimit      = 6
	DefaultHubDependents = 5
)

// Format is an output encoding accepted by Write.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatText, FormatJSON, FormatSARIF:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text, json or sarif)", name)
	}
}

// Bundle is everything a downstream renderer needs from one scan.
type Bundle struct {
	ScanID   string                `json:"scan_id"`
	Project  string                `json:"project"`
	Root     string                `json:"root"`
	Totals   profile.Totals        `json:"totals"`
	Hubs     []profile.Hub         `json:"hubs"`
	Records  []*profile.FileRecord `json:"records"`
	Edges    []profile.Edge        `json:"edges"`
	UsedBy   profile.UsedByIndex   `json:"used_by"`
	Skipped  []profile.Skip        `json:"skipped,omitempty"`
	Summary  *summary.Summary      `json:"summary,omitempty"`
	duration string
}

// NewBundle assembles a bundle. Hubs are capped at DefaultHubLimit tokens with
// at most DefaultHubDependents dependents each; the full index stays in UsedBy.
func NewBundle(project string, result *profile.Result, projectSummary *summary.Summary) *Bundle {
	records := make([]*profile.FileRecord, 0, len(result.Records))
	for _, path := range result.SortedPaths() {
		records = append(records, result.Records[path])
	}

	return &Bundle{
		ScanID:   result.ScanID,
		Project:  project,
		Root:     result.Root,
		Totals:   result.Totals(),
		Hubs:     TopHubs(result.UsedBy, DefaultHubLimit, DefaultHubDependents),
		Records:  records,
		Edges:    result.Edges,
		UsedBy:   result.UsedBy,
		Skipped:  result.Skipped,
		Summary:  projectSummary,
		duration: result.Duration.String(),
	}
}

// TopHubs ranks hubs and truncates each dependents list.
func TopHubs(usedBy profile.UsedByIndex, limit int, dependents int) []profile.Hub {
	hubs := graph.Hubs(usedBy, limit)
	for i := range hubs {
		if dependents > 0 && len(hubs[i].Dependents) > dependents {
			hubs[i].Dependents = hubs[i].Dependents[:dependents]
		}
	}
	return hubs
}

// Write encodes the bundle in the requested format.
func Write(w io.Writer, format Format, bundle *Bundle) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, bundle)
	case FormatSARIF:
		return WriteSARIF(w, bundle)
	case FormatText, "":
		return WriteText(w, bundle)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteJSON writes the bundle as indented JSON.
func WriteJSON(w io.Writer, bundle *Bundle) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(bundle); err != nil {
		return fmt.Errorf("encoding json report: %w", err)
	}
	return nil
}
