// Package summary produces a short natural-language overview of a scanned
// project, either offline from purpose tags or through Gemini.
package summary

import (
	"context"
	"errors"

	"github.com/lexandro/codexray/profile"
)

// ErrNoAPIKey is returned when a Gemini summarizer is requested without a key.
var ErrNoAPIKey = errors.New("gemini api key not configured")

// Mode tells how a summary was produced.
type Mode string

const (
	ModeAI        Mode = "ai"
	ModeHeuristic Mode = "heuristic"
)

// Summary is the project overview attached to reports.
type Summary struct {
	Mode         Mode     `json:"mode"`
	Model        string   `json:"model,omitempty"`
	TechStack    []string `json:"tech_stack,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Text         string   `json:"text"`
}

// Summarizer turns a scan result into a Summary. Implementations must handle
// results with zero records.
type Summarizer interface {
	Summarize(ctx context.Context, projectName string, result *profile.Result) (Summary, error)
}
