package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/lexandro/codexray/profile"
)

const (
	DefaultModel    = "gemini-2.5-flash"
	DefaultTimeout  = 10 * time.Second
	DefaultMaxFiles = 80
)

var errEmptyResponse = errors.New("gemini returned no content")

// generateFunc sends one prompt and returns the model text.
type generateFunc func(ctx context.Context, model string, prompt string) (string, error)

// GeminiOptions configures the Gemini summarizer. Zero values select defaults.
type GeminiOptions struct {
	APIKey   string
	Model    string
	Timeout  time.Duration
	MaxFiles int
	Logger   *slog.Logger
}

// Gemini asks the Gemini API for an overview and falls back to Heuristic on
// any failure, including a timeout.
type Gemini struct {
	model    string
	timeout  time.Duration
	maxFiles int
	generate generateFunc
	fallback Summarizer
	logger   *slog.Logger
}

// NewGemini creates a Gemini summarizer. Returns ErrNoAPIKey when options.APIKey is empty.
func NewGemini(ctx context.Context, options GeminiOptions) (*Gemini, error) {
	if strings.TrimSpace(options.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  options.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	generate := func(ctx context.Context, model string, prompt string) (string, error) {
		resp, err := cli.Models.GenerateContent(ctx, model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			nil,
		)
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", errEmptyResponse
		}
		return resp.Candidates[0].Content.Parts[0].Text, nil
	}
	return newGemini(options, generate), nil
}

func newGemini(options GeminiOptions, generate generateFunc) *Gemini {
	g := &Gemini{
		model:    options.Model,
		timeout:  options.Timeout,
		maxFiles: options.MaxFiles,
		generate: generate,
		fallback: Heuristic{},
		logger:   options.Logger,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.maxFiles <= 0 {
		g.maxFiles = DefaultMaxFiles
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

// Summarize never returns an error from the remote call; failures degrade to
// the heuristic summary.
func (g *Gemini) Summarize(ctx context.Context, projectName string, result *profile.Result) (Summary, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.generate(callCtx, g.model, buildPrompt(projectName, result, g.maxFiles))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyResponse
	}
	if err != nil {
		g.logger.Warn("gemini summary failed, using heuristic summary", "model", g.model, "error", err)
		return g.fallback.Summarize(ctx, projectName, result)
	}
	return Summary{Mode: ModeAI, Model: g.model, Text: strings.TrimSpace(text)}, nil
}

// buildPrompt lists at most maxFiles records as "- path: purpose" in path order.
func buildPrompt(projectName string, result *profile.Result, maxFiles int) string {
	var files strings.Builder
	if result != nil {
		for i, path := range result.SortedPaths() {
			if i >= maxFiles {
				break
			}
			files.WriteString(fmt.Sprintf("- %s: %s\n", path, result.Records[path].Purpose))
		}
	}

	return fmt.Sprintf(`You are a Technical Architect. Analyze this file list from %q.
FILES:
%s
TASK:
Write a concise "Project Overview" in plain text (no markdown, no HTML).
1. One paragraph explaining the tech stack and likely purpose.
2. Three short lines naming key architectural features.
Keep it under 200 words.`, projectName, files.String())
}

// New returns a Gemini summarizer when an API key is available and the
// heuristic summarizer otherwise.
func New(ctx context.Context, options GeminiOptions) Summarizer {
	g, err := NewGemini(ctx, options)
	if err != nil {
		if options.Logger != nil && !errors.Is(err, ErrNoAPIKey) {
			options.Logger.Warn("gemini unavailable, using heuristic summary", "error", err)
		}
		return Heuristic{}
	}
	return g
}
