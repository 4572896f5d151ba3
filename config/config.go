// Package config loads codexray settings: built-in defaults, then an optional
// .codexray.yaml file, then .env and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lexandro/codexray/ignore"
	"github.com/lexandro/codexray/scanner"
	"github.com/lexandro/codexray/summary"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = ".codexray.yaml"

// Environment variables honoured by Load.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvLogLevel     = "CODEXRAY_LOG_LEVEL"
)

// LogConfig defines the logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// SummaryConfig defines the project summary configuration.
type SummaryConfig struct {
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxFiles int           `yaml:"max_files"`
	APIKey   string        `yaml:"-"` // environment only
}

// ServeConfig defines the MCP server mode configuration.
type ServeConfig struct {
	Watch        bool          `yaml:"watch"`
	CacheSize    int           `yaml:"cache_size"`
	SyncInterval time.Duration `yaml:"sync_interval"` // 0 disables periodic verification
}

// Config is the top-level configuration struct.
type Config struct {
	TextExtensions     []string      `yaml:"text_extensions"`
	ExtensionlessNames []string      `yaml:"extensionless_names"`
	IgnoredDirs        []string      `yaml:"ignored_dirs"`
	Exclude            []string      `yaml:"exclude"`
	RespectGitignore   bool          `yaml:"respect_gitignore"`
	MaxFileSizeBytes   int64         `yaml:"max_file_size_bytes"`
	Workers            int           `yaml:"workers"`
	Log                LogConfig     `yaml:"log"`
	Summary            SummaryConfig `yaml:"summary"`
	Serve              ServeConfig   `yaml:"serve"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TextExtensions:     append([]string(nil), ignore.DefaultTextExtensions...),
		ExtensionlessNames: append([]string(nil), ignore.DefaultExtensionlessNames...),
		IgnoredDirs:        append([]string(nil), ignore.DefaultIgnoredDirs...),
		Workers:            scanner.DefaultWorkers,
		Log:                LogConfig{Level: "info"},
		Summary: SummaryConfig{
			Model:    summary.DefaultModel,
			Timeout:  summary.DefaultTimeout,
			MaxFiles: summary.DefaultMaxFiles,
		},
		Serve: ServeConfig{Watch: true, CacheSize: 8, SyncInterval: time.Minute},
	}
}

// Load builds the configuration. An empty path looks for DefaultFileName in
// the working directory and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if key := strings.TrimSpace(os.Getenv(EnvGeminiAPIKey)); key != "" {
		c.Summary.APIKey = key
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.Log.Level = level
	}
}

// Validate rejects settings that would otherwise fail per file at scan time.
func (c *Config) Validate() error {
	var errs []error
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			errs = append(errs, fmt.Errorf("invalid exclude pattern %q", pattern))
		}
	}
	for _, ext := range c.TextExtensions {
		if ext == "" {
			errs = append(errs, errors.New("text_extensions must not contain empty entries"))
			break
		}
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.MaxFileSizeBytes < 0 {
		errs = append(errs, fmt.Errorf("max_file_size_bytes must be >= 0, got %d", c.MaxFileSizeBytes))
	}
	if c.Summary.MaxFiles < 0 {
		errs = append(errs, fmt.Errorf("summary.max_files must be >= 0, got %d", c.Summary.MaxFiles))
	}
	if c.Serve.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("serve.cache_size must be >= 0, got %d", c.Serve.CacheSize))
	}
	if c.Serve.SyncInterval < 0 {
		errs = append(errs, fmt.Errorf("serve.sync_interval must be >= 0, got %s", c.Serve.SyncInterval))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLogLevel maps debug|info|warn|error (case-insensitive, empty = info).
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// MatcherOptions returns the traversal filter settings. RootDir is left empty.
func (c *Config) MatcherOptions() ignore.MatcherOptions {
	return ignore.MatcherOptions{
		IgnoredDirs:        c.IgnoredDirs,
		TextExtensions:     c.TextExtensions,
		ExtensionlessNames: c.ExtensionlessNames,
		ExcludePatterns:    c.Exclude,
		RespectGitignore:   c.RespectGitignore,
		MaxFileSizeBytes:   c.MaxFileSizeBytes,
	}
}

// ScannerOptions returns the options for scanner.New.
func (c *Config) ScannerOptions(logger *slog.Logger) scanner.Options {
	return scanner.Options{
		Ignore:  c.MatcherOptions(),
		Workers: c.Workers,
		Logger:  logger,
	}
}

// GeminiOptions returns the options for summary.New.
func (c *Config) GeminiOptions(logger *slog.Logger) summary.GeminiOptions {
	return summary.GeminiOptions{
		APIKey:   c.Summary.APIKey,
		Model:    c.Summary.Model,
		Timeout:  c.Summary.Timeout,
		MaxFiles: c.Summary.MaxFiles,
		Logger:   logger,
	}
}
