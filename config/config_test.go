package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexandro/codexray/ignore"
	"github.com/lexandro/codexray/summary"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codexray.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func Test_Default_MatchesBuiltins(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ignore.DefaultTextExtensions, cfg.TextExtensions)
	assert.Equal(t, ignore.DefaultIgnoredDirs, cfg.IgnoredDirs)
	assert.Equal(t, ignore.DefaultExtensionlessNames, cfg.ExtensionlessNames)
	assert.Equal(t, summary.DefaultModel, cfg.Summary.Model)
	assert.NoError(t, cfg.Validate())
}

func Test_Load_YAMLOverlaysDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := writeConfig(t, `
exclude: ["**/*.min.js"]
respect_gitignore: true
workers: 2
log:
  level: debug
summary:
  timeout: 3s
serve:
  cache_size: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"**/*.min.js"}, cfg.Exclude)
	assert.True(t, cfg.RespectGitignore)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3*time.Second, cfg.Summary.Timeout)
	assert.Equal(t, summary.DefaultMaxFiles, cfg.Summary.MaxFiles)
	assert.Equal(t, 4, cfg.Serve.CacheSize)
	assert.Equal(t, ignore.DefaultTextExtensions, cfg.TextExtensions)
}

func Test_Load_EnvOverrides(t *testing.T) {
	t.Setenv(EnvGeminiAPIKey, "test-key")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Summary.APIKey)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func Test_Load_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func Test_Load_DefaultFileOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Workers, cfg.Workers)
}

func Test_Load_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "workers: [1, 2\n"))
	assert.Error(t, err)
}

func Test_Validate_RejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Exclude = []string{"[unclosed"}
	cfg.Log.Level = "verbose"
	cfg.Workers = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
	assert.Contains(t, err.Error(), "unknown log level")
	assert.Contains(t, err.Error(), "workers")
}

func Test_ParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for input, want := range cases {
		got, err := ParseLogLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func Test_Options_CarrySettings(t *testing.T) {
	cfg := Default()
	cfg.Exclude = []string{"fixtures/**"}
	cfg.MaxFileSizeBytes = 100
	cfg.Summary.APIKey = "k"

	matcher := cfg.MatcherOptions()
	assert.Equal(t, []string{"fixtures/**"}, matcher.ExcludePatterns)
	assert.Equal(t, int64(100), matcher.MaxFileSizeBytes)

	assert.Equal(t, cfg.Workers, cfg.ScannerOptions(nil).Workers)
	assert.Equal(t, "k", cfg.GeminiOptions(nil).APIKey)
}
