package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexandro/codexray/server"
	"github.com/lexandro/codexray/watcher"
	"github.com/lexandro/codexray/workspace"
)

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"tests/login.spec.ts": "import { LoginPage } from '../pages/LoginPage';\nawait page.waitForTimeout(500);\n",
		"pages/LoginPage.ts":  "export class LoginPage {}\n",
		"package.json":        "{\"name\": \"shop\"}\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func Test_VersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, server.Version) {
		t.Errorf("expected version %s in output, got %q", server.Version, out)
	}
}

func Test_ScanCommand_JSON(t *testing.T) {
	root := writeProject(t)

	out, err := runCLI(t, "scan", root, "--format", "json", "--log-level", "error")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var bundle struct {
		Totals struct {
			Files int `json:"files"`
			Tests int `json:"tests"`
			Risks int `json:"risks"`
		} `json:"totals"`
		UsedBy map[string][]string `json:"used_by"`
	}
	if err := json.Unmarshal([]byte(out), &bundle); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out)
	}
	if bundle.Totals.Files != 3 {
		t.Errorf("expected 3 files, got %d", bundle.Totals.Files)
	}
	if bundle.Totals.Risks != 1 {
		t.Errorf("expected 1 risk (hardcoded sleep), got %d", bundle.Totals.Risks)
	}
	if deps := bundle.UsedBy["LoginPage"]; len(deps) != 1 || deps[0] != "tests/login.spec.ts" {
		t.Errorf("expected LoginPage used by tests/login.spec.ts, got %v", deps)
	}
}

func Test_ScanCommand_OutputFile(t *testing.T) {
	root := writeProject(t)
	output := filepath.Join(t.TempDir(), "report.sarif")

	if _, err := runCLI(t, "scan", root, "--format", "sarif", "--output", output, "--log-level", "error"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "hardcoded-sleep") {
		t.Errorf("expected hardcoded-sleep rule in SARIF, got:\n%s", data)
	}
}

func Test_ScanCommand_UnknownFormat(t *testing.T) {
	root := writeProject(t)

	if _, err := runCLI(t, "scan", root, "--format", "html"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func Test_ScanCommand_MissingRoot(t *testing.T) {
	if _, err := runCLI(t, "scan", filepath.Join(t.TempDir(), "missing"), "--log-level", "error"); err == nil {
		t.Error("expected error for a missing root")
	}
}

func Test_loadConfig_FlagsOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CODEXRAY_LOG_LEVEL", "")

	cfg, err := loadConfig(&globalFlags{
		logLevel: "debug",
		workers:  3,
		excludes: []string{"fixtures/**"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug log level, got %q", cfg.Log.Level)
	}
	if cfg.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Workers)
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "fixtures/**" {
		t.Errorf("expected exclude from flag, got %v", cfg.Exclude)
	}
}

func Test_loadConfig_InvalidExclude(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := loadConfig(&globalFlags{excludes: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for an invalid exclude glob")
	}
}

func Test_setupLogger_WritesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "codexray.log")
	logger, closeLog := setupLogger("info", logFile)
	logger.Info("hello")
	closeLog()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "msg=hello") {
		t.Errorf("expected log line in file, got %q", data)
	}
}

func Test_RegisterCommand_ForwardsServeFlags(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "register", "project", dir, "--name", "xray", "--", "--no-watch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `Registered "xray"`) {
		t.Errorf("unexpected output %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	if err != nil {
		t.Fatalf("reading .mcp.json: %v", err)
	}
	if !strings.Contains(string(data), `"serve"`) || !strings.Contains(string(data), `"--no-watch"`) {
		t.Errorf("expected serve args in entry, got:\n%s", data)
	}
}

func Test_RegisterCommand_DirectoryNeedsProjectScope(t *testing.T) {
	if _, err := runCLI(t, "register", "user", t.TempDir()); err == nil {
		t.Error("expected error for a directory with user scope")
	}
}

func Test_handleWatcherBatch_AppliesChangedFiles(t *testing.T) {
	root := writeProject(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ws, err := workspace.New(workspace.Options{Logger: logger})
	if err != nil {
		t.Fatalf("creating workspace: %v", err)
	}
	defer ws.Close()
	if _, err := ws.Scan(context.Background(), root, false); err != nil {
		t.Fatalf("scan: %v", err)
	}

	page := filepath.Join(root, "pages", "CartPage.ts")
	if err := os.WriteFile(page, []byte("export class CartPage {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	handleWatcherBatch(context.Background(), ws, workspace.Key(root), []watcher.DebouncedEvent{
		{Path: page, Op: watcher.OpCreate},
	}, logger)

	if ws.Records().Get("pages/CartPage.ts") == nil {
		t.Error("expected the new file to be indexed")
	}
	if status := ws.Status(); status.Files != 4 || status.Scans != 1 {
		t.Errorf("expected 4 files after one scan, got %d files after %d scans", status.Files, status.Scans)
	}
}
