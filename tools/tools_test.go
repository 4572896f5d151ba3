package tools

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/profile"
	"github.com/lexandro/codexray/summary"
	"github.com/lexandro/codexray/workspace"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeFixture(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// newScannedWorkspace scans a small Playwright-style project.
func newScannedWorkspace(t *testing.T) (*workspace.Workspace, string) {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, root, "tests/login.spec.ts",
		"import { LoginPage } from '../pages/LoginPage';\nconst password = \"hunter2\";\nconsole.log('done');\n")
	writeFixture(t, root, "tests/cart.spec.ts",
		"import { LoginPage } from '../pages/LoginPage';\nimport { CartPage } from '../pages/CartPage';\n")
	writeFixture(t, root, "pages/LoginPage.ts", "export class LoginPage {}\n")
	writeFixture(t, root, "README.md", "# shop\n")

	ws, err := workspace.New(workspace.Options{Logger: testLogger})
	if err != nil {
		t.Fatalf("creating workspace: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	if _, err := ws.Scan(context.Background(), root, false); err != nil {
		t.Fatalf("scanning fixture: %v", err)
	}
	return ws, root
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func Test_ScanHandler_RendersReport(t *testing.T) {
	ws, root := newScannedWorkspace(t)
	handler := &ScanHandler{Workspace: ws, Logger: testLogger}

	result, _, err := handler.Handle(context.Background(), nil, ScanArgs{Target: root, Force: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Files: 4") {
		t.Errorf("expected file total in report, got:\n%s", text)
	}
	if !strings.Contains(text, "LoginPage") {
		t.Errorf("expected LoginPage hub in report, got:\n%s", text)
	}
}

func Test_ScanHandler_EmptyTargetRescansCurrent(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &ScanHandler{Workspace: ws, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, ScanArgs{})
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}
}

func Test_ScanHandler_NoTarget(t *testing.T) {
	ws, err := workspace.New(workspace.Options{Logger: testLogger})
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()
	handler := &ScanHandler{Workspace: ws, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, ScanArgs{})
	if !result.IsError {
		t.Error("expected error when no target was ever scanned")
	}
}

func Test_ScanHandler_MissingDirectory(t *testing.T) {
	ws, root := newScannedWorkspace(t)
	handler := &ScanHandler{Workspace: ws, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, ScanArgs{Target: filepath.Join(root, "nope")})
	if !result.IsError {
		t.Error("expected error for a missing directory")
	}
}

func Test_RisksHandler_FiltersBySeverity(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &RisksHandler{Workspace: ws, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, RisksArgs{MinSeverity: "high"})
	text := resultText(t, result)
	if !strings.Contains(text, "tests/login.spec.ts:2") {
		t.Errorf("expected credential finding on line 2, got:\n%s", text)
	}
	if strings.Contains(text, "debug print") {
		t.Errorf("Low findings should be filtered out, got:\n%s", text)
	}
}

func Test_RisksHandler_CategoryAndGlob(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &RisksHandler{Workspace: ws, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, RisksArgs{Category: "Debug Print", FileGlob: "tests/**"})
	text := resultText(t, result)
	if !strings.Contains(text, "Found 1 risks") {
		t.Errorf("expected exactly one debug print finding, got:\n%s", text)
	}

	result, _, _ = handler.Handle(context.Background(), nil, RisksArgs{FileGlob: "pages/**"})
	if text := resultText(t, result); text != "No risks found." {
		t.Errorf("expected no risks under pages/, got:\n%s", text)
	}
}

func Test_RisksHandler_InvalidSeverity(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &RisksHandler{Workspace: ws, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, RisksArgs{MinSeverity: "severe"})
	if !result.IsError {
		t.Error("expected error for an unknown severity")
	}
}

func Test_HubsHandler_RanksLoginPage(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &HubsHandler{Workspace: ws, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, HubsArgs{Limit: 1})
	text := resultText(t, result)
	if !strings.Contains(text, "1. LoginPage  (used by 2 files)") {
		t.Errorf("expected LoginPage as top hub, got:\n%s", text)
	}
	if strings.Contains(text, "CartPage") {
		t.Errorf("limit 1 should drop CartPage, got:\n%s", text)
	}
}

func Test_HubsHandler_Token(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &HubsHandler{Workspace: ws, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, HubsArgs{Token: "CartPage"})
	text := resultText(t, result)
	if !strings.Contains(text, "tests/cart.spec.ts") || strings.Contains(text, "login.spec.ts") {
		t.Errorf("expected only cart.spec.ts as dependent, got:\n%s", text)
	}

	result, _, _ = handler.Handle(context.Background(), nil, HubsArgs{Token: "Nothing"})
	if text := resultText(t, result); !strings.Contains(text, "No files reference") {
		t.Errorf("expected no-reference message, got:\n%s", text)
	}
}

func Test_HandlersBeforeScan(t *testing.T) {
	ws, err := workspace.New(workspace.Options{Logger: testLogger})
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	risks, _, _ := (&RisksHandler{Workspace: ws, Logger: testLogger}).Handle(context.Background(), nil, RisksArgs{})
	hubs, _, _ := (&HubsHandler{Workspace: ws, Logger: testLogger}).Handle(context.Background(), nil, HubsArgs{})
	if !risks.IsError || !hubs.IsError {
		t.Error("expected errors before the first scan")
	}
}

func Test_FilesHandler_Glob(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &FilesHandler{Records: ws.Records(), Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, FilesArgs{Pattern: "tests/*.spec.ts"})
	text := resultText(t, result)
	if !strings.Contains(text, "Found 2 files") {
		t.Errorf("expected 2 spec files, got:\n%s", text)
	}
	if !strings.Contains(text, "TypeScript") {
		t.Errorf("expected language in summary, got:\n%s", text)
	}

	result, _, _ = handler.Handle(context.Background(), nil, FilesArgs{Pattern: "**/*.ts", NameOnly: true})
	text = resultText(t, result)
	if strings.Contains(text, "TypeScript") {
		t.Errorf("nameOnly should omit profile details, got:\n%s", text)
	}
}

func Test_FilesHandler_EmptyPattern(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &FilesHandler{Records: ws.Records(), Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, FilesArgs{})
	if !result.IsError {
		t.Error("expected error for empty pattern")
	}
}

func Test_SearchHandler_FindsImporters(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &SearchHandler{Search: ws.Search(), Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, SearchArgs{Query: "CartPage"})
	text := resultText(t, result)
	if !strings.Contains(text, "tests/cart.spec.ts") {
		t.Errorf("expected cart.spec.ts to match, got:\n%s", text)
	}
	if strings.Contains(text, "tests/login.spec.ts") {
		t.Errorf("login.spec.ts does not import CartPage, got:\n%s", text)
	}
}

func Test_SearchHandler_RequiresInput(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &SearchHandler{Search: ws.Search(), Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, SearchArgs{})
	if !result.IsError {
		t.Error("expected error without query or filters")
	}
}

func Test_FileHandler_ShowsProfileAndDependents(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &FileHandler{Records: ws.Records(), Workspace: ws, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, FileArgs{FilePath: "pages/LoginPage.ts"})
	text := resultText(t, result)
	if !strings.Contains(text, "Referenced by (2)") {
		t.Errorf("expected two dependents, got:\n%s", text)
	}

	result, _, _ = handler.Handle(context.Background(), nil, FileArgs{FilePath: "tests\\login.spec.ts"})
	text = resultText(t, result)
	if !strings.Contains(text, "../pages/LoginPage") || !strings.Contains(text, "line 2") {
		t.Errorf("expected imports and risks of login.spec.ts, got:\n%s", text)
	}
}

func Test_FileHandler_NotFound(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &FileHandler{Records: ws.Records(), Workspace: ws, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, FileArgs{FilePath: "nope.ts"})
	if !result.IsError {
		t.Error("expected error for unknown file")
	}
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(_ context.Context, projectName string, _ *profile.Result) (summary.Summary, error) {
	return summary.Summary{
		Mode:      summary.ModeAI,
		TechStack: []string{"TypeScript"},
		Text:      "A storefront named " + projectName + ".",
	}, nil
}

func Test_SummaryHandler(t *testing.T) {
	ws, root := newScannedWorkspace(t)
	handler := &SummaryHandler{Workspace: ws, Summarizer: stubSummarizer{}, Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, SummaryArgs{})
	text := resultText(t, result)
	project := filepath.Base(root)
	if !strings.Contains(text, "A storefront named "+project+".") {
		t.Errorf("expected summarizer text, got:\n%s", text)
	}
	if !strings.Contains(text, "Tech stack: TypeScript") {
		t.Errorf("expected tech stack line, got:\n%s", text)
	}
}

func Test_StatusHandler(t *testing.T) {
	ws, _ := newScannedWorkspace(t)
	handler := &StatusHandler{Workspace: ws, Records: ws.Records(), Logger: testLogger}

	result, _, _ := handler.Handle(context.Background(), nil, StatusArgs{})
	text := resultText(t, result)
	for _, want := range []string{"Files: 4", "Languages:", "TypeScript", "Purposes:"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in status, got:\n%s", want, text)
		}
	}
}

func Test_ProjectName(t *testing.T) {
	tests := map[string]string{
		"https://github.com/acme/shop.git": "shop",
		"/home/dev/shop/":                  "shop",
		"github.com/acme/shop":             "shop",
		"shop":                             "shop",
	}
	for input, want := range tests {
		if got := ProjectName(input); got != want {
			t.Errorf("ProjectName(%q) = %q, want %q", input, got, want)
		}
	}
}

func Test_FormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{5, "5s"},
		{65, "1m5s"},
		{3725, "1h2m"},
	}
	for _, tt := range tests {
		if got := formatDuration(time.Duration(tt.seconds) * time.Second); got != tt.want {
			t.Errorf("formatDuration(%ds) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
