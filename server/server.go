package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codexray/tools"
)

// Version is reported to MCP clients and by the version command.
const Version = "0.1.0"

// Handlers groups the tool handlers registered on the server.
type Handlers struct {
	Scan    *tools.ScanHandler
	Risks   *tools.RisksHandler
	Hubs    *tools.HubsHandler
	Files   *tools.FilesHandler
	File    *tools.FileHandler
	Search  *tools.SearchHandler
	Summary *tools.SummaryHandler
	Status  *tools.StatusHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(handlers Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "codexray",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server profiles a repository: what every file is for, which risky patterns it contains, what it imports, and which modules the rest of the codebase depends on most.

Start with xray_scan (a local directory or a git URL), then:
- Use xray_hubs to find the most depended-upon modules before refactoring
- Use xray_risks to review hardcoded credentials, secrets, sleeps and debug prints
- Use xray_files and xray_search to find files by path, purpose, language or import
- Use xray_file to see one file's profile and who references it
- Use xray_summary for a short overview of the project's stack and capabilities
- Results refresh automatically when files under the scanned directory change`,
		},
	)

	// Register xray_scan tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "xray_scan",
		Description: `Scan a directory or a remote git repository and make it the current target.

Targets:
  - Local path: scanned in place (e.g. "." or "/home/dev/shop")
  - Repository URL: shallow-cloned into a temp directory, scanned, then removed (e.g. "github.com/acme/shop")

Results are cached per target; set force to scan again. An empty target rescans the current one.`,
	}, handlers.Scan.Handle)

	// Register xray_risks tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "xray_risks",
		Description: `List risk findings of the current scan as path:line with severity and remediation.

Filtering:
  - minSeverity: Low, Medium, High or Critical
  - category: e.g. "hardcoded credential", "api key or secret", "hardcoded sleep", "debug print"
  - fileGlob: e.g. "tests/**"`,
	}, handlers.Risks.Handle)

	// Register xray_hubs tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "xray_hubs",
		Description: `Rank import tokens by how many files depend on them. With token set, list every file that imports that token.`,
	}, handlers.Hubs.Handle)

	// Register xray_files tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "xray_files",
		Description: `Find profiled files by glob pattern, with language, purpose, risk and import counts.

Pattern examples:
  - "**/*.ts" - all TypeScript files
  - "tests/**/*.spec.js" - JavaScript specs under tests/
  - "*.md" - Markdown files in root only`,
	}, handlers.Files.Handle)

	// Register xray_file tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "xray_file",
		Description: `Show the full profile of one file: language, purpose, objectives, imports, risks and the files that reference it.`,
	}, handlers.File.Handle)

	// Register xray_search tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "xray_search",
		Description: `Full-text search over file profiles (path words, imports, risk categories, objectives).

Query formats:
  - Plain text: word-level matching (e.g., "LoginPage")
  - "quoted text": exact phrase matching (e.g., "\"hardcoded sleep\"")
  - /regex/: regular expression matching (e.g., "/login.*/")

Filtering:
  - purpose: exact purpose tag (e.g., "Test Script")
  - language: exact language (e.g., "Python")
  - fileGlob: glob pattern over paths (e.g., "**/*.py")`,
	}, handlers.Search.Handle)

	// Register xray_summary tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "xray_summary",
		Description: "Summarize the current target's tech stack and capabilities. Uses Gemini when an API key is configured, otherwise a heuristic.",
	}, handlers.Summary.Handle)

	// Register xray_status tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "xray_status",
		Description: "Show server status: current target, totals, languages, purposes, cache, memory usage, and uptime.",
	}, handlers.Status.Handle)

	return mcpServer
}
