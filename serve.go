package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/lexandro/codexray/config"
	"github.com/lexandro/codexray/ignore"
	"github.com/lexandro/codexray/remote"
	"github.com/lexandro/codexray/scanner"
	"github.com/lexandro/codexray/server"
	"github.com/lexandro/codexray/summary"
	"github.com/lexandro/codexray/tools"
	"github.com/lexandro/codexray/watcher"
	"github.com/lexandro/codexray/workspace"
)

func newServeCmd(global *globalFlags) *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "serve [path]",
		Short: "Run the MCP server on stdio",
		Long: `Scan the given directory (default: the current directory) and serve the
result to MCP clients over stdio. The directory is watched and rescanned when
files change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootDir := "."
			if len(args) == 1 {
				rootDir = args[0]
			}
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if noWatch {
				cfg.Serve.Watch = false
			}
			return runServe(cmd.Context(), cfg, rootDir)
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not watch the directory for changes")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, rootDir string) error {
	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	// the watcher and the scanner walk the tree from this path
	if resolved, err := filepath.EvalSymlinks(rootDir); err == nil {
		rootDir = resolved
	}

	// Never log to stdout: it carries MCP stdio
	logger, closeLog := setupLogger(cfg.Log.Level, cfg.Log.File)
	defer closeLog()

	logger.Info("starting codexray",
		"root", rootDir,
		"workers", cfg.Workers,
		"watch", cfg.Serve.Watch,
	)

	ws, err := workspace.New(workspace.Options{
		Scanner:   scanner.New(cfg.ScannerOptions(logger)),
		Cloner:    remote.NewCloner(remote.Options{Logger: logger}),
		CacheSize: cfg.Serve.CacheSize,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer ws.Close()

	if _, err := ws.Scan(ctx, rootDir, false); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}

	if cfg.Serve.Watch {
		matcherOptions := cfg.MatcherOptions()
		matcherOptions.RootDir = rootDir
		fileWatcher, err := watcher.NewWatcher(rootDir, ignore.NewMatcher(matcherOptions), watcher.DefaultInterval, logger)
		if err != nil {
			logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
		} else {
			defer fileWatcher.Close()
			go fileWatcher.Run(ctx, func(ctx context.Context, batch []watcher.DebouncedEvent) {
				handleWatcherBatch(ctx, ws, rootDir, batch, logger)
			})
		}
	}
	if cfg.Serve.SyncInterval > 0 {
		go ws.RunPeriodicSync(ctx, cfg.Serve.SyncInterval)
	}

	records := ws.Records()
	mcpServer := server.Setup(server.Handlers{
		Scan:    &tools.ScanHandler{Workspace: ws, Logger: logger},
		Risks:   &tools.RisksHandler{Workspace: ws, Logger: logger},
		Hubs:    &tools.HubsHandler{Workspace: ws, Logger: logger},
		Files:   &tools.FilesHandler{Records: records, Logger: logger},
		File:    &tools.FileHandler{Records: records, Workspace: ws, Logger: logger},
		Search:  &tools.SearchHandler{Search: ws.Search(), Logger: logger},
		Summary: &tools.SummaryHandler{Workspace: ws, Summarizer: summary.New(ctx, cfg.GeminiOptions(logger)), Logger: logger},
		Status:  &tools.StatusHandler{Workspace: ws, Records: records, Logger: logger},
	})

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server: %w", err)
	}
	return nil
}

// handleWatcherBatch re-profiles the changed files of the served root.
// Changes are ignored while a client has switched the workspace to another
// target.
func handleWatcherBatch(ctx context.Context, ws *workspace.Workspace, rootDir string, batch []watcher.DebouncedEvent, logger *slog.Logger) {
	if ws.Target() != rootDir {
		logger.Debug("ignoring changes outside the current target", "events", len(batch), "target", ws.Target())
		return
	}

	changed := make([]string, 0, len(batch))
	for _, event := range batch {
		changed = append(changed, event.Path)
	}

	start := time.Now()
	result, delta, err := ws.ApplyChanges(ctx, changed)
	if err != nil {
		logger.Warn("updating after file changes failed", "error", err)
		return
	}
	logger.Info("updated after file changes",
		"events", len(batch),
		"updated", len(delta.Updated),
		"removed", len(delta.Removed),
		"files", len(result.Records),
		"duration", time.Since(start),
	)
}
