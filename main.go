package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexandro/codexray/config"
	"github.com/lexandro/codexray/register"
	"github.com/lexandro/codexray/server"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configFile string
	logLevel   string
	logFile    string
	workers    int
	excludes   []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:                   "codexray [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "codexray profiles a repository: purposes, risks, imports and dependency hubs.",
		Long: `codexray walks a local directory or a remote git repository, classifies every
text file by purpose, flags risky patterns, extracts raw imports and ranks the
modules the rest of the codebase depends on most.`,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flags.configFile, "config", "", "Config file (default: "+config.DefaultFileName+" if present)")
	persistent.StringVar(&flags.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	persistent.StringVar(&flags.logFile, "log-file", "", "Log file path (default: stderr)")
	persistent.IntVar(&flags.workers, "workers", 0, "Parallel file classifiers (default from config)")
	persistent.StringArrayVar(&flags.excludes, "exclude", nil, "Extra exclude glob (repeatable)")

	rootCmd.AddCommand(newScanCmd(flags), newServeCmd(flags), newRegisterCmd(), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the codexray version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "codexray %s\n", server.Version)
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var serverName string
	cmd := &cobra.Command{
		Use:   "register project|user [directory] [-- serve flags]",
		Short: "Add codexray to an MCP client config",
		Long: `Register codexray serve as an MCP server.

  register project [directory]   writes <directory>/.mcp.json (default: .)
  register user                  writes ~/.claude.json
  register project . -- --no-watch   forwards flags to serve`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, serveArgs := args, []string(nil)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				positional, serveArgs = args[:dash], args[dash:]
			}
			if len(positional) == 0 || len(positional) > 2 {
				return fmt.Errorf("expected a scope (project or user) and an optional directory")
			}
			scope, err := register.ParseScope(positional[0])
			if err != nil {
				return err
			}
			options := register.Options{Scope: scope, ServerName: serverName, ServeArgs: serveArgs}
			if len(positional) > 1 {
				if scope != register.ScopeProject {
					return fmt.Errorf("directory is only valid for project scope")
				}
				options.Directory = positional[1]
			}

			registration, err := register.Run(options)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\n", registration.ServerName, registration.ConfigPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&serverName, "name", "", "Server name in the client config (default: derived from the binary name)")
	return cmd
}

// loadConfig applies CLI flags on top of the loaded configuration.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFile != "" {
		cfg.Log.File = flags.logFile
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	cfg.Exclude = append(cfg.Exclude, flags.excludes...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger creates an slog.Logger writing to stderr or a file. The
// returned func releases the log file.
func setupLogger(level string, logFile string) (*slog.Logger, func()) {
	logLevel, err := config.ParseLogLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using info\n", err)
	}

	var writer io.Writer = os.Stderr
	closeLog := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
		} else {
			writer = f
			closeLog = func() { f.Close() }
		}
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler), closeLog
}
