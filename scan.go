package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexandro/codexray/config"
	"github.com/lexandro/codexray/remote"
	"github.com/lexandro/codexray/report"
	"github.com/lexandro/codexray/scanner"
	"github.com/lexandro/codexray/summary"
	"github.com/lexandro/codexray/tools"
	"github.com/lexandro/codexray/workspace"
)

type scanFlags struct {
	format      string
	output      string
	withSummary bool
}

func newScanCmd(global *globalFlags) *cobra.Command {
	flags := &scanFlags{}
	cmd := &cobra.Command{
		Use:   "scan [path|url]",
		Short: "Scan a directory or repository once and print a report",
		Long: `Scan a local directory (default: the current directory) or a remote git
repository. Remote targets are shallow-cloned into a temporary directory that
is removed after the scan.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			return runScan(cmd, global, flags, target)
		},
	}
	cmd.Flags().StringVarP(&flags.format, "format", "f", string(report.FormatText), "Output format: text|json|sarif")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&flags.withSummary, "summary", false, "Add a project summary (Gemini when "+config.EnvGeminiAPIKey+" is set, heuristic otherwise)")
	return cmd
}

func runScan(cmd *cobra.Command, global *globalFlags, flags *scanFlags, target string) error {
	format, err := report.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	logger, closeLog := setupLogger(cfg.Log.Level, cfg.Log.File)
	defer closeLog()

	ctx := cmd.Context()
	ws, err := workspace.New(workspace.Options{
		Scanner:   scanner.New(cfg.ScannerOptions(logger)),
		Cloner:    remote.NewCloner(remote.Options{Logger: logger}),
		CacheSize: 1,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer ws.Close()

	result, err := ws.Scan(ctx, target, false)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", target, err)
	}

	project := tools.ProjectName(workspace.Key(target))
	var projectSummary *summary.Summary
	if flags.withSummary {
		s, err := summary.New(ctx, cfg.GeminiOptions(logger)).Summarize(ctx, project, result)
		if err != nil {
			return fmt.Errorf("summarizing %s: %w", project, err)
		}
		projectSummary = &s
	}

	var out io.Writer = cmd.OutOrStdout()
	if flags.output != "" {
		f, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := report.Write(out, format, report.NewBundle(project, result, projectSummary)); err != nil {
		return fmt.Errorf("writing %s report: %w", format, err)
	}
	if flags.output != "" {
		logger.Info("report written", "path", flags.output, "format", format)
	}
	return nil
}
