package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"texdiag/internal/config"
	"texdiag/internal/diag"
	"texdiag/internal/diagfmt"
	"texdiag/internal/observ"
	"texdiag/internal/runner"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file.log>...",
	Short: "Parse LaTeX build logs and print diagnostics",
	Long: `Parse one or more build logs and print the diagnostics they contain.
The root .tex file of each log defaults to the log path with a .tex extension`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "", "output format (pretty|short|json|lsp); default from texdiag.toml")
	parseCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	parseCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	parseCmd.Flags().String("root", "", "root .tex file (default: <log>.tex)")
	parseCmd.Flags().Int("max", -1, "maximum number of diagnostics to show (0=all, -1=from texdiag.toml)")
	parseCmd.Flags().String("path-mode", "auto", "how to print paths (auto|absolute|relative|basename)")
	parseCmd.Flags().Bool("context", true, "print the offending source line in pretty output")
}

// runParse parses every log, prints the diagnostics of all projects and
// fails when any error diagnostic was reported or a log could not be read.
func runParse(cmd *cobra.Command, args []string) error {
	logs, err := absLogs(args)
	if err != nil {
		return err
	}
	s, err := loadSettings(cmd, filepath.Dir(logs[0]))
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = s.cfg.Format
	}
	if !config.ValidFormat(format) {
		return fmt.Errorf("unknown format %q (expected pretty|short|json|lsp)", format)
	}

	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiStr)
	if err != nil {
		return err
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	rootOverride, err := cmd.Flags().GetString("root")
	if err != nil {
		return fmt.Errorf("failed to get root flag: %w", err)
	}
	if rootOverride != "" && len(logs) > 1 {
		return errors.New("--root applies to a single log")
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max")
	if err != nil {
		return fmt.Errorf("failed to get max flag: %w", err)
	}
	if maxDiagnostics < 0 {
		maxDiagnostics = s.cfg.MaxDiagnostics
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, ok := diagfmt.ParsePathMode(pathModeStr)
	if !ok {
		return fmt.Errorf("invalid --path-mode %q (expected auto|absolute|relative|basename)", pathModeStr)
	}
	withContext, err := cmd.Flags().GetBool("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}

	popts, err := s.projectOptions(rootOverride)
	if err != nil {
		return err
	}
	var timer *observ.Timer
	if s.timings {
		timer = observ.NewTimer()
	}
	runOpts := runner.RunOptions{Options: popts, Jobs: jobs, Timer: timer}

	var results []runner.Result
	if shouldUseTUI(mode, len(logs)) && !s.quiet {
		results, err = runWithUI(cmd.Context(), "parsing logs", logs, runOpts)
	} else {
		results, err = runner.Run(cmd.Context(), logs, runOpts)
	}
	if err != nil {
		return err
	}

	var (
		cols    []*diag.Collection
		skipped = len(results) > 0
		failed  []error
	)
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", r.Log, r.Err))
		}
		if r.Project != nil {
			cols = append(cols, r.Project.Collections()...)
		}
		skipped = skipped && r.Skipped
	}

	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = s.cfg.Dir
	}
	hasErrors := false
	if len(cols) > 0 {
		idx := timer.Begin("output")
		hasErrors, err = writeDiagnostics(cmd.OutOrStdout(), cols, skipped, outputOptions{
			format:   format,
			pathMode: pathMode,
			baseDir:  baseDir,
			max:      maxDiagnostics,
			color:    s.color,
			context:  withContext,
			quiet:    s.quiet,
			lines:    popts.Store,
		})
		timer.End(idx, format)
		if err != nil {
			return err
		}
	}
	if s.timings {
		if err := printTimings(cmd.ErrOrStderr(), timer, format); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	if hasErrors {
		return errDiagnostics
	}
	return nil
}
