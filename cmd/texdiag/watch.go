package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"texdiag/internal/config"
	"texdiag/internal/diagfmt"
	"texdiag/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <file.log>...",
	Short: "Re-parse build logs whenever they change",
	Long: `Watch build logs and print fresh diagnostics after every build.
With --format lsp the output is a stream of textDocument/publishDiagnostics notifications`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("format", "", "output format (pretty|short|json|lsp); default from texdiag.toml")
	watchCmd.Flags().String("root", "", "root .tex file (default: <log>.tex)")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed log is parsed")
	watchCmd.Flags().Int("max", -1, "maximum number of diagnostics to show (0=all, -1=from texdiag.toml)")
}

func runWatch(cmd *cobra.Command, args []string) error {
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
	rootOverride, err := cmd.Flags().GetString("root")
	if err != nil {
		return fmt.Errorf("failed to get root flag: %w", err)
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max")
	if err != nil {
		return fmt.Errorf("failed to get max flag: %w", err)
	}
	if maxDiagnostics < 0 {
		maxDiagnostics = s.cfg.MaxDiagnostics
	}

	popts, err := s.projectOptions(rootOverride)
	if err != nil {
		return err
	}
	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = s.cfg.Dir
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	var mu sync.Mutex
	onUpdate := func(u watch.Update) {
		mu.Lock()
		defer mu.Unlock()
		if u.Err != nil {
			fmt.Fprintf(errOut, "texdiag: %s: %v\n", u.Log, u.Err)
			return
		}
		// LSP-клиенту нужны только изменения
		if !u.Changed && format == config.FormatLSP {
			return
		}
		if format != config.FormatLSP && !s.quiet {
			fmt.Fprintf(out, "==> %s (%s)\n", u.Log, time.Now().Format(time.TimeOnly))
		}
		if _, err := writeDiagnostics(out, u.Project.Collections(), u.Skipped, outputOptions{
			format:   format,
			pathMode: diagfmt.PathModeAuto,
			baseDir:  baseDir,
			max:      maxDiagnostics,
			color:    s.color,
			context:  true,
			quiet:    s.quiet,
			lines:    popts.Store,
		}); err != nil {
			fmt.Fprintf(errOut, "texdiag: %v\n", err)
		}
	}

	w, err := watch.New(logs, watch.Options{
		Options:  popts,
		Debounce: debounce,
		OnUpdate: onUpdate,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if !s.quiet && format != config.FormatLSP {
		fmt.Fprintf(errOut, "watching %d log(s), press ctrl+c to stop\n", len(logs))
	}
	return w.Run(ctx)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
