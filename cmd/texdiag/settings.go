package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"texdiag/internal/config"
	"texdiag/internal/fnenc"
	"texdiag/internal/runner"
	"texdiag/internal/source"
	"texdiag/internal/state"
)

// stateApp names the cache directory under $XDG_CACHE_HOME.
const stateApp = "texdiag"

type settings struct {
	cfg     config.Config
	color   bool
	quiet   bool
	timings bool
}

// loadSettings reads the global flags and the configuration that applies
// to startDir (or the one named by --config).
func loadSettings(cmd *cobra.Command, startDir string) (settings, error) {
	flags := cmd.Root().PersistentFlags()
	var s settings

	colorStr, err := flags.GetString("color")
	if err != nil {
		return s, fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readColorMode(colorStr)
	if err != nil {
		return s, err
	}
	s.color = useColor(mode)

	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}

	path, err := flags.GetString("config")
	if err != nil {
		return s, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		s.cfg, err = config.Load(path)
	} else {
		s.cfg, err = config.Discover(startDir)
	}
	if err != nil {
		return s, err
	}
	return s, nil
}

// projectOptions builds the shared runner options from the configuration.
// rootOverride wins over [project].root.
func (s settings) projectOptions(rootOverride string) (runner.Options, error) {
	opts := runner.Options{
		Root:  s.cfg.Root,
		Store: source.NewStore(s.cfg.CacheTTL),
	}
	if rootOverride != "" {
		abs, err := filepath.Abs(rootOverride)
		if err != nil {
			return opts, fmt.Errorf("resolve --root: %w", err)
		}
		opts.Root = abs
	}
	if s.cfg.State {
		st, err := state.Open(stateApp)
		if err != nil {
			return opts, fmt.Errorf("open state: %w", err)
		}
		opts.State = st
	}
	if s.cfg.ConvertFilenameEncoding {
		rep, err := fnenc.New(s.cfg.Encodings)
		if err != nil {
			return opts, fmt.Errorf("[message].encodings: %w", err)
		}
		opts.Repairer = rep
	}
	return opts, nil
}

// absLogs resolves log paths so projects and collections key on absolute
// paths.
func absLogs(args []string) ([]string, error) {
	logs := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", a, err)
		}
		logs = append(logs, abs)
	}
	return logs, nil
}
