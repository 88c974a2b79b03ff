package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"texdiag/internal/runner"
	"texdiag/internal/state"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [flags] [file.log]...",
	Short: "Forget diagnostics saved from previous runs",
	Long: `Remove the saved parse state for the given logs, or for every project
when called with --all`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().Bool("all", false, "remove the state of every project")
	cleanCmd.Flags().String("root", "", "root .tex file (default: <log>.tex)")
}

func runClean(cmd *cobra.Command, args []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to get all flag: %w", err)
	}
	if !all && len(args) == 0 {
		return fmt.Errorf("nothing to clean: pass a log file or --all")
	}
	rootOverride, err := cmd.Flags().GetString("root")
	if err != nil {
		return fmt.Errorf("failed to get root flag: %w", err)
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	st, err := state.Open(stateApp)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	if all {
		if err := st.DropAll(); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", st.Dir())
		}
		return nil
	}

	logs, err := absLogs(args)
	if err != nil {
		return err
	}
	if rootOverride != "" {
		if rootOverride, err = filepath.Abs(rootOverride); err != nil {
			return fmt.Errorf("resolve --root: %w", err)
		}
	}
	for _, log := range logs {
		root := runner.RootFor(log, rootOverride)
		if err := st.Drop(root); err != nil {
			return fmt.Errorf("%s: %w", log, err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "forgot %s\n", root)
		}
	}
	return nil
}
