package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"texdiag/internal/config"
	"texdiag/internal/version"
)

// logTools are the build tools whose output texdiag understands.
var logTools = []string{"pdflatex", "xelatex", "lualatex", "latexmk", "texify", "bibtex", "biber"}

// buildInfo is what `texdiag version` reports; --json prints it as is.
type buildInfo struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit,omitempty"`
	BuildDate string   `json:"build_date,omitempty"`
	Formats   []string `json:"formats"`
	Tools     []string `json:"tools"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show texdiag version and supported tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return fmt.Errorf("failed to get json flag: %w", err)
		}
		info := currentBuild()
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		colorStr, _ := cmd.Root().PersistentFlags().GetString("color")
		mode, err := readColorMode(colorStr)
		if err != nil {
			return err
		}
		return writeBuild(cmd.OutOrStdout(), info, useColor(mode))
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "print build information as JSON")
}

func currentBuild() buildInfo {
	v := strings.TrimSpace(version.Version)
	if v == "" {
		v = "dev"
	}
	return buildInfo{
		Version:   v,
		Commit:    strings.TrimSpace(version.GitCommit),
		BuildDate: strings.TrimSpace(version.BuildDate),
		Formats:   []string{config.FormatPretty, config.FormatShort, config.FormatJSON, config.FormatLSP},
		Tools:     logTools,
	}
}

func writeBuild(out io.Writer, info buildInfo, colored bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "texdiag %s", version.Render(info.Version, colored))
	if info.Commit != "" {
		fmt.Fprintf(&b, " (%s", info.Commit)
		if info.BuildDate != "" {
			fmt.Fprintf(&b, ", %s", info.BuildDate)
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, "\nformats: %s\ntools:   %s\n", strings.Join(info.Formats, ", "), strings.Join(info.Tools, ", "))
	_, err := io.WriteString(out, b.String())
	return err
}
