package main

import (
	"fmt"
	"io"

	"texdiag/internal/config"
	"texdiag/internal/diag"
	"texdiag/internal/diagfmt"
	"texdiag/internal/source"
)

type outputOptions struct {
	format   string
	pathMode diagfmt.PathMode
	baseDir  string
	max      int
	color    bool
	context  bool
	quiet    bool
	lines    *source.Store
}

// writeDiagnostics prints the collections in the chosen format and reports
// whether any error diagnostic exists (counted before truncation).
func writeDiagnostics(out io.Writer, cols []*diag.Collection, skipped bool, opts outputOptions) (bool, error) {
	all := diag.Collect(0, cols...)
	hasErrors := all.HasErrors()

	switch opts.format {
	case config.FormatJSON:
		return hasErrors, diagfmt.JSON(out, cols, diagfmt.JSONOpts{
			PathMode: opts.pathMode,
			BaseDir:  opts.baseDir,
			Max:      opts.max,
			Skipped:  skipped,
		})
	case config.FormatLSP:
		return hasErrors, diagfmt.LSP(out, cols)
	case config.FormatShort:
		return hasErrors, diagfmt.Short(out, diag.Collect(opts.max, cols...), opts.baseDir)
	case config.FormatPretty:
		bag := diag.Collect(opts.max, cols...)
		prettyOpts := diagfmt.PrettyOpts{
			Color:    opts.color,
			PathMode: opts.pathMode,
			BaseDir:  opts.baseDir,
			Context:  opts.context,
		}
		if opts.lines != nil {
			prettyOpts.Lines = opts.lines
		}
		if err := diagfmt.Pretty(out, bag, prettyOpts); err != nil {
			return hasErrors, err
		}
		if opts.quiet {
			return hasErrors, nil
		}
		if skipped {
			fmt.Fprintln(out, "build skipped: showing diagnostics from the previous run")
		}
		if hidden := all.Len() - bag.Len(); hidden > 0 {
			fmt.Fprintf(out, "... %d more not shown (raise --max)\n", hidden)
		}
		return hasErrors, diagfmt.Summary(out, all, opts.color)
	default:
		return hasErrors, fmt.Errorf("unknown format %q (expected pretty|short|json|lsp)", opts.format)
	}
}
