package main

import (
	"encoding/json"
	"fmt"
	"io"

	"texdiag/internal/config"
	"texdiag/internal/observ"
)

// printTimings writes the timer report to out. JSON output gets a JSON
// report so the stream stays machine readable on stderr.
func printTimings(out io.Writer, timer *observ.Timer, format string) error {
	if out == nil || timer == nil {
		return nil
	}
	if format == config.FormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(timer.Report())
	}
	_, err := fmt.Fprint(out, timer.Summary())
	return err
}
