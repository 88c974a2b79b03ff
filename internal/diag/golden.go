package diag

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatShort renders items into a stable, single-line-per-entry
// representation used for CLI short output and golden tests:
//
//	<severity> <source> <path>:<line>:<col> <message>
//
// Paths are made relative to baseDir when possible. Items are expected to be
// sorted (Bag.Sort). Returns an empty string when there is nothing to print.
func FormatShort(items []Item, baseDir string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s",
			it.Severity.Label(),
			sourceLabel(it.Source),
			displayPath(it.Path, baseDir),
			it.Range.Start.Line+1,
			it.Range.Start.Character+1,
			sanitizeMessage(it.Message),
		)
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sourceLabel(src string) string {
	if src == "" {
		return "-"
	}
	return src
}

func displayPath(path, baseDir string) string {
	if baseDir != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return normalizePath(path)
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
