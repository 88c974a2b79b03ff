package logparse

import (
	"path/filepath"
	"regexp"
	"strings"

	"texdiag/internal/texlog"
)

// batch holds the entries of the most recent Parse.
type batch struct {
	last []texlog.Entry
}

// BuildLog returns the last batch.
func (b *batch) BuildLog() []texlog.Entry {
	return b.last
}

// Restore seeds the last batch, e.g. from persisted state.
func (b *batch) Restore(entries []texlog.Entry) {
	b.last = append([]texlog.Entry(nil), entries...)
}

func (b *batch) commit(entries []texlog.Entry) []texlog.Entry {
	if entries == nil {
		entries = []texlog.Entry{}
	}
	b.last = entries
	return entries
}

// resolve makes file absolute relative to the directory of rootFile.
func resolve(rootFile, file string) string {
	file = strings.TrimSpace(file)
	if file == "" {
		return rootFile
	}
	if filepath.IsAbs(file) || rootFile == "" {
		return filepath.Clean(file)
	}
	return filepath.Join(filepath.Dir(rootFile), file)
}

// dedup drops entries identical to an earlier one, keeping order.
func dedup(entries []texlog.Entry) []texlog.Entry {
	seen := make(map[texlog.Entry]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// lineOf returns the 1-based line containing byte offset off.
func lineOf(content string, off int) int {
	return strings.Count(content[:off], "\n") + 1
}

// findBibEntry locates the "@type{key," header of key in a .bib file.
func findBibEntry(src texlog.ContentSource, file, key string) (int, bool) {
	if src == nil || file == "" || key == "" {
		return 0, false
	}
	content, ok := src.Content(file)
	if !ok {
		return 0, false
	}
	re, err := regexp.Compile(`@[A-Za-z]+\s*[{(]\s*` + regexp.QuoteMeta(key) + `\s*,`)
	if err != nil {
		return 0, false
	}
	loc := re.FindStringIndex(content)
	if loc == nil {
		return 0, false
	}
	return lineOf(content, loc[0]), true
}

// findCitation locates the first line of a .tex file that cites key.
func findCitation(src texlog.ContentSource, file, key string) (int, bool) {
	if src == nil || file == "" || key == "" {
		return 0, false
	}
	content, ok := src.Content(file)
	if !ok {
		return 0, false
	}
	for i, line := range strings.Split(content, "\n") {
		if strings.Contains(line, key) && strings.Contains(line, "cite") {
			return i + 1, true
		}
	}
	return 0, false
}
