package logparse

import (
	"path/filepath"
	"regexp"
	"strings"

	"texdiag/internal/texlog"
)

var (
	biberDataSource   = regexp.MustCompile(`^INFO - Found BibTeX data source '(.+)'$`)
	biberSubsystem    = regexp.MustCompile(`^(WARN|ERROR) - BibTeX subsystem: (.+?), line (\d+), (.+)$`)
	biberEntry        = regexp.MustCompile(`^(WARN|ERROR) - (?:Datamodel: )?Entry '(.+?)' \((.+?)\): (.+)$`)
	biberMissingEntry = regexp.MustCompile(`^WARN - I didn't find a database entry for '(.+?)'`)
	biberRecord       = regexp.MustCompile(`^(WARN|ERROR) - (.+)$`)
	// biber parses a UTF-8 temporary copy of each data source
	biberTempCopy = regexp.MustCompile(`^(.+?)_\d+\.utf8$`)
)

// BiberParser extracts WARN and ERROR records from a Biber run.
type BiberParser struct {
	batch
	// Source reads data sources and the root file; nil leaves keys unlocated.
	Source texlog.ContentSource
}

// NewBiberParser creates a parser reading sources from src.
func NewBiberParser(src texlog.ContentSource) *BiberParser {
	return &BiberParser{Source: src}
}

// Parse implements texlog.LogParser.
func (p *BiberParser) Parse(log, rootFile string) []texlog.Entry {
	lines := strings.Split(log, "\n")
	var sources []string
	for _, line := range lines {
		if m := biberDataSource.FindStringSubmatch(line); m != nil {
			sources = append(sources, resolve(rootFile, m[1]))
		}
	}

	var entries []texlog.Entry
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if m := biberSubsystem.FindStringSubmatch(line); m != nil {
			entries = append(entries, texlog.Entry{
				Kind: biberKind(m[1]),
				File: originalSource(m[2], rootFile, sources),
				Line: atoi(m[3], 1),
				Text: m[4],
			})
			continue
		}
		if m := biberEntry.FindStringSubmatch(line); m != nil {
			file := resolve(rootFile, m[3])
			e := texlog.Entry{Kind: biberKind(m[1]), File: file, Line: 1, Text: m[4]}
			if n, ok := findBibEntry(p.Source, file, m[2]); ok {
				e.Line = n
			}
			entries = append(entries, e)
			continue
		}
		if m := biberMissingEntry.FindStringSubmatch(line); m != nil {
			e := texlog.Entry{Kind: texlog.KindWarning, File: rootFile, Line: 1, Text: strings.TrimPrefix(line, "WARN - ")}
			if n, ok := findCitation(p.Source, rootFile, m[1]); ok {
				e.Line, e.Anchor = n, m[1]
			}
			entries = append(entries, e)
			continue
		}
		if m := biberRecord.FindStringSubmatch(line); m != nil {
			entries = append(entries, texlog.Entry{Kind: biberKind(m[1]), File: rootFile, Line: 1, Text: m[2]})
		}
	}
	return p.commit(dedup(entries))
}

func biberKind(level string) texlog.Kind {
	if level == "ERROR" {
		return texlog.KindError
	}
	return texlog.KindWarning
}

// originalSource maps biber's temporary copy back to the data source it
// was made from.
func originalSource(tmp, rootFile string, sources []string) string {
	base := filepath.Base(tmp)
	if m := biberTempCopy.FindStringSubmatch(base); m != nil {
		base = m[1]
	}
	for _, src := range sources {
		if filepath.Base(src) == base {
			return src
		}
	}
	if len(sources) == 1 {
		return sources[0]
	}
	return resolve(rootFile, base)
}
