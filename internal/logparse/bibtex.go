package logparse

import (
	"regexp"
	"strings"

	"texdiag/internal/texlog"
)

var (
	bibDatabase        = regexp.MustCompile(`^Database file #\d+: (.+)$`)
	bibWarning         = regexp.MustCompile(`^Warning--(.+)$`)
	bibWarningInKey    = regexp.MustCompile(`^(.+) in ([^\s]+)\s*$`)
	bibMissingEntry    = regexp.MustCompile(`^I didn't find a database entry for "(.+)"$`)
	bibWarningLocation = regexp.MustCompile(`^--line (\d+) of file (.+)$`)
	bibErrorLocation   = regexp.MustCompile(`^(.*)---line (\d+) of file (.+)$`)
	bibSkipping        = regexp.MustCompile(`^I'm skipping whatever remains of this (entry|command)$`)
	bibBadCrossRef     = regexp.MustCompile(`^A bad cross reference---entry "(.+?)"$`)
	bibAuxError        = regexp.MustCompile(`^(.*)---while reading file (.+)$`)
)

// BibTeXParser extracts warnings and errors from a BibTeX run. Warnings
// that name an entry key are located in the database files listed by the
// log.
type BibTeXParser struct {
	batch
	// Source reads database and root files; nil leaves keys unlocated.
	Source texlog.ContentSource
}

// NewBibTeXParser creates a parser reading sources from src.
func NewBibTeXParser(src texlog.ContentSource) *BibTeXParser {
	return &BibTeXParser{Source: src}
}

// Parse implements texlog.LogParser.
func (p *BibTeXParser) Parse(log, rootFile string) []texlog.Entry {
	lines := strings.Split(log, "\n")
	var databases []string
	for _, line := range lines {
		if m := bibDatabase.FindStringSubmatch(line); m != nil {
			databases = append(databases, resolve(rootFile, m[1]))
		}
	}

	var entries []texlog.Entry
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}

		if m := bibWarning.FindStringSubmatch(line); m != nil {
			if loc := bibWarningLocation.FindStringSubmatch(next); loc != nil {
				entries = append(entries, texlog.Entry{
					Kind: texlog.KindWarning,
					File: resolve(rootFile, loc[2]),
					Line: atoi(loc[1], 1),
					Text: m[1],
				})
				i++
				continue
			}
			entries = append(entries, p.warning(m[1], rootFile, databases))
			continue
		}

		if m := bibErrorLocation.FindStringSubmatch(line); m != nil {
			text := m[1]
			if text == "" && i > 0 {
				// "---line N" on its own line: the message precedes it
				text = lines[i-1]
			}
			entries = append(entries, texlog.Entry{
				Kind: texlog.KindError,
				File: resolve(rootFile, m[3]),
				Line: atoi(m[2], 1),
				Text: text,
			})
			for i+1 < len(lines) && !bibSkipping.MatchString(lines[i]) {
				i++
			}
			continue
		}

		if m := bibBadCrossRef.FindStringSubmatch(line); m != nil {
			e := p.locate(texlog.Entry{
				Kind: texlog.KindError,
				Text: strings.TrimSpace(line + " " + next),
			}, m[1], rootFile, databases)
			entries = append(entries, e)
			i++
			continue
		}

		if m := bibAuxError.FindStringSubmatch(line); m != nil {
			entries = append(entries, texlog.Entry{
				Kind: texlog.KindError,
				File: resolve(rootFile, m[2]),
				Line: 1,
				Text: m[1],
			})
		}
	}
	return p.commit(dedup(entries))
}

func (p *BibTeXParser) warning(text, rootFile string, databases []string) texlog.Entry {
	e := texlog.Entry{Kind: texlog.KindWarning, Text: text}
	if m := bibMissingEntry.FindStringSubmatch(text); m != nil {
		e.File, e.Line = rootFile, 1
		if line, ok := findCitation(p.Source, rootFile, m[1]); ok {
			e.Line, e.Anchor = line, m[1]
		}
		return e
	}
	if m := bibWarningInKey.FindStringSubmatch(text); m != nil {
		return p.locate(e, m[2], rootFile, databases)
	}
	e.File, e.Line = rootFile, 1
	return e
}

// locate points e at the entry key in the first database defining it,
// falling back to the first line of the root file.
func (p *BibTeXParser) locate(e texlog.Entry, key, rootFile string, databases []string) texlog.Entry {
	for _, db := range databases {
		if line, ok := findBibEntry(p.Source, db, key); ok {
			e.File, e.Line = db, line
			return e
		}
	}
	e.File, e.Line = rootFile, 1
	return e
}
