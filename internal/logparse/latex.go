package logparse

import (
	"regexp"
	"strconv"
	"strings"

	"texdiag/internal/texlog"
)

// MaxPrintLine is the column at which TeX engines wrap log lines.
const MaxPrintLine = 79

var (
	latexError       = regexp.MustCompile(`^(?:(.*):(\d+):|!)(?: (.+) Error:)? (.+?)$`)
	latexBox         = regexp.MustCompile(`^((?:Over|Under)full \\[vh]box \([^)]*\)) in paragraph at lines (\d+)--(\d+)$`)
	latexBoxAlt      = regexp.MustCompile(`^((?:Over|Under)full \\[vh]box \([^)]*\)) detected at line (\d+)$`)
	latexBoxOutput   = regexp.MustCompile(`^((?:Over|Under)full \\[vh]box \([^)]*\)) has occurred while \\output is active(?: \[(\d+)\])?`)
	latexWarn        = regexp.MustCompile(`^((?:(?:Class|Package|Module) \S*)|LaTeX(?: \S*)?|LaTeX3) (Warning|Info):\s+(.*?)(?: on(?: input)? line (\d+))?(\.|\?|)$`)
	latexWarnExtra   = regexp.MustCompile(`^\((.*)\)\s+(.*?)(?: +on input line (\d+))?(\.)?$`)
	undefinedRef     = regexp.MustCompile("^LaTeX Warning: (Reference|Citation) `(.*?)' on page (?:\\d+) undefined on input line (\\d+)\\.$")
	bibEmpty         = regexp.MustCompile("^Empty `thebibliography' environment")
	messageLine      = regexp.MustCompile(`^l\.(\d+)\s(\.\.\.)?(.*)$`)
	fileExtension    = regexp.MustCompile(`\.[A-Za-z][A-Za-z0-9]*$`)
	fatalErrorMarker = "Fatal error occurred, no output PDF file produced!"
)

type latexState uint8

const (
	stateNormal latexState = iota
	// ждём пустую строку после предупреждения или бокса
	stateWarning
	stateBox
	stateError
)

// LaTeXParser extracts errors, warnings and bad boxes from the log of a
// TeX engine run.
type LaTeXParser struct {
	batch
}

// NewLaTeXParser creates an empty parser.
func NewLaTeXParser() *LaTeXParser {
	return &LaTeXParser{}
}

// latexRun is the state of one Parse call.
type latexRun struct {
	root    string
	files   []string
	state   latexState
	entries []texlog.Entry
	// current points into entries while a multi-line message is collected
	current int
	// knownLine is set when a file:line:error header already gave the line
	knownLine bool
}

// Parse implements texlog.LogParser.
func (p *LaTeXParser) Parse(log, rootFile string) []texlog.Entry {
	r := &latexRun{root: rootFile, current: -1}
	fatal := false
	for _, line := range unwrap(strings.Split(log, "\n")) {
		if strings.Contains(line, fatalErrorMarker) {
			fatal = true
			r.finish()
			continue
		}
		r.line(line)
	}
	if fatal && !r.hasErrors() {
		r.entries = append(r.entries, texlog.Entry{
			Kind: texlog.KindError,
			File: rootFile,
			Line: 1,
			Text: fatalErrorMarker,
		})
	}
	return p.commit(dedup(r.entries))
}

// unwrap joins lines that TeX broke at MaxPrintLine.
func unwrap(lines []string) []string {
	out := make([]string, 0, len(lines))
	pending := ""
	for i, line := range lines {
		line = pending + line
		pending = ""
		if len(line) > 0 && len(line)%MaxPrintLine == 0 && i+1 < len(lines) {
			next := lines[i+1]
			if next != "" && !strings.HasPrefix(next, "!") && !strings.HasPrefix(next, "l.") {
				pending = line
				continue
			}
		}
		out = append(out, line)
	}
	if pending != "" {
		out = append(out, pending)
	}
	return out
}

func (r *latexRun) line(line string) {
	switch r.state {
	case stateBox:
		// box content is a dump of the offending material
		if strings.TrimSpace(line) == "" {
			r.state = stateNormal
		}
		return
	case stateWarning:
		if strings.TrimSpace(line) == "" {
			r.finish()
			return
		}
		if m := latexWarnExtra.FindStringSubmatch(line); m != nil {
			e := &r.entries[r.current]
			e.Text += " " + m[2]
			if m[3] != "" {
				e.Line = atoi(m[3], e.Line)
			}
			return
		}
		r.finish()
	case stateError:
		if m := messageLine.FindStringSubmatch(line); m != nil {
			e := &r.entries[r.current]
			if !r.knownLine {
				e.Line = atoi(m[1], 1)
			}
			e.Anchor = strings.TrimSpace(m[3])
			r.finish()
			return
		}
		if strings.TrimSpace(line) == "" {
			r.finish()
			return
		}
		if !strings.HasPrefix(line, "!") && !latexError.MatchString(line) {
			e := &r.entries[r.current]
			e.Text += "\n" + line
			return
		}
		r.finish()
	}
	r.normal(line)
}

func (r *latexRun) finish() {
	if r.current >= 0 && r.entries[r.current].Line == 0 {
		r.entries[r.current].Line = 1
	}
	r.state = stateNormal
	r.current = -1
	r.knownLine = false
}

func (r *latexRun) normal(line string) {
	if m := undefinedRef.FindStringSubmatch(line); m != nil {
		r.add(texlog.Entry{
			Kind:   texlog.KindWarning,
			File:   r.file(),
			Line:   atoi(m[3], 1),
			Text:   m[1] + " `" + m[2] + "' undefined",
			Anchor: m[2],
		})
		return
	}
	if m := latexBox.FindStringSubmatch(line); m != nil {
		r.add(texlog.Entry{Kind: texlog.KindTypesetting, File: r.file(), Line: atoi(m[2], 1), Text: m[1]})
		r.state = stateBox
		return
	}
	if m := latexBoxAlt.FindStringSubmatch(line); m != nil {
		r.add(texlog.Entry{Kind: texlog.KindTypesetting, File: r.file(), Line: atoi(m[2], 1), Text: m[1]})
		r.state = stateBox
		return
	}
	if m := latexBoxOutput.FindStringSubmatch(line); m != nil {
		r.add(texlog.Entry{Kind: texlog.KindTypesetting, File: r.file(), Line: 1, Text: m[1]})
		r.state = stateBox
		return
	}
	if m := latexWarn.FindStringSubmatch(line); m != nil {
		if m[2] == "Info" {
			return
		}
		r.add(texlog.Entry{
			Kind: texlog.KindWarning,
			File: r.file(),
			Line: atoi(m[4], 1),
			Text: strings.TrimSpace(m[3]),
		})
		r.current = len(r.entries) - 1
		r.state = stateWarning
		return
	}
	if bibEmpty.MatchString(line) {
		r.add(texlog.Entry{Kind: texlog.KindWarning, File: r.file(), Line: 1, Text: "Empty `thebibliography' environment."})
		return
	}
	if m := latexError.FindStringSubmatch(line); m != nil {
		e := texlog.Entry{Kind: texlog.KindError, File: r.file(), Text: m[4]}
		if m[3] != "" {
			e.Text = m[3] + ": " + m[4]
		}
		if m[1] != "" {
			e.File = resolve(r.root, m[1])
			e.Line = atoi(m[2], 1)
			r.knownLine = true
		}
		r.add(e)
		r.current = len(r.entries) - 1
		r.state = stateError
		return
	}
	r.scanFiles(line)
}

func (r *latexRun) add(e texlog.Entry) {
	r.entries = append(r.entries, e)
}

func (r *latexRun) hasErrors() bool {
	for _, e := range r.entries {
		if e.Kind == texlog.KindError {
			return true
		}
	}
	return false
}

// file returns the innermost open file, or the root file.
func (r *latexRun) file() string {
	for i := len(r.files) - 1; i >= 0; i-- {
		if r.files[i] != "" {
			return resolve(r.root, r.files[i])
		}
	}
	return r.root
}

// scanFiles tracks the "(file" / ")" nesting that TeX prints while
// reading input files. Parentheses that do not open a file are tracked
// with an empty name to keep the stack balanced.
func (r *latexRun) scanFiles(line string) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '(':
			j := i + 1
			var name string
			if j < len(line) && line[j] == '"' {
				end := strings.IndexByte(line[j+1:], '"')
				if end < 0 {
					name = line[j+1:]
					j = len(line)
				} else {
					name = line[j+1 : j+1+end]
					j += end + 2
				}
			} else {
				for j < len(line) && !strings.ContainsRune(" \t()[]{}<>", rune(line[j])) {
					j++
				}
				name = line[i+1 : j]
			}
			if !fileExtension.MatchString(name) {
				name = ""
			}
			r.files = append(r.files, name)
			i = j - 1
		case ')':
			if len(r.files) > 0 {
				r.files = r.files[:len(r.files)-1]
			}
		}
	}
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
