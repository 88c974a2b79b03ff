package texlog

import "regexp"

// Marker patterns. Each is matched against single lines (or, for presence
// checks, the whole log in multi-line mode). Go regexps carry no match
// state, so sharing them between calls and goroutines is safe.
var (
	latexmkRule      = regexp.MustCompile(`(?m)^Latexmk: applying rule`)
	latexmkRuleLaTeX = regexp.MustCompile(`(?m)^Latexmk: applying rule '(pdf|lua|xe)?latex`)
	latexmkUpToDate  = regexp.MustCompile(`(?m)^Latexmk: All targets (.*) are up-to-date`)

	texifyRun = regexp.MustCompile(`(?m)^running (pdf|lua|xe)?latex`)

	bibtexBanner = regexp.MustCompile(`(?m)^This is BibTeX, Version.*$`)
	biberBanner  = regexp.MustCompile(`(?m)^INFO - This is Biber .*$`)

	outputWritten = regexp.MustCompile(`(?m)^Output written on (.*) \(.*\)\.$`)
	fatalError    = regexp.MustCompile(`Fatal error occurred, no output PDF file produced!`)
)

// Tools is a bit set of the tool markers found in a log.
type Tools uint16

const (
	ToolLatexmk Tools = 1 << iota
	ToolTexify
	ToolBibTeX
	ToolBiber
	ToolOutput
	ToolFatal
	ToolUpToDate
)

var toolNames = []struct {
	tool Tools
	name string
}{
	{ToolLatexmk, "latexmk"},
	{ToolTexify, "texify"},
	{ToolBibTeX, "bibtex"},
	{ToolBiber, "biber"},
	{ToolOutput, "output"},
	{ToolFatal, "fatal"},
	{ToolUpToDate, "up-to-date"},
}

// Has reports whether every bit of t2 is set.
func (t Tools) Has(t2 Tools) bool {
	return t&t2 == t2
}

func (t Tools) String() string {
	out := ""
	for _, tn := range toolNames {
		if t.Has(tn.tool) {
			if out != "" {
				out += ","
			}
			out += tn.name
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

// Detect reports which tool markers occur anywhere in log.
func Detect(log string) Tools {
	var t Tools
	checks := []struct {
		re   *regexp.Regexp
		tool Tools
	}{
		{latexmkRule, ToolLatexmk},
		{texifyRun, ToolTexify},
		{bibtexBanner, ToolBibTeX},
		{biberBanner, ToolBiber},
		{outputWritten, ToolOutput},
		{fatalError, ToolFatal},
		{latexmkUpToDate, ToolUpToDate},
	}
	for _, c := range checks {
		if c.re.MatchString(log) {
			t |= c.tool
		}
	}
	return t
}
