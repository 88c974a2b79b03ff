package texlog

import (
	"regexp"
	"strings"
)

// Trim isolates the part of log written by the last run that begins with
// a begin line. Both the last begin line and the last end line are found
// in one pass over all lines. When the last end line does not come after
// the last begin line (the run crashed or was the final one), the window
// extends to the end of the log; otherwise it stops before the end line.
// A log without any begin line is returned whole.
func Trim(log string, begin, end *regexp.Regexp) string {
	lines := strings.Split(log, "\n")
	start, final := window(lines, begin, end)
	return strings.Join(lines[start:final], "\n")
}

// window returns the half-open line range [start, final) selected by Trim.
func window(lines []string, begin, end *regexp.Regexp) (start, final int) {
	start, final = -1, -1
	for i, line := range lines {
		if begin.MatchString(line) {
			start = i
		}
		if end.MatchString(line) {
			final = i
		}
	}
	if start < 0 {
		return 0, len(lines)
	}
	if final <= start {
		return start, len(lines)
	}
	return start, final
}

func trimLatexmk(log string) string {
	return Trim(log, latexmkRuleLaTeX, latexmkRule)
}

func trimLatexmkBibTeX(log string) string {
	return Trim(log, bibtexBanner, latexmkRuleLaTeX)
}

func trimLatexmkBiber(log string) string {
	return Trim(log, biberBanner, latexmkRuleLaTeX)
}

func trimTexify(log string) string {
	return Trim(log, texifyRun, texifyRun)
}
