package texlog

import (
	"regexp"
	"strings"
	"testing"
)

var (
	testBegin = regexp.MustCompile(`^BEGIN`)
	testEnd   = regexp.MustCompile(`^END`)
)

func TestTrim(t *testing.T) {
	cases := []struct {
		name string
		log  []string
		want []string
	}{
		{
			name: "end after last begin is excluded",
			log:  []string{"x", "BEGIN 1", "a", "END 1", "BEGIN 2", "b", "c", "END 2", "tail"},
			want: []string{"BEGIN 2", "b", "c"},
		},
		{
			name: "end before last begin falls back to end of log",
			log:  []string{"END 0", "BEGIN 1", "a", "b"},
			want: []string{"BEGIN 1", "a", "b"},
		},
		{
			name: "no end marker runs to end of log",
			log:  []string{"x", "BEGIN", "a"},
			want: []string{"BEGIN", "a"},
		},
		{
			name: "no begin marker keeps the whole log",
			log:  []string{"a", "END", "b"},
			want: []string{"a", "END", "b"},
		},
		{
			name: "line matching both markers counts for both",
			log:  []string{"a", "BEGIN END", "b"},
			want: []string{"BEGIN END", "b"},
		},
	}
	both := regexp.MustCompile(`END`)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end := testEnd
			if strings.Contains(tc.name, "both") {
				end = both
			}
			got := Trim(strings.Join(tc.log, "\n"), testBegin, end)
			if want := strings.Join(tc.want, "\n"); got != want {
				t.Fatalf("Trim() = %q, want %q", got, want)
			}
		})
	}
}

func TestTrimLatexmkIsolatesLastTypesettingRun(t *testing.T) {
	log := strings.Join([]string{
		"Latexmk: applying rule 'pdflatex'...",
		"LaTeX Warning: stale warning on input line 3.",
		"Latexmk: applying rule 'bibtex main'...",
		"This is BibTeX, Version 0.99d",
		"Latexmk: applying rule 'pdflatex'...",
		"Output written on main.pdf (1 page).",
	}, "\n")
	got := trimLatexmk(log)
	want := "Latexmk: applying rule 'pdflatex'...\nOutput written on main.pdf (1 page)."
	if got != want {
		t.Fatalf("trimLatexmk() = %q, want %q", got, want)
	}
}

func TestTrimLatexmkStopsBeforeLaterRule(t *testing.T) {
	log := strings.Join([]string{
		"Latexmk: applying rule 'lualatex'...",
		"Output written on main.pdf (2 pages).",
		"Latexmk: applying rule 'makeindex main.idx'...",
		"index noise",
	}, "\n")
	got := trimLatexmk(log)
	want := "Latexmk: applying rule 'lualatex'...\nOutput written on main.pdf (2 pages)."
	if got != want {
		t.Fatalf("trimLatexmk() = %q, want %q", got, want)
	}
}

func TestTrimTexifyRunsFromLastRun(t *testing.T) {
	log := "running pdflatex\nfirst\nrunning xelatex\nsecond"
	if got := trimTexify(log); got != "running xelatex\nsecond" {
		t.Fatalf("trimTexify() = %q", got)
	}
}

func TestTrimLatexmkBibTeXEndsAtNextTypesettingRule(t *testing.T) {
	log := strings.Join([]string{
		"Latexmk: applying rule 'bibtex main'...",
		"This is BibTeX, Version 0.99d (TeX Live 2024)",
		"Warning--empty journal in knuth",
		"Latexmk: applying rule 'pdflatex'...",
		"Output written on main.pdf (1 page).",
	}, "\n")
	got := trimLatexmkBibTeX(log)
	want := "This is BibTeX, Version 0.99d (TeX Live 2024)\nWarning--empty journal in knuth"
	if got != want {
		t.Fatalf("trimLatexmkBibTeX() = %q, want %q", got, want)
	}
}
