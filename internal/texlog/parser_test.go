package texlog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"texdiag/internal/diag"
	"texdiag/internal/trace"
)

// fakeParser records its input and returns a fixed batch.
type fakeParser struct {
	batch []Entry
	last  []Entry
	got   []string
}

func (f *fakeParser) Parse(log, rootFile string) []Entry {
	f.got = append(f.got, log)
	f.last = append([]Entry(nil), f.batch...)
	return f.last
}

func (f *fakeParser) BuildLog() []Entry {
	return f.last
}

type harness struct {
	latex, bibtex, biber *fakeParser
	cols                 map[Family]*diag.Collection
	parser               *Parser
}

func newHarness() *harness {
	h := &harness{
		latex:  &fakeParser{batch: []Entry{{Kind: KindError, File: "main.tex", Line: 2, Text: "Undefined control sequence."}}},
		bibtex: &fakeParser{batch: []Entry{{Kind: KindWarning, File: "refs.bib", Line: 1, Text: "empty bibliography"}}},
		biber:  &fakeParser{batch: []Entry{{Kind: KindWarning, File: "refs.bib", Line: 4, Text: "Duplicate entry"}}},
		cols:   make(map[Family]*diag.Collection),
	}
	sinks := make(map[Family]diag.Sink)
	for _, f := range Families {
		h.cols[f] = diag.NewCollection(f.String())
		sinks[f] = h.cols[f]
	}
	h.parser = NewParser(Options{
		LaTeX:     h.latex,
		BibTeX:    h.bibtex,
		Biber:     h.biber,
		Sinks:     sinks,
		Publisher: &Publisher{},
	})
	return h
}

func (h *harness) lens() [3]int {
	return [3]int{h.cols[FamilyLaTeX].Len(), h.cols[FamilyBibTeX].Len(), h.cols[FamilyBiber].Len()}
}

func TestParseWithoutMarkers(t *testing.T) {
	h := newHarness()
	if h.parser.Parse(context.Background(), "just some text\nnothing here\n", "main.tex") {
		t.Fatal("expected no skip")
	}
	if got := h.lens(); got != [3]int{} {
		t.Fatalf("expected empty collections, got %v", got)
	}
	if len(h.latex.got)+len(h.bibtex.got)+len(h.biber.got) != 0 {
		t.Fatal("no collaborator should run")
	}
}

func TestParseCanonicalizesLineEndings(t *testing.T) {
	h := newHarness()
	h.parser.Parse(context.Background(), "a\r\nOutput written on main.pdf (1 page).\rb\r\n", "")
	if len(h.latex.got) != 1 {
		t.Fatalf("expected LaTeX parser to run once, ran %d times", len(h.latex.got))
	}
	if want := "a\nOutput written on main.pdf (1 page).\nb\n"; h.latex.got[0] != want {
		t.Fatalf("got %q, want %q", h.latex.got[0], want)
	}
}

func TestParseBibTeXWholeLogWithoutLatexmk(t *testing.T) {
	h := newHarness()
	log := "This is BibTeX, Version 0.99\nWarning--empty bibliography\n"
	if h.parser.Parse(context.Background(), log, "main.tex") {
		t.Fatal("expected no skip")
	}
	if len(h.bibtex.got) != 1 || h.bibtex.got[0] != log {
		t.Fatalf("BibTeX parser must receive the whole log, got %q", h.bibtex.got)
	}
	if len(h.biber.got) != 0 {
		t.Fatal("Biber must not run when BibTeX banner is present")
	}
	got := h.cols[FamilyBibTeX].Get("refs.bib")
	if len(got) != 1 || got[0].Severity != diag.SevWarning || got[0].Source != "BibTeX" {
		t.Fatalf("unexpected BibTeX diagnostics: %+v", got)
	}
}

func TestParseBiberTrimmedUnderLatexmk(t *testing.T) {
	h := newHarness()
	log := strings.Join([]string{
		"Latexmk: applying rule 'biber main'...",
		"INFO - This is Biber 2.19",
		"WARN - Duplicate entry key",
		"Latexmk: applying rule 'pdflatex'...",
		"Output written on main.pdf (3 pages).",
	}, "\n")
	h.parser.Parse(context.Background(), log, "main.tex")

	if want := "INFO - This is Biber 2.19\nWARN - Duplicate entry key"; len(h.biber.got) != 1 || h.biber.got[0] != want {
		t.Fatalf("Biber got %q, want %q", h.biber.got, want)
	}
	if want := "Latexmk: applying rule 'pdflatex'...\nOutput written on main.pdf (3 pages)."; len(h.latex.got) != 1 || h.latex.got[0] != want {
		t.Fatalf("LaTeX got %q, want %q", h.latex.got, want)
	}
	if got := h.cols[FamilyBiber].Get("refs.bib"); len(got) != 1 || got[0].Source != "BibTeX" {
		t.Fatalf("Biber diagnostics must carry the BibTeX label: %+v", got)
	}
}

func TestParseLatexmkIsolatesSecondRun(t *testing.T) {
	h := newHarness()
	log := "Latexmk: applying rule 'pdflatex'...\nfirst pass\n" +
		"Latexmk: applying rule 'pdflatex'...\nsecond pass\n" +
		"Output written on doc.pdf (1 page).\n"
	h.parser.Parse(context.Background(), log, "")
	want := "Latexmk: applying rule 'pdflatex'...\nsecond pass\nOutput written on doc.pdf (1 page).\n"
	if len(h.latex.got) != 1 || h.latex.got[0] != want {
		t.Fatalf("LaTeX got %q, want %q", h.latex.got, want)
	}
	if h.cols[FamilyLaTeX].Len() == 0 {
		t.Fatal("expected LaTeX diagnostics")
	}
}

func TestParseFatalErrorWithoutOutput(t *testing.T) {
	h := newHarness()
	h.parser.Parse(context.Background(), "! Emergency stop.\n!  ==> Fatal error occurred, no output PDF file produced!\n", "")
	if len(h.latex.got) != 1 {
		t.Fatal("fatal error marker must trigger the LaTeX parser")
	}
}

func TestParseSkipRepublishesPreviousBatches(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.parser.Parse(ctx, "This is BibTeX, Version 0.99d\n", "main.tex")
	h.parser.Parse(ctx, "INFO - This is Biber 2.19\n", "main.tex")
	h.parser.Parse(ctx, "Output written on main.pdf (1 page).\n", "main.tex")
	before := map[Family]map[string][]diag.Diagnostic{}
	for f, c := range h.cols {
		before[f] = c.Snapshot()
	}
	lastLaTeX := h.latex.BuildLog()

	// Drift the LaTeX collection so the republish is observable.
	h.cols[FamilyLaTeX].Clear()

	skipped := h.parser.Parse(ctx, "Latexmk: All targets (main.pdf) are up-to-date\n", "main.tex")
	if !skipped {
		t.Fatal("expected skip")
	}
	for f, c := range h.cols {
		if diff := cmp.Diff(before[f], c.Snapshot()); diff != "" {
			t.Fatalf("%s collection changed (-want +got):\n%s", f, diff)
		}
	}
	if len(h.latex.got) != 1 {
		t.Fatal("skip must not re-run the LaTeX parser")
	}
	if diff := cmp.Diff(lastLaTeX, h.latex.BuildLog()); diff != "" {
		t.Fatalf("skip mutated the last batch:\n%s", diff)
	}
}

func TestParseUpToDateWithRuleIsNotSkip(t *testing.T) {
	h := newHarness()
	log := "Latexmk: applying rule 'makeindex'...\nLatexmk: All targets (main.pdf) are up-to-date\n"
	if h.parser.Parse(context.Background(), log, "") {
		t.Fatal("a log with applied rules is a real run")
	}
}

func TestParseIdempotent(t *testing.T) {
	log := "Latexmk: applying rule 'pdflatex'...\nOutput written on main.pdf (1 page).\n" +
		"This is BibTeX, Version 0.99d\n"
	h := newHarness()
	h.parser.Parse(context.Background(), log, "main.tex")
	first := map[Family]map[string][]diag.Diagnostic{}
	for f, c := range h.cols {
		first[f] = c.Snapshot()
	}
	h.parser.Parse(context.Background(), log, "main.tex")
	for f, c := range h.cols {
		if diff := cmp.Diff(first[f], c.Snapshot()); diff != "" {
			t.Fatalf("%s differs between runs (-first +second):\n%s", f, diff)
		}
	}
}

func TestParseTexify(t *testing.T) {
	h := newHarness()
	log := "running pdflatex\nold\nrunning pdflatex\nOutput written on main.pdf (1 page).\n"
	h.parser.Parse(context.Background(), log, "")
	if want := "running pdflatex\nOutput written on main.pdf (1 page).\n"; h.latex.got[0] != want {
		t.Fatalf("got %q, want %q", h.latex.got[0], want)
	}
}

func TestParseTraceSpans(t *testing.T) {
	h := newHarness()
	rec := trace.NewRecorder(trace.LevelDetail)
	ctx := trace.WithLog(trace.WithTracer(context.Background(), rec), "main.log")

	log := "This is BibTeX, Version 0.99\nWarning--empty bibliography\nOutput written on main.pdf (1 page).\n"
	h.parser.Parse(ctx, log, "main.tex")

	want := []string{
		"begin:parse",
		"begin:parse:BibTeX", "end:parse:BibTeX",
		"begin:parse:LaTeX", "end:parse:LaTeX",
		"end:parse",
	}
	if diff := cmp.Diff(want, rec.Names()); diff != "" {
		t.Fatalf("span sequence mismatch (-want +got):\n%s", diff)
	}
	last := rec.Events()[len(want)-1]
	if last.Extra["skipped"] != "false" || last.Extra["tools"] == "" || last.Log != "main.log" {
		t.Fatalf("unexpected pass end event: %+v", last)
	}
}
