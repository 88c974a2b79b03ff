package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"texdiag/internal/diag"
)

func sampleCollections() []*diag.Collection {
	latex := diag.NewCollection("LaTeX")
	latex.Replace(map[string][]diag.Diagnostic{
		"/p/main.tex": {
			{Range: diag.LineRange(3, 5, 9), Message: "Undefined control sequence.", Severity: diag.SevError, Source: "LaTeX"},
			{Range: diag.LineRange(7, 0, diag.EndOfLine), Message: "Overfull \\hbox", Severity: diag.SevInfo, Source: "LaTeX"},
		},
		"/p/ch1.tex": {
			{Range: diag.LineRange(1, 0, diag.EndOfLine), Message: "Label multiply defined", Severity: diag.SevWarning, Source: "LaTeX"},
		},
	})
	bib := diag.NewCollection("BibTeX")
	bib.Replace(map[string][]diag.Diagnostic{
		"/p/refs.bib": {
			{Range: diag.LineRange(12, 0, diag.EndOfLine), Message: "empty journal in knuth", Severity: diag.SevWarning, Source: "BibTeX"},
		},
	})
	return []*diag.Collection{latex, bib, diag.NewCollection("Biber")}
}

func TestJSONGroupsCollections(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleCollections(), JSONOpts{BaseDir: "/p"}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if output.Count != 4 || output.Truncated {
		t.Fatalf("count=%d truncated=%v", output.Count, output.Truncated)
	}
	if len(output.Collections) != 3 {
		t.Fatalf("expected 3 collections, got %d", len(output.Collections))
	}
	latex := output.Collections[0]
	if latex.Name != "LaTeX" || len(latex.Files) != 2 || latex.Files[0].File != "ch1.tex" {
		t.Fatalf("unexpected LaTeX collection %+v", latex)
	}
	first := latex.Files[1].Diagnostics[0]
	if first.Severity != "error" || first.Range.Start != (PositionJSON{Line: 2, Character: 5}) || first.FullLine {
		t.Fatalf("unexpected diagnostic %+v", first)
	}
	if !latex.Files[1].Diagnostics[1].FullLine {
		t.Fatal("expected full-line flag")
	}
	if biber := output.Collections[2]; biber.Name != "Biber" || biber.Files == nil || len(biber.Files) != 0 {
		t.Fatalf("empty collection must encode an empty file list: %+v", biber)
	}
}

func TestJSONMaxLimit(t *testing.T) {
	out := BuildDiagnosticsOutput(sampleCollections(), JSONOpts{Max: 2, Skipped: true})
	if out.Count != 2 || !out.Truncated || !out.Skipped {
		t.Fatalf("count=%d truncated=%v skipped=%v", out.Count, out.Truncated, out.Skipped)
	}
	total := 0
	for _, c := range out.Collections {
		for _, f := range c.Files {
			total += len(f.Diagnostics)
		}
	}
	if total != 2 {
		t.Fatalf("expected 2 diagnostics in output, got %d", total)
	}
}
