package diag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCollectionReplaceDropsMissingFiles(t *testing.T) {
	c := NewCollection("LaTeX")
	c.Replace(map[string][]Diagnostic{
		"a.tex": {{Message: "one", Severity: SevError}},
		"b.tex": {{Message: "two", Severity: SevWarning}},
	})
	if c.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", c.Len())
	}

	c.Replace(map[string][]Diagnostic{
		"b.tex": {{Message: "three", Severity: SevInfo}},
	})
	if diff := cmp.Diff([]string{"b.tex"}, c.Files()); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.tex"}, c.Dropped()); diff != "" {
		t.Fatalf("dropped mismatch (-want +got):\n%s", diff)
	}
	if got := c.Get("b.tex"); len(got) != 1 || got[0].Message != "three" {
		t.Fatalf("unexpected b.tex diagnostics: %+v", got)
	}
	if c.Generation() != 2 {
		t.Fatalf("expected generation 2, got %d", c.Generation())
	}
}

func TestCollectionReplaceCopiesInput(t *testing.T) {
	in := map[string][]Diagnostic{"a.tex": {{Message: "orig"}}}
	c := NewCollection("BibTeX")
	c.Replace(in)
	in["a.tex"][0].Message = "mutated"
	in["c.tex"] = nil
	if got := c.Get("a.tex")[0].Message; got != "orig" {
		t.Fatalf("collection shares caller memory: %q", got)
	}
	if len(c.Files()) != 1 {
		t.Fatalf("collection shares caller map: %v", c.Files())
	}
}

func TestClearEmptiesCollection(t *testing.T) {
	c := NewCollection("Biber")
	c.Replace(map[string][]Diagnostic{"refs.bib": {{Message: "x"}}})
	c.Clear()
	if c.Len() != 0 || len(c.Files()) != 0 {
		t.Fatalf("expected empty collection, got %v", c.Snapshot())
	}
}

func TestLineRange(t *testing.T) {
	r := LineRange(3, 0, EndOfLine)
	if r.Start.Line != 2 || r.End.Line != 2 {
		t.Fatalf("expected 0-based line 2, got %s", r)
	}
	if !r.FullLine() {
		t.Fatalf("expected full-line range, got %s", r)
	}
	if got := LineRange(0, 1, 2); got.Start.Line != 0 {
		t.Fatalf("non-positive line should clamp to 0, got %s", got)
	}
}
