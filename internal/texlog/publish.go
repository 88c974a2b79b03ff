package texlog

import (
	"texdiag/internal/diag"
	"texdiag/internal/source"
)

// Publisher turns entry batches into diagnostic snapshots.
type Publisher struct {
	// Contents feeds the position refiner; nil disables refinement.
	Contents ContentSource
	// Exists reports whether a path exists; nil means source.Exists.
	Exists func(path string) bool
	// Repair re-encodes a file name that does not exist on disk.
	Repair func(path string) (string, bool)
	// ConvertEncoding enables Repair for missing files.
	ConvertEncoding bool
}

// Publish replaces the contents of sink with diagnostics built from entries.
// Entries keep their order within a file. Files whose name cannot be
// repaired are published under the name the tool printed.
func (p *Publisher) Publish(sink diag.Sink, entries []Entry, label string) {
	if sink == nil {
		return
	}
	grouped := make(map[string][]diag.Diagnostic)
	order := make([]string, 0, 4)
	for _, e := range entries {
		start, end := uint32(0), diag.EndOfLine
		if s, en, ok := Refine(e, p.Contents); ok {
			start, end = s, en
		}
		d := diag.Diagnostic{
			Range:    diag.LineRange(e.Line, start, end),
			Message:  e.Text,
			Severity: e.Kind.Severity(),
			Source:   label,
		}
		if _, seen := grouped[e.File]; !seen {
			order = append(order, e.File)
		}
		grouped[e.File] = append(grouped[e.File], d)
	}

	out := make(map[string][]diag.Diagnostic, len(grouped))
	for _, file := range order {
		target := p.resolve(file)
		out[target] = append(out[target], grouped[file]...)
	}
	sink.Replace(out)
}

func (p *Publisher) resolve(file string) string {
	if !p.ConvertEncoding || p.Repair == nil {
		return file
	}
	exists := p.Exists
	if exists == nil {
		exists = source.Exists
	}
	if exists(file) {
		return file
	}
	if alt, ok := p.Repair(file); ok {
		return alt
	}
	return file
}
