package diagfmt

import (
	"encoding/json"
	"io"

	"texdiag/internal/diag"
)

// PositionJSON is a 0-based position, characters in UTF-16 units.
type PositionJSON struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// RangeJSON представляет диапазон в файле для JSON
type RangeJSON struct {
	Start PositionJSON `json:"start"`
	End   PositionJSON `json:"end"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string    `json:"severity"`
	Source   string    `json:"source,omitempty"`
	Message  string    `json:"message"`
	Range    RangeJSON `json:"range"`
	FullLine bool      `json:"full_line,omitempty"`
}

// FileJSON groups the diagnostics of one file.
type FileJSON struct {
	File        string           `json:"file"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
}

// CollectionJSON is one tool family collection.
type CollectionJSON struct {
	Name  string     `json:"name"`
	Files []FileJSON `json:"files"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Collections []CollectionJSON `json:"collections"`
	Count       int              `json:"count"`
	Truncated   bool             `json:"truncated,omitempty"`
	Skipped     bool             `json:"skipped,omitempty"`
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
// Collections keep their order; files are sorted by path.
func BuildDiagnosticsOutput(cols []*diag.Collection, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{
		Collections: make([]CollectionJSON, 0, len(cols)),
		Skipped:     opts.Skipped,
	}
	for _, c := range cols {
		if c == nil {
			continue
		}
		cj := CollectionJSON{Name: c.Name(), Files: []FileJSON{}}
		snap := c.Snapshot()
		for _, path := range c.Files() {
			fj := FileJSON{
				File:        formatPath(path, opts.PathMode, opts.BaseDir),
				Diagnostics: make([]DiagnosticJSON, 0, len(snap[path])),
			}
			for _, d := range snap[path] {
				if opts.Max > 0 && out.Count >= opts.Max {
					out.Truncated = true
					break
				}
				fj.Diagnostics = append(fj.Diagnostics, toJSON(d))
				out.Count++
			}
			if len(fj.Diagnostics) > 0 {
				cj.Files = append(cj.Files, fj)
			}
		}
		out.Collections = append(out.Collections, cj)
	}
	return out
}

func toJSON(d diag.Diagnostic) DiagnosticJSON {
	return DiagnosticJSON{
		Severity: d.Severity.Label(),
		Source:   d.Source,
		Message:  d.Message,
		Range: RangeJSON{
			Start: PositionJSON{Line: d.Range.Start.Line, Character: d.Range.Start.Character},
			End:   PositionJSON{Line: d.Range.End.Line, Character: d.Range.End.Character},
		},
		FullLine: d.Range.FullLine(),
	}
}

// JSON форматирует коллекции в JSON формат.
func JSON(w io.Writer, cols []*diag.Collection, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(cols, opts))
}
