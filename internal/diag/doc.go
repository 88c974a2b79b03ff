// Package diag defines the diagnostic model shared by the log parsers, the
// publisher and the output formatters.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Range – 0-based line/character range (characters in UTF-16 units).
//     Whole-line diagnostics use [0, EndOfLine).
//   - Message – text printed by the tool, possibly multi-line.
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Source – label of the producing tool family ("LaTeX", "BibTeX").
//
// Diagnostics do not carry their file. They are stored per file in a
// Collection, one Collection per tool family. A Collection is a Sink: every
// write is a full snapshot that replaces the previous contents, so a file
// that disappears from a batch is cleared implicitly.
//
// # Consumers
//
//   - internal/texlog publishes snapshots into Sinks.
//   - internal/diagfmt flattens collections into a Bag (sorted, bounded) and
//     renders pretty/short/json/lsp output.
//   - internal/state persists the raw entries, not Diagnostics, so that
//     ranges are recomputed against fresh source content.
package diag
