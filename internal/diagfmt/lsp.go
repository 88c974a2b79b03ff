package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"sort"

	"texdiag/internal/diag"
)

type lspPosition struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

type lspRange struct {
	Start lspPosition `json:"start"`
	End   lspPosition `json:"end"`
}

type lspDiagnostic struct {
	Range    lspRange `json:"range"`
	Severity int      `json:"severity,omitempty"`
	Source   string   `json:"source,omitempty"`
	Message  string   `json:"message"`
}

type publishDiagnosticsParams struct {
	URI         string          `json:"uri"`
	Diagnostics []lspDiagnostic `json:"diagnostics"`
}

type notification struct {
	JSONRPC string                   `json:"jsonrpc"`
	Method  string                   `json:"method"`
	Params  publishDiagnosticsParams `json:"params"`
}

// LSP writes one textDocument/publishDiagnostics notification per file,
// framed with Content-Length headers. A client replaces the diagnostics of
// a URI on every publish, so the collections are merged per file. Files
// dropped by the last Replace of a collection and absent from all others
// are published with an empty array to clear them.
func LSP(w io.Writer, cols []*diag.Collection) error {
	merged := make(map[string][]lspDiagnostic)
	for _, c := range cols {
		if c == nil {
			continue
		}
		snap := c.Snapshot()
		for path, diags := range snap {
			for _, d := range diags {
				merged[path] = append(merged[path], toLSP(d))
			}
			if _, ok := merged[path]; !ok {
				merged[path] = []lspDiagnostic{}
			}
		}
	}
	for _, c := range cols {
		if c == nil {
			continue
		}
		for _, path := range c.Dropped() {
			if _, ok := merged[path]; !ok {
				merged[path] = []lspDiagnostic{}
			}
		}
	}

	paths := make([]string, 0, len(merged))
	for path := range merged {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		payload, err := json.Marshal(notification{
			JSONRPC: "2.0",
			Method:  "textDocument/publishDiagnostics",
			Params:  publishDiagnosticsParams{URI: pathToURI(path), Diagnostics: merged[path]},
		})
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		if err := writeMessage(w, payload); err != nil {
			return err
		}
	}
	return nil
}

func toLSP(d diag.Diagnostic) lspDiagnostic {
	return lspDiagnostic{
		Range: lspRange{
			Start: lspPosition{Line: d.Range.Start.Line, Character: d.Range.Start.Character},
			End:   lspPosition{Line: d.Range.End.Line, Character: d.Range.End.Character},
		},
		Severity: d.Severity.LSP(),
		Source:   d.Source,
		Message:  d.Message,
	}
}

func writeMessage(w io.Writer, payload []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(payload))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
