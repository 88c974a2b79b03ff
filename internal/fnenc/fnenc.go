// Package fnenc recovers file names that a TeX engine printed in a legacy
// encoding, or that were decoded with the wrong one.
package fnenc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/unicode/norm"

	"texdiag/internal/source"
)

// DefaultEncodings are tried when none are configured.
var DefaultEncodings = []string{"gbk", "shift_jis", "euc-jp", "big5", "euc-kr"}

type codec struct {
	name string
	enc  encoding.Encoding
}

// Repairer maps a file name that does not exist to an existing one.
type Repairer struct {
	codecs []codec
	// Exists defaults to source.Exists.
	Exists func(path string) bool
}

// New creates a Repairer trying encodings in order. Names are IANA
// charset names; an empty list selects DefaultEncodings.
func New(encodings []string) (*Repairer, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	r := &Repairer{}
	for _, name := range encodings {
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
		}
		if enc == nil {
			return nil, fmt.Errorf("unsupported encoding %q", name)
		}
		r.codecs = append(r.codecs, codec{name: name, enc: enc})
	}
	return r, nil
}

// Encodings returns the names tried by r.
func (r *Repairer) Encodings() []string {
	out := make([]string, len(r.codecs))
	for i, c := range r.codecs {
		out[i] = c.name
	}
	return out
}

// Repair returns the first candidate spelling of path that exists.
func (r *Repairer) Repair(path string) (string, bool) {
	exists := r.Exists
	if exists == nil {
		exists = source.Exists
	}
	for _, c := range r.Candidates(path) {
		if exists(c) {
			return c, true
		}
	}
	return "", false
}

// Candidates lists alternative spellings of path, most likely first.
// path itself is never included.
func (r *Repairer) Candidates(path string) []string {
	var raw []string
	if utf8.ValidString(path) {
		if b, ok := latin1Bytes(path); ok {
			// UTF-8 bytes that were read as Latin-1
			raw = append(raw, b)
		}
	} else {
		raw = append(raw, path)
	}

	seen := map[string]struct{}{path: {}}
	var out []string
	add := func(s string) {
		if _, ok := seen[s]; ok || s == "" {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, b := range raw {
		if utf8.ValidString(b) {
			add(b)
		}
		for _, c := range r.codecs {
			s, err := c.enc.NewDecoder().String(b)
			if err != nil || strings.ContainsRune(s, utf8.RuneError) {
				continue
			}
			add(s)
		}
	}

	// нормализация: macOS хранит имена в NFD
	for _, s := range append([]string{path}, out...) {
		if !utf8.ValidString(s) {
			continue
		}
		add(norm.NFC.String(s))
		add(norm.NFD.String(s))
	}
	return out
}

// latin1Bytes re-encodes a string whose runes all fit in Latin-1. ok is
// false for pure ASCII, where the bytes would not change.
func latin1Bytes(s string) (string, bool) {
	high := false
	for _, r := range s {
		if r > 0xFF {
			return "", false
		}
		if r >= 0x80 {
			high = true
		}
	}
	if !high {
		return "", false
	}
	b, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return "", false
	}
	return b, true
}
