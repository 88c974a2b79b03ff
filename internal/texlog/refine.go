package texlog

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ContentSource returns the current content of a source file.
type ContentSource interface {
	Content(path string) (string, bool)
}

// LineSource is implemented by content sources that index lines; Refine
// uses it to avoid splitting whole files.
type LineSource interface {
	Line(path string, n int) (string, bool)
}

// Refine narrows the range of e to the last whitespace-delimited token of
// its anchor, located in the live source line. Columns are 0-based,
// half-open and counted in UTF-16 code units. ok is false when there is no
// anchor, no content, the line is out of range, or the anchor is not found.
func Refine(e Entry, src ContentSource) (start, end uint32, ok bool) {
	if e.Anchor == "" || src == nil || e.Line < 1 {
		return 0, 0, false
	}
	line, found := sourceLine(src, e.File, e.Line)
	if !found {
		return 0, 0, false
	}

	pos := strings.Index(line, e.Anchor)
	if pos < 0 {
		return 0, 0, false
	}
	stop := pos + len(e.Anchor)
	wordLen := len(e.Anchor) - strings.LastIndex(e.Anchor, " ") - 1
	if wordLen <= 0 {
		return 0, 0, false
	}
	return utf16Len(line[:stop-wordLen]), utf16Len(line[:stop]), true
}

func sourceLine(src ContentSource, path string, n int) (string, bool) {
	if ls, ok := src.(LineSource); ok {
		return ls.Line(path, n)
	}
	content, ok := src.Content(path)
	if !ok {
		return "", false
	}
	lines := strings.Split(content, "\n")
	if n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

func utf16Len(s string) uint32 {
	n := uint32(0)
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if utf16.RuneLen(r) == 2 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
