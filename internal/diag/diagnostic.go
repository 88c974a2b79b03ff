package diag

import (
	"fmt"

	"fortio.org/safecast"
)

// EndOfLine is the end column used when a diagnostic covers the whole line.
// Editors clamp it to the real line length.
const EndOfLine uint32 = 65535

// Position is a 0-based line/character pair. Characters are UTF-16 code units.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a half-open [Start, End) range.
type Range struct {
	Start Position
	End   Position
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
}

// FullLine reports whether the range spans a whole line.
func (r Range) FullLine() bool {
	return r.Start.Character == 0 && r.End.Character == EndOfLine
}

// LineRange builds a single-line range from a 1-based line number and
// 0-based columns. Non-positive lines collapse to the first line.
func LineRange(line int, start, end uint32) Range {
	l := uint32(0)
	if line > 1 {
		v, err := safecast.Conv[uint32](line - 1)
		if err != nil {
			v = ^uint32(0)
		}
		l = v
	}
	return Range{
		Start: Position{Line: l, Character: start},
		End:   Position{Line: l, Character: end},
	}
}

// Diagnostic is one published finding. The file it belongs to is the key
// under which it is stored in a Collection.
type Diagnostic struct {
	Range    Range
	Message  string
	Severity Severity
	Source   string
}
