package texlog

import "texdiag/internal/diag"

// Kind classifies a log entry.
type Kind uint8

const (
	// KindTypesetting covers bad boxes and other typesetting notes.
	KindTypesetting Kind = iota
	KindWarning
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindTypesetting:
		return "typesetting"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Severity maps the kind onto the published severity.
func (k Kind) Severity() diag.Severity {
	switch k {
	case KindError:
		return diag.SevError
	case KindWarning:
		return diag.SevWarning
	default:
		return diag.SevInfo
	}
}

// Entry is one structured finding extracted from a log segment.
// Line is 1-based. Anchor, when set, is the literal fragment the tool
// quoted at the error site and is only used to narrow the column range.
type Entry struct {
	Kind   Kind
	File   string
	Text   string
	Line   int
	Anchor string
}

// LogParser extracts entries from an isolated log segment. BuildLog
// returns the batch produced by the most recent Parse (or restored state).
type LogParser interface {
	Parse(log, rootFile string) []Entry
	BuildLog() []Entry
}

// Family identifies a tool family and the collection it publishes into.
type Family uint8

const (
	FamilyLaTeX Family = iota
	FamilyBibTeX
	FamilyBiber
)

// Families lists every family in publication order.
var Families = [...]Family{FamilyLaTeX, FamilyBibTeX, FamilyBiber}

func (f Family) String() string {
	switch f {
	case FamilyLaTeX:
		return "LaTeX"
	case FamilyBibTeX:
		return "BibTeX"
	case FamilyBiber:
		return "Biber"
	}
	return "unknown"
}

// Label is the source label attached to published diagnostics.
// Both bibliography engines report as BibTeX.
func (f Family) Label() string {
	if f == FamilyLaTeX {
		return "LaTeX"
	}
	return "BibTeX"
}
