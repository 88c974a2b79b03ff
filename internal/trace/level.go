package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // only error points
	LevelPhase               // CLI runs and Parse passes
	LevelDetail              // trims, collaborators and publishes per tool family
	LevelDebug               // everything including single entries
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether spans and points of scope pass at this level.
// Error points are let through separately, see accepts.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeFamily
	case LevelDebug:
		return true
	}
	return false
}

func accepts(l Level, ev *Event) bool {
	if l.ShouldEmit(ev.Scope) {
		return true
	}
	return l >= LevelError && ev.Kind == KindPoint && ev.Extra["level"] == "error"
}
