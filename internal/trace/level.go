package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // ring only, dumped on failure
	LevelPhase               // driver and pass boundaries
	LevelShader              // per-shader events
	LevelDebug               // everything, including statements
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelShader: "shader",
	LevelDebug:  "debug",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// ParseLevel converts a flag value to a Level. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == want {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// Allows reports whether events of the given scope are recorded at this level.
func (l Level) Allows(scope Scope) bool {
	switch l {
	case LevelError, LevelShader:
		return scope <= ScopeShader
	case LevelPhase:
		return scope <= ScopePass
	case LevelDebug:
		return true
	default:
		return false
	}
}
