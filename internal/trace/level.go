package trace

import (
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Level controls tracing verbosity. It doubles as the severity of an Event.
type Level uint8

const (
	// LevelNone disables tracing.
	LevelNone  Level = iota // no tracing
	LevelError              // internal failures only
	LevelWarn               // degraded inputs and fallbacks
	LevelInfo               // driver and per-file events
	LevelDebug              // everything
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off", "":
		return LevelNone, nil
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelNone, fmt.Errorf("invalid log level: %q (expected: none|error|warn|info|debug)", s)
	}
}

// ShouldEmit reports whether an event of severity sev passes this level.
func (l Level) ShouldEmit(sev Level) bool {
	if l == LevelNone || sev == LevelNone {
		return false
	}
	return sev <= l
}

func (l Level) charm() charmlog.Level {
	switch l {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelInfo:
		return charmlog.InfoLevel
	case LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
