package trace

import (
	"sync/atomic"
	"time"
)

// Scope indicates where an event comes from.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // CLI and driver fan-out
	ScopeFile                    // one template
	ScopePass                    // tokenize, render, script delegate
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeFile:
		return "file"
	case ScopePass:
		return "pass"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time   time.Time         // wall-clock timestamp
	Seq    uint64            // global sequence number (monotonic)
	Level  Level             // severity
	Scope  Scope             // origin
	Name   string            // e.g. "tokenize", "left unchanged"
	Detail string            // optional detail message
	Extra  map[string]string // extensible key-value pairs
}

var seq atomic.Uint64

// NextSeq returns the next global sequence number.
func NextSeq() uint64 {
	return seq.Add(1)
}
