package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer is the main interface for emitting trace events.
type Tracer interface {
	// Emit records a trace event. Must be goroutine-safe.
	Emit(ev *Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Level returns the current tracing level.
	Level() Level

	// Enabled returns true if tracing is active (Level > LevelNone).
	Enabled() bool
}

// Format selects the stream sink encoding.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatLogfmt
)

// String returns the string representation of Format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatLogfmt:
		return "logfmt"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "logfmt":
		return FormatLogfmt, nil
	default:
		return FormatText, fmt.Errorf("invalid log format: %q (expected: text|json|logfmt)", s)
	}
}

// Config holds tracer configuration.
type Config struct {
	Level      Level     // tracing level
	Format     Format    // output encoding
	Output     io.Writer // if nil, use OutputPath
	OutputPath string    // file path ("-" or empty for stderr)
}

// New creates a Tracer based on Config.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelNone {
		return Nop, nil
	}
	w, owned, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	st := NewStreamTracer(w, cfg.Level, cfg.Format)
	if owned {
		st.closer, _ = w.(io.Closer)
	}
	return st, nil
}

// openOutput opens the output writer from config. owned is set only for a
// file opened here; caller-supplied writers and stderr are never closed.
func openOutput(cfg Config) (w io.Writer, owned bool, err error) {
	if cfg.Output != nil {
		return cfg.Output, false, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, false, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log output: %w", err)
	}
	return f, true, nil
}

// Log emits a point event when t accepts the given severity.
func Log(t Tracer, sev Level, scope Scope, name, detail string) {
	if t == nil || !t.Level().ShouldEmit(sev) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Level:  sev,
		Scope:  scope,
		Name:   name,
		Detail: detail,
	})
}
