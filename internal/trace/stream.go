package trace

import (
	"io"
	"sort"

	charmlog "github.com/charmbracelet/log"
)

// StreamTracer writes events immediately through a charm logger.
type StreamTracer struct {
	w      io.Writer
	closer io.Closer // set when the tracer opened w itself
	lg     *charmlog.Logger
	level  Level
}

// NewStreamTracer creates a new StreamTracer.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	lg := charmlog.NewWithOptions(w, charmlog.Options{
		Prefix: "erbfmt",
		Level:  level.charm(),
	})
	switch format {
	case FormatJSON:
		lg.SetFormatter(charmlog.JSONFormatter)
	case FormatLogfmt:
		lg.SetFormatter(charmlog.LogfmtFormatter)
	default:
		lg.SetFormatter(charmlog.TextFormatter)
	}
	return &StreamTracer{w: w, lg: lg, level: level}
}

// Emit writes an event to the output.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Level) {
		return
	}
	ev.Seq = NextSeq()

	kv := make([]any, 0, 4+2*len(ev.Extra))
	kv = append(kv, "scope", ev.Scope.String())
	if ev.Detail != "" {
		kv = append(kv, "detail", ev.Detail)
	}
	keys := make([]string, 0, len(ev.Extra))
	for k := range ev.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = append(kv, k, ev.Extra[k])
	}
	// the charm logger serializes writes itself
	t.lg.Log(ev.Level.charm(), ev.Name, kv...)
}

// Flush calls the writer's Flush method if it has one.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes the writer and closes it if New opened it.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// Level returns the current tracing level.
func (t *StreamTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *StreamTracer) Enabled() bool {
	return t.level > LevelNone
}
