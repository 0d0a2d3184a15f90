package trace

import (
	"context"
	"time"
)

type tracerKey struct{}

type fileKey struct{}

// WithTracer stores t in ctx; a nil t is stored as Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithFile marks ctx as working on path. LogContext attaches it to every event.
func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, fileKey{}, path)
}

// FileFromContext returns the path set by WithFile.
func FileFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	path, _ := ctx.Value(fileKey{}).(string)
	return path
}

// LogContext is Log against the tracer in ctx, tagged with the current file.
func LogContext(ctx context.Context, sev Level, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Level().ShouldEmit(sev) {
		return
	}
	ev := &Event{Time: time.Now(), Level: sev, Scope: scope, Name: name, Detail: detail}
	if path := FileFromContext(ctx); path != "" {
		ev.Extra = map[string]string{"file": path}
	}
	t.Emit(ev)
}
