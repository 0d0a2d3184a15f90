// Package trace carries diagnostic events out of the formatter and the driver.
//
// The formatter itself is total: it never fails, it only degrades. Whatever it
// has to say about a degraded input (an unterminated tag, a script the delegate
// refused, a recovered panic) goes to a Tracer.
//
// # Levels
//
//   - LevelNone: nothing is emitted (default)
//   - LevelError: internal failures
//   - LevelWarn: inputs left unchanged, delegate fallbacks
//   - LevelInfo: per-file driver events
//   - LevelDebug: everything including token counts
//
// # Sinks
//
//   - Nop: zero-overhead sink used when tracing is disabled
//   - StreamTracer: writes through charmbracelet/log (text, json or logfmt)
//   - Recorder: keeps the last N events in memory, mostly for tests
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//	trace.Log(t, trace.LevelWarn, trace.ScopeFile, "left unchanged", path)
package trace
