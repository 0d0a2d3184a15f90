package trace

import "sync"

// Recorder keeps the last N events in memory (circular buffer).
type Recorder struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
}

// NewRecorder creates a new Recorder with specified capacity.
func NewRecorder(capacity int, level Level) *Recorder {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Recorder{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
	}
}

// Emit adds an event to the ring buffer.
func (t *Recorder) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Level) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stored := *ev
	stored.Seq = NextSeq()
	t.events[t.head] = stored
	t.head = (t.head + 1) % t.capacity
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns a copy of all stored events in chronological order.
func (t *Recorder) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		result := make([]Event, t.head)
		copy(result, t.events[:t.head])
		return result
	}
	result := make([]Event, t.capacity)
	copy(result, t.events[t.head:])
	copy(result[t.capacity-t.head:], t.events[:t.head])
	return result
}

// Names returns the names of the stored events, oldest first.
func (t *Recorder) Names() []string {
	events := t.Snapshot()
	names := make([]string, len(events))
	for i := range events {
		names[i] = events[i].Name
	}
	return names
}

func (t *Recorder) Flush() error { return nil }
func (t *Recorder) Close() error { return nil }

// Level returns the current tracing level.
func (t *Recorder) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *Recorder) Enabled() bool {
	return t.level > LevelNone
}
