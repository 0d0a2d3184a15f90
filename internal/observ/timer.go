package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase names a step of a formatting run.
type Phase string

const (
	// PhaseCollect and PhaseRun are wall-clock phases of the whole run.
	PhaseCollect Phase = "collect"
	PhaseRun     Phase = "run"

	// PhaseRead, PhaseFormat, PhaseWrite and PhaseCache are summed over
	// files; with parallel jobs they can exceed PhaseRun.
	PhaseRead   Phase = "read"
	PhaseFormat Phase = "format"
	PhaseWrite  Phase = "write"
	PhaseCache  Phase = "cache"
)

type entry struct {
	phase Phase
	dur   time.Duration
	count int
	note  string
}

// Timer accumulates phase durations of one run. Safe for concurrent use;
// a nil Timer ignores every call.
type Timer struct {
	mu      sync.Mutex
	entries []entry
}

func NewTimer() *Timer { return &Timer{} }

// Start begins timing p and returns its stop function. The note passed to
// stop replaces the phase note.
func (t *Timer) Start(p Phase) func(note string) {
	if t == nil {
		return func(string) {}
	}
	begin := time.Now()
	return func(note string) {
		t.add(p, time.Since(begin), note)
	}
}

// Add charges d to p, e.g. the read time of one file.
func (t *Timer) Add(p Phase, d time.Duration) {
	if t == nil {
		return
	}
	t.add(p, d, "")
}

func (t *Timer) add(p Phase, d time.Duration, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		if e := &t.entries[i]; e.phase == p {
			e.dur += d
			e.count++
			if note != "" {
				e.note = note
			}
			return
		}
	}
	t.entries = append(t.entries, entry{phase: p, dur: d, count: 1, note: note})
}

// PhaseReport is one phase of a Report.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serializable form of a Timer, phases in first-seen order.
type Report struct {
	Phases []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	r := Report{Phases: make([]PhaseReport, len(t.entries))}
	for i, e := range t.entries {
		r.Phases[i] = PhaseReport{
			Name:       string(e.phase),
			DurationMS: float64(e.dur) / float64(time.Millisecond),
			Count:      e.count,
			Note:       e.note,
		}
	}
	return r
}

// Summary renders the report as the --timings table.
func (t *Timer) Summary() string {
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range t.Report().Phases {
		fmt.Fprintf(&b, "  %-8s %9.2f ms", p.Name, p.DurationMS)
		if p.Count > 1 {
			fmt.Fprintf(&b, "  x%d", p.Count)
		}
		if p.Note != "" {
			b.WriteString("  (" + p.Note + ")")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
