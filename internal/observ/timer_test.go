package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	stop := tm.Start(PhaseCollect)
	stop("3 files")
	tm.Add(PhaseRead, 2*time.Millisecond)
	tm.Add(PhaseRead, 3*time.Millisecond)
	tm.Start(PhaseRun)("")

	report := tm.Report()
	if len(report.Phases) != 3 {
		t.Fatalf("want 3 phases, got %+v", report.Phases)
	}
	if p := report.Phases[0]; p.Name != "collect" || p.Note != "3 files" || p.Count != 1 {
		t.Fatalf("unexpected collect phase %+v", p)
	}
	if p := report.Phases[1]; p.Name != "read" || p.Count != 2 || p.DurationMS < 5 {
		t.Fatalf("unexpected read phase %+v", p)
	}
	summary := tm.Summary()
	for _, want := range []string{"timings:", "collect", "(3 files)", "read", "x2", "run"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Start(PhaseRun)("")
	tm.Add(PhaseRead, time.Second)
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer reported phases: %+v", r)
	}
	if s := tm.Summary(); s != "timings:\n" {
		t.Fatalf("nil summary %q", s)
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Add(PhaseFormat, time.Microsecond)
		}()
	}
	wg.Wait()
	phases := tm.Report().Phases
	if len(phases) != 1 || phases[0].Count != 16 {
		t.Fatalf("want one phase counted 16 times, got %+v", phases)
	}
}
