package ui

import (
	"strings"
	"testing"

	"erbfmt/internal/driver"
)

func TestProgressModelAppliesEvents(t *testing.T) {
	files := []string{"a.html.erb", "b.html.erb"}
	m := NewProgressModel("fmt", files, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "a.html.erb", Stage: driver.StageFormat, Status: driver.StatusWorking})
	if m.items[0].status != "formatting" {
		t.Fatalf("working status\nwant %q\ngot  %q", "formatting", m.items[0].status)
	}
	m.applyEvent(driver.Event{File: "a.html.erb", Stage: driver.StageFormat, Status: driver.StatusDone, Changed: true})
	m.applyEvent(driver.Event{File: "b.html.erb", Stage: driver.StageRead, Status: driver.StatusError})
	m.applyEvent(driver.Event{File: "unknown.erb", Status: driver.StatusDone})

	if m.changed != 1 || m.failed != 1 {
		t.Fatalf("counters: changed=%d failed=%d", m.changed, m.failed)
	}
	view := m.View()
	for _, want := range []string{"fmt (2 files, 1 changed, 1 failed)", "changed", "error", "a.html.erb"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModelDone(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("check", []string{"a.erb"}, events).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("closed channel should yield doneMsg, got %T", msg)
	}
	m.Update(msg)
	if !m.done || !strings.Contains(m.View(), "done: check") {
		t.Fatalf("model not finished:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("app/views/users/index.html.erb", 12); got != "app/views..." {
		t.Fatalf("truncate\nwant %q\ngot  %q", "app/views...", got)
	}
	if got := truncate("short", 0); got != "short" {
		t.Fatalf("zero width must not truncate, got %q", got)
	}
}
