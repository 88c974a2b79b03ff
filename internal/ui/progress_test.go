package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"texdiag/internal/runner"
)

func TestProgressModelAppliesEvents(t *testing.T) {
	events := make(chan runner.Event)
	m := NewProgressModel("texdiag", []string{"a.log", "b.log"}, events).(*progressModel)

	m.Update(eventMsg(runner.Event{Log: "a.log", Stage: runner.StageParse, Status: runner.StatusWorking}))
	if m.items[0].status != "parsing" {
		t.Fatalf("status = %q", m.items[0].status)
	}
	m.Update(eventMsg(runner.Event{Log: "a.log", Stage: runner.StagePublish, Status: runner.StatusSkipped}))
	m.Update(eventMsg(runner.Event{Log: "b.log", Stage: runner.StageRead, Status: runner.StatusError, Err: errors.New("no such file")}))
	m.Update(eventMsg(runner.Event{Log: "unknown.log", Status: runner.StatusDone}))

	if got := m.percent(); got != 1.0 {
		t.Fatalf("percent = %v", got)
	}
	view := m.View()
	for _, want := range []string{"skipped", "error", "b.log: no such file"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatal("expected quit after the event stream closes")
	}
	if !strings.Contains(m.View(), "done: texdiag") {
		t.Fatal("expected done header")
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("日本語", 10)
	if got := truncate(long, 12); runewidth.StringWidth(got) > 12 {
		t.Fatalf("truncated %q is wider than 12 columns", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
