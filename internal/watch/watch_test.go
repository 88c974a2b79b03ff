package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"texdiag/internal/runner"
	"texdiag/internal/source"
)

const errorLog = "Latexmk: applying rule 'pdflatex'...\n" +
	"! Undefined control sequence.\n" +
	"l.3 \\foo\n" +
	"\n" +
	"Output written on main.pdf (1 page).\n"

func waitUpdate(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestWatcherReparsesOnChange(t *testing.T) {
	// go-cache stops its janitor from a finalizer only
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))

	dir := t.TempDir()
	logPath := filepath.Join(dir, "main.log")
	if err := os.WriteFile(logPath, []byte(errorLog), 0o600); err != nil {
		t.Fatal(err)
	}

	updates := make(chan Update, 8)
	w, err := New([]string{logPath}, Options{
		Options:  runner.Options{Store: source.NewStore(0)},
		Debounce: 20 * time.Millisecond,
		OnUpdate: func(u Update) { updates <- u },
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	first := waitUpdate(t, updates)
	if first.Err != nil || first.Skipped || !first.Changed {
		t.Fatalf("unexpected initial update %+v", first)
	}
	if first.Project.Collections()[0].Len() != 1 {
		t.Fatal("expected one LaTeX diagnostic")
	}

	if err := os.WriteFile(logPath, []byte("Latexmk: All targets (main.pdf) are up-to-date\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	second := waitUpdate(t, updates)
	if !second.Skipped || second.Changed {
		t.Fatalf("expected unchanged skip, got %+v", second)
	}

	if err := os.WriteFile(logPath, []byte("Output written on main.pdf (1 page).\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	third := waitUpdate(t, updates)
	if third.Skipped || !third.Changed || third.Project.Collections()[0].Len() != 0 {
		t.Fatalf("expected cleared diagnostics, got %+v", third)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	w := &Watcher{
		entries: map[string]*entry{"/w/main.log": {log: "/w/main.log"}},
		pending: make(map[string]time.Time),
	}
	w.handle(fsnotifyEvent("/w/main.aux"))
	w.handle(fsnotifyEvent("/w/main.log"))
	if len(w.pending) != 1 {
		t.Fatalf("pending = %v", w.pending)
	}
	if got := w.settled(); len(got) != 1 || got[0] != "/w/main.log" {
		t.Fatalf("settled = %v", got)
	}
}
