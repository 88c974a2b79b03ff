package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"texdiag/internal/diag"
	"texdiag/internal/observ"
	"texdiag/internal/source"
	"texdiag/internal/state"
)

const mainTex = "\\documentclass{article}\n\\begin{document}\nText \\foo more\n\\end{document}\n"

const mainLog = "Latexmk: applying rule 'pdflatex'...\n" +
	"(./main.tex\n" +
	"! Undefined control sequence.\n" +
	"l.3 Text \\foo\n" +
	"\n" +
	")\n" +
	"Output written on main.pdf (1 page).\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func drain(ch chan Event) []Event {
	close(ch)
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestRootFor(t *testing.T) {
	if got := RootFor("/w/build/main.log", ""); got != "/w/build/main.tex" {
		t.Fatalf("got %q", got)
	}
	if got := RootFor("/w/build/main.log", "/w/thesis.tex"); got != "/w/thesis.tex" {
		t.Fatalf("got %q", got)
	}
}

func TestRunParsesAndPersists(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.tex"), mainTex)
	logPath := filepath.Join(dir, "main.log")
	writeFile(t, logPath, mainLog)
	upToDate := filepath.Join(dir, "again.log")
	writeFile(t, upToDate, "Latexmk: All targets (main.pdf) are up-to-date\n")

	st, err := state.OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	events := make(chan Event, 64)
	timer := observ.NewTimer()
	results, err := Run(context.Background(), []string{logPath}, RunOptions{
		Options: Options{Store: source.NewStore(0), State: st},
		Jobs:    2,
		Sink:    ChannelSink{Ch: events},
		Timer:   timer,
	})
	if err != nil {
		t.Fatal(err)
	}
	res := results[0]
	if res.Err != nil || res.Skipped || res.Restored {
		t.Fatalf("unexpected result %+v", res)
	}
	latex := res.Project.Collections()[0]
	got := latex.Get(filepath.Join(dir, "main.tex"))
	if len(got) != 1 {
		t.Fatalf("expected one diagnostic, got files %v", latex.Files())
	}
	want := diag.LineRange(3, 5, 9)
	if got[0].Range != want || got[0].Severity != diag.SevError || got[0].Source != "LaTeX" {
		t.Fatalf("unexpected diagnostic %+v", got[0])
	}
	if len(timer.Report().Phases) != 2 {
		t.Fatalf("expected read and parse phases, got %+v", timer.Report().Phases)
	}

	// a later no-op run republishes the persisted batch
	results, err = Run(context.Background(), []string{upToDate}, RunOptions{
		Options: Options{Root: filepath.Join(dir, "main.tex"), State: st},
		Sink:    ChannelSink{Ch: events},
	})
	if err != nil {
		t.Fatal(err)
	}
	res = results[0]
	if !res.Skipped || !res.Restored {
		t.Fatalf("expected restored skip, got %+v", res)
	}
	if again := res.Project.Collections()[0].Get(filepath.Join(dir, "main.tex")); len(again) != 1 || again[0].Range != want {
		t.Fatalf("republished diagnostics differ: %+v", again)
	}

	var done, skipped int
	for _, ev := range drain(events) {
		switch ev.Status {
		case StatusDone:
			if ev.Log != "" {
				done++
			}
		case StatusSkipped:
			skipped++
		}
	}
	if done != 1 || skipped != 1 {
		t.Fatalf("done=%d skipped=%d", done, skipped)
	}
}

func TestRunReportsMissingLog(t *testing.T) {
	events := make(chan Event, 16)
	results, err := Run(context.Background(), []string{filepath.Join(t.TempDir(), "nope.log")}, RunOptions{
		Sink: ChannelSink{Ch: events},
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err == nil || results[0].Project != nil {
		t.Fatalf("expected read error, got %+v", results[0])
	}
	var failed bool
	for _, ev := range drain(events) {
		if ev.Status == StatusError && ev.Stage == StageRead {
			failed = true
		}
	}
	if !failed {
		t.Fatal("expected an error event")
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "main.log")
	writeFile(t, logPath, mainLog)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, []string{logPath}, RunOptions{}); err == nil {
		t.Fatal("expected context error")
	}
}
