// Package watch re-parses build logs whenever the build rewrites them.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"texdiag/internal/diag"
	"texdiag/internal/runner"
	"texdiag/internal/trace"
)

// DefaultDebounce is how long a log must stay unchanged before it is parsed.
const DefaultDebounce = 300 * time.Millisecond

// Update reports the outcome of one parse.
type Update struct {
	Log     string
	Project *runner.Project
	Skipped bool
	// Changed is set when any collection differs from before the parse.
	Changed bool
	Err     error
}

// Options configures a Watcher.
type Options struct {
	runner.Options
	Debounce time.Duration
	// OnUpdate is called from the watcher goroutine after every parse.
	OnUpdate func(Update)
}

type entry struct {
	log     string
	project *runner.Project
}

// Watcher watches the directories of a set of logs. Editors and TeX
// engines replace files by rename, so directories are watched rather
// than the files themselves.
type Watcher struct {
	mu       sync.Mutex
	opts     Options
	debounce time.Duration
	entries  map[string]*entry
	pending  map[string]time.Time
}

// New creates a watcher for logs.
func New(logs []string, opts Options) (*Watcher, error) {
	w := &Watcher{
		opts:     opts,
		debounce: opts.Debounce,
		entries:  make(map[string]*entry, len(logs)),
		pending:  make(map[string]time.Time),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	for _, log := range logs {
		abs, err := filepath.Abs(log)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", log, err)
		}
		p := runner.NewProject(runner.RootFor(abs, opts.Root), opts.Options)
		if _, err := p.Restore(); err != nil {
			return nil, fmt.Errorf("restore %s: %w", log, err)
		}
		w.entries[abs] = &entry{log: abs, project: p}
	}
	return w, nil
}

// Run parses every existing log once, then re-parses logs as they change
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dirs := make(map[string]struct{})
	for path := range w.entries {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	for path := range w.entries {
		if _, err := os.Stat(path); err == nil {
			w.process(ctx, path)
		}
	}

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()
	tr := trace.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			trace.Error(tr, "watch", err.Error())
		case <-ticker.C:
			for _, path := range w.settled() {
				w.process(ctx, path)
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	path := filepath.Clean(ev.Name)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entries[path]; ok {
		w.pending[path] = time.Now()
	}
}

// settled returns logs untouched for the debounce window.
func (w *Watcher) settled() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	var out []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	return out
}

func (w *Watcher) process(ctx context.Context, path string) {
	e := w.entries[path]
	upd := Update{Log: e.log, Project: e.project}

	// #nosec G304 -- path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		upd.Err = fmt.Errorf("read log: %w", err)
		w.emit(upd)
		return
	}

	ctx, span := trace.Start(trace.WithLog(ctx, e.log), trace.ScopeDriver, "rebuild")
	cols := e.project.Collections()
	before := snapshots(cols)
	upd.Skipped, upd.Err = e.project.Parse(ctx, string(data))
	upd.Changed = !sameSnapshots(before, snapshots(cols))
	span.WithExtra("changed", strconv.FormatBool(upd.Changed)).End("")
	w.emit(upd)
}

func (w *Watcher) emit(u Update) {
	if w.opts.OnUpdate != nil {
		w.opts.OnUpdate(u)
	}
}

func snapshots(cols []*diag.Collection) []map[string][]diag.Diagnostic {
	out := make([]map[string][]diag.Diagnostic, len(cols))
	for i, c := range cols {
		out[i] = c.Snapshot()
	}
	return out
}

func sameSnapshots(a, b []map[string][]diag.Diagnostic) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for path, da := range a[i] {
			db, ok := b[i][path]
			if !ok || len(da) != len(db) {
				return false
			}
			for j := range da {
				if da[j] != db[j] {
					return false
				}
			}
		}
	}
	return true
}
