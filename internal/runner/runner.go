// Package runner parses build logs concurrently and reports progress.
package runner

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"texdiag/internal/observ"
	"texdiag/internal/trace"
)

// Result is the outcome for one log.
type Result struct {
	Log     string
	Project *Project
	Skipped bool
	// Restored is set when batches from a previous run were loaded.
	Restored bool
	Err      error
}

// RunOptions configures Run.
type RunOptions struct {
	Options
	Jobs  int
	Sink  ProgressSink
	Timer *observ.Timer
}

// Run parses every log in logs, at most Jobs at a time. A failing log does
// not stop the others; its error is stored in the Result. The returned
// error is non-nil only when ctx was cancelled.
func Run(ctx context.Context, logs []string, opts RunOptions) ([]Result, error) {
	sink := opts.Sink
	if sink == nil {
		sink = nopSink{}
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(logs))
	if len(logs) == 0 {
		return results, nil
	}
	for _, log := range logs {
		sink.OnEvent(Event{Log: log, Stage: StageRead, Status: StatusQueued})
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run")
	defer span.End("")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(logs)))
	for i, log := range logs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// индекс i уникален, мьютекс не нужен
			results[i] = runOne(gctx, log, opts.Options, sink, opts.Timer)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	sink.OnEvent(Event{Stage: StagePublish, Status: StatusDone})
	return results, nil
}

func runOne(ctx context.Context, log string, opts Options, sink ProgressSink, timer *observ.Timer) Result {
	res := Result{Log: log}
	ctx = trace.WithLog(ctx, log)
	started := time.Now()
	fail := func(stage Stage, err error) Result {
		res.Err = err
		trace.Error(trace.FromContext(ctx), "runner", fmt.Sprintf("%s: %v", log, err))
		sink.OnEvent(Event{Log: log, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return res
	}

	sink.OnEvent(Event{Log: log, Stage: StageRead, Status: StatusWorking})
	idx := timer.Begin("read " + log)
	// #nosec G304 -- path comes from the command line
	data, err := os.ReadFile(log)
	timer.End(idx, "")
	if err != nil {
		return fail(StageRead, fmt.Errorf("read log: %w", err))
	}

	p := NewProject(RootFor(log, opts.Root), opts)
	res.Project = p
	restored, err := p.Restore()
	if err != nil {
		// испорченный снимок не мешает разбору
		trace.Error(trace.FromContext(ctx), "state", err.Error())
	}
	res.Restored = restored

	sink.OnEvent(Event{Log: log, Stage: StageParse, Status: StatusWorking})
	idx = timer.Begin("parse " + log)
	skipped, err := p.Parse(ctx, string(data))
	note := ""
	if skipped {
		note = "skipped"
	}
	timer.End(idx, note)
	res.Skipped = skipped
	if err != nil {
		return fail(StagePublish, err)
	}

	status := StatusDone
	if skipped {
		status = StatusSkipped
	}
	sink.OnEvent(Event{Log: log, Stage: StagePublish, Status: status, Elapsed: time.Since(started)})
	return res
}
