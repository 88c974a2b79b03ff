// Package trace provides the tracing subsystem of texdiag.
//
// Tracing records CLI runs, Parse passes and per-tool-family work so that a
// misdetected log (wrong trim window, unexpected skip) can be diagnosed
// without a debugger.
//
// # Usage
//
//	texdiag parse --trace=- --trace-level=detail build.log
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only error points
//   - LevelPhase: Driver runs and Parse passes
//   - LevelDetail: Trims, collaborators and publishes per tool family
//   - LevelDebug: Everything including single entries
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithLog(ctx, "build/main.log")
//
//	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")
//	defer span.End("")
//
// Spans started below a WithLog context carry the log path, so the output of
// concurrent runs can be told apart.
package trace
