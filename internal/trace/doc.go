// Package trace records what the compiler pipeline is doing.
//
// Enable tracing via command-line flags:
//
//	wlbind check --trace=- --trace-level=detail protocols/
//
// Tracers:
//
//   - Nop: disabled tracing, zero overhead
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// Levels select scopes: phase shows driver and pass boundaries, detail adds
// per-document work, debug adds per-element events.
//
// Tracers travel through the pipeline inside a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "resolve", 0)
//	defer span.End("")
package trace
