// Package trace records what the shader pipeline is doing.
//
// Enable tracing from the command line:
//
//	nuanceur build --trace=- --trace-level=shader shaders/*.toml
//
// # Tracers
//
//   - Nop: discards everything
//   - StreamTracer: writes each event as it arrives (file or stderr)
//   - RingTracer: keeps the last N events in memory for post-mortem dumps
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Every event carries a Scope. The Level decides which scopes are kept:
//
//	phase     driver, pass
//	shader    driver, pass, shader
//	debug     everything, including per-statement events
//
// LevelError records like shader but writes nothing while running; the
// ring is dumped only when a build fails.
//
// # Context propagation
//
// The tracer and the current span travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Begin(ctx, trace.ScopePass, "build")
//	defer span.End("")
package trace
