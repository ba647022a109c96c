// Package trace records span events of a modlink compilation.
//
// A compilation opens one ScopeDriver span, a ScopePass span per phase
// (load, symbols, check) and a ScopeModule span per checked module:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	sp := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "check", parent)
//	defer sp.End("")
//
// The level decides which scopes reach the tracer: phase keeps driver and
// pass spans, detail adds modules, debug adds point events.
package trace
