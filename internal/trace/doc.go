// Package trace records where the checker spends its time.
//
// Spans nest driver > pass > region > node. A pass is one pipeline stage
// (parse, tree, decl, infer, contract, lower); a region is one inference
// session over a function, gn or memo body; node spans cover single
// expressions and are only emitted at LevelDebug.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "infer", 0)
//	defer span.End("")
//
// The stream tracer writes text or NDJSON as events happen; the ring tracer
// keeps the last N events so a crash report can include them.
package trace
