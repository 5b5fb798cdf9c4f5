// Package diag defines the diagnostic model shared by every phase.
//
// Two layers live here. Diagnostic, Bag and Reporter are the user-facing
// records: a Bag has a hard cap, sorts deterministically and dedups.
// Error is the semantic layer: every memoized query stores either a value
// or an *Error, and each Error is marked Original (first observation of a
// problem) or Derived (resolution abandoned because an input already
// failed). Only Original errors become diagnostics, so one root cause
// yields one report no matter how many queries depend on it.
//
// Broken internal invariants are not errors at all: code panics with an
// *InternalError, which the driver recovers and prints as a crash.
//
// Rendering lives in internal/diagfmt.
package diag
