// Package query holds the memo tables behind every demand-driven
// computation of the checker (declarations, region inference, impl lists).
//
// A Memo computes each key at most once. Concurrent demand for a key that
// is being computed on another goroutine waits for that result. Demand that
// loops back to a key still being computed is a cycle and panics with
// *CycleError: it is a checker bug, never a user diagnostic.
package query
