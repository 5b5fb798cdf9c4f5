// Package contract assigns binding obligations to typed expressions.
//
// Eager regions (fn bodies and keyed defaults) get one Contract per
// expression, pushed down from statement context. Lazy regions (gn and
// memo bodies) get one Qualifier per expression, built up from leaves.
// Both passes run on regions the type engine finished without errors
// and report misuse of bindings as 7xxx diagnostics.
package contract
