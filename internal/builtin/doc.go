// Package builtin is the static registry of root identifiers (primitive
// types, Vec, Option, the function trait family) and of signatures that have
// no syntax of their own: methods of builtin types and FFI functions.
package builtin
