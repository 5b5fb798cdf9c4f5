// Package term holds ethereal terms: immutable, interned handles for fully
// resolved types and type-level values, shared by every inference session.
//
// Hollow (session-local) terms live in package hollow and resolve into the
// handles defined here. Solid is the small concrete value form used for
// constant generic arguments.
package term
