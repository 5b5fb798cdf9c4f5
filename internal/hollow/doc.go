// Package hollow holds the per-session term region used by expression typing.
//
// A Region owns mutable hollow cells (holes and partially known composite
// types) together with the expectations registered while typing one
// expression region. Cells resolve monotonically to an ethereal term, a
// solid term, or Err; a region is owned by a single goroutine and discarded
// once its expression region is typed.
package hollow
