// Package symbols builds the crate tree (one module per file) and resolves
// names: root identifiers inside a module, subentities of a path, and local
// variables inside one expression region.
//
// Lookup order for a root identifier is fixed: an unambiguous definition in
// the module, then a `use` import, then the prelude, then module names.
package symbols
