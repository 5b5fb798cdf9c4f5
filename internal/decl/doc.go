// Package decl resolves declarations: for an entity path it produces the
// signature shape (receiver liason, parameters, variadic and keyed tail,
// output and output liason, generics) from syntax or from a builtin template.
//
// Declarations are computed once per path and shared by pointer. Liasons are
// read as written; no inference happens here. Instantiate and Implement
// return new values and never modify a published declaration.
package decl
