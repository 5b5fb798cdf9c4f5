package builtin

import "husk/internal/term"

// StaticParam is one parameter of a static template; Ty is type text.
type StaticParam struct {
	Ident   string
	Liason  term.Liason
	Ty      string
	Default string // keyed params only
}

// StaticFn is a signature registered without syntax. Type annotations are
// kept as text and resolved against the prelude by the declaration resolver.
type StaticFn struct {
	Owner     RootIdent // numRoots for free functions
	Name      string
	This      *term.Liason
	Params    []StaticParam
	Variadic  *StaticParam
	Keyed     []StaticParam
	Output    string
	OutputRef bool
	Lazy      bool
}

func (f *StaticFn) IsMethod() bool { return f.This != nil }

func liason(l term.Liason) *term.Liason { return &l }

var templates = []StaticFn{
	{Owner: RootVec, Name: "new", Output: "Vec<T>"},
	{Owner: RootVec, Name: "len", This: liason(term.LiasonPure), Output: "i32"},
	{Owner: RootVec, Name: "is_empty", This: liason(term.LiasonPure), Output: "bool"},
	{Owner: RootVec, Name: "push", This: liason(term.LiasonMut), Params: []StaticParam{{Ident: "x", Liason: term.LiasonMove, Ty: "T"}}, Output: "()"},
	{Owner: RootVec, Name: "pop", This: liason(term.LiasonMut), Output: "Option<T>"},
	{Owner: RootVec, Name: "first", This: liason(term.LiasonPure), Output: "T", OutputRef: true},
	{Owner: RootVec, Name: "get", This: liason(term.LiasonPure), Params: []StaticParam{{Ident: "i", Ty: "i32"}}, Output: "T", OutputRef: true},
	{Owner: RootOption, Name: "is_some", This: liason(term.LiasonPure), Output: "bool"},
	{Owner: RootOption, Name: "is_none", This: liason(term.LiasonPure), Output: "bool"},
	{Owner: RootOption, Name: "unwrap", This: liason(term.LiasonMove), Output: "T"},
	{Owner: RootI32, Name: "abs", This: liason(term.LiasonPure), Output: "i32"},
	{Owner: RootI32, Name: "to_f64", This: liason(term.LiasonPure), Output: "f64"},
	{Owner: RootI64, Name: "abs", This: liason(term.LiasonPure), Output: "i64"},
	{Owner: RootF64, Name: "sqrt", This: liason(term.LiasonPure), Output: "f64"},
	{Owner: RootStr, Name: "len", This: liason(term.LiasonPure), Output: "i32"},
	{
		Owner:    numRoots,
		Name:     "print",
		Variadic: &StaticParam{Ident: "xs", Ty: "str"},
		Keyed:    []StaticParam{{Ident: "sep", Ty: "str", Default: `" "`}},
		Output:   "()",
	},
	{Owner: numRoots, Name: "abs", Params: []StaticParam{{Ident: "x", Ty: "i32"}}, Output: "i32"},
	{Owner: numRoots, Name: "max", Params: []StaticParam{{Ident: "a", Ty: "i32"}, {Ident: "b", Ty: "i32"}}, Output: "i32"},
	{Owner: numRoots, Name: "sum", Params: []StaticParam{{Ident: "xs", Ty: "[]i32"}}, Output: "i32", Lazy: true},
}
