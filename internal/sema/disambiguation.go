package sema

import (
	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/entity"
	"husk/internal/hollow"
	"husk/internal/symbols"
	"husk/internal/term"
)

// Disambiguation records which reading of an ambiguous syntactic form the
// engine chose. Lowering switches on the concrete type and must not
// re-derive it.
type Disambiguation interface {
	disambiguation()
}

type TypePathMode uint8

const (
	TypePathOntology    TypePathMode = iota // the type itself, in sort position
	TypePathConstructor                     // the constructor value of the type
)

func (m TypePathMode) String() string {
	if m == TypePathConstructor {
		return "constructor"
	}
	return "ontology"
}

// TypePathDis is a path naming a type.
type TypePathDis struct {
	Path entity.Path
	Mode TypePathMode
	// Inst binds the type's generics for constructors.
	Inst *term.Instantiation
}

// EntityDis is a path naming a value: fugitive, static associated item or variant.
type EntityDis struct {
	Path entity.Path
	Decl *decl.CallFormDecl // nil for variants
	Inst *term.Instantiation
}

// TypeTermDis is an expression that only denotes a type: generic
// parameters and type-position syntax such as `Vec<i32>`.
type TypeTermDis struct {
	Ty term.Term
}

type ListMode uint8

const (
	ListType  ListMode = iota // `[]` applied to an element type
	ListValue                 // a list value
)

func (m ListMode) String() string {
	if m == ListType {
		return "type"
	}
	return "value"
}

type ListDis struct {
	Mode ListMode
}

type CallMode uint8

const (
	CallApplication CallMode = iota // one curried argument
	CallRitchie                     // every call-list item at once
)

func (m CallMode) String() string {
	if m == CallApplication {
		return "application"
	}
	return "ritchie"
}

type GroupKind uint8

const (
	GroupRegular GroupKind = iota
	GroupVariadic
	GroupKeyed
)

func (k GroupKind) String() string {
	switch k {
	case GroupVariadic:
		return "variadic"
	case GroupKeyed:
		return "keyed"
	default:
		return "regular"
	}
}

// ItemGroup binds call-list items to one parameter. Groups are kept in
// declaration order: regular parameters, the variadic run, keyed parameters.
type ItemGroup struct {
	Kind  GroupKind
	Param int // index among parameters of the same kind
	Ident string
	Args  []ast.ExprID
	// Default is set for a keyed parameter the call omitted.
	Default bool
	Liason  term.Liason
	Ty      term.Term // element type for the variadic group

	ty hollow.Local
}

// CallDis is `f(...)`: a curried application or a ritchie call.
type CallDis struct {
	Mode    CallMode
	Ritchie term.RitchieKind
	// Callee is set when the callee is a path; Decl when it has a declaration.
	Callee      entity.Path
	Constructor bool
	Decl        *decl.CallFormDecl
	Inst        *term.Instantiation
	Groups      []ItemGroup
}

// MethodDis is `x.m(...)`.
type MethodDis struct {
	Path   entity.Path
	This   term.Liason
	Decl   *decl.CallFormDecl // impl generics bound
	Inst   *term.Instantiation
	Groups []ItemGroup
}

type FieldMode uint8

const (
	FieldPropsStruct FieldMode = iota
	FieldMemoized
)

func (m FieldMode) String() string {
	if m == FieldMemoized {
		return "memoized"
	}
	return "props"
}

// FieldDis is `x.f`: a stored field or a memo.
type FieldDis struct {
	Mode  FieldMode
	Field *decl.Field // props only
	Index int
	// memoized only
	Path entity.Path
	Decl *decl.CallFormDecl
	Inst *term.Instantiation
}

type IndexMode uint8

const (
	IndexIndex IndexMode = iota
	IndexComposeWithList
)

func (m IndexMode) String() string {
	if m == IndexComposeWithList {
		return "compose"
	}
	return "index"
}

// IndexDis is `x[i]` or `T[]`.
type IndexDis struct {
	Mode IndexMode
}

// VariableDis is a reference to a region-local symbol.
type VariableDis struct {
	Ref symbols.VarRef
}

func (*TypePathDis) disambiguation() {}
func (*EntityDis) disambiguation()   {}
func (*TypeTermDis) disambiguation() {}
func (*ListDis) disambiguation()     {}
func (*CallDis) disambiguation()     {}
func (*MethodDis) disambiguation()   {}
func (*FieldDis) disambiguation()    {}
func (*IndexDis) disambiguation()    {}
func (*VariableDis) disambiguation() {}
