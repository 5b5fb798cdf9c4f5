package decl

import (
	"husk/internal/ast"
	"husk/internal/entity"
	"husk/internal/source"
	"husk/internal/term"
)

// OutputLiason says how a call hands its result back.
type OutputLiason uint8

const (
	OutputTransfer     OutputLiason = iota // owned result
	OutputMemberAccess                     // borrowed from the receiver
)

func (l OutputLiason) String() string {
	if l == OutputMemberAccess {
		return "member-access"
	}
	return "transfer"
}

// FieldLiason is the storage mode of a struct field.
type FieldLiason uint8

const (
	FieldOwn FieldLiason = iota
	FieldGlobalRef
	FieldLazyOwn
)

func (l FieldLiason) String() string {
	switch l {
	case FieldGlobalRef:
		return "global-ref"
	case FieldLazyOwn:
		return "lazy"
	default:
		return "own"
	}
}

// Decl is the resolved shape of one entity.
type Decl interface {
	Path() entity.Path
	decl()
}

// GenericParam is a type or constant generic parameter.
type GenericParam struct {
	Ident  source.StringID
	Span   source.Span
	Symbol term.Term
	Const  bool
}

// Param is one regular or keyed parameter.
type Param struct {
	Ident   source.StringID
	Span    source.Span
	Ty      term.Term
	Liason  term.Liason
	Default ast.ExprID // keyed params only
}

type VariadicKind uint8

const (
	VariadicNone VariadicKind = iota
	VariadicSingleTyped
)

// Variadic is the template for trailing arguments packed into one Vec.
type Variadic struct {
	Kind   VariadicKind
	Ident  source.StringID
	Span   source.Span
	Ty     term.Term
	Liason term.Liason
}

// CallFormDecl is the declaration of fn, gn, method, memo and static entities.
type CallFormDecl struct {
	path   entity.Path
	Module entity.Path
	Owner  entity.Path // impl block or trait for members
	Item   ast.ItemID  // NoItemID for static declarations

	Static bool
	Lazy   bool
	Memo   bool

	This     *term.Liason
	ThisTy   term.Term
	Params   []Param
	Variadic Variadic
	Keyed    []Param

	Output       term.Term
	OutputLiason OutputLiason

	// Generics are the owner's generics followed by the entity's own.
	Generics []GenericParam
	Body     ast.ExprID
}

func (d *CallFormDecl) Path() entity.Path { return d.path }
func (*CallFormDecl) decl()               {}

// Nargs counts the receiver and regular parameters; tail parameters are grouped separately.
func (d *CallFormDecl) Nargs() int {
	n := len(d.Params)
	if d.This != nil {
		n++
	}
	return n
}

// Symbols lists the generic symbols in order.
func (d *CallFormDecl) Symbols() []term.Term {
	out := make([]term.Term, len(d.Generics))
	for i, g := range d.Generics {
		out[i] = g.Symbol
	}
	return out
}

// KeyedIndex finds a keyed parameter by name.
func (d *CallFormDecl) KeyedIndex(ident source.StringID) int {
	for i, k := range d.Keyed {
		if k.Ident == ident {
			return i
		}
	}
	return -1
}

// RitchieType is the call type of d without its receiver.
func (d *CallFormDecl) RitchieType(t *term.Table) term.Term {
	params := make([]term.RitchieParam, 0, len(d.Params)+len(d.Keyed)+1)
	for _, p := range d.Params {
		params = append(params, term.RitchieParam{Liason: p.Liason, Ty: p.Ty})
	}
	if d.Variadic.Kind == VariadicSingleTyped {
		params = append(params, term.RitchieParam{Kind: term.ParamVariadic, Liason: d.Variadic.Liason, Ty: d.Variadic.Ty})
	}
	for _, k := range d.Keyed {
		params = append(params, term.RitchieParam{Kind: term.ParamKeyed, Liason: k.Liason, Ty: k.Ty, Ident: k.Ident})
	}
	kind := term.RitchieFn
	if d.Lazy {
		kind = term.RitchieGn
	}
	out := d.Output
	if out == term.NoTerm {
		out = t.Common().Unit
	}
	return t.Ritchie(kind, params, out)
}

// TypeKind distinguishes struct, enum and builtin types.
type TypeKind uint8

const (
	TypeStruct TypeKind = iota + 1
	TypeEnum
	TypeBuiltin
)

// Field is one struct field.
type Field struct {
	Ident  source.StringID
	Span   source.Span
	Ty     term.Term
	Liason FieldLiason
}

// TypeDecl is the declaration of a struct, enum or builtin type.
type TypeDecl struct {
	path     entity.Path
	Module   entity.Path
	Kind     TypeKind
	Generics []GenericParam
	Fields   []Field
	Variants []source.StringID
}

func (d *TypeDecl) Path() entity.Path { return d.path }
func (*TypeDecl) decl()               {}

// Field finds a field by name.
func (d *TypeDecl) Field(ident source.StringID) (*Field, bool) {
	for i := range d.Fields {
		if d.Fields[i].Ident == ident {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// TraitDecl is the declaration of a trait.
type TraitDecl struct {
	path     entity.Path
	Module   entity.Path
	Generics []GenericParam
	Self     term.Term // the symbol standing for the implementing type
}

func (d *TraitDecl) Path() entity.Path { return d.path }
func (*TraitDecl) decl()               {}

// ImplBlockDecl is the declaration of `impl T` or `impl Trait for T`.
type ImplBlockDecl struct {
	path       entity.Path
	Module     entity.Path
	Generics   []GenericParam
	Target     term.Term // pattern over Generics
	TargetPath entity.Path
	Trait      term.Term
	TraitPath  entity.Path
}

func (d *ImplBlockDecl) Path() entity.Path { return d.path }
func (*ImplBlockDecl) decl()               {}

// VariantDecl is an enum variant.
type VariantDecl struct {
	path   entity.Path
	Parent entity.Path
	Index  int
}

func (d *VariantDecl) Path() entity.Path { return d.path }
func (*VariantDecl) decl()               {}

func symbolsOf(gs []GenericParam) []term.Term {
	out := make([]term.Term, len(gs))
	for i, g := range gs {
		out[i] = g.Symbol
	}
	return out
}
