package symbols

import (
	"husk/internal/ast"
	"husk/internal/source"
)

// LocalKind classifies a region-local symbol.
type LocalKind uint8

const (
	LocalParam LocalKind = iota + 1
	LocalSelf
	LocalGeneric
	LocalLet
	LocalVar
)

func (k LocalKind) String() string {
	switch k {
	case LocalParam:
		return "param"
	case LocalSelf:
		return "self"
	case LocalGeneric:
		return "generic"
	case LocalLet:
		return "let"
	case LocalVar:
		return "var"
	default:
		return "?"
	}
}

// Local is one symbol of an expression region.
type Local struct {
	Ident source.StringID
	Kind  LocalKind
	Span  source.Span
	Mode  ast.ParamMode // params and self
	// Keyed/Variadic mark tail parameters.
	Keyed    bool
	Variadic bool
}

// Mutable reports whether the local may be assigned or mutated.
func (l *Local) Mutable() bool {
	switch l.Kind {
	case LocalVar:
		return true
	case LocalParam, LocalSelf:
		return l.Mode == ast.ParamMut || l.Mode == ast.ParamOwnMut
	}
	return false
}

// VarRef points to a local: inherited symbols come from the signature,
// current ones are introduced inside the body.
type VarRef struct {
	Inherited bool
	Index     int
}

// Region is the scope stack of one expression region. Inherited symbols
// are visible everywhere; current symbols follow block structure.
type Region struct {
	Inherited []Local
	Current   []Local
	visible   []int
	marks     []int
}

func NewRegion() *Region { return &Region{} }

// Inherit adds a signature symbol (parameter, self, generic).
func (r *Region) Inherit(l Local) VarRef {
	r.Inherited = append(r.Inherited, l)
	return VarRef{Inherited: true, Index: len(r.Inherited) - 1}
}

// Define introduces a let/var binding in the innermost block.
func (r *Region) Define(l Local) VarRef {
	r.Current = append(r.Current, l)
	idx := len(r.Current) - 1
	r.visible = append(r.visible, idx)
	return VarRef{Index: idx}
}

// Push opens a block scope.
func (r *Region) Push() { r.marks = append(r.marks, len(r.visible)) }

// Pop closes the innermost block scope. Locals stay addressable by VarRef.
func (r *Region) Pop() {
	n := len(r.marks)
	if n == 0 {
		return
	}
	r.visible = r.visible[:r.marks[n-1]]
	r.marks = r.marks[:n-1]
}

// Lookup finds ident, innermost current binding first.
func (r *Region) Lookup(ident source.StringID) (VarRef, bool) {
	for i := len(r.visible) - 1; i >= 0; i-- {
		idx := r.visible[i]
		if r.Current[idx].Ident == ident {
			return VarRef{Index: idx}, true
		}
	}
	for i := len(r.Inherited) - 1; i >= 0; i-- {
		if r.Inherited[i].Ident == ident {
			return VarRef{Inherited: true, Index: i}, true
		}
	}
	return VarRef{}, false
}

// Local returns the symbol behind ref.
func (r *Region) Local(ref VarRef) *Local {
	if ref.Inherited {
		return &r.Inherited[ref.Index]
	}
	return &r.Current[ref.Index]
}
