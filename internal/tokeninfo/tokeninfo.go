// Package tokeninfo projects typed regions onto source ranges for editors:
// what every name in a body refers to.
package tokeninfo

import (
	"cmp"
	"slices"
	"sort"

	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/entity"
	"husk/internal/sema"
	"husk/internal/source"
	"husk/internal/symbols"
	"husk/internal/term"
)

type Kind uint8

const (
	EntityReference Kind = iota
	CurrentSymbol
	InheritedSymbol
	Field
	Method
)

var kindNames = [...]string{
	EntityReference: "entity",
	CurrentSymbol:   "current",
	InheritedSymbol: "inherited",
	Field:           "field",
	Method:          "method",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Info describes one name occurrence. Path is set for entities, methods
// and memoized fields; Ref for symbols.
type Info struct {
	Span   source.Span
	Kind   Kind
	Ident  string
	Path   entity.Path
	Ref    symbols.VarRef
	Ty     term.Term
	Region sema.RegionKey
}

// Table holds infos sorted by position.
type Table struct {
	infos []Info
}

// Collect adds the names of res. Untyped names are skipped.
func (t *Table) Collect(db *decl.DB, res *sema.RegionResult) {
	exprs := db.Crate.Builder.Exprs
	strs := db.Reg().Strings()
	for id, info := range res.Exprs {
		if info.Dis == nil {
			continue
		}
		e := exprs.Get(id)
		in := Info{Span: e.Span, Ty: info.Ty, Region: res.Key}
		switch d := info.Dis.(type) {
		case *sema.VariableDis:
			in.Kind = CurrentSymbol
			if d.Ref.Inherited {
				in.Kind = InheritedSymbol
			}
			in.Ref = d.Ref
			in.Ident = strs.MustLookup(res.Locals.Local(d.Ref).Ident)
		case *sema.EntityDis:
			in.Kind, in.Path = EntityReference, d.Path
			in.Span, in.Ident = nameOf(exprs, id, e, db)
		case *sema.TypePathDis:
			in.Kind, in.Path = EntityReference, d.Path
			in.Span, in.Ident = nameOf(exprs, id, e, db)
		case *sema.FieldDis:
			f, ok := exprs.Field(id)
			if !ok {
				continue
			}
			in.Kind, in.Span, in.Ident = Field, f.NameSpan, strs.MustLookup(f.Name)
			if d.Mode == sema.FieldMemoized {
				in.Path = d.Path
			}
		case *sema.MethodDis:
			m, ok := exprs.MethodCall(id)
			if !ok {
				continue
			}
			in.Kind, in.Span, in.Ident, in.Path = Method, m.NameSpan, strs.MustLookup(m.Name), d.Path
			// the call's type is the result; the name denotes the method
			in.Ty = term.NoTerm
		default:
			continue
		}
		t.infos = append(t.infos, in)
	}
}

// nameOf narrows a path expression to its last segment.
func nameOf(exprs *ast.Exprs, id ast.ExprID, e *ast.Expr, db *decl.DB) (source.Span, string) {
	strs := db.Reg().Strings()
	switch e.Kind {
	case ast.ExprPath:
		if p, ok := exprs.Path(id); ok {
			return p.NameSpan, strs.MustLookup(p.Name)
		}
	case ast.ExprIdent:
		if p, ok := exprs.Ident(id); ok {
			return e.Span, strs.MustLookup(p.Name)
		}
	}
	return e.Span, ""
}

// Sort orders infos by file and start offset. Call it after the last Collect.
func (t *Table) Sort() {
	slices.SortFunc(t.infos, func(a, b Info) int {
		if c := cmp.Compare(a.Span.File, b.Span.File); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Span.End, b.Span.End)
	})
	t.infos = slices.CompactFunc(t.infos, func(a, b Info) bool { return a.Span == b.Span && a.Kind == b.Kind })
}

func (t *Table) All() []Info { return t.infos }
func (t *Table) Len() int    { return len(t.infos) }

// At finds the info whose range covers off in file. Name ranges never
// nest, so only the last info starting at or before off can match. The
// table must be sorted.
func (t *Table) At(file source.FileID, off uint32) (Info, bool) {
	i := sort.Search(len(t.infos), func(i int) bool {
		sp := t.infos[i].Span
		return sp.File > file || (sp.File == file && sp.Start > off)
	})
	if i == 0 {
		return Info{}, false
	}
	in := t.infos[i-1]
	if in.Span.File != file || off >= in.Span.End {
		return Info{}, false
	}
	return in, true
}
