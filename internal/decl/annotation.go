package decl

import (
	"husk/internal/ast"
	"husk/internal/builtin"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/source"
	"husk/internal/symbols"
	"husk/internal/term"
)

// Scope is the symbol context a type annotation is resolved in.
type Scope struct {
	Module   entity.Path
	Generics map[source.StringID]term.Term
	Self     term.Term // NoTerm outside impls and traits
}

// NewScope builds a scope with the given generics bound by name.
func NewScope(module entity.Path, generics []GenericParam, self term.Term) *Scope {
	sc := &Scope{Module: module, Generics: make(map[source.StringID]term.Term, len(generics)), Self: self}
	for _, g := range generics {
		sc.Generics[g.Ident] = g.Symbol
	}
	return sc
}

// Destination is what an annotation must denote.
type Destination uint8

const (
	DestAnyType   Destination = iota // a type or a sort
	DestValueType                    // a non-sort type: fields, params, outputs
)

// TypeTerm converts a type annotation into an ethereal term.
func (db *DB) TypeTerm(sc *Scope, expr ast.ExprID, dest Destination) (term.Term, *diag.Error) {
	t, err := db.typeTerm(sc, expr)
	if err != nil {
		return term.NoTerm, err
	}
	if dest == DestValueType && db.Terms.IsSort(t) {
		return term.NoTerm, diag.Original(diag.TermExpectFinalDestinationEqsNonSortTypePath,
			db.Crate.Builder.Exprs.Get(expr).Span, "expected a value type, found sort `%s`", db.Terms.Display(t))
	}
	return t, nil
}

func (db *DB) typeTerm(sc *Scope, expr ast.ExprID) (term.Term, *diag.Error) {
	exprs := db.Crate.Builder.Exprs
	e := exprs.Get(expr)
	tab := db.Terms
	switch e.Kind {
	case ast.ExprIdent:
		id, _ := exprs.Ident(expr)
		if sym, ok := sc.Generics[id.Name]; ok {
			return sym, nil
		}
		if sc.Self != term.NoTerm && db.Crate.Builder.Name(id.Name) == "Self" {
			return sc.Self, nil
		}
		return db.pathType(sc, expr, e.Span, nil)
	case ast.ExprPath:
		return db.pathType(sc, expr, e.Span, nil)
	case ast.ExprGenericApp:
		ga, _ := exprs.GenericApp(expr)
		args := make([]term.Term, 0, len(ga.Args))
		for _, a := range ga.Args {
			arg, err := db.genericArg(sc, a)
			if err != nil {
				return term.NoTerm, err
			}
			args = append(args, arg)
		}
		return db.pathType(sc, ga.Base, e.Span, args)
	case ast.ExprApply:
		// `[]T`
		ap, _ := exprs.Apply(expr)
		if exprs.Get(ap.Func).Kind != ast.ExprList {
			break
		}
		elem, err := db.TypeTerm(sc, ap.Arg, DestValueType)
		if err != nil {
			return term.NoTerm, err
		}
		return tab.VecOf(elem), nil
	case ast.ExprTuple:
		tu, _ := exprs.Tuple(expr)
		elems := make([]term.Term, 0, len(tu.Items))
		for _, it := range tu.Items {
			el, err := db.TypeTerm(sc, it, DestValueType)
			if err != nil {
				return term.NoTerm, err
			}
			elems = append(elems, el)
		}
		return tab.Tuple(elems...), nil
	case ast.ExprRitchieType:
		rt, _ := exprs.RitchieType(expr)
		params := make([]term.RitchieParam, 0, len(rt.Params))
		for _, p := range rt.Params {
			pt, err := db.TypeTerm(sc, p, DestValueType)
			if err != nil {
				return term.NoTerm, err
			}
			params = append(params, term.RitchieParam{Ty: pt})
		}
		ret := tab.Common().Unit
		if rt.Return.IsValid() {
			r, err := db.TypeTerm(sc, rt.Return, DestValueType)
			if err != nil {
				return term.NoTerm, err
			}
			ret = r
		}
		kind := map[ast.RitchieKind]term.RitchieKind{ast.RitchieFn: term.RitchieFn, ast.RitchieFnMut: term.RitchieFnMut, ast.RitchieGn: term.RitchieGn}[rt.Kind]
		return tab.Ritchie(kind, params, ret), nil
	case ast.ExprCurryType:
		ct, _ := exprs.CurryType(expr)
		p, err := db.TypeTerm(sc, ct.Param, DestAnyType)
		if err != nil {
			return term.NoTerm, err
		}
		r, err := db.TypeTerm(sc, ct.Return, DestAnyType)
		if err != nil {
			return term.NoTerm, err
		}
		return tab.Curry(p, r), nil
	}
	return term.NoTerm, diag.Original(diag.TermExpectedType, e.Span, "expected a type")
}

func (db *DB) genericArg(sc *Scope, expr ast.ExprID) (term.Term, *diag.Error) {
	exprs := db.Crate.Builder.Exprs
	if lit, ok := exprs.Lit(expr); ok {
		s, err := SolidOfLit(lit)
		if err != nil {
			return term.NoTerm, diag.Original(diag.TermExpectedType, exprs.Get(expr).Span, "%v", err)
		}
		return db.Terms.Ethereal(s), nil
	}
	return db.TypeTerm(sc, expr, DestAnyType)
}

// pathType resolves a path in type position and applies args.
func (db *DB) pathType(sc *Scope, expr ast.ExprID, span source.Span, args []term.Term) (term.Term, *diag.Error) {
	sym, err := db.Crate.ResolvePathExpr(sc.Module, expr)
	if err != nil {
		return term.NoTerm, err
	}
	reg := db.Reg()
	if sym.Kind != symbols.SymbolEntity {
		return term.NoTerm, diag.Original(diag.TermExpectedType, span, "module `%s` used as a type", reg.Display(sym.Path))
	}
	if ri, ok := db.Crate.Builtin.Root(sym.Path); ok && ri == builtin.RootType {
		if len(args) > 0 {
			return term.NoTerm, diag.Original(diag.TermGenericArity, span, "`Type` takes no generic arguments")
		}
		return db.Terms.Common().Type, nil
	}
	switch reg.Kind(sym.Path) {
	case entity.KindType:
		want := db.genericCount(sym.Path)
		if len(args) != want {
			return term.NoTerm, diag.Original(diag.TermGenericArity, span,
				"`%s` expects %d generic arguments, found %d", reg.Display(sym.Path), want, len(args))
		}
		return db.Terms.Apply(db.Terms.TypePath(sym.Path), args...), nil
	case entity.KindTrait:
		return db.Terms.Apply(db.Terms.EntityPath(sym.Path, term.PathTrait), args...), nil
	}
	return term.NoTerm, diag.Original(diag.TermExpectedType, span,
		"expected a type, found %s `%s`", reg.Kind(sym.Path), reg.Display(sym.Path))
}

// genericCount is the number of generic parameters of a type path.
func (db *DB) genericCount(p entity.Path) int {
	if ri, ok := db.Crate.Builtin.Root(p); ok {
		return len(ri.Generics())
	}
	node, ok := db.Crate.Node(p)
	if !ok {
		return 0
	}
	items := db.Crate.Builder.Items
	if s, ok := items.Struct(node.Item); ok {
		return len(s.Generics)
	}
	if e, ok := items.Enum(node.Item); ok {
		return len(e.Generics)
	}
	return 0
}
