package decl

import (
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/source"
	"husk/internal/term"
)

// FieldOf finds a struct field of ty and returns its type instantiated for ty.
func (db *DB) FieldOf(ty term.Term, ident source.StringID) (*Field, term.Term, bool) {
	head, args, ok := db.Terms.HeadPath(ty)
	if !ok || db.Reg().Kind(head) != entity.KindType {
		return nil, term.NoTerm, false
	}
	td, err := db.TypeDeclOf(head)
	if err != nil || td == nil {
		return nil, term.NoTerm, false
	}
	f, ok := td.Field(ident)
	if !ok {
		return nil, term.NoTerm, false
	}
	inst := &term.Instantiation{Symbols: symbolsOf(td.Generics), Args: args}
	return f, db.Terms.Instantiate(f.Ty, inst), true
}

// Method is an associated item resolved against a receiver type.
type Method struct {
	Path entity.Path
	// Decl has the impl generics bound unless the method came from
	// MethodOfHead; the method's own generics remain.
	Decl *CallFormDecl
	Impl *ImplBlockDecl
	Inst *term.Instantiation
}

// MethodOf finds the associated item ident of ty: type impls first, then trait impls.
func (db *DB) MethodOf(ty term.Term, ident source.StringID, span source.Span) (*Method, *diag.Error) {
	head, _, ok := db.Terms.HeadPath(ty)
	if !ok || db.Reg().Kind(head) != entity.KindType {
		return nil, diag.Original(diag.InferNoSuchMethod, span, "type `%s` has no method `%s`",
			db.Terms.Display(ty), db.Reg().Strings().MustLookup(ident))
	}
	m, err := db.MethodOfHead(head, ident, span)
	if err != nil {
		return nil, err
	}
	syms := symbolsOf(m.Impl.Generics)
	bound, ok := Match(db.Terms, m.Impl.Target, ty, syms)
	if !ok {
		return nil, diag.Original(diag.InferNoSuchMethod, span, "method `%s` exists for `%s`, not for `%s`",
			db.Reg().Strings().MustLookup(ident), db.Terms.Display(m.Impl.Target), db.Terms.Display(ty))
	}
	inst := &term.Instantiation{Symbols: syms, Args: make([]term.Term, len(syms))}
	for i, s := range syms {
		inst.Args[i] = bound[s]
	}
	m.Decl = m.Decl.Instantiate(db.Terms, inst)
	m.Inst = inst
	return m, nil
}

// MethodOfHead finds the associated item ident of the type head before any
// receiver is matched: Decl still mentions the impl generics and Inst is nil.
// Callers whose receiver arguments are not known yet bind the impl generics
// themselves.
func (db *DB) MethodOfHead(head entity.Path, ident source.StringID, span source.Span) (*Method, *diag.Error) {
	reg := db.Reg()
	name := reg.Strings().MustLookup(ident)
	if reg.Kind(head) != entity.KindType {
		return nil, diag.Original(diag.InferNoSuchMethod, span, "`%s` has no method `%s`", reg.Display(head), name)
	}
	sym, err := db.Crate.ResolveSubentity(head, ident, span)
	if err != nil {
		if err.Code == diag.PathUnresolvedSubentity {
			return nil, diag.Original(diag.InferNoSuchMethod, span, "type `%s` has no method `%s`", reg.Display(head), name)
		}
		return nil, err
	}
	if reg.Kind(sym.Path) != entity.KindAssocItem {
		return nil, diag.Original(diag.InferNoSuchMethod, span, "`%s` is not a method", reg.Display(sym.Path))
	}
	cf, err := db.CallForm(sym.Path)
	if err != nil {
		return nil, diag.Derived(err)
	}
	im, err := db.ImplOf(reg.Parent(sym.Path))
	if err != nil {
		return nil, diag.Derived(err)
	}
	return &Method{Path: sym.Path, Decl: cf, Impl: im}, nil
}

// Match unifies pattern against a concrete term, binding the given symbols.
func Match(t *term.Table, pattern, concrete term.Term, syms []term.Term) (term.Subst, bool) {
	bound := make(term.Subst, len(syms))
	free := make(map[term.Term]bool, len(syms))
	for _, s := range syms {
		free[s] = true
	}
	var walk func(p, c term.Term) bool
	walk = func(p, c term.Term) bool {
		if free[p] {
			if prev, ok := bound[p]; ok {
				return prev == c
			}
			bound[p] = c
			return true
		}
		if p == c {
			return true
		}
		pd, cd := t.Data(p), t.Data(c)
		if pd.Kind != term.KindApplication || cd.Kind != term.KindApplication {
			return false
		}
		return walk(pd.Func, cd.Func) && walk(pd.Arg, cd.Arg)
	}
	if pattern == term.NoTerm || concrete == term.NoTerm || !walk(pattern, concrete) {
		return nil, false
	}
	return bound, true
}

// TraitImplsOf lists the trait impl blocks of ty's head type.
func (db *DB) TraitImplsOf(ty term.Term) []entity.Path {
	head, _, ok := db.Terms.HeadPath(ty)
	if !ok {
		return nil
	}
	return db.Crate.TraitImplsOf(head)
}
