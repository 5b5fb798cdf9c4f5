package symbols

import (
	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/source"
)

// ResolveIdent resolves a root identifier used inside module.
func (c *Crate) ResolveIdent(module entity.Path, ident source.StringID, span source.Span) (Symbol, *diag.Error) {
	name := c.Builder.Name(ident)
	if m, ok := c.byPath[module]; ok {
		if defs := m.defs[ident]; len(defs) > 0 {
			if len(defs) == 1 {
				if p, ok := c.Reg.UnambiguousPath(defs[0]); ok {
					return Symbol{Kind: SymbolEntity, Path: p}, nil
				}
			}
			return Symbol{}, diag.Original(diag.PathAmbiguous, span,
				"`%s` is ambiguous: %d definitions in this module", name, len(defs))
		}
		if u, ok := m.uses[ident]; ok {
			if !u.ok {
				return Symbol{}, diag.DerivedAt(diag.PathUnresolvedUse, span, "import of `%s` failed", name)
			}
			sym := u.target
			sym.Via = u.span
			return sym, nil
		}
	}
	if p, ok := c.Builtin.Lookup(ident); ok {
		return Symbol{Kind: SymbolEntity, Path: p}, nil
	}
	if m, ok := c.byName[ident]; ok {
		return Symbol{Kind: SymbolModule, Path: m.Path}, nil
	}
	return Symbol{}, diag.Original(diag.PathUnresolvedRootIdent, span, "cannot find `%s` in this scope", name)
}

// ResolveSubentity resolves `parent::ident`: module members, type variants,
// associated items of a type's impls (type impls before trait impls) and trait members.
func (c *Crate) ResolveSubentity(parent entity.Path, ident source.StringID, span source.Span) (Symbol, *diag.Error) {
	parent = c.Reg.Base(parent)
	name := c.Builder.Name(ident)
	unresolved := func() (Symbol, *diag.Error) {
		return Symbol{}, diag.Original(diag.PathUnresolvedSubentity, span,
			"`%s` has no member `%s`", c.Reg.Display(parent), name)
	}
	pick := func(cands []entity.Path) (Symbol, *diag.Error, bool) {
		switch len(cands) {
		case 0:
			return Symbol{}, nil, false
		case 1:
			if p, ok := c.Reg.UnambiguousPath(cands[0]); ok {
				return Symbol{Kind: SymbolEntity, Path: p}, nil, true
			}
		}
		return Symbol{}, diag.Original(diag.PathAmbiguous, span,
			"`%s::%s` is ambiguous: %d candidates", c.Reg.Display(parent), name, len(cands)), true
	}

	switch c.Reg.Kind(parent) {
	case entity.KindModule:
		if parent == c.Builtin.Core {
			if p, ok := c.Builtin.Lookup(ident); ok {
				return Symbol{Kind: SymbolEntity, Path: p}, nil
			}
			return unresolved()
		}
		m, ok := c.byPath[parent]
		if !ok {
			return unresolved()
		}
		if sym, err, ok := pick(m.defs[ident]); ok {
			return sym, err
		}
	case entity.KindType:
		if sym, err, ok := pick(c.children[parent][ident]); ok {
			return sym, err
		}
		var own []entity.Path
		if b, ok := c.Builtin.ImplOf(parent); ok {
			own = append(own, c.children[b][ident]...)
		}
		for _, impl := range c.impls[parent] {
			own = append(own, c.children[impl][ident]...)
		}
		if sym, err, ok := pick(own); ok {
			return sym, err
		}
		var viaTraits []entity.Path
		for _, impl := range c.traits[parent] {
			viaTraits = append(viaTraits, c.children[impl][ident]...)
		}
		if sym, err, ok := pick(viaTraits); ok {
			return sym, err
		}
	case entity.KindTrait, entity.KindImplBlock:
		if sym, err, ok := pick(c.children[parent][ident]); ok {
			return sym, err
		}
	}
	return unresolved()
}

// ResolvePathExpr resolves an identifier, `a::b` path or generic application
// head appearing in module.
func (c *Crate) ResolvePathExpr(module entity.Path, expr ast.ExprID) (Symbol, *diag.Error) {
	exprs := c.Builder.Exprs
	e := exprs.Get(expr)
	if e == nil {
		panic(diag.Internalf("symbols: invalid expression %d", expr))
	}
	switch e.Kind {
	case ast.ExprIdent:
		id, _ := exprs.Ident(expr)
		return c.ResolveIdent(module, id.Name, e.Span)
	case ast.ExprPath:
		pd, _ := exprs.Path(expr)
		base, err := c.ResolvePathExpr(module, pd.Base)
		if err != nil {
			return Symbol{}, diag.Derived(err)
		}
		return c.ResolveSubentity(base.Path, pd.Name, pd.NameSpan)
	case ast.ExprGenericApp:
		ga, _ := exprs.GenericApp(expr)
		return c.ResolvePathExpr(module, ga.Base)
	}
	return Symbol{}, diag.Original(diag.TermExpectedType, e.Span, "expected a path")
}
