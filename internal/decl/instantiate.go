package decl

import "husk/internal/term"

// Instantiate returns a copy of d with generic symbols substituted.
func (d *CallFormDecl) Instantiate(t *term.Table, inst *term.Instantiation) *CallFormDecl {
	return d.substitute(t, inst.Subst())
}

// Implement returns a copy of d with the trait Self symbol replaced by selfTy.
func (d *CallFormDecl) Implement(t *term.Table, self, selfTy term.Term) *CallFormDecl {
	return d.substitute(t, term.Subst{self: selfTy})
}

func (d *CallFormDecl) substitute(t *term.Table, s term.Subst) *CallFormDecl {
	out := *d
	if len(s) == 0 {
		return &out
	}
	sub := func(x term.Term) term.Term { return t.Reduce(t.Substitute(x, s)) }
	out.ThisTy = sub(d.ThisTy)
	out.Params = make([]Param, len(d.Params))
	for i, p := range d.Params {
		p.Ty = sub(p.Ty)
		out.Params[i] = p
	}
	out.Variadic.Ty = sub(d.Variadic.Ty)
	out.Keyed = make([]Param, len(d.Keyed))
	for i, k := range d.Keyed {
		k.Ty = sub(k.Ty)
		out.Keyed[i] = k
	}
	out.Output = sub(d.Output)
	if d.This != nil {
		l := *d.This
		out.This = &l
	}
	// bound generics are no longer generic
	out.Generics = out.Generics[:0:0]
	for _, g := range d.Generics {
		if _, bound := s[g.Symbol]; !bound {
			out.Generics = append(out.Generics, g)
		}
	}
	return &out
}
