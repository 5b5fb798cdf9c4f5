package term

// Subst maps symbols and runes to replacement terms.
type Subst map[Term]Term

// Substitute replaces free symbol and rune occurrences. Atomic terms are returned unchanged.
func (t *Table) Substitute(id Term, s Subst) Term {
	if id == NoTerm || len(s) == 0 {
		return id
	}
	if r, ok := s[id]; ok {
		return r
	}
	d := t.Data(id)
	switch d.Kind {
	case KindCurry:
		p, r := t.Substitute(d.Param, s), t.Substitute(d.Return, s)
		if p == d.Param && r == d.Return {
			return id
		}
		return t.Curry(p, r)
	case KindRitchie:
		changed := false
		params := make([]RitchieParam, len(d.Params))
		for i, p := range d.Params {
			params[i] = p
			params[i].Ty = t.Substitute(p.Ty, s)
			changed = changed || params[i].Ty != p.Ty
		}
		ret := t.Substitute(d.Return, s)
		if !changed && ret == d.Return {
			return id
		}
		return t.Ritchie(d.Ritchie, params, ret)
	case KindApplication:
		f, a := t.Substitute(d.Func, s), t.Substitute(d.Arg, s)
		if f == d.Func && a == d.Arg {
			return id
		}
		return t.App(f, a)
	case KindTraitConstraint:
		return t.TraitConstraint(t.Substitute(d.Ty, s), t.Substitute(d.Trait, s))
	case KindTypeAsTraitItem:
		return t.TypeAsTraitItem(t.Substitute(d.Ty, s), t.Substitute(d.Trait, s), d.Ident)
	default:
		return id
	}
}

// Instantiation binds the generic symbols of one entity.
type Instantiation struct {
	Symbols []Term
	Args    []Term
}

// Subst returns the substitution described by inst.
func (inst *Instantiation) Subst() Subst {
	if inst == nil || len(inst.Symbols) == 0 {
		return nil
	}
	s := make(Subst, len(inst.Symbols))
	for i, sym := range inst.Symbols {
		if i < len(inst.Args) && inst.Args[i] != NoTerm {
			s[sym] = inst.Args[i]
		}
	}
	return s
}

// IsEmpty reports an instantiation with no bound arguments.
func (inst *Instantiation) IsEmpty() bool {
	return inst == nil || len(inst.Args) == 0
}

// Complete reports whether every symbol is bound.
func (inst *Instantiation) Complete() bool {
	if inst == nil {
		return true
	}
	for i := range inst.Symbols {
		if i >= len(inst.Args) || inst.Args[i] == NoTerm {
			return false
		}
	}
	return true
}

// Instantiate specializes the generic symbols of id.
func (t *Table) Instantiate(id Term, inst *Instantiation) Term {
	return t.Reduce(t.Substitute(id, inst.Subst()))
}

// Reduce normalises applications: a constructor-instance head applied to
// arguments becomes the type application of the ontology, and a curry type
// applied to an argument matching its parameter yields its return type.
// Atomic terms are already reduced.
func (t *Table) Reduce(id Term) Term {
	if id == NoTerm {
		return id
	}
	d := t.Data(id)
	switch d.Kind {
	case KindApplication:
		f := t.Reduce(d.Func)
		a := t.Reduce(d.Arg)
		fd := t.Data(f)
		if fd.Kind == KindEntityPath && fd.PathKind == PathTypeInstance {
			f = t.TypePath(fd.Path)
		}
		if fd.Kind == KindCurry && fd.Param == a {
			return fd.Return
		}
		if f == d.Func && a == d.Arg {
			return id
		}
		return t.App(f, a)
	case KindCurry:
		p, r := t.Reduce(d.Param), t.Reduce(d.Return)
		if p == d.Param && r == d.Return {
			return id
		}
		return t.Curry(p, r)
	case KindRitchie:
		changed := false
		params := make([]RitchieParam, len(d.Params))
		for i, p := range d.Params {
			params[i] = p
			params[i].Ty = t.Reduce(p.Ty)
			changed = changed || params[i].Ty != p.Ty
		}
		ret := t.Reduce(d.Return)
		if !changed && ret == d.Return {
			return id
		}
		return t.Ritchie(d.Ritchie, params, ret)
	default:
		return id
	}
}
