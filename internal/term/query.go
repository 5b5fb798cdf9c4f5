package term

import "husk/internal/entity"

// Head splits an application chain into its head and arguments.
func (t *Table) Head(id Term) (Term, []Term) {
	var args []Term
	for t.Kind(id) == KindApplication {
		d := t.Data(id)
		args = append(args, d.Arg)
		id = d.Func
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return id, args
}

// HeadPath returns the entity path at the head of a type application.
func (t *Table) HeadPath(id Term) (entity.Path, []Term, bool) {
	head, args := t.Head(id)
	if t.Kind(head) != KindEntityPath {
		return entity.NoPath, nil, false
	}
	return t.Data(head).Path, args, true
}

// ElemOf returns T for Vec<T>.
func (t *Table) ElemOf(container Term) (Term, bool) {
	p, args, ok := t.HeadPath(container)
	if !ok || p != t.prims.Vec || len(args) != 1 {
		return NoTerm, false
	}
	return args[0], true
}

// OptionElem returns T for Option<T>.
func (t *Table) OptionElem(opt Term) (Term, bool) {
	p, args, ok := t.HeadPath(opt)
	if !ok || p != t.prims.Option || len(args) != 1 {
		return NoTerm, false
	}
	return args[0], true
}

func (t *Table) IsIntType(id Term) bool {
	return id == t.common.I32 || id == t.common.I64
}

func (t *Table) IsFloatType(id Term) bool {
	return id == t.common.F32 || id == t.common.F64
}

func (t *Table) IsNumeric(id Term) bool { return t.IsIntType(id) || t.IsFloatType(id) }

// IsSort reports categories, i.e. terms whose inhabitants are types.
func (t *Table) IsSort(id Term) bool { return t.Kind(id) == KindCategory }

// IsFunctionType reports curry and ritchie terms.
func (t *Table) IsFunctionType(id Term) bool {
	k := t.Kind(id)
	return k == KindCurry || k == KindRitchie
}

// HasFreeSymbols reports whether id mentions a symbol or rune.
func (t *Table) HasFreeSymbols(id Term) bool {
	found := false
	t.walk(id, func(x Term, d *Data) bool {
		if d.Kind == KindSymbol || d.Kind == KindRune {
			found = true
		}
		return !found
	})
	return found
}

func (t *Table) walk(id Term, visit func(Term, *Data) bool) {
	if id == NoTerm {
		return
	}
	d := t.Data(id)
	if !visit(id, &d) {
		return
	}
	switch d.Kind {
	case KindCurry:
		t.walk(d.Param, visit)
		t.walk(d.Return, visit)
	case KindRitchie:
		for _, p := range d.Params {
			t.walk(p.Ty, visit)
		}
		t.walk(d.Return, visit)
	case KindApplication:
		t.walk(d.Func, visit)
		t.walk(d.Arg, visit)
	case KindTraitConstraint, KindTypeAsTraitItem:
		t.walk(d.Ty, visit)
		t.walk(d.Trait, visit)
	case KindSymbol:
		t.walk(d.Ty, visit)
	}
}
