package hollow

import (
	"husk/internal/entity"
	"husk/internal/source"
	"husk/internal/term"
)

// shallow follows filled holes and replaces resolved cells by their result.
func (r *Region) shallow(l Local) Local {
	for l.kind == localHollow {
		c := r.cell(l)
		switch c.progress.Kind {
		case ResolvedEthereal:
			return Ethereal(c.progress.Ethereal)
		case ResolvedErr:
			return Err
		case ResolvedSolid:
			return l
		}
		if c.data.Kind != DataHole || !c.filled {
			return l
		}
		l = c.fill
	}
	return l
}

// openHole reports whether l is a hole nothing has filled yet.
func (r *Region) openHole(l Local) (*cell, bool) {
	if l.kind != localHollow {
		return nil, false
	}
	c := r.cell(l)
	return c, c.data.Kind == DataHole && !c.filled
}

// Unify makes a and b equal by filling holes. It reports false on a
// structural mismatch; holes filled before the mismatch stay filled.
// Unifying with Err poisons the open holes on the other side.
func (r *Region) Unify(a, b Local) bool {
	a, b = r.shallow(a), r.shallow(b)
	switch {
	case !a.IsValid() || !b.IsValid():
		return false
	case a.IsErr() || b.IsErr():
		r.Poison(a)
		r.Poison(b)
		return true
	case a == b:
		return true
	}
	if c, ok := r.openHole(a); ok {
		return r.bind(a, c, b)
	}
	if c, ok := r.openHole(b); ok {
		return r.bind(b, c, a)
	}
	if at, ok := a.Term(); ok {
		if bt, ok := b.Term(); ok {
			return r.terms.Reduce(at) == r.terms.Reduce(bt)
		}
	}
	sa, ok1 := r.shapeOf(a)
	sb, ok2 := r.shapeOf(b)
	if !ok1 || !ok2 || sa.Kind != sb.Kind {
		return false
	}
	switch sa.Kind {
	case DataTypeOntology:
		if sa.Path != sb.Path || len(sa.Args) != len(sb.Args) {
			return false
		}
		for i := range sa.Args {
			if !r.Unify(sa.Args[i], sb.Args[i]) {
				return false
			}
		}
		return true
	case DataCurry:
		return r.Unify(sa.Param, sb.Param) && r.Unify(sa.Return, sb.Return)
	case DataRitchie:
		if sa.Ritchie != sb.Ritchie || len(sa.Params) != len(sb.Params) {
			return false
		}
		for i := range sa.Params {
			pa, pb := sa.Params[i], sb.Params[i]
			if pa.Kind != pb.Kind || pa.Liason != pb.Liason || pa.Ident != pb.Ident || !r.Unify(pa.Ty, pb.Ty) {
				return false
			}
		}
		return r.Unify(sa.Return, sb.Return)
	}
	return false
}

// bind fills the open hole h (cell c) with other, honouring literal kinds.
func (r *Region) bind(h Local, c *cell, other Local) bool {
	switch c.data.Hole {
	case HoleInt, HoleFloat:
		if oc, ok := r.openHole(other); ok {
			switch oc.data.Hole {
			case HoleType, HoleImplicit:
				r.FillHole(other, h)
				return true
			case c.data.Hole:
				r.FillHole(h, other)
				return true
			}
			return false
		}
		t, ok := other.Term()
		if !ok {
			return false
		}
		if c.data.Hole == HoleInt && !r.terms.IsIntType(t) || c.data.Hole == HoleFloat && !r.terms.IsFloatType(t) {
			return false
		}
	default:
		if r.occurs(h, other) {
			return false
		}
	}
	r.FillHole(h, other)
	return true
}

func (r *Region) occurs(h, l Local) bool {
	l = r.shallow(l)
	if l.kind != localHollow {
		return false
	}
	if l == h {
		return true
	}
	for _, ch := range r.childLocals(r.cell(l).data) {
		if r.occurs(h, ch) {
			return true
		}
	}
	return false
}

func (r *Region) childLocals(d Data) []Local {
	switch d.Kind {
	case DataTypeOntology:
		return d.Args
	case DataCurry:
		return []Local{d.Param, d.Return}
	case DataRitchie:
		out := make([]Local, 0, len(d.Params)+1)
		for _, p := range d.Params {
			out = append(out, p.Ty)
		}
		return append(out, d.Return)
	}
	return nil
}

// Poison resolves every open hole reachable from l to Err.
func (r *Region) Poison(l Local) {
	l = r.shallow(l)
	if l.kind != localHollow {
		return
	}
	if _, ok := r.openHole(l); ok {
		r.FillHole(l, Err)
		return
	}
	for _, ch := range r.childLocals(r.cell(l).data) {
		r.Poison(ch)
	}
}

// Shape is the structural view of an ethereal or composite hollow term.
type Shape struct {
	Kind    DataKind
	Path    entity.Path
	Args    []Local
	Param   Local
	Return  Local
	Ritchie term.RitchieKind
	Params  []Param
}

// ShapeOf views l structurally after following filled holes.
func (r *Region) ShapeOf(l Local) (Shape, bool) { return r.shapeOf(r.shallow(l)) }

func (r *Region) shapeOf(l Local) (Shape, bool) {
	if t, ok := l.Term(); ok {
		tab := r.terms
		if p, args, ok := ontologyHead(tab, t); ok {
			ls := make([]Local, len(args))
			for i, a := range args {
				ls[i] = Ethereal(a)
			}
			return Shape{Kind: DataTypeOntology, Path: p, Args: ls}, true
		}
		d := tab.Data(t)
		switch d.Kind {
		case term.KindCurry:
			return Shape{Kind: DataCurry, Param: Ethereal(d.Param), Return: Ethereal(d.Return)}, true
		case term.KindRitchie:
			ps := make([]Param, len(d.Params))
			for i, p := range d.Params {
				ps[i] = Param{Kind: p.Kind, Liason: p.Liason, Ty: Ethereal(p.Ty), Ident: p.Ident}
			}
			return Shape{Kind: DataRitchie, Ritchie: d.Ritchie, Params: ps, Return: Ethereal(d.Return)}, true
		}
		return Shape{}, false
	}
	if l.kind != localHollow {
		return Shape{}, false
	}
	d := r.cell(l).data
	switch d.Kind {
	case DataTypeOntology:
		return Shape{Kind: d.Kind, Path: d.Path, Args: d.Args}, true
	case DataCurry:
		return Shape{Kind: d.Kind, Param: d.Param, Return: d.Return}, true
	case DataRitchie:
		return Shape{Kind: d.Kind, Ritchie: d.Ritchie, Params: d.Params, Return: d.Return}, true
	}
	return Shape{}, false
}

// Instantiate converts an ethereal term mentioning generic symbols into a
// local term with the symbols replaced by subst.
func (r *Region) Instantiate(t term.Term, subst map[term.Term]Local, span source.Span) Local {
	if t == term.NoTerm {
		return Local{}
	}
	if len(subst) == 0 || !r.mentions(t, subst) {
		return Ethereal(t)
	}
	tab := r.terms
	if l, ok := subst[t]; ok {
		return l
	}
	if p, args, ok := ontologyHead(tab, t); ok {
		ls := make([]Local, len(args))
		for i, a := range args {
			ls[i] = r.Instantiate(a, subst, span)
		}
		return r.TypeOntology(p, ls, span)
	}
	d := tab.Data(t)
	switch d.Kind {
	case term.KindCurry:
		return r.Curry(r.Instantiate(d.Param, subst, span), r.Instantiate(d.Return, subst, span), span)
	case term.KindRitchie:
		ps := make([]Param, len(d.Params))
		for i, p := range d.Params {
			ps[i] = Param{Kind: p.Kind, Liason: p.Liason, Ty: r.Instantiate(p.Ty, subst, span), Ident: p.Ident}
		}
		return r.Ritchie(d.Ritchie, ps, r.Instantiate(d.Return, subst, span), span)
	}
	// symbol-headed applications only occur inside trait bounds
	flat := make(term.Subst, len(subst))
	for k, v := range subst {
		if e, ok := r.Resolved(v); ok {
			flat[k] = e
		}
	}
	return Ethereal(tab.Reduce(tab.Substitute(t, flat)))
}

func (r *Region) mentions(t term.Term, subst map[term.Term]Local) bool {
	if _, ok := subst[t]; ok {
		return true
	}
	d := r.terms.Data(t)
	switch d.Kind {
	case term.KindApplication:
		return r.mentions(d.Func, subst) || r.mentions(d.Arg, subst)
	case term.KindCurry:
		return r.mentions(d.Param, subst) || r.mentions(d.Return, subst)
	case term.KindRitchie:
		for _, p := range d.Params {
			if r.mentions(p.Ty, subst) {
				return true
			}
		}
		return r.mentions(d.Return, subst)
	case term.KindTraitConstraint:
		return r.mentions(d.Ty, subst) || r.mentions(d.Trait, subst)
	}
	return false
}

func ontologyHead(tab *term.Table, t term.Term) (entity.Path, []term.Term, bool) {
	head, args := tab.Head(t)
	d := tab.Data(head)
	if d.Kind != term.KindEntityPath || d.PathKind != term.PathTypeOntology {
		return entity.NoPath, nil, false
	}
	return d.Path, args, true
}

// DefaultLiteral fills l with its literal default when l is an open
// integer or float hole, and reports whether it did.
func (r *Region) DefaultLiteral(l Local) bool {
	l = r.shallow(l)
	c, open := r.openHole(l)
	if !open {
		return false
	}
	switch c.data.Hole {
	case HoleInt:
		r.FillHole(l, Ethereal(r.terms.Common().I32))
	case HoleFloat:
		r.FillHole(l, Ethereal(r.terms.Common().F64))
	default:
		return false
	}
	return true
}

// IsLiteralHole reports an open integer or float hole.
func (r *Region) IsLiteralHole(l Local) bool {
	c, open := r.openHole(r.shallow(l))
	return open && (c.data.Hole == HoleInt || c.data.Hole == HoleFloat)
}

// IsOpenHole reports a hole nothing has filled yet.
func (r *Region) IsOpenHole(l Local) bool {
	_, open := r.openHole(r.shallow(l))
	return open
}
