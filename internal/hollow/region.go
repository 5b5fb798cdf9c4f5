package hollow

import (
	"fmt"

	"fortio.org/safecast"

	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/source"
	"husk/internal/term"
)

type cell struct {
	data     Data
	fill     Local
	filled   bool
	progress Progress
	hints    []Constraint
}

// Region is the local term region of one inference session.
type Region struct {
	terms *term.Table

	cells               []cell
	firstUnresolvedTerm int

	entries                    []Entry
	firstUnresolvedExpectation int

	errs    []*diag.Error
	version uint64
}

func NewRegion(terms *term.Table) *Region {
	return &Region{terms: terms}
}

func (r *Region) Terms() *term.Table { return r.terms }

// Version changes whenever any cell or expectation makes progress.
func (r *Region) Version() uint64 { return r.version }

// Len is the number of hollow cells.
func (r *Region) Len() int { return len(r.cells) }

// AllocNew allocates a fresh cell and tries to resolve it right away.
func (r *Region) AllocNew(d Data) Local {
	switch d.Kind {
	case DataHole, DataTypeOntology, DataCurry, DataRitchie:
	default:
		panic(diag.Internalf("hollow: alloc of unknown data kind %d", d.Kind))
	}
	r.cells = append(r.cells, cell{data: d})
	id, err := safecast.Conv[uint32](len(r.cells))
	if err != nil {
		panic(fmt.Errorf("hollow: cell overflow: %w", err))
	}
	r.version++
	if d.Kind != DataHole {
		r.UpdateTerms()
	}
	return Local{kind: localHollow, cell: id}
}

func (r *Region) cell(l Local) *cell {
	if l.kind != localHollow || l.cell == 0 || int(l.cell) > len(r.cells) {
		panic(diag.Internalf("hollow: %v is not a cell of this region", l))
	}
	return &r.cells[l.cell-1]
}

// Data returns the content of a hollow cell.
func (r *Region) Data(l Local) Data { return r.cell(l).data }

// NewHole allocates an unfilled hole.
func (r *Region) NewHole(kind HoleKind, span source.Span) Local {
	return r.AllocNew(Data{Kind: DataHole, Hole: kind, Span: span})
}

// TypeOntology is path applied to args; it stays ethereal when every arg is.
func (r *Region) TypeOntology(path entity.Path, args []Local, span source.Span) Local {
	if ts, ok := r.allEthereal(args); ok {
		return Ethereal(r.terms.Reduce(r.terms.Apply(r.terms.TypePath(path), ts...)))
	}
	return r.AllocNew(Data{Kind: DataTypeOntology, Path: path, Args: args, Span: span})
}

// Curry builds `param -> ret`.
func (r *Region) Curry(param, ret Local, span source.Span) Local {
	if ts, ok := r.allEthereal([]Local{param, ret}); ok {
		return Ethereal(r.terms.Curry(ts[0], ts[1]))
	}
	return r.AllocNew(Data{Kind: DataCurry, Param: param, Return: ret, Span: span})
}

// Ritchie builds a call type.
func (r *Region) Ritchie(kind term.RitchieKind, params []Param, ret Local, span source.Span) Local {
	locals := make([]Local, 0, len(params)+1)
	for _, p := range params {
		locals = append(locals, p.Ty)
	}
	if ts, ok := r.allEthereal(append(locals, ret)); ok {
		eps := make([]term.RitchieParam, len(params))
		for i, p := range params {
			eps[i] = term.RitchieParam{Kind: p.Kind, Liason: p.Liason, Ty: ts[i], Ident: p.Ident}
		}
		return Ethereal(r.terms.Ritchie(kind, eps, ts[len(ts)-1]))
	}
	return r.AllocNew(Data{Kind: DataRitchie, Ritchie: kind, Params: params, Return: ret, Span: span})
}

func (r *Region) allEthereal(ls []Local) ([]term.Term, bool) {
	out := make([]term.Term, len(ls))
	for i, l := range ls {
		t, ok := l.Term()
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

// FillHole fills an unfilled hole. A second fill is a programming error.
func (r *Region) FillHole(hole, with Local) {
	c := r.cell(hole)
	if c.data.Kind != DataHole {
		panic(diag.Internalf("hollow: fill of non-hole cell %d", hole.cell))
	}
	if c.filled {
		panic(diag.Internalf("hollow: hole %d filled twice", hole.cell))
	}
	if !with.IsValid() {
		panic(diag.Internalf("hollow: hole %d filled with nothing", hole.cell))
	}
	c.fill, c.filled = with, true
	r.version++
	r.UpdateTerms()
}

// FillHoleSolid resolves a hole to a concrete value.
func (r *Region) FillHoleSolid(hole Local, s term.Solid) {
	c := r.cell(hole)
	if c.data.Kind != DataHole || c.filled {
		panic(diag.Internalf("hollow: solid fill of cell %d", hole.cell))
	}
	c.filled = true
	r.setProgress(int(hole.cell-1), Progress{Kind: ResolvedSolid, Solid: s})
	r.UpdateTerms()
}

// AddHoleConstraint records a coercion hint on a hole.
func (r *Region) AddHoleConstraint(hole Local, c Constraint) {
	cl := r.cell(hole)
	if cl.data.Kind != DataHole {
		panic(diag.Internalf("hollow: constraint on non-hole cell %d", hole.cell))
	}
	cl.hints = append(cl.hints, c)
	r.version++
}

// Hints returns the coercion hints of a hole.
func (r *Region) Hints(hole Local) []Constraint { return r.cell(hole).hints }

// ResolveProgress reports the current state of l without changing anything.
func (r *Region) ResolveProgress(l Local) Progress {
	switch l.kind {
	case localEthereal:
		return Progress{Kind: ResolvedEthereal, Ethereal: l.ethereal}
	case localErr:
		return Progress{Kind: ResolvedErr}
	case localHollow:
		return r.cell(l).progress
	}
	return Progress{}
}

// Resolved returns the ethereal term l has resolved to.
func (r *Region) Resolved(l Local) (term.Term, bool) {
	p := r.ResolveProgress(l)
	return p.Ethereal, p.Kind == ResolvedEthereal
}

func (r *Region) setProgress(i int, p Progress) {
	c := &r.cells[i]
	if c.progress.Resolved() {
		panic(diag.Internalf("hollow: cell %d resolved twice (%s then %s)", i+1, c.progress.Kind, p.Kind))
	}
	c.progress = p
	r.version++
}

// UpdateTerms sweeps unresolved cells until nothing changes. Cells below the
// low-water mark are known to be resolved and are never revisited.
func (r *Region) UpdateTerms() {
	for {
		changed := false
		for i := r.firstUnresolvedTerm; i < len(r.cells); i++ {
			if !r.cells[i].progress.Resolved() && r.tryResolve(i) {
				changed = true
			}
		}
		for r.firstUnresolvedTerm < len(r.cells) && r.cells[r.firstUnresolvedTerm].progress.Resolved() {
			r.firstUnresolvedTerm++
		}
		if !changed {
			return
		}
	}
}

func (r *Region) tryResolve(i int) bool {
	c := &r.cells[i]
	switch c.data.Kind {
	case DataHole:
		if !c.filled {
			return false
		}
		p := r.ResolveProgress(c.fill)
		if !p.Resolved() {
			return false
		}
		if p.Kind == ResolvedErr {
			p.Err = nil
		}
		r.setProgress(i, p)
		return true
	case DataTypeOntology:
		ts, p, ok := r.children(c.data.Args, c.data.Span)
		if !ok {
			return false
		}
		if p.Kind == Unresolved {
			p = Progress{Kind: ResolvedEthereal, Ethereal: r.terms.Reduce(r.terms.Apply(r.terms.TypePath(c.data.Path), ts...))}
		}
		r.setProgress(i, p)
		return true
	case DataCurry:
		ts, p, ok := r.children([]Local{c.data.Param, c.data.Return}, c.data.Span)
		if !ok {
			return false
		}
		if p.Kind == Unresolved {
			p = Progress{Kind: ResolvedEthereal, Ethereal: r.terms.Curry(ts[0], ts[1])}
		}
		r.setProgress(i, p)
		return true
	case DataRitchie:
		ls := make([]Local, 0, len(c.data.Params)+1)
		for _, prm := range c.data.Params {
			ls = append(ls, prm.Ty)
		}
		ts, p, ok := r.children(append(ls, c.data.Return), c.data.Span)
		if !ok {
			return false
		}
		if p.Kind == Unresolved {
			eps := make([]term.RitchieParam, len(c.data.Params))
			for j, prm := range c.data.Params {
				eps[j] = term.RitchieParam{Kind: prm.Kind, Liason: prm.Liason, Ty: ts[j], Ident: prm.Ident}
			}
			p = Progress{Kind: ResolvedEthereal, Ethereal: r.terms.Ritchie(c.data.Ritchie, eps, ts[len(ts)-1])}
		}
		r.setProgress(i, p)
		return true
	}
	return false
}

// children inspects the children of a composite cell. ok is false while any
// child is unresolved. An Err child poisons the parent; a solid child where
// an ethereal one is required makes the parent an Original error.
func (r *Region) children(ls []Local, span source.Span) ([]term.Term, Progress, bool) {
	ts := make([]term.Term, len(ls))
	var poisoned, solid bool
	for i, l := range ls {
		p := r.ResolveProgress(l)
		switch p.Kind {
		case Unresolved:
			return nil, Progress{}, false
		case ResolvedErr:
			poisoned = true
		case ResolvedSolid:
			solid = true
		case ResolvedEthereal:
			ts[i] = p.Ethereal
		}
	}
	switch {
	case poisoned:
		return nil, Progress{Kind: ResolvedErr}, true
	case solid:
		err := diag.Original(diag.TermSolidWhereEtherealExpected, span, "a concrete value cannot appear inside a type")
		r.errs = append(r.errs, err)
		return nil, Progress{Kind: ResolvedErr, Err: err}, true
	}
	return ts, Progress{}, true
}

// Errors returns the Original errors produced by the region so far.
func (r *Region) Errors() []*diag.Error { return r.errs }
