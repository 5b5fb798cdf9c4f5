package hollow

import (
	"fmt"

	"fortio.org/safecast"

	"husk/internal/diag"
)

// ResolveWeak resolves as much as possible without guessing. On a fixed
// point it changes nothing.
func (r *Region) ResolveWeak() {
	for {
		r.UpdateTerms()
		progressed := false
		for i := r.firstUnresolvedExpectation; i < len(r.entries); i++ {
			e := &r.entries[i]
			if e.Outcome.State == Pending && r.resolveEntry(e) {
				progressed = true
			}
		}
		for r.firstUnresolvedExpectation < len(r.entries) && r.entries[r.firstUnresolvedExpectation].Outcome.State != Pending {
			r.firstUnresolvedExpectation++
		}
		if !progressed {
			return
		}
	}
}

// ResolveStrong closes the session. Literal holes take their defaults
// (i32, f64), every hole still open becomes an Original CannotInfer error,
// and every expectation still pending fails: Original when its expectee
// resolved, Derived otherwise. Afterwards nothing is unresolved.
func (r *Region) ResolveStrong() []*diag.Error {
	r.ResolveWeak()
	common := r.terms.Common()
	for i := range r.cells {
		c := &r.cells[i]
		if c.data.Kind != DataHole || c.filled {
			continue
		}
		switch c.data.Hole {
		case HoleInt:
			r.FillHole(r.localOf(i), Ethereal(common.I32))
		case HoleFloat:
			r.FillHole(r.localOf(i), Ethereal(common.F64))
		}
	}
	r.ResolveWeak()

	for i := range r.cells {
		c := &r.cells[i]
		if c.data.Kind != DataHole || c.filled {
			continue
		}
		err := diag.Original(diag.InferCannotInfer, c.data.Span, "cannot infer this type")
		r.errs = append(r.errs, err)
		c.filled = true
		r.setProgress(i, Progress{Kind: ResolvedErr, Err: err})
	}
	r.UpdateTerms()
	for i := range r.cells {
		if !r.cells[i].progress.Resolved() {
			// only cyclic fills can get here
			r.setProgress(i, Progress{Kind: ResolvedErr})
		}
	}
	r.firstUnresolvedTerm = len(r.cells)

	r.ResolveWeak()
	for i := r.firstUnresolvedExpectation; i < len(r.entries); i++ {
		e := &r.entries[i]
		if e.Outcome.State != Pending {
			continue
		}
		if p := r.ResolveProgress(e.Expectee); p.Kind == ResolvedEthereal || p.Kind == ResolvedSolid {
			r.fail(e, diag.Original(diag.InferCannotInfer, e.Span, "cannot satisfy `%s` expectation for `%s`", e.Expect.Kind, r.Display(e.Expectee)))
		} else {
			r.failDerived(e)
		}
	}
	r.firstUnresolvedExpectation = len(r.entries)
	return r.errs
}

// localOf is the local of cells[i].
func (r *Region) localOf(i int) Local {
	id, err := safecast.Conv[uint32](i + 1)
	if err != nil {
		panic(fmt.Errorf("hollow: cell %d overflows: %w", i, err))
	}
	return Local{kind: localHollow, cell: id}
}
