package hollow

import (
	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/source"
	"husk/internal/term"
)

// ExpectKind enumerates what an expression is expected to satisfy.
type ExpectKind uint8

const (
	ExpectAnyOriginal ExpectKind = iota
	ExpectAnyDerived
	ExpectSort
	ExpectEqsCategory
	ExpectImplicitlyConvertible
	ExpectEqsExactly
	ExpectEqsFunctionType
	ExpectCondition
	ExpectRefMutApplication
)

var expectKindNames = [...]string{
	ExpectAnyOriginal:           "any-original",
	ExpectAnyDerived:            "any-derived",
	ExpectSort:                  "sort",
	ExpectEqsCategory:           "eqs-category",
	ExpectImplicitlyConvertible: "implicitly-convertible",
	ExpectEqsExactly:            "eqs-exactly",
	ExpectEqsFunctionType:       "eqs-function-type",
	ExpectCondition:             "condition",
	ExpectRefMutApplication:     "ref-mut-application",
}

func (k ExpectKind) String() string {
	if int(k) < len(expectKindNames) {
		return expectKindNames[k]
	}
	return "?"
}

// Expectation is the requirement the caller puts on an expression.
type Expectation struct {
	Kind     ExpectKind
	Target   Local // ImplicitlyConvertible, EqsExactly
	Universe uint8 // EqsCategory
}

func AnyOriginal() Expectation { return Expectation{Kind: ExpectAnyOriginal} }
func AnyDerived() Expectation  { return Expectation{Kind: ExpectAnyDerived} }
func Sort() Expectation        { return Expectation{Kind: ExpectSort} }
func Condition() Expectation   { return Expectation{Kind: ExpectCondition} }
func FunctionType() Expectation {
	return Expectation{Kind: ExpectEqsFunctionType}
}
func RefMut() Expectation { return Expectation{Kind: ExpectRefMutApplication} }

func Category(u uint8) Expectation {
	return Expectation{Kind: ExpectEqsCategory, Universe: u}
}

func Convertible(target Local) Expectation {
	return Expectation{Kind: ExpectImplicitlyConvertible, Target: target}
}

func Exactly(target Local) Expectation {
	return Expectation{Kind: ExpectEqsExactly, Target: target}
}

// Derived reports expectations under which failures are not the user's fault.
func (e Expectation) Derived() bool { return e.Kind == ExpectAnyDerived }

// WantsSort reports expectations that steer toward type-level readings.
func (e Expectation) WantsSort() bool {
	return e.Kind == ExpectSort || e.Kind == ExpectEqsCategory
}

// OutcomeState is the append-only state of an expectation.
type OutcomeState uint8

const (
	Pending OutcomeState = iota
	Ok
	Failed
)

// FunctionKind is what an EqsFunctionType expectation found.
type FunctionKind uint8

const (
	FunctionNone FunctionKind = iota
	FunctionCurry
	FunctionRitchie
)

// Outcome is the resolution of one expectation.
type Outcome struct {
	State    OutcomeState
	Ty       term.Term
	Function FunctionKind
	Err      *diag.Error
}

// Entry ties an expression's term to an expectation.
type Entry struct {
	Src      ast.ExprID
	Span     source.Span
	Expectee Local
	Expect   Expectation
	Outcome  Outcome

	unified bool
}

// Expect registers an expectation and runs a weak sweep so that later
// siblings see whatever this one pinned down.
func (r *Region) Expect(src ast.ExprID, span source.Span, expectee Local, e Expectation) int {
	r.entries = append(r.entries, Entry{Src: src, Span: span, Expectee: expectee, Expect: e})
	r.version++
	r.ResolveWeak()
	return len(r.entries) - 1
}

// Entry returns expectation idx.
func (r *Region) Entry(idx int) Entry { return r.entries[idx] }

// Entries is the number of registered expectations.
func (r *Region) Entries() int { return len(r.entries) }

func (r *Region) succeed(e *Entry, ty term.Term, fk FunctionKind) bool {
	e.Outcome = Outcome{State: Ok, Ty: ty, Function: fk}
	r.version++
	return true
}

func (r *Region) fail(e *Entry, err *diag.Error) bool {
	if e.Outcome.State != Pending {
		panic(diag.Internalf("hollow: expectation at %v resolved twice", e.Span))
	}
	e.Outcome = Outcome{State: Failed, Err: err}
	if err.Origin == diag.OriginOriginal {
		r.errs = append(r.errs, err)
	}
	r.version++
	return true
}

func (r *Region) failDerived(e *Entry) bool {
	return r.fail(e, diag.DerivedAt(diag.InferAbandoned, e.Span, "abandoned after earlier error"))
}

// resolveEntry tries to settle e and reports whether anything changed.
func (r *Region) resolveEntry(e *Entry) bool {
	tab := r.terms
	switch e.Expect.Kind {
	case ExpectAnyOriginal, ExpectAnyDerived:
		p := r.ResolveProgress(e.Expectee)
		switch p.Kind {
		case ResolvedErr:
			return r.failDerived(e)
		case ResolvedEthereal:
			return r.succeed(e, p.Ethereal, FunctionNone)
		case ResolvedSolid:
			return r.succeed(e, term.NoTerm, FunctionNone)
		}
		return false

	case ExpectImplicitlyConvertible, ExpectEqsExactly:
		progressed := false
		if !e.unified {
			if target := r.shallow(e.Expect.Target); target.IsErr() || r.shallow(e.Expectee).IsErr() {
				r.Unify(e.Expectee, target)
				return r.failDerived(e)
			}
			if e.Expect.Kind == ExpectImplicitlyConvertible {
				if _, open := r.openHole(r.shallow(e.Expectee)); open {
					r.AddHoleConstraint(r.shallow(e.Expectee), Constraint{Kind: CoercibleInto, Target: e.Expect.Target})
				}
			}
			if !r.Unify(e.Expectee, e.Expect.Target) {
				return r.fail(e, diag.Original(diag.InferTypeMismatch, e.Span,
					"expected `%s`, found `%s`", r.Display(e.Expect.Target), r.Display(e.Expectee)))
			}
			e.unified, progressed = true, true
			r.version++
		}
		p := r.ResolveProgress(e.Expectee)
		switch p.Kind {
		case ResolvedEthereal:
			return r.succeed(e, p.Ethereal, FunctionNone)
		case ResolvedErr:
			return r.failDerived(e)
		}
		return progressed

	case ExpectSort, ExpectEqsCategory:
		p := r.ResolveProgress(e.Expectee)
		switch p.Kind {
		case Unresolved:
			return false
		case ResolvedErr:
			return r.failDerived(e)
		}
		ok := p.Kind == ResolvedEthereal && tab.IsSort(p.Ethereal)
		if e.Expect.Kind == ExpectEqsCategory {
			ok = p.Kind == ResolvedEthereal && p.Ethereal == tab.Category(e.Expect.Universe)
		}
		if !ok {
			return r.fail(e, diag.Original(diag.InferExpectedSort, e.Span, "expected a type, found a value of type `%s`", r.Display(e.Expectee)))
		}
		return r.succeed(e, p.Ethereal, FunctionNone)

	case ExpectEqsFunctionType:
		l := r.shallow(e.Expectee)
		if l.IsErr() {
			return r.failDerived(e)
		}
		if s, ok := r.shapeOf(l); ok {
			ty, _ := r.Resolved(l)
			switch s.Kind {
			case DataCurry:
				return r.succeed(e, ty, FunctionCurry)
			case DataRitchie:
				return r.succeed(e, ty, FunctionRitchie)
			}
		}
		if _, open := r.openHole(l); open {
			return false
		}
		return r.fail(e, diag.Original(diag.InferExpectedFunction, e.Span, "`%s` is not callable", r.Display(l)))

	case ExpectCondition:
		l := r.shallow(e.Expectee)
		if l.IsErr() {
			return r.failDerived(e)
		}
		if !r.Unify(l, Ethereal(tab.Common().Bool)) {
			return r.fail(e, diag.Original(diag.InferConditionNotBool, e.Span, "condition must be `bool`, found `%s`", r.Display(l)))
		}
		return r.succeed(e, tab.Common().Bool, FunctionNone)

	case ExpectRefMutApplication:
		p := r.ResolveProgress(e.Expectee)
		switch p.Kind {
		case Unresolved:
			return false
		case ResolvedErr:
			return r.failDerived(e)
		}
		if p.Kind == ResolvedEthereal && tab.IsSort(p.Ethereal) {
			return r.fail(e, diag.Original(diag.InferNotAValue, e.Span, "a type cannot be assigned to"))
		}
		return r.succeed(e, p.Ethereal, FunctionNone)
	}
	panic(diag.Internalf("hollow: unknown expectation kind %s", e.Expect.Kind))
}
