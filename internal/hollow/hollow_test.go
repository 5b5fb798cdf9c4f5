package hollow

import (
	"errors"
	"testing"

	"husk/internal/diag"
	"husk/internal/source"
	"husk/internal/term"
	"husk/internal/testkit"
)

func newRegion(t *testing.T) (*Region, *testkit.Fixture) {
	t.Helper()
	fx := testkit.Main(t, "fn id<T>(x: T) -> T { x }\n")
	return NewRegion(fx.Terms), fx
}

func mustPanicInternal(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		var ie *diag.InternalError
		if !ok || !errors.As(err, &ie) {
			t.Fatalf("expected internal error panic, got %v", r)
		}
	}()
	f()
}

func TestFillHoleOnce(t *testing.T) {
	r, fx := newRegion(t)
	i32 := Ethereal(fx.Terms.Common().I32)
	h := r.NewHole(HoleType, source.Span{})
	if r.ResolveProgress(h).Resolved() {
		t.Fatalf("fresh hole must be unresolved")
	}
	r.FillHole(h, i32)
	if got, ok := r.Resolved(h); !ok || got != fx.Terms.Common().I32 {
		t.Fatalf("hole did not resolve to i32")
	}
	mustPanicInternal(t, func() { r.FillHole(h, i32) })
}

func TestCompositeWaitsForChildren(t *testing.T) {
	r, fx := newRegion(t)
	c := fx.Terms.Common()
	prims := fx.Terms.Prims()
	h := r.NewHole(HoleType, source.Span{})
	v := r.TypeOntology(prims.Vec, []Local{h}, source.Span{})
	if !v.IsHollow() || r.ResolveProgress(v).Resolved() {
		t.Fatalf("Vec<_> must stay hollow and unresolved")
	}
	fn := r.Ritchie(term.RitchieFn, []Param{{Ty: v}}, h, source.Span{})
	r.FillHole(h, Ethereal(c.Str))
	if got, _ := r.Resolved(v); got != fx.Terms.VecOf(c.Str) {
		t.Fatalf("Vec<_> resolved to %s", fx.Terms.Display(got))
	}
	if got, _ := r.Resolved(fn); fx.Terms.Display(got) != "fn(Vec<str>) -> str" {
		t.Fatalf("ritchie resolved to %s", fx.Terms.Display(got))
	}
	if r.Display(v) != "Vec<str>" {
		t.Fatalf("display = %s", r.Display(v))
	}
	eth := r.TypeOntology(prims.Vec, []Local{Ethereal(c.I32)}, source.Span{})
	if !eth.IsEthereal() {
		t.Fatalf("fully ethereal composite must not allocate")
	}
}

func TestSolidChildIsErr(t *testing.T) {
	r, fx := newRegion(t)
	h := r.NewHole(HoleType, source.Span{})
	v := r.TypeOntology(fx.Terms.Prims().Vec, []Local{h}, source.Span{})
	r.FillHoleSolid(h, term.Solid{Kind: term.SolidInt, Int: 3})
	if r.ResolveProgress(h).Kind != ResolvedSolid {
		t.Fatalf("hole must be solid")
	}
	p := r.ResolveProgress(v)
	if p.Kind != ResolvedErr || p.Err == nil || p.Err.Code != diag.TermSolidWhereEtherealExpected {
		t.Fatalf("solid child must make parent Err, got %+v", p)
	}
}

func TestUnifyLiteralHoles(t *testing.T) {
	r, fx := newRegion(t)
	c := fx.Terms.Common()
	a := r.NewHole(HoleInt, source.Span{})
	if r.Unify(a, Ethereal(c.Str)) {
		t.Fatalf("integer literal cannot be str")
	}
	if !r.Unify(a, Ethereal(c.I64)) {
		t.Fatalf("integer literal must accept i64")
	}
	b := r.NewHole(HoleInt, source.Span{})
	g := r.NewHole(HoleType, source.Span{})
	if !r.Unify(g, b) {
		t.Fatalf("type hole must accept an integer hole")
	}
	if _, open := r.openHole(b); !open {
		t.Fatalf("the general hole must be filled, not the literal one")
	}
	f := r.NewHole(HoleFloat, source.Span{})
	if r.Unify(b, f) {
		t.Fatalf("integer and float literals must not unify")
	}
	if errs := r.ResolveStrong(); len(errs) != 0 {
		t.Fatalf("literal defaults must not error: %v", errs)
	}
	if got, _ := r.Resolved(g); got != c.I32 {
		t.Fatalf("integer default = %s", fx.Terms.Display(got))
	}
	if got, _ := r.Resolved(f); got != c.F64 {
		t.Fatalf("float default = %s", fx.Terms.Display(got))
	}
}

func TestLocalOfMatchesAllocation(t *testing.T) {
	r, _ := newRegion(t)
	for range 3 {
		h := r.NewHole(HoleInt, source.Span{})
		if got := r.localOf(r.Len() - 1); got != h {
			t.Fatalf("localOf(%d) = %v, want %v", r.Len()-1, got, h)
		}
	}
}

func TestOccursCheck(t *testing.T) {
	r, fx := newRegion(t)
	h := r.NewHole(HoleType, source.Span{})
	v := r.TypeOntology(fx.Terms.Prims().Vec, []Local{h}, source.Span{})
	if r.Unify(h, v) {
		t.Fatalf("a hole cannot contain itself")
	}
}

func TestExpectationsAndWeakFixedPoint(t *testing.T) {
	r, fx := newRegion(t)
	c := fx.Terms.Common()
	h := r.NewHole(HoleType, source.Span{})
	idx := r.Expect(1, source.Span{}, h, Convertible(Ethereal(c.Bool)))
	if e := r.Entry(idx); e.Outcome.State != Ok || e.Outcome.Ty != c.Bool {
		t.Fatalf("expectation should settle the hole: %+v", e.Outcome)
	}
	if hints := r.Hints(h); len(hints) != 1 || hints[0].Kind != CoercibleInto {
		t.Fatalf("convertible expectation should leave a hint")
	}
	bad := r.Expect(2, source.Span{Start: 4, End: 5}, Ethereal(c.Str), Exactly(Ethereal(c.I32)))
	if e := r.Entry(bad); e.Outcome.State != Failed || e.Outcome.Err.Code != diag.InferTypeMismatch || e.Outcome.Err.Origin != diag.OriginOriginal {
		t.Fatalf("mismatch must fail originally: %+v", e.Outcome)
	}
	cond := r.Expect(3, source.Span{}, Ethereal(c.I32), Condition())
	if r.Entry(cond).Outcome.Err.Code != diag.InferConditionNotBool {
		t.Fatalf("condition on i32 must fail")
	}
	pending := r.NewHole(HoleType, source.Span{})
	r.Expect(4, source.Span{}, pending, AnyOriginal())

	v := r.Version()
	r.ResolveWeak()
	r.ResolveWeak()
	if r.Version() != v {
		t.Fatalf("weak sweep changed state on a fixed point")
	}
}

func TestResolveStrongTerminates(t *testing.T) {
	r, fx := newRegion(t)
	c := fx.Terms.Common()
	open := r.NewHole(HoleImplicit, source.Span{Start: 7, End: 8})
	dep := r.Expect(1, source.Span{}, open, AnyOriginal())
	poisoned := r.NewHole(HoleImplicit, source.Span{})
	r.Expect(2, source.Span{}, Err, Convertible(poisoned))
	fn := r.Expect(3, source.Span{}, Ethereal(c.I32), FunctionType())

	errs := r.ResolveStrong()
	var cannot int
	for _, e := range errs {
		if e.Code == diag.InferCannotInfer {
			cannot++
			if e.Span.Start != 7 {
				t.Fatalf("cannot-infer anchored at %v", e.Span)
			}
		}
	}
	if cannot != 1 {
		t.Fatalf("expected one CannotInfer, got %d in %v", cannot, errs)
	}
	if e := r.Entry(dep); e.Outcome.State != Failed || e.Outcome.Err.Origin != diag.OriginDerived {
		t.Fatalf("expectation on an unresolvable hole must fail derived")
	}
	if p := r.ResolveProgress(poisoned); p.Kind != ResolvedErr || p.Err != nil {
		t.Fatalf("hole unified with Err must be poisoned silently, got %+v", p)
	}
	if r.Entry(fn).Outcome.Err.Code != diag.InferExpectedFunction {
		t.Fatalf("i32 is not callable")
	}
	for i := 0; i < r.Len(); i++ {
		if !r.cells[i].progress.Resolved() {
			t.Fatalf("cell %d unresolved after strong resolution", i+1)
		}
	}
}

func TestInstantiate(t *testing.T) {
	r, fx := newRegion(t)
	c := fx.Terms.Common()
	id := fx.Lookup(t, "main", "id")
	sym := fx.Terms.Symbol(id, 0, fx.Strings.Intern("T"), c.Type)
	sig := fx.Terms.Ritchie(term.RitchieFn, []term.RitchieParam{{Ty: fx.Terms.VecOf(sym)}}, sym)
	h := r.NewHole(HoleImplicit, source.Span{})
	l := r.Instantiate(sig, map[term.Term]Local{sym: h}, source.Span{})
	if !l.IsHollow() {
		t.Fatalf("instantiated signature must be hollow")
	}
	if !r.Unify(l, Ethereal(fx.Terms.Ritchie(term.RitchieFn, []term.RitchieParam{{Ty: fx.Terms.VecOf(c.F32)}}, c.F32))) {
		t.Fatalf("signature should unify with fn(Vec<f32>) -> f32")
	}
	if got, _ := r.Resolved(h); got != c.F32 {
		t.Fatalf("T bound to %s", fx.Terms.Display(got))
	}
	if plain := r.Instantiate(c.I32, map[term.Term]Local{sym: h}, source.Span{}); !plain.IsEthereal() {
		t.Fatalf("terms without the symbols stay ethereal")
	}
}
