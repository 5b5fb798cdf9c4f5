package sema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/term"
	"husk/internal/testkit"
)

type fixture struct {
	*testkit.Fixture
	db  *decl.DB
	eng *Engine
}

func newFixture(t *testing.T, src string) fixture {
	t.Helper()
	fx := testkit.Main(t, src)
	db := decl.NewDB(fx.Crate, fx.Terms)
	return fixture{Fixture: fx, db: db, eng: NewEngine(db, nil)}
}

func (f fixture) body(t *testing.T, segments ...string) *RegionResult {
	t.Helper()
	return f.eng.Infer(RegionKey{Path: f.Lookup(t, "main", segments...)})
}

// exprAt finds the expression whose span is exactly the n-th occurrence of needle.
func (f fixture) exprAt(t *testing.T, res *RegionResult, needle string, n int) (ast.ExprID, *ExprInfo) {
	t.Helper()
	span := f.Span(t, "main", needle, n)
	for id, info := range res.Exprs {
		if f.Builder.Exprs.Get(id).Span == span {
			return id, info
		}
	}
	t.Fatalf("no typed expression spans %q #%d", needle, n)
	return ast.NoExprID, nil
}

func (f fixture) display(ty term.Term) string { return f.Terms.Display(ty) }

func hasCode(errs []*diag.Error, code diag.Code) bool {
	for _, err := range errs {
		if err.Code == code {
			return true
		}
	}
	return false
}

func requireClean(t *testing.T, res *RegionResult) {
	t.Helper()
	for _, err := range res.Errors {
		t.Errorf("unexpected error: %v", err)
	}
	if t.Failed() {
		t.FailNow()
	}
}

func TestSimpleCall(t *testing.T) {
	f := newFixture(t, `
fn f(x: i32) -> i32 { x }
fn g() -> i32 { f(3) }
`)
	res := f.body(t, "g")
	requireClean(t, res)

	_, call := f.exprAt(t, res, "f(3)", 0)
	if got := f.display(call.Ty); got != "i32" {
		t.Fatalf("call type = %s, want i32", got)
	}
	cd, ok := call.Dis.(*CallDis)
	if !ok {
		t.Fatalf("call disambiguation = %T", call.Dis)
	}
	if cd.Mode != CallRitchie || cd.Callee != f.Lookup(t, "main", "f") || cd.Constructor {
		t.Fatalf("unexpected call %+v", cd)
	}
	if len(cd.Groups) != 1 || cd.Groups[0].Kind != GroupRegular || len(cd.Groups[0].Args) != 1 {
		t.Fatalf("groups = %+v", cd.Groups)
	}
	lit := res.Expr(cd.Groups[0].Args[0])
	if f.display(lit.Ty) != "i32" || lit.Dis != nil {
		t.Fatalf("argument typed %s (%T)", f.display(lit.Ty), lit.Dis)
	}
}

const grouping = `
fn h(a: i32, b: i32, ...rest: i32, key k: i32 = 1, key j: bool) -> i32 { a }
fn ok() -> i32 { h(j = true, 1, 2, 3, 4) }
fn missing() -> i32 { h(1) }
fn unknown() -> i32 { h(1, 2, z = 3, j = true) }
fn twice() -> i32 { h(1, 2, j = true, j = false) }
`

func TestCallListGrouping(t *testing.T) {
	f := newFixture(t, grouping)
	res := f.body(t, "ok")
	requireClean(t, res)
	_, call := f.exprAt(t, res, "h(j = true, 1, 2, 3, 4)", 0)
	cd := call.Dis.(*CallDis)
	want := []struct {
		kind    GroupKind
		ident   string
		args    int
		deflt   bool
		elemTy  string
		liasons term.Liason
	}{
		{GroupRegular, "a", 1, false, "i32", term.LiasonPure},
		{GroupRegular, "b", 1, false, "i32", term.LiasonPure},
		{GroupVariadic, "rest", 2, false, "i32", term.LiasonPure},
		{GroupKeyed, "k", 0, true, "i32", term.LiasonPure},
		{GroupKeyed, "j", 1, false, "bool", term.LiasonPure},
	}
	if len(cd.Groups) != len(want) {
		t.Fatalf("got %d groups, want %d: %+v", len(cd.Groups), len(want), cd.Groups)
	}
	for i, w := range want {
		g := cd.Groups[i]
		if g.Kind != w.kind || g.Ident != w.ident || len(g.Args) != w.args || g.Default != w.deflt || f.display(g.Ty) != w.elemTy || g.Liason != w.liasons {
			t.Errorf("group %d = %+v (ty %s), want %+v", i, g, f.display(g.Ty), w)
		}
	}
	if lit := f.Builder.Exprs.Get(cd.Groups[4].Args[0]); lit.Span != f.Span(t, "main", "true", 0) {
		t.Fatalf("keyed j bound to the wrong item")
	}
}

func TestCallListErrors(t *testing.T) {
	f := newFixture(t, grouping)
	cases := []struct {
		fn    string
		codes []diag.Code
	}{
		{"missing", []diag.Code{diag.InferMissingArgument, diag.InferMissingArgument}},
		{"unknown", []diag.Code{diag.InferUnknownKeyedArgument}},
		{"twice", []diag.Code{diag.InferDuplicateKeyedArgument}},
	}
	for _, tc := range cases {
		t.Run(tc.fn, func(t *testing.T) {
			res := f.body(t, tc.fn)
			got := res.Originals()
			if len(got) != len(tc.codes) {
				t.Fatalf("originals = %v, want codes %v", got, tc.codes)
			}
			for i, err := range got {
				if err.Code != tc.codes[i] {
					t.Fatalf("error %d = %v, want %s", i, err, tc.codes[i].ID())
				}
			}
		})
	}
}

func TestAmbiguousEmptyList(t *testing.T) {
	f := newFixture(t, `
fn bare() { let x = []; }
fn steered() -> Vec<i32> { [] }
fn annotated() -> i32 { let v: Vec<i32> = []; 0 }
`)
	res := f.body(t, "bare")
	if len(res.Originals()) != 0 {
		t.Fatalf("empty list reported originals: %v", res.Originals())
	}
	_, list := f.exprAt(t, res, "[]", 0)
	if list.Err == nil || list.Err.Code != diag.InferAmbiguateListExpr || list.Err.Origin != diag.OriginDerived {
		t.Fatalf("list error = %v", list.Err)
	}
	if list.Ty != term.NoTerm {
		t.Fatalf("ambiguous list got type %s", f.display(list.Ty))
	}

	for _, fn := range []string{"steered", "annotated"} {
		res := f.body(t, fn)
		requireClean(t, res)
		var found bool
		for _, info := range res.Exprs {
			if ld, ok := info.Dis.(*ListDis); ok {
				found = true
				if ld.Mode != ListValue || f.display(info.Ty) != "Vec<i32>" {
					t.Fatalf("%s: list %s typed %s", fn, ld.Mode, f.display(info.Ty))
				}
			}
		}
		if !found {
			t.Fatalf("%s: no list expression", fn)
		}
	}
}

func TestUnresolvedIdentIsReportedOnce(t *testing.T) {
	f := newFixture(t, `
fn g() -> i32 { let a = nope + 1; a * 2 }
fn h() -> i32 { nope(1, missing) }
`)
	res := f.body(t, "g")
	got := res.Originals()
	if len(got) != 1 || got[0].Code != diag.PathUnresolvedRootIdent {
		t.Fatalf("originals = %v", got)
	}
	if got[0].Span != f.Span(t, "main", "nope", 0) {
		t.Fatalf("error anchored at %v", got[0].Span)
	}
	_, mul := f.exprAt(t, res, "a * 2", 0)
	if mul.Err == nil || mul.Err.Origin != diag.OriginDerived {
		t.Fatalf("dependent expression error = %v", mul.Err)
	}

	// arguments of a broken callee are still checked
	res = f.body(t, "h")
	got = res.Originals()
	if len(got) != 2 || got[0].Span != f.Span(t, "main", "nope", 1) || got[1].Span != f.Span(t, "main", "missing", 0) {
		t.Fatalf("originals = %v", got)
	}
}

const methods = `
struct S { v: i32, data: Vec<i32> }
impl S {
    fn get(self) -> i32 { self.v }
    fn make(v: i32) -> S { S(v, Vec::new()) }
    memo total: i32 = self.v + 1
}
fn use_it(s: S) -> i32 { s.get() + s.total + s.data.len() }
fn bad(s: S) -> i32 { s.nope() + s.get }
`

func TestMethodsAndFields(t *testing.T) {
	f := newFixture(t, methods)
	res := f.body(t, "use_it")
	requireClean(t, res)

	_, get := f.exprAt(t, res, "s.get()", 0)
	md, ok := get.Dis.(*MethodDis)
	if !ok || md.Path != f.Lookup(t, "main", "S", "get") || md.This != term.LiasonPure {
		t.Fatalf("s.get() = %+v", get.Dis)
	}
	_, total := f.exprAt(t, res, "s.total", 0)
	if fd, ok := total.Dis.(*FieldDis); !ok || fd.Mode != FieldMemoized || fd.Path != f.Lookup(t, "main", "S", "total") {
		t.Fatalf("s.total = %+v", total.Dis)
	}
	_, data := f.exprAt(t, res, "s.data", 0)
	if fd, ok := data.Dis.(*FieldDis); !ok || fd.Mode != FieldPropsStruct || fd.Index != 1 || f.display(data.Ty) != "Vec<i32>" {
		t.Fatalf("s.data = %+v typed %s", data.Dis, f.display(data.Ty))
	}
	_, l := f.exprAt(t, res, "s.data.len()", 0)
	if f.display(l.Ty) != "i32" {
		t.Fatalf("len typed %s", f.display(l.Ty))
	}

	res = f.body(t, "bad")
	got := res.Originals()
	if len(got) != 2 || got[0].Code != diag.InferNoSuchMethod || got[1].Code != diag.InferNoSuchField {
		t.Fatalf("originals = %v", got)
	}
}

const openReceivers = `
struct Holder<T> { item: T }
fn fill() -> i32 { var v = Vec::new(); v.push(1); v.len() }
fn peek() -> i64 { var v = Vec::new(); let x = v[0]; v.push(7i64); x }
fn held() -> i32 { let h = Holder(Vec::new()); h.item.push(2); h.item.len() }
fn wrong() -> i32 { var v = Vec::new(); v.unwrap() }
`

func TestOpenReceiverMembers(t *testing.T) {
	f := newFixture(t, openReceivers)
	res := f.body(t, "fill")
	requireClean(t, res)

	_, push := f.exprAt(t, res, "v.push(1)", 0)
	md, ok := push.Dis.(*MethodDis)
	if !ok || !strings.HasSuffix(f.Reg.Display(md.Path), "push") {
		t.Fatalf("v.push(1) = %+v", push.Dis)
	}
	if md.Inst == nil || len(md.Inst.Args) != 1 || f.display(md.Inst.Args[0]) != "i32" {
		t.Fatalf("push instantiation = %+v", md.Inst)
	}
	if len(md.Decl.Params) != 1 || f.display(md.Decl.Params[0].Ty) != "i32" {
		t.Fatalf("push declaration still open: %+v", md.Decl.Params)
	}
	_, l := f.exprAt(t, res, "v.len()", 0)
	if f.display(l.Ty) != "i32" {
		t.Fatalf("len typed %s", f.display(l.Ty))
	}

	res = f.body(t, "peek")
	requireClean(t, res)
	_, elem := f.exprAt(t, res, "v[0]", 0)
	if _, ok := elem.Dis.(*IndexDis); !ok || f.display(elem.Ty) != "i64" {
		t.Fatalf("v[0] = %+v typed %s", elem.Dis, f.display(elem.Ty))
	}

	res = f.body(t, "held")
	requireClean(t, res)
	_, item := f.exprAt(t, res, "h.item", 0)
	if fd, ok := item.Dis.(*FieldDis); !ok || fd.Mode != FieldPropsStruct || f.display(item.Ty) != "Vec<i32>" {
		t.Fatalf("h.item = %+v typed %s", item.Dis, f.display(item.Ty))
	}

	if !hasCode(f.body(t, "wrong").Originals(), diag.InferNoSuchMethod) {
		t.Fatalf("unwrap on a Vec must report NoSuchMethod")
	}
}

func TestConstructorAndStaticGenerics(t *testing.T) {
	f := newFixture(t, methods)
	res := f.body(t, "S", "make")
	requireClean(t, res)

	_, ctor := f.exprAt(t, res, "S(v, Vec::new())", 0)
	cd := ctor.Dis.(*CallDis)
	if !cd.Constructor || cd.Callee != f.Lookup(t, "main", "S") || f.display(ctor.Ty) != "S" {
		t.Fatalf("constructor call = %+v typed %s", cd, f.display(ctor.Ty))
	}
	_, vecNew := f.exprAt(t, res, "Vec::new", 0)
	ed, ok := vecNew.Dis.(*EntityDis)
	if !ok || ed.Inst == nil || len(ed.Inst.Args) != 1 || f.display(ed.Inst.Args[0]) != "i32" {
		t.Fatalf("Vec::new = %+v", vecNew.Dis)
	}
}

func TestGenericInference(t *testing.T) {
	f := newFixture(t, `
fn id<T>(x: T) -> T { x }
fn wide() -> i64 { id(3i64) }
fn lit() -> i32 { let a = 1; let b = 2.5; id(a) }
`)
	res := f.body(t, "wide")
	requireClean(t, res)
	_, call := f.exprAt(t, res, "id(3i64)", 0)
	cd := call.Dis.(*CallDis)
	if cd.Inst == nil || len(cd.Inst.Args) != 1 || f.display(cd.Inst.Args[0]) != "i64" {
		t.Fatalf("id instantiation = %+v", cd.Inst)
	}

	res = f.body(t, "lit")
	requireClean(t, res)
	_, a := f.exprAt(t, res, "1", 0)
	_, b := f.exprAt(t, res, "2.5", 0)
	if f.display(a.Ty) != "i32" || f.display(b.Ty) != "f64" {
		t.Fatalf("literal defaults = %s, %s", f.display(a.Ty), f.display(b.Ty))
	}
}

func TestMismatches(t *testing.T) {
	f := newFixture(t, `
fn ret() -> i32 { true }
fn cond() -> i32 { if 1 { 2 } else { 3 } }
fn unwrap(x: i32) -> i32 { x? }
`)
	cases := []struct {
		fn     string
		code   diag.Code
		needle string
	}{
		{"ret", diag.InferTypeMismatch, "true"},
		{"cond", diag.InferConditionNotBool, "1"},
		{"unwrap", diag.InferUnwrapNonOption, "x?"},
	}
	for _, tc := range cases {
		t.Run(tc.fn, func(t *testing.T) {
			got := f.body(t, tc.fn).Originals()
			if len(got) != 1 || got[0].Code != tc.code {
				t.Fatalf("originals = %v, want one %s", got, tc.code.ID())
			}
			if want := f.Span(t, "main", tc.needle, 0); got[0].Span.Start > want.Start || got[0].Span.End < want.End {
				t.Fatalf("%s anchored at %v", tc.code.ID(), got[0].Span)
			}
		})
	}
}

func TestTrailingIfIsTheBlockValue(t *testing.T) {
	f := newFixture(t, `
fn pick(c: bool) -> i32 { if c { 7 } else { 8 } }
fn nested(c: bool) -> i64 { let a = 1; if c { if a == 1 { 90 } else { 5 } } else { 6 } }
fn stmt(c: bool) { if c { 7; } else { 8; } }
fn half(c: bool) -> i32 { if c { 7 } else { true } }
`)
	res := f.body(t, "pick")
	requireClean(t, res)
	_, seven := f.exprAt(t, res, "7", 0)
	if f.display(seven.Ty) != "i32" {
		t.Fatalf("then branch typed %s", f.display(seven.Ty))
	}
	var values int
	for _, st := range res.Stmts {
		if st.Value {
			values++
		}
	}
	if values != 1 {
		t.Fatalf("value ifs = %d, want 1", values)
	}

	res = f.body(t, "nested")
	requireClean(t, res)
	_, ninety := f.exprAt(t, res, "90", 0)
	if f.display(ninety.Ty) != "i64" {
		t.Fatalf("inner branch typed %s", f.display(ninety.Ty))
	}

	res = f.body(t, "stmt")
	requireClean(t, res)
	for id, st := range res.Stmts {
		if st.Value {
			t.Fatalf("statement if %d marked as a value", id)
		}
	}

	got := f.body(t, "half").Originals()
	if len(got) != 1 || got[0].Code != diag.InferTypeMismatch {
		t.Fatalf("originals = %v, want one TypeMismatch", got)
	}
}

func TestCurryApplication(t *testing.T) {
	f := newFixture(t, `
fn twice(g: i32 -> i32, x: i32) -> i32 { g(g(x)) }
`)
	res := f.body(t, "twice")
	requireClean(t, res)
	_, outer := f.exprAt(t, res, "g(g(x))", 0)
	cd, ok := outer.Dis.(*CallDis)
	if !ok || cd.Mode != CallApplication || len(cd.Groups) != 0 {
		t.Fatalf("g(...) = %+v", outer.Dis)
	}
	if f.display(outer.Ty) != "i32" {
		t.Fatalf("application typed %s", f.display(outer.Ty))
	}
}

func TestInferIsMemoized(t *testing.T) {
	f := newFixture(t, methods)
	key := RegionKey{Path: f.Lookup(t, "main", "use_it")}
	first := f.eng.Infer(key)
	if f.eng.Infer(key) != first {
		t.Fatalf("second Infer recomputed the region")
	}
	if n := f.eng.Computed(); n != 1 {
		t.Fatalf("computed %d regions, want 1", n)
	}
}

func TestInferCtxCancelled(t *testing.T) {
	f := newFixture(t, methods)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.eng.InferCtx(ctx, Regions(f.db))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRegionsAndKeyedDefaults(t *testing.T) {
	f := newFixture(t, grouping)
	keys := Regions(f.db)
	h := f.Lookup(t, "main", "h")
	var body, deflt int
	for _, k := range keys {
		if k.Path != h {
			continue
		}
		switch k.Kind {
		case RegionBody:
			body++
		case RegionKeyedDefault:
			deflt++
			res := f.eng.Infer(k)
			requireClean(t, res)
			if f.display(res.Type(res.Root)) != "i32" {
				t.Fatalf("default of %s typed %s", k.Display(f.Reg), f.display(res.Type(res.Root)))
			}
		}
	}
	if body != 1 || deflt != 1 {
		t.Fatalf("h has %d body and %d default regions", body, deflt)
	}
	results, err := f.eng.InferCtx(context.Background(), keys)
	if err != nil || len(results) != len(keys) {
		t.Fatalf("InferCtx = %d results, %v", len(results), err)
	}
}

func TestLetBindings(t *testing.T) {
	f := newFixture(t, `
fn count() -> i32 {
    var n = 0;
    while n < 10 { n += 1; }
    let s: str = "a";
    var later;
    later = s;
    n
}
`)
	res := f.body(t, "count")
	requireClean(t, res)
	got := map[string]int{}
	for _, st := range res.Stmts {
		got[f.display(res.LocalType(st.Ref))]++
	}
	if got["i32"] != 1 || got["str"] != 2 {
		t.Fatalf("binding types = %v", got)
	}
}
