package hir

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"husk/internal/ast"
	"husk/internal/contract"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/sema"
	"husk/internal/testkit"
)

type fixture struct {
	*testkit.Fixture
	db  *decl.DB
	eng *contract.Engine
}

func newFixture(t *testing.T, src string) fixture {
	t.Helper()
	fx := testkit.Main(t, src)
	db := decl.NewDB(fx.Crate, fx.Terms)
	return fixture{Fixture: fx, db: db, eng: contract.NewEngine(sema.NewEngine(db, nil))}
}

func (f fixture) key(t *testing.T, segments ...string) sema.RegionKey {
	t.Helper()
	return sema.RegionKey{Path: f.Lookup(t, "main", segments...)}
}

func (f fixture) lower(t *testing.T, segments ...string) *Region {
	t.Helper()
	key := f.key(t, segments...)
	r, err := Lower(f.db, f.eng.Sema.Infer(key), f.eng.Of(key))
	if err != nil {
		t.Fatalf("lower %v: %v", segments, err)
	}
	return r
}

func eagerRoot(t *testing.T, r *Region) (*EagerBody, *Expr[contract.Contract]) {
	t.Helper()
	if r.Eager == nil {
		t.Fatalf("region %v is not eager", r.Key)
	}
	if err := r.Eager.Arena.Validate(); err != nil {
		t.Fatalf("arena: %v", err)
	}
	return r.Eager, r.Eager.Arena.Expr(r.Eager.Root)
}

// trailing returns the value of a block node.
func trailing[B Binding](t *testing.T, a *Arena[B], e *Expr[B]) *Expr[B] {
	t.Helper()
	b, ok := e.Data.(*Block)
	if !ok || !b.Value.IsValid() {
		t.Fatalf("expected a block with a value, got %s", Kind(e.Data))
	}
	return a.Expr(b.Value)
}

const program = `
struct S { v: i32, data: Vec<i32> }
impl S {
    fn get(self) -> i32 { self.v }
    memo total: i32 = self.v + 1
}
fn f(x: i32) -> i32 { x }
fn g() -> i32 { f(3) }
fn h(a: i32, ...rest: i32, key k: i32 = 1, key j: bool) -> i32 { a }
fn grouped() -> i32 { h(j = true, 1, 2, 3) }
fn use_s(s: S) -> i32 { s.get() + s.total + s.data[0] }
fn make(v: i32) -> S { S(v, [v, 2]) }
fn twice(g: i32 -> i32, x: i32) -> i32 { g(x) }
fn stmts() -> i32 {
    var n = 0;
    while n < 3 { n += 1; }
    if n == 3 { n++; } else { n = 0; }
    let t = (n, true);
    return n;
}
gn lazy_sum(x: i32) -> i32 { x + 1 }
fn calls_gn() -> i32 { lazy_sum(2) }
fn choose(c: bool) -> i32 { if c { 7 } else { 8 } }
`

func TestSimpleCallLowersToFnCall(t *testing.T) {
	f := newFixture(t, program)
	body, root := eagerRoot(t, f.lower(t, "g"))
	call, ok := trailing(t, body.Arena, root).Data.(*FnCall)
	if !ok || call.Path != f.Lookup(t, "main", "f") {
		t.Fatalf("g lowers to %s", Kind(trailing(t, body.Arena, root).Data))
	}
	if len(call.Groups) != 1 || call.Groups[0].Kind != sema.GroupRegular || len(call.Groups[0].Args) != 1 {
		t.Fatalf("groups = %+v", call.Groups)
	}
	arg := body.Arena.Expr(call.Groups[0].Args[0])
	lit, ok := arg.Data.(*Literal)
	if !ok || lit.Text != "3" || arg.Binding != contract.Pure {
		t.Fatalf("argument = %s %+v [%s]", Kind(arg.Data), arg.Data, arg.Binding)
	}
}

func TestKeyedArgumentsFollowDeclarationOrder(t *testing.T) {
	f := newFixture(t, program)
	body, root := eagerRoot(t, f.lower(t, "grouped"))
	call := trailing(t, body.Arena, root).Data.(*FnCall)
	type group struct {
		Kind    sema.GroupKind
		Ident   string
		Texts   []string
		Default bool
	}
	var got []group
	for _, g := range call.Groups {
		gr := group{Kind: g.Kind, Ident: g.Ident, Default: g.Default}
		for _, a := range g.Args {
			gr.Texts = append(gr.Texts, body.Arena.Expr(a).Data.(*Literal).Text)
		}
		got = append(got, gr)
	}
	want := []group{
		{Kind: sema.GroupRegular, Ident: "a", Texts: []string{"1"}},
		{Kind: sema.GroupVariadic, Ident: "rest", Texts: []string{"2", "3"}},
		{Kind: sema.GroupKeyed, Ident: "k", Default: true},
		{Kind: sema.GroupKeyed, Ident: "j", Texts: []string{"true"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("groups (-want +got):\n%s", diff)
	}
}

func TestMethodsFieldsAndIndex(t *testing.T) {
	f := newFixture(t, program)
	body, root := eagerRoot(t, f.lower(t, "use_s"))
	sum := trailing(t, body.Arena, root).Data.(*Binary)
	left := body.Arena.Expr(sum.Left).Data.(*Binary)

	call, ok := body.Arena.Expr(left.Left).Data.(*MethodFnCall)
	if !ok || call.Path != f.Lookup(t, "main", "S", "get") {
		t.Fatalf("s.get() lowers to %s", Kind(body.Arena.Expr(left.Left).Data))
	}
	self := body.Arena.Expr(call.Self)
	if v, ok := self.Data.(*Variable); !ok || v.Ident != "s" || self.Binding != contract.Pure {
		t.Fatalf("receiver = %+v [%s]", self.Data, self.Binding)
	}
	if memo, ok := body.Arena.Expr(left.Right).Data.(*MemoizedField); !ok || memo.Path != f.Lookup(t, "main", "S", "total") {
		t.Fatalf("s.total lowers to %s", Kind(body.Arena.Expr(left.Right).Data))
	}
	ix, ok := body.Arena.Expr(sum.Right).Data.(*Index)
	if !ok || len(ix.Indices) != 1 {
		t.Fatalf("s.data[0] lowers to %s", Kind(body.Arena.Expr(sum.Right).Data))
	}
	if fd, ok := body.Arena.Expr(ix.Owner).Data.(*PropsStructField); !ok || fd.Ident != "data" || fd.Index != 1 {
		t.Fatalf("s.data lowers to %+v", body.Arena.Expr(ix.Owner).Data)
	}
}

func TestConstructorApplicationAndStatements(t *testing.T) {
	f := newFixture(t, program)
	body, root := eagerRoot(t, f.lower(t, "make"))
	ctor, ok := trailing(t, body.Arena, root).Data.(*TypeConstructorCall)
	if !ok || ctor.Path != f.Lookup(t, "main", "S") || len(ctor.Groups) != 2 {
		t.Fatalf("S(...) lowers to %+v", trailing(t, body.Arena, root).Data)
	}
	list := body.Arena.Expr(ctor.Groups[1].Args[0])
	if l, ok := list.Data.(*NewList); !ok || len(l.Items) != 2 || list.Binding != contract.Move {
		t.Fatalf("list argument = %+v [%s]", list.Data, list.Binding)
	}

	body, root = eagerRoot(t, f.lower(t, "twice"))
	if app, ok := trailing(t, body.Arena, root).Data.(*Application); !ok || len(app.Args) != 1 {
		t.Fatalf("g(x) lowers to %s", Kind(trailing(t, body.Arena, root).Data))
	}

	body, root = eagerRoot(t, f.lower(t, "stmts"))
	block := root.Data.(*Block)
	var kinds []string
	for _, s := range block.Stmts {
		kinds = append(kinds, Kind(body.Arena.Stmt(s).Data))
	}
	if diff := cmp.Diff([]string{"Var", "While", "If", "Let", "Return"}, kinds); diff != "" {
		t.Fatalf("statements (-want +got):\n%s", diff)
	}

	body, root = eagerRoot(t, f.lower(t, "calls_gn"))
	if _, ok := trailing(t, body.Arena, root).Data.(*GnCall); !ok {
		t.Fatalf("lazy_sum(2) lowers to %s", Kind(trailing(t, body.Arena, root).Data))
	}
}

func TestTrailingIfIsTheBlockValue(t *testing.T) {
	f := newFixture(t, program)
	body, root := eagerRoot(t, f.lower(t, "choose"))
	block := root.Data.(*Block)
	if block.Value.IsValid() || len(block.Stmts) != 1 {
		t.Fatalf("choose body = %+v", block)
	}
	is, ok := body.Arena.Stmt(block.Stmts[0]).Data.(*If)
	if !ok || !is.Value || !is.Else.IsValid() {
		t.Fatalf("trailing statement = %+v", body.Arena.Stmt(block.Stmts[0]).Data)
	}
	for _, branch := range []ExprIdx{is.Then, is.Else} {
		lit := trailing(t, body.Arena, body.Arena.Expr(branch))
		if lit.Binding != contract.Pure {
			t.Fatalf("branch value bound %s, want pure", lit.Binding)
		}
	}

	body, root = eagerRoot(t, f.lower(t, "stmts"))
	for _, s := range root.Data.(*Block).Stmts {
		if is, ok := body.Arena.Stmt(s).Data.(*If); ok && is.Value {
			t.Fatalf("statement if marked as a value")
		}
	}
}

func TestLazyBodies(t *testing.T) {
	f := newFixture(t, program)
	for _, path := range [][]string{{"lazy_sum"}, {"S", "total"}} {
		r := f.lower(t, path...)
		if r.Lazy == nil || r.Eager != nil {
			t.Fatalf("%v is not lowered lazily", path)
		}
		if err := r.Lazy.Arena.Validate(); err != nil {
			t.Fatalf("%v: %v", path, err)
		}
		if q := r.Lazy.Arena.Expr(r.Lazy.Root).Binding; q != contract.Copyable {
			t.Fatalf("%v root qualified %s", path, q)
		}
	}
}

func TestInconsistentDisambiguationPanics(t *testing.T) {
	f := newFixture(t, program)
	key := f.key(t, "use_s")
	res := f.eng.Sema.Infer(key)
	cr := f.eng.Of(key)
	var method ast.ExprID
	for id := range res.Exprs {
		if f.Builder.Exprs.Get(id).Kind == ast.ExprMethodCall {
			method = id
		}
	}
	saved := res.Exprs[method].Dis
	res.Exprs[method].Dis = &sema.CallDis{Mode: sema.CallApplication}
	defer func() {
		res.Exprs[method].Dis = saved
		r := recover()
		if _, ok := r.(*diag.InternalError); !ok {
			t.Fatalf("recovered %v, want an internal error", r)
		}
	}()
	_, _ = Lower(f.db, res, cr)
	t.Fatalf("lowering did not panic")
}

func TestBrokenRegionIsNotLowered(t *testing.T) {
	f := newFixture(t, `fn bad() -> i32 { let x = []; 0 }`)
	key := f.key(t, "bad")
	_, err := Lower(f.db, f.eng.Sema.Infer(key), f.eng.Of(key))
	if !errors.Is(err, ErrNotLowerable) {
		t.Fatalf("err = %v", err)
	}
}

func TestDump(t *testing.T) {
	f := newFixture(t, program)
	m := NewModule("main", f.Lookup(t, "main"))
	m.Add(f.lower(t, "grouped"))
	m.Add(f.lower(t, "g"))
	m.Sort()
	if m.Regions[0].Key.Path != f.Lookup(t, "main", "g") {
		t.Fatalf("regions not sorted")
	}
	var buf bytes.Buffer
	if err := Dump(&buf, f.db, m); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"region main::g [eager] -> i32",
		"FnCall main::f (x: [%1])",
		"FnCall main::h (a: [%1], ...rest: [%2, %3], k = default, j = [%4])",
		"Literal 3 : i32 [pure]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump lacks %q:\n%s", want, out)
		}
	}
}
