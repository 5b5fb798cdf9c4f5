package decl

import (
	"testing"

	"husk/internal/diag"
	"husk/internal/term"
	"husk/internal/testkit"
)

const shapes = `
struct S<T> { v: i32, ref g: str, lazy l: i32, data: Vec<T> }
struct P { x: i32 }
enum Color { Red, Green }
trait Show { fn show(self) -> str; }
impl<T> S<T> {
    fn get(self) -> i32 { self.v }
    fn take(own self) -> Vec<T> { self.data }
    fn first(self) -> &T { self.data.first() }
    memo total: i32 = self.v + 1
}
impl Copy for P {}
impl Show for P { fn show(self) -> str { "p" } }
fn f(x: i32, mut y: i32, own z: Vec<i32>, ...rest: i32, key k: i32 = 1) -> i32 { x }
gn lazy_fn(x: i32) -> i32 { x + 1 }
fn id<T>(x: T) -> T { x }
`

func newDB(t *testing.T, src string) (*DB, *testkit.Fixture) {
	t.Helper()
	fx := testkit.Main(t, src)
	return NewDB(fx.Crate, fx.Terms), fx
}

func TestCallFormShape(t *testing.T) {
	db, fx := newDB(t, shapes)
	f, err := db.CallForm(fx.Lookup(t, "main", "f"))
	if err != nil {
		t.Fatalf("decl of f: %v", err)
	}
	c := fx.Terms.Common()
	if f.This != nil || len(f.Params) != 3 || f.Nargs() != 3 {
		t.Fatalf("unexpected arity: this=%v params=%d", f.This, len(f.Params))
	}
	wantLiasons := []term.Liason{term.LiasonPure, term.LiasonMut, term.LiasonMove}
	for i, p := range f.Params {
		if p.Liason != wantLiasons[i] {
			t.Fatalf("param %d liason = %s", i, p.Liason)
		}
	}
	if f.Params[2].Ty != fx.Terms.VecOf(c.I32) {
		t.Fatalf("z type = %s", fx.Terms.Display(f.Params[2].Ty))
	}
	if f.Variadic.Kind != VariadicSingleTyped || f.Variadic.Ty != c.I32 {
		t.Fatalf("variadic template missing")
	}
	if len(f.Keyed) != 1 || !f.Keyed[0].Default.IsValid() {
		t.Fatalf("keyed param missing default")
	}
	if f.Output != c.I32 || f.OutputLiason != OutputTransfer || f.Lazy {
		t.Fatalf("output shape wrong")
	}
	if got := fx.Terms.Display(f.RitchieType(fx.Terms)); got != "fn(i32, mut i32, own Vec<i32>, ...i32, k: i32) -> i32" {
		t.Fatalf("ritchie = %q", got)
	}
	g, _ := db.CallForm(fx.Lookup(t, "main", "lazy_fn"))
	if !g.Lazy {
		t.Fatalf("gn must be lazy")
	}
}

func TestDeclOfIsMemoized(t *testing.T) {
	db, fx := newDB(t, shapes)
	p := fx.Lookup(t, "main", "f")
	a, _ := db.DeclOf(p)
	before := db.Computed()
	b, _ := db.DeclOf(p)
	if a != b {
		t.Fatalf("DeclOf must return the same pointer")
	}
	if db.Computed() != before {
		t.Fatalf("second DeclOf recomputed")
	}
}

func TestMethodsAndMemo(t *testing.T) {
	db, fx := newDB(t, shapes)
	get, err := db.CallForm(fx.Lookup(t, "main", "S", "get"))
	if err != nil || get.This == nil || *get.This != term.LiasonPure || get.Nargs() != 1 {
		t.Fatalf("S::get shape wrong: %v", err)
	}
	first, _ := db.CallForm(fx.Lookup(t, "main", "S", "first"))
	if first.OutputLiason != OutputMemberAccess {
		t.Fatalf("`-> &T` must be member access")
	}
	total, _ := db.CallForm(fx.Lookup(t, "main", "S", "total"))
	if !total.Memo || !total.Lazy || total.OutputLiason != OutputMemberAccess {
		t.Fatalf("memo shape wrong")
	}

	c := fx.Terms.Common()
	s := fx.Terms.TypePath(fx.Lookup(t, "main", "S"))
	recv := fx.Terms.App(s, c.Bool)
	m, err := db.MethodOf(recv, fx.Strings.Intern("take"), fx.Span(t, "main", "take", 0))
	if err != nil {
		t.Fatalf("MethodOf: %v", err)
	}
	if m.Decl.Output != fx.Terms.VecOf(c.Bool) {
		t.Fatalf("impl generics not instantiated: %s", fx.Terms.Display(m.Decl.Output))
	}
	if *m.Decl.This != term.LiasonMove {
		t.Fatalf("own self must be Move")
	}
	if _, err := db.MethodOf(recv, fx.Strings.Intern("nope"), fx.Span(t, "main", "take", 0)); err == nil || err.Code != diag.InferNoSuchMethod {
		t.Fatalf("expected no-such-method, got %v", err)
	}
	vecLen, err := db.MethodOf(fx.Terms.VecOf(c.I32), fx.Strings.Intern("len"), fx.Span(t, "main", "take", 0))
	if err != nil || !vecLen.Decl.Static || vecLen.Decl.Output != c.I32 {
		t.Fatalf("builtin Vec::len: %v", err)
	}
}

func TestFieldOfAndCopy(t *testing.T) {
	db, fx := newDB(t, shapes)
	c := fx.Terms.Common()
	s := fx.Terms.App(fx.Terms.TypePath(fx.Lookup(t, "main", "S")), c.Str)
	f, ty, ok := db.FieldOf(s, fx.Strings.Intern("data"))
	if !ok || ty != fx.Terms.VecOf(c.Str) || f.Liason != FieldOwn {
		t.Fatalf("field data wrong")
	}
	if g, _, _ := db.FieldOf(s, fx.Strings.Intern("g")); g.Liason != FieldGlobalRef {
		t.Fatalf("ref field must be global-ref")
	}
	if l, _, _ := db.FieldOf(s, fx.Strings.Intern("l")); l.Liason != FieldLazyOwn {
		t.Fatalf("lazy field must be lazy-own")
	}
	cases := []struct {
		ty   term.Term
		want bool
	}{
		{c.I32, true},
		{c.Str, true},
		{fx.Terms.VecOf(c.I32), false},
		{fx.Terms.OptionOf(c.I32), true},
		{fx.Terms.OptionOf(fx.Terms.VecOf(c.I32)), false},
		{fx.Terms.TypePath(fx.Lookup(t, "main", "Color")), true},
		{fx.Terms.TypePath(fx.Lookup(t, "main", "P")), true},
		{s, false},
	}
	for i, tc := range cases {
		if got := db.IsCopyable(tc.ty); got != tc.want {
			t.Fatalf("case %d %s: copyable=%v", i, fx.Terms.Display(tc.ty), got)
		}
	}
}

func TestInstantiateKeepsOriginal(t *testing.T) {
	db, fx := newDB(t, shapes)
	id, _ := db.CallForm(fx.Lookup(t, "main", "id"))
	c := fx.Terms.Common()
	inst := &term.Instantiation{Symbols: id.Symbols(), Args: []term.Term{c.F64}}
	got := id.Instantiate(fx.Terms, inst)
	if got == id || got.Output != c.F64 || got.Params[0].Ty != c.F64 || len(got.Generics) != 0 {
		t.Fatalf("instantiation wrong: %s", fx.Terms.Display(got.Output))
	}
	if id.Output == c.F64 || len(id.Generics) != 1 {
		t.Fatalf("original declaration was modified")
	}
	if got.Nargs() != id.Nargs() {
		t.Fatalf("instantiation changed arity")
	}
}

func TestMalformedSignatures(t *testing.T) {
	db, fx := newDB(t, `
fn a(x i32) -> i32 { 1 }
fn b(x: i32) -> { 1 }
fn c(x: i32, x: bool) -> i32 { 1 }
fn d(self) -> i32 { 1 }
fn e(x: Nope) -> i32 { 1 }
fn g(x: Type) -> i32 { 1 }
fn h(x: Vec) -> i32 { 1 }
`)
	want := map[string]diag.Code{
		"a": diag.DeclMalformedSignature,
		"b": diag.DeclMalformedSignature,
		"c": diag.DeclDuplicateParameter,
		"d": diag.DeclSelfOutsideImpl,
		"e": diag.PathUnresolvedRootIdent,
		"g": diag.TermExpectFinalDestinationEqsNonSortTypePath,
		"h": diag.TermGenericArity,
	}
	for name, code := range want {
		d, err := db.DeclOf(fx.Lookup(t, "main", name))
		if err == nil || d == nil {
			t.Fatalf("%s: expected a partial decl and an error", name)
		}
		if err.Origin != diag.OriginDerived || err.Code != code {
			t.Fatalf("%s: callers must see a derived %s, got %v", name, code.ID(), err)
		}
	}
	codes := map[diag.Code]int{}
	for _, e := range db.Errors() {
		if e.Origin != diag.OriginOriginal {
			t.Fatalf("db errors must be original")
		}
		codes[e.Code]++
	}
	for name, code := range want {
		if codes[code] == 0 {
			t.Fatalf("%s: no original %s recorded", name, code.ID())
		}
	}
}

func TestCheckTraitImpl(t *testing.T) {
	db, fx := newDB(t, `
trait Show { fn show(self) -> str; fn size(self) -> i32; }
struct A { v: i32 }
impl Show for A {
    fn show(self) -> i32 { 1 }
    fn extra(self) -> i32 { 2 }
}
`)
	m, _ := fx.Crate.ModuleByName("main")
	if len(m.Impls) != 1 {
		t.Fatalf("expected one impl")
	}
	codes := map[diag.Code]int{}
	for _, e := range db.CheckTraitImpl(m.Impls[0]) {
		codes[e.Code]++
	}
	if codes[diag.DeclImplFailed] != 2 || codes[diag.DeclUnknownTraitItem] != 1 {
		t.Fatalf("unexpected trait impl errors: %v", codes)
	}
}
