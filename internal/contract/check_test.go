package contract

import (
	"testing"

	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/sema"
	"husk/internal/testkit"
)

type fixture struct {
	*testkit.Fixture
	eng *Engine
}

func newFixture(t *testing.T, src string) fixture {
	t.Helper()
	fx := testkit.Main(t, src)
	db := decl.NewDB(fx.Crate, fx.Terms)
	return fixture{Fixture: fx, eng: NewEngine(sema.NewEngine(db, nil))}
}

func (f fixture) check(t *testing.T, segments ...string) *Result {
	t.Helper()
	key := sema.RegionKey{Path: f.Lookup(t, "main", segments...)}
	if res := f.eng.Sema.Infer(key); !res.Ok() {
		t.Fatalf("%v does not type: %v", segments, res.Errors)
	}
	return f.eng.Of(key)
}

func (f fixture) exprAt(t *testing.T, needle string, n int) ast.ExprID {
	t.Helper()
	return f.exprPrefix(t, needle, n, len(needle))
}

// exprPrefix finds the expression spanning the first size bytes of the n-th needle.
func (f fixture) exprPrefix(t *testing.T, needle string, n, size int) ast.ExprID {
	t.Helper()
	span := f.Span(t, "main", needle, n)
	span.End = span.Start + uint32(size)
	for id := ast.ExprID(1); uint32(id) <= f.Builder.Exprs.Len(); id++ {
		if f.Builder.Exprs.Get(id).Span == span {
			return id
		}
	}
	t.Fatalf("no expression spans %q #%d", needle, n)
	return ast.NoExprID
}

// ownerOf returns the owner of a field access or the receiver of a method call.
func (f fixture) ownerOf(t *testing.T, needle string, n int) ast.ExprID {
	t.Helper()
	id := f.exprAt(t, needle, n)
	if fd, ok := f.Builder.Exprs.Field(id); ok {
		return fd.Owner
	}
	if md, ok := f.Builder.Exprs.MethodCall(id); ok {
		return md.Receiver
	}
	t.Fatalf("%q #%d has no owner", needle, n)
	return ast.NoExprID
}

func wantContractOf(t *testing.T, res *Result, id ast.ExprID, want Contract) {
	t.Helper()
	if got, ok := res.Contract(id); !ok || got != want {
		t.Fatalf("contract of expression %d = %s (%t), want %s", id, got, ok, want)
	}
}

func (f fixture) wantContract(t *testing.T, res *Result, needle string, n int, want Contract) {
	t.Helper()
	got, ok := res.Contract(f.exprAt(t, needle, n))
	if !ok || got != want {
		t.Fatalf("contract of %q #%d = %s (%t), want %s", needle, n, got, ok, want)
	}
}

func (f fixture) wantQualifier(t *testing.T, res *Result, needle string, n int, want Qualifier) {
	t.Helper()
	got, ok := res.Qualifier(f.exprAt(t, needle, n))
	if !ok || got != want {
		t.Fatalf("qualifier of %q #%d = %s (%t), want %s", needle, n, got, ok, want)
	}
}

func wantCodes(t *testing.T, res *Result, codes ...diag.Code) {
	t.Helper()
	if len(res.Errors) != len(codes) {
		t.Fatalf("errors = %v, want %d", res.Errors, len(codes))
	}
	for i, err := range res.Errors {
		if err.Code != codes[i] || err.Origin != diag.OriginOriginal {
			t.Fatalf("error %d = %v, want original %s", i, err, codes[i].ID())
		}
	}
}

const owners = `
struct S { v: i32, data: Vec<i32> }
impl S {
    fn get(self) -> i32 { self.v }
    fn take(own self) -> Vec<i32> { return self.data; }
    fn peek(self) -> Vec<i32> { self.data }
    fn set(self) { self.v = 2; }
    fn first(self) -> &Vec<i32> { let d = Vec::new(); d }
    memo total: i32 = self.v + 1
}
fn f(x: i32) -> i32 { x }
fn g() -> i32 { f(3) }
fn use_get(s: S) -> i32 { s.get() }
`

func TestSimpleCallArgumentIsPure(t *testing.T) {
	f := newFixture(t, owners)
	res := f.check(t, "g")
	wantCodes(t, res)
	call := f.exprAt(t, "f(3)", 0)
	cd, ok := f.Builder.Exprs.Call(call)
	if !ok || len(cd.Args) != 1 {
		t.Fatalf("f(3) is not a one-argument call")
	}
	wantContractOf(t, res, cd.Args[0].Value, Pure)
	wantContractOf(t, res, call, Pure)
}

func TestMethodReceiverOfCopyableReturn(t *testing.T) {
	f := newFixture(t, owners)
	res := f.check(t, "S", "get")
	wantCodes(t, res)
	f.wantContract(t, res, "self.v", 0, Pure)
	wantContractOf(t, res, f.ownerOf(t, "self.v", 0), Pure)

	res = f.check(t, "use_get")
	wantCodes(t, res)
	f.wantContract(t, res, "s.get()", 0, Pure)
	wantContractOf(t, res, f.ownerOf(t, "s.get()", 0), Pure)
}

func TestNonCopyableFieldIsMoved(t *testing.T) {
	f := newFixture(t, owners)
	res := f.check(t, "S", "take")
	wantCodes(t, res)
	f.wantContract(t, res, "self.data", 0, Move)
	wantContractOf(t, res, f.ownerOf(t, "self.data", 0), Move)

	res = f.check(t, "S", "peek")
	f.wantContract(t, res, "self.data", 1, Move)
	wantCodes(t, res, diag.ContractMoveFromPureParameter)
}

func TestReceiverChecks(t *testing.T) {
	f := newFixture(t, owners)
	wantCodes(t, f.check(t, "S", "set"), diag.ContractMutateThroughPureReceiver)
	wantCodes(t, f.check(t, "S", "first"), diag.ContractReturnBorrowOfLocal)
}

func TestBindingChecks(t *testing.T) {
	f := newFixture(t, `
struct G { ref g: str, lazy l: Vec<i32>, v: i32 }
fn assign_let() -> i32 { let n = 0; n = 2; n }
fn assign_var() -> i32 { var n = 0; n += 2; n }
fn assign_param(x: i32) -> i32 { x = 1; x }
fn move_param(v: Vec<i32>) -> i32 { let a = v; 0 }
fn move_owned(own v: Vec<i32>) -> i32 { let a = v; 0 }
fn move_elem(own v: Vec<Vec<i32>>) -> Vec<i32> { v[0] }
fn copy_elem(v: Vec<i32>) -> i32 { v[0] }
fn write_ref(mut x: G) -> i32 { x.g = "a"; 0 }
fn move_lazy(own x: G) -> Vec<i32> { x.l }
fn push_let() -> i32 { let v = Vec::new(); v.push(1); 0 }
fn push_var() -> i32 { var v = Vec::new(); v.push(1); v.len() }
fn bump(x: i32) -> i32 { x++; x }
fn not_place() -> i32 { f() = 1; 0 }
fn f() -> i32 { 0 }
`)
	cases := []struct {
		fn    string
		codes []diag.Code
	}{
		{"assign_let", []diag.Code{diag.ContractMutateImmutable}},
		{"assign_var", nil},
		{"assign_param", []diag.Code{diag.ContractMutatePureParameter}},
		{"move_param", []diag.Code{diag.ContractMoveFromPureParameter}},
		{"move_owned", nil},
		{"move_elem", []diag.Code{diag.ContractMoveOutOfElement}},
		{"copy_elem", nil},
		{"write_ref", []diag.Code{diag.ContractMutateGlobalRef}},
		{"move_lazy", []diag.Code{diag.ContractMoveLazyField}},
		{"push_let", []diag.Code{diag.ContractMutateImmutable}},
		{"push_var", nil},
		{"bump", []diag.Code{diag.ContractMutatePureParameter}},
		{"not_place", []diag.Code{diag.ContractAssignNotPlace}},
	}
	for _, tc := range cases {
		t.Run(tc.fn, func(t *testing.T) {
			wantCodes(t, f.check(t, tc.fn), tc.codes...)
		})
	}
}

func TestLetInitContracts(t *testing.T) {
	f := newFixture(t, `
struct S { v: i32, data: Vec<i32> }
fn inits(own s: S) -> i32 {
    let a = s.v;
    var b = s.data;
    let c = 1;
    a + c
}
`)
	res := f.check(t, "inits")
	wantCodes(t, res)
	f.wantContract(t, res, "s.v", 0, UseMemberForLetInit)
	f.wantContract(t, res, "s.data", 0, UseMemberForVarInit)
	f.wantContract(t, res, "1", 0, LetInit)
	wantContractOf(t, res, f.ownerOf(t, "s.data", 0), Move)
}

func TestValueIfBranchesTakeTheBlockContract(t *testing.T) {
	f := newFixture(t, `
fn pick(c: bool, own a: Vec<i32>, own b: Vec<i32>) -> Vec<i32> { if c { a } else { b } }
fn pick_pure(c: bool, a: Vec<i32>, own b: Vec<i32>) -> Vec<i32> { if c { a } else { b } }
fn count(c: bool, a: Vec<i32>) -> i32 { if c { a.len() } else { 0 } }
gn lend(c: bool, a: Vec<i32>) -> Vec<i32> { if c { a } else { a } }
gn give(c: bool, own a: Vec<i32>) -> Vec<i32> { if c { a } else { a } }
`)
	res := f.check(t, "pick")
	wantCodes(t, res)
	wantContractOf(t, res, f.exprPrefix(t, "c {", 0, 1), Pure)
	wantContractOf(t, res, f.exprPrefix(t, "a }", 0, 1), Move)
	wantContractOf(t, res, f.exprPrefix(t, "b }", 0, 1), Move)

	wantCodes(t, f.check(t, "pick_pure"), diag.ContractMoveFromPureParameter)

	res = f.check(t, "count")
	wantCodes(t, res)
	f.wantContract(t, res, "a.len()", 0, Pure)

	wantCodes(t, f.check(t, "lend"), diag.ContractMoveFromReference)
	wantCodes(t, f.check(t, "give"))
}

func TestLazyQualifiers(t *testing.T) {
	f := newFixture(t, owners+`
gn keep(x: Vec<i32>) -> Vec<i32> { x }
gn owned(own x: Vec<i32>) -> Vec<i32> { x }
gn read(x: S) -> i32 { let d = x.data; d.len() + x.v }
gn fresh() -> Vec<i32> { let v = [1, 2]; v }
gn store(x: Vec<i32>) -> i32 { let l = [x]; 0 }
`)
	res := f.check(t, "keep")
	if !res.Lazy || res.Contracts != nil {
		t.Fatalf("gn body not checked lazily")
	}
	wantCodes(t, res, diag.ContractMoveFromReference)
	if q, _ := res.Qualifier(f.exprPrefix(t, "x }", 1, 1)); q != PureRef {
		t.Fatalf("returned parameter qualified %s", q)
	}

	wantCodes(t, f.check(t, "owned"))

	res = f.check(t, "read")
	wantCodes(t, res)
	f.wantQualifier(t, res, "x.data", 0, PureRef)
	f.wantQualifier(t, res, "d.len()", 0, Copyable)
	f.wantQualifier(t, res, "x.v", 0, Copyable)

	res = f.check(t, "fresh")
	wantCodes(t, res)
	f.wantQualifier(t, res, "[1, 2]", 0, Transient)

	wantCodes(t, f.check(t, "store"), diag.ContractMoveFromReference)

	res = f.check(t, "S", "total")
	wantCodes(t, res)
	f.wantQualifier(t, res, "self.v + 1", 0, Copyable)
}

func TestSkippedAndMemoized(t *testing.T) {
	f := newFixture(t, `fn broken() -> i32 { nope }`)
	key := sema.RegionKey{Path: f.Lookup(t, "main", "broken")}
	res := f.eng.Of(key)
	if !res.Skipped || res.Ok() || len(res.Errors) != 0 {
		t.Fatalf("broken region = %+v", res)
	}
	if f.eng.Of(key) != res {
		t.Fatalf("contracts recomputed")
	}
}
