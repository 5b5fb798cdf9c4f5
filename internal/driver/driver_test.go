package driver

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"husk/internal/contract"
	"husk/internal/diag"
	"husk/internal/hir"
	"husk/internal/sema"
)

func writeCrate(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func run(t *testing.T, opts Options) *Result {
	t.Helper()
	res, err := Check(context.Background(), opts)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	return res
}

// region finds a region by the tail of its display name. Methods display
// under their impl block, as in `<main::S>::get`.
func region(t *testing.T, res *Result, name string) *RegionOutcome {
	t.Helper()
	reg := res.DB.Reg()
	for i := range res.Regions {
		if strings.HasSuffix(res.Regions[i].Key.Display(reg), name) {
			return &res.Regions[i]
		}
	}
	t.Fatalf("no region %s", name)
	return nil
}

func trailing(t *testing.T, r *hir.Region) *hir.Expr[contract.Contract] {
	t.Helper()
	if r == nil || r.Eager == nil {
		t.Fatalf("region was not lowered eagerly")
	}
	root := r.Eager.Arena.Expr(r.Eager.Root)
	b, ok := root.Data.(*hir.Block)
	if !ok || !b.Value.IsValid() {
		t.Fatalf("root is %s", hir.Kind(root.Data))
	}
	return r.Eager.Arena.Expr(b.Value)
}

type summary struct {
	Sev     diag.Severity
	Code    diag.Code
	Message string
	Start   uint32
	End     uint32
}

func summarize(bag *diag.Bag) []summary {
	var out []summary
	for _, d := range bag.Items() {
		out = append(out, summary{d.Severity, d.Code, d.Message, d.Primary.Start, d.Primary.End})
	}
	return out
}

const owners = `struct S { v: i32, data: Vec<i32> }
impl S {
    fn get(self) -> i32 { self.v }
    fn take(own self) -> Vec<i32> { return self.data; }
}
fn f(x: i32) -> i32 { x }
fn g() -> i32 { f(3) }
fn use_get(s: S) -> i32 { s.get() }
`

func TestSimpleCallIsLoweredWithPureArgument(t *testing.T) {
	dir := writeCrate(t, map[string]string{"main.hk": owners})
	res := run(t, Options{Paths: []string{dir}, Lower: true})
	if res.Bag.Len() != 0 {
		t.Fatalf("diagnostics: %+v", summarize(res.Bag))
	}
	g := region(t, res, "main::g")
	call, ok := trailing(t, g.HIR).Data.(*hir.FnCall)
	if !ok || res.DB.Reg().Display(call.Path) != "main::f" {
		t.Fatalf("g lowers to %s", hir.Kind(trailing(t, g.HIR).Data))
	}
	arg := g.HIR.Eager.Arena.Expr(call.Groups[0].Args[0])
	if arg.Binding != contract.Pure {
		t.Fatalf("argument contract = %s", arg.Binding)
	}
	if len(res.Modules) != 1 || len(res.Modules[0].Regions) == 0 {
		t.Fatalf("modules = %+v", res.Modules)
	}
}

func TestMethodCallReceiverIsPure(t *testing.T) {
	dir := writeCrate(t, map[string]string{"main.hk": owners})
	res := run(t, Options{Paths: []string{dir}, Lower: true})
	r := region(t, res, "main::use_get")
	call, ok := trailing(t, r.HIR).Data.(*hir.MethodFnCall)
	if !ok || res.DB.Reg().Display(call.Path) != "<main::S>::get" {
		t.Fatalf("s.get() lowers to %s", hir.Kind(trailing(t, r.HIR).Data))
	}
	if self := r.HIR.Eager.Arena.Expr(call.Self); self.Binding != contract.Pure {
		t.Fatalf("receiver contract = %s", self.Binding)
	}
}

func TestReturnedFieldIsMoved(t *testing.T) {
	dir := writeCrate(t, map[string]string{"main.hk": owners})
	res := run(t, Options{Paths: []string{dir}, Lower: true})
	r := region(t, res, ">::take")
	a := r.HIR.Eager.Arena
	var found bool
	for i := 1; i <= a.Len(); i++ {
		e := a.Expr(hir.ExprIdx(i))
		if fd, ok := e.Data.(*hir.PropsStructField); ok && fd.Ident == "data" {
			found = true
			if e.Binding != contract.Move {
				t.Fatalf("self.data contract = %s", e.Binding)
			}
		}
	}
	if !found {
		t.Fatalf("no field access in take")
	}
}

func TestEmptyListIsDerivedOnly(t *testing.T) {
	dir := writeCrate(t, map[string]string{"main.hk": "fn bare() { let x = []; }\n"})
	res := run(t, Options{Paths: []string{dir}, Lower: true})
	if res.Bag.Len() != 0 {
		t.Fatalf("derived errors reached the bag: %+v", summarize(res.Bag))
	}
	r := region(t, res, "main::bare")
	if r.HIR != nil {
		t.Fatalf("a region with errors was lowered")
	}
	derived := slices.ContainsFunc(r.Sema.Errors, func(e *diag.Error) bool {
		return e.Code == diag.InferAmbiguateListExpr && e.Origin == diag.OriginDerived
	})
	if !derived {
		t.Fatalf("errors = %v", r.Sema.Errors)
	}
}

func TestUnresolvedNameIsReportedOnce(t *testing.T) {
	src := "fn g() -> i32 { let a = nope + 1; a * 2 }\n"
	dir := writeCrate(t, map[string]string{"main.hk": src})
	res := run(t, Options{Paths: []string{dir}})
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.PathUnresolvedRootIdent {
		t.Fatalf("diagnostics: %+v", summarize(res.Bag))
	}
	sp := items[0].Primary
	if got := src[sp.Start:sp.End]; got != "nope" {
		t.Fatalf("diagnostic anchored at %q", got)
	}
}

func TestParallelismDoesNotChangeDiagnostics(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"main.hk": owners + "fn broken() -> i32 { missing }\n",
		"util.hk": "fn twice(x: i32) -> i32 { x * 2 }\nfn bad() -> bool { 1 }\n",
	})
	serial := run(t, Options{Paths: []string{dir}, Jobs: 1})
	parallel := run(t, Options{Paths: []string{dir}, Jobs: 8})
	if serial.Bag.Len() == 0 {
		t.Fatalf("expected diagnostics")
	}
	if diff := cmp.Diff(summarize(serial.Bag), summarize(parallel.Bag)); diff != "" {
		t.Fatalf("diagnostics differ (-serial +parallel):\n%s", diff)
	}
}

func TestCacheServesUnchangedCrate(t *testing.T) {
	dir := writeCrate(t, map[string]string{"main.hk": "fn g() -> i32 { nope }\n"})
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	first := run(t, Options{Paths: []string{dir}, Cache: cache, ToolVersion: "test"})
	if first.Cached {
		t.Fatalf("first run was served from the cache")
	}
	second := run(t, Options{Paths: []string{dir}, Cache: cache, ToolVersion: "test"})
	if !second.Cached || second.DB != nil {
		t.Fatalf("second run was not served from the cache")
	}
	if diff := cmp.Diff(summarize(first.Bag), summarize(second.Bag)); diff != "" {
		t.Fatalf("cached diagnostics differ (-fresh +cached):\n%s", diff)
	}

	third := run(t, Options{Paths: []string{dir}, Cache: cache, ToolVersion: "other"})
	if third.Cached {
		t.Fatalf("a different tool version hit the cache")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if again := run(t, Options{Paths: []string{dir}, Cache: cache, ToolVersion: "test"}); again.Cached {
		t.Fatalf("a dropped entry was served")
	}
}

type collect struct {
	mu     sync.Mutex
	events []Event
}

func (c *collect) OnEvent(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func TestProgressEvents(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"main.hk": "fn g() -> i32 { 1 }\n",
		"util.hk": "fn h() -> i32 { nope }\n",
	})
	sink := &collect{}
	run(t, Options{Paths: []string{dir}, Lower: true, Progress: sink})

	var stages []Stage
	final := map[string]Status{}
	for _, e := range sink.events {
		if e.File == "" && e.Status == StatusDone {
			stages = append(stages, e.Stage)
		}
		if e.File != "" {
			final[filepath.Base(e.File)] = e.Status
		}
	}
	want := []Stage{StageParse, StageDecl, StageInfer, StageContract, StageLower}
	if diff := cmp.Diff(want, stages); diff != "" {
		t.Fatalf("stages (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]Status{"main.hk": StatusDone, "util.hk": StatusError}, final); diff != "" {
		t.Fatalf("file status (-want +got):\n%s", diff)
	}
}

func TestRegionsCoverEveryBody(t *testing.T) {
	dir := writeCrate(t, map[string]string{"main.hk": owners})
	res := run(t, Options{Paths: []string{dir}})
	var names []string
	for _, r := range res.Regions {
		if r.Key.Kind == sema.RegionBody {
			names = append(names, r.Key.Display(res.DB.Reg()))
		}
	}
	for _, want := range []string{"main::f", "main::g", "main::use_get", "<main::S>::get", "<main::S>::take"} {
		if !slices.Contains(names, want) {
			t.Errorf("no region for %s in %v", want, names)
		}
	}
}
