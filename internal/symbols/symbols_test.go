package symbols

import (
	"testing"

	"husk/internal/ast"
	"husk/internal/builtin"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/lexer"
	"husk/internal/parser"
	"husk/internal/source"
)

type fixture struct {
	crate *Crate
	bag   *diag.Bag
}

func build(t *testing.T, files map[string]string, order ...string) fixture {
	t.Helper()
	strs := source.NewInterner()
	fs := source.NewFileSet()
	b := ast.NewBuilder(ast.Hints{}, strs)
	reg := entity.NewRegistry(strs)
	bag := diag.NewBag(100)
	rep := &diag.BagReporter{Bag: bag}
	bi, err := builtin.Install(reg, fs, b, rep)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	var ids []ast.FileID
	for _, name := range order {
		fid := fs.AddVirtual(name+".hk", []byte(files[name]))
		lx := lexer.New(fs.Get(fid), lexer.Options{Reporter: rep})
		res := parser.ParseFile(lx, b, parser.Options{Reporter: rep, Module: name})
		ids = append(ids, res.File)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected syntax diagnostics: %+v", bag.Items())
	}
	return fixture{crate: BuildCrate(b, ids, reg, bi), bag: bag}
}

func (f fixture) module(t *testing.T, name string) *Module {
	t.Helper()
	m, ok := f.crate.ModuleByName(name)
	if !ok {
		t.Fatalf("module %s missing", name)
	}
	return m
}

func (f fixture) ident(name string) source.StringID { return f.crate.Strings().Intern(name) }

func TestResolvePreference(t *testing.T) {
	f := build(t, map[string]string{
		"util": "struct Point { x: i32 }\nfn helper() -> i32 { 1 }",
		"main": "use util::Point;\nstruct i32 { v: bool }\nfn main() -> i32 { 0 }",
	}, "util", "main")
	if len(f.crate.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", f.crate.Errors)
	}
	m := f.module(t, "main")

	// a local definition shadows the prelude
	sym, err := f.crate.ResolveIdent(m.Path, f.ident("i32"), source.Span{})
	if err != nil || f.crate.Reg.Display(sym.Path) != "main::i32" {
		t.Fatalf("definition must win over prelude: %v %v", sym, err)
	}
	sym, err = f.crate.ResolveIdent(m.Path, f.ident("Point"), source.Span{})
	if err != nil || f.crate.Reg.Display(sym.Path) != "util::Point" || sym.Via == (source.Span{}) {
		t.Fatalf("use import failed: %v %v", sym, err)
	}
	sym, err = f.crate.ResolveIdent(m.Path, f.ident("Vec"), source.Span{})
	if err != nil || sym.Path != f.crate.Builtin.Path(builtin.RootVec) {
		t.Fatalf("prelude lookup failed: %v", err)
	}
	sym, err = f.crate.ResolveIdent(m.Path, f.ident("util"), source.Span{})
	if err != nil || sym.Kind != SymbolModule {
		t.Fatalf("module lookup failed: %v", err)
	}
	span := source.Span{File: 1, Start: 4, End: 9}
	_, err = f.crate.ResolveIdent(m.Path, f.ident("nope"), span)
	if err == nil || err.Code != diag.PathUnresolvedRootIdent || err.Origin != diag.OriginOriginal || err.Span != span {
		t.Fatalf("expected original UnresolvedRootIdent at span, got %v", err)
	}
}

func TestDuplicatesAreDisambiguated(t *testing.T) {
	f := build(t, map[string]string{
		"main": "fn f() -> i32 { 1 }\nfn f() -> i32 { 2 }\nfn g() -> i32 { 3 }",
	}, "main")
	if len(f.crate.Errors) != 1 || f.crate.Errors[0].Code != diag.PathDuplicateDefinition {
		t.Fatalf("expected one duplicate error, got %v", f.crate.Errors)
	}
	m := f.module(t, "main")
	defs := m.Defs(f.ident("f"))
	if len(defs) != 2 {
		t.Fatalf("both definitions must be registered")
	}
	for _, p := range defs {
		if _, ok := f.crate.Reg.UnambiguousPath(p); ok {
			t.Fatalf("colliding paths must be ambiguous")
		}
	}
	_, err := f.crate.ResolveIdent(m.Path, f.ident("f"), source.Span{})
	if err == nil || err.Code != diag.PathAmbiguous {
		t.Fatalf("expected ambiguity, got %v", err)
	}
	if _, err := f.crate.ResolveIdent(m.Path, f.ident("g"), source.Span{}); err != nil {
		t.Fatalf("g must resolve: %v", err)
	}
}

func TestSubentities(t *testing.T) {
	f := build(t, map[string]string{
		"main": `enum Color { Red, Green }
trait Show { fn show(self) -> str; }
struct S { v: i32 }
impl S { fn get(self) -> i32 { self.v } }
impl Show for S { fn show(self) -> str { "s" } }`,
	}, "main")
	if len(f.crate.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", f.crate.Errors)
	}
	m := f.module(t, "main")
	color, _ := f.crate.ResolveIdent(m.Path, f.ident("Color"), source.Span{})
	red, err := f.crate.ResolveSubentity(color.Path, f.ident("Red"), source.Span{})
	if err != nil || f.crate.Reg.Kind(red.Path) != entity.KindTypeVariant {
		t.Fatalf("variant lookup failed: %v", err)
	}
	s, _ := f.crate.ResolveIdent(m.Path, f.ident("S"), source.Span{})
	get, err := f.crate.ResolveSubentity(s.Path, f.ident("get"), source.Span{})
	if err != nil || f.crate.Reg.Display(get.Path) != "<main::S>::get" {
		t.Fatalf("method lookup failed: %v %q", err, f.crate.Reg.Display(get.Path))
	}
	show, err := f.crate.ResolveSubentity(s.Path, f.ident("show"), source.Span{})
	if err != nil || f.crate.Reg.Display(show.Path) != "<main::S as main::Show>::show" {
		t.Fatalf("trait method lookup failed: %v", err)
	}
	if len(f.crate.ImplsOf(s.Path)) != 2 || len(f.crate.TraitImplsOf(s.Path)) != 1 {
		t.Fatalf("impl lists are wrong")
	}
	vec := f.crate.Builtin.Path(builtin.RootVec)
	if _, err := f.crate.ResolveSubentity(vec, f.ident("push"), source.Span{}); err != nil {
		t.Fatalf("builtin method lookup failed: %v", err)
	}
	_, err = f.crate.ResolveSubentity(s.Path, f.ident("missing"), source.Span{})
	if err == nil || err.Code != diag.PathUnresolvedSubentity {
		t.Fatalf("expected UnresolvedSubentity, got %v", err)
	}
}

func TestUnresolvedImportAndImpl(t *testing.T) {
	f := build(t, map[string]string{
		"main": "use nowhere::X;\nimpl Missing { fn f(self) -> i32 { 1 } }\nfn g() -> i32 { 1 }",
	}, "main")
	codes := map[diag.Code]int{}
	for _, e := range f.crate.Errors {
		codes[e.Code]++
	}
	if codes[diag.PathUnresolvedUse] != 1 || codes[diag.PathUnresolvedRootIdent] != 1 {
		t.Fatalf("unexpected errors %v", f.crate.Errors)
	}
	m := f.module(t, "main")
	_, err := f.crate.ResolveIdent(m.Path, f.ident("X"), source.Span{})
	if err == nil || err.Origin != diag.OriginDerived {
		t.Fatalf("use of a failed import must be derived, got %v", err)
	}
}

func TestRegionScopes(t *testing.T) {
	strs := source.NewInterner()
	x, y := strs.Intern("x"), strs.Intern("y")
	r := NewRegion()
	r.Inherit(Local{Ident: x, Kind: LocalParam})
	r.Push()
	inner := r.Define(Local{Ident: x, Kind: LocalVar})
	r.Define(Local{Ident: y, Kind: LocalLet})
	if ref, _ := r.Lookup(x); ref != inner {
		t.Fatalf("inner binding must shadow the parameter")
	}
	if !r.Local(inner).Mutable() {
		t.Fatalf("var must be mutable")
	}
	r.Pop()
	ref, ok := r.Lookup(x)
	if !ok || !ref.Inherited {
		t.Fatalf("parameter must be visible after pop")
	}
	if _, ok := r.Lookup(y); ok {
		t.Fatalf("y must be out of scope")
	}
	if len(r.Current) != 2 {
		t.Fatalf("popped locals must stay addressable")
	}
}
