package testkit

import (
	"strings"
	"testing"

	"husk/internal/ast"
	"husk/internal/builtin"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/lexer"
	"husk/internal/parser"
	"husk/internal/source"
	"husk/internal/symbols"
	"husk/internal/term"
)

// Module is one source file of a fixture; Name is the module it defines.
type Module struct {
	Name string
	Src  string
}

// Fixture is a parsed crate with its shared tables.
type Fixture struct {
	FS      *source.FileSet
	Strings *source.Interner
	Builder *ast.Builder
	Reg     *entity.Registry
	Builtin *builtin.Registry
	Crate   *symbols.Crate
	Terms   *term.Table
	Bag     *diag.Bag
}

// Build parses modules and builds the crate. Syntax diagnostics fail the test.
func Build(tb testing.TB, modules ...Module) *Fixture {
	tb.Helper()
	f := &Fixture{
		FS:      source.NewFileSet(),
		Strings: source.NewInterner(),
		Bag:     diag.NewBag(200),
	}
	f.Builder = ast.NewBuilder(ast.Hints{}, f.Strings)
	f.Reg = entity.NewRegistry(f.Strings)
	rep := &diag.BagReporter{Bag: f.Bag}
	bi, err := builtin.Install(f.Reg, f.FS, f.Builder, rep)
	if err != nil {
		tb.Fatalf("install builtins: %v", err)
	}
	f.Builtin = bi
	f.Terms = term.NewTable(f.Reg, bi.Prims())

	files := make([]ast.FileID, 0, len(modules))
	for _, m := range modules {
		fid := f.FS.AddVirtual(m.Name+".hk", []byte(m.Src))
		lx := lexer.New(f.FS.Get(fid), lexer.Options{Reporter: rep})
		res := parser.ParseFile(lx, f.Builder, parser.Options{Reporter: rep, Module: m.Name})
		if err := CheckSpanInvariants(f.Builder, res.File, f.FS.Get(fid)); err != nil {
			tb.Fatalf("span invariants of %s: %v", m.Name, err)
		}
		files = append(files, res.File)
	}
	if f.Bag.HasErrors() {
		for _, d := range f.Bag.Items() {
			tb.Logf("%s: %s", d.Code.ID(), d.Message)
		}
		tb.Fatalf("fixture has syntax errors")
	}
	f.Crate = symbols.BuildCrate(f.Builder, files, f.Reg, bi)
	return f
}

// Main builds a single module named main.
func Main(tb testing.TB, src string) *Fixture {
	tb.Helper()
	return Build(tb, Module{Name: "main", Src: src})
}

// Lookup resolves a `::`-separated path starting at module name.
func (f *Fixture) Lookup(tb testing.TB, module string, segments ...string) entity.Path {
	tb.Helper()
	m, ok := f.Crate.ModuleByName(module)
	if !ok {
		tb.Fatalf("no module %s", module)
	}
	p := m.Path
	for _, s := range segments {
		sym, err := f.Crate.ResolveSubentity(p, f.Strings.Intern(s), source.Span{})
		if err != nil {
			tb.Fatalf("lookup %s::%s: %v", f.Reg.Display(p), s, err)
		}
		p = sym.Path
	}
	return p
}

// Span returns the span of the n-th (0-based) occurrence of needle in module.
func (f *Fixture) Span(tb testing.TB, module, needle string, n int) source.Span {
	tb.Helper()
	if id, ok := f.FS.GetLatest(module + ".hk"); ok {
		file := f.FS.Get(id)
		content := string(file.Content)
		off := 0
		for k := 0; ; k++ {
			idx := strings.Index(content[off:], needle)
			if idx < 0 {
				break
			}
			idx += off
			if k == n {
				return source.Span{File: id, Start: uint32(idx), End: uint32(idx + len(needle))}
			}
			off = idx + 1
		}
	}
	tb.Fatalf("%q #%d not found in %s", needle, n, module)
	return source.Span{}
}
