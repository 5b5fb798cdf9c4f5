package parser

import (
	"fmt"
	"strings"
	"testing"

	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/lexer"
	"husk/internal/source"
)

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func parseSource(t *testing.T, src string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.hk", []byte(src))
	bag := diag.NewBag(100)
	rep := &diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: rep})
	b := ast.NewBuilder(ast.Hints{}, nil)
	res := ParseFile(lx, b, Options{Reporter: rep, Module: "test"})
	return b, res.File, bag
}

func mustParse(t *testing.T, src string) (*ast.Builder, ast.FileID) {
	t.Helper()
	b, file, bag := parseSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	return b, file
}

func firstFn(t *testing.T, b *ast.Builder, file ast.FileID) *ast.FnItem {
	t.Helper()
	for _, id := range b.Files.Get(file).Items {
		if fn, ok := b.Items.Fn(id); ok {
			return fn
		}
	}
	t.Fatalf("no fn item")
	return nil
}
