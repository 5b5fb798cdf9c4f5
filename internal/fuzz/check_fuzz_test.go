package fuzz

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/driver"
	"husk/internal/instr"
	"husk/internal/lexer"
	"husk/internal/parser"
	"husk/internal/source"
)

func parses(input []byte) bool {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("fuzz.hk", input))
	rep := &diag.BagReporter{Bag: diag.NewBag(16)}
	parser.ParseFile(lexer.New(file, lexer.Options{Reporter: rep}), ast.NewBuilder(ast.Hints{}, nil), parser.Options{Reporter: rep, Module: "main"})
	return !rep.Bag.HasErrors()
}

// FuzzFrontEnd runs syntactically valid inputs through every phase. Semantic
// errors are expected; internal errors and cycles are not.
func FuzzFrontEnd(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input, maxInput)
		if !parses(input) {
			return
		}
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "main.hk"), input, 0o600); err != nil {
			t.Fatal(err)
		}
		res, err := driver.Check(context.Background(), driver.Options{Paths: []string{dir}, Lower: true, Jobs: 2})
		if err != nil {
			t.Fatalf("check: %v\ninput: %q", err, clamp(input, 200))
		}
		for _, m := range res.Modules {
			if _, err := instr.GenerateModule(res.DB, m); err != nil {
				t.Fatalf("generate: %v\ninput: %q", err, clamp(input, 200))
			}
		}
	})
}
