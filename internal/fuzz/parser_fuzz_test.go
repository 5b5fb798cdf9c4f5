package fuzz

import (
	"testing"
	"time"

	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/lexer"
	"husk/internal/parser"
	"husk/internal/source"
	"husk/internal/testkit"
)

const parseTimeout = 5 * time.Second

func FuzzParserNoHang(f *testing.F) {
	addSeeds(f)
	f.Add([]byte("fn test() { let x: i32 = 1\nlet y: i32 = 2; }"))
	f.Add([]byte("fn test() { x + y\nlet z: i32 = 3; }"))
	f.Add([]byte("impl S { fn get(self -> i32 { self.v } }"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input, maxInput)
		done := make(chan error, 1)
		go func() {
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual("fuzz.hk", input))
			rep := &diag.BagReporter{Bag: diag.NewBag(128)}
			b := ast.NewBuilder(ast.Hints{}, nil)
			res := parser.ParseFile(lexer.New(file, lexer.Options{Reporter: rep}), b, parser.Options{Reporter: rep, MaxErrors: 128, Module: "fuzz"})
			if rep.Bag.HasErrors() {
				done <- nil
				return
			}
			done <- testkit.CheckSpanInvariants(b, res.File, file)
		}()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("span invariants: %v\ninput: %q", err, clamp(input, 200))
			}
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang: parsing took longer than %v\ninput (%d bytes): %q", parseTimeout, len(input), clamp(input, 200))
		}
	})
}
