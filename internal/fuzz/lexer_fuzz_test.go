package fuzz

import (
	"testing"

	"husk/internal/diag"
	"husk/internal/lexer"
	"husk/internal/source"
	"husk/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input, maxInput)
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.hk", input))
		lx := lexer.New(file, lexer.Options{Reporter: &diag.BagReporter{Bag: diag.NewBag(64)}})
		// Every token consumes at least one byte, so the stream ends.
		for n := 0; ; n++ {
			if n > len(input)+1 {
				t.Fatalf("lexer produced more tokens than input bytes")
			}
			if tok := lx.Next(); tok.Kind == token.EOF {
				break
			}
		}
	})
}
