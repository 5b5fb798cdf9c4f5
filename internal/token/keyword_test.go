package token

import (
	"testing"
)

func TestLookupKeyword_Positive(t *testing.T) {
	cases := map[string]Kind{
		"fn":     KwFn,
		"gn":     KwGn,
		"memo":   KwMemo,
		"let":    KwLet,
		"var":    KwVar,
		"return": KwReturn,
		"impl":   KwImpl,
		"own":    KwOwn,
		"lazy":   KwLazy,
		"true":   KwTrue,
	}

	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok {
			t.Fatalf("LookupKeyword(%q) = !ok, want %v", lexeme, want)
		}
		if got != want {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", lexeme, got, want)
		}
	}
}

func TestLookupKeyword_Negative(t *testing.T) {
	for _, s := range []string{"Fn", "i32", "Vec", "Self", "struct_"} {
		if _, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) must fail", s)
		}
	}
}
