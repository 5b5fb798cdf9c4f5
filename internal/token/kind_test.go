package token_test

import (
	"testing"

	"husk/internal/source"
	"husk/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{token.IntLit, token.FloatLit, token.StringLit, token.KwTrue, token.KwFalse}
	for _, k := range lits {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwLet, token.Plus, token.LParen}
	for _, k := range non {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsPunctOrOp(t *testing.T) {
	ops := []token.Kind{
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.Assign, token.PlusAssign, token.MinusAssign,
		token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.AndAnd, token.OrOr, token.Bang, token.PlusPlus, token.MinusMinus,
		token.Question, token.Colon, token.ColonColon, token.Semicolon, token.Comma,
		token.Dot, token.DotDotDot, token.Arrow, token.Amp,
		token.LParen, token.RParen, token.LBrace, token.RBrace, token.LBracket, token.RBracket,
	}
	for _, k := range ops {
		if !tok(k).IsPunctOrOp() {
			t.Fatalf("%v should be punct/op", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwIf, token.IntLit, token.EOF}
	for _, k := range non {
		if tok(k).IsPunctOrOp() {
			t.Fatalf("%v must NOT be punct/op", k)
		}
	}
}

func TestIsKeyword(t *testing.T) {
	if !tok(token.KwGn).IsKeyword() || !tok(token.KwFalse).IsKeyword() {
		t.Fatalf("keywords not recognised")
	}
	if tok(token.Ident).IsKeyword() || tok(token.Plus).IsKeyword() {
		t.Fatalf("non-keywords recognised as keywords")
	}
}

func TestKindString(t *testing.T) {
	if token.ColonColon.String() != "::" || token.KwMemo.String() != "memo" {
		t.Fatalf("unexpected names: %s %s", token.ColonColon, token.KwMemo)
	}
}
