package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"husk/internal/diag"
	"husk/internal/lexer"
	"husk/internal/source"
	"husk/internal/token"
)

// testReporter collects every diagnostic the lexer reports.
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.hk", []byte(input))
	reporter := &testReporter{}
	return lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter}), reporter
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func expectTokens(t *testing.T, input string, expected ...token.Kind) []token.Token {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := lx.All()
	tokens = tokens[:len(tokens)-1]
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d\ninput: %q\ntokens: %v\ndiags: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.diagnostics)
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Fatalf("token %d: expected %v, got %v (text %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
	return tokens
}

func TestKeywordsAndIdents(t *testing.T) {
	expectTokens(t, "fn gn memo impl Self self own mut ref lazy key",
		token.KwFn, token.KwGn, token.KwMemo, token.KwImpl, token.Ident, token.KwSelf,
		token.KwOwn, token.KwMut, token.KwRef, token.KwLazy, token.KwKey)
}

func TestNumbersWithSuffixes(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"3", token.IntLit},
		{"1_000", token.IntLit},
		{"3i64", token.IntLit},
		{"3f32", token.FloatLit},
		{"2.5", token.FloatLit},
		{"2.5f32", token.FloatLit},
	}
	for _, tt := range tests {
		toks := expectTokens(t, tt.input, tt.kind)
		if toks[0].Text != tt.input {
			t.Fatalf("%q: text %q", tt.input, toks[0].Text)
		}
	}
}

func TestNumberDotMethod(t *testing.T) {
	expectTokens(t, "3.abs()", token.IntLit, token.Dot, token.Ident, token.LParen, token.RParen)
}

func TestBadSuffix(t *testing.T) {
	lx, rep := makeTestLexer("2.5i32")
	tok := lx.Next()
	if tok.Kind != token.Invalid {
		t.Fatalf("expected Invalid, got %v", tok.Kind)
	}
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexBadSuffix {
		t.Fatalf("expected one LexBadSuffix, got %v", rep.diagnostics)
	}
}

func TestOperatorsGreedy(t *testing.T) {
	expectTokens(t, "a::b -> ... ++ -- += -= == != <= >= && || ?",
		token.Ident, token.ColonColon, token.Ident, token.Arrow, token.DotDotDot,
		token.PlusPlus, token.MinusMinus, token.PlusAssign, token.MinusAssign,
		token.EqEq, token.BangEq, token.LtEq, token.GtEq, token.AndAnd, token.OrOr, token.Question)
}

func TestStrings(t *testing.T) {
	toks := expectTokens(t, `"a\"b" "c"`, token.StringLit, token.StringLit)
	if toks[0].Text != `"a\"b"` {
		t.Fatalf("unexpected text %q", toks[0].Text)
	}

	lx, rep := makeTestLexer("\"abc")
	if lx.Next().Kind != token.Invalid || len(rep.diagnostics) != 1 {
		t.Fatalf("unterminated string must be reported once")
	}
}

func TestStringEscapes(t *testing.T) {
	lx, rep := makeTestLexer(`"tab\t\u{48}\0" "bad\q" "x"`)
	first, bad, last := lx.Next(), lx.Next(), lx.Next()
	if first.Kind != token.StringLit || bad.Kind != token.StringLit || last.Kind != token.StringLit {
		t.Fatalf("unexpected kinds %v %v %v", first.Kind, bad.Kind, last.Kind)
	}
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexBadEscape {
		t.Fatalf("expected one LexBadEscape, got %v", rep.diagnostics)
	}
	if sp := rep.diagnostics[0].Primary; sp.End-sp.Start != 2 {
		t.Fatalf("bad escape span %v, want the two bytes of \\q", sp)
	}

	got, ok := lexer.Unquote(first.Text)
	if !ok || got != "tab\tH\x00" {
		t.Fatalf("Unquote(%s) = %q, %t", first.Text, got, ok)
	}
	if _, ok := lexer.Unquote(bad.Text); ok {
		t.Fatalf("Unquote accepted %s", bad.Text)
	}
}

func TestBadUnicodeEscapes(t *testing.T) {
	for _, src := range []string{`"\u{}"`, `"\u{110000}"`, `"\u{zz}"`, `"\u41"`} {
		lx, rep := makeTestLexer(src)
		if tok := lx.Next(); tok.Kind != token.StringLit {
			t.Fatalf("%s: kind %v, want the string to stay closed", src, tok.Kind)
		}
		if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexBadEscape {
			t.Fatalf("%s: expected one LexBadEscape, got %v", src, rep.diagnostics)
		}
	}
}

func TestEscapedNewlineStillEndsString(t *testing.T) {
	lx, rep := makeTestLexer("\"a\\\nb\"")
	if tok := lx.Next(); tok.Kind != token.Invalid {
		t.Fatalf("kind %v, want Invalid", tok.Kind)
	}
	if len(rep.diagnostics) != 2 || rep.diagnostics[1].Code != diag.LexUnterminatedString {
		t.Fatalf("expected a bad escape then an unterminated string, got %v", rep.diagnostics)
	}
}

func TestTriviaAttached(t *testing.T) {
	lx, _ := makeTestLexer("// hello\n/* a /* nested */ b */  x")
	tok := lx.Next()
	if tok.Kind != token.Ident || tok.Text != "x" {
		t.Fatalf("unexpected token %v %q", tok.Kind, tok.Text)
	}
	kinds := make([]token.TriviaKind, 0, len(tok.Leading))
	for _, tv := range tok.Leading {
		kinds = append(kinds, tv.Kind)
	}
	want := []token.TriviaKind{token.TriviaLineComment, token.TriviaNewline, token.TriviaBlockComment, token.TriviaSpace}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("trivia = %v, want %v", kinds, want)
	}
}

func TestIdentifierNFC(t *testing.T) {
	// "é" written as e + combining acute must intern equal to the precomposed form.
	decomposed := "café"
	toks := expectTokens(t, decomposed+" café", token.Ident, token.Ident)
	if toks[0].Text != toks[1].Text {
		t.Fatalf("NFC mismatch: %q vs %q", toks[0].Text, toks[1].Text)
	}
}

func TestPeekAndEOF(t *testing.T) {
	lx, _ := makeTestLexer("x")
	if lx.Peek().Kind != token.Ident || lx.Next().Kind != token.Ident {
		t.Fatalf("peek must not consume")
	}
	for range 3 {
		if lx.Next().Kind != token.EOF {
			t.Fatalf("expected sticky EOF")
		}
	}
}

func TestUnknownCharacter(t *testing.T) {
	lx, rep := makeTestLexer("a $ b")
	toks := lx.All()
	if toks[1].Kind != token.Invalid || toks[2].Kind != token.Ident {
		t.Fatalf("lexer must recover after unknown char: %v", tokensToString(toks))
	}
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexUnknownChar {
		t.Fatalf("expected LexUnknownChar, got %v", rep.diagnostics)
	}
}
