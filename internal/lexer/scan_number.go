package lexer

import (
	"husk/internal/diag"
	"husk/internal/token"
)

var intSuffixes = []string{"i32", "i64"}
var floatSuffixes = []string{"f32", "f64"}

// scanNumber: [0-9][0-9_]* ('.' [0-9][0-9_]*)? suffix?
// An integer may carry any numeric suffix (3f32 is a float); a float only a float suffix.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
	// "1.x" stays an integer followed by a dot; only "1.5" is a float.
	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.FloatLit
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
		}
	}

	if isIdentStartByte(lx.cursor.Peek()) {
		sufStart := lx.cursor.Mark()
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		suffix := string(lx.file.Content[sufStart:lx.cursor.Off])
		switch {
		case kind == token.IntLit && contains(intSuffixes, suffix):
		case contains(floatSuffixes, suffix):
			kind = token.FloatLit
		default:
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexBadSuffix, lx.cursor.SpanFrom(sufStart), "unknown literal suffix "+suffix)
			return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
