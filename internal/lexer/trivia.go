package lexer

import (
	"husk/internal/diag"
	"husk/internal/token"
)

// collectLeadingTrivia gathers the trivia before the next significant token.
// Spaces and tabs coalesce, as do consecutive newlines; block comments nest.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		switch b := lx.cursor.Peek(); {
		case b == ' ' || b == '\t' || b == '\r':
			for c := lx.cursor.Peek(); c == ' ' || c == '\t' || c == '\r'; c = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)
		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
		case b == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaLineComment, start)
		case b == '/' && lx.cursor.PeekAt(1) == '*':
			lx.scanBlockComment(start)
		default:
			return
		}
	}
}

func (lx *Lexer) scanBlockComment(start Mark) {
	lx.cursor.Bump()
	lx.cursor.Bump()
	depth := 1
	for !lx.cursor.EOF() && depth > 0 {
		switch {
		case lx.try2('/', '*'):
			depth++
		case lx.try2('*', '/'):
			depth--
		default:
			lx.cursor.Bump()
		}
	}
	if depth > 0 {
		lx.errLex(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "unterminated block comment")
	}
	lx.pushTrivia(token.TriviaBlockComment, start)
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}
