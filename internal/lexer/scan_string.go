package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"husk/internal/diag"
	"husk/internal/token"
)

// simpleEscapes maps the byte after a backslash to the rune it denotes.
var simpleEscapes = map[byte]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
}

// maxEscape is the longest escape body, `u{10FFFF}`.
const maxEscape = 9

// scanString reads "..." and checks its escapes. Token.Text keeps the quotes
// and the escapes undecoded; Unquote decodes it.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '"':
			lx.cursor.Bump()
			return lx.stringToken(token.StringLit, start)
		case '\n':
			lx.errLex(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "newline in string literal")
			return lx.stringToken(token.Invalid, start)
		case '\\':
			lx.scanEscape()
		default:
			lx.cursor.Bump()
		}
	}
	lx.errLex(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "unterminated string literal")
	return lx.stringToken(token.Invalid, start)
}

func (lx *Lexer) stringToken(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// scanEscape consumes a backslash and the escape after it. A bad escape is
// reported and skipped one byte at a time so the closing quote is still found;
// a newline is left for scanString.
func (lx *Lexer) scanEscape() {
	esc := lx.cursor.Mark()
	lx.cursor.Bump() // '\\'
	if lx.cursor.EOF() {
		return
	}
	rest := lx.file.Content[lx.cursor.Off:]
	if len(rest) > maxEscape {
		rest = rest[:maxEscape]
	}
	_, n, ok := decodeEscape(string(rest))
	if !ok && rest[0] == '\n' {
		n = 0
	}
	for range n {
		lx.cursor.Bump()
	}
	if !ok {
		sp := lx.cursor.SpanFrom(esc)
		lx.errLex(diag.LexBadEscape, sp, "unknown escape sequence "+strconv.Quote(string(lx.file.Content[sp.Start:sp.End])))
	}
}

// decodeEscape reads the escape at the start of s, just past its backslash.
// It returns the rune and the bytes it spans; a bad escape spans one byte.
func decodeEscape(s string) (rune, int, bool) {
	if s == "" {
		return 0, 0, false
	}
	if r, ok := simpleEscapes[s[0]]; ok {
		return r, 1, true
	}
	if s[0] != 'u' || len(s) < 2 || s[1] != '{' {
		return 0, 1, false
	}
	end := strings.IndexByte(s, '}')
	if end < 3 {
		return 0, 1, false
	}
	v, err := strconv.ParseUint(s[2:end], 16, 32)
	if err != nil {
		return 0, 1, false
	}
	r, err := safecast.Conv[rune](v)
	if err != nil || !utf8.ValidRune(r) {
		return 0, 1, false
	}
	return r, end + 1, true
}

// Unquote decodes the text of a string literal token. It fails when the
// quotes are missing or an escape is bad.
func Unquote(text string) (string, bool) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", false
	}
	body := text[1 : len(text)-1]
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); {
		if body[i] != '\\' {
			sb.WriteByte(body[i])
			i++
			continue
		}
		r, n, ok := decodeEscape(body[i+1:])
		if !ok {
			return "", false
		}
		sb.WriteRune(r)
		i += 1 + n
	}
	return sb.String(), true
}
