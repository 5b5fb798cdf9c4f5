// Package token defines lexical token kinds and trivia for husk sources.
// Invariants:
//   - Token.Text is a slice of the original source (no copies), except for
//     identifiers, which are NFC-normalised.
//   - Token.Span covers the token bytes exactly.
//   - Literal suffixes (3i64, 2.5f32) are part of the literal token.
//   - Builtin type names (i32, str, Vec, ...) are identifiers; the builtin
//     registry gives them meaning, not the lexer.
package token
