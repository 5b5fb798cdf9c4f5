package lexer

import (
	"husk/internal/diag"
	"husk/internal/source"
)

type Options struct {
	Reporter diag.Reporter // nil drops errors; lexing continues
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	diag.ReportError(lx.opts.Reporter, code, sp, msg)
}
