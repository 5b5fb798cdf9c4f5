package parser

import (
	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/source"
	"husk/internal/token"
)

// fn|gn name<G>(params) (-> &? T)? (block | ;)
//
// Missing colons and missing return types are recorded in FnItem.SigErrors
// instead of being reported, so the declaration resolver owns them.
func (p *Parser) parseFnItem(owner ast.ItemID) (ast.ItemID, bool) {
	kw := p.advance()
	fn := ast.FnItem{Lazy: kw.Kind == token.KwGn, Owner: owner}
	var ok bool
	if fn.Name, fn.NameSpan, ok = p.parseIdent(); !ok {
		return ast.NoItemID, false
	}
	if fn.Generics, ok = p.parseGenericParams(); !ok {
		return ast.NoItemID, false
	}
	if _, ok = p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return ast.NoItemID, false
	}
	if !p.parseParams(&fn) {
		return ast.NoItemID, false
	}
	if arrow := p.lx.Peek(); p.eat(token.Arrow) {
		fn.OutputRef = p.eat(token.Amp)
		if p.atOr(token.LBrace, token.Semicolon) {
			fn.SigErrors = append(fn.SigErrors, ast.SigError{Span: arrow.Span, Msg: "missing return type after '->'"})
		} else if fn.Output, ok = p.parseType(); !ok {
			return ast.NoItemID, false
		}
	}
	switch {
	case p.at(token.LBrace):
		if fn.Body, ok = p.parseBlock(); !ok {
			return ast.NoItemID, false
		}
	case p.eat(token.Semicolon):
	default:
		p.err(diag.SynUnexpectedToken, "expected function body or ';'")
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewFn(kw.Span.Cover(p.lastSpan), fn), true
}

// parseParams reads the parameter list after '(' including ')'.
func (p *Parser) parseParams(fn *ast.FnItem) bool {
	first := true
	for !p.at(token.RParen) && !p.at(token.EOF) {
		start := p.lx.Peek().Span
		switch {
		case p.eat(token.DotDotDot):
			param, ok := p.parseParam(fn, start, ast.ParamPure)
			if !ok {
				return false
			}
			if fn.Variadic != nil {
				p.report(diag.SynVariadicMustBeLast, param.Span, "only one variadic parameter is allowed")
			}
			fn.Variadic = &param
		case p.eat(token.KwKey):
			param, ok := p.parseParam(fn, start, p.parseParamMode())
			if !ok {
				return false
			}
			if p.eat(token.Assign) {
				if param.Default, ok = p.parseExpr(); !ok {
					return false
				}
				param.Span = start.Cover(p.lastSpan)
			}
			fn.Keyed = append(fn.Keyed, param)
		default:
			mode := p.parseParamMode()
			if p.at(token.KwSelf) {
				tok := p.advance()
				if !first {
					p.report(diag.SynUnexpectedToken, tok.Span, "'self' must be the first parameter")
				}
				fn.Receiver = &ast.Receiver{Mode: mode, Span: start.Cover(tok.Span)}
				break
			}
			param, ok := p.parseParam(fn, start, mode)
			if !ok {
				return false
			}
			if fn.Variadic != nil || len(fn.Keyed) > 0 {
				code := diag.SynVariadicMustBeLast
				if len(fn.Keyed) > 0 {
					code = diag.SynKeyedMustBeLast
				}
				p.report(code, param.Span, "positional parameter after variadic or keyed parameters")
			}
			fn.Params = append(fn.Params, param)
		}
		first = false
		if !p.eat(token.Comma) {
			break
		}
	}
	_, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close parameters")
	return ok
}

// own? mut? | ref
func (p *Parser) parseParamMode() ast.ParamMode {
	switch {
	case p.eat(token.KwRef):
		return ast.ParamRef
	case p.eat(token.KwOwn):
		if p.eat(token.KwMut) {
			return ast.ParamOwnMut
		}
		return ast.ParamOwn
	case p.eat(token.KwMut):
		return ast.ParamMut
	}
	return ast.ParamPure
}

// name : Type. A missing colon is a signature error; the type is still read when present.
func (p *Parser) parseParam(fn *ast.FnItem, start source.Span, mode ast.ParamMode) (ast.Param, bool) {
	param := ast.Param{Mode: mode}
	var ok bool
	if param.Name, param.NameSpan, ok = p.parseIdent(); !ok {
		return param, false
	}
	if !p.eat(token.Colon) {
		fn.SigErrors = append(fn.SigErrors, ast.SigError{
			Span: p.diagnosticSpan(),
			Msg:  "missing ':' after parameter " + p.arenas.Name(param.Name),
		})
		if p.atOr(token.Comma, token.RParen) {
			param.Span = start.Cover(p.lastSpan)
			return param, true
		}
	}
	if param.Type, ok = p.parseType(); !ok {
		return param, false
	}
	param.Span = start.Cover(p.lastSpan)
	return param, true
}
