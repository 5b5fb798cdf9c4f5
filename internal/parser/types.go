package parser

import (
	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/token"
)

// parseType reads a type annotation into the expression arena.
//
//	Type    := Atom ('->' Type)?
//	Atom    := Path ('<' Type,* '>')? | '[' ']' Atom | '(' Type,* ')' | ('fn'|'gn') '(' Type,* ')' ('->' Type)?
func (p *Parser) parseType() (ast.ExprID, bool) {
	param, ok := p.parseTypeAtom()
	if !ok {
		return ast.NoExprID, false
	}
	if p.eat(token.Arrow) {
		ret, ok := p.parseType()
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewCurryType(p.spanOf(param).Cover(p.spanOf(ret)), param, ret), true
	}
	return param, true
}

func (p *Parser) parseTypeAtom() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Ident:
		return p.parseTypePath()
	case token.LBracket:
		p.advance()
		if _, ok := p.expect(token.RBracket, diag.SynExpectType, "expected ']' in list type"); !ok {
			return ast.NoExprID, false
		}
		list := p.arenas.Exprs.NewList(tok.Span.Cover(p.lastSpan), nil)
		elem, ok := p.parseTypeAtom()
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewApply(tok.Span.Cover(p.lastSpan), list, elem), true
	case token.LParen:
		p.advance()
		items, ok := p.parseTypeList(token.RParen)
		if !ok {
			return ast.NoExprID, false
		}
		if len(items) == 1 {
			return items[0], true
		}
		return p.arenas.Exprs.NewTuple(tok.Span.Cover(p.lastSpan), items), true
	case token.KwFn, token.KwGn:
		p.advance()
		kind := ast.RitchieFn
		if tok.Kind == token.KwGn {
			kind = ast.RitchieGn
		} else if p.at(token.KwMut) {
			p.advance()
			kind = ast.RitchieFnMut
		}
		if _, ok := p.expect(token.LParen, diag.SynExpectType, "expected '(' in function type"); !ok {
			return ast.NoExprID, false
		}
		params, ok := p.parseTypeList(token.RParen)
		if !ok {
			return ast.NoExprID, false
		}
		d := ast.RitchieTypeData{Kind: kind, Params: params}
		if p.eat(token.Arrow) {
			if d.Return, ok = p.parseType(); !ok {
				return ast.NoExprID, false
			}
		}
		return p.arenas.Exprs.NewRitchieType(tok.Span.Cover(p.lastSpan), d), true
	}
	p.err(diag.SynExpectType, "expected type, got \""+tok.Text+"\"")
	return ast.NoExprID, false
}

// a::B<T>
func (p *Parser) parseTypePath() (ast.ExprID, bool) {
	name, sp, _ := p.parseIdent()
	id := p.arenas.Exprs.NewIdent(sp, name)
	for p.at(token.ColonColon) {
		p.advance()
		seg, segSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoExprID, false
		}
		id = p.arenas.Exprs.NewPath(sp.Cover(segSpan), ast.PathData{Base: id, Name: seg, NameSpan: segSpan})
	}
	if p.eat(token.Lt) {
		args, ok := p.parseTypeList(token.Gt)
		if !ok {
			return ast.NoExprID, false
		}
		id = p.arenas.Exprs.NewGenericApp(sp.Cover(p.lastSpan), id, args)
	}
	return id, true
}

// parseTypeList reads `T, U, ...` up to and including close.
func (p *Parser) parseTypeList(close token.Kind) ([]ast.ExprID, bool) {
	var items []ast.ExprID
	for !p.at(close) && !p.at(token.EOF) {
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		items = append(items, ty)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(close, diag.SynUnclosedDelimiter, "expected '"+close.String()+"'"); !ok {
		return nil, false
	}
	return items, true
}
