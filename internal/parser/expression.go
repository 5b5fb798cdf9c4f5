package parser

import (
	"strings"

	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/lexer"
	"husk/internal/token"
)

// parseExpr parses a full expression.
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(0)
}

// parseBinaryExpr is a Pratt loop over left-associative binary operators.
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parsePrefixExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		prec, op := binaryOp(p.lx.Peek().Kind)
		if prec < minPrec || prec < 0 {
			return left, true
		}
		p.advance()
		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return ast.NoExprID, false
		}
		left = p.arenas.Exprs.NewBinary(p.spanOf(left).Cover(p.spanOf(right)), op, left, right)
	}
}

func (p *Parser) parsePrefixExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	var op ast.PrefixOp
	switch tok.Kind {
	case token.Minus:
		op = ast.PrefixNeg
	case token.Bang:
		op = ast.PrefixNot
	default:
		return p.parsePostfixExpr()
	}
	p.advance()
	operand, ok := p.parsePrefixExpr()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewPrefix(tok.Span.Cover(p.spanOf(operand)), op, operand), true
}

func (p *Parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		start := p.spanOf(expr)
		switch p.lx.Peek().Kind {
		case token.LParen:
			lpar := p.advance()
			args, ok := p.parseCallArgs()
			if !ok {
				return ast.NoExprID, false
			}
			expr = p.arenas.Exprs.NewCall(start.Cover(p.lastSpan), ast.CallData{
				Callee: expr, Args: args, Lpar: lpar.Span, Rpar: p.lastSpan,
			})
		case token.Dot:
			p.advance()
			name, nameSpan, ok := p.parseIdent()
			if !ok {
				return ast.NoExprID, false
			}
			var generics []ast.ExprID
			if p.at(token.ColonColon) {
				p.advance()
				if _, ok := p.expect(token.Lt, diag.SynUnexpectedToken, "expected '<' after '::'"); !ok {
					return ast.NoExprID, false
				}
				if generics, ok = p.parseTypeList(token.Gt); !ok {
					return ast.NoExprID, false
				}
			}
			if p.eat(token.LParen) {
				args, ok := p.parseCallArgs()
				if !ok {
					return ast.NoExprID, false
				}
				expr = p.arenas.Exprs.NewMethodCall(start.Cover(p.lastSpan), ast.MethodCallData{
					Receiver: expr, Name: name, NameSpan: nameSpan, Generics: generics, Args: args,
				})
				continue
			}
			expr = p.arenas.Exprs.NewField(start.Cover(nameSpan), ast.FieldData{Owner: expr, Name: name, NameSpan: nameSpan})
		case token.ColonColon:
			p.advance()
			name, nameSpan, ok := p.parseIdent()
			if !ok {
				return ast.NoExprID, false
			}
			expr = p.arenas.Exprs.NewPath(start.Cover(nameSpan), ast.PathData{Base: expr, Name: name, NameSpan: nameSpan})
		case token.LBracket:
			p.advance()
			indices, ok := p.parseExprList(token.RBracket)
			if !ok {
				return ast.NoExprID, false
			}
			expr = p.arenas.Exprs.NewIndex(start.Cover(p.lastSpan), expr, indices)
		case token.PlusPlus, token.MinusMinus, token.Question:
			tok := p.advance()
			op := ast.SuffixUnwrap
			switch tok.Kind {
			case token.PlusPlus:
				op = ast.SuffixIncr
			case token.MinusMinus:
				op = ast.SuffixDecr
			}
			expr = p.arenas.Exprs.NewSuffix(start.Cover(tok.Span), op, expr)
		default:
			return expr, true
		}
	}
}

func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit, token.FloatLit:
		p.advance()
		return p.arenas.Exprs.NewLit(tok.Span, numberLit(tok)), true
	case token.StringLit:
		p.advance()
		text, ok := lexer.Unquote(tok.Text)
		if !ok {
			text = strings.Trim(tok.Text, "\"")
		}
		return p.arenas.Exprs.NewLit(tok.Span, ast.LitData{Kind: ast.LitString, Text: text}), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewLit(tok.Span, ast.LitData{Kind: ast.LitBool, Text: tok.Text}), true
	case token.Ident:
		p.advance()
		return p.arenas.Exprs.NewIdent(tok.Span, p.intern(tok.Text)), true
	case token.KwSelf:
		p.advance()
		return p.arenas.Exprs.NewSelf(tok.Span), true
	case token.LParen:
		p.advance()
		items, ok := p.parseExprList(token.RParen)
		if !ok {
			return ast.NoExprID, false
		}
		if len(items) == 1 && !p.trailingComma {
			return items[0], true
		}
		return p.arenas.Exprs.NewTuple(tok.Span.Cover(p.lastSpan), items), true
	case token.LBracket:
		p.advance()
		items, ok := p.parseExprList(token.RBracket)
		if !ok {
			return ast.NoExprID, false
		}
		list := p.arenas.Exprs.NewList(tok.Span.Cover(p.lastSpan), items)
		// `[]T` is the list type constructor applied to T.
		if len(items) == 0 && p.atOr(token.Ident, token.LBracket) && p.lastSpan.End == p.lx.Peek().Span.Start {
			elem, ok := p.parseTypeAtom()
			if !ok {
				return ast.NoExprID, false
			}
			return p.arenas.Exprs.NewApply(tok.Span.Cover(p.lastSpan), list, elem), true
		}
		return list, true
	case token.LBrace:
		return p.parseBlock()
	}
	p.err(diag.SynExpectExpression, "expected expression, got \""+tok.Text+"\"")
	return ast.NoExprID, false
}

// numberLit splits a numeric token into digits and suffix.
func numberLit(tok token.Token) ast.LitData {
	kind := ast.LitInt
	if tok.Kind == token.FloatLit {
		kind = ast.LitFloat
	}
	text, suffix := tok.Text, ""
	for _, s := range []string{"i32", "i64", "f32", "f64"} {
		if strings.HasSuffix(text, s) {
			text, suffix = strings.TrimSuffix(text, s), s
			break
		}
	}
	return ast.LitData{Kind: kind, Text: strings.ReplaceAll(text, "_", ""), Suffix: suffix}
}

// parseExprList reads `e, e, ...` up to and including close.
func (p *Parser) parseExprList(close token.Kind) ([]ast.ExprID, bool) {
	var items []ast.ExprID
	p.trailingComma = false
	for !p.at(close) && !p.at(token.EOF) {
		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		items = append(items, e)
		p.trailingComma = false
		if !p.eat(token.Comma) {
			break
		}
		p.trailingComma = true
	}
	trailing := p.trailingComma
	if _, ok := p.expect(close, diag.SynUnclosedDelimiter, "expected '"+close.String()+"'"); !ok {
		return nil, false
	}
	p.trailingComma = trailing
	return items, true
}

// parseCallArgs reads `a, k = b, ...)` after '('.
func (p *Parser) parseCallArgs() ([]ast.CallArg, bool) {
	var args []ast.CallArg
	for !p.at(token.RParen) && !p.at(token.EOF) {
		var arg ast.CallArg
		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if p.at(token.Assign) {
			ident, isIdent := p.arenas.Exprs.Ident(e)
			if !isIdent {
				p.err(diag.SynUnexpectedToken, "keyed argument must be an identifier")
				return nil, false
			}
			p.advance()
			arg.Key, arg.KeySpan = ident.Name, p.spanOf(e)
			if e, ok = p.parseExpr(); !ok {
				return nil, false
			}
		}
		arg.Value = e
		args = append(args, arg)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close arguments"); !ok {
		return nil, false
	}
	return args, true
}
