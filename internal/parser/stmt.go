package parser

import (
	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/token"
)

// parseBlock reads `{ stmt* }`. A final expression without ';' is the block value.
func (p *Parser) parseBlock() (ast.ExprID, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return ast.NoExprID, false
	}
	var stmts []ast.StmtID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		st, ok := p.parseStmt()
		if !ok {
			p.resyncUntil(token.Semicolon, token.RBrace)
			p.eat(token.Semicolon)
			continue
		}
		stmts = append(stmts, st)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close block"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewBlock(open.Span.Cover(p.lastSpan), stmts), true
}

func (p *Parser) parseStmt() (ast.StmtID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.KwLet, token.KwVar:
		return p.parseLetStmt()
	case token.KwReturn:
		p.advance()
		value := ast.NoExprID
		if !p.atOr(token.Semicolon, token.RBrace) {
			var ok bool
			if value, ok = p.parseExpr(); !ok {
				return ast.NoStmtID, false
			}
		}
		if !p.at(token.RBrace) {
			if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after return"); !ok {
				return ast.NoStmtID, false
			}
		}
		return p.arenas.Stmts.NewReturn(tok.Span.Cover(p.lastSpan), value), true
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		p.advance()
		cond, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		body, ok := p.parseBlock()
		if !ok {
			return ast.NoStmtID, false
		}
		return p.arenas.Stmts.NewWhile(tok.Span.Cover(p.lastSpan), ast.WhileStmt{Cond: cond, Body: body}), true
	}

	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	start := p.spanOf(expr)
	var op ast.AssignOp
	switch p.lx.Peek().Kind {
	case token.Assign, token.PlusAssign, token.MinusAssign:
		switch p.advance().Kind {
		case token.PlusAssign:
			op = ast.AssignAdd
		case token.MinusAssign:
			op = ast.AssignSub
		default:
			op = ast.AssignPlain
		}
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after assignment"); !ok {
			return ast.NoStmtID, false
		}
		return p.arenas.Stmts.NewAssign(start.Cover(p.lastSpan), ast.AssignStmt{Op: op, Target: expr, Value: value}), true
	case token.Semicolon:
		p.advance()
		return p.arenas.Stmts.NewExpr(start.Cover(p.lastSpan), expr, true), true
	case token.RBrace:
		return p.arenas.Stmts.NewExpr(start, expr, false), true
	}
	if p.arenas.Exprs.Get(expr).Kind == ast.ExprBlock {
		return p.arenas.Stmts.NewExpr(start, expr, true), true
	}
	p.err(diag.SynExpectSemicolon, "expected ';' after expression")
	return ast.NoStmtID, false
}

// let x (: T)? (= e)? ;   var x (: T)? (= e)? ;
func (p *Parser) parseLetStmt() (ast.StmtID, bool) {
	kw := p.advance()
	l := ast.LetStmt{Mutable: kw.Kind == token.KwVar}
	var ok bool
	if l.Name, l.NameSpan, ok = p.parseIdent(); !ok {
		return ast.NoStmtID, false
	}
	if p.eat(token.Colon) {
		if l.Type, ok = p.parseType(); !ok {
			return ast.NoStmtID, false
		}
	}
	if p.eat(token.Assign) {
		if l.Init, ok = p.parseExpr(); !ok {
			return ast.NoStmtID, false
		}
	}
	if _, ok = p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after let"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewLet(kw.Span.Cover(p.lastSpan), l), true
}

// if c { } (else (if ... | { }))?
func (p *Parser) parseIfStmt() (ast.StmtID, bool) {
	kw := p.advance()
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	st := ast.IfStmt{Cond: cond, Then: then}
	if p.eat(token.KwElse) {
		if p.at(token.KwIf) {
			inner, ok := p.parseIfStmt()
			if !ok {
				return ast.NoStmtID, false
			}
			sp := p.arenas.Stmts.Get(inner).Span
			st.Else = p.arenas.Exprs.NewBlock(sp, []ast.StmtID{inner})
		} else if st.Else, ok = p.parseBlock(); !ok {
			return ast.NoStmtID, false
		}
	}
	return p.arenas.Stmts.NewIf(kw.Span.Cover(p.lastSpan), st), true
}
