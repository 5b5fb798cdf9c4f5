package parser

import (
	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/source"
	"husk/internal/token"
)

// use a::b::C (as D)? ;
func (p *Parser) parseUseItem() (ast.ItemID, bool) {
	kw := p.advance()
	var u ast.UseItem
	for {
		name, sp, ok := p.parseIdent()
		if !ok {
			return ast.NoItemID, false
		}
		u.Segments = append(u.Segments, name)
		u.Spans = append(u.Spans, sp)
		if !p.eat(token.ColonColon) {
			break
		}
	}
	if p.eat(token.KwAs) {
		alias, _, ok := p.parseIdent()
		if !ok {
			return ast.NoItemID, false
		}
		u.Alias = alias
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after use"); !ok {
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewUse(kw.Span.Cover(p.lastSpan), u), true
}

// <T, const N: i32>
func (p *Parser) parseGenericParams() ([]ast.GenericParam, bool) {
	if !p.eat(token.Lt) {
		return nil, true
	}
	var out []ast.GenericParam
	for !p.at(token.Gt) && !p.at(token.EOF) {
		var gp ast.GenericParam
		if p.at(token.Ident) && p.lx.Peek().Text == "const" {
			p.advance()
			gp.Const = true
		}
		name, sp, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		gp.Name, gp.Span = name, sp
		if gp.Const {
			if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after const generic"); !ok {
				return nil, false
			}
			if gp.Type, ok = p.parseType(); !ok {
				return nil, false
			}
		}
		out = append(out, gp)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.Gt, diag.SynUnclosedDelimiter, "expected '>' to close generic parameters"); !ok {
		return nil, false
	}
	return out, true
}

// struct S<T> { v: i32, ref g: str, lazy l: i32 }
func (p *Parser) parseStructItem() (ast.ItemID, bool) {
	kw := p.advance()
	var s ast.StructItem
	var ok bool
	if s.Name, s.NameSpan, ok = p.parseIdent(); !ok {
		return ast.NoItemID, false
	}
	if s.Generics, ok = p.parseGenericParams(); !ok {
		return ast.NoItemID, false
	}
	if _, ok = p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after struct name"); !ok {
		return ast.NoItemID, false
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		start := p.lx.Peek().Span
		var f ast.FieldDecl
		switch {
		case p.eat(token.KwRef):
			f.Mode = ast.FieldRef
		case p.eat(token.KwLazy):
			f.Mode = ast.FieldLazy
		}
		if f.Name, f.NameSpan, ok = p.parseIdent(); !ok {
			return ast.NoItemID, false
		}
		if _, ok = p.expect(token.Colon, diag.SynExpectColon, "expected ':' after field name"); !ok {
			return ast.NoItemID, false
		}
		if f.Type, ok = p.parseType(); !ok {
			return ast.NoItemID, false
		}
		f.Span = start.Cover(p.lastSpan)
		s.Fields = append(s.Fields, f)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok = p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close struct"); !ok {
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewStruct(kw.Span.Cover(p.lastSpan), s), true
}

// enum Color { Red, Green }
func (p *Parser) parseEnumItem() (ast.ItemID, bool) {
	kw := p.advance()
	var e ast.EnumItem
	var ok bool
	if e.Name, e.NameSpan, ok = p.parseIdent(); !ok {
		return ast.NoItemID, false
	}
	if e.Generics, ok = p.parseGenericParams(); !ok {
		return ast.NoItemID, false
	}
	if _, ok = p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after enum name"); !ok {
		return ast.NoItemID, false
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		name, sp, ok := p.parseIdent()
		if !ok {
			return ast.NoItemID, false
		}
		e.Variants = append(e.Variants, ast.Variant{Name: name, Span: sp})
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok = p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close enum"); !ok {
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewEnum(kw.Span.Cover(p.lastSpan), e), true
}

// trait Show { fn show(self) -> str; }
func (p *Parser) parseTraitItem() (ast.ItemID, bool) {
	kw := p.advance()
	var t ast.TraitItem
	var ok bool
	if t.Name, t.NameSpan, ok = p.parseIdent(); !ok {
		return ast.NoItemID, false
	}
	if t.Generics, ok = p.parseGenericParams(); !ok {
		return ast.NoItemID, false
	}
	// Members need the owner id, so the item is allocated first and patched.
	id := p.arenas.Items.NewTrait(kw.Span, t)
	members, ok := p.parseMembers(id, false)
	if !ok {
		return ast.NoItemID, false
	}
	tr, _ := p.arenas.Items.Trait(id)
	tr.Members = members
	p.arenas.Items.Get(id).Span = kw.Span.Cover(p.lastSpan)
	return id, true
}

// impl<T> S<T> { ... } | impl Show for S { ... }
func (p *Parser) parseImplItem() (ast.ItemID, bool) {
	kw := p.advance()
	var im ast.ImplItem
	var ok bool
	if im.Generics, ok = p.parseGenericParams(); !ok {
		return ast.NoItemID, false
	}
	first, ok := p.parseType()
	if !ok {
		return ast.NoItemID, false
	}
	if p.eat(token.KwFor) {
		im.Trait = first
		if im.Target, ok = p.parseType(); !ok {
			return ast.NoItemID, false
		}
	} else {
		im.Target = first
	}
	id := p.arenas.Items.NewImpl(kw.Span, im)
	members, ok := p.parseMembers(id, true)
	if !ok {
		return ast.NoItemID, false
	}
	imp, _ := p.arenas.Items.Impl(id)
	imp.Members = members
	p.arenas.Items.Get(id).Span = kw.Span.Cover(p.lastSpan)
	return id, true
}

// parseMembers reads `{ member* }` of an impl or trait.
func (p *Parser) parseMembers(owner ast.ItemID, allowMemo bool) ([]ast.ItemID, bool) {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return nil, false
	}
	var members []ast.ItemID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		var (
			id ast.ItemID
			ok bool
		)
		switch {
		case p.atOr(token.KwFn, token.KwGn):
			id, ok = p.parseFnItem(owner)
		case allowMemo && p.at(token.KwMemo):
			id, ok = p.parseMemoItem(owner)
		default:
			p.err(diag.SynUnexpectedToken, "expected fn, gn or memo member")
			ok = false
		}
		if !ok {
			p.resyncUntil(token.KwFn, token.KwGn, token.KwMemo, token.RBrace)
			continue
		}
		members = append(members, id)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}'"); !ok {
		return members, false
	}
	return members, true
}

// memo total: i32 = expr ;?
func (p *Parser) parseMemoItem(owner ast.ItemID) (ast.ItemID, bool) {
	kw := p.advance()
	m := ast.MemoItem{Owner: owner}
	var ok bool
	if m.Name, m.NameSpan, ok = p.parseIdent(); !ok {
		return ast.NoItemID, false
	}
	if _, ok = p.expect(token.Colon, diag.SynExpectColon, "expected ':' after memo name"); !ok {
		return ast.NoItemID, false
	}
	if m.Type, ok = p.parseType(); !ok {
		return ast.NoItemID, false
	}
	if _, ok = p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in memo"); !ok {
		return ast.NoItemID, false
	}
	if m.Body, ok = p.parseExpr(); !ok {
		return ast.NoItemID, false
	}
	p.eat(token.Semicolon)
	return p.arenas.Items.NewMemo(kw.Span.Cover(p.lastSpan), m), true
}

func (p *Parser) intern(s string) source.StringID {
	return p.arenas.Strings.Intern(s)
}
