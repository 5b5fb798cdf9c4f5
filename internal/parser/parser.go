package parser

import (
	"slices"

	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/lexer"
	"husk/internal/source"
	"husk/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
	// Module is the module name the file defines; one file is one module.
	Module string
}

// Enough reports whether the error limit was reached.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint
}

// Parser holds the state for one file.
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	opts     Options
	lastSpan source.Span
	// trailingComma is set by parseExprList when the list ended with ','.
	trailingComma bool
}

// ParseFile parses one file into b.
func ParseFile(lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	p := newParser(lx, arenas, opts)
	start := p.lx.Peek().Span
	p.file = arenas.NewFile(start, arenas.Strings.Intern(opts.Module))
	p.parseItems()
	f := arenas.Files.Get(p.file)
	f.Span = start.Cover(p.lastSpan)
	return Result{File: p.file, Errors: p.opts.CurrentErrors}
}

// ParseTypeText parses a standalone type annotation, e.g. a builtin signature fragment.
func ParseTypeText(fs *source.FileSet, arenas *ast.Builder, name, text string, rep diag.Reporter) (ast.ExprID, bool) {
	id := fs.AddVirtual(name, []byte(text))
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	p := newParser(lx, arenas, Options{Reporter: rep})
	ty, ok := p.parseType()
	if ok && !p.at(token.EOF) {
		p.err(diag.SynUnexpectedToken, "unexpected trailing tokens after type")
		ok = false
	}
	return ty, ok && p.opts.CurrentErrors == 0
}

// ParseExprText parses a standalone expression, used for builtin keyed defaults.
func ParseExprText(fs *source.FileSet, arenas *ast.Builder, name, text string, rep diag.Reporter) (ast.ExprID, bool) {
	id := fs.AddVirtual(name, []byte(text))
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	p := newParser(lx, arenas, Options{Reporter: rep})
	e, ok := p.parseExpr()
	if ok && !p.at(token.EOF) {
		p.err(diag.SynUnexpectedToken, "unexpected trailing tokens after expression")
		ok = false
	}
	return e, ok && p.opts.CurrentErrors == 0
}

func newParser(lx *lexer.Lexer, arenas *ast.Builder, opts Options) *Parser {
	return &Parser{
		lx:       lx,
		arenas:   arenas,
		opts:     opts,
		lastSpan: lx.Peek().Span,
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems parses top-level items until EOF.
func (p *Parser) parseItems() {
	for !p.at(token.EOF) {
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		p.arenas.PushItem(p.file, itemID)
	}
}

// parseItem dispatches on the first token of an item.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwUse:
		return p.parseUseItem()
	case token.KwStruct:
		return p.parseStructItem()
	case token.KwEnum:
		return p.parseEnumItem()
	case token.KwTrait:
		return p.parseTraitItem()
	case token.KwImpl:
		return p.parseImplItem()
	case token.KwFn, token.KwGn:
		return p.parseFnItem(ast.NoItemID)
	default:
		p.err(diag.SynUnexpectedTopLevel, "unexpected top-level construct \""+p.lx.Peek().Text+"\"")
		return ast.NoItemID, false
	}
}

func isTopLevelStarter(k token.Kind) bool {
	switch k {
	case token.KwUse, token.KwStruct, token.KwEnum, token.KwTrait, token.KwImpl, token.KwFn, token.KwGn:
		return true
	default:
		return false
	}
}

// resyncTop skips to the start of the next item or EOF.
func (p *Parser) resyncTop() {
	p.advance()
	for !p.at(token.EOF) && !isTopLevelStarter(p.lx.Peek().Kind) {
		p.advance()
	}
}

// parseIdent expects an identifier and interns it.
func (p *Parser) parseIdent() (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.arenas.Strings.Intern(tok.Text), tok.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got \""+p.lx.Peek().Text+"\"")
	return source.NoStringID, p.lx.Peek().Span, false
}
