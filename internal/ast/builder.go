package ast

import (
	"husk/internal/source"
)

type Hints struct{ Files, Items, Stmts, Exprs uint }

// Builder owns every arena of one crate. Ids are stable for the builder's lifetime
// and shared by all files, so an ExprID alone identifies a node.
type Builder struct {
	Files   *Files
	Items   *Items
	Stmts   *Stmts
	Exprs   *Exprs
	Strings *source.Interner
}

func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 4
	}
	if hints.Items == 0 {
		hints.Items = 1 << 7
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 9
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Files:   NewFiles(hints.Files),
		Items:   NewItems(hints.Items),
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs),
		Strings: strings,
	}
}

func (b *Builder) NewFile(sp source.Span, module source.StringID) FileID {
	return b.Files.New(sp, module)
}

func (b *Builder) PushItem(file FileID, item ItemID) {
	f := b.Files.Get(file)
	f.Items = append(f.Items, item)
}

// Name returns the text of an interned identifier.
func (b *Builder) Name(id source.StringID) string {
	return b.Strings.MustLookup(id)
}
