package symbols

import (
	"husk/internal/ast"
	"husk/internal/entity"
	"husk/internal/source"
)

// SymbolKind classifies what a resolved name denotes.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolEntity             // item, variant, assoc item
	SymbolModule
)

// Symbol is the result of module-level resolution.
type Symbol struct {
	Kind SymbolKind
	Path entity.Path
	// Via is set when the symbol came through a `use` import.
	Via source.Span
}

// NodeKind says which syntax construct backs a path.
type NodeKind uint8

const (
	NodeNone NodeKind = iota
	NodeItem
	NodeVariant
	NodeImpl
	NodeMember
)

// Node locates the syntax that defines a path.
type Node struct {
	Kind    NodeKind
	Module  entity.Path
	Item    ast.ItemID // the item, the impl/trait for members, the enum for variants
	Member  ast.ItemID // member fn/memo
	Variant int
	Span    source.Span
}
