package symbols

import (
	"husk/internal/ast"
	"husk/internal/entity"
	"husk/internal/source"
)

type useEntry struct {
	item   ast.ItemID
	span   source.Span
	target Symbol
	ok     bool
}

// Module is the symbol table of one file.
type Module struct {
	Path entity.Path
	Name source.StringID
	File ast.FileID

	defs  map[source.StringID][]entity.Path
	uses  map[source.StringID]*useEntry
	Impls []entity.Path
	Items []entity.Path // definitions in source order
}

func newModule(p entity.Path, name source.StringID, file ast.FileID) *Module {
	return &Module{
		Path: p,
		Name: name,
		File: file,
		defs: make(map[source.StringID][]entity.Path),
		uses: make(map[source.StringID]*useEntry),
	}
}

// Defs returns every path defined under ident in m.
func (m *Module) Defs(ident source.StringID) []entity.Path { return m.defs[ident] }
