package symbols

import (
	"husk/internal/ast"
	"husk/internal/builtin"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/source"
)

// Crate is the tree of modules built from parsed files. It is read-only
// after BuildCrate returns and may be shared across goroutines.
type Crate struct {
	Reg     *entity.Registry
	Builder *ast.Builder
	Builtin *builtin.Registry

	Modules  []*Module
	byPath   map[entity.Path]*Module
	byName   map[source.StringID]*Module
	nodes    map[entity.Path]Node
	children map[entity.Path]map[source.StringID][]entity.Path
	impls    map[entity.Path][]entity.Path // type or trait -> impl blocks naming it
	traits   map[entity.Path][]entity.Path // type -> trait impl blocks
	members  map[entity.Path][]entity.Path // impl block or trait -> members in source order

	// Errors are the Original errors found while building the tree.
	Errors []*diag.Error
}

func (c *Crate) Strings() *source.Interner { return c.Reg.Strings() }

// Module returns the module with the given path.
func (c *Crate) Module(p entity.Path) (*Module, bool) {
	m, ok := c.byPath[p]
	return m, ok
}

// ModuleByName finds a module by its file-derived name.
func (c *Crate) ModuleByName(name string) (*Module, bool) {
	m, ok := c.byName[c.Strings().Intern(name)]
	return m, ok
}

// Node returns the syntax backing p.
func (c *Crate) Node(p entity.Path) (Node, bool) {
	n, ok := c.nodes[p]
	return n, ok
}

// ImplsOf lists the impl blocks whose target is ty, type impls first.
func (c *Crate) ImplsOf(ty entity.Path) []entity.Path {
	var out []entity.Path
	if b, ok := c.Builtin.ImplOf(ty); ok {
		out = append(out, b)
	}
	out = append(out, c.impls[ty]...)
	return append(out, c.traits[ty]...)
}

// TraitImplsOf lists `impl Trait for ty` blocks.
func (c *Crate) TraitImplsOf(ty entity.Path) []entity.Path { return c.traits[ty] }

// Members lists the associated items of an impl block or trait in source order.
func (c *Crate) Members(owner entity.Path) []entity.Path { return c.members[owner] }

// Children lists paths registered under parent with the given ident.
func (c *Crate) Children(parent entity.Path, ident source.StringID) []entity.Path {
	return c.children[parent][ident]
}

func (c *Crate) addChild(parent, child entity.Path, ident source.StringID) {
	m := c.children[parent]
	if m == nil {
		m = make(map[source.StringID][]entity.Path)
		c.children[parent] = m
	}
	m[ident] = append(m[ident], child)
}
