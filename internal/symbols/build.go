package symbols

import (
	"husk/internal/ast"
	"husk/internal/builtin"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/source"
)

type pending struct {
	ident source.StringID
	span  source.Span
	kind  entity.Kind
	node  Node
}

// BuildCrate registers every module, item, variant, impl block and member of
// files. Original problems (duplicates, unresolved imports and impl targets)
// are collected in Crate.Errors; the tree is still built around them.
func BuildCrate(b *ast.Builder, files []ast.FileID, reg *entity.Registry, bi *builtin.Registry) *Crate {
	c := &Crate{
		Reg:      reg,
		Builder:  b,
		Builtin:  bi,
		byPath:   make(map[entity.Path]*Module, len(files)),
		byName:   make(map[source.StringID]*Module, len(files)),
		nodes:    make(map[entity.Path]Node),
		children: make(map[entity.Path]map[source.StringID][]entity.Path),
		impls:    make(map[entity.Path][]entity.Path),
		traits:   make(map[entity.Path][]entity.Path),
		members:  make(map[entity.Path][]entity.Path),
	}
	for _, st := range bi.Statics() {
		if impl, ok := bi.ImplOf(st.Owner); ok && st.Owner.IsValid() {
			c.addChild(impl, st.Path, reg.Strings().Intern(st.Fn.Name))
		}
	}

	for _, fid := range files {
		f := b.Files.Get(fid)
		if f == nil {
			continue
		}
		if prev, dup := c.byName[f.Module]; dup {
			c.Errors = append(c.Errors, diag.Original(diag.PathDuplicateDefinition, f.Span,
				"module %q is defined twice (first in file %d)", b.Name(f.Module), prev.File))
			continue
		}
		p := reg.InternRoute(entity.Data{Kind: entity.KindModule, Ident: f.Module})
		m := newModule(p, f.Module, fid)
		c.Modules = append(c.Modules, m)
		c.byPath[p] = m
		c.byName[f.Module] = m
	}

	for _, m := range c.Modules {
		c.collectItems(m)
	}
	for _, m := range c.Modules {
		c.collectUses(m)
	}
	for _, m := range c.Modules {
		c.collectImpls(m)
	}
	return c
}

// register interns a group of same-named entities under parent, issuing
// disambiguators and reporting every definition after the first.
func (c *Crate) register(parent entity.Path, group []pending) []entity.Path {
	counts := make(map[source.StringID]int, len(group))
	for _, g := range group {
		counts[g.ident]++
	}
	seen := make(map[source.StringID]source.Span, len(group))
	out := make([]entity.Path, 0, len(group))
	for _, g := range group {
		n := counts[g.ident]
		dis := c.Reg.Issue(parent, g.kind, g.ident, n)
		p := c.Reg.InternRoute(entity.Data{Kind: g.kind, Parent: parent, Ident: g.ident, Disambiguator: dis})
		if first, dup := seen[g.ident]; dup {
			c.Errors = append(c.Errors, diag.Original(diag.PathDuplicateDefinition, g.span,
				"`%s` is defined more than once (first at %s)", c.Builder.Name(g.ident), first))
		} else {
			seen[g.ident] = g.span
		}
		c.nodes[p] = g.node
		c.addChild(parent, p, g.ident)
		out = append(out, p)
	}
	return out
}

func (c *Crate) collectItems(m *Module) {
	items := c.Builder.Items
	f := c.Builder.Files.Get(m.File)
	var group []pending
	for _, id := range f.Items {
		it := items.Get(id)
		var kind entity.Kind
		switch it.Kind {
		case ast.ItemStruct, ast.ItemEnum:
			kind = entity.KindType
		case ast.ItemTrait:
			kind = entity.KindTrait
		case ast.ItemFn, ast.ItemMemo:
			kind = entity.KindFugitive
		default:
			continue
		}
		name, span, ok := items.ItemName(id)
		if !ok || name == source.NoStringID {
			continue
		}
		group = append(group, pending{ident: name, span: span, kind: kind, node: Node{Kind: NodeItem, Module: m.Path, Item: id, Span: span}})
	}
	// one namespace per module: a struct and a fn sharing a name collide
	paths := c.register(m.Path, group)
	for i, p := range paths {
		g := group[i]
		m.defs[g.ident] = append(m.defs[g.ident], p)
		m.Items = append(m.Items, p)
		c.collectChildren(m, p, g.node.Item)
	}
}

func (c *Crate) collectChildren(m *Module, parent entity.Path, id ast.ItemID) {
	items := c.Builder.Items
	if en, ok := items.Enum(id); ok {
		group := make([]pending, 0, len(en.Variants))
		for i, v := range en.Variants {
			group = append(group, pending{ident: v.Name, span: v.Span, kind: entity.KindTypeVariant,
				node: Node{Kind: NodeVariant, Module: m.Path, Item: id, Variant: i, Span: v.Span}})
		}
		c.register(parent, group)
	}
	if tr, ok := items.Trait(id); ok {
		c.registerMembers(m, parent, id, tr.Members)
	}
}

func (c *Crate) registerMembers(m *Module, parent entity.Path, owner ast.ItemID, members []ast.ItemID) []entity.Path {
	items := c.Builder.Items
	group := make([]pending, 0, len(members))
	for _, mid := range members {
		name, span, ok := items.ItemName(mid)
		if !ok || name == source.NoStringID {
			continue
		}
		group = append(group, pending{ident: name, span: span, kind: entity.KindAssocItem,
			node: Node{Kind: NodeMember, Module: m.Path, Item: owner, Member: mid, Span: span}})
	}
	paths := c.register(parent, group)
	c.members[parent] = append(c.members[parent], paths...)
	return paths
}

func (c *Crate) collectUses(m *Module) {
	items := c.Builder.Items
	f := c.Builder.Files.Get(m.File)
	for _, id := range f.Items {
		u, ok := items.Use(id)
		if !ok || len(u.Segments) == 0 {
			continue
		}
		name, span := u.Imported()
		entry := &useEntry{item: id, span: span}
		sym, err := c.resolveUse(u)
		if err != nil {
			c.Errors = append(c.Errors, err)
		} else {
			entry.target = sym
			entry.ok = true
		}
		if _, dup := m.uses[name]; dup {
			c.Errors = append(c.Errors, diag.Original(diag.PathDuplicateDefinition, span,
				"`%s` is imported more than once", c.Builder.Name(name)))
			continue
		}
		m.uses[name] = entry
	}
}

func (c *Crate) resolveUse(u *ast.UseItem) (Symbol, *diag.Error) {
	first, ok := c.byName[u.Segments[0]]
	var sym Symbol
	switch {
	case ok:
		sym = Symbol{Kind: SymbolModule, Path: first.Path}
	case c.Builder.Name(u.Segments[0]) == builtin.CoreModule:
		sym = Symbol{Kind: SymbolModule, Path: c.Builtin.Core}
	default:
		return Symbol{}, diag.Original(diag.PathUnresolvedUse, u.Spans[0],
			"no module named `%s`", c.Builder.Name(u.Segments[0]))
	}
	for i := 1; i < len(u.Segments); i++ {
		next, err := c.ResolveSubentity(sym.Path, u.Segments[i], u.Spans[i])
		if err != nil {
			return Symbol{}, diag.Original(diag.PathUnresolvedUse, u.Spans[i], "%s", err.Message)
		}
		sym = next
	}
	return sym, nil
}

func (c *Crate) collectImpls(m *Module) {
	items := c.Builder.Items
	f := c.Builder.Files.Get(m.File)
	type implInfo struct {
		item          ast.ItemID
		target, trait entity.Path
	}
	var infos []implInfo
	groups := make(map[[2]entity.Path]int)
	for _, id := range f.Items {
		im, ok := items.Impl(id)
		if !ok {
			continue
		}
		target, err := c.resolveImplHead(m, im.Target, entity.KindType)
		if err != nil {
			c.Errors = append(c.Errors, err)
			continue
		}
		var trait entity.Path
		if im.Trait.IsValid() {
			if trait, err = c.resolveImplHead(m, im.Trait, entity.KindTrait); err != nil {
				c.Errors = append(c.Errors, err)
				continue
			}
		}
		infos = append(infos, implInfo{item: id, target: target, trait: trait})
		groups[[2]entity.Path{target, trait}]++
	}
	for _, in := range infos {
		im, _ := items.Impl(in.item)
		ident := c.Reg.MustData(in.target).Ident
		dis := c.Reg.Issue(m.Path, entity.KindImplBlock, ident, groups[[2]entity.Path{in.target, in.trait}])
		p := c.Reg.InternRoute(entity.Data{Kind: entity.KindImplBlock, Parent: m.Path, Ident: ident,
			Disambiguator: dis, Target: in.target, Trait: in.trait})
		c.nodes[p] = Node{Kind: NodeImpl, Module: m.Path, Item: in.item, Span: items.Get(in.item).Span}
		m.Impls = append(m.Impls, p)
		if in.trait.IsValid() {
			c.traits[in.target] = append(c.traits[in.target], p)
		} else {
			c.impls[in.target] = append(c.impls[in.target], p)
		}
		c.registerMembers(m, p, in.item, im.Members)
	}
}

// resolveImplHead resolves the head path of an impl target or trait and checks its kind.
func (c *Crate) resolveImplHead(m *Module, expr ast.ExprID, want entity.Kind) (entity.Path, *diag.Error) {
	sym, err := c.ResolvePathExpr(m.Path, expr)
	if err != nil {
		return entity.NoPath, err
	}
	if sym.Kind != SymbolEntity || c.Reg.Kind(sym.Path) != want {
		return entity.NoPath, diag.Original(diag.DeclImplTargetInvalid, c.Builder.Exprs.Get(expr).Span,
			"impl %s must name a %s", map[entity.Kind]string{entity.KindType: "target", entity.KindTrait: "trait"}[want], want)
	}
	return sym.Path, nil
}
