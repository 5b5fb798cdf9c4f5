package decl

import (
	"husk/internal/ast"
	"husk/internal/builtin"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/source"
	"husk/internal/symbols"
	"husk/internal/term"
)

// builder computes one declaration and collects the Original errors found on the way.
type builder struct {
	db   *DB
	path entity.Path
	errs []*diag.Error
}

func (b *builder) fail(err *diag.Error) {
	if err != nil && err.Origin == diag.OriginOriginal {
		b.errs = append(b.errs, err)
	}
}

func (b *builder) build() (Decl, *diag.Error) {
	db := b.db
	reg := db.Reg()
	bi := db.Crate.Builtin
	if st, ok := bi.Static(b.path); ok {
		return b.static(st), nil
	}
	if ri, ok := bi.Root(b.path); ok {
		if ri.IsTrait() {
			return &TraitDecl{path: b.path, Module: bi.Core, Self: b.selfSymbol()}, nil
		}
		return &TypeDecl{path: b.path, Module: bi.Core, Kind: TypeBuiltin, Generics: b.rootGenerics(b.path)}, nil
	}
	data := reg.MustData(b.path)
	if data.Kind == entity.KindImplBlock && data.Parent == bi.Core {
		gs := b.rootGenerics(data.Target)
		return &ImplBlockDecl{
			path:       b.path,
			Module:     bi.Core,
			Generics:   gs,
			Target:     db.Terms.Apply(db.Terms.TypePath(data.Target), symbolsOf(gs)...),
			TargetPath: data.Target,
		}, nil
	}

	node, ok := db.Crate.Node(b.path)
	if !ok {
		return nil, diag.DerivedAt(diag.DeclMissingBacking, source.Span{}, "no syntax backs %s", reg.Display(b.path))
	}
	items := db.Crate.Builder.Items
	switch node.Kind {
	case symbols.NodeItem:
		if fn, ok := items.Fn(node.Item); ok {
			return b.fn(node.Module, fn, nil, term.NoTerm, entity.NoPath), nil
		}
		if m, ok := items.Memo(node.Item); ok {
			return b.memo(node.Module, m, nil, term.NoTerm, entity.NoPath), nil
		}
		if s, ok := items.Struct(node.Item); ok {
			return b.structDecl(node.Module, s), nil
		}
		if e, ok := items.Enum(node.Item); ok {
			return b.enumDecl(node.Module, e), nil
		}
		if t, ok := items.Trait(node.Item); ok {
			return &TraitDecl{path: b.path, Module: node.Module, Generics: b.generics(node.Module, b.path, t.Generics, 0), Self: b.selfSymbol()}, nil
		}
	case symbols.NodeVariant:
		return &VariantDecl{path: b.path, Parent: data.Parent, Index: node.Variant}, nil
	case symbols.NodeImpl:
		return b.impl(node)
	case symbols.NodeMember:
		return b.member(node, data.Parent)
	}
	panic(diag.Internalf("decl: unexpected syntax for %s", reg.Display(b.path)))
}

func (b *builder) selfSymbol() term.Term {
	strs := b.db.Reg().Strings()
	return b.db.Terms.Symbol(b.path, selfIndex, strs.Intern("Self"), b.db.Terms.Common().Type)
}

// selfIndex keeps the trait Self symbol apart from positional generics.
const selfIndex = 1<<32 - 1

func (b *builder) rootGenerics(p entity.Path) []GenericParam {
	ri, _ := b.db.Crate.Builtin.Root(p)
	strs := b.db.Reg().Strings()
	out := make([]GenericParam, 0, len(ri.Generics()))
	for i, name := range ri.Generics() {
		id := strs.Intern(name)
		out = append(out, GenericParam{Ident: id, Symbol: b.db.Terms.Symbol(p, uint32(i), id, b.db.Terms.Common().Type)})
	}
	return out
}

func (b *builder) generics(module, owner entity.Path, gs []ast.GenericParam, offset int) []GenericParam {
	out := make([]GenericParam, 0, len(gs))
	sc := NewScope(module, nil, term.NoTerm)
	for i, g := range gs {
		ty := b.db.Terms.Common().Type
		if g.Const && g.Type.IsValid() {
			t, err := b.db.TypeTerm(sc, g.Type, DestValueType)
			b.fail(err)
			if err == nil {
				ty = t
			}
		}
		idx := uint32(offset + i)
		out = append(out, GenericParam{Ident: g.Name, Span: g.Span, Const: g.Const, Symbol: b.db.Terms.Symbol(owner, idx, g.Name, ty)})
	}
	return out
}

func liasonOf(m ast.ParamMode) term.Liason {
	switch m {
	case ast.ParamMut:
		return term.LiasonMut
	case ast.ParamOwn:
		return term.LiasonMove
	case ast.ParamOwnMut:
		return term.LiasonMoveMut
	case ast.ParamRef:
		return term.LiasonEvalRef
	default:
		return term.LiasonPure
	}
}

func (b *builder) valueType(sc *Scope, expr ast.ExprID) term.Term {
	if !expr.IsValid() {
		return term.NoTerm
	}
	t, err := b.db.TypeTerm(sc, expr, DestValueType)
	b.fail(err)
	return t
}

func (b *builder) fn(module entity.Path, fn *ast.FnItem, ownerGenerics []GenericParam, self term.Term, owner entity.Path) *CallFormDecl {
	for _, se := range fn.SigErrors {
		b.errs = append(b.errs, diag.Original(diag.DeclMalformedSignature, se.Span, "%s", se.Msg))
	}
	d := &CallFormDecl{
		path:   b.path,
		Module: module,
		Owner:  owner,
		Lazy:   fn.Lazy,
		Body:   fn.Body,
		ThisTy: self,
	}
	d.Generics = append(append(d.Generics, ownerGenerics...), b.generics(module, b.path, fn.Generics, len(ownerGenerics))...)
	sc := NewScope(module, d.Generics, self)
	if fn.Receiver != nil {
		if self == term.NoTerm {
			b.errs = append(b.errs, diag.Original(diag.DeclSelfOutsideImpl, fn.Receiver.Span, "`self` parameter outside an impl or trait"))
		} else {
			l := liasonOf(fn.Receiver.Mode)
			d.This = &l
		}
	}
	seen := make(map[source.StringID]bool, len(fn.Params)+len(fn.Keyed)+1)
	check := func(name source.StringID, span source.Span) {
		if seen[name] {
			b.errs = append(b.errs, diag.Original(diag.DeclDuplicateParameter, span,
				"parameter `%s` is declared twice", b.db.Crate.Builder.Name(name)))
		}
		seen[name] = true
	}
	for _, p := range fn.Params {
		check(p.Name, p.NameSpan)
		d.Params = append(d.Params, Param{Ident: p.Name, Span: p.NameSpan, Ty: b.valueType(sc, p.Type), Liason: liasonOf(p.Mode)})
	}
	if v := fn.Variadic; v != nil {
		check(v.Name, v.NameSpan)
		d.Variadic = Variadic{Kind: VariadicSingleTyped, Ident: v.Name, Span: v.NameSpan, Ty: b.valueType(sc, v.Type), Liason: liasonOf(v.Mode)}
	}
	for _, k := range fn.Keyed {
		check(k.Name, k.NameSpan)
		d.Keyed = append(d.Keyed, Param{Ident: k.Name, Span: k.NameSpan, Ty: b.valueType(sc, k.Type), Liason: liasonOf(k.Mode), Default: k.Default})
	}
	d.Output = b.db.Terms.Common().Unit
	if fn.Output.IsValid() {
		d.Output = b.valueType(sc, fn.Output)
	}
	if fn.OutputRef {
		d.OutputLiason = OutputMemberAccess
	}
	return d
}

func (b *builder) memo(module entity.Path, m *ast.MemoItem, ownerGenerics []GenericParam, self term.Term, owner entity.Path) *CallFormDecl {
	sc := NewScope(module, ownerGenerics, self)
	this := term.LiasonPure
	d := &CallFormDecl{
		path:         b.path,
		Module:       module,
		Owner:        owner,
		Lazy:         true,
		Memo:         true,
		This:         &this,
		ThisTy:       self,
		Generics:     ownerGenerics,
		Output:       b.valueType(sc, m.Type),
		OutputLiason: OutputMemberAccess,
		Body:         m.Body,
	}
	if self == term.NoTerm {
		d.This = nil
	}
	return d
}

func (b *builder) structDecl(module entity.Path, s *ast.StructItem) *TypeDecl {
	d := &TypeDecl{path: b.path, Module: module, Kind: TypeStruct, Generics: b.generics(module, b.path, s.Generics, 0)}
	sc := NewScope(module, d.Generics, term.NoTerm)
	seen := make(map[source.StringID]bool, len(s.Fields))
	for _, f := range s.Fields {
		if seen[f.Name] {
			b.errs = append(b.errs, diag.Original(diag.PathDuplicateDefinition, f.NameSpan,
				"field `%s` is declared twice", b.db.Crate.Builder.Name(f.Name)))
			continue
		}
		seen[f.Name] = true
		liason := FieldOwn
		switch f.Mode {
		case ast.FieldRef:
			liason = FieldGlobalRef
		case ast.FieldLazy:
			liason = FieldLazyOwn
		}
		d.Fields = append(d.Fields, Field{Ident: f.Name, Span: f.NameSpan, Ty: b.valueType(sc, f.Type), Liason: liason})
	}
	return d
}

func (b *builder) enumDecl(module entity.Path, e *ast.EnumItem) *TypeDecl {
	d := &TypeDecl{path: b.path, Module: module, Kind: TypeEnum, Generics: b.generics(module, b.path, e.Generics, 0)}
	for _, v := range e.Variants {
		d.Variants = append(d.Variants, v.Name)
	}
	return d
}

func (b *builder) impl(node symbols.Node) (Decl, *diag.Error) {
	im, _ := b.db.Crate.Builder.Items.Impl(node.Item)
	data := b.db.Reg().MustData(b.path)
	d := &ImplBlockDecl{path: b.path, Module: node.Module, TargetPath: data.Target, TraitPath: data.Trait}
	d.Generics = b.generics(node.Module, b.path, im.Generics, 0)
	sc := NewScope(node.Module, d.Generics, term.NoTerm)
	target, err := b.db.TypeTerm(sc, im.Target, DestValueType)
	if err != nil {
		b.fail(err)
		return nil, diag.Derived(err)
	}
	d.Target = target
	if im.Trait.IsValid() {
		tr, err := b.db.typeTerm(sc, im.Trait)
		if err != nil {
			b.fail(err)
			return nil, diag.Derived(err)
		}
		d.Trait = tr
	}
	return d, nil
}

func (b *builder) member(node symbols.Node, owner entity.Path) (Decl, *diag.Error) {
	db := b.db
	items := db.Crate.Builder.Items
	var generics []GenericParam
	var self term.Term
	switch db.Reg().Kind(owner) {
	case entity.KindImplBlock:
		im, err := db.ImplOf(owner)
		if err != nil {
			return nil, diag.Derived(err)
		}
		generics, self = im.Generics, im.Target
	case entity.KindTrait:
		d, err := db.DeclOf(owner)
		if err != nil {
			return nil, diag.Derived(err)
		}
		tr := d.(*TraitDecl)
		generics, self = tr.Generics, tr.Self
	default:
		panic(diag.Internalf("decl: member %s has owner of kind %s", db.Reg().Display(b.path), db.Reg().Kind(owner)))
	}
	if fn, ok := items.Fn(node.Member); ok {
		return b.fn(node.Module, fn, generics, self, owner), nil
	}
	if m, ok := items.Memo(node.Member); ok {
		return b.memo(node.Module, m, generics, self, owner), nil
	}
	panic(diag.Internalf("decl: member %s is neither fn nor memo", db.Reg().Display(b.path)))
}

func (b *builder) static(st *builtin.Static) *CallFormDecl {
	db := b.db
	bi := db.Crate.Builtin
	d := &CallFormDecl{path: b.path, Module: bi.Core, Static: true, Lazy: st.Fn.Lazy}
	if st.Owner.IsValid() {
		d.Generics = b.rootGenerics(st.Owner)
		d.ThisTy = db.Terms.Apply(db.Terms.TypePath(st.Owner), symbolsOf(d.Generics)...)
		d.Owner, _ = bi.ImplOf(st.Owner)
	}
	sc := NewScope(bi.Core, d.Generics, d.ThisTy)
	ty := func(expr ast.ExprID) term.Term {
		t, err := db.TypeTerm(sc, expr, DestValueType)
		if err != nil {
			panic(diag.Internalf("builtin template %s: %s", st.Fn.Name, err.Message))
		}
		return t
	}
	if st.Fn.This != nil {
		l := *st.Fn.This
		d.This = &l
	}
	for _, p := range st.Params {
		d.Params = append(d.Params, Param{Ident: db.Reg().Strings().Intern(p.Ident), Ty: ty(p.TyExpr), Liason: p.Liason})
	}
	if v := st.Variadic; v != nil {
		d.Variadic = Variadic{Kind: VariadicSingleTyped, Ident: db.Reg().Strings().Intern(v.Ident), Ty: ty(v.TyExpr), Liason: v.Liason}
	}
	for _, k := range st.Keyed {
		d.Keyed = append(d.Keyed, Param{Ident: db.Reg().Strings().Intern(k.Ident), Ty: ty(k.TyExpr), Liason: k.Liason, Default: k.DefaultExpr})
	}
	d.Output = ty(st.Output)
	if st.Fn.OutputRef {
		d.OutputLiason = OutputMemberAccess
	}
	return d
}
