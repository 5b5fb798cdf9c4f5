package builtin

import (
	"fmt"

	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/parser"
	"husk/internal/source"
	"husk/internal/term"
)

// CoreModule is the name of the module builtin entities live in.
const CoreModule = "core"

// ParsedParam is a StaticParam with its type text parsed.
type ParsedParam struct {
	StaticParam
	TyExpr      ast.ExprID
	DefaultExpr ast.ExprID
}

// Static is a registered template together with its parsed annotations.
type Static struct {
	Fn       *StaticFn
	Path     entity.Path
	Owner    entity.Path // type path for methods
	Params   []ParsedParam
	Variadic *ParsedParam
	Keyed    []ParsedParam
	Output   ast.ExprID
}

// Registry is the static registry: root paths, their impl blocks and templates.
type Registry struct {
	Core    entity.Path
	paths   [numRoots]entity.Path
	byIdent map[source.StringID]entity.Path
	roots   map[entity.Path]RootIdent
	impls   map[entity.Path]entity.Path // type -> its builtin impl block
	statics map[entity.Path]*Static
	ordered []*Static
	fns     map[source.StringID]entity.Path
}

// Install registers every root entity and parses every template. It must run
// before inference starts: it writes to the shared syntax arenas.
func Install(reg *entity.Registry, fs *source.FileSet, b *ast.Builder, rep diag.Reporter) (*Registry, error) {
	strs := reg.Strings()
	r := &Registry{
		Core:    reg.Root(CoreModule),
		byIdent: make(map[source.StringID]entity.Path, numRoots),
		roots:   make(map[entity.Path]RootIdent, numRoots),
		impls:   make(map[entity.Path]entity.Path),
		statics: make(map[entity.Path]*Static, len(templates)),
		fns:     make(map[source.StringID]entity.Path),
	}
	for i := range roots {
		ri := RootIdent(i)
		kind := entity.KindType
		if ri.IsTrait() {
			kind = entity.KindTrait
		}
		ident := strs.Intern(roots[i].name)
		p := reg.MakeSubroute(r.Core, kind, ident, nil)
		r.paths[i] = p
		r.roots[p] = ri
		if !roots[i].hidden {
			r.byIdent[ident] = p
		}
	}

	parse := func(owner, what, text string) (ast.ExprID, error) {
		name := fmt.Sprintf("<builtin %s::%s %s>", owner, what, text)
		id, ok := parser.ParseTypeText(fs, b, name, text, rep)
		if !ok {
			return ast.NoExprID, fmt.Errorf("builtin template %s::%s: cannot parse %q", owner, what, text)
		}
		return id, nil
	}
	parseParam := func(owner, fn string, sp StaticParam) (ParsedParam, error) {
		pp := ParsedParam{StaticParam: sp}
		var err error
		if pp.TyExpr, err = parse(owner, fn, sp.Ty); err != nil {
			return pp, err
		}
		if sp.Default != "" {
			name := fmt.Sprintf("<builtin %s::%s default %s>", owner, fn, sp.Ident)
			id, ok := parser.ParseExprText(fs, b, name, sp.Default, rep)
			if !ok {
				return pp, fmt.Errorf("builtin template %s::%s: cannot parse default %q", owner, fn, sp.Default)
			}
			pp.DefaultExpr = id
		}
		return pp, nil
	}

	for i := range templates {
		tpl := &templates[i]
		st := &Static{Fn: tpl}
		ownerName := CoreModule
		if tpl.Owner < numRoots {
			ty := r.paths[tpl.Owner]
			ownerName = tpl.Owner.String()
			impl, ok := r.impls[ty]
			if !ok {
				impl = reg.InternRoute(entity.Data{Kind: entity.KindImplBlock, Parent: r.Core, Target: ty})
				r.impls[ty] = impl
			}
			st.Owner = ty
			st.Path = reg.MakeSubroute(impl, entity.KindAssocItem, strs.Intern(tpl.Name), nil)
		} else {
			ident := strs.Intern(tpl.Name)
			st.Path = reg.MakeSubroute(r.Core, entity.KindFugitive, ident, nil)
			r.fns[ident] = st.Path
		}
		for _, sp := range tpl.Params {
			pp, err := parseParam(ownerName, tpl.Name, sp)
			if err != nil {
				return nil, err
			}
			st.Params = append(st.Params, pp)
		}
		if tpl.Variadic != nil {
			pp, err := parseParam(ownerName, tpl.Name, *tpl.Variadic)
			if err != nil {
				return nil, err
			}
			st.Variadic = &pp
		}
		for _, sp := range tpl.Keyed {
			pp, err := parseParam(ownerName, tpl.Name, sp)
			if err != nil {
				return nil, err
			}
			st.Keyed = append(st.Keyed, pp)
		}
		out, err := parse(ownerName, tpl.Name, tpl.Output)
		if err != nil {
			return nil, err
		}
		st.Output = out
		r.statics[st.Path] = st
		r.ordered = append(r.ordered, st)
	}
	return r, nil
}

// Path returns the entity path of a root identifier.
func (r *Registry) Path(ri RootIdent) entity.Path { return r.paths[ri] }

// Root maps a path back to its root identifier.
func (r *Registry) Root(p entity.Path) (RootIdent, bool) {
	ri, ok := r.roots[p]
	return ri, ok
}

// Lookup resolves a prelude identifier: roots first, then free functions.
func (r *Registry) Lookup(ident source.StringID) (entity.Path, bool) {
	if p, ok := r.byIdent[ident]; ok {
		return p, true
	}
	p, ok := r.fns[ident]
	return p, ok
}

// ImplOf returns the builtin impl block of a root type.
func (r *Registry) ImplOf(ty entity.Path) (entity.Path, bool) {
	p, ok := r.impls[ty]
	return p, ok
}

// Static returns the template registered at p.
func (r *Registry) Static(p entity.Path) (*Static, bool) {
	s, ok := r.statics[p]
	return s, ok
}

// Statics lists every template in registration order.
func (r *Registry) Statics() []*Static { return r.ordered }

// IsCopyable reports whether a root type is copyable by itself.
func (r *Registry) IsCopyable(p entity.Path) bool {
	ri, ok := r.roots[p]
	return ok && roots[ri].copyable
}

// Prims is the builtin vocabulary the term table needs.
func (r *Registry) Prims() term.Prims {
	return term.Prims{
		I32: r.paths[RootI32], I64: r.paths[RootI64],
		F32: r.paths[RootF32], F64: r.paths[RootF64],
		Bool: r.paths[RootBool], Str: r.paths[RootStr], Unit: r.paths[RootUnit],
		Vec: r.paths[RootVec], Option: r.paths[RootOption], Tuple: r.paths[RootTuple],
		Copy: r.paths[RootCopy],
	}
}
