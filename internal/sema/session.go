package sema

import (
	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/hollow"
	"husk/internal/source"
	"husk/internal/symbols"
	"husk/internal/term"
	"husk/internal/trace"
)

type pendingInst struct {
	inst *term.Instantiation
	args []hollow.Local
}

// pendingDecl is a member declaration whose impl generics are bound once
// the receiver's arguments are known.
type pendingDecl struct {
	target **decl.CallFormDecl
	raw    *decl.CallFormDecl
	inst   *term.Instantiation
}

// session types one region. It owns its hollow region exclusively.
type session struct {
	e     *Engine
	db    *decl.DB
	tab   *term.Table
	exprs *ast.Exprs
	stmts *ast.Stmts
	res   *RegionResult
	r     *hollow.Region
	span  uint64

	scope     *decl.Scope
	locals    *symbols.Region
	inherited []hollow.Local
	current   []hollow.Local
	output    hollow.Local

	insts  []pendingInst
	decls  []pendingDecl
	groups []*ItemGroup
	errs   []*diag.Error
}

func newSession(e *Engine, res *RegionResult, span uint64) *session {
	db := e.DB
	cf := res.Decl
	s := &session{
		e:      e,
		db:     db,
		tab:    db.Terms,
		exprs:  db.Crate.Builder.Exprs,
		stmts:  db.Crate.Builder.Stmts,
		res:    res,
		r:      hollow.NewRegion(db.Terms),
		span:   span,
		scope:  decl.NewScope(cf.Module, cf.Generics, cf.ThisTy),
		locals: symbols.NewRegion(),
	}
	res.Module = cf.Module
	res.Lazy = cf.Lazy
	res.Locals = s.locals
	return s
}

func (s *session) run() {
	cf := s.res.Decl
	switch s.res.Key.Kind {
	case RegionBody:
		s.inheritSignature(cf)
		s.res.Root = cf.Body
		s.res.Output = cf.Output
	case RegionKeyedDefault:
		k := cf.Keyed[s.res.Key.Param]
		s.res.Root = k.Default
		s.res.Output = k.Ty
		s.res.Lazy = false
	}
	if !s.res.Root.IsValid() {
		panic(diag.Internalf("sema: region %s has no expression", s.res.Key.Display(s.db.Reg())))
	}
	s.output = s.ethereal(s.res.Output)
	exp := hollow.AnyDerived()
	if !s.output.IsErr() {
		exp = hollow.Convertible(s.output)
	}
	s.infer(s.res.Root, exp)
	s.finish()
}

func paramMode(l term.Liason) ast.ParamMode {
	switch l {
	case term.LiasonMut:
		return ast.ParamMut
	case term.LiasonMove:
		return ast.ParamOwn
	case term.LiasonMoveMut:
		return ast.ParamOwnMut
	case term.LiasonEvalRef:
		return ast.ParamRef
	default:
		return ast.ParamPure
	}
}

func (s *session) inheritSignature(cf *decl.CallFormDecl) {
	strs := s.db.Reg().Strings()
	if cf.This != nil {
		ref := s.locals.Inherit(symbols.Local{Ident: strs.Intern("self"), Kind: symbols.LocalSelf, Mode: paramMode(*cf.This)})
		s.inherited = append(s.inherited, s.ethereal(cf.ThisTy))
		s.res.Self, s.res.HasSelf = ref, true
	}
	for _, p := range cf.Params {
		s.locals.Inherit(symbols.Local{Ident: p.Ident, Kind: symbols.LocalParam, Span: p.Span, Mode: paramMode(p.Liason)})
		s.inherited = append(s.inherited, s.ethereal(p.Ty))
	}
	if v := cf.Variadic; v.Kind == decl.VariadicSingleTyped {
		s.locals.Inherit(symbols.Local{Ident: v.Ident, Kind: symbols.LocalParam, Span: v.Span, Mode: paramMode(v.Liason), Variadic: true})
		ty := hollow.Err
		if v.Ty.IsValid() {
			ty = hollow.Ethereal(s.tab.VecOf(v.Ty))
		}
		s.inherited = append(s.inherited, ty)
	}
	for _, k := range cf.Keyed {
		s.locals.Inherit(symbols.Local{Ident: k.Ident, Kind: symbols.LocalParam, Span: k.Span, Mode: paramMode(k.Liason), Keyed: true})
		s.inherited = append(s.inherited, s.ethereal(k.Ty))
	}
}

// ethereal lifts a declared type; a type the declaration failed to resolve is Err.
func (s *session) ethereal(t term.Term) hollow.Local {
	if t == term.NoTerm {
		return hollow.Err
	}
	return hollow.Ethereal(t)
}

func (s *session) localTy(ref symbols.VarRef) hollow.Local {
	if ref.Inherited {
		return s.inherited[ref.Index]
	}
	return s.current[ref.Index]
}

func (s *session) define(l symbols.Local, ty hollow.Local) symbols.VarRef {
	ref := s.locals.Define(l)
	if ref.Index != len(s.current) {
		panic(diag.Internalf("sema: local %d defined out of order", ref.Index))
	}
	s.current = append(s.current, ty)
	return ref
}

func (s *session) record(err *diag.Error) {
	s.errs = append(s.errs, err)
}

// infer types expr under exp. Every expression is typed exactly once per
// region; the expectation is registered right away so that later siblings
// observe what it pinned down.
func (s *session) infer(id ast.ExprID, exp hollow.Expectation) hollow.Local {
	if _, dup := s.res.Exprs[id]; dup {
		panic(diag.Internalf("sema: expression %d typed twice in %s", id, s.res.Key.Display(s.db.Reg())))
	}
	e := s.exprs.Get(id)
	if e == nil {
		panic(diag.Internalf("sema: invalid expression %d", id))
	}
	info := &ExprInfo{Expect: exp.Kind, entry: -1}
	s.res.Exprs[id] = info
	node := trace.Begin(s.e.Tracer, trace.ScopeNode, "infer_expr", s.span)

	ty, err := s.calc(id, e, info, exp)
	if err != nil {
		s.record(err)
		info.Err = err
		ty = hollow.Err
	}
	if !ty.IsValid() {
		panic(diag.Internalf("sema: %s expression %d produced no type", e.Kind, id))
	}
	info.local = ty
	if info.forwarded {
		s.r.ResolveWeak()
	} else {
		info.entry = s.r.Expect(id, e.Span, ty, exp)
	}
	node.End(e.Kind.String())
	return ty
}

// instantiate opens one implicit hole per generic parameter.
func (s *session) instantiate(gs []decl.GenericParam, span source.Span) (map[term.Term]hollow.Local, *term.Instantiation) {
	subst, syms, args := s.holes(gs, span)
	return subst, s.track(syms, args)
}

func (s *session) holes(gs []decl.GenericParam, span source.Span) (map[term.Term]hollow.Local, []term.Term, []hollow.Local) {
	if len(gs) == 0 {
		return nil, nil, nil
	}
	subst := make(map[term.Term]hollow.Local, len(gs))
	syms := make([]term.Term, len(gs))
	args := make([]hollow.Local, len(gs))
	for i, g := range gs {
		h := s.r.NewHole(hollow.HoleImplicit, span)
		subst[g.Symbol] = h
		syms[i] = g.Symbol
		args[i] = h
	}
	return subst, syms, args
}

// track returns an instantiation whose arguments are filled in when the
// session closes.
func (s *session) track(syms []term.Term, args []hollow.Local) *term.Instantiation {
	if len(syms) == 0 {
		return nil
	}
	p := pendingInst{
		inst: &term.Instantiation{Symbols: syms, Args: make([]term.Term, len(syms))},
		args: args,
	}
	s.insts = append(s.insts, p)
	return p.inst
}

func (s *session) resolved(l hollow.Local) term.Term {
	if !l.IsValid() {
		return term.NoTerm
	}
	t, _ := s.r.Resolved(l)
	return t
}

func (s *session) finish() {
	hollowErrs := s.r.ResolveStrong()
	for _, info := range s.res.Exprs {
		if t, ok := s.r.Resolved(info.local); ok {
			info.Ty = t
		} else if info.Err == nil {
			p := s.r.ResolveProgress(info.local)
			info.Err = derived(p.Err, source.Span{})
		}
		if info.entry >= 0 {
			if ent := s.r.Entry(info.entry); ent.Outcome.State == hollow.Failed {
				info.ExpectErr = ent.Outcome.Err
			}
		}
	}
	s.res.Inherited = make([]term.Term, len(s.inherited))
	for i, l := range s.inherited {
		s.res.Inherited[i] = s.resolved(l)
	}
	s.res.Current = make([]term.Term, len(s.current))
	for i, l := range s.current {
		s.res.Current[i] = s.resolved(l)
	}
	for _, p := range s.insts {
		for i, a := range p.args {
			p.inst.Args[i] = s.resolved(a)
		}
	}
	for _, p := range s.decls {
		*p.target = p.raw.Instantiate(s.tab, p.inst)
	}
	for _, g := range s.groups {
		g.Ty = s.resolved(g.ty)
	}
	s.res.Errors = append(s.res.Errors, s.errs...)
	s.res.Errors = append(s.res.Errors, hollowErrs...)
}

// derived wraps err, or reports an abandoned resolution at span when
// there is no cause to point at.
func derived(err *diag.Error, span source.Span) *diag.Error {
	if err == nil {
		return diag.DerivedAt(diag.InferAbandoned, span, "abandoned after earlier error")
	}
	return diag.Derived(err)
}

func sourceSpanOf(db *decl.DB, key RegionKey) source.Span {
	if n, ok := db.Crate.Node(key.Path); ok {
		return n.Span
	}
	return source.Span{}
}
