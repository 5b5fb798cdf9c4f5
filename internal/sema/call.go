package sema

import (
	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/hollow"
	"husk/internal/source"
	"husk/internal/term"
)

// slot is one parameter a call-list item can bind to.
type slot struct {
	ident      source.StringID
	liason     term.Liason
	ty         hollow.Local
	hasDefault bool
}

// signature is the parameter list a call list is matched against.
type signature struct {
	regular  []slot
	variadic *slot
	keyed    []slot
}

func argValues(args []ast.CallArg) []ast.ExprID {
	out := make([]ast.ExprID, len(args))
	for i, a := range args {
		out[i] = a.Value
	}
	return out
}

// shapeSignature reads the parameters of a ritchie shape. Names of regular
// and variadic parameters and keyed defaults come from cf when the callee
// has a declaration; the call type only names keyed parameters.
func shapeSignature(sh hollow.Shape, cf *decl.CallFormDecl) signature {
	var sig signature
	for _, p := range sh.Params {
		sl := slot{ident: p.Ident, liason: p.Liason, ty: p.Ty}
		switch p.Kind {
		case term.ParamVariadic:
			if cf != nil && cf.Variadic.Kind == decl.VariadicSingleTyped {
				sl.ident = cf.Variadic.Ident
			}
			sig.variadic = &sl
		case term.ParamKeyed:
			if cf != nil {
				if k := cf.KeyedIndex(p.Ident); k >= 0 {
					sl.hasDefault = cf.Keyed[k].Default.IsValid()
				}
			}
			sig.keyed = append(sig.keyed, sl)
		default:
			if cf != nil && len(sig.regular) < len(cf.Params) {
				sl.ident = cf.Params[len(sig.regular)].Ident
			}
			sig.regular = append(sig.regular, sl)
		}
	}
	return sig
}

func (s *session) declSignature(cf *decl.CallFormDecl, subst map[term.Term]hollow.Local, span source.Span) signature {
	inst := func(t term.Term) hollow.Local {
		if t == term.NoTerm {
			return hollow.Err
		}
		return s.r.Instantiate(t, subst, span)
	}
	var sig signature
	for _, p := range cf.Params {
		sig.regular = append(sig.regular, slot{ident: p.Ident, liason: p.Liason, ty: inst(p.Ty)})
	}
	if v := cf.Variadic; v.Kind == decl.VariadicSingleTyped {
		sig.variadic = &slot{ident: v.Ident, liason: v.Liason, ty: inst(v.Ty)}
	}
	for _, k := range cf.Keyed {
		sig.keyed = append(sig.keyed, slot{ident: k.Ident, liason: k.Liason, ty: inst(k.Ty), hasDefault: k.Default.IsValid()})
	}
	return sig
}

// groupArgs matches call-list items against sig. Positional items fill the
// regular parameters in order, then the variadic run; keyed items attach by
// name wherever they appear. Groups come back in declaration order and
// slots[i] is the parameter type args[i] is checked against, invalid when
// the item bound to nothing.
func (s *session) groupArgs(args []ast.CallArg, sig signature, rpar source.Span) ([]ItemGroup, []hollow.Local, []*diag.Error) {
	name := s.db.Crate.Builder.Name
	regular := make([]ItemGroup, len(sig.regular))
	for i, p := range sig.regular {
		regular[i] = ItemGroup{Kind: GroupRegular, Param: i, Ident: name(p.ident), Liason: p.liason, ty: p.ty}
	}
	var variadic *ItemGroup
	if sig.variadic != nil {
		variadic = &ItemGroup{Kind: GroupVariadic, Ident: name(sig.variadic.ident), Liason: sig.variadic.liason, ty: sig.variadic.ty}
	}
	keyed := make([]ItemGroup, len(sig.keyed))
	for i, p := range sig.keyed {
		keyed[i] = ItemGroup{Kind: GroupKeyed, Param: i, Ident: name(p.ident), Liason: p.liason, ty: p.ty}
	}

	slots := make([]hollow.Local, len(args))
	var errs []*diag.Error
	next := 0
	for i, a := range args {
		if a.Key != source.NoStringID {
			k := -1
			for j, p := range sig.keyed {
				if p.ident == a.Key {
					k = j
					break
				}
			}
			switch {
			case k < 0:
				errs = append(errs, diag.Original(diag.InferUnknownKeyedArgument, a.KeySpan, "no keyed parameter `%s`", name(a.Key)))
			case len(keyed[k].Args) > 0:
				errs = append(errs, diag.Original(diag.InferDuplicateKeyedArgument, a.KeySpan, "keyed argument `%s` is given twice", name(a.Key)))
			default:
				keyed[k].Args = []ast.ExprID{a.Value}
				slots[i] = sig.keyed[k].ty
			}
			continue
		}
		switch {
		case next < len(regular):
			regular[next].Args = []ast.ExprID{a.Value}
			slots[i] = sig.regular[next].ty
			next++
		case variadic != nil:
			variadic.Args = append(variadic.Args, a.Value)
			slots[i] = sig.variadic.ty
		default:
			errs = append(errs, diag.Original(diag.InferArityMismatch, s.spanOf(a.Value),
				"expected %d positional arguments, found more", len(regular)))
		}
	}
	for ; next < len(regular); next++ {
		errs = append(errs, diag.Original(diag.InferMissingArgument, rpar, "missing argument for `%s`", regular[next].Ident))
	}
	for i := range keyed {
		if len(keyed[i].Args) > 0 {
			continue
		}
		if !sig.keyed[i].hasDefault {
			errs = append(errs, diag.Original(diag.InferMissingArgument, rpar, "missing keyed argument `%s`", keyed[i].Ident))
			continue
		}
		keyed[i].Default = true
	}

	groups := make([]ItemGroup, 0, len(regular)+len(keyed)+1)
	groups = append(groups, regular...)
	if variadic != nil {
		groups = append(groups, *variadic)
	}
	groups = append(groups, keyed...)
	return groups, slots, errs
}

// typeArgs types call-list items in source order against their slots.
func (s *session) typeArgs(args []ast.CallArg, slots []hollow.Local) {
	for i, a := range args {
		if slots[i].IsValid() {
			s.infer(a.Value, hollow.Convertible(slots[i]))
		} else {
			s.infer(a.Value, hollow.AnyDerived())
		}
	}
}

func (s *session) keepGroups(groups []ItemGroup) {
	for i := range groups {
		s.groups = append(s.groups, &groups[i])
	}
}

// firstOf records every error but the first, which becomes the expression's own.
func (s *session) firstOf(errs []*diag.Error) *diag.Error {
	for _, err := range errs[1:] {
		s.record(err)
	}
	return errs[0]
}

func (s *session) call(id ast.ExprID, e *ast.Expr, info *ExprInfo) (hollow.Local, *diag.Error) {
	cd, _ := s.exprs.Call(id)
	fl := s.infer(cd.Callee, hollow.FunctionType())
	if fl.IsErr() {
		s.visitDerived(argValues(cd.Args)...)
		return hollow.Err, derived(s.errOf(cd.Callee), e.Span)
	}
	callee := s.res.Exprs[cd.Callee]
	if callee.entry >= 0 {
		switch out := s.r.Entry(callee.entry).Outcome; out.State {
		case hollow.Failed:
			s.visitDerived(argValues(cd.Args)...)
			return hollow.Err, diag.Derived(out.Err)
		case hollow.Pending:
			s.visitDerived(argValues(cd.Args)...)
			return hollow.Err, diag.Original(diag.InferCannotInfer, s.spanOf(cd.Callee), "cannot tell what is called here")
		}
	}
	sh, ok := s.r.ShapeOf(fl)
	if !ok || (sh.Kind != hollow.DataCurry && sh.Kind != hollow.DataRitchie) {
		s.visitDerived(argValues(cd.Args)...)
		return hollow.Err, diag.Original(diag.InferExpectedFunction, s.spanOf(cd.Callee), "`%s` is not callable", s.r.Display(fl))
	}

	if sh.Kind == hollow.DataCurry {
		if len(cd.Args) != 1 || cd.Args[0].Key != source.NoStringID {
			s.visitDerived(argValues(cd.Args)...)
			return hollow.Err, diag.Original(diag.InferArityMismatch, e.Span, "a curried function takes exactly one positional argument")
		}
		s.infer(cd.Args[0].Value, hollow.Convertible(sh.Param))
		info.Dis = &CallDis{Mode: CallApplication}
		return sh.Return, nil
	}

	dis := &CallDis{Mode: CallRitchie, Ritchie: sh.Ritchie}
	switch d := callee.Dis.(type) {
	case *EntityDis:
		dis.Callee, dis.Decl, dis.Inst = d.Path, d.Decl, d.Inst
	case *TypePathDis:
		dis.Callee, dis.Constructor, dis.Inst = d.Path, true, d.Inst
	}
	groups, slots, errs := s.groupArgs(cd.Args, shapeSignature(sh, dis.Decl), cd.Rpar)
	s.typeArgs(cd.Args, slots)
	dis.Groups = groups
	s.keepGroups(dis.Groups)
	info.Dis = dis
	if len(errs) > 0 {
		return hollow.Err, s.firstOf(errs)
	}
	return sh.Return, nil
}

// member is an associated item found for a receiver. When the receiver's
// arguments were still open, subst maps the impl generics to holes unified
// with them.
type member struct {
	*decl.Method
	subst map[term.Term]hollow.Local
	syms  []term.Term
	args  []hollow.Local
	recv  string
	// open is set when Decl still mentions the impl generics.
	open bool
}

// openHead reports a receiver whose head type is known while some of its
// arguments are not, as in `Vec<_>`.
func (s *session) openHead(l hollow.Local) (hollow.Shape, bool) {
	if l.IsErr() {
		return hollow.Shape{}, false
	}
	s.r.ResolveWeak()
	if _, ok := s.r.Resolved(l); ok {
		return hollow.Shape{}, false
	}
	sh, ok := s.r.ShapeOf(l)
	return sh, ok && sh.Kind == hollow.DataTypeOntology
}

// memberOf looks up ident on the receiver expression id typed as l.
func (s *session) memberOf(id ast.ExprID, l hollow.Local, ident source.StringID, span source.Span) (*member, *diag.Error) {
	if sh, ok := s.openHead(l); ok {
		m, err := s.db.MethodOfHead(sh.Path, ident, span)
		if err != nil {
			return nil, err
		}
		subst, syms, args := s.holes(m.Impl.Generics, span)
		if !s.r.Unify(s.r.Instantiate(m.Impl.Target, subst, span), l) {
			return nil, diag.Original(diag.InferNoSuchMethod, span, "method `%s` exists for `%s`, not for `%s`",
				s.db.Crate.Builder.Name(ident), s.tab.Display(m.Impl.Target), s.r.Display(l))
		}
		return &member{Method: m, subst: subst, syms: syms, args: args, recv: s.r.Display(l), open: true}, nil
	}
	t, err := s.known(id, l)
	if err != nil {
		return nil, err
	}
	m, err := s.db.MethodOf(t, ident, span)
	if err != nil {
		return nil, err
	}
	mb := &member{Method: m, recv: s.tab.Display(t)}
	if m.Inst != nil {
		mb.syms = m.Inst.Symbols
		for _, a := range m.Inst.Args {
			mb.args = append(mb.args, s.ethereal(a))
		}
	}
	return mb, nil
}

// bind returns the declaration and the impl instantiation to record for m.
// For an open member both are completed when the session closes.
func (s *session) bind(m *member, target **decl.CallFormDecl) *term.Instantiation {
	if !m.open {
		*target = m.Decl
		return m.Inst
	}
	inst := s.track(m.syms, m.args)
	s.decls = append(s.decls, pendingDecl{target: target, raw: m.Decl, inst: inst})
	*target = m.Decl
	return inst
}

func merge(a, b map[term.Term]hollow.Local) map[term.Term]hollow.Local {
	if len(b) == 0 {
		return a
	}
	out := make(map[term.Term]hollow.Local, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (s *session) methodCall(id ast.ExprID, e *ast.Expr, info *ExprInfo) (hollow.Local, *diag.Error) {
	mc, _ := s.exprs.MethodCall(id)
	rl := s.infer(mc.Receiver, hollow.AnyOriginal())
	m, err := s.memberOf(mc.Receiver, rl, mc.Name, mc.NameSpan)
	if err != nil {
		s.visitDerived(argValues(mc.Args)...)
		return hollow.Err, err
	}
	name := s.db.Crate.Builder.Name(mc.Name)
	switch {
	case m.Decl.Memo:
		s.visitDerived(argValues(mc.Args)...)
		return hollow.Err, diag.Original(diag.InferNoSuchMethod, mc.NameSpan, "`%s` is a memo of `%s`; read it as a field", name, m.recv)
	case m.Decl.This == nil:
		s.visitDerived(argValues(mc.Args)...)
		return hollow.Err, diag.Original(diag.InferNoSuchMethod, mc.NameSpan,
			"`%s` has no receiver; call it as `%s::%s`", name, m.recv, name)
	}

	subst, syms, args, err := s.methodGenerics(m.Decl.Generics, mc.Generics, mc.NameSpan)
	if err != nil {
		s.visitDerived(argValues(mc.Args)...)
		return hollow.Err, err
	}
	if m.open {
		subst = merge(m.subst, subst)
	}
	groups, slots, errs := s.groupArgs(mc.Args, s.declSignature(m.Decl, subst, e.Span), e.Span)
	s.typeArgs(mc.Args, slots)

	allSyms := make([]term.Term, 0, len(syms)+len(m.syms))
	allArgs := make([]hollow.Local, 0, cap(allSyms))
	allSyms = append(append(allSyms, m.syms...), syms...)
	allArgs = append(append(allArgs, m.args...), args...)
	dis := &MethodDis{Path: m.Path, This: *m.Decl.This, Inst: s.track(allSyms, allArgs), Groups: groups}
	s.bind(m, &dis.Decl)
	s.keepGroups(dis.Groups)
	info.Dis = dis
	if len(errs) > 0 {
		return hollow.Err, s.firstOf(errs)
	}
	if m.Decl.Output == term.NoTerm {
		return hollow.Err, diag.DerivedAt(diag.InferAbandoned, mc.NameSpan, "method `%s` has no usable output type", name)
	}
	return s.r.Instantiate(m.Decl.Output, subst, e.Span), nil
}

// methodGenerics binds the method's own generics: explicit `x.m<T>()`
// arguments when given, implicit holes otherwise.
func (s *session) methodGenerics(gs []decl.GenericParam, explicit []ast.ExprID, span source.Span) (map[term.Term]hollow.Local, []term.Term, []hollow.Local, *diag.Error) {
	if len(explicit) == 0 {
		subst, syms, args := s.holes(gs, span)
		return subst, syms, args, nil
	}
	if len(explicit) != len(gs) {
		return nil, nil, nil, diag.Original(diag.TermGenericArity, span, "expected %d generic arguments, found %d", len(gs), len(explicit))
	}
	subst := make(map[term.Term]hollow.Local, len(gs))
	syms := make([]term.Term, len(gs))
	args := make([]hollow.Local, len(gs))
	for i, x := range explicit {
		t, err := s.db.TypeTerm(s.scope, x, decl.DestAnyType)
		if err != nil {
			return nil, nil, nil, err
		}
		syms[i] = gs[i].Symbol
		args[i] = hollow.Ethereal(t)
		subst[gs[i].Symbol] = args[i]
	}
	return subst, syms, args, nil
}
