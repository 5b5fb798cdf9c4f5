package sema

import (
	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/hollow"
	"husk/internal/source"
	"husk/internal/symbols"
	"husk/internal/term"
)

func (s *session) calc(id ast.ExprID, e *ast.Expr, info *ExprInfo, exp hollow.Expectation) (hollow.Local, *diag.Error) {
	switch e.Kind {
	case ast.ExprInvalid:
		// the parser already reported it
		return hollow.Err, diag.DerivedAt(diag.InferAbandoned, e.Span, "invalid expression")
	case ast.ExprLit:
		return s.literal(id, e)
	case ast.ExprIdent:
		return s.ident(id, e, info, exp)
	case ast.ExprSelf:
		if !s.res.HasSelf {
			return hollow.Err, diag.Original(diag.InferSelfOutsideMethod, e.Span, "`self` outside a method")
		}
		info.Dis = &VariableDis{Ref: s.res.Self}
		return s.localTy(s.res.Self), nil
	case ast.ExprPath:
		sym, err := s.resolvePath(id)
		if err != nil {
			return hollow.Err, err
		}
		return s.entity(sym, e.Span, info, exp)
	case ast.ExprBinary:
		return s.binary(id, e)
	case ast.ExprPrefix:
		return s.prefix(id, e)
	case ast.ExprSuffix:
		return s.suffix(id, e)
	case ast.ExprCall:
		return s.call(id, e, info)
	case ast.ExprMethodCall:
		return s.methodCall(id, e, info)
	case ast.ExprField:
		return s.field(id, e, info)
	case ast.ExprIndex:
		return s.index(id, e, info)
	case ast.ExprList:
		return s.list(id, e, info, exp)
	case ast.ExprTuple:
		return s.tuple(id, e, exp)
	case ast.ExprBlock:
		return s.block(id, info, exp)
	case ast.ExprApply:
		return s.apply(id, e, info)
	case ast.ExprGenericApp, ast.ExprRitchieType, ast.ExprCurryType:
		t, err := s.db.TypeTerm(s.scope, id, decl.DestAnyType)
		if err != nil {
			return hollow.Err, err
		}
		info.Dis = &TypeTermDis{Ty: t}
		return hollow.Ethereal(s.tab.Common().Type), nil
	}
	panic(diag.Internalf("sema: unhandled expression kind %s", e.Kind))
}

// errOf returns the error that made id fail, from typing or from its expectation.
func (s *session) errOf(id ast.ExprID) *diag.Error {
	info := s.res.Exprs[id]
	if info == nil {
		return nil
	}
	if info.Err != nil {
		return info.Err
	}
	if info.entry >= 0 {
		return s.r.Entry(info.entry).Outcome.Err
	}
	return nil
}

func (s *session) spanOf(id ast.ExprID) source.Span { return s.exprs.Get(id).Span }

// visitDerived types the remaining children of a failed expression so that
// their own Original errors are still found.
func (s *session) visitDerived(ids ...ast.ExprID) {
	for _, id := range ids {
		if id.IsValid() {
			s.infer(id, hollow.AnyDerived())
		}
	}
}

// known returns the term of expr's local l once it resolved. An open literal
// hole takes its default first: receivers and owners must be known before lookup.
func (s *session) known(id ast.ExprID, l hollow.Local) (term.Term, *diag.Error) {
	span := s.spanOf(id)
	if l.IsErr() {
		return term.NoTerm, derived(s.errOf(id), span)
	}
	s.r.ResolveWeak()
	if t, ok := s.r.Resolved(l); ok {
		return t, nil
	}
	if s.r.DefaultLiteral(l) {
		s.r.ResolveWeak()
		if t, ok := s.r.Resolved(l); ok {
			return t, nil
		}
	}
	if p := s.r.ResolveProgress(l); p.Kind == hollow.ResolvedErr {
		if err := s.errOf(id); err != nil {
			return term.NoTerm, diag.Derived(err)
		}
		return term.NoTerm, derived(p.Err, span)
	}
	return term.NoTerm, diag.Original(diag.InferCannotInfer, span, "type must be known here, found `%s`", s.r.Display(l))
}

func (s *session) literal(id ast.ExprID, e *ast.Expr) (hollow.Local, *diag.Error) {
	lit, _ := s.exprs.Lit(id)
	c := s.tab.Common()
	switch lit.Kind {
	case ast.LitInt, ast.LitFloat:
		switch lit.Suffix {
		case "":
			if lit.Kind == ast.LitFloat {
				return s.r.NewHole(hollow.HoleFloat, e.Span), nil
			}
			return s.r.NewHole(hollow.HoleInt, e.Span), nil
		case "i32":
			if lit.Kind == ast.LitInt {
				return hollow.Ethereal(c.I32), nil
			}
		case "i64":
			if lit.Kind == ast.LitInt {
				return hollow.Ethereal(c.I64), nil
			}
		case "f32":
			return hollow.Ethereal(c.F32), nil
		case "f64":
			return hollow.Ethereal(c.F64), nil
		}
		return hollow.Err, diag.Original(diag.LexBadSuffix, e.Span, "suffix `%s` does not fit this literal", lit.Suffix)
	case ast.LitBool:
		return hollow.Ethereal(c.Bool), nil
	default:
		return hollow.Ethereal(c.Str), nil
	}
}

func (s *session) ident(id ast.ExprID, e *ast.Expr, info *ExprInfo, exp hollow.Expectation) (hollow.Local, *diag.Error) {
	data, _ := s.exprs.Ident(id)
	if ref, ok := s.locals.Lookup(data.Name); ok {
		info.Dis = &VariableDis{Ref: ref}
		return s.localTy(ref), nil
	}
	if sym, ok := s.scope.Generics[data.Name]; ok {
		info.Dis = &TypeTermDis{Ty: sym}
		return hollow.Ethereal(s.tab.Data(sym).Ty), nil
	}
	if s.scope.Self != term.NoTerm && s.db.Crate.Builder.Name(data.Name) == "Self" {
		info.Dis = &TypeTermDis{Ty: s.scope.Self}
		return hollow.Ethereal(s.tab.Common().Type), nil
	}
	sym, err := s.db.Crate.ResolveIdent(s.res.Module, data.Name, e.Span)
	if err != nil {
		return hollow.Err, err
	}
	return s.entity(sym, e.Span, info, exp)
}

// resolvePath resolves `a::b` keeping the base's own errors Original: the
// base is not typed as an expression of its own.
func (s *session) resolvePath(id ast.ExprID) (symbols.Symbol, *diag.Error) {
	if pd, ok := s.exprs.Path(id); ok {
		base, err := s.resolvePath(pd.Base)
		if err != nil {
			return base, err
		}
		return s.db.Crate.ResolveSubentity(base.Path, pd.Name, pd.NameSpan)
	}
	return s.db.Crate.ResolvePathExpr(s.res.Module, id)
}

func (s *session) entity(sym symbols.Symbol, span source.Span, info *ExprInfo, exp hollow.Expectation) (hollow.Local, *diag.Error) {
	reg := s.db.Reg()
	p := sym.Path
	if sym.Kind == symbols.SymbolModule {
		return hollow.Err, diag.Original(diag.InferNotAValue, span, "module `%s` is not a value", reg.Display(p))
	}
	switch reg.Kind(p) {
	case entity.KindType:
		return s.typePath(p, span, info, exp)
	case entity.KindTypeVariant:
		parent := reg.Parent(p)
		td, err := s.db.TypeDeclOf(parent)
		if err != nil {
			return hollow.Err, derived(err, span)
		}
		subst, inst := s.instantiate(td.Generics, span)
		info.Dis = &EntityDis{Path: p, Inst: inst}
		return s.r.Instantiate(s.selfType(parent, td), subst, span), nil
	case entity.KindFugitive, entity.KindAssocItem:
		cf, err := s.db.CallForm(p)
		if err != nil {
			return hollow.Err, derived(err, span)
		}
		if cf.This != nil {
			return hollow.Err, diag.Original(diag.InferNotAValue, span, "`%s` needs a receiver", reg.Display(p))
		}
		subst, inst := s.instantiate(cf.Generics, span)
		info.Dis = &EntityDis{Path: p, Decl: cf, Inst: inst}
		if cf.Memo {
			return s.r.Instantiate(cf.Output, subst, span), nil
		}
		return s.r.Instantiate(cf.RitchieType(s.tab), subst, span), nil
	}
	return hollow.Err, diag.Original(diag.InferNotAValue, span, "%s `%s` is not a value", reg.Kind(p), reg.Display(p))
}

func (s *session) selfType(p entity.Path, td *decl.TypeDecl) term.Term {
	args := make([]term.Term, len(td.Generics))
	for i, g := range td.Generics {
		args[i] = g.Symbol
	}
	return s.tab.Apply(s.tab.TypePath(p), args...)
}

// typePath reads a type path as the type itself, or as its constructor
// when the caller expects something callable.
func (s *session) typePath(p entity.Path, span source.Span, info *ExprInfo, exp hollow.Expectation) (hollow.Local, *diag.Error) {
	td, err := s.db.TypeDeclOf(p)
	if err != nil {
		return hollow.Err, derived(err, span)
	}
	if exp.Kind != hollow.ExpectEqsFunctionType {
		info.Dis = &TypePathDis{Path: p, Mode: TypePathOntology}
		t := s.tab.Common().Type
		for range td.Generics {
			t = s.tab.Curry(s.tab.Common().Type, t)
		}
		return hollow.Ethereal(t), nil
	}
	if td.Kind != decl.TypeStruct {
		return hollow.Err, diag.Original(diag.InferExpectedFunction, span, "type `%s` has no constructor", s.db.Reg().Display(p))
	}
	subst, inst := s.instantiate(td.Generics, span)
	params := make([]hollow.Param, len(td.Fields))
	for i, f := range td.Fields {
		ty := hollow.Err
		if f.Ty.IsValid() {
			ty = s.r.Instantiate(f.Ty, subst, span)
		}
		params[i] = hollow.Param{Kind: term.ParamRegular, Liason: term.LiasonMove, Ty: ty}
	}
	info.Dis = &TypePathDis{Path: p, Mode: TypePathConstructor, Inst: inst}
	ret := s.r.Instantiate(s.selfType(p, td), subst, span)
	return s.r.Ritchie(term.RitchieFn, params, ret, span), nil
}

func (s *session) binary(id ast.ExprID, e *ast.Expr) (hollow.Local, *diag.Error) {
	b, _ := s.exprs.Binary(id)
	boolTy := hollow.Ethereal(s.tab.Common().Bool)
	if b.Op.IsLogic() {
		s.infer(b.Left, hollow.Exactly(boolTy))
		s.infer(b.Right, hollow.Exactly(boolTy))
		return boolTy, nil
	}
	lt := s.infer(b.Left, hollow.AnyOriginal())
	if lt.IsErr() {
		s.visitDerived(b.Right)
		return hollow.Err, derived(s.errOf(b.Left), e.Span)
	}
	s.infer(b.Right, hollow.Exactly(lt))
	var ok bool
	switch b.Op {
	case ast.BinEq, ast.BinNe:
		ok = s.operand(lt, func(t term.Term) bool { return !s.tab.IsSort(t) })
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		ok = s.operand(lt, func(t term.Term) bool { return s.tab.IsNumeric(t) || t == s.tab.Common().Str })
	case ast.BinAdd:
		ok = s.operand(lt, func(t term.Term) bool { return s.tab.IsNumeric(t) || t == s.tab.Common().Str })
	default:
		ok = s.operand(lt, s.tab.IsNumeric)
	}
	if !ok {
		return hollow.Err, diag.Original(diag.InferOperatorMismatch, e.Span, "operator `%s` is not defined for `%s`", b.Op, s.r.Display(lt))
	}
	if b.Op.IsComparison() {
		return boolTy, nil
	}
	return lt, nil
}

// operand checks an operand type once known. Literal holes are numeric and
// still-open holes are left to unification.
func (s *session) operand(l hollow.Local, accept func(term.Term) bool) bool {
	s.r.ResolveWeak()
	if s.r.IsLiteralHole(l) {
		return true
	}
	t, ok := s.r.Resolved(l)
	if !ok {
		return true
	}
	return accept(t)
}

func (s *session) prefix(id ast.ExprID, e *ast.Expr) (hollow.Local, *diag.Error) {
	p, _ := s.exprs.Prefix(id)
	if p.Op == ast.PrefixNot {
		boolTy := hollow.Ethereal(s.tab.Common().Bool)
		s.infer(p.Operand, hollow.Exactly(boolTy))
		return boolTy, nil
	}
	t := s.infer(p.Operand, hollow.AnyOriginal())
	if t.IsErr() {
		return hollow.Err, derived(s.errOf(p.Operand), e.Span)
	}
	if !s.operand(t, s.tab.IsNumeric) {
		return hollow.Err, diag.Original(diag.InferOperatorMismatch, e.Span, "operator `-` is not defined for `%s`", s.r.Display(t))
	}
	return t, nil
}

func (s *session) suffix(id ast.ExprID, e *ast.Expr) (hollow.Local, *diag.Error) {
	sf, _ := s.exprs.Suffix(id)
	if sf.Op == ast.SuffixUnwrap {
		l := s.infer(sf.Operand, hollow.AnyOriginal())
		t, err := s.known(sf.Operand, l)
		if err != nil {
			return hollow.Err, err
		}
		elem, ok := s.tab.OptionElem(t)
		if !ok {
			return hollow.Err, diag.Original(diag.InferUnwrapNonOption, e.Span, "`?` needs an `Option`, found `%s`", s.tab.Display(t))
		}
		return hollow.Ethereal(elem), nil
	}
	t := s.infer(sf.Operand, hollow.RefMut())
	if t.IsErr() {
		return hollow.Err, derived(s.errOf(sf.Operand), e.Span)
	}
	if !s.operand(t, s.tab.IsIntType) {
		return hollow.Err, diag.Original(diag.InferOperatorMismatch, e.Span, "operator `%s` needs an integer, found `%s`", sf.Op, s.r.Display(t))
	}
	return hollow.Ethereal(s.tab.Common().Unit), nil
}

func (s *session) field(id ast.ExprID, e *ast.Expr, info *ExprInfo) (hollow.Local, *diag.Error) {
	fd, _ := s.exprs.Field(id)
	ol := s.infer(fd.Owner, hollow.AnyOriginal())
	name := s.db.Crate.Builder.Name(fd.Name)
	if sh, ok := s.openHead(ol); ok {
		if l, found, err := s.openField(sh, fd, info); found {
			return l, err
		}
	} else {
		ot, err := s.known(fd.Owner, ol)
		if err != nil {
			return hollow.Err, err
		}
		if f, fty, ok := s.db.FieldOf(ot, fd.Name); ok {
			head, _, _ := s.tab.HeadPath(ot)
			info.Dis = &FieldDis{Mode: FieldPropsStruct, Field: f, Index: s.fieldIndex(head, fd.Name)}
			if fty == term.NoTerm {
				return hollow.Err, diag.DerivedAt(diag.InferAbandoned, fd.NameSpan, "field `%s` has no usable type", name)
			}
			return hollow.Ethereal(fty), nil
		}
	}
	m, merr := s.memberOf(fd.Owner, ol, fd.Name, fd.NameSpan)
	switch {
	case merr == nil && m.Decl.Memo:
		dis := &FieldDis{Mode: FieldMemoized, Path: m.Path}
		dis.Inst = s.bind(m, &dis.Decl)
		info.Dis = dis
		if m.open {
			return s.r.Instantiate(m.Decl.Output, m.subst, e.Span), nil
		}
		return s.ethereal(m.Decl.Output), nil
	case merr == nil:
		return hollow.Err, diag.Original(diag.InferNoSuchField, fd.NameSpan, "`%s` is a method of `%s`, not a field", name, m.recv)
	case merr.Origin == diag.OriginDerived:
		return hollow.Err, merr
	}
	return hollow.Err, diag.Original(diag.InferNoSuchField, fd.NameSpan, "type `%s` has no field `%s`", s.r.Display(ol), name)
}

// openField reads a stored field of an owner whose type arguments are still
// open: the field type is instantiated with the owner's hollow arguments.
func (s *session) openField(sh hollow.Shape, fd *ast.FieldData, info *ExprInfo) (hollow.Local, bool, *diag.Error) {
	if s.db.Reg().Kind(sh.Path) != entity.KindType {
		return hollow.Err, false, nil
	}
	td, err := s.db.TypeDeclOf(sh.Path)
	if err != nil || td == nil {
		return hollow.Err, false, nil
	}
	f, ok := td.Field(fd.Name)
	if !ok {
		return hollow.Err, false, nil
	}
	info.Dis = &FieldDis{Mode: FieldPropsStruct, Field: f, Index: s.fieldIndex(sh.Path, fd.Name)}
	if f.Ty == term.NoTerm || len(td.Generics) != len(sh.Args) {
		return hollow.Err, true, diag.DerivedAt(diag.InferAbandoned, fd.NameSpan, "field `%s` has no usable type", s.db.Crate.Builder.Name(fd.Name))
	}
	subst := make(map[term.Term]hollow.Local, len(td.Generics))
	for i, g := range td.Generics {
		subst[g.Symbol] = sh.Args[i]
	}
	return s.r.Instantiate(f.Ty, subst, fd.NameSpan), true, nil
}

func (s *session) fieldIndex(head entity.Path, ident source.StringID) int {
	td, _ := s.db.TypeDeclOf(head)
	for i := range td.Fields {
		if td.Fields[i].Ident == ident {
			return i
		}
	}
	panic(diag.Internalf("sema: field vanished from %s", s.db.Reg().Display(head)))
}

func (s *session) index(id ast.ExprID, e *ast.Expr, info *ExprInfo) (hollow.Local, *diag.Error) {
	ix, _ := s.exprs.Index(id)
	ol := s.infer(ix.Owner, hollow.AnyOriginal())
	if sh, ok := s.openHead(ol); ok && sh.Path == s.tab.Prims().Vec && len(sh.Args) == 1 {
		if len(ix.Indices) != 1 {
			s.visitDerived(ix.Indices...)
			return hollow.Err, diag.Original(diag.InferArityMismatch, e.Span, "expected one index, found %d", len(ix.Indices))
		}
		s.infer(ix.Indices[0], hollow.Convertible(hollow.Ethereal(s.tab.Common().I32)))
		info.Dis = &IndexDis{Mode: IndexIndex}
		return sh.Args[0], nil
	}
	ot, err := s.known(ix.Owner, ol)
	if err != nil {
		s.visitDerived(ix.Indices...)
		return hollow.Err, err
	}
	if s.tab.IsSort(ot) {
		if len(ix.Indices) > 0 {
			s.visitDerived(ix.Indices...)
			return hollow.Err, diag.Original(diag.InferArityMismatch, e.Span, "a list type takes no indices")
		}
		info.Dis = &IndexDis{Mode: IndexComposeWithList}
		return hollow.Ethereal(s.tab.Common().Type), nil
	}
	elem, ok := s.tab.ElemOf(ot)
	if !ok {
		s.visitDerived(ix.Indices...)
		return hollow.Err, diag.Original(diag.InferNotIndexable, e.Span, "type `%s` cannot be indexed", s.tab.Display(ot))
	}
	if len(ix.Indices) != 1 {
		s.visitDerived(ix.Indices...)
		return hollow.Err, diag.Original(diag.InferArityMismatch, e.Span, "expected one index, found %d", len(ix.Indices))
	}
	s.infer(ix.Indices[0], hollow.Convertible(hollow.Ethereal(s.tab.Common().I32)))
	info.Dis = &IndexDis{Mode: IndexIndex}
	return hollow.Ethereal(elem), nil
}

// steered returns the shape the expectation asks for, if any.
func (s *session) steered(exp hollow.Expectation, head entity.Path) ([]hollow.Local, bool) {
	if exp.Kind != hollow.ExpectImplicitlyConvertible && exp.Kind != hollow.ExpectEqsExactly {
		return nil, false
	}
	sh, ok := s.r.ShapeOf(exp.Target)
	if !ok || sh.Kind != hollow.DataTypeOntology || sh.Path != head {
		return nil, false
	}
	return sh.Args, true
}

func (s *session) list(id ast.ExprID, e *ast.Expr, info *ExprInfo, exp hollow.Expectation) (hollow.Local, *diag.Error) {
	ld, _ := s.exprs.List(id)
	tab := s.tab
	if len(ld.Items) == 0 && (exp.WantsSort() || exp.Kind == hollow.ExpectEqsFunctionType) {
		info.Dis = &ListDis{Mode: ListType}
		return hollow.Ethereal(tab.Curry(tab.Common().Type, tab.Common().Type)), nil
	}
	var elem hollow.Local
	if args, ok := s.steered(exp, tab.Prims().Vec); ok && len(args) == 1 {
		elem = args[0]
	}
	if len(ld.Items) == 0 && !elem.IsValid() {
		return hollow.Err, diag.DerivedAt(diag.InferAmbiguateListExpr, e.Span, "cannot tell what `[]` holds")
	}
	for _, item := range ld.Items {
		if !elem.IsValid() {
			elem = s.infer(item, hollow.AnyOriginal())
			continue
		}
		s.infer(item, hollow.Convertible(elem))
	}
	info.Dis = &ListDis{Mode: ListValue}
	return s.r.TypeOntology(tab.Prims().Vec, []hollow.Local{elem}, e.Span), nil
}

func (s *session) tuple(id ast.ExprID, e *ast.Expr, exp hollow.Expectation) (hollow.Local, *diag.Error) {
	td, _ := s.exprs.Tuple(id)
	if len(td.Items) == 0 {
		return hollow.Ethereal(s.tab.Common().Unit), nil
	}
	want, ok := s.steered(exp, s.tab.Prims().Tuple)
	if ok && len(want) != len(td.Items) {
		want = nil
	}
	elems := make([]hollow.Local, len(td.Items))
	for i, item := range td.Items {
		ie := hollow.AnyOriginal()
		if want != nil {
			ie = hollow.Convertible(want[i])
		}
		elems[i] = s.infer(item, ie)
	}
	return s.r.TypeOntology(s.tab.Prims().Tuple, elems, e.Span), nil
}

// apply is juxtaposition in type syntax, e.g. `[]i32`.
func (s *session) apply(id ast.ExprID, e *ast.Expr, info *ExprInfo) (hollow.Local, *diag.Error) {
	ap, _ := s.exprs.Apply(id)
	fl := s.infer(ap.Func, hollow.FunctionType())
	if fl.IsErr() {
		s.visitDerived(ap.Arg)
		return hollow.Err, derived(s.errOf(ap.Func), e.Span)
	}
	sh, ok := s.r.ShapeOf(fl)
	if !ok || sh.Kind != hollow.DataCurry {
		s.visitDerived(ap.Arg)
		if err := s.errOf(ap.Func); err != nil {
			return hollow.Err, diag.Derived(err)
		}
		return hollow.Err, diag.Original(diag.InferExpectedFunction, e.Span, "`%s` cannot be applied to one argument", s.r.Display(fl))
	}
	s.infer(ap.Arg, hollow.Convertible(sh.Param))
	info.Dis = &CallDis{Mode: CallApplication}
	return sh.Return, nil
}
