package sema

import (
	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/hollow"
	"husk/internal/symbols"
	"husk/internal/term"
)

// block types statements in order. Its type is the trailing value
// expression's, or unit. The expectation is handed to the trailing
// expression instead of being checked twice. An `if` with both branches
// ending a block whose context wants a value other than unit gives the
// block its value: the expectation goes to both branches.
func (s *session) block(id ast.ExprID, info *ExprInfo, exp hollow.Expectation) (hollow.Local, *diag.Error) {
	bd, _ := s.exprs.Block(id)
	s.locals.Push()
	defer s.locals.Pop()

	stmts := bd.Stmts
	trailing := ast.NoExprID
	valueIf := ast.NoStmtID
	if n := len(stmts); n > 0 {
		if es, ok := s.stmts.Expr(stmts[n-1]); ok && !es.Semi {
			trailing = es.Expr
			stmts = stmts[:n-1]
		} else if is, ok := s.stmts.If(stmts[n-1]); ok && is.Else.IsValid() && s.wantsValue(exp) {
			valueIf = stmts[n-1]
			stmts = stmts[:n-1]
		}
	}
	for _, st := range stmts {
		if s.stmt(st) {
			info.Diverges = true
		}
	}
	switch {
	case trailing.IsValid():
		info.forwarded = true
		return s.infer(trailing, exp), nil
	case valueIf.IsValid():
		is, _ := s.stmts.If(valueIf)
		s.infer(is.Cond, hollow.Condition())
		s.infer(is.Then, exp)
		s.infer(is.Else, exp)
		s.res.Stmts[valueIf] = StmtInfo{Value: true}
		if s.diverges(is.Then) && s.diverges(is.Else) {
			info.Diverges = true
		}
		info.forwarded = true
		return exp.Target, nil
	}
	if info.Diverges && (exp.Kind == hollow.ExpectImplicitlyConvertible || exp.Kind == hollow.ExpectEqsExactly) {
		// a block that always returns satisfies whatever its context wants
		info.forwarded = true
		return exp.Target, nil
	}
	return hollow.Ethereal(s.tab.Common().Unit), nil
}

// wantsValue reports an expectation naming a type other than unit.
func (s *session) wantsValue(exp hollow.Expectation) bool {
	if exp.Kind != hollow.ExpectImplicitlyConvertible && exp.Kind != hollow.ExpectEqsExactly {
		return false
	}
	if exp.Target.IsErr() {
		return false
	}
	t, ok := s.r.Resolved(exp.Target)
	return !ok || t != s.tab.Common().Unit
}

func (s *session) diverges(id ast.ExprID) bool {
	info := s.res.Exprs[id]
	return info != nil && info.Diverges
}

// stmt types one statement and reports whether it always returns.
func (s *session) stmt(id ast.StmtID) bool {
	st := s.stmts.Get(id)
	switch st.Kind {
	case ast.StmtLet:
		l, _ := s.stmts.Let(id)
		s.let(id, l)
	case ast.StmtReturn:
		r, _ := s.stmts.Return(id)
		switch {
		case s.output.IsErr():
			s.visitDerived(r.Value)
		case r.Value.IsValid():
			s.infer(r.Value, hollow.Convertible(s.output))
		case !s.r.Unify(s.output, hollow.Ethereal(s.tab.Common().Unit)):
			s.record(diag.Original(diag.InferTypeMismatch, st.Span, "missing return value of type `%s`", s.r.Display(s.output)))
		}
		return true
	case ast.StmtIf:
		is, _ := s.stmts.If(id)
		s.infer(is.Cond, hollow.Condition())
		s.infer(is.Then, hollow.AnyOriginal())
		if !is.Else.IsValid() {
			return false
		}
		s.infer(is.Else, hollow.AnyOriginal())
		return s.diverges(is.Then) && s.diverges(is.Else)
	case ast.StmtWhile:
		ws, _ := s.stmts.While(id)
		s.infer(ws.Cond, hollow.Condition())
		s.infer(ws.Body, hollow.AnyOriginal())
	case ast.StmtExpr:
		es, _ := s.stmts.Expr(id)
		s.infer(es.Expr, hollow.AnyOriginal())
	case ast.StmtAssign:
		as, _ := s.stmts.Assign(id)
		s.assign(st, as)
	default:
		panic(diag.Internalf("sema: unhandled statement kind %d", st.Kind))
	}
	return false
}

func (s *session) let(id ast.StmtID, l *ast.LetStmt) {
	var annot hollow.Local
	if l.Type.IsValid() {
		t, err := s.db.TypeTerm(s.scope, l.Type, decl.DestValueType)
		if err != nil {
			s.record(err)
			annot = hollow.Err
		} else {
			annot = hollow.Ethereal(t)
		}
	}
	ty := annot
	if l.Init.IsValid() {
		exp := hollow.AnyOriginal()
		switch {
		case annot.IsErr():
			exp = hollow.AnyDerived()
		case annot.IsValid():
			exp = hollow.Convertible(annot)
		}
		init := s.infer(l.Init, exp)
		if !ty.IsValid() {
			ty = init
		}
	}
	if !ty.IsValid() {
		// `var x;` takes its type from later assignments
		ty = s.r.NewHole(hollow.HoleType, l.NameSpan)
	}
	kind := symbols.LocalLet
	if l.Mutable {
		kind = symbols.LocalVar
	}
	ref := s.define(symbols.Local{Ident: l.Name, Kind: kind, Span: l.NameSpan}, ty)
	s.res.Stmts[id] = StmtInfo{Ref: ref}
}

func (s *session) assign(st *ast.Stmt, as *ast.AssignStmt) {
	target := s.infer(as.Target, hollow.RefMut())
	if target.IsErr() {
		s.visitDerived(as.Value)
		return
	}
	s.infer(as.Value, hollow.Convertible(target))
	if as.Op == ast.AssignPlain {
		return
	}
	ok := s.operand(target, func(t term.Term) bool {
		return s.tab.IsNumeric(t) || (as.Op == ast.AssignAdd && t == s.tab.Common().Str)
	})
	if !ok {
		s.record(diag.Original(diag.InferOperatorMismatch, st.Span, "operator `%s` is not defined for `%s`", as.Op, s.r.Display(target)))
	}
}
