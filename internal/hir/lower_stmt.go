package hir

import (
	"husk/internal/ast"
	"husk/internal/diag"
)

func (l *lowerer[B]) stmt(id ast.StmtID) StmtIdx {
	st := l.stmts.Get(id)
	var data StmtData
	switch st.Kind {
	case ast.StmtLet:
		ls, _ := l.stmts.Let(id)
		info, ok := l.res.Stmts[id]
		if !ok {
			panic(diag.Internalf("hir: let statement %d has no binding", id))
		}
		ident := l.db.Crate.Builder.Name(ls.Name)
		init := NoExprIdx
		if ls.Init.IsValid() {
			init = l.expr(ls.Init)
		}
		switch {
		case ls.Mutable:
			data = &Var{Ref: info.Ref, Ident: ident, Init: init}
		case init.IsValid():
			data = &Let{Ref: info.Ref, Ident: ident, Init: init}
		default:
			panic(diag.Internalf("hir: let %s without initializer", ident))
		}
	case ast.StmtReturn:
		rs, _ := l.stmts.Return(id)
		ret := &Return{}
		if rs.Value.IsValid() {
			ret.Value = l.expr(rs.Value)
		}
		data = ret
	case ast.StmtIf:
		is, _ := l.stmts.If(id)
		out := &If{Cond: l.expr(is.Cond), Then: l.expr(is.Then), Value: l.res.Stmts[id].Value}
		if is.Else.IsValid() {
			out.Else = l.expr(is.Else)
		}
		data = out
	case ast.StmtWhile:
		ws, _ := l.stmts.While(id)
		cond := l.expr(ws.Cond)
		data = &While{Cond: cond, Body: l.expr(ws.Body)}
	case ast.StmtExpr:
		es, _ := l.stmts.Expr(id)
		data = &Eval{Value: l.expr(es.Expr), Discard: es.Semi}
	case ast.StmtAssign:
		as, _ := l.stmts.Assign(id)
		target := l.expr(as.Target)
		data = &Assign{Op: as.Op, Target: target, Value: l.expr(as.Value)}
	default:
		panic(diag.Internalf("hir: unhandled statement kind %d", st.Kind))
	}
	return l.arena.pushStmt(Stmt{Data: data, Span: st.Span, Source: id})
}
