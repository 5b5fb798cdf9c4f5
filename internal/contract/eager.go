package contract

import (
	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/sema"
	"husk/internal/symbols"
	"husk/internal/term"
)

// eager records c for id and pushes the derived contracts to its children.
func (p *pass) eager(id ast.ExprID, c Contract) {
	if _, seen := p.out.Contracts[id]; seen {
		panic(diag.Internalf("contract: expression %d visited twice", id))
	}
	p.out.Contracts[id] = c
	e := p.exprs.Get(id)
	info := p.info(id)
	switch e.Kind {
	case ast.ExprLit, ast.ExprPath, ast.ExprGenericApp, ast.ExprRitchieType, ast.ExprCurryType:
	case ast.ExprIdent, ast.ExprSelf:
		if v, ok := info.Dis.(*sema.VariableDis); ok {
			p.variable(id, v.Ref, c)
		}
	case ast.ExprBinary:
		bd, _ := p.exprs.Binary(id)
		p.eager(bd.Left, Pure)
		p.eager(bd.Right, Pure)
	case ast.ExprPrefix:
		pd, _ := p.exprs.Prefix(id)
		p.eager(pd.Operand, Pure)
	case ast.ExprSuffix:
		sd, _ := p.exprs.Suffix(id)
		if sd.Op == ast.SuffixUnwrap {
			p.eager(sd.Operand, c)
			return
		}
		p.place(sd.Operand)
	case ast.ExprCall:
		p.call(id, info)
	case ast.ExprMethodCall:
		md, _ := p.exprs.MethodCall(id)
		dis := info.Dis.(*sema.MethodDis)
		this := ThisContract(dis.This).Eager(c, dis.Decl.OutputLiason, p.copyable(id))
		p.eager(md.Receiver, this)
		p.groups(dis.Groups)
	case ast.ExprField:
		p.field(id, info, c)
	case ast.ExprIndex:
		xd, _ := p.exprs.Index(id)
		owner := Pure
		if dis := info.Dis.(*sema.IndexDis); dis.Mode == sema.IndexIndex {
			var violation diag.Code
			owner, violation = ElementContract(c, p.copyable(id))
			if violation != diag.UnknownCode {
				p.report(violation, e.Span, "cannot move a %s element out of its container", p.display(id))
			}
		}
		p.eager(xd.Owner, owner)
		for _, ix := range xd.Indices {
			p.eager(ix, Pure)
		}
	case ast.ExprList:
		ld, _ := p.exprs.List(id)
		for _, it := range ld.Items {
			p.eager(it, Move)
		}
	case ast.ExprTuple:
		td, _ := p.exprs.Tuple(id)
		for _, it := range td.Items {
			p.eager(it, Move)
		}
	case ast.ExprBlock:
		p.eagerBlock(id, c)
	case ast.ExprApply:
		ad, _ := p.exprs.Apply(id)
		p.eager(ad.Func, Pure)
		p.eager(ad.Arg, Pure)
	default:
		panic(diag.Internalf("contract: unhandled expression kind %s", e.Kind))
	}
}

func (p *pass) call(id ast.ExprID, info *sema.ExprInfo) {
	cd, _ := p.exprs.Call(id)
	dis := info.Dis.(*sema.CallDis)
	p.eager(cd.Callee, Pure)
	if dis.Mode == sema.CallApplication {
		for _, a := range cd.Args {
			p.eager(a.Value, Pure)
		}
		return
	}
	p.groups(dis.Groups)
}

func (p *pass) groups(groups []sema.ItemGroup) {
	for _, g := range groups {
		for _, a := range g.Args {
			p.eager(a, ParamContract(g.Liason))
		}
	}
}

func (p *pass) field(id ast.ExprID, info *sema.ExprInfo, c Contract) {
	fd, _ := p.exprs.Field(id)
	dis := info.Dis.(*sema.FieldDis)
	if dis.Mode == sema.FieldMemoized {
		if c.Takes() && !p.copyable(id) {
			p.report(diag.ContractMoveLazyField, fd.NameSpan, "cannot move memo `%s` out of its owner", p.name(fd.Name))
		}
		p.eager(fd.Owner, Pure)
		return
	}
	owner, violation := FieldContract(dis.Field.Liason, c, p.copyable(id))
	switch violation {
	case diag.UnknownCode:
	case diag.ContractMutateGlobalRef:
		p.report(violation, fd.NameSpan, "cannot mutate through `ref` field `%s`", p.name(fd.Name))
	case diag.ContractMoveLazyField:
		p.report(violation, fd.NameSpan, "cannot move `lazy` field `%s` out of its owner", p.name(fd.Name))
	default:
		panic(diag.Internalf("contract: unexpected field violation %s", violation.ID()))
	}
	p.eager(fd.Owner, owner)
}

// place visits the target of an assignment or of ++/--.
func (p *pass) place(id ast.ExprID) {
	if !p.isPlace(id) {
		p.report(diag.ContractAssignNotPlace, p.exprs.Get(id).Span, "cannot assign to this expression")
		p.eager(id, Pure)
		return
	}
	p.eager(id, RefMut)
}

func (p *pass) isPlace(id ast.ExprID) bool {
	switch dis := p.info(id).Dis.(type) {
	case *sema.VariableDis:
		return true
	case *sema.FieldDis:
		return dis.Mode == sema.FieldPropsStruct
	case *sema.IndexDis:
		return dis.Mode == sema.IndexIndex
	}
	return false
}

func (p *pass) isMember(id ast.ExprID) bool {
	switch dis := p.info(id).Dis.(type) {
	case *sema.FieldDis:
		return true
	case *sema.IndexDis:
		return dis.Mode == sema.IndexIndex
	}
	return false
}

// variable checks c against the binding ref points to.
func (p *pass) variable(id ast.ExprID, ref symbols.VarRef, c Contract) {
	l := p.res.Locals.Local(ref)
	span := p.exprs.Get(id).Span
	switch {
	case c.Mutates() && !l.Mutable():
		switch l.Kind {
		case symbols.LocalSelf:
			p.report(diag.ContractMutateThroughPureReceiver, span, "cannot mutate `self` through a %s receiver", l.Mode)
		case symbols.LocalParam:
			p.report(diag.ContractMutatePureParameter, span, "cannot mutate parameter `%s` passed as %s", p.name(l.Ident), l.Mode)
		default:
			p.report(diag.ContractMutateImmutable, span, "cannot mutate immutable binding `%s`", p.name(l.Ident))
		}
	case c.Takes() && !p.copyable(id) && borrowed(l):
		p.report(diag.ContractMoveFromPureParameter, span, "cannot move out of `%s` passed as %s", p.name(l.Ident), l.Mode)
	case c == Return && (l.Kind == symbols.LocalLet || l.Kind == symbols.LocalVar):
		p.report(diag.ContractReturnBorrowOfLocal, span, "cannot return a borrow of local `%s`", p.name(l.Ident))
	}
}

// borrowed reports parameters the callee does not own.
func borrowed(l *symbols.Local) bool {
	if l.Kind != symbols.LocalParam && l.Kind != symbols.LocalSelf {
		return false
	}
	return l.Mode != ast.ParamOwn && l.Mode != ast.ParamOwnMut
}

func (p *pass) eagerBlock(id ast.ExprID, c Contract) {
	bd, _ := p.exprs.Block(id)
	for i, st := range bd.Stmts {
		if es, ok := p.stmts.Expr(st); ok && !es.Semi && i == len(bd.Stmts)-1 {
			p.eager(es.Expr, c)
			continue
		}
		if p.res.Stmts[st].Value {
			is, _ := p.stmts.If(st)
			p.eager(is.Cond, Pure)
			p.eager(is.Then, c)
			p.eager(is.Else, c)
			continue
		}
		p.eagerStmt(st)
	}
}

func (p *pass) eagerStmt(id ast.StmtID) {
	switch p.stmts.Get(id).Kind {
	case ast.StmtLet:
		l, _ := p.stmts.Let(id)
		if l.Init.IsValid() {
			p.eager(l.Init, InitContract(l.Mutable, p.isMember(l.Init)))
		}
	case ast.StmtReturn:
		r, _ := p.stmts.Return(id)
		if r.Value.IsValid() {
			p.eager(r.Value, ReturnContract(p.res.Decl.OutputLiason, p.db.IsCopyable(p.res.Output)))
		}
	case ast.StmtIf:
		is, _ := p.stmts.If(id)
		p.eager(is.Cond, Pure)
		p.eager(is.Then, Exec)
		if is.Else.IsValid() {
			p.eager(is.Else, Exec)
		}
	case ast.StmtWhile:
		ws, _ := p.stmts.While(id)
		p.eager(ws.Cond, Pure)
		p.eager(ws.Body, Exec)
	case ast.StmtExpr:
		es, _ := p.stmts.Expr(id)
		p.eager(es.Expr, Exec)
	case ast.StmtAssign:
		as, _ := p.stmts.Assign(id)
		p.place(as.Target)
		p.eager(as.Value, Pure)
	}
}

func (p *pass) display(id ast.ExprID) string {
	ty := p.res.Type(id)
	if ty == term.NoTerm {
		return "?"
	}
	return p.db.Terms.Display(ty)
}
