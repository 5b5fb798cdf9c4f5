package contract

import (
	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/sema"
	"husk/internal/symbols"
	"husk/internal/term"
)

// lazy qualifies id bottom-up and records the result.
func (p *pass) lazy(id ast.ExprID) Qualifier {
	if _, seen := p.out.Qualifiers[id]; seen {
		panic(diag.Internalf("contract: expression %d visited twice", id))
	}
	q := p.qualify(id)
	p.out.Qualifiers[id] = q
	return q
}

func (p *pass) qualify(id ast.ExprID) Qualifier {
	e := p.exprs.Get(id)
	info := p.info(id)
	copyable := p.copyable(id)
	switch e.Kind {
	case ast.ExprLit:
		return ValueQualifier(copyable)
	case ast.ExprIdent, ast.ExprSelf, ast.ExprPath:
		switch dis := info.Dis.(type) {
		case *sema.VariableDis:
			return p.localQualifier(dis.Ref, copyable)
		case *sema.TypeTermDis, *sema.TypePathDis:
			return Copyable
		}
		return ValueQualifier(copyable)
	case ast.ExprGenericApp, ast.ExprRitchieType, ast.ExprCurryType:
		return Copyable
	case ast.ExprBinary:
		bd, _ := p.exprs.Binary(id)
		p.lazy(bd.Left)
		p.lazy(bd.Right)
		return ValueQualifier(copyable)
	case ast.ExprPrefix:
		pd, _ := p.exprs.Prefix(id)
		p.lazy(pd.Operand)
		return ValueQualifier(copyable)
	case ast.ExprSuffix:
		sd, _ := p.exprs.Suffix(id)
		q := p.lazy(sd.Operand)
		if sd.Op == ast.SuffixUnwrap {
			return ElementQualifier(q, copyable)
		}
		p.lazyPlace(sd.Operand)
		return ValueQualifier(copyable)
	case ast.ExprCall:
		cd, _ := p.exprs.Call(id)
		dis := info.Dis.(*sema.CallDis)
		p.lazy(cd.Callee)
		if dis.Mode == sema.CallApplication {
			for _, a := range cd.Args {
				p.lazy(a.Value)
			}
		} else {
			p.lazyGroups(dis.Groups)
		}
		return ValueQualifier(copyable)
	case ast.ExprMethodCall:
		md, _ := p.exprs.MethodCall(id)
		dis := info.Dis.(*sema.MethodDis)
		rq := p.lazy(md.Receiver)
		p.handOver(md.Receiver, rq, dis.This)
		p.lazyGroups(dis.Groups)
		if dis.Decl.OutputLiason == decl.OutputMemberAccess && !copyable {
			return borrowQualifier(rq, dis.This)
		}
		return ValueQualifier(copyable)
	case ast.ExprField:
		fd, _ := p.exprs.Field(id)
		dis := info.Dis.(*sema.FieldDis)
		oq := p.lazy(fd.Owner)
		if dis.Mode == sema.FieldMemoized {
			return FieldQualifier(decl.FieldLazyOwn, oq, copyable)
		}
		return FieldQualifier(dis.Field.Liason, oq, copyable)
	case ast.ExprIndex:
		xd, _ := p.exprs.Index(id)
		oq := p.lazy(xd.Owner)
		for _, ix := range xd.Indices {
			p.lazy(ix)
		}
		if info.Dis.(*sema.IndexDis).Mode == sema.IndexComposeWithList {
			return Copyable
		}
		return ElementQualifier(oq, copyable)
	case ast.ExprList:
		if info.Dis.(*sema.ListDis).Mode == sema.ListType {
			return Copyable
		}
		ld, _ := p.exprs.List(id)
		p.stored(ld.Items)
		return ValueQualifier(copyable)
	case ast.ExprTuple:
		td, _ := p.exprs.Tuple(id)
		p.stored(td.Items)
		return ValueQualifier(copyable)
	case ast.ExprBlock:
		return p.lazyBlock(id)
	case ast.ExprApply:
		ad, _ := p.exprs.Apply(id)
		p.lazy(ad.Func)
		p.lazy(ad.Arg)
		if _, ok := info.Dis.(*sema.CallDis); ok && p.db.Terms.IsSort(p.res.Type(id)) {
			return Copyable
		}
		return ValueQualifier(copyable)
	}
	panic(diag.Internalf("contract: unhandled expression kind %s", e.Kind))
}

// localQualifier reads a binding: lets carry their initializer's qualifier;
// parameters are borrowed unless owned.
func (p *pass) localQualifier(ref symbols.VarRef, copyable bool) Qualifier {
	if copyable {
		return Copyable
	}
	if !ref.Inherited {
		q, ok := p.out.Locals[ref]
		if !ok {
			panic(diag.Internalf("contract: binding %d read before its let", ref.Index))
		}
		return q
	}
	switch p.res.Locals.Local(ref).Mode {
	case ast.ParamRef:
		return EvalRef
	case ast.ParamMut:
		return TempRefMut
	case ast.ParamOwn, ast.ParamOwnMut:
		return Transient
	default:
		return PureRef
	}
}

func (p *pass) lazyGroups(groups []sema.ItemGroup) {
	for _, g := range groups {
		for _, a := range g.Args {
			p.handOver(a, p.lazy(a), g.Liason)
		}
	}
}

// handOver checks that an argument qualified as q can be handed over as l.
func (p *pass) handOver(arg ast.ExprID, q Qualifier, l term.Liason) {
	switch l {
	case term.LiasonMove, term.LiasonMoveMut:
		if q.IsRef() && !p.copyable(arg) {
			p.report(diag.ContractMoveFromReference, p.exprs.Get(arg).Span, "cannot move a %s value out of a %s binding", p.display(arg), q)
		}
	case term.LiasonMut:
		if v, ok := p.info(arg).Dis.(*sema.VariableDis); ok {
			p.variable(arg, v.Ref, RefMut)
		}
	}
}

// stored checks items moved into a new list or tuple.
func (p *pass) stored(items []ast.ExprID) {
	for _, it := range items {
		p.handOver(it, p.lazy(it), term.LiasonMove)
	}
}

// yield checks a value handed back from a lazy body.
func (p *pass) yield(id ast.ExprID, q Qualifier) {
	if p.res.Decl.OutputLiason == decl.OutputTransfer {
		p.handOver(id, q, term.LiasonMove)
	}
}

// lazyPlace checks the binding a lazy statement writes to.
func (p *pass) lazyPlace(id ast.ExprID) {
	if !p.isPlace(id) {
		p.report(diag.ContractAssignNotPlace, p.exprs.Get(id).Span, "cannot assign to this expression")
		return
	}
	root := id
	for {
		switch dis := p.info(root).Dis.(type) {
		case *sema.VariableDis:
			p.variable(root, dis.Ref, RefMut)
			return
		case *sema.FieldDis:
			fd, _ := p.exprs.Field(root)
			if dis.Field.Liason == decl.FieldGlobalRef {
				p.report(diag.ContractMutateGlobalRef, fd.NameSpan, "cannot mutate through `ref` field `%s`", p.name(fd.Name))
				return
			}
			root = fd.Owner
		case *sema.IndexDis:
			xd, _ := p.exprs.Index(root)
			root = xd.Owner
		default:
			// a temporary
			return
		}
	}
}

func (p *pass) lazyBlock(id ast.ExprID) Qualifier {
	bd, _ := p.exprs.Block(id)
	for i, st := range bd.Stmts {
		if es, ok := p.stmts.Expr(st); ok && !es.Semi && i == len(bd.Stmts)-1 {
			return p.lazy(es.Expr)
		}
		if p.res.Stmts[st].Value {
			is, _ := p.stmts.If(st)
			p.lazy(is.Cond)
			return branchQualifier(p.lazy(is.Then), p.lazy(is.Else))
		}
		p.lazyStmt(st)
	}
	return Copyable
}

func (p *pass) lazyStmt(id ast.StmtID) {
	switch p.stmts.Get(id).Kind {
	case ast.StmtLet:
		l, _ := p.stmts.Let(id)
		ref := p.res.Stmts[id].Ref
		q := ValueQualifier(p.db.IsCopyable(p.res.LocalType(ref)))
		if l.Init.IsValid() {
			q = p.lazy(l.Init)
		}
		p.out.Locals[ref] = q
	case ast.StmtReturn:
		r, _ := p.stmts.Return(id)
		if r.Value.IsValid() {
			p.yield(r.Value, p.lazy(r.Value))
		}
	case ast.StmtIf:
		is, _ := p.stmts.If(id)
		p.lazy(is.Cond)
		p.lazy(is.Then)
		if is.Else.IsValid() {
			p.lazy(is.Else)
		}
	case ast.StmtWhile:
		ws, _ := p.stmts.While(id)
		p.lazy(ws.Cond)
		p.lazy(ws.Body)
	case ast.StmtExpr:
		es, _ := p.stmts.Expr(id)
		p.lazy(es.Expr)
	case ast.StmtAssign:
		as, _ := p.stmts.Assign(id)
		p.lazy(as.Target)
		p.lazyPlace(as.Target)
		p.lazy(as.Value)
	}
}
