package hir

import (
	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/sema"
	"husk/internal/term"
)

func (l *lowerer[B]) data(id ast.ExprID, e *ast.Expr, info *sema.ExprInfo) ExprData {
	switch e.Kind {
	case ast.ExprLit:
		l.untagged(e, info)
		lit, _ := l.exprs.Lit(id)
		return &Literal{Kind: lit.Kind, Text: lit.Text}
	case ast.ExprIdent, ast.ExprPath, ast.ExprSelf:
		return l.name(e, info)
	case ast.ExprBinary:
		l.untagged(e, info)
		bd, _ := l.exprs.Binary(id)
		return &Binary{Op: bd.Op, Left: l.expr(bd.Left), Right: l.expr(bd.Right)}
	case ast.ExprPrefix:
		l.untagged(e, info)
		pd, _ := l.exprs.Prefix(id)
		return &Prefix{Op: pd.Op, Operand: l.expr(pd.Operand)}
	case ast.ExprSuffix:
		l.untagged(e, info)
		sd, _ := l.exprs.Suffix(id)
		if sd.Op == ast.SuffixUnwrap {
			return &Unwrap{Operand: l.expr(sd.Operand)}
		}
		return &Suffix{Op: sd.Op, Operand: l.expr(sd.Operand)}
	case ast.ExprCall:
		return l.call(id, e, info)
	case ast.ExprMethodCall:
		dis, ok := info.Dis.(*sema.MethodDis)
		if !ok {
			mismatch(e, info)
		}
		md, _ := l.exprs.MethodCall(id)
		self := l.expr(md.Receiver)
		return &MethodFnCall{
			Self:   self,
			This:   dis.This,
			Path:   dis.Path,
			Inst:   dis.Inst,
			Groups: l.groups(dis.Groups),
			Lazy:   dis.Decl.Lazy,
		}
	case ast.ExprField:
		dis, ok := info.Dis.(*sema.FieldDis)
		if !ok {
			mismatch(e, info)
		}
		fd, _ := l.exprs.Field(id)
		owner := l.expr(fd.Owner)
		if dis.Mode == sema.FieldMemoized {
			return &MemoizedField{Owner: owner, Path: dis.Path, Inst: dis.Inst}
		}
		return &PropsStructField{Owner: owner, Ident: l.db.Crate.Builder.Name(fd.Name), Index: dis.Index}
	case ast.ExprIndex:
		dis, ok := info.Dis.(*sema.IndexDis)
		if !ok {
			mismatch(e, info)
		}
		xd, _ := l.exprs.Index(id)
		owner := l.expr(xd.Owner)
		if dis.Mode == sema.IndexComposeWithList {
			if len(xd.Indices) != 0 {
				mismatch(e, info)
			}
			return &ComposeWithList{Element: owner}
		}
		return &Index{Owner: owner, Indices: l.exprList(xd.Indices)}
	case ast.ExprList:
		dis, ok := info.Dis.(*sema.ListDis)
		if !ok {
			mismatch(e, info)
		}
		ld, _ := l.exprs.List(id)
		if dis.Mode == sema.ListType {
			if len(ld.Items) != 0 {
				mismatch(e, info)
			}
			return &PrincipalEntityPath{Path: l.db.Terms.Prims().Vec}
		}
		return &NewList{Items: l.exprList(ld.Items)}
	case ast.ExprTuple:
		l.untagged(e, info)
		td, _ := l.exprs.Tuple(id)
		return &NewTuple{Items: l.exprList(td.Items)}
	case ast.ExprBlock:
		l.untagged(e, info)
		return l.block(id)
	case ast.ExprApply:
		dis, ok := info.Dis.(*sema.CallDis)
		if !ok || dis.Mode != sema.CallApplication {
			mismatch(e, info)
		}
		ad, _ := l.exprs.Apply(id)
		fn := l.expr(ad.Func)
		return &Application{Func: fn, Args: []ExprIdx{l.expr(ad.Arg)}}
	case ast.ExprGenericApp, ast.ExprRitchieType, ast.ExprCurryType:
		dis, ok := info.Dis.(*sema.TypeTermDis)
		if !ok {
			mismatch(e, info)
		}
		return &TypeTerm{Ty: dis.Ty}
	}
	panic(diag.Internalf("hir: unhandled expression kind %s", e.Kind))
}

// untagged checks forms the type engine never disambiguates.
func (l *lowerer[B]) untagged(e *ast.Expr, info *sema.ExprInfo) {
	if info.Dis != nil {
		mismatch(e, info)
	}
}

func (l *lowerer[B]) name(e *ast.Expr, info *sema.ExprInfo) ExprData {
	switch dis := info.Dis.(type) {
	case *sema.VariableDis:
		local := l.res.Locals.Local(dis.Ref)
		return &Variable{Ref: dis.Ref, Ident: l.db.Crate.Builder.Name(local.Ident)}
	case *sema.EntityDis:
		if e.Kind == ast.ExprSelf {
			mismatch(e, info)
		}
		return &PrincipalEntityPath{Path: dis.Path, Inst: dis.Inst}
	case *sema.TypePathDis:
		if e.Kind == ast.ExprSelf {
			mismatch(e, info)
		}
		return &PrincipalEntityPath{Path: dis.Path, Inst: dis.Inst}
	case *sema.TypeTermDis:
		return &TypeTerm{Ty: dis.Ty}
	}
	mismatch(e, info)
	return nil
}

func (l *lowerer[B]) call(id ast.ExprID, e *ast.Expr, info *sema.ExprInfo) ExprData {
	dis, ok := info.Dis.(*sema.CallDis)
	if !ok {
		mismatch(e, info)
	}
	cd, _ := l.exprs.Call(id)
	if dis.Mode == sema.CallApplication {
		if len(dis.Groups) != 0 {
			mismatch(e, info)
		}
		fn := l.expr(cd.Callee)
		args := make([]ExprIdx, len(cd.Args))
		for i, a := range cd.Args {
			args[i] = l.expr(a.Value)
		}
		return &Application{Func: fn, Args: args}
	}
	switch {
	case dis.Constructor:
		return &TypeConstructorCall{Path: dis.Callee, Inst: dis.Inst, Groups: l.groups(dis.Groups)}
	case dis.Decl != nil && (dis.Decl.Lazy || dis.Ritchie == term.RitchieGn):
		return &GnCall{Path: dis.Callee, Inst: dis.Inst, Groups: l.groups(dis.Groups)}
	case dis.Decl != nil:
		return &FnCall{Path: dis.Callee, Inst: dis.Inst, Groups: l.groups(dis.Groups)}
	}
	callee := l.expr(cd.Callee)
	return &FnValueCall{Callee: callee, Ritchie: dis.Ritchie, Groups: l.groups(dis.Groups)}
}

func (l *lowerer[B]) block(id ast.ExprID) *Block {
	bd, _ := l.exprs.Block(id)
	out := &Block{}
	for i, st := range bd.Stmts {
		if es, ok := l.stmts.Expr(st); ok && !es.Semi && i == len(bd.Stmts)-1 {
			out.Value = l.expr(es.Expr)
			continue
		}
		out.Stmts = append(out.Stmts, l.stmt(st))
	}
	return out
}
