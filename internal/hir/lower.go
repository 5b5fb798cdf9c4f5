package hir

import (
	"errors"
	"fmt"

	"husk/internal/ast"
	"husk/internal/contract"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/sema"
	"husk/internal/term"
)

// ErrNotLowerable is returned for regions that did not type or were not
// checked for contracts.
var ErrNotLowerable = errors.New("region has errors")

// Body is the arena of one region and its root expression.
type Body[B Binding] struct {
	Arena *Arena[B]
	Root  ExprIdx
}

type (
	EagerBody = Body[contract.Contract]
	LazyBody  = Body[contract.Qualifier]
)

// Region is a lowered region. Exactly one of Eager and Lazy is set.
type Region struct {
	Key    sema.RegionKey
	Output term.Term
	Eager  *EagerBody
	Lazy   *LazyBody
}

// Lower re-shapes a typed and contracted region.
func Lower(db *decl.DB, res *sema.RegionResult, cr *contract.Result) (*Region, error) {
	if !res.Ok() || cr == nil || cr.Skipped {
		return nil, fmt.Errorf("lower %s: %w", res.Key.Display(db.Reg()), ErrNotLowerable)
	}
	if cr.Key != res.Key || cr.Lazy != res.Lazy {
		panic(diag.Internalf("hir: contracts of %s belong to another region", res.Key.Display(db.Reg())))
	}
	r := &Region{Key: res.Key, Output: res.Output}
	if res.Lazy {
		r.Lazy = lowerBody(db, res, cr.Qualifier)
	} else {
		r.Eager = lowerBody(db, res, cr.Contract)
	}
	return r, nil
}

func lowerBody[B Binding](db *decl.DB, res *sema.RegionResult, binding func(ast.ExprID) (B, bool)) *Body[B] {
	l := &lowerer[B]{
		db:      db,
		res:     res,
		exprs:   db.Crate.Builder.Exprs,
		stmts:   db.Crate.Builder.Stmts,
		binding: binding,
		arena:   &Arena[B]{},
	}
	root := l.expr(res.Root)
	return &Body[B]{Arena: l.arena, Root: root}
}

type lowerer[B Binding] struct {
	db      *decl.DB
	res     *sema.RegionResult
	exprs   *ast.Exprs
	stmts   *ast.Stmts
	binding func(ast.ExprID) (B, bool)
	arena   *Arena[B]
}

func (l *lowerer[B]) expr(id ast.ExprID) ExprIdx {
	e := l.exprs.Get(id)
	info := l.res.Expr(id)
	if info == nil {
		panic(diag.Internalf("hir: expression %d was never typed", id))
	}
	data := l.data(id, e, info)
	b, ok := l.binding(id)
	if !ok {
		panic(diag.Internalf("hir: %s expression %d has no binding", e.Kind, id))
	}
	return l.arena.pushExpr(Expr[B]{Data: data, Ty: info.Ty, Binding: b, Span: e.Span, Source: id})
}

func (l *lowerer[B]) exprList(ids []ast.ExprID) []ExprIdx {
	out := make([]ExprIdx, len(ids))
	for i, id := range ids {
		out[i] = l.expr(id)
	}
	return out
}

func (l *lowerer[B]) groups(groups []sema.ItemGroup) []ItemGroup {
	out := make([]ItemGroup, len(groups))
	for i, g := range groups {
		out[i] = ItemGroup{Kind: g.Kind, Ident: g.Ident, Liason: g.Liason, Args: l.exprList(g.Args), Default: g.Default}
	}
	return out
}

// mismatch reports a disambiguation that cannot belong to the node's syntax.
func mismatch(e *ast.Expr, info *sema.ExprInfo) {
	panic(diag.Internalf("hir: %s expression tagged %T", e.Kind, info.Dis))
}
