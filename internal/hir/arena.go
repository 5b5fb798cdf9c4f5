package hir

import (
	"fmt"

	"fortio.org/safecast"

	"husk/internal/contract"
)

// Arena holds the nodes of one body. Children are always allocated
// before their parents.
type Arena[B Binding] struct {
	exprs []Expr[B]
	stmts []Stmt
}

// EagerExprArena holds fn bodies and keyed defaults.
type EagerExprArena = Arena[contract.Contract]

// LazyExprArena holds gn and memo bodies.
type LazyExprArena = Arena[contract.Qualifier]

// slot is the one-based index of the i-th node.
func slot(i int) uint32 {
	n, err := safecast.Conv[uint32](i + 1)
	if err != nil {
		panic(fmt.Errorf("hir arena overflow: %w", err))
	}
	return n
}

func exprAt(i int) ExprIdx { return ExprIdx(slot(i)) }
func stmtAt(i int) StmtIdx { return StmtIdx(slot(i)) }

func (a *Arena[B]) pushExpr(e Expr[B]) ExprIdx {
	a.exprs = append(a.exprs, e)
	return exprAt(len(a.exprs) - 1)
}

func (a *Arena[B]) pushStmt(s Stmt) StmtIdx {
	a.stmts = append(a.stmts, s)
	return stmtAt(len(a.stmts) - 1)
}

func (a *Arena[B]) Expr(id ExprIdx) *Expr[B] { return &a.exprs[id-1] }
func (a *Arena[B]) Stmt(id StmtIdx) *Stmt    { return &a.stmts[id-1] }
func (a *Arena[B]) Len() int                 { return len(a.exprs) }
func (a *Arena[B]) StmtLen() int             { return len(a.stmts) }

// Validate checks that every node refers only to nodes allocated before it.
// A statement counts as allocated before an expression when every
// expression it refers to is.
func (a *Arena[B]) Validate() error {
	for i := range a.stmts {
		var bad error
		a.stmts[i].Data.exprs(func(e ExprIdx) {
			if bad == nil && (!e.IsValid() || int(e) > len(a.exprs)) {
				bad = fmt.Errorf("stmt %d refers to missing expr %d", i+1, e)
			}
		})
		if bad != nil {
			return bad
		}
	}
	for i := range a.exprs {
		self := exprAt(i)
		var bad error
		a.exprs[i].Data.children(func(c ExprIdx) {
			if bad == nil && (!c.IsValid() || c >= self) {
				bad = fmt.Errorf("expr %d refers to expr %d", self, c)
			}
		})
		a.exprs[i].Data.stmts(func(s StmtIdx) {
			if bad != nil {
				return
			}
			if !s.IsValid() || int(s) > len(a.stmts) {
				bad = fmt.Errorf("expr %d refers to missing stmt %d", self, s)
				return
			}
			a.stmts[s-1].Data.exprs(func(c ExprIdx) {
				if bad == nil && c >= self {
					bad = fmt.Errorf("expr %d holds stmt %d which refers to expr %d", self, s, c)
				}
			})
		})
		if bad != nil {
			return bad
		}
	}
	return nil
}
