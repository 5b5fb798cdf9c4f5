// Package hir is the lowered form of typed expression regions.
//
// Every ambiguous syntactic form is replaced by the reading the type
// engine chose, and every node carries the binding mode the contract
// passes assigned. Bodies live in flat arenas where a node only refers
// to nodes allocated before it. Lowering makes no type or contract
// decisions of its own; a disambiguation that does not fit the node's
// syntax is a compiler bug and panics.
package hir

// ExprIdx is a 1-based index into an expression arena.
type ExprIdx uint32

// StmtIdx is a 1-based index into a statement arena.
type StmtIdx uint32

const (
	NoExprIdx ExprIdx = 0
	NoStmtIdx StmtIdx = 0
)

func (id ExprIdx) IsValid() bool { return id != NoExprIdx }
func (id StmtIdx) IsValid() bool { return id != NoStmtIdx }
