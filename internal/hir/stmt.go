package hir

import (
	"husk/internal/ast"
	"husk/internal/source"
	"husk/internal/symbols"
)

// Stmt is one lowered statement.
type Stmt struct {
	Data   StmtData
	Span   source.Span
	Source ast.StmtID
}

// StmtData is the shape of a statement.
type StmtData interface {
	exprs(visit func(ExprIdx))
}

// Let binds an immutable local; Init is NoExprIdx only for Var.
type Let struct {
	Ref   symbols.VarRef
	Ident string
	Init  ExprIdx
}

// Var binds a mutable local.
type Var struct {
	Ref   symbols.VarRef
	Ident string
	Init  ExprIdx
}

// Return leaves the body; Value is NoExprIdx for a bare return.
type Return struct {
	Value ExprIdx
}

// Eval evaluates an expression for its effects.
type Eval struct {
	Value ExprIdx
	// Discard mirrors the trailing `;`.
	Discard bool
}

type If struct {
	Cond, Then, Else ExprIdx
	// Value marks an if ending its block: the taken branch is the block's value.
	Value bool
}

type While struct {
	Cond, Body ExprIdx
}

type Assign struct {
	Op            ast.AssignOp
	Target, Value ExprIdx
}

func (s *Let) exprs(visit func(ExprIdx))  { visit(s.Init) }
func (s *Eval) exprs(visit func(ExprIdx)) { visit(s.Value) }
func (s *Var) exprs(visit func(ExprIdx)) {
	if s.Init.IsValid() {
		visit(s.Init)
	}
}
func (s *Return) exprs(visit func(ExprIdx)) {
	if s.Value.IsValid() {
		visit(s.Value)
	}
}
func (s *If) exprs(visit func(ExprIdx)) {
	visit(s.Cond)
	visit(s.Then)
	if s.Else.IsValid() {
		visit(s.Else)
	}
}
func (s *While) exprs(visit func(ExprIdx))  { visit(s.Cond); visit(s.Body) }
func (s *Assign) exprs(visit func(ExprIdx)) { visit(s.Target); visit(s.Value) }
