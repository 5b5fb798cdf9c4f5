package ast

import (
	"husk/internal/source"
)

type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtReturn
	StmtIf
	StmtWhile
	StmtExpr
	StmtAssign
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

// LetStmt is `let x: T = e;` or, with Mutable set, `var x = e;`.
type LetStmt struct {
	Name     source.StringID
	NameSpan source.Span
	Mutable  bool
	Type     ExprID
	Init     ExprID
}

type ReturnStmt struct {
	Value ExprID
}

// IfStmt: Else is a block expression or NoExprID; `else if` is a block holding one IfStmt.
type IfStmt struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

type WhileStmt struct {
	Cond ExprID
	Body ExprID
}

// ExprStmt is an expression in statement position; Semi is false only for a trailing block value.
type ExprStmt struct {
	Expr ExprID
	Semi bool
}

type AssignOp uint8

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
)

func (op AssignOp) String() string {
	switch op {
	case AssignAdd:
		return "+="
	case AssignSub:
		return "-="
	}
	return "="
}

type AssignStmt struct {
	Op     AssignOp
	Target ExprID
	Value  ExprID
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Lets    *Arena[LetStmt]
	Returns *Arena[ReturnStmt]
	Ifs     *Arena[IfStmt]
	Whiles  *Arena[WhileStmt]
	Exprs   *Arena[ExprStmt]
	Assigns *Arena[AssignStmt]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Lets:    NewArena[LetStmt](capHint),
		Returns: NewArena[ReturnStmt](capHint),
		Ifs:     NewArena[IfStmt](capHint),
		Whiles:  NewArena[WhileStmt](capHint),
		Exprs:   NewArena[ExprStmt](capHint),
		Assigns: NewArena[AssignStmt](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kind StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return 0, false
	}
	return uint32(st.Payload), true
}

func (s *Stmts) NewLet(span source.Span, l LetStmt) StmtID {
	return s.new(StmtLet, span, s.Lets.Allocate(l))
}

func (s *Stmts) Let(id StmtID) (*LetStmt, bool) {
	p, ok := s.payload(id, StmtLet)
	if !ok {
		return nil, false
	}
	return s.Lets.Get(p), true
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(ReturnStmt{Value: value}))
}

func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	p, ok := s.payload(id, StmtReturn)
	if !ok {
		return nil, false
	}
	return s.Returns.Get(p), true
}

func (s *Stmts) NewIf(span source.Span, st IfStmt) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(st))
}

func (s *Stmts) If(id StmtID) (*IfStmt, bool) {
	p, ok := s.payload(id, StmtIf)
	if !ok {
		return nil, false
	}
	return s.Ifs.Get(p), true
}

func (s *Stmts) NewWhile(span source.Span, st WhileStmt) StmtID {
	return s.new(StmtWhile, span, s.Whiles.Allocate(st))
}

func (s *Stmts) While(id StmtID) (*WhileStmt, bool) {
	p, ok := s.payload(id, StmtWhile)
	if !ok {
		return nil, false
	}
	return s.Whiles.Get(p), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID, semi bool) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(ExprStmt{Expr: expr, Semi: semi}))
}

func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool) {
	p, ok := s.payload(id, StmtExpr)
	if !ok {
		return nil, false
	}
	return s.Exprs.Get(p), true
}

func (s *Stmts) NewAssign(span source.Span, st AssignStmt) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(st))
}

func (s *Stmts) Assign(id StmtID) (*AssignStmt, bool) {
	p, ok := s.payload(id, StmtAssign)
	if !ok {
		return nil, false
	}
	return s.Assigns.Get(p), true
}
