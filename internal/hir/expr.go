package hir

import (
	"husk/internal/ast"
	"husk/internal/contract"
	"husk/internal/entity"
	"husk/internal/sema"
	"husk/internal/source"
	"husk/internal/symbols"
	"husk/internal/term"
)

// Binding is the per-node binding mode: contracts in eager bodies,
// qualifiers in lazy ones.
type Binding interface {
	contract.Contract | contract.Qualifier
	String() string
}

// Expr is one lowered expression.
type Expr[B Binding] struct {
	Data    ExprData
	Ty      term.Term
	Binding B
	Span    source.Span
	Source  ast.ExprID
}

// ExprData is the shape of a node. The concrete types below are the only
// implementations.
type ExprData interface {
	children(visit func(ExprIdx))
	stmts(visit func(StmtIdx))
}

type leaf struct{}

func (leaf) children(func(ExprIdx)) {}
func (leaf) stmts(func(StmtIdx))    {}

type Literal struct {
	leaf
	Kind ast.LitKind
	Text string
}

// PrincipalEntityPath is a path used as a value: a fugitive, a variant,
// a type or a type constructor.
type PrincipalEntityPath struct {
	leaf
	Path entity.Path
	Inst *term.Instantiation
}

// TypeTerm is an expression that only denotes a type.
type TypeTerm struct {
	leaf
	Ty term.Term
}

type Variable struct {
	leaf
	Ref   symbols.VarRef
	Ident string
}

type Binary struct {
	Op          ast.BinaryOp
	Left, Right ExprIdx
}

type Prefix struct {
	Op      ast.PrefixOp
	Operand ExprIdx
}

// Suffix is `x++` or `x--`.
type Suffix struct {
	Op      ast.SuffixOp
	Operand ExprIdx
}

// Unwrap is `x?`.
type Unwrap struct {
	Operand ExprIdx
}

type PropsStructField struct {
	Owner ExprIdx
	Ident string
	Index int
}

type MemoizedField struct {
	Owner ExprIdx
	Path  entity.Path
	Inst  *term.Instantiation
}

// ItemGroup binds call-list items to one parameter in declaration order.
type ItemGroup struct {
	Kind    sema.GroupKind
	Ident   string
	Liason  term.Liason
	Args    []ExprIdx
	Default bool
}

// MethodFnCall is `self.m(...)`; the receiver's binding is the contract
// the method puts on it.
type MethodFnCall struct {
	Self   ExprIdx
	This   term.Liason
	Path   entity.Path
	Inst   *term.Instantiation
	Groups []ItemGroup
	Lazy   bool
}

type FnCall struct {
	Path   entity.Path
	Inst   *term.Instantiation
	Groups []ItemGroup
}

type GnCall struct {
	Path   entity.Path
	Inst   *term.Instantiation
	Groups []ItemGroup
}

// FnValueCall calls a function-typed value such as a parameter.
type FnValueCall struct {
	Callee  ExprIdx
	Ritchie term.RitchieKind
	Groups  []ItemGroup
}

type TypeConstructorCall struct {
	Path   entity.Path
	Inst   *term.Instantiation
	Groups []ItemGroup
}

// Application applies a curried function to its arguments one by one.
type Application struct {
	Func ExprIdx
	Args []ExprIdx
}

type Index struct {
	Owner   ExprIdx
	Indices []ExprIdx
}

// ComposeWithList is `T[]`.
type ComposeWithList struct {
	Element ExprIdx
}

type NewTuple struct {
	Items []ExprIdx
}

type NewList struct {
	Items []ExprIdx
}

// Block runs Stmts and yields Value. Without Value it yields the value of a
// trailing If marked Value, or unit.
type Block struct {
	Stmts []StmtIdx
	Value ExprIdx
}

func (d *Binary) children(visit func(ExprIdx)) { visit(d.Left); visit(d.Right) }
func (d *Prefix) children(visit func(ExprIdx)) { visit(d.Operand) }
func (d *Suffix) children(visit func(ExprIdx)) { visit(d.Operand) }
func (d *Unwrap) children(visit func(ExprIdx)) { visit(d.Operand) }
func (d *PropsStructField) children(visit func(ExprIdx)) {
	visit(d.Owner)
}
func (d *MemoizedField) children(visit func(ExprIdx)) { visit(d.Owner) }
func (d *MethodFnCall) children(visit func(ExprIdx)) {
	visit(d.Self)
	visitGroups(d.Groups, visit)
}
func (d *FnCall) children(visit func(ExprIdx))              { visitGroups(d.Groups, visit) }
func (d *GnCall) children(visit func(ExprIdx))              { visitGroups(d.Groups, visit) }
func (d *TypeConstructorCall) children(visit func(ExprIdx)) { visitGroups(d.Groups, visit) }
func (d *FnValueCall) children(visit func(ExprIdx)) {
	visit(d.Callee)
	visitGroups(d.Groups, visit)
}
func (d *Application) children(visit func(ExprIdx)) {
	visit(d.Func)
	visitAll(d.Args, visit)
}
func (d *Index) children(visit func(ExprIdx)) {
	visit(d.Owner)
	visitAll(d.Indices, visit)
}
func (d *ComposeWithList) children(visit func(ExprIdx)) { visit(d.Element) }
func (d *NewTuple) children(visit func(ExprIdx))        { visitAll(d.Items, visit) }
func (d *NewList) children(visit func(ExprIdx))         { visitAll(d.Items, visit) }
func (d *Block) children(visit func(ExprIdx)) {
	if d.Value.IsValid() {
		visit(d.Value)
	}
}

func (*Binary) stmts(func(StmtIdx))              {}
func (*Prefix) stmts(func(StmtIdx))              {}
func (*Suffix) stmts(func(StmtIdx))              {}
func (*Unwrap) stmts(func(StmtIdx))              {}
func (*PropsStructField) stmts(func(StmtIdx))    {}
func (*MemoizedField) stmts(func(StmtIdx))       {}
func (*MethodFnCall) stmts(func(StmtIdx))        {}
func (*FnCall) stmts(func(StmtIdx))              {}
func (*GnCall) stmts(func(StmtIdx))              {}
func (*TypeConstructorCall) stmts(func(StmtIdx)) {}
func (*FnValueCall) stmts(func(StmtIdx))         {}
func (*Application) stmts(func(StmtIdx))         {}
func (*Index) stmts(func(StmtIdx))               {}
func (*ComposeWithList) stmts(func(StmtIdx))     {}
func (*NewTuple) stmts(func(StmtIdx))            {}
func (*NewList) stmts(func(StmtIdx))             {}
func (d *Block) stmts(visit func(StmtIdx)) {
	for _, s := range d.Stmts {
		visit(s)
	}
}

func visitAll(ids []ExprIdx, visit func(ExprIdx)) {
	for _, id := range ids {
		visit(id)
	}
}

func visitGroups(groups []ItemGroup, visit func(ExprIdx)) {
	for _, g := range groups {
		visitAll(g.Args, visit)
	}
}
