package ast

import (
	"husk/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena        *Arena[Expr]
	Lits         *Arena[LitData]
	Idents       *Arena[IdentData]
	Paths        *Arena[PathData]
	Binaries     *Arena[BinaryData]
	Prefixes     *Arena[PrefixData]
	Suffixes     *Arena[SuffixData]
	Calls        *Arena[CallData]
	MethodCalls  *Arena[MethodCallData]
	Fields       *Arena[FieldData]
	Indices      *Arena[IndexData]
	Lists        *Arena[ListData]
	Tuples       *Arena[TupleData]
	Blocks       *Arena[BlockData]
	GenericApps  *Arena[GenericAppData]
	Applies      *Arena[ApplyData]
	RitchieTypes *Arena[RitchieTypeData]
	CurryTypes   *Arena[CurryTypeData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint/4 + 1
	return &Exprs{
		Arena:        NewArena[Expr](capHint),
		Lits:         NewArena[LitData](capHint),
		Idents:       NewArena[IdentData](capHint),
		Paths:        NewArena[PathData](small),
		Binaries:     NewArena[BinaryData](small),
		Prefixes:     NewArena[PrefixData](small),
		Suffixes:     NewArena[SuffixData](small),
		Calls:        NewArena[CallData](small),
		MethodCalls:  NewArena[MethodCallData](small),
		Fields:       NewArena[FieldData](small),
		Indices:      NewArena[IndexData](small),
		Lists:        NewArena[ListData](small),
		Tuples:       NewArena[TupleData](small),
		Blocks:       NewArena[BlockData](small),
		GenericApps:  NewArena[GenericAppData](small),
		Applies:      NewArena[ApplyData](small),
		RitchieTypes: NewArena[RitchieTypeData](small),
		CurryTypes:   NewArena[CurryTypeData](small),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// Len is the number of allocated expressions; valid ids are 1..Len.
func (e *Exprs) Len() uint32 {
	return e.Arena.Len()
}

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

func (e *Exprs) NewInvalid(span source.Span) ExprID {
	return e.new(ExprInvalid, span, 0)
}

func (e *Exprs) NewSelf(span source.Span) ExprID {
	return e.new(ExprSelf, span, 0)
}

func (e *Exprs) NewLit(span source.Span, d LitData) ExprID {
	return e.new(ExprLit, span, e.Lits.Allocate(d))
}

func (e *Exprs) Lit(id ExprID) (*LitData, bool) {
	p, ok := e.payload(id, ExprLit)
	if !ok {
		return nil, false
	}
	return e.Lits.Get(p), true
}

func (e *Exprs) NewIdent(span source.Span, name source.StringID) ExprID {
	return e.new(ExprIdent, span, e.Idents.Allocate(IdentData{Name: name}))
}

func (e *Exprs) Ident(id ExprID) (*IdentData, bool) {
	p, ok := e.payload(id, ExprIdent)
	if !ok {
		return nil, false
	}
	return e.Idents.Get(p), true
}

func (e *Exprs) NewPath(span source.Span, d PathData) ExprID {
	return e.new(ExprPath, span, e.Paths.Allocate(d))
}

func (e *Exprs) Path(id ExprID) (*PathData, bool) {
	p, ok := e.payload(id, ExprPath)
	if !ok {
		return nil, false
	}
	return e.Paths.Get(p), true
}

func (e *Exprs) NewBinary(span source.Span, op BinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, span, e.Binaries.Allocate(BinaryData{Op: op, Left: left, Right: right}))
}

func (e *Exprs) Binary(id ExprID) (*BinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

func (e *Exprs) NewPrefix(span source.Span, op PrefixOp, operand ExprID) ExprID {
	return e.new(ExprPrefix, span, e.Prefixes.Allocate(PrefixData{Op: op, Operand: operand}))
}

func (e *Exprs) Prefix(id ExprID) (*PrefixData, bool) {
	p, ok := e.payload(id, ExprPrefix)
	if !ok {
		return nil, false
	}
	return e.Prefixes.Get(p), true
}

func (e *Exprs) NewSuffix(span source.Span, op SuffixOp, operand ExprID) ExprID {
	return e.new(ExprSuffix, span, e.Suffixes.Allocate(SuffixData{Op: op, Operand: operand}))
}

func (e *Exprs) Suffix(id ExprID) (*SuffixData, bool) {
	p, ok := e.payload(id, ExprSuffix)
	if !ok {
		return nil, false
	}
	return e.Suffixes.Get(p), true
}

func (e *Exprs) NewCall(span source.Span, d CallData) ExprID {
	return e.new(ExprCall, span, e.Calls.Allocate(d))
}

func (e *Exprs) Call(id ExprID) (*CallData, bool) {
	p, ok := e.payload(id, ExprCall)
	if !ok {
		return nil, false
	}
	return e.Calls.Get(p), true
}

func (e *Exprs) NewMethodCall(span source.Span, d MethodCallData) ExprID {
	return e.new(ExprMethodCall, span, e.MethodCalls.Allocate(d))
}

func (e *Exprs) MethodCall(id ExprID) (*MethodCallData, bool) {
	p, ok := e.payload(id, ExprMethodCall)
	if !ok {
		return nil, false
	}
	return e.MethodCalls.Get(p), true
}

func (e *Exprs) NewField(span source.Span, d FieldData) ExprID {
	return e.new(ExprField, span, e.Fields.Allocate(d))
}

func (e *Exprs) Field(id ExprID) (*FieldData, bool) {
	p, ok := e.payload(id, ExprField)
	if !ok {
		return nil, false
	}
	return e.Fields.Get(p), true
}

func (e *Exprs) NewIndex(span source.Span, owner ExprID, indices []ExprID) ExprID {
	return e.new(ExprIndex, span, e.Indices.Allocate(IndexData{Owner: owner, Indices: indices}))
}

func (e *Exprs) Index(id ExprID) (*IndexData, bool) {
	p, ok := e.payload(id, ExprIndex)
	if !ok {
		return nil, false
	}
	return e.Indices.Get(p), true
}

func (e *Exprs) NewList(span source.Span, items []ExprID) ExprID {
	return e.new(ExprList, span, e.Lists.Allocate(ListData{Items: items}))
}

func (e *Exprs) List(id ExprID) (*ListData, bool) {
	p, ok := e.payload(id, ExprList)
	if !ok {
		return nil, false
	}
	return e.Lists.Get(p), true
}

func (e *Exprs) NewTuple(span source.Span, items []ExprID) ExprID {
	return e.new(ExprTuple, span, e.Tuples.Allocate(TupleData{Items: items}))
}

func (e *Exprs) Tuple(id ExprID) (*TupleData, bool) {
	p, ok := e.payload(id, ExprTuple)
	if !ok {
		return nil, false
	}
	return e.Tuples.Get(p), true
}

func (e *Exprs) NewBlock(span source.Span, stmts []StmtID) ExprID {
	return e.new(ExprBlock, span, e.Blocks.Allocate(BlockData{Stmts: stmts}))
}

func (e *Exprs) Block(id ExprID) (*BlockData, bool) {
	p, ok := e.payload(id, ExprBlock)
	if !ok {
		return nil, false
	}
	return e.Blocks.Get(p), true
}

func (e *Exprs) NewGenericApp(span source.Span, base ExprID, args []ExprID) ExprID {
	return e.new(ExprGenericApp, span, e.GenericApps.Allocate(GenericAppData{Base: base, Args: args}))
}

func (e *Exprs) GenericApp(id ExprID) (*GenericAppData, bool) {
	p, ok := e.payload(id, ExprGenericApp)
	if !ok {
		return nil, false
	}
	return e.GenericApps.Get(p), true
}

func (e *Exprs) NewApply(span source.Span, fn, arg ExprID) ExprID {
	return e.new(ExprApply, span, e.Applies.Allocate(ApplyData{Func: fn, Arg: arg}))
}

func (e *Exprs) Apply(id ExprID) (*ApplyData, bool) {
	p, ok := e.payload(id, ExprApply)
	if !ok {
		return nil, false
	}
	return e.Applies.Get(p), true
}

func (e *Exprs) NewRitchieType(span source.Span, d RitchieTypeData) ExprID {
	return e.new(ExprRitchieType, span, e.RitchieTypes.Allocate(d))
}

func (e *Exprs) RitchieType(id ExprID) (*RitchieTypeData, bool) {
	p, ok := e.payload(id, ExprRitchieType)
	if !ok {
		return nil, false
	}
	return e.RitchieTypes.Get(p), true
}

func (e *Exprs) NewCurryType(span source.Span, param, ret ExprID) ExprID {
	return e.new(ExprCurryType, span, e.CurryTypes.Allocate(CurryTypeData{Param: param, Return: ret}))
}

func (e *Exprs) CurryType(id ExprID) (*CurryTypeData, bool) {
	p, ok := e.payload(id, ExprCurryType)
	if !ok {
		return nil, false
	}
	return e.CurryTypes.Get(p), true
}
