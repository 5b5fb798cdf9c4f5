package ast

import (
	"husk/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
// Type annotations are expressions too; ExprGenericApp, ExprApply,
// ExprRitchieType and ExprCurryType only come out of type position.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprLit
	ExprIdent
	ExprSelf
	ExprPath
	ExprBinary
	ExprPrefix
	ExprSuffix
	ExprCall
	ExprMethodCall
	ExprField
	ExprIndex
	ExprList
	ExprTuple
	ExprBlock
	ExprGenericApp
	ExprApply
	ExprRitchieType
	ExprCurryType
)

var exprKindNames = [...]string{
	ExprInvalid:     "Invalid",
	ExprLit:         "Lit",
	ExprIdent:       "Ident",
	ExprSelf:        "Self",
	ExprPath:        "Path",
	ExprBinary:      "Binary",
	ExprPrefix:      "Prefix",
	ExprSuffix:      "Suffix",
	ExprCall:        "Call",
	ExprMethodCall:  "MethodCall",
	ExprField:       "Field",
	ExprIndex:       "Index",
	ExprList:        "List",
	ExprTuple:       "Tuple",
	ExprBlock:       "Block",
	ExprGenericApp:  "GenericApp",
	ExprApply:       "Apply",
	ExprRitchieType: "RitchieType",
	ExprCurryType:   "CurryType",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Expr?"
}

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitString
)

type LitData struct {
	Kind   LitKind
	Text   string // digits without suffix, unquoted string, or true/false
	Suffix string // i32, i64, f32, f64 or empty
}

type IdentData struct {
	Name source.StringID
}

// PathData is `Base::Name`.
type PathData struct {
	Base     ExprID
	Name     source.StringID
	NameSpan source.Span
}

type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

var binaryOpNames = [...]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinMod: "%",
	BinEq: "==", BinNe: "!=", BinLt: "<", BinLe: "<=", BinGt: ">", BinGe: ">=",
	BinAnd: "&&", BinOr: "||",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// IsComparison reports operators whose result is bool regardless of operand type.
func (op BinaryOp) IsComparison() bool {
	return op >= BinEq && op <= BinGe
}

func (op BinaryOp) IsLogic() bool {
	return op == BinAnd || op == BinOr
}

type BinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type PrefixOp uint8

const (
	PrefixNeg PrefixOp = iota
	PrefixNot
)

func (op PrefixOp) String() string {
	if op == PrefixNot {
		return "!"
	}
	return "-"
}

type PrefixData struct {
	Op      PrefixOp
	Operand ExprID
}

type SuffixOp uint8

const (
	SuffixIncr SuffixOp = iota
	SuffixDecr
	SuffixUnwrap
)

func (op SuffixOp) String() string {
	switch op {
	case SuffixIncr:
		return "++"
	case SuffixDecr:
		return "--"
	}
	return "?"
}

type SuffixData struct {
	Op      SuffixOp
	Operand ExprID
}

// CallArg is one call-list item; Key is set for `k = v` arguments.
type CallArg struct {
	Key     source.StringID
	KeySpan source.Span
	Value   ExprID
}

type CallData struct {
	Callee ExprID
	Args   []CallArg
	Lpar   source.Span
	Rpar   source.Span
}

type MethodCallData struct {
	Receiver ExprID
	Name     source.StringID
	NameSpan source.Span
	Generics []ExprID
	Args     []CallArg
}

type FieldData struct {
	Owner    ExprID
	Name     source.StringID
	NameSpan source.Span
}

type IndexData struct {
	Owner   ExprID
	Indices []ExprID
}

type ListData struct {
	Items []ExprID
}

type TupleData struct {
	Items []ExprID
}

type BlockData struct {
	Stmts []StmtID
}

// GenericAppData is `Base<A, B>` in type position.
type GenericAppData struct {
	Base ExprID
	Args []ExprID
}

// ApplyData is juxtaposition, e.g. `[]i32`.
type ApplyData struct {
	Func ExprID
	Arg  ExprID
}

type RitchieKind uint8

const (
	RitchieFn RitchieKind = iota
	RitchieFnMut
	RitchieGn
)

func (k RitchieKind) String() string {
	switch k {
	case RitchieFnMut:
		return "fnmut"
	case RitchieGn:
		return "gn"
	}
	return "fn"
}

type RitchieTypeData struct {
	Kind   RitchieKind
	Params []ExprID
	Return ExprID
}

type CurryTypeData struct {
	Param  ExprID
	Return ExprID
}
