package parser

import (
	"husk/internal/ast"
	"husk/internal/token"
)

// Binary operator precedence; higher binds tighter.
const (
	precLogicalOr      = 1 // ||
	precLogicalAnd     = 2 // &&
	precEquality       = 3 // == !=
	precComparison     = 4 // < <= > >=
	precAdditive       = 5 // + -
	precMultiplicative = 6 // * / %
)

// binaryOp returns the precedence and AST operator for kind; prec is -1 for non-operators.
func binaryOp(kind token.Kind) (int, ast.BinaryOp) {
	switch kind {
	case token.OrOr:
		return precLogicalOr, ast.BinOr
	case token.AndAnd:
		return precLogicalAnd, ast.BinAnd
	case token.EqEq:
		return precEquality, ast.BinEq
	case token.BangEq:
		return precEquality, ast.BinNe
	case token.Lt:
		return precComparison, ast.BinLt
	case token.LtEq:
		return precComparison, ast.BinLe
	case token.Gt:
		return precComparison, ast.BinGt
	case token.GtEq:
		return precComparison, ast.BinGe
	case token.Plus:
		return precAdditive, ast.BinAdd
	case token.Minus:
		return precAdditive, ast.BinSub
	case token.Star:
		return precMultiplicative, ast.BinMul
	case token.Slash:
		return precMultiplicative, ast.BinDiv
	case token.Percent:
		return precMultiplicative, ast.BinMod
	}
	return -1, 0
}
