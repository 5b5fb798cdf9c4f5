package decl

import (
	"fmt"
	"strconv"

	"husk/internal/ast"
	"husk/internal/term"
)

// SolidOfLit converts an integer or bool literal into a solid value.
func SolidOfLit(lit *ast.LitData) (term.Solid, error) {
	switch lit.Kind {
	case ast.LitBool:
		if lit.Text == "true" {
			return term.Solid{Kind: term.SolidBool, Int: 1}, nil
		}
		return term.Solid{Kind: term.SolidBool}, nil
	case ast.LitInt:
		v, err := strconv.ParseInt(lit.Text, 10, 64)
		if err != nil {
			return term.Solid{}, fmt.Errorf("bad constant %q: %w", lit.Text, err)
		}
		return term.Solid{Kind: term.SolidInt, Int: v}, nil
	}
	return term.Solid{}, fmt.Errorf("constant generic arguments must be integers or booleans")
}
