package contract

import (
	"husk/internal/ast"
	"husk/internal/diag"
	"husk/internal/sema"
	"husk/internal/symbols"
)

// Result holds the contracts or qualifiers of one region.
type Result struct {
	Key  sema.RegionKey
	Lazy bool
	// Skipped is set when the region did not type cleanly; nothing else is filled.
	Skipped bool

	Contracts  map[ast.ExprID]Contract  // eager regions
	Qualifiers map[ast.ExprID]Qualifier // lazy regions

	// Locals holds the qualifier of each lazy let binding.
	Locals map[symbols.VarRef]Qualifier

	Errors []*diag.Error
}

// Contract returns the contract of an eager expression.
func (r *Result) Contract(id ast.ExprID) (Contract, bool) {
	c, ok := r.Contracts[id]
	return c, ok
}

// Qualifier returns the qualifier of a lazy expression.
func (r *Result) Qualifier(id ast.ExprID) (Qualifier, bool) {
	q, ok := r.Qualifiers[id]
	return q, ok
}

func (r *Result) Ok() bool { return !r.Skipped && len(r.Errors) == 0 }
