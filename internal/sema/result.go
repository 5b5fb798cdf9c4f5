package sema

import (
	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/hollow"
	"husk/internal/symbols"
	"husk/internal/term"
)

// ExprInfo is what the engine knows about one expression after its session closed.
type ExprInfo struct {
	Ty     term.Term // NoTerm when typing failed
	Err    *diag.Error
	Dis    Disambiguation
	Expect hollow.ExpectKind
	// ExpectErr is set when the expression typed but missed its expectation.
	ExpectErr *diag.Error
	// Diverges marks blocks that always return.
	Diverges bool

	local     hollow.Local
	entry     int
	forwarded bool
}

// StmtInfo records the binding a let or var statement introduced, or
// marks an `if` whose branches give its block's value.
type StmtInfo struct {
	Ref   symbols.VarRef
	Value bool
}

// RegionResult is the typed view of one expression region.
type RegionResult struct {
	Key    RegionKey
	Module entity.Path
	Decl   *decl.CallFormDecl // nil when the declaration is unusable
	Root   ast.ExprID
	Lazy   bool
	Output term.Term

	Locals    *symbols.Region
	Inherited []term.Term // types of Locals.Inherited
	Current   []term.Term // types of Locals.Current
	Self      symbols.VarRef
	HasSelf   bool

	Exprs map[ast.ExprID]*ExprInfo
	Stmts map[ast.StmtID]StmtInfo

	// Errors holds Original and Derived errors in discovery order.
	Errors []*diag.Error
}

// Expr returns the info of id or nil when the region never typed it.
func (r *RegionResult) Expr(id ast.ExprID) *ExprInfo { return r.Exprs[id] }

// Type returns the final type of id, NoTerm when unknown.
func (r *RegionResult) Type(id ast.ExprID) term.Term {
	if info := r.Exprs[id]; info != nil {
		return info.Ty
	}
	return term.NoTerm
}

// LocalType returns the type of a region-local symbol.
func (r *RegionResult) LocalType(ref symbols.VarRef) term.Term {
	if ref.Inherited {
		return r.Inherited[ref.Index]
	}
	return r.Current[ref.Index]
}

// Originals filters Errors down to the ones users see.
func (r *RegionResult) Originals() []*diag.Error {
	var out []*diag.Error
	for _, err := range r.Errors {
		if err.Origin == diag.OriginOriginal {
			out = append(out, err)
		}
	}
	return out
}

// Ok reports a region where every expression typed and met its expectation.
func (r *RegionResult) Ok() bool { return r.Decl != nil && len(r.Errors) == 0 }
