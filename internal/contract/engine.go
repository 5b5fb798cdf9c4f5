package contract

import (
	"fmt"

	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/query"
	"husk/internal/sema"
	"husk/internal/source"
	"husk/internal/symbols"
	"husk/internal/trace"
)

// Engine runs the contract passes over regions typed by a sema engine.
type Engine struct {
	Sema *sema.Engine

	results *query.Memo[sema.RegionKey, *Result]
}

func NewEngine(se *sema.Engine) *Engine {
	return &Engine{Sema: se, results: query.NewMemo[sema.RegionKey, *Result]("contract_region")}
}

// Of returns the contracts of one region, computing them once.
func (e *Engine) Of(key sema.RegionKey) *Result {
	return e.results.Get(key, func() *Result {
		res := e.Sema.Infer(key)
		span := trace.Begin(e.Sema.Tracer, trace.ScopeRegion, "contract_region", 0)
		span.WithExtra("region", key.Display(e.Sema.DB.Reg()))
		out := Check(e.Sema.DB, res)
		span.End(fmt.Sprintf("lazy=%t skipped=%t errors=%d", out.Lazy, out.Skipped, len(out.Errors)))
		return out
	})
}

// Check assigns contracts or qualifiers to a typed region.
func Check(db *decl.DB, res *sema.RegionResult) *Result {
	out := &Result{Key: res.Key, Lazy: res.Lazy}
	if !res.Ok() {
		out.Skipped = true
		return out
	}
	p := &pass{
		db:    db,
		res:   res,
		exprs: db.Crate.Builder.Exprs,
		stmts: db.Crate.Builder.Stmts,
		out:   out,
	}
	if res.Lazy {
		out.Qualifiers = make(map[ast.ExprID]Qualifier, len(res.Exprs))
		out.Locals = make(map[symbols.VarRef]Qualifier)
		p.yield(res.Root, p.lazy(res.Root))
	} else {
		out.Contracts = make(map[ast.ExprID]Contract, len(res.Exprs))
		root := ReturnContract(res.Decl.OutputLiason, db.IsCopyable(res.Output))
		if res.Key.Kind == sema.RegionKeyedDefault {
			root = ParamContract(res.Decl.Keyed[res.Key.Param].Liason)
		}
		p.eager(res.Root, root)
	}
	return out
}

type pass struct {
	db    *decl.DB
	res   *sema.RegionResult
	exprs *ast.Exprs
	stmts *ast.Stmts
	out   *Result
}

func (p *pass) copyable(id ast.ExprID) bool { return p.db.IsCopyable(p.res.Type(id)) }

func (p *pass) info(id ast.ExprID) *sema.ExprInfo {
	info := p.res.Expr(id)
	if info == nil {
		panic(diag.Internalf("contract: expression %d was never typed", id))
	}
	return info
}

func (p *pass) report(code diag.Code, span source.Span, format string, args ...any) {
	p.out.Errors = append(p.out.Errors, diag.Original(code, span, format, args...))
}

func (p *pass) name(id source.StringID) string { return p.db.Crate.Builder.Name(id) }
