package sema

import (
	"context"
	"fmt"

	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/query"
	"husk/internal/trace"
)

// Engine types expression regions on top of a declaration database.
type Engine struct {
	DB     *decl.DB
	Tracer trace.Tracer

	regions *query.Memo[RegionKey, *RegionResult]
}

func NewEngine(db *decl.DB, tracer trace.Tracer) *Engine {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Engine{
		DB:      db,
		Tracer:  tracer,
		regions: query.NewMemo[RegionKey, *RegionResult]("infer_region"),
	}
}

// Infer types one region. The result is computed once and shared.
func (e *Engine) Infer(key RegionKey) *RegionResult {
	return e.infer(key, 0)
}

// InferCtx types regions in order and stops between regions once ctx is done.
func (e *Engine) InferCtx(ctx context.Context, keys []RegionKey) ([]*RegionResult, error) {
	parent := trace.ParentFrom(ctx)
	out := make([]*RegionResult, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("infer %s: %w", key.Display(e.DB.Reg()), err)
		}
		out = append(out, e.infer(key, parent))
	}
	return out, nil
}

// Computed reports how many regions were actually typed.
func (e *Engine) Computed() uint64 { return e.regions.Computes() }

func (e *Engine) infer(key RegionKey, parent uint64) *RegionResult {
	return e.regions.Get(key, func() *RegionResult {
		span := trace.Begin(e.Tracer, trace.ScopeRegion, "infer_region", parent)
		span.WithExtra("region", key.Display(e.DB.Reg()))
		res := e.run(key, span.ID())
		span.End(fmt.Sprintf("exprs=%d errors=%d", len(res.Exprs), len(res.Errors)))
		return res
	})
}

func (e *Engine) run(key RegionKey, span uint64) *RegionResult {
	db := e.DB
	cf, err := db.CallForm(key.Path)
	res := &RegionResult{
		Key:   key,
		Decl:  cf,
		Exprs: make(map[ast.ExprID]*ExprInfo),
		Stmts: make(map[ast.StmtID]StmtInfo),
	}
	if cf == nil {
		res.Errors = append(res.Errors, derived(err, sourceSpanOf(db, key)))
		return res
	}
	if err != nil {
		// the signature is partial; the body is still checked
		res.Errors = append(res.Errors, diag.Derived(err))
	}
	s := newSession(e, res, span)
	s.run()
	return res
}
