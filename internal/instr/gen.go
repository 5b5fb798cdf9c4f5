package instr

import (
	"errors"
	"fmt"
	"strings"

	"husk/internal/contract"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/hir"
	"husk/internal/sema"
)

// ErrEmptyRegion is returned for a region with neither body set.
var ErrEmptyRegion = errors.New("region has no body")

// Generate emits the listing of one lowered region.
func Generate(db *decl.DB, r *hir.Region) (*Sequence, error) {
	seq := &Sequence{Name: r.Key.Display(db.Reg()), Lazy: r.Lazy != nil}
	var err error
	switch {
	case r.Eager != nil:
		err = emitBody(db, seq, r.Eager, func(e *hir.Expr[contract.Contract]) Mode {
			return ContractMode(e.Binding, db.IsCopyable(e.Ty))
		})
	case r.Lazy != nil:
		err = emitBody(db, seq, r.Lazy, func(e *hir.Expr[contract.Qualifier]) Mode {
			return QualifierMode(e.Binding)
		})
	default:
		err = ErrEmptyRegion
	}
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", seq.Name, err)
	}
	return seq, nil
}

// GenerateModule emits every region of m in order. Regions that fail are
// skipped; their errors are joined.
func GenerateModule(db *decl.DB, m *hir.Module) ([]*Sequence, error) {
	out := make([]*Sequence, 0, len(m.Regions))
	var errs []error
	for _, r := range m.Regions {
		seq, err := Generate(db, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, seq)
	}
	return out, errors.Join(errs...)
}

func emitBody[B hir.Binding](db *decl.DB, seq *Sequence, body *hir.Body[B], mode func(*hir.Expr[B]) Mode) error {
	g := &gen[B]{db: db, seq: seq, arena: body.Arena, mode: mode}
	g.expr(body.Root)
	g.emit(Instr{Op: OpReturn})
	return g.err
}

type gen[B hir.Binding] struct {
	db    *decl.DB
	seq   *Sequence
	arena *hir.Arena[B]
	mode  func(*hir.Expr[B]) Mode
	err   error
}

func (g *gen[B]) emit(i Instr) int {
	g.seq.Instrs = append(g.seq.Instrs, i)
	return len(g.seq.Instrs) - 1
}

// emitJump emits a jump whose target is patched later.
func (g *gen[B]) emitJump(op Op) int {
	return g.emit(Instr{Op: op, N: -1})
}

func (g *gen[B]) patchJump(at int) {
	g.seq.Instrs[at].N = len(g.seq.Instrs)
}

// linkage is Compiled for registered routines and Interpreted for
// routines with a body. A partial declaration still has a linkage.
func (g *gen[B]) linkage(e *hir.Expr[B], path entity.Path) Linkage {
	cf, _ := g.db.CallForm(path)
	switch {
	case cf == nil:
		if g.err == nil {
			g.err = fmt.Errorf("call at %d..%d: no routine for %s", e.Span.Start, e.Span.End, g.db.Reg().Display(path))
		}
		return LinkageNone
	case cf.Static:
		return Compiled
	}
	return Interpreted
}

// expr emits id so that its value ends on the stack.
func (g *gen[B]) expr(id hir.ExprIdx) {
	e := g.arena.Expr(id)
	start := len(g.seq.Instrs)
	g.data(e)
	if _, block := e.Data.(*hir.Block); block || len(g.seq.Instrs) == start {
		return
	}
	last := &g.seq.Instrs[len(g.seq.Instrs)-1]
	last.Mode = g.mode(e)
	last.Span = e.Span
}

func (g *gen[B]) data(e *hir.Expr[B]) {
	switch d := e.Data.(type) {
	case *hir.Literal:
		g.emit(Instr{Op: OpLiteral, Text: d.Text, Ty: e.Ty})
	case *hir.PrincipalEntityPath:
		g.emit(Instr{Op: OpEntity, Path: d.Path, Ty: e.Ty})
	case *hir.TypeTerm:
		g.emit(Instr{Op: OpType, Ty: d.Ty})
	case *hir.Variable:
		g.emit(Instr{Op: OpLoad, Ident: d.Ident, Ty: e.Ty})
	case *hir.Binary:
		g.expr(d.Left)
		g.expr(d.Right)
		g.emit(Instr{Op: OpBinary, Text: d.Op.String(), Ty: e.Ty})
	case *hir.Prefix:
		g.expr(d.Operand)
		g.emit(Instr{Op: OpPrefix, Text: d.Op.String(), Ty: e.Ty})
	case *hir.Suffix:
		g.expr(d.Operand)
		g.emit(Instr{Op: OpUpdate, Text: d.Op.String()})
		g.emit(Instr{Op: OpUnit, Ty: e.Ty})
	case *hir.Unwrap:
		g.expr(d.Operand)
		g.emit(Instr{Op: OpUnwrap, Ty: e.Ty})
	case *hir.PropsStructField:
		g.expr(d.Owner)
		g.emit(Instr{Op: OpField, Ident: d.Ident, N: d.Index, Ty: e.Ty})
	case *hir.MemoizedField:
		g.expr(d.Owner)
		g.emit(Instr{Op: OpMemo, Path: d.Path, Ty: e.Ty})
	case *hir.Index:
		g.expr(d.Owner)
		for _, i := range d.Indices {
			g.expr(i)
		}
		g.emit(Instr{Op: OpIndex, N: len(d.Indices), Ty: e.Ty})
	case *hir.ComposeWithList:
		g.expr(d.Element)
		g.emit(Instr{Op: OpCompose, Ty: e.Ty})
	case *hir.NewTuple:
		g.items(d.Items)
		g.emit(Instr{Op: OpNewTuple, N: len(d.Items), Ty: e.Ty})
	case *hir.NewList:
		g.items(d.Items)
		g.emit(Instr{Op: OpNewList, N: len(d.Items), Ty: e.Ty})
	case *hir.MethodFnCall:
		g.expr(d.Self)
		g.groups(d.Path, d.Groups)
		g.emit(Instr{Op: OpCallMethod, Path: d.Path, N: len(d.Groups), Linkage: g.linkage(e, d.Path), Ty: e.Ty})
	case *hir.FnCall:
		g.groups(d.Path, d.Groups)
		g.emit(Instr{Op: OpCall, Path: d.Path, N: len(d.Groups), Linkage: g.linkage(e, d.Path), Ty: e.Ty})
	case *hir.GnCall:
		g.groups(d.Path, d.Groups)
		g.emit(Instr{Op: OpCallGn, Path: d.Path, N: len(d.Groups), Linkage: g.linkage(e, d.Path), Ty: e.Ty})
	case *hir.TypeConstructorCall:
		g.groups(d.Path, d.Groups)
		g.emit(Instr{Op: OpConstruct, Path: d.Path, N: len(d.Groups), Ty: e.Ty})
	case *hir.FnValueCall:
		g.expr(d.Callee)
		g.groups(entity.NoPath, d.Groups)
		g.emit(Instr{Op: OpCallValue, N: len(d.Groups), Ty: e.Ty})
	case *hir.Application:
		g.expr(d.Func)
		g.items(d.Args)
		g.emit(Instr{Op: OpApply, N: len(d.Args), Ty: e.Ty})
	case *hir.Block:
		for _, s := range d.Stmts {
			g.stmt(s)
		}
		switch {
		case d.Value.IsValid():
			g.expr(d.Value)
		case g.endsInValue(d):
			// the trailing if left the value on the stack
		default:
			g.emit(Instr{Op: OpUnit, Ty: e.Ty})
		}
	default:
		panic(diag.Internalf("instr: unexpected %T", d))
	}
}

func (g *gen[B]) items(ids []hir.ExprIdx) {
	for _, id := range ids {
		g.expr(id)
	}
}

// groups pushes one value per group: the variadic run is packed into a
// list, an omitted keyed argument is its default.
func (g *gen[B]) groups(callee entity.Path, groups []hir.ItemGroup) {
	for _, gr := range groups {
		switch {
		case gr.Kind == sema.GroupVariadic:
			g.items(gr.Args)
			g.emit(Instr{Op: OpNewList, N: len(gr.Args)})
		case gr.Default:
			g.emit(Instr{Op: OpDefault, Path: callee, Ident: gr.Ident})
		default:
			g.items(gr.Args)
		}
	}
}

func (g *gen[B]) stmt(id hir.StmtIdx) {
	s := g.arena.Stmt(id)
	switch d := s.Data.(type) {
	case *hir.Let:
		g.expr(d.Init)
		g.emit(Instr{Op: OpBind, Ident: d.Ident, Span: s.Span})
	case *hir.Var:
		if !d.Init.IsValid() {
			g.emit(Instr{Op: OpDeclare, Ident: d.Ident, Span: s.Span})
			return
		}
		g.expr(d.Init)
		g.emit(Instr{Op: OpBind, Ident: d.Ident, Span: s.Span})
	case *hir.Return:
		if d.Value.IsValid() {
			g.expr(d.Value)
		} else {
			g.emit(Instr{Op: OpUnit})
		}
		g.emit(Instr{Op: OpReturn, Span: s.Span})
	case *hir.Eval:
		g.expr(d.Value)
		g.emit(Instr{Op: OpPop})
	case *hir.If:
		g.expr(d.Cond)
		skip := g.emitJump(OpJumpIfFalse)
		g.expr(d.Then)
		if !d.Value {
			g.emit(Instr{Op: OpPop})
		}
		if !d.Else.IsValid() {
			g.patchJump(skip)
			return
		}
		end := g.emitJump(OpJump)
		g.patchJump(skip)
		g.expr(d.Else)
		if !d.Value {
			g.emit(Instr{Op: OpPop})
		}
		g.patchJump(end)
	case *hir.While:
		top := len(g.seq.Instrs)
		g.expr(d.Cond)
		exit := g.emitJump(OpJumpIfFalse)
		g.expr(d.Body)
		g.emit(Instr{Op: OpPop})
		g.emit(Instr{Op: OpJump, N: top})
		g.patchJump(exit)
	case *hir.Assign:
		g.assign(s, d)
	default:
		panic(diag.Internalf("instr: unexpected %T", d))
	}
}

// endsInValue reports a block whose trailing if left the value on the stack.
func (g *gen[B]) endsInValue(b *hir.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	is, ok := g.arena.Stmt(b.Stmts[len(b.Stmts)-1]).Data.(*hir.If)
	return ok && is.Value
}

// assign stores into a local by name and into any other place through a
// mutable reference to it.
func (g *gen[B]) assign(s *hir.Stmt, d *hir.Assign) {
	op := strings.TrimSuffix(d.Op.String(), "=")
	if v, ok := g.arena.Expr(d.Target).Data.(*hir.Variable); ok {
		if op != "" {
			g.emit(Instr{Op: OpLoad, Ident: v.Ident, Mode: ModeCopy})
		}
		g.expr(d.Value)
		if op != "" {
			g.emit(Instr{Op: OpBinary, Text: op})
		}
		g.emit(Instr{Op: OpStore, Ident: v.Ident, Span: s.Span})
		return
	}
	g.expr(d.Target)
	g.expr(d.Value)
	if op != "" {
		g.emit(Instr{Op: OpUpdate, Text: op, Span: s.Span})
		return
	}
	g.emit(Instr{Op: OpStoreRef, Span: s.Span})
}
