package hir

import (
	"fmt"
	"io"
	"strings"

	"husk/internal/ast"
	"husk/internal/decl"
	"husk/internal/entity"
	"husk/internal/sema"
	"husk/internal/term"
)

// Printer writes lowered regions as text, one node per line.
type Printer struct {
	w   io.Writer
	reg *entity.Registry
	tab *term.Table
	err error
}

func NewPrinter(w io.Writer, db *decl.DB) *Printer {
	return &Printer{w: w, reg: db.Reg(), tab: db.Terms}
}

// Dump writes every region of m.
func Dump(w io.Writer, db *decl.DB, m *Module) error {
	p := NewPrinter(w, db)
	p.printf("module %s\n", m.Name)
	for _, r := range m.Regions {
		p.printf("\n")
		p.Region(r)
	}
	return p.err
}

// Region writes one region.
func (p *Printer) Region(r *Region) {
	kind := "eager"
	if r.Lazy != nil {
		kind = "lazy"
	}
	p.printf("region %s [%s] -> %s\n", r.Key.Display(p.reg), kind, p.tab.Display(r.Output))
	if r.Lazy != nil {
		printBody(p, r.Lazy)
	} else {
		printBody(p, r.Eager)
	}
}

func printBody[B Binding](p *Printer, b *Body[B]) {
	for i := range b.Arena.stmts {
		id := stmtAt(i)
		p.printf("  s%d = %s\n", id, p.stmt(b.Arena.Stmt(id).Data))
	}
	for i := range b.Arena.exprs {
		id := exprAt(i)
		e := b.Arena.Expr(id)
		p.printf("  %%%d = %s : %s [%s]\n", id, p.expr(e.Data), p.tab.Display(e.Ty), e.Binding)
	}
	p.printf("  root %%%d\n", b.Root)
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Kind names the variant of an expression or statement node.
func Kind(d any) string {
	name := fmt.Sprintf("%T", d)
	return name[strings.LastIndexByte(name, '.')+1:]
}

func (p *Printer) expr(d ExprData) string {
	var sb strings.Builder
	sb.WriteString(Kind(d))
	switch d := d.(type) {
	case *Literal:
		if d.Kind == ast.LitString {
			fmt.Fprintf(&sb, " %q", d.Text)
		} else {
			fmt.Fprintf(&sb, " %s", d.Text)
		}
	case *PrincipalEntityPath:
		fmt.Fprintf(&sb, " %s%s", p.reg.Display(d.Path), p.inst(d.Inst))
	case *TypeTerm:
		fmt.Fprintf(&sb, " %s", p.tab.Display(d.Ty))
	case *Variable:
		fmt.Fprintf(&sb, " %s", d.Ident)
		if d.Ref.Inherited {
			sb.WriteString(" (inherited)")
		}
	case *Binary:
		fmt.Fprintf(&sb, " %%%d %s %%%d", d.Left, d.Op, d.Right)
	case *Prefix:
		fmt.Fprintf(&sb, " %s%%%d", d.Op, d.Operand)
	case *Suffix:
		fmt.Fprintf(&sb, " %%%d%s", d.Operand, d.Op)
	case *Unwrap:
		fmt.Fprintf(&sb, " %%%d", d.Operand)
	case *PropsStructField:
		fmt.Fprintf(&sb, " %%%d.%s #%d", d.Owner, d.Ident, d.Index)
	case *MemoizedField:
		fmt.Fprintf(&sb, " %%%d %s%s", d.Owner, p.reg.Display(d.Path), p.inst(d.Inst))
	case *MethodFnCall:
		fmt.Fprintf(&sb, " %%%d %s%s %s", d.Self, p.reg.Display(d.Path), p.inst(d.Inst), groups(d.Groups))
	case *FnCall:
		fmt.Fprintf(&sb, " %s%s %s", p.reg.Display(d.Path), p.inst(d.Inst), groups(d.Groups))
	case *GnCall:
		fmt.Fprintf(&sb, " %s%s %s", p.reg.Display(d.Path), p.inst(d.Inst), groups(d.Groups))
	case *TypeConstructorCall:
		fmt.Fprintf(&sb, " %s%s %s", p.reg.Display(d.Path), p.inst(d.Inst), groups(d.Groups))
	case *FnValueCall:
		fmt.Fprintf(&sb, " %%%d %s", d.Callee, groups(d.Groups))
	case *Application:
		fmt.Fprintf(&sb, " %%%d %s", d.Func, refs(d.Args))
	case *Index:
		fmt.Fprintf(&sb, " %%%d%s", d.Owner, refs(d.Indices))
	case *ComposeWithList:
		fmt.Fprintf(&sb, " %%%d", d.Element)
	case *NewTuple:
		fmt.Fprintf(&sb, " %s", refs(d.Items))
	case *NewList:
		fmt.Fprintf(&sb, " %s", refs(d.Items))
	case *Block:
		sb.WriteString(" {")
		for i, s := range d.Stmts {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, " s%d", s)
		}
		if d.Value.IsValid() {
			fmt.Fprintf(&sb, " => %%%d", d.Value)
		}
		sb.WriteString(" }")
	}
	return sb.String()
}

func (p *Printer) stmt(d StmtData) string {
	switch d := d.(type) {
	case *Let:
		return fmt.Sprintf("Let %s = %%%d", d.Ident, d.Init)
	case *Var:
		if !d.Init.IsValid() {
			return "Var " + d.Ident
		}
		return fmt.Sprintf("Var %s = %%%d", d.Ident, d.Init)
	case *Return:
		if !d.Value.IsValid() {
			return "Return"
		}
		return fmt.Sprintf("Return %%%d", d.Value)
	case *Eval:
		return fmt.Sprintf("Eval %%%d", d.Value)
	case *If:
		if !d.Else.IsValid() {
			return fmt.Sprintf("If %%%d then %%%d", d.Cond, d.Then)
		}
		if d.Value {
			return fmt.Sprintf("IfValue %%%d then %%%d else %%%d", d.Cond, d.Then, d.Else)
		}
		return fmt.Sprintf("If %%%d then %%%d else %%%d", d.Cond, d.Then, d.Else)
	case *While:
		return fmt.Sprintf("While %%%d do %%%d", d.Cond, d.Body)
	case *Assign:
		return fmt.Sprintf("Assign %%%d %s %%%d", d.Target, d.Op, d.Value)
	}
	return fmt.Sprintf("%T", d)
}

func (p *Printer) inst(inst *term.Instantiation) string {
	if inst == nil || len(inst.Args) == 0 {
		return ""
	}
	args := make([]string, len(inst.Args))
	for i, a := range inst.Args {
		args[i] = p.tab.Display(a)
	}
	return "<" + strings.Join(args, ", ") + ">"
}

func refs(ids []ExprIdx) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%%%d", id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func groups(gs []ItemGroup) string {
	parts := make([]string, len(gs))
	for i, g := range gs {
		switch {
		case g.Default:
			parts[i] = g.Ident + " = default"
		case g.Kind == sema.GroupVariadic:
			parts[i] = "..." + g.Ident + ": " + refs(g.Args)
		case g.Kind == sema.GroupKeyed:
			parts[i] = g.Ident + " = " + refs(g.Args)
		default:
			parts[i] = g.Ident + ": " + refs(g.Args)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
