package term

import (
	"fmt"
	"strconv"
	"strings"
)

// Display renders id in source-like syntax.
func (t *Table) Display(id Term) string {
	var sb strings.Builder
	t.display(&sb, id)
	return sb.String()
}

func (t *Table) display(sb *strings.Builder, id Term) {
	if id == NoTerm {
		sb.WriteString("<none>")
		return
	}
	d := t.Data(id)
	switch d.Kind {
	case KindLiteral:
		switch d.Lit {
		case LitInt:
			sb.WriteString(strconv.FormatInt(d.Int, 10))
		case LitBool:
			sb.WriteString(strconv.FormatBool(d.Int != 0))
		case LitStr:
			sb.WriteString(strconv.Quote(d.Str))
		}
	case KindSymbol:
		if s, ok := t.reg.Strings().Lookup(d.Ident); ok && s != "" {
			sb.WriteString(s)
		} else {
			fmt.Fprintf(sb, "sym%d", d.Index)
		}
	case KindRune:
		fmt.Fprintf(sb, "?%d", d.Index)
	case KindEntityPath:
		if d.Path == t.prims.Unit {
			sb.WriteString("()")
			return
		}
		sb.WriteString(t.reg.Ident(d.Path))
	case KindCategory:
		if d.Universe == 1 {
			sb.WriteString("Type")
		} else {
			fmt.Fprintf(sb, "Sort %d", d.Universe)
		}
	case KindUniverse:
		fmt.Fprintf(sb, "Universe %d", d.Universe)
	case KindCurry:
		if t.Kind(d.Param) == KindCurry {
			sb.WriteString("(")
			t.display(sb, d.Param)
			sb.WriteString(")")
		} else {
			t.display(sb, d.Param)
		}
		sb.WriteString(" -> ")
		t.display(sb, d.Return)
	case KindRitchie:
		sb.WriteString(d.Ritchie.String())
		sb.WriteString("(")
		for i, p := range d.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			switch p.Kind {
			case ParamVariadic:
				sb.WriteString("...")
			case ParamKeyed:
				sb.WriteString(t.reg.Strings().MustLookup(p.Ident))
				sb.WriteString(": ")
			}
			if p.Liason != LiasonPure {
				sb.WriteString(p.Liason.String())
				sb.WriteString(" ")
			}
			t.display(sb, p.Ty)
		}
		sb.WriteString(") -> ")
		t.display(sb, d.Return)
	case KindApplication:
		head, args := t.Head(id)
		if head == t.common.Tuple {
			sb.WriteString("(")
			for i, a := range args {
				if i > 0 {
					sb.WriteString(", ")
				}
				t.display(sb, a)
			}
			if len(args) == 1 {
				sb.WriteString(",")
			}
			sb.WriteString(")")
			return
		}
		t.display(sb, head)
		sb.WriteString("<")
		for i, a := range args {
			if i > 0 {
				sb.WriteString(", ")
			}
			t.display(sb, a)
		}
		sb.WriteString(">")
	case KindTraitConstraint:
		t.display(sb, d.Ty)
		sb.WriteString(": ")
		t.display(sb, d.Trait)
	case KindTypeAsTraitItem:
		sb.WriteString("<")
		t.display(sb, d.Ty)
		sb.WriteString(" as ")
		t.display(sb, d.Trait)
		sb.WriteString(">::")
		sb.WriteString(t.reg.Strings().MustLookup(d.Ident))
	}
}
