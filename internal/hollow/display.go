package hollow

import (
	"strings"
)

// Display renders l with unresolved holes shown as `_`, `{integer}` or `{float}`.
func (r *Region) Display(l Local) string {
	var sb strings.Builder
	r.display(&sb, l)
	return sb.String()
}

func (r *Region) display(sb *strings.Builder, l Local) {
	l = r.shallow(l)
	switch l.kind {
	case localNone:
		sb.WriteString("<none>")
		return
	case localErr:
		sb.WriteString("<error>")
		return
	case localEthereal:
		sb.WriteString(r.terms.Display(l.ethereal))
		return
	}
	c := r.cell(l)
	if c.progress.Kind == ResolvedSolid {
		sb.WriteString(c.progress.Solid.String())
		return
	}
	d := c.data
	switch d.Kind {
	case DataHole:
		sb.WriteString(d.Hole.String())
	case DataTypeOntology:
		sb.WriteString(r.terms.Display(r.terms.TypePath(d.Path)))
		if len(d.Args) > 0 {
			sb.WriteString("<")
			for i, a := range d.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				r.display(sb, a)
			}
			sb.WriteString(">")
		}
	case DataCurry:
		r.display(sb, d.Param)
		sb.WriteString(" -> ")
		r.display(sb, d.Return)
	case DataRitchie:
		sb.WriteString(d.Ritchie.String())
		sb.WriteString("(")
		for i, p := range d.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			r.display(sb, p.Ty)
		}
		sb.WriteString(") -> ")
		r.display(sb, d.Return)
	}
}
