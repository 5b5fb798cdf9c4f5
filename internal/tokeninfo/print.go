package tokeninfo

import (
	"fmt"
	"io"

	"husk/internal/decl"
	"husk/internal/source"
)

// Print writes one line per info: position, kind, name, target and type.
func Print(w io.Writer, fs *source.FileSet, db *decl.DB, t *Table) error {
	for _, in := range t.infos {
		start, _ := fs.Resolve(in.Span)
		line := fmt.Sprintf("%s:%d:%d %s %s", fs.Get(in.Span.File).Path, start.Line, start.Col, in.Kind, in.Ident)
		if in.Path.IsValid() {
			line += " -> " + db.Reg().Display(in.Path)
		}
		if in.Ty.IsValid() {
			line += " : " + db.Terms.Display(in.Ty)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
