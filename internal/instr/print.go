package instr

import (
	"fmt"
	"io"

	"husk/internal/decl"
)

// Dump writes seqs one after another, each headed by its region name.
func Dump(w io.Writer, db *decl.DB, seqs []*Sequence) error {
	for i, seq := range seqs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := Print(w, db, seq); err != nil {
			return err
		}
	}
	return nil
}

// Print writes one listing with numbered instructions.
func Print(w io.Writer, db *decl.DB, seq *Sequence) error {
	kind := "eager"
	if seq.Lazy {
		kind = "lazy"
	}
	if _, err := fmt.Fprintf(w, "%s [%s]\n", seq.Name, kind); err != nil {
		return err
	}
	for i, in := range seq.Instrs {
		if _, err := fmt.Fprintf(w, "  %04d %s\n", i, in.format(db.Reg(), db.Terms)); err != nil {
			return err
		}
	}
	return nil
}

// Lines returns the formatted instructions of seq without numbering.
func Lines(db *decl.DB, seq *Sequence) []string {
	out := make([]string, len(seq.Instrs))
	for i, in := range seq.Instrs {
		out[i] = in.format(db.Reg(), db.Terms)
	}
	return out
}
