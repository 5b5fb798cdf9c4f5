package term

import "strconv"

type SolidKind uint8

const (
	SolidInt SolidKind = iota + 1
	SolidBool
)

// Solid is a concrete value used where a constant generic argument is expected.
type Solid struct {
	Kind SolidKind
	Int  int64
}

func (s Solid) String() string {
	if s.Kind == SolidBool {
		return strconv.FormatBool(s.Int != 0)
	}
	return strconv.FormatInt(s.Int, 10)
}

// Ethereal lifts a solid value into a literal term.
func (t *Table) Ethereal(s Solid) Term {
	if s.Kind == SolidBool {
		return t.BoolLit(s.Int != 0)
	}
	return t.IntLit(s.Int)
}
