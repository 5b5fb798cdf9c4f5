package hollow

import (
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/source"
	"husk/internal/term"
)

// Local is a term as seen by one session: an ethereal term, a hollow cell
// of the owning region, or the poisoned Err value.
type Local struct {
	kind     localKind
	ethereal term.Term
	cell     uint32
}

type localKind uint8

const (
	localNone localKind = iota
	localEthereal
	localHollow
	localErr
)

// Ethereal wraps an interned term.
func Ethereal(t term.Term) Local {
	if t == term.NoTerm {
		return Local{}
	}
	return Local{kind: localEthereal, ethereal: t}
}

// Err is the term of an expression whose type could not be computed.
var Err = Local{kind: localErr}

func (l Local) IsValid() bool    { return l.kind != localNone }
func (l Local) IsErr() bool      { return l.kind == localErr }
func (l Local) IsHollow() bool   { return l.kind == localHollow }
func (l Local) IsEthereal() bool { return l.kind == localEthereal }

// Term returns the ethereal term when l is ethereal.
func (l Local) Term() (term.Term, bool) {
	return l.ethereal, l.kind == localEthereal
}

// HoleKind says what may fill a hole.
type HoleKind uint8

const (
	HoleType     HoleKind = iota // any type
	HoleInt                      // integer type of an unsuffixed literal
	HoleFloat                    // float type of an unsuffixed literal
	HoleImplicit                 // implicit generic argument
)

func (k HoleKind) String() string {
	switch k {
	case HoleInt:
		return "{integer}"
	case HoleFloat:
		return "{float}"
	default:
		return "_"
	}
}

// DataKind is the variant of a hollow cell.
type DataKind uint8

const (
	DataHole DataKind = iota + 1
	DataTypeOntology
	DataCurry
	DataRitchie
)

// Param is a ritchie parameter whose type may be hollow.
type Param struct {
	Kind   term.ParamKind
	Liason term.Liason
	Ty     Local
	Ident  source.StringID
}

// Data is the content of one hollow cell.
type Data struct {
	Kind DataKind
	Span source.Span

	// DataHole
	Hole HoleKind

	// DataTypeOntology: Path applied to Args
	Path entity.Path
	Args []Local

	// DataCurry
	Param  Local
	Return Local // also DataRitchie

	// DataRitchie
	Ritchie term.RitchieKind
	Params  []Param
}

// ProgressKind is the resolution state of a cell.
type ProgressKind uint8

const (
	Unresolved ProgressKind = iota
	ResolvedEthereal
	ResolvedSolid
	ResolvedErr
)

func (k ProgressKind) String() string {
	switch k {
	case ResolvedEthereal:
		return "ethereal"
	case ResolvedSolid:
		return "solid"
	case ResolvedErr:
		return "err"
	default:
		return "unresolved"
	}
}

// Progress is what ResolveProgress reports.
type Progress struct {
	Kind     ProgressKind
	Ethereal term.Term
	Solid    term.Solid
	Err      *diag.Error // nil for poisoned cells
}

func (p Progress) Resolved() bool { return p.Kind != Unresolved }

// ConstraintKind is the direction of a coercion hint.
type ConstraintKind uint8

const (
	CoercibleFrom ConstraintKind = iota + 1
	CoercibleInto
)

// Constraint is a coercion hint on a hole. Hints guide diagnostics only.
type Constraint struct {
	Kind   ConstraintKind
	Target Local
}
