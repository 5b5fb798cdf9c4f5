package term

import (
	"husk/internal/entity"
	"husk/internal/source"
)

// Term is an ethereal term handle. The zero value is no term.
type Term uint32

const NoTerm Term = 0

func (t Term) IsValid() bool { return t != NoTerm }

type Kind uint8

const (
	KindInvalid Kind = iota
	KindLiteral
	KindSymbol // generic parameter of an entity
	KindRune   // anonymous placeholder bound by a substitution
	KindEntityPath
	KindCategory
	KindUniverse
	KindCurry
	KindRitchie
	KindApplication
	KindTraitConstraint
	KindTypeAsTraitItem
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindSymbol:
		return "symbol"
	case KindRune:
		return "rune"
	case KindEntityPath:
		return "path"
	case KindCategory:
		return "category"
	case KindUniverse:
		return "universe"
	case KindCurry:
		return "curry"
	case KindRitchie:
		return "ritchie"
	case KindApplication:
		return "application"
	case KindTraitConstraint:
		return "trait-constraint"
	case KindTypeAsTraitItem:
		return "type-as-trait-item"
	default:
		return "invalid"
	}
}

type LitKind uint8

const (
	LitInt LitKind = iota + 1
	LitBool
	LitStr
)

// PathKind says in which role an entity path is used.
type PathKind uint8

const (
	PathTypeOntology PathKind = iota + 1 // the type itself, e.g. `Vec`
	PathTypeInstance                     // the constructor value of a type
	PathTrait
	PathFugitive
	PathTypeVariant
)

func (k PathKind) String() string {
	switch k {
	case PathTypeOntology:
		return "ontology"
	case PathTypeInstance:
		return "instance"
	case PathTrait:
		return "trait"
	case PathFugitive:
		return "fugitive"
	case PathTypeVariant:
		return "variant"
	default:
		return "invalid"
	}
}

type RitchieKind uint8

const (
	RitchieFn RitchieKind = iota + 1
	RitchieFnMut
	RitchieGn
)

func (k RitchieKind) String() string {
	switch k {
	case RitchieFn:
		return "fn"
	case RitchieFnMut:
		return "fn mut"
	case RitchieGn:
		return "gn"
	default:
		return "?"
	}
}

// Liason is how a parameter receives its argument.
type Liason uint8

const (
	LiasonPure Liason = iota
	LiasonMut
	LiasonMove
	LiasonMoveMut
	LiasonEvalRef
)

func (l Liason) String() string {
	switch l {
	case LiasonPure:
		return "pure"
	case LiasonMut:
		return "mut"
	case LiasonMove:
		return "own"
	case LiasonMoveMut:
		return "own mut"
	case LiasonEvalRef:
		return "ref"
	default:
		return "?"
	}
}

type ParamKind uint8

const (
	ParamRegular ParamKind = iota
	ParamVariadic
	ParamKeyed
)

// RitchieParam is one parameter slot of a ritchie type.
type RitchieParam struct {
	Kind   ParamKind
	Liason Liason
	Ty     Term
	Ident  source.StringID // keyed params only
}

// Data is the structural description a Term is interned from.
// Which fields are meaningful depends on Kind.
type Data struct {
	Kind Kind

	Lit LitKind
	Int int64
	Str string

	// symbol / rune
	Owner entity.Path
	Index uint32
	Ident source.StringID

	Path     entity.Path
	PathKind PathKind

	Universe uint8

	// curry: Param -> Return; ritchie: Params -> Return
	Param   Term
	Return  Term
	Ritchie RitchieKind
	Params  []RitchieParam

	// application
	Func Term
	Arg  Term

	// symbol type; trait constraint / type-as-trait-item subject
	Ty    Term
	Trait Term
}
