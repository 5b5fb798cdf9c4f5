package entity

// Kind classifies what a path names.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindModule
	KindType
	KindTrait
	KindFugitive    // fn, gn or memo at module level
	KindTypeVariant // enum variant under its type
	KindImplBlock   // `impl T` or `impl Trait for T`
	KindAssocItem   // method or memo under an impl block or trait
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindType:
		return "type"
	case KindTrait:
		return "trait"
	case KindFugitive:
		return "fugitive"
	case KindTypeVariant:
		return "variant"
	case KindImplBlock:
		return "impl"
	case KindAssocItem:
		return "assoc"
	default:
		return "invalid"
	}
}

// IsItem reports kinds that appear as named module members.
func (k Kind) IsItem() bool {
	return k == KindType || k == KindTrait || k == KindFugitive
}
