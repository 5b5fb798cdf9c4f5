package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	IntLit    // 3, 3i64
	FloatLit  // 2.5, 2.5f32
	StringLit // "s"

	KwUse    // use
	KwAs     // as
	KwStruct // struct
	KwEnum   // enum
	KwTrait  // trait
	KwImpl   // impl
	KwFor    // for
	KwFn     // fn
	KwGn     // gn
	KwMemo   // memo
	KwLet    // let
	KwVar    // var
	KwReturn // return
	KwIf     // if
	KwElse   // else
	KwWhile  // while
	KwSelf   // self
	KwMut    // mut
	KwOwn    // own
	KwRef    // ref
	KwLazy   // lazy
	KwKey    // key
	KwTrue   // true
	KwFalse  // false

	Plus        // +
	Minus       // -
	Star        // *
	Slash       // /
	Percent     // %
	Assign      // =
	PlusAssign  // +=
	MinusAssign // -=
	EqEq        // ==
	BangEq      // !=
	Lt          // <
	LtEq        // <=
	Gt          // >
	GtEq        // >=
	AndAnd      // &&
	OrOr        // ||
	Bang        // !
	PlusPlus    // ++
	MinusMinus  // --
	Question    // ?
	Colon       // :
	ColonColon  // ::
	Semicolon   // ;
	Comma       // ,
	Dot         // .
	DotDotDot   // ...
	Arrow       // ->
	Amp         // &
	LParen      // (
	RParen      // )
	LBrace      // {
	RBrace      // }
	LBracket    // [
	RBracket    // ]
)

var kindNames = [...]string{
	Invalid:     "Invalid",
	EOF:         "EOF",
	Ident:       "Ident",
	IntLit:      "IntLit",
	FloatLit:    "FloatLit",
	StringLit:   "StringLit",
	KwUse:       "use",
	KwAs:        "as",
	KwStruct:    "struct",
	KwEnum:      "enum",
	KwTrait:     "trait",
	KwImpl:      "impl",
	KwFor:       "for",
	KwFn:        "fn",
	KwGn:        "gn",
	KwMemo:      "memo",
	KwLet:       "let",
	KwVar:       "var",
	KwReturn:    "return",
	KwIf:        "if",
	KwElse:      "else",
	KwWhile:     "while",
	KwSelf:      "self",
	KwMut:       "mut",
	KwOwn:       "own",
	KwRef:       "ref",
	KwLazy:      "lazy",
	KwKey:       "key",
	KwTrue:      "true",
	KwFalse:     "false",
	Plus:        "+",
	Minus:       "-",
	Star:        "*",
	Slash:       "/",
	Percent:     "%",
	Assign:      "=",
	PlusAssign:  "+=",
	MinusAssign: "-=",
	EqEq:        "==",
	BangEq:      "!=",
	Lt:          "<",
	LtEq:        "<=",
	Gt:          ">",
	GtEq:        ">=",
	AndAnd:      "&&",
	OrOr:        "||",
	Bang:        "!",
	PlusPlus:    "++",
	MinusMinus:  "--",
	Question:    "?",
	Colon:       ":",
	ColonColon:  "::",
	Semicolon:   ";",
	Comma:       ",",
	Dot:         ".",
	DotDotDot:   "...",
	Arrow:       "->",
	Amp:         "&",
	LParen:      "(",
	RParen:      ")",
	LBrace:      "{",
	RBrace:      "}",
	LBracket:    "[",
	RBracket:    "]",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
