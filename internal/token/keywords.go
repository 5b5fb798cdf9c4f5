package token

var keywords = map[string]Kind{
	"use":    KwUse,
	"as":     KwAs,
	"struct": KwStruct,
	"enum":   KwEnum,
	"trait":  KwTrait,
	"impl":   KwImpl,
	"for":    KwFor,
	"fn":     KwFn,
	"gn":     KwGn,
	"memo":   KwMemo,
	"let":    KwLet,
	"var":    KwVar,
	"return": KwReturn,
	"if":     KwIf,
	"else":   KwElse,
	"while":  KwWhile,
	"self":   KwSelf,
	"mut":    KwMut,
	"own":    KwOwn,
	"ref":    KwRef,
	"lazy":   KwLazy,
	"key":    KwKey,
	"true":   KwTrue,
	"false":  KwFalse,
}

// LookupKeyword returns the kind of a keyword. Keywords are lowercase and
// case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
