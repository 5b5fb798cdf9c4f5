package ast

import (
	"husk/internal/source"
)

type ItemKind uint8

const (
	ItemUse ItemKind = iota
	ItemStruct
	ItemEnum
	ItemTrait
	ItemImpl
	ItemFn
	ItemMemo
)

func (k ItemKind) String() string {
	switch k {
	case ItemUse:
		return "use"
	case ItemStruct:
		return "struct"
	case ItemEnum:
		return "enum"
	case ItemTrait:
		return "trait"
	case ItemImpl:
		return "impl"
	case ItemFn:
		return "fn"
	case ItemMemo:
		return "memo"
	}
	return "item?"
}

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

type Items struct {
	Arena   *Arena[Item]
	Uses    *Arena[UseItem]
	Structs *Arena[StructItem]
	Enums   *Arena[EnumItem]
	Traits  *Arena[TraitItem]
	Impls   *Arena[ImplItem]
	Fns     *Arena[FnItem]
	Memos   *Arena[MemoItem]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Items{
		Arena:   NewArena[Item](capHint),
		Uses:    NewArena[UseItem](capHint),
		Structs: NewArena[StructItem](capHint),
		Enums:   NewArena[EnumItem](capHint),
		Traits:  NewArena[TraitItem](capHint),
		Impls:   NewArena[ImplItem](capHint),
		Fns:     NewArena[FnItem](capHint),
		Memos:   NewArena[MemoItem](capHint),
	}
}

func (i *Items) new(kind ItemKind, span source.Span, payload uint32) ItemID {
	return ItemID(i.Arena.Allocate(Item{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) payload(id ItemID, kind ItemKind) (uint32, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != kind {
		return 0, false
	}
	return uint32(item.Payload), true
}

// GenericParam is `T` or `const N: i32`.
type GenericParam struct {
	Name  source.StringID
	Span  source.Span
	Const bool
	Type  ExprID // only for const params
}

// UseItem is `use a::b::C;` or `use a::b::C as D;`.
type UseItem struct {
	Segments []source.StringID
	Spans    []source.Span
	Alias    source.StringID
}

// Imported returns the name the import binds in the module.
func (u *UseItem) Imported() (source.StringID, source.Span) {
	last := len(u.Segments) - 1
	if u.Alias != source.NoStringID {
		return u.Alias, u.Spans[last]
	}
	return u.Segments[last], u.Spans[last]
}

type FieldMode uint8

const (
	FieldOwn FieldMode = iota
	FieldRef
	FieldLazy
)

type FieldDecl struct {
	Name     source.StringID
	NameSpan source.Span
	Mode     FieldMode
	Type     ExprID
	Span     source.Span
}

type StructItem struct {
	Name     source.StringID
	NameSpan source.Span
	Generics []GenericParam
	Fields   []FieldDecl
}

type Variant struct {
	Name source.StringID
	Span source.Span
}

type EnumItem struct {
	Name     source.StringID
	NameSpan source.Span
	Generics []GenericParam
	Variants []Variant
}

type TraitItem struct {
	Name     source.StringID
	NameSpan source.Span
	Generics []GenericParam
	Members  []ItemID
}

// ImplItem is `impl T { ... }` or `impl Trait for T { ... }`; Trait is NoExprID for type impls.
type ImplItem struct {
	Generics []GenericParam
	Trait    ExprID
	Target   ExprID
	Members  []ItemID
}

type ParamMode uint8

const (
	ParamPure ParamMode = iota
	ParamMut
	ParamOwn
	ParamOwnMut
	ParamRef
)

func (m ParamMode) String() string {
	switch m {
	case ParamPure:
		return "pure"
	case ParamMut:
		return "mut"
	case ParamOwn:
		return "own"
	case ParamOwnMut:
		return "own mut"
	case ParamRef:
		return "ref"
	}
	return "?"
}

type Param struct {
	Name     source.StringID
	NameSpan source.Span
	Mode     ParamMode
	Type     ExprID
	Default  ExprID // keyed params only
	Span     source.Span
}

type Receiver struct {
	Mode ParamMode
	Span source.Span
}

// FnItem covers fn (eager) and gn (lazy) definitions, free or inside impl/trait blocks.
type FnItem struct {
	Name      source.StringID
	NameSpan  source.Span
	Lazy      bool
	Generics  []GenericParam
	Receiver  *Receiver
	Params    []Param
	Variadic  *Param
	Keyed     []Param
	Output    ExprID
	OutputRef bool
	Body      ExprID
	Owner     ItemID
	// SigErrors are malformed-signature problems the parser recovered from;
	// the declaration resolver reports them.
	SigErrors []SigError
}

// SigError records a recoverable defect in a signature, such as a missing colon.
type SigError struct {
	Span source.Span
	Msg  string
}

// MemoItem is `memo name: T = expr` inside an impl block.
type MemoItem struct {
	Name     source.StringID
	NameSpan source.Span
	Type     ExprID
	Body     ExprID
	Owner    ItemID
}

func (i *Items) NewUse(span source.Span, u UseItem) ItemID {
	return i.new(ItemUse, span, i.Uses.Allocate(u))
}

func (i *Items) Use(id ItemID) (*UseItem, bool) {
	p, ok := i.payload(id, ItemUse)
	if !ok {
		return nil, false
	}
	return i.Uses.Get(p), true
}

func (i *Items) NewStruct(span source.Span, s StructItem) ItemID {
	return i.new(ItemStruct, span, i.Structs.Allocate(s))
}

func (i *Items) Struct(id ItemID) (*StructItem, bool) {
	p, ok := i.payload(id, ItemStruct)
	if !ok {
		return nil, false
	}
	return i.Structs.Get(p), true
}

func (i *Items) NewEnum(span source.Span, e EnumItem) ItemID {
	return i.new(ItemEnum, span, i.Enums.Allocate(e))
}

func (i *Items) Enum(id ItemID) (*EnumItem, bool) {
	p, ok := i.payload(id, ItemEnum)
	if !ok {
		return nil, false
	}
	return i.Enums.Get(p), true
}

func (i *Items) NewTrait(span source.Span, t TraitItem) ItemID {
	return i.new(ItemTrait, span, i.Traits.Allocate(t))
}

func (i *Items) Trait(id ItemID) (*TraitItem, bool) {
	p, ok := i.payload(id, ItemTrait)
	if !ok {
		return nil, false
	}
	return i.Traits.Get(p), true
}

func (i *Items) NewImpl(span source.Span, im ImplItem) ItemID {
	return i.new(ItemImpl, span, i.Impls.Allocate(im))
}

func (i *Items) Impl(id ItemID) (*ImplItem, bool) {
	p, ok := i.payload(id, ItemImpl)
	if !ok {
		return nil, false
	}
	return i.Impls.Get(p), true
}

func (i *Items) NewFn(span source.Span, fn FnItem) ItemID {
	return i.new(ItemFn, span, i.Fns.Allocate(fn))
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	p, ok := i.payload(id, ItemFn)
	if !ok {
		return nil, false
	}
	return i.Fns.Get(p), true
}

func (i *Items) NewMemo(span source.Span, m MemoItem) ItemID {
	return i.new(ItemMemo, span, i.Memos.Allocate(m))
}

func (i *Items) Memo(id ItemID) (*MemoItem, bool) {
	p, ok := i.payload(id, ItemMemo)
	if !ok {
		return nil, false
	}
	return i.Memos.Get(p), true
}

// ItemName returns the declared name of a named item and false for use/impl items.
func (i *Items) ItemName(id ItemID) (source.StringID, source.Span, bool) {
	item := i.Get(id)
	if item == nil {
		return source.NoStringID, source.Span{}, false
	}
	switch item.Kind {
	case ItemStruct:
		s := i.Structs.Get(uint32(item.Payload))
		return s.Name, s.NameSpan, true
	case ItemEnum:
		e := i.Enums.Get(uint32(item.Payload))
		return e.Name, e.NameSpan, true
	case ItemTrait:
		t := i.Traits.Get(uint32(item.Payload))
		return t.Name, t.NameSpan, true
	case ItemFn:
		f := i.Fns.Get(uint32(item.Payload))
		return f.Name, f.NameSpan, true
	case ItemMemo:
		m := i.Memos.Get(uint32(item.Payload))
		return m.Name, m.NameSpan, true
	}
	return source.NoStringID, source.Span{}, false
}
