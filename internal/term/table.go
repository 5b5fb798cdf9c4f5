package term

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"

	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/source"
)

// Prims names the builtin entities the table needs to know about.
type Prims struct {
	I32, I64, F32, F64, Bool, Str, Unit entity.Path
	Vec, Option, Tuple                  entity.Path
	Copy                                entity.Path
}

// Common caches frequently used terms.
type Common struct {
	Type                                Term // Sort 1
	I32, I64, F32, F64, Bool, Str, Unit Term
	Vec, Option, Tuple                  Term
	Copy                                Term
}

type key struct {
	Kind     Kind
	Lit      LitKind
	Int      int64
	Str      string
	Owner    entity.Path
	Index    uint32
	Ident    source.StringID
	Path     entity.Path
	PathKind PathKind
	Universe uint8
	Param    Term
	Return   Term
	Ritchie  RitchieKind
	Params   string
	Func     Term
	Arg      Term
	Ty       Term
	Trait    Term
}

func (d *Data) key() key {
	var params string
	if len(d.Params) > 0 {
		buf := make([]byte, 0, 10*len(d.Params))
		for _, p := range d.Params {
			buf = append(buf, byte(p.Kind), byte(p.Liason))
			buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Ty))
			buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Ident))
		}
		params = string(buf)
	}
	return key{
		Kind: d.Kind, Lit: d.Lit, Int: d.Int, Str: d.Str,
		Owner: d.Owner, Index: d.Index, Ident: d.Ident,
		Path: d.Path, PathKind: d.PathKind, Universe: d.Universe,
		Param: d.Param, Return: d.Return, Ritchie: d.Ritchie, Params: params,
		Func: d.Func, Arg: d.Arg, Ty: d.Ty, Trait: d.Trait,
	}
}

// Table interns ethereal terms. Safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	terms []Data
	index map[key]Term

	reg    *entity.Registry
	prims  Prims
	common Common
}

func NewTable(reg *entity.Registry, prims Prims) *Table {
	t := &Table{
		terms: []Data{{}},
		index: make(map[key]Term, 256),
		reg:   reg,
		prims: prims,
	}
	t.common = Common{
		Type:   t.Category(1),
		I32:    t.TypePath(prims.I32),
		I64:    t.TypePath(prims.I64),
		F32:    t.TypePath(prims.F32),
		F64:    t.TypePath(prims.F64),
		Bool:   t.TypePath(prims.Bool),
		Str:    t.TypePath(prims.Str),
		Unit:   t.TypePath(prims.Unit),
		Vec:    t.TypePath(prims.Vec),
		Option: t.TypePath(prims.Option),
		Tuple:  t.TypePath(prims.Tuple),
		Copy:   t.EntityPath(prims.Copy, PathTrait),
	}
	return t
}

func (t *Table) Registry() *entity.Registry { return t.reg }
func (t *Table) Prims() Prims               { return t.prims }
func (t *Table) Common() Common             { return t.common }

// Intern returns the handle for d.
func (t *Table) Intern(d Data) Term {
	if d.Kind == KindInvalid {
		return NoTerm
	}
	k := d.key()
	t.mu.RLock()
	id, ok := t.index[k]
	t.mu.RUnlock()
	if ok {
		return id
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.index[k]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(t.terms))
	if err != nil {
		panic(fmt.Errorf("term table overflow: %w", err))
	}
	d.Params = slices.Clone(d.Params)
	t.terms = append(t.terms, d)
	id = Term(n)
	t.index[k] = id
	return id
}

// Data returns the description of id. The Params slice must not be modified.
func (t *Table) Data(id Term) Data {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id == NoTerm || int(id) >= len(t.terms) {
		panic(diag.Internalf("term: invalid handle %d", id))
	}
	return t.terms[id]
}

func (t *Table) Kind(id Term) Kind {
	if id == NoTerm {
		return KindInvalid
	}
	return t.Data(id).Kind
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.terms) - 1
}

func (t *Table) IntLit(v int64) Term {
	return t.Intern(Data{Kind: KindLiteral, Lit: LitInt, Int: v})
}

func (t *Table) BoolLit(v bool) Term {
	var n int64
	if v {
		n = 1
	}
	return t.Intern(Data{Kind: KindLiteral, Lit: LitBool, Int: n})
}

func (t *Table) StrLit(s string) Term {
	return t.Intern(Data{Kind: KindLiteral, Lit: LitStr, Str: s})
}

// Symbol is the idx-th generic parameter of owner, typed ty.
func (t *Table) Symbol(owner entity.Path, idx uint32, ident source.StringID, ty Term) Term {
	return t.Intern(Data{Kind: KindSymbol, Owner: owner, Index: idx, Ident: ident, Ty: ty})
}

func (t *Table) Rune(idx uint32) Term {
	return t.Intern(Data{Kind: KindRune, Index: idx})
}

func (t *Table) EntityPath(p entity.Path, kind PathKind) Term {
	return t.Intern(Data{Kind: KindEntityPath, Path: p, PathKind: kind})
}

func (t *Table) TypePath(p entity.Path) Term { return t.EntityPath(p, PathTypeOntology) }

func (t *Table) Category(universe uint8) Term {
	return t.Intern(Data{Kind: KindCategory, Universe: universe})
}

func (t *Table) Universe(u uint8) Term {
	return t.Intern(Data{Kind: KindUniverse, Universe: u})
}

func (t *Table) Curry(param, ret Term) Term {
	return t.Intern(Data{Kind: KindCurry, Param: param, Return: ret})
}

func (t *Table) Ritchie(kind RitchieKind, params []RitchieParam, ret Term) Term {
	return t.Intern(Data{Kind: KindRitchie, Ritchie: kind, Params: params, Return: ret})
}

func (t *Table) App(fn, arg Term) Term {
	return t.Intern(Data{Kind: KindApplication, Func: fn, Arg: arg})
}

// Apply folds args onto fn left to right.
func (t *Table) Apply(fn Term, args ...Term) Term {
	for _, a := range args {
		fn = t.App(fn, a)
	}
	return fn
}

func (t *Table) TraitConstraint(ty, trait Term) Term {
	return t.Intern(Data{Kind: KindTraitConstraint, Ty: ty, Trait: trait})
}

func (t *Table) TypeAsTraitItem(ty, trait Term, ident source.StringID) Term {
	return t.Intern(Data{Kind: KindTypeAsTraitItem, Ty: ty, Trait: trait, Ident: ident})
}

// Tuple builds the tuple type of elems; the empty tuple is unit.
func (t *Table) Tuple(elems ...Term) Term {
	if len(elems) == 0 {
		return t.common.Unit
	}
	return t.Apply(t.common.Tuple, elems...)
}

func (t *Table) VecOf(elem Term) Term    { return t.App(t.common.Vec, elem) }
func (t *Table) OptionOf(elem Term) Term { return t.App(t.common.Option, elem) }
