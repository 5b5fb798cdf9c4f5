package decl

import (
	"husk/internal/entity"
	"husk/internal/term"
)

// IsCopyable reports whether values of ty may be duplicated implicitly:
// primitive roots, enums, function types, tuples and Option of copyable
// elements, and types with `impl Copy for T`. Vec and generic symbols never are.
func (db *DB) IsCopyable(ty term.Term) bool {
	if ty == term.NoTerm {
		return false
	}
	return db.copyable.Get(ty, func() bool { return db.isCopyable(ty) })
}

func (db *DB) isCopyable(ty term.Term) bool {
	tab := db.Terms
	switch tab.Kind(ty) {
	case term.KindCurry, term.KindRitchie:
		return true
	case term.KindSymbol, term.KindRune:
		return false
	}
	head, args, ok := tab.HeadPath(ty)
	if !ok || db.Reg().Kind(head) != entity.KindType {
		return false
	}
	prims := tab.Prims()
	switch head {
	case prims.Vec:
		return false
	case prims.Option:
		return len(args) == 1 && db.IsCopyable(args[0])
	case prims.Tuple:
		for _, a := range args {
			if !db.IsCopyable(a) {
				return false
			}
		}
		return true
	}
	if db.Crate.Builtin.IsCopyable(head) {
		return true
	}
	if td, err := db.TypeDeclOf(head); err == nil && td != nil && td.Kind == TypeEnum {
		return true
	}
	for _, impl := range db.Crate.TraitImplsOf(head) {
		if db.Reg().MustData(impl).Trait == prims.Copy {
			return true
		}
	}
	return false
}
