package decl

import (
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/symbols"
)

// CheckTraitImpl compares the members of `impl Trait for T` with the trait:
// every member must exist in the trait with the same call type once Self is T,
// and every trait member must be implemented.
func (db *DB) CheckTraitImpl(implPath entity.Path) []*diag.Error {
	reg := db.Reg()
	data := reg.MustData(implPath)
	if !data.Trait.IsValid() {
		return nil
	}
	traitNode, ok := db.Crate.Node(data.Trait)
	if !ok {
		return nil // builtin marker traits have no members
	}
	im, err := db.ImplOf(implPath)
	if err != nil {
		return nil
	}
	td, err := db.DeclOf(data.Trait)
	if err != nil {
		return nil
	}
	trait := td.(*TraitDecl)
	strs := reg.Strings()

	var errs []*diag.Error
	implemented := make(map[string]bool)
	items := db.Crate.Builder.Items
	implItem, _ := items.Impl(db.mustNode(implPath).Item)
	for _, mid := range implItem.Members {
		name, span, ok := items.ItemName(mid)
		if !ok {
			continue
		}
		implemented[strs.MustLookup(name)] = true
		cands := db.Crate.Children(data.Trait, name)
		if len(cands) == 0 {
			errs = append(errs, diag.Original(diag.DeclUnknownTraitItem, span,
				"`%s` is not a member of trait `%s`", strs.MustLookup(name), reg.Display(data.Trait)))
			continue
		}
		mine := db.Crate.Children(implPath, name)
		if len(mine) != 1 {
			continue
		}
		got, err1 := db.CallForm(mine[0])
		want, err2 := db.CallForm(cands[0])
		if err1 != nil || err2 != nil {
			continue
		}
		want = want.Implement(db.Terms, trait.Self, im.Target)
		if got.RitchieType(db.Terms) != want.RitchieType(db.Terms) || (got.This == nil) != (want.This == nil) {
			errs = append(errs, diag.Original(diag.DeclImplFailed, span,
				"`%s` has type `%s`, trait requires `%s`", strs.MustLookup(name),
				db.Terms.Display(got.RitchieType(db.Terms)), db.Terms.Display(want.RitchieType(db.Terms))))
		}
	}
	traitItem, _ := items.Trait(traitNode.Item)
	for _, mid := range traitItem.Members {
		name, _, ok := items.ItemName(mid)
		if ok && !implemented[strs.MustLookup(name)] {
			errs = append(errs, diag.Original(diag.DeclImplFailed, db.mustNode(implPath).Span,
				"missing `%s` required by trait `%s`", strs.MustLookup(name), reg.Display(data.Trait)))
		}
	}
	return errs
}

func (db *DB) mustNode(p entity.Path) symbols.Node {
	n, ok := db.Crate.Node(p)
	if !ok {
		panic(diag.Internalf("decl: no node for %s", db.Reg().Display(p)))
	}
	return n
}
