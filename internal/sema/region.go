package sema

import (
	"fmt"

	"husk/internal/decl"
	"husk/internal/entity"
)

// RegionKind says which expression of a declaration a region types.
type RegionKind uint8

const (
	RegionBody         RegionKind = iota // fn, gn or memo body
	RegionKeyedDefault                   // default of keyed parameter Param
)

// RegionKey identifies one expression region.
type RegionKey struct {
	Path  entity.Path
	Kind  RegionKind
	Param int
}

func (k RegionKey) Display(reg *entity.Registry) string {
	if k.Kind == RegionKeyedDefault {
		return fmt.Sprintf("%s#default%d", reg.Display(k.Path), k.Param)
	}
	return reg.Display(k.Path)
}

// Regions enumerates the expression regions of the crate in a stable order:
// modules in file order, their items, then impl and trait members.
func Regions(db *decl.DB) []RegionKey {
	crate := db.Crate
	reg := db.Reg()
	var out []RegionKey
	add := func(p entity.Path) {
		cf, _ := db.CallForm(p)
		if cf == nil || cf.Static {
			return
		}
		if cf.Body.IsValid() {
			out = append(out, RegionKey{Path: p, Kind: RegionBody})
		}
		for i, k := range cf.Keyed {
			if k.Default.IsValid() {
				out = append(out, RegionKey{Path: p, Kind: RegionKeyedDefault, Param: i})
			}
		}
	}
	for _, m := range crate.Modules {
		for _, p := range m.Items {
			switch reg.Kind(p) {
			case entity.KindFugitive:
				add(p)
			case entity.KindTrait:
				for _, member := range crate.Members(p) {
					add(member)
				}
			}
		}
		for _, im := range m.Impls {
			for _, member := range crate.Members(im) {
				add(member)
			}
		}
	}
	return out
}
