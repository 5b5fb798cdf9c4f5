package hir

import (
	"cmp"
	"slices"

	"husk/internal/entity"
	"husk/internal/sema"
)

// Module collects the lowered regions of one source module.
type Module struct {
	Name    string
	Path    entity.Path
	Regions []*Region
}

func NewModule(name string, path entity.Path) *Module {
	return &Module{Name: name, Path: path}
}

func (m *Module) Add(r *Region) { m.Regions = append(m.Regions, r) }

// Sort orders regions by key so output does not depend on lowering order.
func (m *Module) Sort() {
	slices.SortFunc(m.Regions, func(a, b *Region) int { return compareKeys(a.Key, b.Key) })
}

// Region finds the region lowered for key.
func (m *Module) Region(key sema.RegionKey) (*Region, bool) {
	for _, r := range m.Regions {
		if r.Key == key {
			return r, true
		}
	}
	return nil, false
}

func compareKeys(a, b sema.RegionKey) int {
	if c := cmp.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return cmp.Compare(a.Param, b.Param)
}
