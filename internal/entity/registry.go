package entity

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"fortio.org/safecast"

	"husk/internal/diag"
	"husk/internal/source"
)

type issueKey struct {
	Parent Path
	Kind   Kind
	Ident  source.StringID
}

// Registry interns paths. It is shared by every inference session and is
// safe for concurrent use; entries are never removed or changed.
type Registry struct {
	mu      sync.RWMutex
	strings *source.Interner
	data    []Data
	index   map[dataKey]Path
	issued  map[issueKey]uint8
}

func NewRegistry(strings *source.Interner) *Registry {
	return &Registry{
		strings: strings,
		data:    []Data{{}}, // 0 is NoPath
		index:   make(map[dataKey]Path, 128),
		issued:  make(map[issueKey]uint8),
	}
}

func (r *Registry) Strings() *source.Interner { return r.strings }

// InternRoute returns the path for d, creating it on first use.
func (r *Registry) InternRoute(d Data) Path {
	key := d.key()
	r.mu.RLock()
	p, ok := r.index[key]
	r.mu.RUnlock()
	if ok {
		return p
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.index[key]; ok {
		return p
	}
	return r.insertLocked(d, key)
}

// MustInsertUnique inserts d and panics if it already exists.
func (r *Registry) MustInsertUnique(d Data) Path {
	key := d.key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.index[key]; ok {
		panic(diag.Internalf("entity: duplicate insertion of %s (%d)", d.Kind, p))
	}
	return r.insertLocked(d, key)
}

func (r *Registry) insertLocked(d Data, key dataKey) Path {
	n, err := safecast.Conv[uint32](len(r.data))
	if err != nil {
		panic(fmt.Errorf("entity registry overflow: %w", err))
	}
	d.Args = slices.Clone(d.Args)
	r.data = append(r.data, d)
	p := Path(n)
	r.index[key] = p
	return p
}

// MakeSubroute composes a child path of parent.
func (r *Registry) MakeSubroute(parent Path, kind Kind, ident source.StringID, args []uint32) Path {
	return r.InternRoute(Data{Kind: kind, Parent: parent, Ident: ident, Args: args})
}

// Root interns a module root.
func (r *Registry) Root(name string) Path {
	return r.InternRoute(Data{Kind: KindModule, Ident: r.strings.Intern(name)})
}

// Issue hands out the disambiguator for one of group items sharing
// (parent, kind, ident). A lone item gets 0, colliding items get 1, 2, ...
func (r *Registry) Issue(parent Path, kind Kind, ident source.StringID, group int) uint8 {
	if group <= 1 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := issueKey{Parent: parent, Kind: kind, Ident: ident}
	next := r.issued[k] + 1
	if next == 0 {
		panic(diag.Internalf("entity: disambiguator overflow"))
	}
	r.issued[k] = next
	return next
}

// Data returns the structural description of p.
func (r *Registry) Data(p Path) (Data, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p == NoPath || int(p) >= len(r.data) {
		return Data{}, false
	}
	return r.data[p], true
}

// MustData panics on an invalid path.
func (r *Registry) MustData(p Path) Data {
	d, ok := r.Data(p)
	if !ok {
		panic(diag.Internalf("entity: invalid path %d", p))
	}
	return d
}

func (r *Registry) Kind(p Path) Kind {
	d, _ := r.Data(p)
	return d.Kind
}

func (r *Registry) Parent(p Path) Path {
	d, _ := r.Data(p)
	return d.Parent
}

// UnambiguousPath returns p unless its disambiguator is non-zero.
func (r *Registry) UnambiguousPath(p Path) (Path, bool) {
	d, ok := r.Data(p)
	if !ok || d.Disambiguator != 0 {
		return NoPath, false
	}
	return p, true
}

// Module returns the module that (transitively) contains p.
func (r *Registry) Module(p Path) Path {
	for p != NoPath {
		d, ok := r.Data(p)
		if !ok {
			return NoPath
		}
		if d.Kind == KindModule {
			return p
		}
		if d.Parent == NoPath && d.Kind == KindImplBlock {
			return r.Module(d.Target)
		}
		p = d.Parent
	}
	return NoPath
}

// Base strips generic arguments from p.
func (r *Registry) Base(p Path) Path {
	d, ok := r.Data(p)
	if !ok || len(d.Args) == 0 {
		return p
	}
	d.Args = nil
	return r.InternRoute(d)
}

func (r *Registry) Ident(p Path) string {
	d, ok := r.Data(p)
	if !ok {
		return ""
	}
	return r.strings.MustLookup(d.Ident)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data) - 1
}

// Display renders p like `m::S::get`; impl blocks print as `<m::S as m::Show>`.
func (r *Registry) Display(p Path) string {
	var sb strings.Builder
	r.display(&sb, p)
	return sb.String()
}

func (r *Registry) display(sb *strings.Builder, p Path) {
	d, ok := r.Data(p)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	if d.Kind == KindImplBlock {
		sb.WriteString("<")
		r.display(sb, d.Target)
		if d.Trait != NoPath {
			sb.WriteString(" as ")
			r.display(sb, d.Trait)
		}
		sb.WriteString(">")
	} else {
		if d.Parent != NoPath {
			r.display(sb, d.Parent)
			sb.WriteString("::")
		}
		sb.WriteString(r.strings.MustLookup(d.Ident))
	}
	if d.Disambiguator != 0 {
		fmt.Fprintf(sb, "#%d", d.Disambiguator)
	}
	if len(d.Args) > 0 {
		fmt.Fprintf(sb, "<%d args>", len(d.Args))
	}
}
