package entity

import (
	"sync"
	"testing"

	"husk/internal/diag"
	"husk/internal/source"
)

func newRegistry() *Registry {
	return NewRegistry(source.NewInterner())
}

func TestInternRouteIdentity(t *testing.T) {
	r := newRegistry()
	m := r.Root("main")
	s := r.Strings().Intern("S")
	a := r.MakeSubroute(m, KindType, s, nil)
	b := r.InternRoute(Data{Kind: KindType, Parent: m, Ident: s})
	if a != b {
		t.Fatalf("structurally equal routes must share a handle")
	}
	if c := r.MakeSubroute(m, KindTrait, s, nil); c == a {
		t.Fatalf("kind must participate in identity")
	}
	if d := r.MakeSubroute(m, KindType, s, []uint32{3}); d == a || r.Base(d) != a {
		t.Fatalf("generic args must participate in identity and Base must strip them")
	}
	if r.Display(a) != "main::S" {
		t.Fatalf("display = %q", r.Display(a))
	}
}

func TestIssueDisambiguators(t *testing.T) {
	r := newRegistry()
	m := r.Root("main")
	f := r.Strings().Intern("f")
	if r.Issue(m, KindFugitive, f, 1) != 0 {
		t.Fatalf("lone item must get 0")
	}
	first := r.Issue(m, KindFugitive, f, 2)
	second := r.Issue(m, KindFugitive, f, 2)
	if first != 1 || second != 2 {
		t.Fatalf("got %d %d", first, second)
	}
	p := r.InternRoute(Data{Kind: KindFugitive, Parent: m, Ident: f, Disambiguator: first})
	if _, ok := r.UnambiguousPath(p); ok {
		t.Fatalf("disambiguated path must not be unambiguous")
	}
	if r.Display(p) != "main::f#1" {
		t.Fatalf("display = %q", r.Display(p))
	}
}

func TestMustInsertUniquePanics(t *testing.T) {
	r := newRegistry()
	d := Data{Kind: KindModule, Ident: r.Strings().Intern("m")}
	r.MustInsertUnique(d)
	defer func() {
		if _, ok := recover().(*diag.InternalError); !ok {
			t.Fatalf("expected internal error panic")
		}
	}()
	r.MustInsertUnique(d)
}

func TestImplDisplayAndModule(t *testing.T) {
	r := newRegistry()
	m := r.Root("main")
	s := r.MakeSubroute(m, KindType, r.Strings().Intern("S"), nil)
	show := r.MakeSubroute(m, KindTrait, r.Strings().Intern("Show"), nil)
	impl := r.InternRoute(Data{Kind: KindImplBlock, Parent: m, Target: s, Trait: show})
	item := r.MakeSubroute(impl, KindAssocItem, r.Strings().Intern("show"), nil)
	if got := r.Display(item); got != "<main::S as main::Show>::show" {
		t.Fatalf("display = %q", got)
	}
	if r.Module(item) != m {
		t.Fatalf("module of assoc item must be main")
	}
}

func TestConcurrentIntern(t *testing.T) {
	r := newRegistry()
	m := r.Root("main")
	id := r.Strings().Intern("x")
	var wg sync.WaitGroup
	out := make([]Path, 16)
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = r.MakeSubroute(m, KindFugitive, id, nil)
		}(i)
	}
	wg.Wait()
	for _, p := range out {
		if p != out[0] {
			t.Fatalf("concurrent interning produced distinct handles")
		}
	}
}
