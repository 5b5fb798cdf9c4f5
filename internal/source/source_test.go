package source

import (
	"sync"
	"testing"
)

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.hk", []byte("ab\ncd\n\nx"))
	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
	}
	for _, c := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: c.off, End: c.off})
		if start != c.want {
			t.Fatalf("offset %d: got %+v, want %+v", c.off, start, c.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.hk", []byte("first\nsecond\nthird"))
	f := fs.Get(id)
	if got := f.GetLine(2); got != "second" {
		t.Fatalf("line 2: %q", got)
	}
	if got := f.GetLine(3); got != "third" {
		t.Fatalf("line 3: %q", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Fatalf("line 9 should be empty, got %q", got)
	}
}

func TestNormalizeCRLF(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed || string(out) != "a\nb\rc" {
		t.Fatalf("unexpected normalization: %q %v", out, changed)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 5}
	if got := a.Cover(b); got.Start != 2 || got.End != 8 {
		t.Fatalf("cover: %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 1}); got != a {
		t.Fatalf("cross-file cover must be a no-op, got %v", got)
	}
}

func TestInternerConcurrent(t *testing.T) {
	in := NewInterner()
	var wg sync.WaitGroup
	ids := make([]StringID, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = in.Intern("shared")
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("interner returned different ids for the same string")
		}
	}
	if in.MustLookup(ids[0]) != "shared" {
		t.Fatalf("lookup mismatch")
	}
	if in.Len() != 2 {
		t.Fatalf("expected 2 entries (sentinel + shared), got %d", in.Len())
	}
}
