package diag

import (
	"errors"
	"testing"

	"husk/internal/source"
)

func TestDerivedKeepsRoot(t *testing.T) {
	sp := source.Span{File: 1, Start: 4, End: 7}
	orig := Original(PathUnresolvedRootIdent, sp, "unresolved identifier %q", "foo")
	d1 := Derived(orig)
	d2 := Derived(d1)

	if !IsOriginal(orig) || IsDerived(orig) {
		t.Fatalf("origin of original error is wrong")
	}
	if !IsDerived(d2) {
		t.Fatalf("expected derived")
	}
	if d2.Root() != orig {
		t.Fatalf("root mismatch: %v", d2.Root())
	}
	if !errors.Is(d2, orig) {
		t.Fatalf("errors.Is should reach the original")
	}
	if d2.Message == orig.Message {
		t.Fatalf("derived error must not repeat the cause")
	}
}

func TestSinkFlushOnlyOriginals(t *testing.T) {
	var s Sink
	orig := Original(InferTypeMismatch, source.Span{File: 1, Start: 0, End: 1}, "mismatch")
	s.Push(orig)
	s.Push(Derived(orig))
	s.Push(DerivedAt(InferAmbiguateListExpr, source.Span{File: 1, Start: 2, End: 4}, "ambiguous list"))
	s.Push(nil)

	bag := NewBag(10)
	s.Flush(&BagReporter{Bag: bag}, false)
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	if bag.Items()[0].Code != InferTypeMismatch {
		t.Fatalf("unexpected code %v", bag.Items()[0].Code)
	}

	bag = NewBag(10)
	s.Flush(&BagReporter{Bag: bag}, true)
	if bag.Len() != 3 {
		t.Fatalf("expected 3 diagnostics with derived, got %d", bag.Len())
	}
	if bag.HasErrors() != true {
		t.Fatalf("expected errors")
	}
}

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(NewError(LexBadNumber, source.Span{File: 2, Start: 1, End: 2}, "b")) {
		t.Fatalf("first add failed")
	}
	bag.Add(NewError(LexBadNumber, source.Span{File: 1, Start: 5, End: 6}, "a"))
	if bag.Add(NewError(LexBadNumber, source.Span{File: 1, Start: 0, End: 1}, "c")) {
		t.Fatalf("limit not enforced")
	}
	bag.Sort()
	if bag.Items()[0].Primary.File != 1 {
		t.Fatalf("sort by file failed")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(&BagReporter{Bag: bag})
	sp := source.Span{File: 1, Start: 1, End: 3}
	r.Report(ContractMutateImmutable, SevError, sp, "x", nil)
	r.Report(ContractMutateImmutable, SevError, sp, "x", nil)
	if bag.Len() != 1 {
		t.Fatalf("dedup failed: %d", bag.Len())
	}
}

func TestCodeID(t *testing.T) {
	if got := PathUnresolvedRootIdent.ID(); got != "PATH3001" {
		t.Fatalf("got %s", got)
	}
	if got := InferAmbiguateListExpr.Title(); got != "AmbiguateListExpr" {
		t.Fatalf("got %s", got)
	}
	if ContractMoveOutOfElement.Phase() != PhaseContract {
		t.Fatalf("phase wrong")
	}
}
