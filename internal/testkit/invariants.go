package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"husk/internal/ast"
	"husk/internal/source"
)

// CheckSpanInvariants checks the span tree of a parsed module: the module
// lies inside its file, every item lies inside the module, impl and trait
// members lie inside their block and point back at it, and fn and memo
// bodies lie inside their item. A file without items, such as an empty or
// comment-only file, may have an empty module span.
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node %d not found", fileID)
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("content of %s: %w", sf.Path, err)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("module span names file %d, want %d", f.Span.File, sf.ID)
	}
	if f.Span.End > size || f.Span.Start > f.Span.End {
		return fmt.Errorf("module span %v outside content of %d bytes", f.Span, size)
	}
	if len(f.Items) == 0 {
		return nil
	}
	if f.Span.Empty() {
		return fmt.Errorf("module span is empty: %v", f.Span)
	}

	c := spanChecker{b: b, file: sf.ID}
	for _, it := range f.Items {
		if err := c.item(it, f.Span, ast.NoItemID); err != nil {
			return err
		}
	}
	return nil
}

type spanChecker struct {
	b    *ast.Builder
	file source.FileID
}

func (c spanChecker) within(what string, sp, outer source.Span) error {
	switch {
	case sp.Empty():
		return fmt.Errorf("%s span is empty: %v", what, sp)
	case sp.File != c.file:
		return fmt.Errorf("%s span names file %d, want %d", what, sp.File, c.file)
	case sp.Start < outer.Start || sp.End > outer.End:
		return fmt.Errorf("%s span %v escapes %v", what, sp, outer)
	}
	return nil
}

// item checks id against outer and, for members, that owner is recorded.
func (c spanChecker) item(id ast.ItemID, outer source.Span, owner ast.ItemID) error {
	items := c.b.Items
	it := items.Get(id)
	if it == nil {
		return fmt.Errorf("item %d not found", id)
	}
	what := fmt.Sprintf("%s item %d", it.Kind, id)
	if err := c.within(what, it.Span, outer); err != nil {
		return err
	}
	switch it.Kind {
	case ast.ItemImpl:
		im, _ := items.Impl(id)
		return c.members(im.Members, it.Span, id)
	case ast.ItemTrait:
		tr, _ := items.Trait(id)
		return c.members(tr.Members, it.Span, id)
	case ast.ItemFn:
		fn, _ := items.Fn(id)
		if fn.Owner != owner {
			return fmt.Errorf("%s has owner %d, want %d", what, fn.Owner, owner)
		}
		return c.body(what, fn.Body, it.Span)
	case ast.ItemMemo:
		m, _ := items.Memo(id)
		if m.Owner != owner {
			return fmt.Errorf("%s has owner %d, want %d", what, m.Owner, owner)
		}
		return c.body(what, m.Body, it.Span)
	}
	return nil
}

func (c spanChecker) members(members []ast.ItemID, outer source.Span, owner ast.ItemID) error {
	for _, m := range members {
		if err := c.item(m, outer, owner); err != nil {
			return err
		}
	}
	return nil
}

// body allows a missing body: trait members only declare a signature.
func (c spanChecker) body(what string, body ast.ExprID, outer source.Span) error {
	if !body.IsValid() {
		return nil
	}
	e := c.b.Exprs.Get(body)
	if e == nil {
		return fmt.Errorf("%s body %d not found", what, body)
	}
	return c.within(what+" body", e.Span, outer)
}
