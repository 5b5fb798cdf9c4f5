package decl

import (
	"sync"

	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/query"
	"husk/internal/symbols"
	"husk/internal/term"
)

type result struct {
	decl Decl
	err  *diag.Error
}

// DB is the declaration database of one compilation session.
type DB struct {
	Crate *symbols.Crate
	Terms *term.Table

	decls    *query.Memo[entity.Path, result]
	copyable *query.Memo[term.Term, bool]

	mu   sync.Mutex
	sink diag.Sink
}

func NewDB(crate *symbols.Crate, terms *term.Table) *DB {
	return &DB{
		Crate:    crate,
		Terms:    terms,
		decls:    query.NewMemo[entity.Path, result]("decl_of"),
		copyable: query.NewMemo[term.Term, bool]("is_copyable"),
	}
}

func (db *DB) Reg() *entity.Registry { return db.Crate.Reg }

// DeclOf returns the declaration of p. A non-nil error means the declaration
// is unusable by callers; the returned Decl may still be partial (e.g. a
// function whose parameter type failed) so that its body can be checked.
func (db *DB) DeclOf(p entity.Path) (Decl, *diag.Error) {
	r := db.decls.Get(p, func() result {
		b := &builder{db: db, path: p}
		d, err := b.build()
		db.mu.Lock()
		for _, e := range b.errs {
			db.sink.Push(e)
		}
		db.mu.Unlock()
		if err == nil && len(b.errs) > 0 {
			err = diag.Derived(b.errs[0])
		}
		return result{decl: d, err: err}
	})
	return r.decl, r.err
}

// CallForm returns the declaration of a callable entity.
func (db *DB) CallForm(p entity.Path) (*CallFormDecl, *diag.Error) {
	d, err := db.DeclOf(p)
	cf, ok := d.(*CallFormDecl)
	if !ok && err == nil {
		panic(diag.Internalf("decl: %s is not callable", db.Reg().Display(p)))
	}
	return cf, err
}

// TypeDeclOf returns the declaration of a type path.
func (db *DB) TypeDeclOf(p entity.Path) (*TypeDecl, *diag.Error) {
	d, err := db.DeclOf(db.Reg().Base(p))
	td, ok := d.(*TypeDecl)
	if !ok && err == nil {
		panic(diag.Internalf("decl: %s is not a type", db.Reg().Display(p)))
	}
	return td, err
}

// ImplOf returns the declaration of an impl block.
func (db *DB) ImplOf(p entity.Path) (*ImplBlockDecl, *diag.Error) {
	d, err := db.DeclOf(p)
	im, ok := d.(*ImplBlockDecl)
	if !ok && err == nil {
		panic(diag.Internalf("decl: %s is not an impl block", db.Reg().Display(p)))
	}
	return im, err
}

// Errors returns every error recorded while resolving declarations so far.
func (db *DB) Errors() []*diag.Error {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]*diag.Error, len(db.sink.All()))
	copy(out, db.sink.All())
	return out
}

// Computed reports how many declarations were actually built.
func (db *DB) Computed() uint64 { return db.decls.Computes() }
