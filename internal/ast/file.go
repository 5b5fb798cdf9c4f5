package ast

import (
	"husk/internal/source"
)

// File is one source file; each file is one module named by Module.
type File struct {
	Span   source.Span
	Module source.StringID
	Items  []ItemID
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{
		Arena: NewArena[File](capHint),
	}
}

func (f *Files) New(sp source.Span, module source.StringID) FileID {
	return FileID(f.Arena.Allocate(File{
		Span:   sp,
		Module: module,
		Items:  make([]ItemID, 0),
	}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
