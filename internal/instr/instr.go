// Package instr turns lowered regions into a linear stack-machine listing.
//
// Values are pushed in evaluation order; every load states how it binds
// its value, derived from the node's contract or qualifier. Calls name
// their linkage: statically registered routines are Compiled, routines
// with a syntactic body are Interpreted.
package instr

import (
	"fmt"

	"husk/internal/entity"
	"husk/internal/source"
	"husk/internal/term"
)

type Op uint8

const (
	OpLiteral     Op = iota // push Text
	OpUnit                  // push ()
	OpEntity                // push the value of Path
	OpType                  // push the type Ty
	OpLoad                  // push local Ident
	OpField                 // pop owner, push field N
	OpMemo                  // pop owner, push memo Path
	OpIndex                 // pop owner and N indices, push element
	OpCompose               // pop element type, push list type
	OpBinary                // pop two, push Text applied
	OpPrefix                // pop one, push Text applied
	OpUnwrap                // pop option, push value or return early
	OpCall                  // pop N args, call Path
	OpCallMethod            // pop receiver and N args, call Path
	OpCallGn                // pop N args, call lazy routine Path
	OpCallValue             // pop callee and N args
	OpApply                 // pop function and N args, apply one by one
	OpConstruct             // pop N fields, build Path
	OpNewTuple              // pop N, push tuple
	OpNewList               // pop N, push list
	OpDefault               // push the default of keyed parameter Ident of Path
	OpBind                  // pop into new local Ident
	OpDeclare               // reserve local Ident without a value
	OpStore                 // pop value, store into local Ident
	OpStoreRef              // pop value and a mutable reference, store through it
	OpUpdate                // pop value and a mutable reference, apply Text in place; ++ and -- pop no value
	OpPop                   // drop the top value
	OpReturn                // pop and return
	OpJump                  // jump to N
	OpJumpIfFalse           // pop bool, jump to N when false
)

var opNames = [...]string{
	OpLiteral: "literal", OpUnit: "unit", OpEntity: "entity", OpType: "type", OpLoad: "load",
	OpField: "field", OpMemo: "memo", OpIndex: "index", OpCompose: "compose", OpBinary: "binary",
	OpPrefix: "prefix", OpUnwrap: "unwrap", OpCall: "call", OpCallMethod: "call-method",
	OpCallGn: "call-gn", OpCallValue: "call-value", OpApply: "apply", OpConstruct: "construct", OpNewTuple: "new-tuple",
	OpNewList: "new-list", OpDefault: "default", OpBind: "bind", OpDeclare: "declare",
	OpStore: "store", OpStoreRef: "store-ref", OpUpdate: "update",
	OpPop: "pop", OpReturn: "return", OpJump: "jump", OpJumpIfFalse: "jump-if-false",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "?"
}

// Mode is how an instruction binds the value it pushes.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeCopy
	ModeMove
	ModeRef
	ModeRefMut
)

func (m Mode) String() string {
	switch m {
	case ModeCopy:
		return "copy"
	case ModeMove:
		return "move"
	case ModeRef:
		return "ref"
	case ModeRefMut:
		return "ref-mut"
	}
	return ""
}

// Linkage says how a routine is reached.
type Linkage uint8

const (
	LinkageNone Linkage = iota
	Compiled
	Interpreted
)

func (l Linkage) String() string {
	switch l {
	case Compiled:
		return "compiled"
	case Interpreted:
		return "interpreted"
	}
	return ""
}

// Instr is one instruction. Which fields are meaningful depends on Op.
type Instr struct {
	Op      Op
	Mode    Mode
	Linkage Linkage
	Path    entity.Path
	Ident   string
	Text    string
	N       int
	Ty      term.Term
	Span    source.Span
}

// Sequence is the listing of one region.
type Sequence struct {
	Name   string
	Lazy   bool
	Instrs []Instr
}

func (i Instr) format(reg *entity.Registry, tab *term.Table) string {
	s := i.Op.String()
	switch i.Op {
	case OpLiteral, OpBinary, OpPrefix, OpUpdate:
		s += " " + i.Text
	case OpEntity, OpMemo, OpConstruct:
		s += " " + reg.Display(i.Path)
	case OpType:
		s += " " + tab.Display(i.Ty)
	case OpLoad, OpBind, OpDeclare, OpStore:
		s += " " + i.Ident
	case OpField:
		s += fmt.Sprintf(" %s #%d", i.Ident, i.N)
	case OpCall, OpCallMethod, OpCallGn:
		s += fmt.Sprintf(" %s/%d", reg.Display(i.Path), i.N)
	case OpDefault:
		s += fmt.Sprintf(" %s.%s", reg.Display(i.Path), i.Ident)
	case OpIndex, OpCallValue, OpApply, OpNewTuple, OpNewList, OpJump, OpJumpIfFalse:
		s += fmt.Sprintf(" %d", i.N)
	}
	if i.Linkage != LinkageNone {
		s += " [" + i.Linkage.String() + "]"
	}
	if i.Mode != ModeNone {
		s += " (" + i.Mode.String() + ")"
	}
	return s
}
