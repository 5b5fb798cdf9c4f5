package contract

import (
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/term"
)

// Contract is what an eager context demands from an expression.
type Contract uint8

const (
	Pure Contract = iota
	Move
	RefMut
	MoveMut
	Exec
	LetInit
	VarInit
	Return
	UseMemberForLetInit
	UseMemberForVarInit
)

var contractNames = [...]string{
	Pure:                "pure",
	Move:                "move",
	RefMut:              "ref-mut",
	MoveMut:             "move-mut",
	Exec:                "exec",
	LetInit:             "let-init",
	VarInit:             "var-init",
	Return:              "return",
	UseMemberForLetInit: "use-member-for-let-init",
	UseMemberForVarInit: "use-member-for-var-init",
}

func (c Contract) String() string {
	if int(c) < len(contractNames) {
		return contractNames[c]
	}
	return "?"
}

// Takes reports contracts that consume the value unless its type is copyable.
func (c Contract) Takes() bool {
	switch c {
	case Move, MoveMut, LetInit, VarInit, UseMemberForLetInit, UseMemberForVarInit:
		return true
	}
	return false
}

// Mutates reports contracts that write through the expression in place.
func (c Contract) Mutates() bool { return c == RefMut }

// ParamContract is the contract an argument owes a parameter of liason l.
func ParamContract(l term.Liason) Contract {
	switch l {
	case term.LiasonMut:
		return RefMut
	case term.LiasonMove:
		return Move
	case term.LiasonMoveMut:
		return MoveMut
	case term.LiasonPure, term.LiasonEvalRef:
		return Pure
	}
	panic(diag.Internalf("contract: unknown liason %d", l))
}

// ReturnContract is the contract of a value handed back through out.
func ReturnContract(out decl.OutputLiason, copyable bool) Contract {
	switch {
	case out == decl.OutputMemberAccess:
		return Return
	case copyable:
		return Pure
	default:
		return Move
	}
}

// InitContract is the contract of a let or var initializer; member
// accesses commit to their declared field contract instead.
func InitContract(mutable, member bool) Contract {
	switch {
	case mutable && member:
		return UseMemberForVarInit
	case mutable:
		return VarInit
	case member:
		return UseMemberForLetInit
	default:
		return LetInit
	}
}

// join is the weakest contract satisfying both a and b.
func join(a, b Contract) Contract {
	switch {
	case a == b:
		return a
	case a == Pure:
		return b
	case b == Pure:
		return a
	case (a == Move && b == RefMut) || (a == RefMut && b == Move):
		return MoveMut
	case a == MoveMut || b == MoveMut:
		return MoveMut
	}
	panic(diag.Internalf("contract: cannot join %s and %s", a, b))
}

// ThisContract is the receiver liason of a method.
type ThisContract term.Liason

// Eager composes what the method needs from its receiver with what the
// caller needs from the call's result. A transferred result is a fresh
// value, so only the receiver liason matters; a member-access result is
// borrowed from the receiver, which then has to satisfy the caller too.
func (t ThisContract) Eager(incoming Contract, out decl.OutputLiason, copyable bool) Contract {
	own := ParamContract(term.Liason(t))
	if out == decl.OutputTransfer {
		return own
	}
	return join(own, memberNeed(incoming, copyable))
}

// memberNeed is what an owner has to give for a member read under incoming.
func memberNeed(incoming Contract, copyable bool) Contract {
	switch {
	case incoming == RefMut:
		return RefMut
	case incoming.Takes() && copyable:
		return Pure
	case incoming == MoveMut:
		return Move
	case incoming.Takes():
		return Move
	default:
		return Pure
	}
}

// FieldContract is the contract a field access passes to its owner.
// Violation is UnknownCode when the access is allowed.
func FieldContract(l decl.FieldLiason, incoming Contract, copyable bool) (owner Contract, violation diag.Code) {
	switch l {
	case decl.FieldOwn:
		return memberNeed(incoming, copyable), diag.UnknownCode
	case decl.FieldGlobalRef:
		// the field holds a shared reference; reading it copies the reference
		if incoming.Mutates() || incoming == MoveMut {
			return Pure, diag.ContractMutateGlobalRef
		}
		return Pure, diag.UnknownCode
	case decl.FieldLazyOwn:
		if incoming.Takes() && !copyable {
			return Pure, diag.ContractMoveLazyField
		}
		return memberNeed(incoming, copyable), diag.UnknownCode
	}
	panic(diag.Internalf("contract: unknown field liason %d", l))
}

// ElementContract is the contract an index access passes to its
// container. Copyable elements never need more than Pure except for
// in-place writes; non-copyable elements cannot be moved out.
func ElementContract(incoming Contract, copyable bool) (owner Contract, violation diag.Code) {
	switch {
	case incoming.Mutates():
		return RefMut, diag.UnknownCode
	case incoming.Takes() && !copyable:
		return Pure, diag.ContractMoveOutOfElement
	default:
		return Pure, diag.UnknownCode
	}
}

// Qualifier is how a lazy expression holds its value.
type Qualifier uint8

const (
	Copyable Qualifier = iota
	Transient
	PureRef
	GlobalRef
	TempRef
	TempRefMut
	EvalRef
)

var qualifierNames = [...]string{
	Copyable:   "copyable",
	Transient:  "transient",
	PureRef:    "pure-ref",
	GlobalRef:  "global-ref",
	TempRef:    "temp-ref",
	TempRefMut: "temp-ref-mut",
	EvalRef:    "eval-ref",
}

func (q Qualifier) String() string {
	if int(q) < len(qualifierNames) {
		return qualifierNames[q]
	}
	return "?"
}

// IsRef reports qualifiers that borrow a value owned elsewhere.
func (q Qualifier) IsRef() bool {
	switch q {
	case PureRef, GlobalRef, TempRef, TempRefMut, EvalRef:
		return true
	}
	return false
}

// ValueQualifier is the qualifier of a freshly produced value.
func ValueQualifier(copyable bool) Qualifier {
	if copyable {
		return Copyable
	}
	return Transient
}

// FieldQualifier is the qualifier of a field read from an owner qualified as owner.
func FieldQualifier(l decl.FieldLiason, owner Qualifier, copyable bool) Qualifier {
	switch {
	case copyable:
		return Copyable
	case l == decl.FieldGlobalRef:
		return GlobalRef
	}
	return memberQualifier(owner)
}

// ElementQualifier is the qualifier of an element read from a container.
func ElementQualifier(owner Qualifier, copyable bool) Qualifier {
	if copyable {
		return Copyable
	}
	return memberQualifier(owner)
}

// memberQualifier: a member of a borrowed value is borrowed the same way;
// a member of a temporary is moved out of it.
func memberQualifier(owner Qualifier) Qualifier {
	switch owner {
	case Copyable, Transient:
		return Transient
	case PureRef, GlobalRef, TempRef, TempRefMut, EvalRef:
		return owner
	}
	panic(diag.Internalf("contract: unknown qualifier %d", owner))
}

// branchQualifier is the qualifier of a value taken from one of two
// branches: shared when they agree, a temporary borrow when either borrows.
func branchQualifier(a, b Qualifier) Qualifier {
	switch {
	case a == b:
		return a
	case a.IsRef() || b.IsRef():
		return TempRef
	}
	return Transient
}

// borrowQualifier is the qualifier of a member-access result borrowed
// from a receiver qualified as owner.
func borrowQualifier(owner Qualifier, this term.Liason) Qualifier {
	switch owner {
	case Copyable, Transient:
		if this == term.LiasonMut || this == term.LiasonMoveMut {
			return TempRefMut
		}
		return TempRef
	}
	return owner
}
