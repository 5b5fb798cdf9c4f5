package contract

import (
	"testing"

	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/term"
)

var allContracts = []Contract{Pure, Move, RefMut, MoveMut, Exec, LetInit, VarInit, Return, UseMemberForLetInit, UseMemberForVarInit}

func TestFieldContractClosure(t *testing.T) {
	for _, l := range []decl.FieldLiason{decl.FieldOwn, decl.FieldGlobalRef, decl.FieldLazyOwn} {
		for _, c := range allContracts {
			for _, copyable := range []bool{false, true} {
				owner, _ := FieldContract(l, c, copyable)
				if owner.String() == "?" {
					t.Fatalf("FieldContract(%s, %s, %t) = %d, not a contract", l, c, copyable, owner)
				}
				owner, _ = ElementContract(c, copyable)
				if owner.String() == "?" {
					t.Fatalf("ElementContract(%s, %t) = %d, not a contract", c, copyable, owner)
				}
			}
		}
	}
}

func TestFieldContract(t *testing.T) {
	cases := []struct {
		l         decl.FieldLiason
		in        Contract
		copyable  bool
		owner     Contract
		violation diag.Code
	}{
		{decl.FieldOwn, Pure, false, Pure, diag.UnknownCode},
		{decl.FieldOwn, Move, true, Pure, diag.UnknownCode},
		{decl.FieldOwn, Move, false, Move, diag.UnknownCode},
		{decl.FieldOwn, MoveMut, false, Move, diag.UnknownCode},
		{decl.FieldOwn, LetInit, false, Move, diag.UnknownCode},
		{decl.FieldOwn, UseMemberForVarInit, true, Pure, diag.UnknownCode},
		{decl.FieldOwn, RefMut, true, RefMut, diag.UnknownCode},
		{decl.FieldOwn, Return, false, Pure, diag.UnknownCode},
		{decl.FieldOwn, Exec, false, Pure, diag.UnknownCode},
		{decl.FieldGlobalRef, Move, false, Pure, diag.UnknownCode},
		{decl.FieldGlobalRef, RefMut, false, Pure, diag.ContractMutateGlobalRef},
		{decl.FieldGlobalRef, MoveMut, true, Pure, diag.ContractMutateGlobalRef},
		{decl.FieldLazyOwn, Move, false, Pure, diag.ContractMoveLazyField},
		{decl.FieldLazyOwn, Move, true, Pure, diag.UnknownCode},
		{decl.FieldLazyOwn, RefMut, false, RefMut, diag.UnknownCode},
	}
	for _, tc := range cases {
		owner, violation := FieldContract(tc.l, tc.in, tc.copyable)
		if owner != tc.owner || violation != tc.violation {
			t.Errorf("FieldContract(%s, %s, %t) = %s, %d; want %s, %d", tc.l, tc.in, tc.copyable, owner, violation, tc.owner, tc.violation)
		}
	}
}

func TestElementContract(t *testing.T) {
	if owner, v := ElementContract(Move, true); owner != Pure || v != diag.UnknownCode {
		t.Fatalf("copyable element move = %s, %d", owner, v)
	}
	if owner, v := ElementContract(LetInit, false); owner != Pure || v != diag.ContractMoveOutOfElement {
		t.Fatalf("non-copyable element move = %s, %d", owner, v)
	}
	if owner, _ := ElementContract(RefMut, false); owner != RefMut {
		t.Fatalf("element write = %s", owner)
	}
}

func TestThisContract(t *testing.T) {
	cases := []struct {
		this     term.Liason
		in       Contract
		out      decl.OutputLiason
		copyable bool
		want     Contract
	}{
		{term.LiasonPure, Move, decl.OutputTransfer, false, Pure},
		{term.LiasonMut, Pure, decl.OutputTransfer, false, RefMut},
		{term.LiasonMove, Exec, decl.OutputTransfer, false, Move},
		{term.LiasonPure, RefMut, decl.OutputMemberAccess, false, RefMut},
		{term.LiasonPure, Move, decl.OutputMemberAccess, false, Move},
		{term.LiasonPure, Move, decl.OutputMemberAccess, true, Pure},
		{term.LiasonMut, Move, decl.OutputMemberAccess, false, MoveMut},
		{term.LiasonMove, RefMut, decl.OutputMemberAccess, false, MoveMut},
	}
	for _, tc := range cases {
		if got := ThisContract(tc.this).Eager(tc.in, tc.out, tc.copyable); got != tc.want {
			t.Errorf("ThisContract(%s).Eager(%s, %s, %t) = %s, want %s", tc.this, tc.in, tc.out, tc.copyable, got, tc.want)
		}
	}
}

func TestReturnAndInitContracts(t *testing.T) {
	if ReturnContract(decl.OutputTransfer, true) != Pure || ReturnContract(decl.OutputTransfer, false) != Move {
		t.Fatalf("transfer return contracts")
	}
	if ReturnContract(decl.OutputMemberAccess, false) != Return {
		t.Fatalf("member-access return contract")
	}
	if InitContract(false, true) != UseMemberForLetInit || InitContract(true, false) != VarInit {
		t.Fatalf("init contracts")
	}
}

func TestQualifierComposition(t *testing.T) {
	if q := FieldQualifier(decl.FieldOwn, PureRef, true); q != Copyable {
		t.Fatalf("copyable field = %s", q)
	}
	if q := FieldQualifier(decl.FieldGlobalRef, Transient, false); q != GlobalRef {
		t.Fatalf("ref field = %s", q)
	}
	if q := FieldQualifier(decl.FieldOwn, Transient, false); q != Transient {
		t.Fatalf("field of temporary = %s", q)
	}
	if q := ElementQualifier(EvalRef, false); q != EvalRef {
		t.Fatalf("element of eval-ref = %s", q)
	}
	if q := borrowQualifier(Transient, term.LiasonMut); q != TempRefMut {
		t.Fatalf("borrow of temporary = %s", q)
	}
	if q := borrowQualifier(PureRef, term.LiasonPure); q != PureRef {
		t.Fatalf("borrow of pure ref = %s", q)
	}
}
