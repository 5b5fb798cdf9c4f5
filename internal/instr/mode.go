package instr

import "husk/internal/contract"

// ContractMode is the load mode of an eager value under c.
func ContractMode(c contract.Contract, copyable bool) Mode {
	switch c {
	case contract.Pure:
		if copyable {
			return ModeCopy
		}
		return ModeRef
	case contract.Move, contract.MoveMut, contract.LetInit, contract.VarInit:
		if copyable {
			return ModeCopy
		}
		return ModeMove
	case contract.RefMut:
		return ModeRefMut
	case contract.Return, contract.UseMemberForLetInit, contract.UseMemberForVarInit:
		return ModeRef
	}
	return ModeNone
}

// QualifierMode is the load mode of a lazy value qualified q.
func QualifierMode(q contract.Qualifier) Mode {
	switch q {
	case contract.Copyable:
		return ModeCopy
	case contract.Transient:
		return ModeMove
	case contract.PureRef, contract.GlobalRef, contract.TempRef, contract.EvalRef:
		return ModeRef
	case contract.TempRefMut:
		return ModeRefMut
	}
	return ModeNone
}
