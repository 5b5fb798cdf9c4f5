package ast

// Children appends the direct sub-expressions of id in source order.
// Statements inside blocks are not expressions and are skipped; use BlockExprs for those.
func (e *Exprs) Children(id ExprID, out []ExprID) []ExprID {
	expr := e.Get(id)
	if expr == nil {
		return out
	}
	p := uint32(expr.Payload)
	switch expr.Kind {
	case ExprPath:
		d := e.Paths.Get(p)
		out = append(out, d.Base)
	case ExprBinary:
		d := e.Binaries.Get(p)
		out = append(out, d.Left, d.Right)
	case ExprPrefix:
		out = append(out, e.Prefixes.Get(p).Operand)
	case ExprSuffix:
		out = append(out, e.Suffixes.Get(p).Operand)
	case ExprCall:
		d := e.Calls.Get(p)
		out = append(out, d.Callee)
		for _, a := range d.Args {
			out = append(out, a.Value)
		}
	case ExprMethodCall:
		d := e.MethodCalls.Get(p)
		out = append(out, d.Receiver)
		out = append(out, d.Generics...)
		for _, a := range d.Args {
			out = append(out, a.Value)
		}
	case ExprField:
		out = append(out, e.Fields.Get(p).Owner)
	case ExprIndex:
		d := e.Indices.Get(p)
		out = append(out, d.Owner)
		out = append(out, d.Indices...)
	case ExprList:
		out = append(out, e.Lists.Get(p).Items...)
	case ExprTuple:
		out = append(out, e.Tuples.Get(p).Items...)
	case ExprGenericApp:
		d := e.GenericApps.Get(p)
		out = append(out, d.Base)
		out = append(out, d.Args...)
	case ExprApply:
		d := e.Applies.Get(p)
		out = append(out, d.Func, d.Arg)
	case ExprRitchieType:
		d := e.RitchieTypes.Get(p)
		out = append(out, d.Params...)
		if d.Return.IsValid() {
			out = append(out, d.Return)
		}
	case ExprCurryType:
		d := e.CurryTypes.Get(p)
		out = append(out, d.Param, d.Return)
	}
	return out
}
