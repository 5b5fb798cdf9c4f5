package builtin

// RootIdent is the stable enumeration of identifiers every module sees.
type RootIdent uint8

const (
	RootI32 RootIdent = iota
	RootI64
	RootF32
	RootF64
	RootBool
	RootStr
	RootUnit
	RootVec
	RootOption
	RootCopy
	RootFn
	RootFnMut
	RootFnOnce
	RootFp
	RootType
	RootTuple
	numRoots
)

type rootInfo struct {
	name     string
	trait    bool
	generics []string
	copyable bool
	hidden   bool // not visible by name from user code
}

var roots = [numRoots]rootInfo{
	RootI32:    {name: "i32", copyable: true},
	RootI64:    {name: "i64", copyable: true},
	RootF32:    {name: "f32", copyable: true},
	RootF64:    {name: "f64", copyable: true},
	RootBool:   {name: "bool", copyable: true},
	RootStr:    {name: "str", copyable: true},
	RootUnit:   {name: "unit", copyable: true, hidden: true},
	RootVec:    {name: "Vec", generics: []string{"T"}},
	RootOption: {name: "Option", generics: []string{"T"}},
	RootCopy:   {name: "Copy", trait: true},
	RootFn:     {name: "Fn", trait: true},
	RootFnMut:  {name: "FnMut", trait: true},
	RootFnOnce: {name: "FnOnce", trait: true},
	RootFp:     {name: "Fp", copyable: true},
	RootType:   {name: "Type"},
	RootTuple:  {name: "Tuple", hidden: true},
}

func (r RootIdent) String() string {
	if r >= numRoots {
		return "?"
	}
	return roots[r].name
}

// IsTrait reports roots registered as traits.
func (r RootIdent) IsTrait() bool { return r < numRoots && roots[r].trait }

// Generics lists the generic parameter names of a root type.
func (r RootIdent) Generics() []string {
	if r >= numRoots {
		return nil
	}
	return roots[r].generics
}
