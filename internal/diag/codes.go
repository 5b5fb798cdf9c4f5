package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexBadSuffix          Code = 1004
	LexBadEscape          Code = 1005

	// Syntax
	SynUnexpectedToken    Code = 2001
	SynExpectIdentifier   Code = 2002
	SynExpectType         Code = 2003
	SynExpectExpression   Code = 2004
	SynExpectColon        Code = 2005
	SynExpectReturnType   Code = 2006
	SynUnexpectedTopLevel Code = 2007
	SynUnclosedDelimiter  Code = 2008
	SynExpectSemicolon    Code = 2009
	SynVariadicMustBeLast Code = 2010
	SynKeyedMustBeLast    Code = 2011

	// Path resolution
	PathUnresolvedRootIdent Code = 3001
	PathUnresolvedSubentity Code = 3002
	PathAmbiguous           Code = 3003
	PathDuplicateDefinition Code = 3004
	PathUnresolvedUse       Code = 3005
	PathNotAType            Code = 3006

	// Declarations
	DeclMissingBacking     Code = 4001
	DeclMalformedSignature Code = 4002
	DeclImplTargetInvalid  Code = 4003
	DeclUnknownTraitItem   Code = 4004
	DeclSelfOutsideImpl    Code = 4005
	DeclMemberNotFound     Code = 4006
	DeclDuplicateParameter Code = 4007
	DeclImplFailed         Code = 4008

	// Term conversion
	TermExpectedType                             Code = 5001
	TermExpectFinalDestinationEqsNonSortTypePath Code = 5002
	TermGenericArity                             Code = 5003
	TermSolidWhereEtherealExpected               Code = 5004

	// Expectations and expression typing
	InferTypeMismatch           Code = 6001
	InferExpectedFunction       Code = 6002
	InferArityMismatch          Code = 6003
	InferUnknownKeyedArgument   Code = 6004
	InferNoSuchField            Code = 6005
	InferNoSuchMethod           Code = 6006
	InferAmbiguateListExpr      Code = 6007
	InferCannotInfer            Code = 6008
	InferExpectedSort           Code = 6009
	InferNotIndexable           Code = 6010
	InferOperatorMismatch       Code = 6011
	InferConditionNotBool       Code = 6012
	InferUnwrapNonOption        Code = 6013
	InferNotAValue              Code = 6014
	InferDuplicateKeyedArgument Code = 6015
	InferMissingArgument        Code = 6016
	InferSelfOutsideMethod      Code = 6017
	InferAbandoned              Code = 6099

	// Contracts and qualifiers
	ContractMutateImmutable           Code = 7001
	ContractMutatePureParameter       Code = 7002
	ContractMoveFromPureParameter     Code = 7003
	ContractMoveOutOfElement          Code = 7004
	ContractMutateGlobalRef           Code = 7005
	ContractMoveLazyField             Code = 7006
	ContractMoveFromReference         Code = 7007
	ContractReturnBorrowOfLocal       Code = 7008
	ContractMutateThroughPureReceiver Code = 7009
	ContractAssignNotPlace            Code = 7010

	// Internal / IO
	InternalInvariant Code = 9001
	IOLoadFileError   Code = 9100
)

var codeNames = map[Code]string{
	UnknownCode: "UNKNOWN",

	LexUnknownChar:        "LexUnknownChar",
	LexUnterminatedString: "LexUnterminatedString",
	LexBadNumber:          "LexBadNumber",
	LexBadSuffix:          "LexBadSuffix",
	LexBadEscape:          "LexBadEscape",

	SynUnexpectedToken:    "SynUnexpectedToken",
	SynExpectIdentifier:   "SynExpectIdentifier",
	SynExpectType:         "SynExpectType",
	SynExpectExpression:   "SynExpectExpression",
	SynExpectColon:        "SynExpectColon",
	SynExpectReturnType:   "SynExpectReturnType",
	SynUnexpectedTopLevel: "SynUnexpectedTopLevel",
	SynUnclosedDelimiter:  "SynUnclosedDelimiter",
	SynExpectSemicolon:    "SynExpectSemicolon",
	SynVariadicMustBeLast: "SynVariadicMustBeLast",
	SynKeyedMustBeLast:    "SynKeyedMustBeLast",

	PathUnresolvedRootIdent: "UnresolvedRootIdent",
	PathUnresolvedSubentity: "UnresolvedSubentity",
	PathAmbiguous:           "AmbiguousPath",
	PathDuplicateDefinition: "DuplicateDefinition",
	PathUnresolvedUse:       "UnresolvedUse",
	PathNotAType:            "NotAType",

	DeclMissingBacking:     "DeclMissingBacking",
	DeclMalformedSignature: "DeclMalformedSignature",
	DeclImplTargetInvalid:  "DeclImplTargetInvalid",
	DeclUnknownTraitItem:   "DeclUnknownTraitItem",
	DeclSelfOutsideImpl:    "DeclSelfOutsideImpl",
	DeclMemberNotFound:     "DeclMemberNotFound",
	DeclDuplicateParameter: "DeclDuplicateParameter",
	DeclImplFailed:         "DeclImplFailed",

	TermExpectedType: "ExpectedType",
	TermExpectFinalDestinationEqsNonSortTypePath: "ExpectFinalDestinationEqsNonSortTypePath",
	TermGenericArity:               "GenericArity",
	TermSolidWhereEtherealExpected: "SolidWhereEtherealExpected",

	InferTypeMismatch:           "TypeMismatch",
	InferExpectedFunction:       "ExpectedFunction",
	InferArityMismatch:          "ArityMismatch",
	InferUnknownKeyedArgument:   "UnknownKeyedArgument",
	InferNoSuchField:            "NoSuchField",
	InferNoSuchMethod:           "NoSuchMethod",
	InferAmbiguateListExpr:      "AmbiguateListExpr",
	InferCannotInfer:            "CannotInfer",
	InferExpectedSort:           "ExpectedSort",
	InferNotIndexable:           "NotIndexable",
	InferOperatorMismatch:       "OperatorMismatch",
	InferConditionNotBool:       "ConditionNotBool",
	InferUnwrapNonOption:        "UnwrapNonOption",
	InferNotAValue:              "NotAValue",
	InferDuplicateKeyedArgument: "DuplicateKeyedArgument",
	InferMissingArgument:        "MissingArgument",
	InferSelfOutsideMethod:      "SelfOutsideMethod",
	InferAbandoned:              "Abandoned",

	ContractMutateImmutable:           "MutateImmutable",
	ContractMutatePureParameter:       "MutatePureParameter",
	ContractMoveFromPureParameter:     "MoveFromPureParameter",
	ContractMoveOutOfElement:          "MoveOutOfElement",
	ContractMutateGlobalRef:           "MutateGlobalRef",
	ContractMoveLazyField:             "MoveLazyField",
	ContractMoveFromReference:         "MoveFromReference",
	ContractReturnBorrowOfLocal:       "ReturnBorrowOfLocal",
	ContractMutateThroughPureReceiver: "MutateThroughPureReceiver",
	ContractAssignNotPlace:            "AssignNotPlace",

	InternalInvariant: "InternalInvariant",
	IOLoadFileError:   "IOLoadFileError",
}

// Phase groups codes by the pipeline stage that produces them.
type Phase uint8

const (
	PhaseUnknown Phase = iota
	PhaseLex
	PhaseSyntax
	PhasePath
	PhaseDecl
	PhaseTerm
	PhaseExpectation
	PhaseContract
	PhaseInternal
)

func (c Code) Phase() Phase {
	switch c / 1000 {
	case 1:
		return PhaseLex
	case 2:
		return PhaseSyntax
	case 3:
		return PhasePath
	case 4:
		return PhaseDecl
	case 5:
		return PhaseTerm
	case 6:
		return PhaseExpectation
	case 7:
		return PhaseContract
	case 9:
		return PhaseInternal
	}
	return PhaseUnknown
}

func (c Code) ID() string {
	prefix := "E"
	switch c.Phase() {
	case PhaseLex:
		prefix = "LEX"
	case PhaseSyntax:
		prefix = "SYN"
	case PhasePath:
		prefix = "PATH"
	case PhaseDecl:
		prefix = "DECL"
	case PhaseTerm:
		prefix = "TERM"
	case PhaseExpectation:
		prefix = "TY"
	case PhaseContract:
		prefix = "OWN"
	case PhaseInternal:
		prefix = "INT"
	}
	return fmt.Sprintf("%s%04d", prefix, uint16(c))
}

func (c Code) Title() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return codeNames[UnknownCode]
}

func (c Code) String() string {
	return c.ID()
}
