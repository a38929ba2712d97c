package ast

// BinaryOp classifies a binary operator.
type BinaryOp int

const (
	Mul BinaryOp = iota
	Div
	Rem
	Add
	Sub
	Shl
	Shr
	LT
	GT
	LE
	GE
	EQ
	NE
	And
	Xor
	Or
	LAnd
	LOr
	Assign
	MulAssign
	DivAssign
	RemAssign
	AddAssign
	SubAssign
	ShlAssign
	ShrAssign
	AndAssign
	XorAssign
	OrAssign
	Comma
	PtrMemD // C++ .*
	PtrMemI // C++ ->*
)

var binaryOpSpellings = [...]string{
	Mul:       "*",
	Div:       "/",
	Rem:       "%",
	Add:       "+",
	Sub:       "-",
	Shl:       "<<",
	Shr:       ">>",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	EQ:        "==",
	NE:        "!=",
	And:       "&",
	Xor:       "^",
	Or:        "|",
	LAnd:      "&&",
	LOr:       "||",
	Assign:    "=",
	MulAssign: "*=",
	DivAssign: "/=",
	RemAssign: "%=",
	AddAssign: "+=",
	SubAssign: "-=",
	ShlAssign: "<<=",
	ShrAssign: ">>=",
	AndAssign: "&=",
	XorAssign: "^=",
	OrAssign:  "|=",
	Comma:     ",",
	PtrMemD:   ".*",
	PtrMemI:   "->*",
}

func (op BinaryOp) String() string {
	if op >= 0 && int(op) < len(binaryOpSpellings) {
		return binaryOpSpellings[op]
	}
	return "?"
}

// ParseBinaryOp resolves the C spelling of a binary operator.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for op, spelling := range binaryOpSpellings {
		if spelling == s {
			return BinaryOp(op), true
		}
	}
	return 0, false
}

// IsCompoundAssignment reports whether op is one of *=, +=, ...
func (op BinaryOp) IsCompoundAssignment() bool {
	return op >= MulAssign && op <= OrAssign
}

// CompoundBase maps a compound assignment to the operator it applies.
func (op BinaryOp) CompoundBase() (BinaryOp, bool) {
	switch op {
	case MulAssign:
		return Mul, true
	case DivAssign:
		return Div, true
	case RemAssign:
		return Rem, true
	case AddAssign:
		return Add, true
	case SubAssign:
		return Sub, true
	case ShlAssign:
		return Shl, true
	case ShrAssign:
		return Shr, true
	case AndAssign:
		return And, true
	case XorAssign:
		return Xor, true
	case OrAssign:
		return Or, true
	default:
		return op, false
	}
}

// UnaryOp classifies a unary operator.
type UnaryOp int

const (
	PostInc UnaryOp = iota
	PostDec
	PreInc
	PreDec
	AddrOf
	Deref
	Plus
	Minus
	Not  // ~
	LNot // !
	Real
	Imag
)

var unaryOpSpellings = [...]string{
	PostInc: "post++",
	PostDec: "post--",
	PreInc:  "++",
	PreDec:  "--",
	AddrOf:  "&",
	Deref:   "*",
	Plus:    "+",
	Minus:   "-",
	Not:     "~",
	LNot:    "!",
	Real:    "__real",
	Imag:    "__imag",
}

func (op UnaryOp) String() string {
	if op >= 0 && int(op) < len(unaryOpSpellings) {
		return unaryOpSpellings[op]
	}
	return "?"
}

// ParseUnaryOp resolves a dump spelling; postfix forms are "post++"/"post--".
func ParseUnaryOp(s string) (UnaryOp, bool) {
	for op, spelling := range unaryOpSpellings {
		if spelling == s {
			return UnaryOp(op), true
		}
	}
	return 0, false
}

// CastKind is the front end's classification of a conversion.
type CastKind int

const (
	LValueToRValue CastKind = iota
	NoOp
	FunctionToPointerDecay
	ArrayToPointerDecay
	IntegralCast
	IntegralToFloating
	FloatingToIntegral
	FloatingCast
	IntegralToBoolean
	FloatingToBoolean
	PointerToIntegral
	PointerToBoolean
	IntegralToPointer
	NullToPointer
	BitCast
	ToUnion
	ToVoid
)

var castKindNames = [...]string{
	LValueToRValue:         "LValueToRValue",
	NoOp:                   "NoOp",
	FunctionToPointerDecay: "FunctionToPointerDecay",
	ArrayToPointerDecay:    "ArrayToPointerDecay",
	IntegralCast:           "IntegralCast",
	IntegralToFloating:     "IntegralToFloating",
	FloatingToIntegral:     "FloatingToIntegral",
	FloatingCast:           "FloatingCast",
	IntegralToBoolean:      "IntegralToBoolean",
	FloatingToBoolean:      "FloatingToBoolean",
	PointerToIntegral:      "PointerToIntegral",
	PointerToBoolean:       "PointerToBoolean",
	IntegralToPointer:      "IntegralToPointer",
	NullToPointer:          "NullToPointer",
	BitCast:                "BitCast",
	ToUnion:                "ToUnion",
	ToVoid:                 "ToVoid",
}

func (k CastKind) String() string {
	if k >= 0 && int(k) < len(castKindNames) {
		return castKindNames[k]
	}
	return "?"
}

// ParseCastKind resolves a front-end cast kind name.
func ParseCastKind(s string) (CastKind, bool) {
	for k, name := range castKindNames {
		if name == s {
			return CastKind(k), true
		}
	}
	return 0, false
}

// Builtin identifies the variadic-list intrinsics recognised at call sites.
type Builtin int

const (
	NotBuiltin Builtin = iota
	VaStart
	VaCopy
	VaEnd
)

// ParseBuiltin resolves an intrinsic name, with or without the __builtin_ prefix.
func ParseBuiltin(s string) (Builtin, bool) {
	switch s {
	case "":
		return NotBuiltin, true
	case "va_start", "__builtin_va_start":
		return VaStart, true
	case "va_copy", "__builtin_va_copy":
		return VaCopy, true
	case "va_end", "__builtin_va_end":
		return VaEnd, true
	}
	return NotBuiltin, false
}

func (b Builtin) String() string {
	switch b {
	case VaStart:
		return "va_start"
	case VaCopy:
		return "va_copy"
	case VaEnd:
		return "va_end"
	default:
		return ""
	}
}
