package pieces

// Op identifies the operation carried by an Operation piece.
type Op int

// Raw node kinds. These never survive analysis.
const (
	OpCall Op = iota
	OpLambda
	OpParameter
	OpQuote
	OpMemberAccess

	// OpAggregate is the call-shaped piece produced for Count, Sum, Min, Max
	// and Average. Operands: [Constant(name), Constant(nil), projection].
	OpAggregate

	// Binary operators.
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpAnd
	OpOr
	OpExclusiveOr
	OpLeftShift
	OpRightShift
	OpAndAlso
	OpOrElse
	OpEqual
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpCoalesce

	// Unary operators.
	OpNegate
	OpNot
	OpUnaryPlus

	opCount
)

type opInfo struct {
	name   string
	symbol string
	unary  bool
}

var opTable = [opCount]opInfo{
	OpCall:               {name: "Call"},
	OpLambda:             {name: "Lambda"},
	OpParameter:          {name: "Parameter"},
	OpQuote:              {name: "Quote"},
	OpMemberAccess:       {name: "MemberAccess"},
	OpAggregate:          {name: "Aggregate"},
	OpAdd:                {name: "Add", symbol: "+"},
	OpSubtract:           {name: "Subtract", symbol: "-"},
	OpMultiply:           {name: "Multiply", symbol: "*"},
	OpDivide:             {name: "Divide", symbol: "/"},
	OpModulo:             {name: "Modulo", symbol: "%"},
	OpPower:              {name: "Power", symbol: "^"},
	OpAnd:                {name: "And", symbol: "&"},
	OpOr:                 {name: "Or", symbol: "|"},
	OpExclusiveOr:        {name: "ExclusiveOr", symbol: "xor"},
	OpLeftShift:          {name: "LeftShift", symbol: "<<"},
	OpRightShift:         {name: "RightShift", symbol: ">>"},
	OpAndAlso:            {name: "AndAlso", symbol: "&&"},
	OpOrElse:             {name: "OrElse", symbol: "||"},
	OpEqual:              {name: "Equal", symbol: "=="},
	OpNotEqual:           {name: "NotEqual", symbol: "!="},
	OpLessThan:           {name: "LessThan", symbol: "<"},
	OpLessThanOrEqual:    {name: "LessThanOrEqual", symbol: "<="},
	OpGreaterThan:        {name: "GreaterThan", symbol: ">"},
	OpGreaterThanOrEqual: {name: "GreaterThanOrEqual", symbol: ">="},
	OpCoalesce:           {name: "Coalesce", symbol: "??"},
	OpNegate:             {name: "Negate", symbol: "-", unary: true},
	OpNot:                {name: "Not", symbol: "!", unary: true},
	OpUnaryPlus:          {name: "UnaryPlus", symbol: "+", unary: true},
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, opCount)
	for op := Op(0); op < opCount; op++ {
		m[opTable[op].name] = op
	}
	return m
}()

// String returns the operation name, e.g. "GreaterThan".
func (op Op) String() string {
	if op < 0 || op >= opCount {
		return "Unknown"
	}
	return opTable[op].name
}

// Symbol returns the infix or prefix symbol of an operator ("" for raw kinds).
func (op Op) Symbol() string {
	if op < 0 || op >= opCount {
		return ""
	}
	return opTable[op].symbol
}

// IsOperator reports whether op is a unary or binary operator.
func (op Op) IsOperator() bool {
	return op >= OpAdd && op < opCount
}

// IsUnary reports whether op is a unary operator.
func (op Op) IsUnary() bool {
	return op.IsOperator() && opTable[op].unary
}

// IsRaw reports whether op is a raw node kind that analysis must consume.
func (op Op) IsRaw() bool {
	return op >= OpCall && op <= OpMemberAccess
}

// ParseOp looks up an operation by name.
func ParseOp(name string) (Op, bool) {
	op, ok := opsByName[name]
	return op, ok
}
