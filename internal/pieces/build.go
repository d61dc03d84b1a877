package pieces

// Constructors for raw expression trees. They produce exactly the operand
// layouts documented on Operation.

// Const wraps a literal or captured host value.
func Const(v any) *Constant {
	return &Constant{Value: v}
}

// Entities returns the constant standing for the queried source of entity.
func Entities(entity EntityType) *Constant {
	return &Constant{Value: EntitySet{Entity: entity}}
}

// Call builds a method call on source. The object operand is always nil:
// query methods are static extension methods.
func Call(method MethodName, source Piece, args ...Piece) *Operation {
	operands := make([]Piece, 0, 3+len(args))
	operands = append(operands, Const(Method{Name: method}), Const(nil), source)
	operands = append(operands, args...)
	return &Operation{Op: OpCall, Operands: operands}
}

// Lambda builds a lambda with the given body and formal parameter names.
func Lambda(body Piece, params ...string) *Operation {
	operands := make([]Piece, 0, 1+len(params))
	operands = append(operands, body)
	for _, name := range params {
		operands = append(operands, Param(name))
	}
	return &Operation{Op: OpLambda, Operands: operands}
}

// Param builds a reference to (or declaration of) a formal parameter.
func Param(name string) *Operation {
	return &Operation{Op: OpParameter, Operands: []Piece{Const(ParameterName(name))}}
}

// Quote wraps inner in a deferred scope.
func Quote(inner Piece) *Operation {
	return &Operation{Op: OpQuote, Operands: []Piece{inner}}
}

// MemberOf builds target.name.
func MemberOf(target Piece, name MemberID) *Operation {
	return &Operation{Op: OpMemberAccess, Operands: []Piece{target, Const(Member{Name: name})}}
}

// Binary builds left op right.
func Binary(op Op, left, right Piece) *Operation {
	return &Operation{Op: op, Operands: []Piece{left, right}}
}

// Unary builds op operand.
func Unary(op Op, operand Piece) *Operation {
	return &Operation{Op: op, Operands: []Piece{operand}}
}
