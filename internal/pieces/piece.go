package pieces

import (
	"fmt"
	"reflect"
	"strings"
)

// Piece is a node of the intermediate representation.
//
// This is a sealed interface - only types in this package implement it.
type Piece interface {
	piece()
	fmt.Stringer
}

// EntityType names a mapped entity (e.g. "Person").
type EntityType string

// MethodName is the identity of a called query method (e.g. "Where").
type MethodName string

// MemberID is the identity of an accessed member (e.g. "Age").
type MemberID string

// ParameterName is the value of the constant naming a formal parameter.
type ParameterName string

// EntitySet is the value of the constant at the root of a call chain: the
// queried source itself.
type EntitySet struct {
	Entity EntityType
}

// Method is the value of the constant in operand 0 of a call.
type Method struct {
	Name MethodName
}

// Member is the value of the constant in operand 1 of a member access.
type Member struct {
	Name MemberID
}

// Constant is an immutable literal. It is a leaf and is never rewritten.
//
// Value holds a Go literal, one of the marker types above, or a captured
// host value (map or struct) whose members become external parameters.
type Constant struct {
	Value any
}

func (*Constant) piece() {}

// Operation is an operator, a raw node, or an aggregate, together with its
// ordered operands.
//
// Operand layouts of raw nodes:
//
//	OpCall:         [Constant(Method), Constant(nil), source, args...]
//	OpLambda:       [body, OpParameter declaration...]
//	OpParameter:    [Constant(ParameterName)]
//	OpQuote:        [inner]
//	OpMemberAccess: [target, Constant(Member)]
type Operation struct {
	Op       Op
	Operands []Piece
}

func (*Operation) piece() {}

// Table is a resolved reference to a mapped entity's table.
type Table struct {
	Entity EntityType
	Name   string // table name in the store
	Alias  string // unique within one query (t0, t1, ...)
}

func (*Table) piece() {}

// Column is a resolved column of a registered table.
type Column struct {
	Table  *Table
	Member MemberID
	Name   string
}

func (*Column) piece() {}

// Association is a resolved join from Table to Joined through Member.
//
// ThisKey names the column on Table, OtherKey the column on Joined.
type Association struct {
	Table    *Table
	Member   MemberID
	Joined   *Table
	ThisKey  string
	OtherKey string
}

func (*Association) piece() {}

// Parameter is an external, host-supplied value referenced by the query.
type Parameter struct {
	Name  string
	Value any
}

func (*Parameter) piece() {}

func (c *Constant) String() string {
	switch v := c.Value.(type) {
	case nil:
		return "null"
	case EntitySet:
		return fmt.Sprintf("Entities<%s>", v.Entity)
	case Method:
		return string(v.Name)
	case Member:
		return string(v.Name)
	case ParameterName:
		return string(v)
	case string:
		return fmt.Sprintf("%q", v)
	case fmt.Stringer:
		return v.String()
	}
	switch reflect.ValueOf(c.Value).Kind() {
	case reflect.Map, reflect.Struct, reflect.Pointer, reflect.Slice, reflect.Array:
		return fmt.Sprintf("captured<%T>", c.Value)
	}
	return fmt.Sprintf("%v", c.Value)
}

func (o *Operation) String() string {
	switch {
	case o.Op.IsUnary() && len(o.Operands) == 1:
		return o.Op.Symbol() + pieceString(o.Operands[0])
	case o.Op.IsOperator() && len(o.Operands) == 2:
		return fmt.Sprintf("(%s %s %s)", pieceString(o.Operands[0]), o.Op.Symbol(), pieceString(o.Operands[1]))
	}

	switch o.Op {
	case OpCall:
		if len(o.Operands) >= 3 {
			args := make([]string, 0, len(o.Operands)-3)
			for _, arg := range o.Operands[3:] {
				args = append(args, pieceString(arg))
			}
			return fmt.Sprintf("%s.%s(%s)", pieceString(o.Operands[2]), pieceString(o.Operands[0]), strings.Join(args, ", "))
		}
	case OpLambda:
		if len(o.Operands) >= 1 {
			params := make([]string, 0, len(o.Operands)-1)
			for _, p := range o.Operands[1:] {
				params = append(params, pieceString(p))
			}
			head := strings.Join(params, ", ")
			if len(params) != 1 {
				head = "(" + head + ")"
			}
			return head + " => " + pieceString(o.Operands[0])
		}
	case OpParameter, OpQuote:
		if len(o.Operands) == 1 {
			return pieceString(o.Operands[0])
		}
	case OpMemberAccess:
		if len(o.Operands) == 2 {
			return pieceString(o.Operands[0]) + "." + pieceString(o.Operands[1])
		}
	case OpAggregate:
		if len(o.Operands) == 3 {
			return fmt.Sprintf("%s(%s)", pieceString(o.Operands[0]), pieceString(o.Operands[2]))
		}
	}

	parts := make([]string, len(o.Operands))
	for i, operand := range o.Operands {
		parts[i] = pieceString(operand)
	}
	return fmt.Sprintf("%s(%s)", o.Op, strings.Join(parts, ", "))
}

func (t *Table) String() string {
	return fmt.Sprintf("%s %s", t.Name, t.Alias)
}

func (c *Column) String() string {
	return fmt.Sprintf("%s.%s", tableAlias(c.Table), c.Name)
}

func (a *Association) String() string {
	return fmt.Sprintf("%s.%s->%s", tableAlias(a.Table), a.Member, tableAlias(a.Joined))
}

func (p *Parameter) String() string {
	return "@" + p.Name
}

func tableAlias(t *Table) string {
	if t == nil {
		return "?"
	}
	return t.Alias
}

// pieceString renders a possibly-nil piece.
func pieceString(p Piece) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}
