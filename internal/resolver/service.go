package resolver

import (
	"fmt"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// Service implements analyzer.PiecesService for trees built with the
// pieces constructors.
type Service struct{}

// NewService creates a Service.
func NewService() Service {
	return Service{}
}

// QueriedEntityType descends call sources to the innermost entity set.
func (Service) QueriedEntityType(node pieces.Piece) (pieces.EntityType, error) {
	for {
		switch n := node.(type) {
		case *pieces.Operation:
			if n.Op != pieces.OpCall || len(n.Operands) < 3 {
				return "", fmt.Errorf("expected a call chain, got %s", n)
			}
			node = n.Operands[2]
		case *pieces.Constant:
			set, ok := n.Value.(pieces.EntitySet)
			if !ok {
				return "", fmt.Errorf("call chain does not start at an entity set: %s", n)
			}
			return set.Entity, nil
		default:
			return "", fmt.Errorf("call chain does not start at an entity set: %s", pieceString(node))
		}
	}
}

// MethodIdentity returns the method of a call, or of a method constant.
func (Service) MethodIdentity(node pieces.Piece) (pieces.MethodName, error) {
	c, err := identityConstant(node, pieces.OpCall, 0)
	if err != nil {
		return "", err
	}
	m, ok := c.Value.(pieces.Method)
	if !ok {
		return "", fmt.Errorf("not a method: %s", c)
	}
	return m.Name, nil
}

// MemberIdentity returns the member of a member access, or of a member
// constant.
func (Service) MemberIdentity(node pieces.Piece) (pieces.MemberID, error) {
	c, err := identityConstant(node, pieces.OpMemberAccess, 1)
	if err != nil {
		return "", err
	}
	m, ok := c.Value.(pieces.Member)
	if !ok {
		return "", fmt.Errorf("not a member: %s", c)
	}
	return m.Name, nil
}

// ParameterName returns the name of a parameter declaration or reference.
func (Service) ParameterName(node pieces.Piece) (string, bool) {
	op, ok := node.(*pieces.Operation)
	if !ok || op.Op != pieces.OpParameter || len(op.Operands) != 1 {
		return "", false
	}
	c, ok := op.Operands[0].(*pieces.Constant)
	if !ok {
		return "", false
	}
	name, ok := c.Value.(pieces.ParameterName)
	if !ok || name == "" {
		return "", false
	}
	return string(name), true
}

// MergeParameters returns inherited followed by extracted, in a new slice.
func (Service) MergeParameters(inherited, extracted []pieces.Piece) []pieces.Piece {
	merged := make([]pieces.Piece, 0, len(inherited)+len(extracted))
	merged = append(merged, inherited...)
	return append(merged, extracted...)
}

// ExtractOperands returns a copy of operands[start:], or nil.
func (Service) ExtractOperands(operands []pieces.Piece, start int) []pieces.Piece {
	if start < 0 || start >= len(operands) {
		return nil
	}
	out := make([]pieces.Piece, len(operands)-start)
	copy(out, operands[start:])
	return out
}

// identityConstant returns the constant at index of an op node, or node
// itself when it is already a constant.
func identityConstant(node pieces.Piece, op pieces.Op, index int) (*pieces.Constant, error) {
	switch n := node.(type) {
	case *pieces.Constant:
		return n, nil
	case *pieces.Operation:
		if n.Op != op || len(n.Operands) <= index {
			return nil, fmt.Errorf("expected %s node, got %s", op, n)
		}
		c, ok := n.Operands[index].(*pieces.Constant)
		if !ok {
			return nil, fmt.Errorf("operand %d of %s is not a constant", index, n)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("expected %s node, got %s", op, pieceString(node))
	}
}

func pieceString(p pieces.Piece) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}
