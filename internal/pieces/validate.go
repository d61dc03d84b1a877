package pieces

import (
	"errors"
	"fmt"
)

// Validate checks that root and every predicate and projection of q are
// fully analyzed: no raw node survives and every aggregate has a
// projection to wrap.
//
// All problems are collected; the returned error joins one
// *TranslationError per problem, so IsKind works on the result.
//
// Validate is a pure function with no side effects.
func Validate(root Piece, q *Query) error {
	v := &validator{}
	v.validatePiece(root)
	if q != nil {
		for _, pred := range q.Where {
			v.validatePiece(pred)
		}
		if q.Select != nil && q.Select != root {
			v.validatePiece(q.Select)
		}
	}
	return errors.Join(v.problems...)
}

// validator accumulates problems during traversal.
type validator struct {
	problems []error
}

func (v *validator) add(err error) {
	v.problems = append(v.problems, err)
}

// validatePiece recursively validates a piece.
func (v *validator) validatePiece(p Piece) {
	if p == nil {
		v.add(NewUnsupportedExpression(nil, "nil piece in analyzed tree"))
		return
	}

	switch piece := p.(type) {
	case *Constant, *Table, *Column, *Association, *Parameter:
		// resolved leaves
	case *Operation:
		v.validateOperation(piece)
	default:
		v.add(NewUnsupportedExpression(p, fmt.Sprintf("unknown piece type %T", p)))
	}
}

func (v *validator) validateOperation(o *Operation) {
	switch {
	case o.Op.IsRaw():
		v.add(NewUnsupportedExpression(o, fmt.Sprintf("%s node survived analysis", o.Op)))
	case o.Op == OpAggregate:
		v.validateAggregate(o)
	case o.Op.IsOperator():
		for _, operand := range o.Operands {
			v.validatePiece(operand)
		}
	default:
		v.add(NewUnsupportedExpression(o, fmt.Sprintf("unknown operation %d", int(o.Op))))
	}
}

func (v *validator) validateAggregate(o *Operation) {
	if len(o.Operands) != 3 {
		v.add(NewUnsupportedExpression(o, fmt.Sprintf("aggregate expects 3 operands, found %d", len(o.Operands))))
		return
	}
	if o.Operands[2] == nil {
		v.add(NewMissingProjection(o))
		return
	}
	v.validatePiece(o.Operands[2])
}
