package analyzer

import "github.com/jeason0813/dblinq2007/internal/pieces"

// QueryService registers the pieces a query refers to.
//
// Register* methods return a nil piece (and nil error) when the entity has
// no such member; the analyzer decides whether that is fatal.
type QueryService interface {
	// RegisterTable returns the table piece for entity, registering it on
	// ctx.Query if needed.
	RegisterTable(entity pieces.EntityType, ctx *pieces.BuilderContext) (*pieces.Table, error)

	// RegisterAssociation returns the association reached through member
	// of t, or nil if member is not an association.
	RegisterAssociation(t *pieces.Table, member pieces.MemberID, ctx *pieces.BuilderContext) (pieces.Piece, error)

	// RegisterColumn returns the column mapped to member of t, or nil if
	// member is not mapped.
	RegisterColumn(t *pieces.Table, member pieces.MemberID, ctx *pieces.BuilderContext) (pieces.Piece, error)

	// RegisterParameter returns the external parameter for a member access
	// on a captured host value, or nil if it cannot be bound.
	RegisterParameter(node pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error)
}

// PiecesService reads identities off raw nodes.
type PiecesService interface {
	// QueriedEntityType returns the entity at the root of a call chain.
	QueriedEntityType(node pieces.Piece) (pieces.EntityType, error)

	// MethodIdentity returns the method named by operand 0 of a call.
	MethodIdentity(node pieces.Piece) (pieces.MethodName, error)

	// MemberIdentity returns the member named by operand 1 of a member access.
	MemberIdentity(node pieces.Piece) (pieces.MemberID, error)

	// ParameterName returns the name of a formal parameter declaration or
	// reference.
	ParameterName(node pieces.Piece) (string, bool)

	// MergeParameters combines inherited pending arguments with the
	// arguments extracted from a call, preserving order.
	MergeParameters(inherited, extracted []pieces.Piece) []pieces.Piece

	// ExtractOperands returns operands[start:], or nil when there are none.
	ExtractOperands(operands []pieces.Piece, start int) []pieces.Piece
}
