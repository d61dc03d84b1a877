package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

func TestService_QueriedEntityType(t *testing.T) {
	s := NewService()

	chain := pieces.Call("Select",
		pieces.Call("Where", pieces.Entities("Person"), pieces.Const(true)),
		pieces.Const(true))

	entity, err := s.QueriedEntityType(chain)
	require.NoError(t, err)
	assert.Equal(t, pieces.EntityType("Person"), entity)

	_, err = s.QueriedEntityType(pieces.Call("Where", pieces.Const(1)))
	assert.Error(t, err)

	_, err = s.QueriedEntityType(pieces.Param("e"))
	assert.Error(t, err)
}

func TestService_Identities(t *testing.T) {
	s := NewService()

	call := pieces.Call("Where", pieces.Entities("Person"))
	method, err := s.MethodIdentity(call)
	require.NoError(t, err)
	assert.Equal(t, pieces.MethodName("Where"), method)

	method, err = s.MethodIdentity(call.Operands[0])
	require.NoError(t, err)
	assert.Equal(t, pieces.MethodName("Where"), method)

	access := pieces.MemberOf(pieces.Param("e"), "Age")
	member, err := s.MemberIdentity(access)
	require.NoError(t, err)
	assert.Equal(t, pieces.MemberID("Age"), member)

	_, err = s.MethodIdentity(access)
	assert.Error(t, err)
	_, err = s.MemberIdentity(pieces.Const("Age"))
	assert.Error(t, err)
}

func TestService_ParameterName(t *testing.T) {
	s := NewService()

	name, ok := s.ParameterName(pieces.Param("e"))
	assert.True(t, ok)
	assert.Equal(t, "e", name)

	_, ok = s.ParameterName(pieces.Param(""))
	assert.False(t, ok)
	_, ok = s.ParameterName(pieces.Const("e"))
	assert.False(t, ok)
	_, ok = s.ParameterName(pieces.Quote(pieces.Param("e")))
	assert.False(t, ok)
}

func TestService_MergeAndExtract(t *testing.T) {
	s := NewService()
	a, b, c := pieces.Const(1), pieces.Const(2), pieces.Const(3)

	operands := []pieces.Piece{a, b, c}
	extracted := s.ExtractOperands(operands, 1)
	assert.Equal(t, []pieces.Piece{b, c}, extracted)

	extracted[0] = a
	assert.Same(t, b, operands[1], "extraction must copy")

	assert.Nil(t, s.ExtractOperands(operands, 3))

	merged := s.MergeParameters([]pieces.Piece{a}, []pieces.Piece{b, c})
	assert.Equal(t, []pieces.Piece{a, b, c}, merged)
	assert.Empty(t, s.MergeParameters(nil, nil))
}
