package pieces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeason0813/dblinq2007/internal/ir"
)

func TestSnapshot_Deterministic(t *testing.T) {
	build := func() ([]byte, error) {
		q := NewQuery()
		people := q.AddTable("Person", "people")
		age := &Column{Table: people, Member: "Age", Name: "age"}
		q.AddColumn(age)
		q.AddParameter(&Parameter{Name: "MinAge", Value: 18})
		q.AddWhere(Binary(OpGreaterThan, age, q.Parameters[0]))
		q.SetSelect(people)
		return Snapshot(people, q)
	}

	first, err := build()
	require.NoError(t, err)
	second, err := build()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.JSONEq(t, `{
		"query": {
			"associations": [],
			"columns": [{"member": "Age", "name": "age", "table": "t0"}],
			"parameters": [{"name": "MinAge", "value": 18}],
			"select": {"table": "t0"},
			"tables": [{"alias": "t0", "entity": "Person", "name": "people"}],
			"where": [{"op": "GreaterThan", "operands": [{"column": "age", "table": "t0"}, {"parameter": "MinAge"}]}]
		},
		"result": {"table": "t0"}
	}`, string(first))
}

func TestToIR_Constants(t *testing.T) {
	assert.JSONEq(t, `{"entities":"Person"}`, mustCanonical(t, Entities("Person")))
	assert.JSONEq(t, `{"method":"Count"}`, mustCanonical(t, Const(Method{Name: "Count"})))
	assert.JSONEq(t, `null`, mustCanonical(t, Const(nil)))
	assert.JSONEq(t, `{"captured":"pieces.address"}`, mustCanonical(t, Const(address{City: "Oslo"})))
	assert.JSONEq(t, `{"captured":"float64"}`, mustCanonical(t, Const(1.5)))
}

func mustCanonical(t *testing.T, p Piece) string {
	t.Helper()
	b, err := ir.MarshalCanonical(ToIR(p))
	require.NoError(t, err)
	return string(b)
}
