package pieces

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type address struct {
	City string
}

func TestPiece_String(t *testing.T) {
	people := &Table{Entity: "Person", Name: "people", Alias: "t0"}
	towns := &Table{Entity: "Town", Name: "towns", Alias: "t1"}

	tests := []struct {
		name  string
		piece Piece
		want  string
	}{
		{"null constant", Const(nil), "null"},
		{"int constant", Const(18), "18"},
		{"string constant", Const("Bob"), `"Bob"`},
		{"entity set", Entities("Person"), "Entities<Person>"},
		{"captured map", Const(map[string]any{"MinAge": 18}), "captured<map[string]interface {}>"},
		{"captured struct", Const(address{City: "Oslo"}), "captured<pieces.address>"},
		{"binary", Binary(OpGreaterThan, Param("e"), Const(18)), "(e > 18)"},
		{"unary", Unary(OpNot, Param("ok")), "!ok"},
		{"member access", MemberOf(Param("e"), "Age"), "e.Age"},
		{"lambda", Lambda(MemberOf(Param("e"), "Name"), "e"), "e => e.Name"},
		{"lambda two params", Lambda(Param("a"), "a", "b"), "(a, b) => a"},
		{"call", Call("Where", Entities("Person"), Quote(Lambda(Const(true), "e"))), "Entities<Person>.Where(e => true)"},
		{"table", people, "people t0"},
		{"column", &Column{Table: people, Member: "Age", Name: "age"}, "t0.age"},
		{"association", &Association{Table: people, Member: "Town", Joined: towns}, "t0.Town->t1"},
		{"parameter", &Parameter{Name: "MinAge"}, "@MinAge"},
		{"aggregate", &Operation{Op: OpAggregate, Operands: []Piece{Const(Method{Name: "Count"}), Const(nil), nil}}, "Count(<nil>)"},
		{"malformed", &Operation{Op: OpCall}, "Call()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.piece.String())
		})
	}
}

func TestBuild_CallLayout(t *testing.T) {
	source := Entities("Person")
	arg := Quote(Lambda(Const(true), "e"))

	call := Call("Where", source, arg)

	assert.Equal(t, OpCall, call.Op)
	assert.Len(t, call.Operands, 4)
	assert.Equal(t, Method{Name: "Where"}, call.Operands[0].(*Constant).Value)
	assert.Nil(t, call.Operands[1].(*Constant).Value)
	assert.Same(t, source, call.Operands[2])
	assert.Same(t, arg, call.Operands[3])
}

func TestBuild_LambdaLayout(t *testing.T) {
	body := Const(1)
	lambda := Lambda(body, "a", "b")

	assert.Equal(t, OpLambda, lambda.Op)
	assert.Len(t, lambda.Operands, 3)
	assert.Same(t, body, lambda.Operands[0])
	assert.Equal(t, OpParameter, lambda.Operands[1].(*Operation).Op)
	assert.Equal(t, ParameterName("b"), lambda.Operands[2].(*Operation).Operands[0].(*Constant).Value)
}
