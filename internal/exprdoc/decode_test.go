package exprdoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

const adultsNames = `
call: Select
source:
  call: Where
  source: {entities: Person}
  args:
    - quote:
        lambda:
          params: [e]
          body:
            op: GreaterThan
            operands:
              - {member: Age, of: {param: e}}
              - {const: 18}
args:
  - quote:
      lambda:
        params: [e]
        body: {member: Name, of: {param: e}}
`

func TestParse_CallChain(t *testing.T) {
	root, err := Parse([]byte(adultsNames))
	require.NoError(t, err)

	assert.Equal(t, "Entities<Person>.Where(e => (e.Age > 18)).Select(e => e.Name)", root.String())

	call := root.(*pieces.Operation)
	assert.Equal(t, pieces.OpCall, call.Op)
	require.Len(t, call.Operands, 4)
	assert.Equal(t, pieces.OpQuote, call.Operands[3].(*pieces.Operation).Op)
}

func TestParse_Forms(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"int const", `const: 18`, "18"},
		{"string const", `const: Bob`, `"Bob"`},
		{"quoted number is string", `const: "18"`, `"18"`},
		{"bool const", `const: true`, "true"},
		{"null const", `const: null`, "null"},
		{"captured", `captured: {min_age: 18}`, "captured<map[string]interface {}>"},
		{"param", `param: e`, "e"},
		{"unary", `{op: Not, operands: [{param: ok}]}`, "!ok"},
		{"lambda without params", `lambda: {body: {const: 1}}`, "() => 1"},
		{"call without args", `{call: Count, source: {entities: Person}}`, "Entities<Person>.Count()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}
}

func TestParse_CapturedValue(t *testing.T) {
	p, err := Parse([]byte("captured:\n  min_age: 18\n  town: Oslo\n"))
	require.NoError(t, err)

	c, ok := p.(*pieces.Constant)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"min_age": 18, "town": "Oslo"}, c.Value)
}

func TestParse_SharedAnchorIsNotACycle(t *testing.T) {
	doc := "op: AndAlso\noperands:\n  - &age {member: Age, of: {param: e}}\n  - *age\n"

	p, err := Parse([]byte(doc))
	require.NoError(t, err)

	op, ok := p.(*pieces.Operation)
	require.True(t, ok)
	require.Len(t, op.Operands, 2)
	assert.Equal(t, op.Operands[0], op.Operands[1])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{"not a mapping", `- 1`, "expression node must be a mapping"},
		{"no form", `of: {param: e}`, "needs one of"},
		{"two forms", `{param: e, const: 1}`, "conflicting forms: const, param"},
		{"unknown key", `{param: e, colour: red}`, `unknown key "colour"`},
		{"secondary key on wrong form", `{param: e, of: {param: x}}`, `key "of" is not allowed with "param"`},
		{"member without of", `member: Age`, "requires of"},
		{"call without source", `call: Where`, "requires source"},
		{"unknown operator", `{op: Frobnicate, operands: []}`, `unknown operator "Frobnicate"`},
		{"raw kind as operator", `{op: Call, operands: []}`, `unknown operator "Call"`},
		{"operator arity", `{op: Add, operands: [{const: 1}]}`, "expects 2 operand(s), found 1"},
		{"float literal", `const: 1.5`, "floats are not supported"},
		{"structured const", `const: [1, 2]`, "use captured"},
		{"empty param", `param: ""`, "param must be a non-empty string"},
		{"lambda without body", `lambda: {params: [e]}`, "lambda requires body"},
		{"lambda unknown key", `lambda: {params: [e], bdy: {const: 1}}`, `unknown lambda key "bdy"`},
		{"args not a list", `{call: Where, source: {entities: Person}, args: {const: 1}}`, "args must be a list"},
		{"float in captured value", "captured:\n  limits: [1, 2.5]\n", "floats are not supported in captured values: 2.5"},
		{"self-referencing alias", "&a {quote: *a}\n", "alias cycle through *a"},
		{"alias cycle through lambda body", "&top {lambda: {params: [e], body: *top}}\n", "alias cycle"},
		{"nested error", "call: Where\nsource: {entities: Person}\nargs:\n  - {param: e, const: 1}\n", "line 4:5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var docErr *DocError
			assert.True(t, errors.As(err, &docErr), "expected *DocError, got %T", err)
		})
	}
}

func TestDecode_EmptyAndInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty expression document")

	_, err = Decode(strings.NewReader("call: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse expression YAML")
}

func TestFromNode_EmbeddedDocument(t *testing.T) {
	var scenario struct {
		Expression yaml.Node `yaml:"expression"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("expression:\n  member: Age\n  of: {param: e}\n"), &scenario))

	p, err := FromNode(&scenario.Expression)

	require.NoError(t, err)
	assert.Equal(t, "e.Age", p.String())
}
