package exprdoc

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// DocError is a malformed expression document node.
type DocError struct {
	Line    int
	Column  int
	Message string
}

func (e *DocError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

func errorAt(n *yaml.Node, format string, args ...any) *DocError {
	return &DocError{Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, args...)}
}

// formKeys maps each form key to the secondary keys it allows.
var formKeys = map[string][]string{
	"entities": nil,
	"const":    nil,
	"captured": nil,
	"param":    nil,
	"lambda":   nil,
	"quote":    nil,
	"member":   {"of"},
	"call":     {"source", "args"},
	"op":       {"operands"},
}

// Parse decodes an expression document.
func Parse(data []byte) (pieces.Piece, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one expression document from r.
func Decode(r io.Reader) (pieces.Piece, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, &DocError{Message: "empty expression document"}
		}
		return nil, fmt.Errorf("parse expression YAML: %w", err)
	}
	return FromNode(&doc)
}

// FromNode builds the raw piece tree described by n.
func FromNode(n *yaml.Node) (pieces.Piece, error) {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, &DocError{Message: "empty expression document"}
		}
		n = n.Content[0]
	}
	if n.Kind == 0 {
		return nil, &DocError{Message: "empty expression document"}
	}
	b := &builder{expanding: make(map[*yaml.Node]bool)}
	return b.build(n)
}

// builder tracks the anchors being expanded so a self-referencing alias is
// reported instead of recursing forever.
type builder struct {
	expanding map[*yaml.Node]bool
}

func (b *builder) build(n *yaml.Node) (pieces.Piece, error) {
	if n.Kind == yaml.AliasNode {
		if b.expanding[n.Alias] {
			return nil, errorAt(n, "alias cycle through *%s", n.Value)
		}
		b.expanding[n.Alias] = true
		defer delete(b.expanding, n.Alias)
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(n, "expression node must be a mapping")
	}

	fields, err := mappingFields(n)
	if err != nil {
		return nil, err
	}

	form, err := formOf(n, fields)
	if err != nil {
		return nil, err
	}

	value := fields[form]
	switch form {
	case "entities":
		name, err := scalarString(value, "entities")
		if err != nil {
			return nil, err
		}
		return pieces.Entities(pieces.EntityType(name)), nil

	case "const":
		return buildConst(value)

	case "captured":
		var v any
		if err := value.Decode(&v); err != nil {
			return nil, errorAt(value, "captured: %v", err)
		}
		if f := floatScalar(value); f != nil {
			return nil, errorAt(f, "floats are not supported in captured values: %s", f.Value)
		}
		return pieces.Const(v), nil

	case "param":
		name, err := scalarString(value, "param")
		if err != nil {
			return nil, err
		}
		return pieces.Param(name), nil

	case "lambda":
		return b.buildLambda(value)

	case "quote":
		inner, err := b.build(value)
		if err != nil {
			return nil, err
		}
		return pieces.Quote(inner), nil

	case "member":
		name, err := scalarString(value, "member")
		if err != nil {
			return nil, err
		}
		ofNode, ok := fields["of"]
		if !ok {
			return nil, errorAt(n, "member %q requires of", name)
		}
		target, err := b.build(ofNode)
		if err != nil {
			return nil, err
		}
		return pieces.MemberOf(target, pieces.MemberID(name)), nil

	case "call":
		return b.buildCall(n, value, fields)

	case "op":
		return b.buildOperator(n, value, fields)
	}

	return nil, errorAt(n, "unknown form %q", form)
}

// mappingFields returns the key/value pairs of a mapping node. Duplicate
// and unknown keys are rejected.
func mappingFields(n *yaml.Node) (map[string]*yaml.Node, error) {
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if !knownKey(key.Value) {
			return nil, errorAt(key, "unknown key %q", key.Value)
		}
		if _, dup := fields[key.Value]; dup {
			return nil, errorAt(key, "duplicate key %q", key.Value)
		}
		fields[key.Value] = value
	}
	return fields, nil
}

func knownKey(key string) bool {
	if _, ok := formKeys[key]; ok {
		return true
	}
	for _, secondary := range formKeys {
		if slices.Contains(secondary, key) {
			return true
		}
	}
	return false
}

// formOf returns the single form key of a node and checks its secondary
// keys belong to it.
func formOf(n *yaml.Node, fields map[string]*yaml.Node) (string, error) {
	var forms []string
	for key := range fields {
		if _, ok := formKeys[key]; ok {
			forms = append(forms, key)
		}
	}
	slices.Sort(forms)

	switch len(forms) {
	case 0:
		return "", errorAt(n, "expression node needs one of: %s", strings.Join(sortedForms(), ", "))
	case 1:
	default:
		return "", errorAt(n, "expression node has conflicting forms: %s", strings.Join(forms, ", "))
	}

	form := forms[0]
	for key := range fields {
		if key != form && !slices.Contains(formKeys[form], key) {
			return "", errorAt(fields[key], "key %q is not allowed with %q", key, form)
		}
	}
	return form, nil
}

func sortedForms() []string {
	forms := make([]string, 0, len(formKeys))
	for key := range formKeys {
		forms = append(forms, key)
	}
	slices.Sort(forms)
	return forms
}

func scalarString(n *yaml.Node, field string) (string, error) {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return "", errorAt(n, "%s must be a non-empty string", field)
	}
	return n.Value, nil
}

func buildConst(n *yaml.Node) (pieces.Piece, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, errorAt(n, "const must be a scalar; use captured for structured values")
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, errorAt(n, "const: %v", err)
	}
	if _, isFloat := v.(float64); isFloat {
		return nil, errorAt(n, "floats are not supported in literals: %s", n.Value)
	}
	return pieces.Const(v), nil
}

// floatScalar returns the first float scalar under n. Aliases are followed;
// n must already have decoded, which rules out cycles.
func floatScalar(n *yaml.Node) *yaml.Node {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!float" {
			return n
		}
	case yaml.AliasNode:
		return floatScalar(n.Alias)
	default:
		for _, child := range n.Content {
			if f := floatScalar(child); f != nil {
				return f
			}
		}
	}
	return nil
}

func (b *builder) buildLambda(n *yaml.Node) (pieces.Piece, error) {
	var form struct {
		Params []string  `yaml:"params"`
		Body   yaml.Node `yaml:"body"`
	}
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(n, "lambda must be a mapping with params and body")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if key := n.Content[i].Value; key != "params" && key != "body" {
			return nil, errorAt(n.Content[i], "unknown lambda key %q", key)
		}
	}
	if err := n.Decode(&form); err != nil {
		return nil, errorAt(n, "lambda: %v", err)
	}
	if form.Body.Kind == 0 {
		return nil, errorAt(n, "lambda requires body")
	}

	body, err := b.build(&form.Body)
	if err != nil {
		return nil, err
	}
	return pieces.Lambda(body, form.Params...), nil
}

func (b *builder) buildCall(n, method *yaml.Node, fields map[string]*yaml.Node) (pieces.Piece, error) {
	name, err := scalarString(method, "call")
	if err != nil {
		return nil, err
	}
	sourceNode, ok := fields["source"]
	if !ok {
		return nil, errorAt(n, "call %q requires source", name)
	}
	source, err := b.build(sourceNode)
	if err != nil {
		return nil, err
	}
	args, err := b.buildList(fields["args"], "args")
	if err != nil {
		return nil, err
	}
	return pieces.Call(pieces.MethodName(name), source, args...), nil
}

func (b *builder) buildOperator(n, opNode *yaml.Node, fields map[string]*yaml.Node) (pieces.Piece, error) {
	name, err := scalarString(opNode, "op")
	if err != nil {
		return nil, err
	}
	op, ok := pieces.ParseOp(name)
	if !ok || !op.IsOperator() {
		return nil, errorAt(opNode, "unknown operator %q", name)
	}

	operandsNode, ok := fields["operands"]
	if !ok {
		return nil, errorAt(n, "op %q requires operands", name)
	}
	operands, err := b.buildList(operandsNode, "operands")
	if err != nil {
		return nil, err
	}

	want := 2
	if op.IsUnary() {
		want = 1
	}
	if len(operands) != want {
		return nil, errorAt(operandsNode, "%s expects %d operand(s), found %d", op, want, len(operands))
	}
	return &pieces.Operation{Op: op, Operands: operands}, nil
}

func (b *builder) buildList(n *yaml.Node, field string) ([]pieces.Piece, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, errorAt(n, "%s must be a list", field)
	}
	out := make([]pieces.Piece, 0, len(n.Content))
	for _, item := range n.Content {
		p, err := b.build(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
