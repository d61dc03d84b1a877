package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestFromGo(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "x", IRString("x")},
		{"int", 18, IRInt(18)},
		{"int32", int32(-4), IRInt(-4)},
		{"uint8", uint8(7), IRInt(7)},
		{"bool", true, IRBool(true)},
		{"passthrough", IRString("y"), IRString("y")},
		{"slice", []any{1, "a"}, IRArray{IRInt(1), IRString("a")}},
		{"map", map[string]any{"k": 1}, IRObject{"k": IRInt(1)}},
		{"typed slice", []string{"a", "b"}, IRArray{IRString("a"), IRString("b")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromGo_RejectsFloats(t *testing.T) {
	_, err := FromGo(1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats")

	_, err = FromGo([]any{1, 2.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[1]")
}

func TestFromGo_RejectsNonStringKeys(t *testing.T) {
	_, err := FromGo(map[int]string{1: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map keys must be strings")
}

func TestFromGo_RejectsStructs(t *testing.T) {
	_, err := FromGo(struct{ A int }{1})
	require.Error(t, err)
}

func TestMustFromGo_Panics(t *testing.T) {
	assert.Panics(t, func() { MustFromGo(2.0) })
	assert.Equal(t, IRInt(3), MustFromGo(3))
}
