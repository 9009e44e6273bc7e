package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Bool(true)
	var _ Value = List{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectSortedKeysUTF16Order(t *testing.T) {
	// 'A' = 65 sorts before 'a' = 97 at every position
	obj := Object{"a": Int(1), "A": Int(2), "aa": Int(3), "aA": Int(4), "Aa": Int(5), "AA": Int(6)}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestNewObject(t *testing.T) {
	obj := NewObject(O("id", Int(1)), O("name", String("eng")))

	assert.Equal(t, Object{"id": Int(1), "name": String("eng")}, obj)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"same string", String("x"), String("x"), true},
		{"different string", String("x"), String("y"), false},
		{"int vs string", Int(1), String("1"), false},
		{"nulls", Null{}, Null{}, true},
		{"null vs bool", Null{}, Bool(false), false},
		{"lists", NewList(Int(1), Int(2)), NewList(Int(1), Int(2)), true},
		{"list order", NewList(Int(1), Int(2)), NewList(Int(2), Int(1)), false},
		{"list length", NewList(Int(1)), NewList(Int(1), Int(1)), false},
		{"objects", Object{"a": Int(1)}, Object{"a": Int(1)}, true},
		{"object missing key", Object{"a": Int(1)}, Object{"b": Int(1)}, false},
		{"nested", Object{"a": NewList(Bool(true))}, Object{"a": NewList(Bool(true))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Equal(tt.a, tt.b))
		})
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"id":     7,
		"name":   "Alice",
		"active": true,
		"tags":   []any{"a", int64(2)},
		"boss":   nil,
	})
	require.NoError(t, err)

	expected := Object{
		"id":     Int(7),
		"name":   String("Alice"),
		"active": Bool(true),
		"tags":   List{String("a"), Int(2)},
		"boss":   Null{},
	}
	assert.True(t, Equal(expected, v), "got %#v", v)
}

func TestFromAnyRejectsFloats(t *testing.T) {
	_, err := FromAny(3.5)
	assert.Error(t, err)

	_, err = FromAny([]any{1, 2.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list[1]")
}

func TestFromAnyJSONNumber(t *testing.T) {
	v, err := FromAny(json.Number("12"))
	require.NoError(t, err)
	assert.Equal(t, Int(12), v)

	_, err = FromAny(json.Number("1e3"))
	assert.Error(t, err)
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams([]byte(`[3, "eng", true, null, [1, 2]]`))
	require.NoError(t, err)

	require.Len(t, params, 5)
	assert.Equal(t, Int(3), params[0])
	assert.Equal(t, String("eng"), params[1])
	assert.Equal(t, Bool(true), params[2])
	assert.Equal(t, Null{}, params[3])
	assert.True(t, Equal(NewList(Int(1), Int(2)), params[4]))
}

func TestParseParamsRequiresArray(t *testing.T) {
	_, err := ParseParams([]byte(`{"a": 1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected JSON array")

	_, err = ParseParams([]byte(`[1.5]`))
	assert.Error(t, err)
}

func TestToNative(t *testing.T) {
	tests := []struct {
		in   Value
		want any
	}{
		{Null{}, nil},
		{String("x"), "x"},
		{Int(9), int64(9)},
		{Bool(true), true},
	}
	for _, tt := range tests {
		got, err := ToNative(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ToNative(NewList(Int(1)))
	assert.Error(t, err)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "null", Kind(Null{}))
	assert.Equal(t, "string", Kind(String("")))
	assert.Equal(t, "int", Kind(Int(0)))
	assert.Equal(t, "bool", Kind(Bool(false)))
	assert.Equal(t, "list", Kind(List{}))
	assert.Equal(t, "object", Kind(Object{}))
}
