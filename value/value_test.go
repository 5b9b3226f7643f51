package value

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	h := NewHeap()
	tests := []struct {
		v    Value
		kind Kind
		name string
	}{
		{Nil, KindNil, "nil"},
		{True, KindBool, "bool"},
		{Bool(false), KindBool, "bool"},
		{Number(1.5), KindNumber, "number"},
		{FromObject(h.CopyString("x")), KindObject, "string"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.kind, tt.v.Kind())
		require.Equal(t, tt.name, tt.v.TypeName())
	}
}

func TestFalsiness(t *testing.T) {
	h := NewHeap()
	require.True(t, Nil.IsFalsey())
	require.True(t, False.IsFalsey())
	require.False(t, True.IsFalsey())
	require.False(t, Number(0).IsFalsey())
	require.False(t, FromObject(h.CopyString("")).IsFalsey())
}

func TestEqual(t *testing.T) {
	h := NewHeap()
	a1 := FromObject(h.CopyString("a"))
	a2 := FromObject(h.CopyString("a"))
	b := FromObject(h.CopyString("b"))

	require.True(t, Equal(a1, a2))
	require.False(t, Equal(a1, b))
	require.True(t, Equal(Nil, Nil))
	require.True(t, Equal(True, Bool(true)))
	require.False(t, Equal(True, False))
	require.True(t, Equal(Number(2), Number(2)))
	require.False(t, Equal(Number(0), False))
	require.False(t, Equal(Nil, False))
	require.False(t, Equal(Number(1), a1))

	nan := Number(math.NaN())
	require.False(t, Equal(nan, nan))
}

func TestString(t *testing.T) {
	h := NewHeap()
	tests := []struct {
		v    Value
		want string
	}{
		{Nil, "nil"},
		{True, "true"},
		{False, "false"},
		{Number(7), "7"},
		{Number(1.2), "1.2"},
		{Number(-0.5), "-0.5"},
		{Number(math.Inf(1)), "+Inf"},
		{FromObject(h.CopyString("hi there")), "hi there"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.v.String())
	}
	require.Equal(t, `"hi"`, FromObject(h.CopyString("hi")).Inspect())
	require.Equal(t, "3", Number(3).Inspect())
}

func TestMarshalJSON(t *testing.T) {
	h := NewHeap()
	values := []Value{
		Nil,
		True,
		Number(2.5),
		Number(math.Inf(-1)),
		FromObject(h.CopyString("s")),
	}
	data, err := json.Marshal(values)
	require.Nil(t, err)
	require.Equal(t, `[null,true,2.5,"-Inf","s"]`, string(data))
}

func TestAsString(t *testing.T) {
	h := NewHeap()
	s := FromObject(h.CopyString("abc"))
	require.True(t, s.IsString())
	require.Equal(t, "abc", s.AsString().Chars())
	require.Equal(t, 3, s.AsString().Len())
	require.False(t, Number(1).IsString())
	require.Nil(t, Number(1).AsString())
}
