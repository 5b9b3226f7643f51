package value

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCopyString(t *testing.T) {
	h := NewHeap()
	src := []byte("hello")
	s := h.CopyString(string(src))
	src[0] = 'j'
	require.Equal(t, "hello", s.Chars())
	require.Equal(t, Handle(0), s.Handle())
	require.Equal(t, 1, h.Len())
	require.Equal(t, 5, h.Bytes())
}

func TestCopyStringDoesNotAlias(t *testing.T) {
	h := NewHeap()
	src := "shared"
	s := h.CopyString(src)
	require.Equal(t, src, s.Chars())
	require.NotSame(t, unsafe.StringData(src), unsafe.StringData(s.Chars()))
}

func TestTakeString(t *testing.T) {
	h := NewHeap()
	copied := h.CopyString("abc")
	taken := h.TakeString([]byte("abc"))

	require.Equal(t, Handle(1), taken.Handle())
	require.Equal(t, "abc", taken.Chars())
	require.True(t, copied.Equals(taken))
	require.True(t, Equal(FromObject(copied), FromObject(taken)))
	require.Equal(t, 2, h.Len())
	require.Equal(t, 6, h.Bytes())
}

func TestEmptyStrings(t *testing.T) {
	h := NewHeap()
	a := h.CopyString("")
	b := h.TakeString(nil)
	require.Equal(t, 0, a.Len())
	require.True(t, a.Equals(b))
	require.Equal(t, 2, h.Len())
}

func TestHeapGet(t *testing.T) {
	h := NewHeap()
	s := h.CopyString("x")

	obj, ok := h.Get(s.Handle())
	require.True(t, ok)
	require.Same(t, s, obj)

	_, ok = h.Get(Handle(42))
	require.False(t, ok)
}

func TestHeapEach(t *testing.T) {
	h := NewHeap()
	h.CopyString("a")
	h.CopyString("b")
	h.CopyString("c")

	var seen []string
	h.Each(func(obj Object) bool {
		seen = append(seen, obj.String())
		return len(seen) < 2
	})
	require.Equal(t, []string{"a", "b"}, seen)
}

func TestHeapReset(t *testing.T) {
	h := NewHeap()
	s := h.CopyString("keep")
	h.Reset()
	require.Equal(t, 0, h.Len())
	require.Equal(t, 0, h.Bytes())
	require.Equal(t, "keep", s.Chars())

	next := h.CopyString("next")
	require.Equal(t, Handle(0), next.Handle())
}
