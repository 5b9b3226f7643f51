package chunk

const minCapacity = 8

// Array is a growable, capacity-tracked buffer. Appends are amortized O(1):
// when the buffer is full its capacity doubles, starting from 8.
//
// The zero value is an empty array ready for use.
type Array[T any] struct {
	items []T
}

// NewArray returns an empty array with room for at least capacity items.
func NewArray[T any](capacity int) *Array[T] {
	a := &Array[T]{}
	if capacity > 0 {
		a.items = make([]T, 0, capacity)
	}
	return a
}

// Append adds item to the end of the array and returns its index.
func (a *Array[T]) Append(item T) int {
	if len(a.items) == cap(a.items) {
		a.grow()
	}
	a.items = append(a.items, item)
	return len(a.items) - 1
}

func (a *Array[T]) grow() {
	newCap := cap(a.items) * 2
	if newCap < minCapacity {
		newCap = minCapacity
	}
	items := make([]T, len(a.items), newCap)
	copy(items, a.items)
	a.items = items
}

// At returns the item at index i. It panics if i is out of range.
func (a *Array[T]) At(i int) T {
	return a.items[i]
}

// Len returns the number of items in the array.
func (a *Array[T]) Len() int {
	return len(a.items)
}

// Cap returns the number of items the array can hold before it must grow.
func (a *Array[T]) Cap() int {
	return cap(a.items)
}

// Slice returns a copy of the array contents.
func (a *Array[T]) Slice() []T {
	out := make([]T, len(a.items))
	copy(out, a.items)
	return out
}

// Reset empties the array and releases its storage.
func (a *Array[T]) Reset() {
	a.items = nil
}
