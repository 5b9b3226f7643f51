package value

import "strings"

// Handle identifies an object slot within a Heap.
type Handle uint32

// Heap is the allocation registry for heap objects. It is an arena owned by a
// single VM instance; objects are addressed by Handle so that a future
// reclamation pass can walk the arena directly instead of chasing references
// through Values. Nothing is ever freed individually today.
//
// A Heap is not safe for concurrent use.
type Heap struct {
	objects []Object
	bytes   int
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// CopyString allocates a String holding a copy of chars. The caller keeps
// ownership of its own memory.
func (h *Heap) CopyString(chars string) *String {
	return h.allocateString(strings.Clone(chars))
}

// TakeString allocates a String that takes ownership of buf without copying.
// The caller must not modify buf afterwards.
func (h *Heap) TakeString(buf []byte) *String {
	return h.allocateString(adoptChars(buf))
}

func (h *Heap) allocateString(chars string) *String {
	s := &String{handle: Handle(len(h.objects)), chars: chars}
	h.register(s)
	return s
}

func (h *Heap) register(obj Object) {
	h.objects = append(h.objects, obj)
	h.bytes += obj.Size()
}

// Get returns the object stored at the given handle.
func (h *Heap) Get(handle Handle) (Object, bool) {
	if int(handle) >= len(h.objects) {
		return nil, false
	}
	return h.objects[handle], true
}

// Len returns the number of live objects.
func (h *Heap) Len() int {
	return len(h.objects)
}

// Bytes returns the total payload bytes held by live objects.
func (h *Heap) Bytes() int {
	return h.bytes
}

// Each calls fn for every object in allocation order, stopping early if fn
// returns false.
func (h *Heap) Each(fn func(Object) bool) {
	for _, obj := range h.objects {
		if !fn(obj) {
			return
		}
	}
}

// Reset drops every object in the heap. Values that still reference those
// objects remain usable but are no longer tracked.
func (h *Heap) Reset() {
	for i := range h.objects {
		h.objects[i] = nil
	}
	h.objects = h.objects[:0]
	h.bytes = 0
}
