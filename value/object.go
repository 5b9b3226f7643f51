package value

import "unsafe"

// ObjectType identifies the variant of a heap object.
type ObjectType uint8

const (
	ObjString ObjectType = iota
)

// String returns the user-facing name of the object type.
func (t ObjectType) String() string {
	switch t {
	case ObjString:
		return "string"
	default:
		return "object"
	}
}

// Object is a heap-resident runtime entity. Every Object is registered with
// exactly one Heap, which assigns its Handle.
type Object interface {
	// Type returns the variant of the object.
	Type() ObjectType

	// Handle returns the object's slot in its owning Heap.
	Handle() Handle

	// Equals returns true if the object is equal to other.
	Equals(other Object) bool

	// String returns the printed form of the object.
	String() string

	// Size returns the number of payload bytes held by the object.
	Size() int
}

// String is an immutable string object.
type String struct {
	handle Handle
	chars  string
}

// Type returns ObjString.
func (s *String) Type() ObjectType { return ObjString }

// Handle returns the string's slot in its owning Heap.
func (s *String) Handle() Handle { return s.handle }

// Chars returns the string contents.
func (s *String) Chars() string { return s.chars }

// Len returns the length of the string in bytes.
func (s *String) Len() int { return len(s.chars) }

// Size returns the number of payload bytes.
func (s *String) Size() int { return len(s.chars) }

func (s *String) String() string { return s.chars }

// Equals compares by content, so two independently allocated strings with
// the same characters are equal.
func (s *String) Equals(other Object) bool {
	o, ok := other.(*String)
	if !ok {
		return false
	}
	return s == o || s.chars == o.chars
}

// adoptChars reinterprets an owned buffer as a string without copying.
func adoptChars(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
