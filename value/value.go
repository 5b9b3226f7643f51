// Package value defines the runtime value model: a small tagged Value that is
// copied by value, and heap objects tracked by an arena owned by a VM.
package value

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindBool Kind = iota
	KindNil
	KindNumber
	KindObject
)

// String returns a string representation of the kind, e.g. "number".
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNil:
		return "nil"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged runtime datum. Booleans and numbers are stored inline.
// Objects are non-owning references to entities owned by a Heap.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	obj     Object
}

// Nil is the nil value.
var Nil = Value{kind: KindNil}

// True and False are the boolean values.
var (
	True  = Value{kind: KindBool, boolean: true}
	False = Value{kind: KindBool, boolean: false}
)

// Bool returns the boolean value b.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Number returns a number value.
func Number(n float64) Value {
	return Value{kind: KindNumber, number: n}
}

// FromObject returns a value referencing the given heap object.
func FromObject(obj Object) Value {
	return Value{kind: KindObject, obj: obj}
}

// Kind returns the variant held by the value.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObject() bool { return v.kind == KindObject }

// IsString returns true if the value references a String object.
func (v Value) IsString() bool {
	return v.kind == KindObject && v.obj.Type() == ObjString
}

// AsBool returns the boolean payload. The result is meaningless unless
// IsBool is true.
func (v Value) AsBool() bool { return v.boolean }

// AsNumber returns the number payload. The result is meaningless unless
// IsNumber is true.
func (v Value) AsNumber() float64 { return v.number }

// AsObject returns the referenced object, or nil for non-object values.
func (v Value) AsObject() Object { return v.obj }

// AsString returns the referenced String, or nil if the value is not a string.
func (v Value) AsString() *String {
	if s, ok := v.obj.(*String); ok {
		return s
	}
	return nil
}

// IsFalsey reports whether the value counts as false in a boolean context.
// Only nil and false are falsey; 0 and "" are truthy.
func (v Value) IsFalsey() bool {
	return v.kind == KindNil || (v.kind == KindBool && !v.boolean)
}

// TypeName returns a user-facing name for the value's type, e.g. "string".
func (v Value) TypeName() string {
	if v.kind == KindObject {
		return v.obj.Type().String()
	}
	return v.kind.String()
}

// Equal reports whether a and b are equal. Values of different kinds are
// never equal. Numbers follow IEEE comparison, so NaN is not equal to itself.
// Strings compare by content.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBool:
		return a.boolean == b.boolean
	case KindNil:
		return true
	case KindNumber:
		return a.number == b.number
	case KindObject:
		return a.obj.Equals(b.obj)
	default:
		return false
	}
}

// String returns the printed form of the value. Numbers use the shortest
// representation, matching the "%g" verb.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindNil:
		return "nil"
	case KindNumber:
		return formatNumber(v.number)
	case KindObject:
		return v.obj.String()
	default:
		return fmt.Sprintf("<unknown kind %d>", v.kind)
	}
}

// Inspect returns a debugging representation of the value. Strings are quoted.
func (v Value) Inspect() string {
	if v.IsString() {
		return strconv.Quote(v.AsString().Chars())
	}
	return v.String()
}

// MarshalJSON encodes the value as the closest JSON type. Non-finite numbers
// are encoded as strings since JSON has no representation for them.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.boolean)
	case KindNil:
		return []byte("null"), nil
	case KindNumber:
		if isFinite(v.number) {
			return json.Marshal(v.number)
		}
		return json.Marshal(formatNumber(v.number))
	case KindObject:
		return json.Marshal(v.obj.String())
	default:
		return nil, fmt.Errorf("unable to marshal value of kind %d", v.kind)
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func isFinite(n float64) bool {
	return n-n == 0
}
