// Package op defines opcodes used by the compiler and virtual machine.
package op

// Code is a single-byte opcode that indicates an operation to execute.
type Code uint8

const (
	// Push constants
	Constant Code = 0
	Nil      Code = 1
	True     Code = 2
	False    Code = 3

	// Comparison
	Equal   Code = 10
	Greater Code = 11
	Less    Code = 12

	// Arithmetic
	Add      Code = 20
	Subtract Code = 21
	Multiply Code = 22
	Divide   Code = 23

	// Unary
	Not    Code = 30
	Negate Code = 31

	// Execution
	Return Code = 40
)

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
}

// Valid reports whether the info describes a defined opcode.
func (i Info) Valid() bool {
	return i.Name != ""
}

// Width returns the encoded size of the instruction in bytes.
func (i Info) Width() int {
	return 1 + i.OperandCount
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op    Code
		name  string
		count int
	}
	ops := []opInfo{
		{Add, "ADD", 0},
		{Constant, "CONSTANT", 1},
		{Divide, "DIVIDE", 0},
		{Equal, "EQUAL", 0},
		{False, "FALSE", 0},
		{Greater, "GREATER", 0},
		{Less, "LESS", 0},
		{Multiply, "MULTIPLY", 0},
		{Negate, "NEGATE", 0},
		{Nil, "NIL", 0},
		{Not, "NOT", 0},
		{Return, "RETURN", 0},
		{Subtract, "SUBTRACT", 0},
		{True, "TRUE", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
		}
	}
}

// GetInfo returns information about the given opcode. Undefined opcodes
// yield an Info whose Valid method returns false.
func GetInfo(op Code) Info {
	return infos[op]
}

// String returns the opcode name, e.g. "CONSTANT".
func (c Code) String() string {
	if info := infos[c]; info.Valid() {
		return info.Name
	}
	return "UNKNOWN"
}
