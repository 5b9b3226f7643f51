// Package chunk defines the compiled code unit: an instruction byte stream, a
// parallel line table, and a constant pool.
package chunk

import (
	"errors"

	"github.com/deepnoodle-ai/loxvm/op"
	"github.com/deepnoodle-ai/loxvm/value"
)

// MaxConstants is the maximum size of a constant pool. Constant indices are
// encoded as a single byte.
const MaxConstants = 256

// ErrTooManyConstants is returned by AddConstant when the pool is full.
var ErrTooManyConstants = errors.New("too many constants in one chunk")

// Chunk is a compiled unit of code. The code and line streams always have
// the same length: line i is the source line that produced byte i.
//
// A Chunk is written by one compiler and then handed to one VM. It is not
// safe for concurrent use.
type Chunk struct {
	code      Array[byte]
	lines     Array[int]
	constants Array[value.Value]
}

// New returns an empty chunk.
func New() *Chunk {
	return &Chunk{}
}

// Write appends a byte to the code stream, recording the line it came from.
func (c *Chunk) Write(b byte, line int) {
	c.code.Append(b)
	c.lines.Append(line)
}

// WriteOp appends an opcode to the code stream.
func (c *Chunk) WriteOp(code op.Code, line int) {
	c.Write(byte(code), line)
}

// AddConstant appends v to the constant pool and returns its index. When the
// pool already holds MaxConstants values, nothing is appended and
// ErrTooManyConstants is returned.
func (c *Chunk) AddConstant(v value.Value) (int, error) {
	if c.constants.Len() >= MaxConstants {
		return 0, ErrTooManyConstants
	}
	return c.constants.Append(v), nil
}

// Count returns the number of bytes in the code stream.
func (c *Chunk) Count() int {
	return c.code.Len()
}

// ByteAt returns the code byte at the given offset.
func (c *Chunk) ByteAt(offset int) byte {
	return c.code.At(offset)
}

// OpAt returns the code byte at the given offset as an opcode.
func (c *Chunk) OpAt(offset int) op.Code {
	return op.Code(c.code.At(offset))
}

// LineAt returns the source line of the code byte at the given offset.
func (c *Chunk) LineAt(offset int) int {
	return c.lines.At(offset)
}

// LineCount returns the number of entries in the line table.
func (c *Chunk) LineCount() int {
	return c.lines.Len()
}

// ConstantCount returns the number of values in the constant pool.
func (c *Chunk) ConstantCount() int {
	return c.constants.Len()
}

// ConstantAt returns the constant at the given index.
func (c *Chunk) ConstantAt(index int) value.Value {
	return c.constants.At(index)
}

// Code returns a copy of the code stream.
func (c *Chunk) Code() []byte {
	return c.code.Slice()
}

// Lines returns a copy of the line table.
func (c *Chunk) Lines() []int {
	return c.lines.Slice()
}

// Constants returns a copy of the constant pool.
func (c *Chunk) Constants() []value.Value {
	return c.constants.Slice()
}

// Stats returns statistics about the chunk.
func (c *Chunk) Stats() Stats {
	stats := Stats{
		ByteCount:     c.code.Len(),
		ConstantCount: c.constants.Len(),
	}
	iter := NewInstructionIter(c)
	for {
		if _, ok := iter.Next(); !ok {
			break
		}
		stats.InstructionCount++
	}
	if n := c.lines.Len(); n > 0 {
		stats.MaxLine = c.lines.At(n - 1)
	}
	return stats
}

// Reset empties the chunk.
func (c *Chunk) Reset() {
	c.code.Reset()
	c.lines.Reset()
	c.constants.Reset()
}
