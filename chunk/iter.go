package chunk

import "github.com/deepnoodle-ai/loxvm/op"

// Instruction is one decoded instruction.
type Instruction struct {
	Offset   int
	Line     int
	Opcode   op.Code
	Operands []byte
}

// InstructionIter iterates over the instructions in a Chunk.
type InstructionIter struct {
	chunk *Chunk
	pos   int
}

// NewInstructionIter creates a new instruction iterator for the given chunk.
func NewInstructionIter(c *Chunk) *InstructionIter {
	return &InstructionIter{chunk: c}
}

// Next returns the next instruction. Returns false when there are no more
// instructions. A truncated trailing instruction is returned with the
// operands that are present.
func (i *InstructionIter) Next() (Instruction, bool) {
	if i.pos >= i.chunk.Count() {
		return Instruction{}, false
	}
	instr := Instruction{
		Offset: i.pos,
		Line:   i.chunk.LineAt(i.pos),
		Opcode: i.chunk.OpAt(i.pos),
	}
	i.pos++

	info := op.GetInfo(instr.Opcode)
	if info.OperandCount > 0 {
		instr.Operands = make([]byte, 0, info.OperandCount)
		for j := 0; j < info.OperandCount && i.pos < i.chunk.Count(); j++ {
			instr.Operands = append(instr.Operands, i.chunk.ByteAt(i.pos))
			i.pos++
		}
	}
	return instr, true
}

// All returns all remaining instructions as a newly allocated slice.
func (i *InstructionIter) All() []Instruction {
	var results []Instruction
	for {
		instr, ok := i.Next()
		if !ok {
			break
		}
		results = append(results, instr)
	}
	return results
}
