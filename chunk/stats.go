package chunk

// Stats contains statistics about a compiled chunk.
// This is useful for auditing programs before execution.
type Stats struct {
	// InstructionCount is the number of decoded instructions.
	InstructionCount int

	// ByteCount is the size of the code stream in bytes.
	ByteCount int

	// ConstantCount is the number of values in the constant pool.
	ConstantCount int

	// MaxLine is the line of the last code byte.
	MaxLine int
}
