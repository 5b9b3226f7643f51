package vm

import "github.com/deepnoodle-ai/loxvm/op"

// Observer is an interface for observing VM execution. Implementations can
// be used for profiling, coverage, or detailed execution tracing.
type Observer interface {
	// OnStep is called before each instruction executes.
	// Returns false to halt execution immediately.
	OnStep(event StepEvent) bool
}

// ObserverFunc adapts an ordinary function to the Observer interface.
type ObserverFunc func(event StepEvent) bool

// OnStep calls f(event).
func (f ObserverFunc) OnStep(event StepEvent) bool {
	return f(event)
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// IP is the offset of the instruction within the chunk.
	IP int

	// Opcode is the operation being executed.
	Opcode op.Code

	// OpcodeName is the human-readable name of the opcode.
	OpcodeName string

	// Line is the source line of the instruction.
	Line int

	// StackDepth is the current depth of the value stack.
	StackDepth int
}
