package vm

import (
	"io"

	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/rs/zerolog"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithHeap sets the heap the VM owns. Chunks compiled for this VM should
// allocate their string constants in the same heap.
func WithHeap(heap *value.Heap) Option {
	return func(vm *VirtualMachine) {
		vm.heap = heap
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.logger = logger
	}
}

// WithDiagnostics sets where Interpret prints compile errors. Defaults to
// os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.diagnostics = w
	}
}

// WithTrace writes an execution trace to w: before each instruction, the
// contents of the stack followed by the disassembled instruction.
func WithTrace(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.trace = w
	}
}

// WithInstructionLimit stops execution with a limit error once more than
// limit instructions have run. A value of 0 disables the limit.
func WithInstructionLimit(limit int64) Option {
	return func(vm *VirtualMachine) {
		vm.instructionLimit = limit
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done() during
// execution. The interval is specified in number of instructions. A value of 0
// disables checking. The default is DefaultContextCheckInterval (1000).
//
// Lower values provide more responsive cancellation but may slightly impact
// performance due to more frequent checks.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for VM execution events.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
// Returning false from OnStep halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}
