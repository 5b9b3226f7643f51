// Package vm provides a VirtualMachine that executes compiled chunks.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/deepnoodle-ai/loxvm/chunk"
	"github.com/deepnoodle-ai/loxvm/compiler"
	"github.com/deepnoodle-ai/loxvm/dis"
	"github.com/deepnoodle-ai/loxvm/errz"
	"github.com/deepnoodle-ai/loxvm/op"
	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/rs/zerolog"
)

const (
	// StackMax is the capacity of the operand stack.
	StackMax = 256

	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// ErrHalted is the cause of the error returned when an observer stops
// execution.
var ErrHalted = errors.New("execution halted by observer")

// State is the lifecycle state of a VirtualMachine.
type State uint8

const (
	Ready State = iota
	Running
	HaltedOK
	HaltedError
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case HaltedOK:
		return "halted"
	case HaltedError:
		return "halted with error"
	default:
		return "unknown"
	}
}

// Result is the outcome of interpreting a program.
type Result uint8

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultCompileError:
		return "compile error"
	case ResultRuntimeError:
		return "runtime error"
	default:
		return "unknown"
	}
}

// VirtualMachine executes chunks on a fixed-size operand stack. It owns the
// heap that the objects it creates or runs against are registered in.
//
// A VirtualMachine runs one chunk at a time and is not safe for concurrent
// use while running.
type VirtualMachine struct {
	ip    int // offset of the next byte to fetch
	opIP  int // offset of the instruction being executed
	sp    int // index of the top of the stack, -1 when empty
	stack [StackMax]value.Value
	chunk *chunk.Chunk
	heap  *value.Heap
	state State

	running  bool
	runMutex sync.Mutex

	logger      zerolog.Logger
	diagnostics io.Writer
	trace       io.Writer
	observer    Observer

	// instructionLimit caps the number of instructions per run. 0 means no
	// limit.
	instructionLimit int64

	// contextCheckInterval is the number of instructions between checks of
	// ctx.Done(). 0 disables checking.
	contextCheckInterval int
}

// New creates a new Virtual Machine. Unless a heap is supplied with
// WithHeap, the VM creates and owns a fresh one.
func New(options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		sp:                   -1,
		logger:               zerolog.Nop(),
		diagnostics:          os.Stderr,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.heap == nil {
		vm.heap = value.NewHeap()
	}
	return vm
}

// Heap returns the heap owned by the VM.
func (vm *VirtualMachine) Heap() *value.Heap {
	return vm.heap
}

// State returns the current lifecycle state.
func (vm *VirtualMachine) State() State {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	return vm.state
}

// Interpret compiles source into the VM's heap and runs it. If compilation
// fails the chunk is never executed and ResultCompileError is returned along
// with the compile errors.
func (vm *VirtualMachine) Interpret(ctx context.Context, source string, opts ...compiler.Option) (Result, error) {
	copts := []compiler.Option{
		compiler.WithHeap(vm.heap),
		compiler.WithDiagnostics(vm.diagnostics),
		compiler.WithLogger(vm.logger),
	}
	c, err := compiler.Compile(source, append(copts, opts...)...)
	if err != nil {
		return ResultCompileError, err
	}
	return vm.Run(ctx, c)
}

// Run executes the chunk from its first instruction until RETURN. On success
// the value produced by the chunk is left on top of the stack and can be
// read with TOS.
//
// Any error is returned as an *errz.RuntimeError, with ResultRuntimeError.
// It is an error to call Run on a VM that is already running.
func (vm *VirtualMachine) Run(ctx context.Context, c *chunk.Chunk) (result Result, err error) {
	// Set up some guarantees:
	// 1. It is an error to call Run on a VM that is already running
	// 2. The running flag will always be set to false when Run returns
	// 3. Any panics are translated to errors and the VM is stopped
	if err := vm.start(c); err != nil {
		return ResultRuntimeError, err
	}
	defer func() {
		if r := recover(); r != nil {
			var rerr *errz.RuntimeError
			if e, ok := r.(*errz.RuntimeError); ok {
				rerr = e
			} else {
				rerr = errz.NewRuntimeErrorf(errz.ErrInternal, vm.currentLine(), "panic: %v", r)
			}
			err = rerr
		}
		result = vm.stop(err)
	}()
	return ResultOK, vm.eval(ctx)
}

func (vm *VirtualMachine) start(c *chunk.Chunk) error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return errz.NewRuntimeErrorf(errz.ErrInternal, 0, "vm is already running")
	}
	if c == nil {
		return errz.NewRuntimeErrorf(errz.ErrInternal, 0, "no chunk to run")
	}
	vm.running = true
	vm.state = Running
	vm.resetStack()
	vm.chunk = c
	vm.ip = 0
	vm.opIP = 0
	return nil
}

func (vm *VirtualMachine) stop(err error) Result {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
	if err != nil {
		vm.state = HaltedError
		vm.logger.Debug().Err(err).Int("ip", vm.opIP).Msg("runtime error")
		return ResultRuntimeError
	}
	vm.state = HaltedOK
	return ResultOK
}

// Reset clears the stack and returns the VM to the Ready state. The heap is
// left untouched.
func (vm *VirtualMachine) Reset() error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return errors.New("cannot reset a running vm")
	}
	vm.resetStack()
	vm.chunk = nil
	vm.ip = 0
	vm.opIP = 0
	vm.state = Ready
	return nil
}

// Close releases every object in the VM's heap. Values that referenced them
// must not be used by later runs.
func (vm *VirtualMachine) Close() error {
	if err := vm.Reset(); err != nil {
		return err
	}
	vm.logger.Debug().
		Int("objects", vm.heap.Len()).
		Int("bytes", vm.heap.Bytes()).
		Msg("releasing heap")
	vm.heap.Reset()
	return nil
}

func (vm *VirtualMachine) resetStack() {
	for i := 0; i <= vm.sp; i++ {
		vm.stack[i] = value.Value{}
	}
	vm.sp = -1
}

// Evaluate the bound chunk starting at vm.ip. Assuming this function returns
// without error, the result of the evaluation is on the top of the stack.
func (vm *VirtualMachine) eval(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return vm.cancelled(err)
	}

	var executed int64
	var sinceCheck int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()
	count := vm.chunk.Count()

	for {
		if vm.ip >= count {
			return vm.internalError("reached end of chunk without RETURN")
		}

		executed++
		if vm.instructionLimit > 0 && executed > vm.instructionLimit {
			return errz.NewRuntimeErrorf(errz.ErrLimit, vm.chunk.LineAt(vm.ip),
				"instruction limit exceeded (%d)", vm.instructionLimit)
		}

		// Deterministic check of ctx.Done() every N instructions.
		if checkInterval > 0 && doneChan != nil {
			sinceCheck++
			if sinceCheck >= checkInterval {
				sinceCheck = 0
				select {
				case <-doneChan:
					return vm.cancelled(ctx.Err())
				default:
				}
			}
		}

		if vm.trace != nil {
			vm.traceStep()
		}

		vm.opIP = vm.ip
		opcode := op.Code(vm.fetch())

		if vm.observer != nil {
			event := StepEvent{
				IP:         vm.opIP,
				Opcode:     opcode,
				OpcodeName: opcode.String(),
				Line:       vm.chunk.LineAt(vm.opIP),
				StackDepth: vm.sp + 1,
			}
			if !vm.observer.OnStep(event) {
				return vm.cancelled(ErrHalted)
			}
		}

		switch opcode {
		case op.Constant:
			index := int(vm.fetch())
			if index >= vm.chunk.ConstantCount() {
				return vm.internalError("constant index %d out of range", index)
			}
			vm.push(vm.chunk.ConstantAt(index))
		case op.Nil:
			vm.push(value.Nil)
		case op.True:
			vm.push(value.True)
		case op.False:
			vm.push(value.False)
		case op.Equal:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case op.Greater, op.Less, op.Add, op.Subtract, op.Multiply, op.Divide:
			if err := vm.binaryOp(opcode); err != nil {
				return err
			}
		case op.Not:
			vm.push(value.Bool(vm.pop().IsFalsey()))
		case op.Negate:
			if !vm.peek(0).IsNumber() {
				return vm.typeError("Operand must be a number.")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))
		case op.Return:
			return nil
		default:
			return vm.internalError("unknown opcode %d", opcode)
		}
	}
}

func (vm *VirtualMachine) binaryOp(opcode op.Code) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.typeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	switch opcode {
	case op.Greater:
		vm.push(value.Bool(a > b))
	case op.Less:
		vm.push(value.Bool(a < b))
	case op.Add:
		vm.push(value.Number(a + b))
	case op.Subtract:
		vm.push(value.Number(a - b))
	case op.Multiply:
		vm.push(value.Number(a * b))
	case op.Divide:
		vm.push(value.Number(a / b))
	}
	return nil
}

// TOS returns the top-of-stack value if there is one, without modifying the
// stack. The returned bool value indicates whether there was a valid TOS. This
// only works on a stopped VM. If the VM is running, (Nil, false) is returned.
func (vm *VirtualMachine) TOS() (value.Value, bool) {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if !vm.running && vm.sp >= 0 {
		return vm.stack[vm.sp], true
	}
	return value.Nil, false
}

// StackDepth returns the number of values on the stack.
func (vm *VirtualMachine) StackDepth() int {
	return vm.sp + 1
}

func (vm *VirtualMachine) fetch() byte {
	if vm.ip >= vm.chunk.Count() {
		panic(errz.NewRuntimeErrorf(errz.ErrInternal, vm.currentLine(), "truncated instruction"))
	}
	b := vm.chunk.ByteAt(vm.ip)
	vm.ip++
	return b
}

func (vm *VirtualMachine) push(v value.Value) {
	if vm.sp+1 >= StackMax {
		panic(errz.NewRuntimeErrorf(errz.ErrInternal, vm.currentLine(), "stack overflow"))
	}
	vm.sp++
	vm.stack[vm.sp] = v
}

func (vm *VirtualMachine) pop() value.Value {
	if vm.sp < 0 {
		panic(errz.NewRuntimeErrorf(errz.ErrInternal, vm.currentLine(), "stack underflow"))
	}
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = value.Value{}
	vm.sp--
	return v
}

func (vm *VirtualMachine) peek(distance int) value.Value {
	if vm.sp-distance < 0 {
		panic(errz.NewRuntimeErrorf(errz.ErrInternal, vm.currentLine(), "stack underflow"))
	}
	return vm.stack[vm.sp-distance]
}

func (vm *VirtualMachine) currentLine() int {
	if vm.chunk == nil || vm.opIP >= vm.chunk.LineCount() {
		return 0
	}
	return vm.chunk.LineAt(vm.opIP)
}

func (vm *VirtualMachine) traceStep() {
	var sb strings.Builder
	sb.WriteString("          ")
	for i := 0; i <= vm.sp; i++ {
		sb.WriteString("[ ")
		sb.WriteString(vm.stack[i].String())
		sb.WriteString(" ]")
	}
	instr, _ := dis.FormatInstruction(vm.chunk, vm.ip)
	fmt.Fprintf(vm.trace, "%s\n%s\n", sb.String(), instr)
}

func (vm *VirtualMachine) typeError(format string, args ...any) *errz.RuntimeError {
	return errz.NewRuntimeErrorf(errz.ErrType, vm.currentLine(), format, args...)
}

func (vm *VirtualMachine) internalError(format string, args ...any) *errz.RuntimeError {
	return errz.NewRuntimeErrorf(errz.ErrInternal, vm.currentLine(), format, args...)
}

func (vm *VirtualMachine) cancelled(cause error) *errz.RuntimeError {
	return errz.NewRuntimeErrorf(errz.ErrCancelled, vm.currentLine(), "execution cancelled: %v", cause).
		WithCause(cause)
}
