// Package loxvm compiles and evaluates single expressions on a bytecode
// virtual machine.
//
//	result, err := loxvm.Eval(ctx, "(1 + 2) * 3")
//
// Compile errors are returned as *errz.CompileErrors and are also printed,
// one per line, to the diagnostics writer (os.Stderr unless WithDiagnostics
// is given). Runtime errors are returned as *errz.RuntimeError.
package loxvm

import (
	"context"
	"io"

	"github.com/deepnoodle-ai/loxvm/chunk"
	"github.com/deepnoodle-ai/loxvm/compiler"
	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/deepnoodle-ai/loxvm/vm"
	"github.com/rs/zerolog"
)

// Option configures a compilation or evaluation.
type Option func(*options)

type options struct {
	filename         string
	diagnostics      io.Writer
	logger           *zerolog.Logger
	trace            io.Writer
	instructionLimit int64
	observer         vm.Observer
	heap             *value.Heap
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerOpts() []compiler.Option {
	var opts []compiler.Option
	if o.filename != "" {
		opts = append(opts, compiler.WithFilename(o.filename))
	}
	if o.diagnostics != nil {
		opts = append(opts, compiler.WithDiagnostics(o.diagnostics))
	}
	if o.logger != nil {
		opts = append(opts, compiler.WithLogger(*o.logger))
	}
	if o.heap != nil {
		opts = append(opts, compiler.WithHeap(o.heap))
	}
	return opts
}

func (o *options) vmOpts() []vm.Option {
	var opts []vm.Option
	if o.diagnostics != nil {
		opts = append(opts, vm.WithDiagnostics(o.diagnostics))
	}
	if o.logger != nil {
		opts = append(opts, vm.WithLogger(*o.logger))
	}
	if o.trace != nil {
		opts = append(opts, vm.WithTrace(o.trace))
	}
	if o.instructionLimit > 0 {
		opts = append(opts, vm.WithInstructionLimit(o.instructionLimit))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	if o.heap != nil {
		opts = append(opts, vm.WithHeap(o.heap))
	}
	return opts
}

// WithFilename sets the filename attached to compile errors.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithDiagnostics sets where compile errors are printed.
func WithDiagnostics(w io.Writer) Option {
	return func(o *options) {
		o.diagnostics = w
	}
}

// WithLogger sets the logger used by the compiler and the VM.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithTrace writes an execution trace to w.
func WithTrace(w io.Writer) Option {
	return func(o *options) {
		o.trace = w
	}
}

// WithInstructionLimit bounds the number of instructions an evaluation may
// execute.
func WithInstructionLimit(limit int64) Option {
	return func(o *options) {
		o.instructionLimit = limit
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithHeap sets the heap that string objects are allocated in.
func WithHeap(heap *value.Heap) Option {
	return func(o *options) {
		o.heap = heap
	}
}

// Compile compiles source into a chunk. The chunk must not be run if an
// error is returned.
func Compile(source string, opts ...Option) (*chunk.Chunk, error) {
	o := collectOptions(opts...)
	return compiler.Compile(source, o.compilerOpts()...)
}

// Run executes a compiled chunk in a new VM and returns its result.
func Run(ctx context.Context, c *chunk.Chunk, opts ...Option) (value.Value, error) {
	o := collectOptions(opts...)
	return vm.Run(ctx, c, o.vmOpts()...)
}

// Eval compiles and executes source in a new VM and returns its result.
func Eval(ctx context.Context, source string, opts ...Option) (value.Value, error) {
	o := collectOptions(opts...)
	machine := vm.New(o.vmOpts()...)
	var copts []compiler.Option
	if o.filename != "" {
		copts = append(copts, compiler.WithFilename(o.filename))
	}
	if _, err := machine.Interpret(ctx, source, copts...); err != nil {
		return value.Nil, err
	}
	result, _ := machine.TOS()
	return result, nil
}
