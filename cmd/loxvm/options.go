package main

import (
	"errors"
	"io"
	"os"

	"github.com/deepnoodle-ai/loxvm/chunk"
	"github.com/deepnoodle-ai/loxvm/compiler"
	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/deepnoodle-ai/loxvm/vm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// input is the program selected on the command line. Exactly one of source
// and program is set.
type input struct {
	name    string
	source  string
	program []byte
}

// chunk returns the compiled form of the input. Source is compiled into heap
// and compile errors are printed to diagnostics.
func (in *input) chunk(heap *value.Heap, diagnostics io.Writer, logger zerolog.Logger) (*chunk.Chunk, error) {
	if in.program != nil {
		return chunk.Unmarshal(in.program, heap)
	}
	opts := []compiler.Option{
		compiler.WithHeap(heap),
		compiler.WithDiagnostics(diagnostics),
		compiler.WithLogger(logger),
	}
	if in.name != "" {
		opts = append(opts, compiler.WithFilename(in.name))
	}
	return compiler.Compile(in.source, opts...)
}

func getVMOptions(cmd *cobra.Command, logger zerolog.Logger) []vm.Option {
	opts := []vm.Option{
		vm.WithLogger(logger),
		vm.WithDiagnostics(cmd.ErrOrStderr()),
	}
	if viper.GetBool("trace") {
		opts = append(opts, vm.WithTrace(cmd.ErrOrStderr()))
	}
	if limit := viper.GetInt64("instruction-limit"); limit > 0 {
		opts = append(opts, vm.WithInstructionLimit(limit))
	}
	return opts
}

func shouldRunRepl(cmd *cobra.Command, args []string) bool {
	if viper.GetBool("no-repl") || viper.GetBool("stdin") {
		return false
	}
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		return false
	}
	if len(args) > 0 {
		return false
	}
	return isTerminalIO()
}

func getInput(cmd *cobra.Command, args []string) (*input, error) {
	// Determine what is to be executed. There three possibilities:
	// 1. --code <code>
	// 2. --stdin (read code from stdin)
	// 3. path as args[0], holding source or a built program
	var codeFlagSet bool
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeFlagSet = true
	}
	var stdinFlagSet bool
	if f := cmd.Flags().Lookup("stdin"); f != nil && f.Changed {
		stdinFlagSet = true
	}
	pathSupplied := len(args) > 0
	// Error if multiple input sources are specified
	if pathSupplied && (codeFlagSet || stdinFlagSet) {
		return nil, errors.New("multiple input sources specified")
	} else if codeFlagSet && stdinFlagSet {
		return nil, errors.New("multiple input sources specified")
	}
	if stdinFlagSet {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		return newInput("", data), nil
	} else if pathSupplied {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		return newInput(args[0], data), nil
	}
	if !codeFlagSet {
		return nil, errors.New("no input provided")
	}
	code, err := cmd.Flags().GetString("code")
	if err != nil {
		return nil, err
	}
	return &input{source: code}, nil
}

func newInput(name string, data []byte) *input {
	if chunk.IsProgram(data) {
		return &input{name: name, program: data}
	}
	return &input{name: name, source: string(data)}
}
