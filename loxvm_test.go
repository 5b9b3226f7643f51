package loxvm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/deepnoodle-ai/loxvm/errz"
	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/deepnoodle-ai/loxvm/vm"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"!nil", "true"},
		{"!false", "true"},
		{"!0", "false"},
		{`"a" == "a"`, "true"},
		{`"hi"`, "hi"},
		{"nil", "nil"},
		{"1 / 4", "0.25"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := Eval(ctx, tt.input)
			require.Nil(t, err)
			require.Equal(t, tt.expected, result.String())
		})
	}
}

func TestEvalCompileError(t *testing.T) {
	var diag bytes.Buffer
	_, err := Eval(context.Background(), `"abc`, WithDiagnostics(&diag), WithFilename("x.lox"))
	var errs *errz.CompileErrors
	require.True(t, errors.As(err, &errs))
	require.Equal(t, "x.lox", errs.Errors()[0].Filename)
	require.Equal(t, "[line 1] Error: Unterminated string.\n", diag.String())
}

func TestEvalRuntimeError(t *testing.T) {
	_, err := Eval(context.Background(), "-nil")
	var rerr *errz.RuntimeError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, "Operand must be a number.\n[line 1] in script", rerr.Error())
}

func TestCompileAndRun(t *testing.T) {
	heap := value.NewHeap()
	c, err := Compile(`"x" != "y"`, WithHeap(heap), WithDiagnostics(io.Discard))
	require.Nil(t, err)
	require.Equal(t, 2, heap.Len())

	result, err := Run(context.Background(), c, WithHeap(heap))
	require.Nil(t, err)
	require.Equal(t, value.True, result)
}

func TestEvalOptions(t *testing.T) {
	var trace bytes.Buffer
	var steps int
	result, err := Eval(context.Background(), "2 * 3",
		WithTrace(&trace),
		WithObserver(vm.ObserverFunc(func(vm.StepEvent) bool {
			steps++
			return true
		})),
	)
	require.Nil(t, err)
	require.Equal(t, 6.0, result.AsNumber())
	require.Equal(t, 4, steps)
	require.Contains(t, trace.String(), "MULTIPLY")

	_, err = Eval(context.Background(), "2 * 3", WithInstructionLimit(2))
	require.ErrorContains(t, err, "instruction limit exceeded")
}

func ExampleEval() {
	result, err := Eval(context.Background(), "(1 + 2) * 3 - 4 / 8")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(result)
	// Output: 8.5
}

func ExampleEval_comparison() {
	result, _ := Eval(context.Background(), `!(5 - 4 > 3 * 2 == !nil)`)
	fmt.Println(result)
	// Output: true
}
