package vm

import (
	"context"

	"github.com/deepnoodle-ai/loxvm/chunk"
	"github.com/deepnoodle-ai/loxvm/value"
)

// Run the given chunk in a new Virtual Machine and return the result.
func Run(ctx context.Context, c *chunk.Chunk, options ...Option) (value.Value, error) {
	machine := New(options...)
	if _, err := machine.Run(ctx, c); err != nil {
		return value.Nil, err
	}
	if result, exists := machine.TOS(); exists {
		return result, nil
	}
	return value.Nil, nil
}

// Eval compiles and runs source in a new Virtual Machine and returns the
// result.
func Eval(ctx context.Context, source string, options ...Option) (value.Value, error) {
	machine := New(options...)
	if _, err := machine.Interpret(ctx, source); err != nil {
		return value.Nil, err
	}
	if result, exists := machine.TOS(); exists {
		return result, nil
	}
	return value.Nil, nil
}
