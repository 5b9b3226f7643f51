// Package compiler turns source text directly into a chunk of bytecode.
//
// Compilation is single-pass: a Pratt parser pulls tokens from the lexer with
// one token of lookahead and emits instructions as it recognizes each
// expression. No syntax tree is built.
//
// # Error Handling
//
// The first error reported while the parser is in a clean state is printed
// to the diagnostics writer and puts the parser into panic mode. Further
// errors are swallowed while in panic mode. The grammar is a single
// expression, so there is no statement boundary to resynchronize on and
// panic mode lasts until the end of the compilation.
package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/deepnoodle-ai/loxvm/chunk"
	"github.com/deepnoodle-ai/loxvm/dis"
	"github.com/deepnoodle-ai/loxvm/errz"
	"github.com/deepnoodle-ai/loxvm/internal/lexer"
	"github.com/deepnoodle-ai/loxvm/internal/token"
	"github.com/deepnoodle-ai/loxvm/op"
	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/rs/zerolog"
)

// DefaultMaxDepth is the default maximum expression nesting depth.
const DefaultMaxDepth = 500

// Option is a configuration function for a compilation.
type Option func(*parser)

// WithHeap sets the heap that string constants are allocated in. A VM that
// runs the resulting chunk should own the same heap.
func WithHeap(heap *value.Heap) Option {
	return func(p *parser) {
		p.heap = heap
	}
}

// WithDiagnostics sets where compile errors are printed. Defaults to
// os.Stderr. Pass io.Discard to silence them.
func WithDiagnostics(w io.Writer) Option {
	return func(p *parser) {
		p.diagnostics = w
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *parser) {
		p.logger = logger
	}
}

// WithFilename sets the source filename attached to compile errors.
func WithFilename(filename string) Option {
	return func(p *parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum expression nesting depth.
// This prevents stack exhaustion on deeply nested input.
func WithMaxDepth(depth int) Option {
	return func(p *parser) {
		p.maxDepth = depth
	}
}

// parser holds the state of one compilation. It is discarded when
// compilation ends.
type parser struct {
	lexer    *lexer.Lexer
	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool

	chunk *chunk.Chunk
	heap  *value.Heap

	diagnostics io.Writer
	logger      zerolog.Logger
	filename    string
	errors      errz.CompileErrors

	depth    int
	maxDepth int
}

// Compile compiles source, which must hold a single expression, into a new
// chunk that ends with a RETURN instruction.
//
// The returned chunk is never nil. When the error is non-nil it is an
// *errz.CompileErrors listing every reported diagnostic, and the chunk is
// partial and must not be executed.
func Compile(source string, opts ...Option) (*chunk.Chunk, error) {
	p := &parser{
		lexer:       lexer.New(source),
		chunk:       chunk.New(),
		diagnostics: os.Stderr,
		logger:      zerolog.Nop(),
		maxDepth:    DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.heap == nil {
		p.heap = value.NewHeap()
	}

	p.advance()
	p.expression()
	p.consume(token.EOF, "Expect end of expression.")
	p.end()

	if p.hadError {
		return p.chunk, &p.errors
	}
	return p.chunk, nil
}

func (p *parser) end() {
	p.emitOp(op.Return)
	if p.hadError {
		p.logger.Debug().
			Str("filename", p.filename).
			Int("errors", p.errors.Len()).
			Msg("compilation failed")
		return
	}
	stats := p.chunk.Stats()
	p.logger.Debug().
		Str("filename", p.filename).
		Int("instructions", stats.InstructionCount).
		Int("bytes", stats.ByteCount).
		Int("constants", stats.ConstantCount).
		Msg("compiled chunk")

	if p.logger.GetLevel() <= zerolog.TraceLevel {
		for offset := 0; offset < p.chunk.Count(); {
			var line string
			line, offset = dis.FormatInstruction(p.chunk, offset)
			p.logger.Trace().Msg(line)
		}
	}
}

// Token handling

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lexer.Next()
		if p.current.Type != token.ERROR {
			break
		}
		p.errorAtCurrent(p.current.Literal)
	}
}

func (p *parser) consume(t token.Type, message string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

// Emitting

func (p *parser) emitByte(b byte) {
	p.chunk.Write(b, p.previous.Line)
}

func (p *parser) emitOp(code op.Code) {
	p.chunk.WriteOp(code, p.previous.Line)
}

func (p *parser) emitOps(codes ...op.Code) {
	for _, code := range codes {
		p.emitOp(code)
	}
}

func (p *parser) emitConstant(v value.Value) {
	p.emitOp(op.Constant)
	p.emitByte(p.makeConstant(v))
}

// makeConstant adds v to the constant pool. When the pool is full the error
// is reported and index 0 is used so that compilation can continue.
func (p *parser) makeConstant(v value.Value) byte {
	index, err := p.chunk.AddConstant(v)
	if err != nil {
		p.errorAtPrevious("Too many constants in one chunk.")
		return 0
	}
	return byte(index)
}

// Errors

func (p *parser) errorAtCurrent(message string) {
	p.errorAt(p.current, message)
}

func (p *parser) errorAtPrevious(message string) {
	p.errorAt(p.previous, message)
}

func (p *parser) errorAt(tok token.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	err := &errz.CompileError{
		Filename: p.filename,
		Line:     tok.Line,
		Message:  message,
	}
	switch tok.Type {
	case token.EOF:
		err.Where = " at end"
	case token.ERROR:
		// The lexer's message already describes the problem.
	default:
		err.Where = fmt.Sprintf(" at '%s'", tok.Literal)
	}
	p.errors.Append(err)
	fmt.Fprintln(p.diagnostics, err.Error())
}
