package compiler

import (
	"errors"
	"strconv"

	"github.com/deepnoodle-ai/loxvm/internal/token"
	"github.com/deepnoodle-ai/loxvm/op"
	"github.com/deepnoodle-ai/loxvm/value"
)

func (p *parser) expression() {
	p.parsePrecedence(PrecAssignment)
}

// parsePrecedence parses an expression whose operators all bind at least as
// tightly as prec.
func (p *parser) parsePrecedence(prec Precedence) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		p.errorAtCurrent("Expression nested too deeply.")
		return
	}

	p.advance()
	prefix := getRule(p.previous.Type).prefix
	if prefix == nil {
		p.errorAtPrevious("Expect expression.")
		return
	}
	prefix(p)

	for prec <= getRule(p.current.Type).precedence {
		p.advance()
		getRule(p.previous.Type).infix(p)
	}
}

func (p *parser) number() {
	n, err := strconv.ParseFloat(p.previous.Literal, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		p.errorAtPrevious("Invalid number literal.")
		return
	}
	p.emitConstant(value.Number(n))
}

func (p *parser) stringLiteral() {
	lexeme := p.previous.Literal
	chars := lexeme[1 : len(lexeme)-1]
	p.emitConstant(value.FromObject(p.heap.CopyString(chars)))
}

func (p *parser) literal() {
	switch p.previous.Type {
	case token.FALSE:
		p.emitOp(op.False)
	case token.NIL:
		p.emitOp(op.Nil)
	case token.TRUE:
		p.emitOp(op.True)
	}
}

func (p *parser) grouping() {
	p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (p *parser) unary() {
	operator := p.previous.Type

	// The operand binds tighter than any binary operator.
	p.parsePrecedence(PrecUnary)

	switch operator {
	case token.BANG:
		p.emitOp(op.Not)
	case token.MINUS:
		p.emitOp(op.Negate)
	}
}

func (p *parser) binary() {
	operator := p.previous.Type
	r := getRule(operator)

	// One level higher makes the operator left-associative.
	p.parsePrecedence(r.precedence + 1)

	switch operator {
	case token.BANG_EQUAL:
		p.emitOps(op.Equal, op.Not)
	case token.EQUAL_EQUAL:
		p.emitOp(op.Equal)
	case token.GREATER:
		p.emitOp(op.Greater)
	case token.GREATER_EQUAL:
		p.emitOps(op.Less, op.Not)
	case token.LESS:
		p.emitOp(op.Less)
	case token.LESS_EQUAL:
		p.emitOps(op.Greater, op.Not)
	case token.PLUS:
		p.emitOp(op.Add)
	case token.MINUS:
		p.emitOp(op.Subtract)
	case token.STAR:
		p.emitOp(op.Multiply)
	case token.SLASH:
		p.emitOp(op.Divide)
	}
}
