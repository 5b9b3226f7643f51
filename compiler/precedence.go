package compiler

import "github.com/deepnoodle-ai/loxvm/internal/token"

// Precedence orders operators from loosest to tightest binding.
type Precedence uint8

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

type parseFn func(*parser)

// rule describes how a token participates in an expression: the handler to
// run when it begins one, the handler to run when it continues one as an
// infix operator, and its infix precedence.
type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is indexed by token type. Tokens without an entry have no handlers
// and PrecNone, so they end an expression.
var rules [token.Count]rule

// The table refers to parser methods that themselves read the table, so it
// is populated in init to avoid an initialization cycle.
func init() {
	rules[token.LEFT_PAREN] = rule{prefix: (*parser).grouping}
	rules[token.MINUS] = rule{prefix: (*parser).unary, infix: (*parser).binary, precedence: PrecTerm}
	rules[token.PLUS] = rule{infix: (*parser).binary, precedence: PrecTerm}
	rules[token.SLASH] = rule{infix: (*parser).binary, precedence: PrecFactor}
	rules[token.STAR] = rule{infix: (*parser).binary, precedence: PrecFactor}
	rules[token.BANG] = rule{prefix: (*parser).unary}
	rules[token.BANG_EQUAL] = rule{infix: (*parser).binary, precedence: PrecEquality}
	rules[token.EQUAL_EQUAL] = rule{infix: (*parser).binary, precedence: PrecEquality}
	rules[token.GREATER] = rule{infix: (*parser).binary, precedence: PrecComparison}
	rules[token.GREATER_EQUAL] = rule{infix: (*parser).binary, precedence: PrecComparison}
	rules[token.LESS] = rule{infix: (*parser).binary, precedence: PrecComparison}
	rules[token.LESS_EQUAL] = rule{infix: (*parser).binary, precedence: PrecComparison}
	rules[token.STRING] = rule{prefix: (*parser).stringLiteral}
	rules[token.NUMBER] = rule{prefix: (*parser).number}
	rules[token.FALSE] = rule{prefix: (*parser).literal}
	rules[token.NIL] = rule{prefix: (*parser).literal}
	rules[token.TRUE] = rule{prefix: (*parser).literal}
}

func getRule(t token.Type) *rule {
	return &rules[t]
}
