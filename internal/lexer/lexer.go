// Package lexer converts source text into a stream of tokens.
//
// The lexer is pull-based: each call to Next scans exactly one token. It never
// fails outright. Malformed input produces ERROR tokens whose Literal holds
// the message, and scanning resumes with the following character.
package lexer

import (
	"github.com/deepnoodle-ai/loxvm/internal/token"
)

const (
	msgUnterminatedString  = "Unterminated string."
	msgUnexpectedCharacter = "Unexpected character."
)

// Lexer holds our object-state.
type Lexer struct {
	// The source being lexed
	input string

	// Offset of the first byte of the token being scanned
	start int

	// Offset of the next byte to read
	current int

	// Current line number, 1-indexed
	line int
}

// New creates a Lexer instance from the given source.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Source returns the input being lexed.
func (l *Lexer) Source() string {
	return l.input
}

// Line returns the line the lexer is currently positioned on.
func (l *Lexer) Line() int {
	return l.line
}

// Next scans and returns the next token. Once the end of the input has been
// reached, every subsequent call returns an EOF token.
func (l *Lexer) Next() token.Token {
	l.skipWhitespace()
	l.start = l.current

	if l.isAtEnd() {
		return l.makeToken(token.EOF)
	}

	c := l.advance()
	if isAlpha(c) {
		return l.identifier()
	}
	if isDigit(c) {
		return l.number()
	}

	switch c {
	case '(':
		return l.makeToken(token.LEFT_PAREN)
	case ')':
		return l.makeToken(token.RIGHT_PAREN)
	case '{':
		return l.makeToken(token.LEFT_BRACE)
	case '}':
		return l.makeToken(token.RIGHT_BRACE)
	case ';':
		return l.makeToken(token.SEMICOLON)
	case ',':
		return l.makeToken(token.COMMA)
	case '.':
		return l.makeToken(token.DOT)
	case '-':
		return l.makeToken(token.MINUS)
	case '+':
		return l.makeToken(token.PLUS)
	case '/':
		return l.makeToken(token.SLASH)
	case '*':
		return l.makeToken(token.STAR)
	case '!':
		return l.makeTwoCharToken('=', token.BANG_EQUAL, token.BANG)
	case '=':
		return l.makeTwoCharToken('=', token.EQUAL_EQUAL, token.EQUAL)
	case '<':
		return l.makeTwoCharToken('=', token.LESS_EQUAL, token.LESS)
	case '>':
		return l.makeTwoCharToken('=', token.GREATER_EQUAL, token.GREATER)
	case '"':
		return l.string()
	}
	return l.errorToken(msgUnexpectedCharacter)
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.input)
}

func (l *Lexer) advance() byte {
	c := l.input[l.current]
	l.current++
	return c
}

// peek returns the next unread byte without consuming it, or 0 at the end.
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.input[l.current]
}

// peekNext looks one byte past peek.
func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.input) {
		return 0
	}
	return l.input[l.current+1]
}

// match consumes the next byte only if it equals expected.
func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.input[l.current] != expected {
		return false
	}
	l.current++
	return true
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.line++
			l.advance()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			// A comment goes until the end of the line
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) identifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	return l.makeToken(token.LookupIdentifier(l.input[l.start:l.current]))
}

func (l *Lexer) number() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	// A trailing '.' is left for the next token
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.makeToken(token.NUMBER)
}

func (l *Lexer) string() token.Token {
	for l.peek() != '"' && !l.isAtEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}
	if l.isAtEnd() {
		return l.errorToken(msgUnterminatedString)
	}
	// The closing quote
	l.advance()
	return l.makeToken(token.STRING)
}

func (l *Lexer) makeTwoCharToken(second byte, double, single token.Type) token.Token {
	if l.match(second) {
		return l.makeToken(double)
	}
	return l.makeToken(single)
}

func (l *Lexer) makeToken(typ token.Type) token.Token {
	return token.Token{
		Type:    typ,
		Literal: l.input[l.start:l.current],
		Start:   l.start,
		Line:    l.line,
	}
}

func (l *Lexer) errorToken(message string) token.Token {
	return token.Token{
		Type:    token.ERROR,
		Literal: message,
		Start:   l.start,
		Line:    l.line,
	}
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
