package lexer

import (
	"strconv"
	"testing"

	"github.com/deepnoodle-ai/loxvm/internal/token"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

type expectedToken struct {
	expectedType    token.Type
	expectedLiteral string
}

func checkTokens(t *testing.T, input string, tests []expectedToken) {
	t.Helper()
	l := New(input)
	for i, tt := range tests {
		tok := l.Next()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - Literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestArithmetic(t *testing.T) {
	checkTokens(t, "1 + 2 * 3", []expectedToken{
		{token.NUMBER, "1"},
		{token.PLUS, "+"},
		{token.NUMBER, "2"},
		{token.STAR, "*"},
		{token.NUMBER, "3"},
		{token.EOF, ""},
	})
}

func TestNextToken1(t *testing.T) {
	checkTokens(t, "(){};,.-+/*! != = == > >= < <=", []expectedToken{
		{token.LEFT_PAREN, "("},
		{token.RIGHT_PAREN, ")"},
		{token.LEFT_BRACE, "{"},
		{token.RIGHT_BRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.COMMA, ","},
		{token.DOT, "."},
		{token.MINUS, "-"},
		{token.PLUS, "+"},
		{token.SLASH, "/"},
		{token.STAR, "*"},
		{token.BANG, "!"},
		{token.BANG_EQUAL, "!="},
		{token.EQUAL, "="},
		{token.EQUAL_EQUAL, "=="},
		{token.GREATER, ">"},
		{token.GREATER_EQUAL, ">="},
		{token.LESS, "<"},
		{token.LESS_EQUAL, "<="},
		{token.EOF, ""},
	})
}

func TestTwoCharFallback(t *testing.T) {
	// The probe must not swallow the following character
	checkTokens(t, "!!=<>=>", []expectedToken{
		{token.BANG, "!"},
		{token.BANG_EQUAL, "!="},
		{token.LESS, "<"},
		{token.GREATER_EQUAL, ">="},
		{token.GREATER, ">"},
		{token.EOF, ""},
	})
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := `and class else false for fun if nil or print return super this true var while
andy _x x1 classic`
	checkTokens(t, input, []expectedToken{
		{token.AND, "and"},
		{token.CLASS, "class"},
		{token.ELSE, "else"},
		{token.FALSE, "false"},
		{token.FOR, "for"},
		{token.FUN, "fun"},
		{token.IF, "if"},
		{token.NIL, "nil"},
		{token.OR, "or"},
		{token.PRINT, "print"},
		{token.RETURN, "return"},
		{token.SUPER, "super"},
		{token.THIS, "this"},
		{token.TRUE, "true"},
		{token.VAR, "var"},
		{token.WHILE, "while"},
		{token.IDENTIFIER, "andy"},
		{token.IDENTIFIER, "_x"},
		{token.IDENTIFIER, "x1"},
		{token.IDENTIFIER, "classic"},
		{token.EOF, ""},
	})
}

func TestNumbers(t *testing.T) {
	checkTokens(t, "10 1.5 0.25 7. .5 3.x", []expectedToken{
		{token.NUMBER, "10"},
		{token.NUMBER, "1.5"},
		{token.NUMBER, "0.25"},
		{token.NUMBER, "7"},
		{token.DOT, "."},
		{token.DOT, "."},
		{token.NUMBER, "5"},
		{token.NUMBER, "3"},
		{token.DOT, "."},
		{token.IDENTIFIER, "x"},
		{token.EOF, ""},
	})
}

func TestString(t *testing.T) {
	checkTokens(t, `"foo bar" "" "a\n"`, []expectedToken{
		{token.STRING, `"foo bar"`},
		{token.STRING, `""`},
		{token.STRING, `"a\n"`},
		{token.EOF, ""},
	})
}

func TestMultiLineString(t *testing.T) {
	l := New("\"one\ntwo\" x")
	tok := l.Next()
	require.Equal(t, token.STRING, tok.Type)
	require.Equal(t, "\"one\ntwo\"", tok.Literal)
	require.Equal(t, 2, tok.Line)
	tok = l.Next()
	require.Equal(t, token.IDENTIFIER, tok.Type)
	require.Equal(t, 2, tok.Line)
}

func TestUnterminatedString(t *testing.T) {
	l := New("\"abc\ndef")
	tok := l.Next()
	require.Equal(t, token.ERROR, tok.Type)
	require.Equal(t, "Unterminated string.", tok.Literal)
	require.Equal(t, 2, tok.Line)
	require.Equal(t, token.EOF, l.Next().Type)
}

func TestUnexpectedCharacter(t *testing.T) {
	checkTokens(t, "1 @ 2 # $", []expectedToken{
		{token.NUMBER, "1"},
		{token.ERROR, "Unexpected character."},
		{token.NUMBER, "2"},
		{token.ERROR, "Unexpected character."},
		{token.ERROR, "Unexpected character."},
		{token.EOF, ""},
	})
}

func TestSimpleComment(t *testing.T) {
	input := `1 // This is a comment
// This is still a comment
+ 2 // This is a final comment`
	l := New(input)
	tests := []struct {
		typ  token.Type
		line int
	}{
		{token.NUMBER, 1},
		{token.PLUS, 3},
		{token.NUMBER, 3},
		{token.EOF, 3},
	}
	for i, tt := range tests {
		tok := l.Next()
		require.Equal(t, tt.typ, tok.Type, "tests[%d]", i)
		require.Equal(t, tt.line, tok.Line, "tests[%d]", i)
	}
}

func TestSlashIsNotComment(t *testing.T) {
	checkTokens(t, "4 / 2", []expectedToken{
		{token.NUMBER, "4"},
		{token.SLASH, "/"},
		{token.NUMBER, "2"},
		{token.EOF, ""},
	})
}

func TestTokenOffsets(t *testing.T) {
	input := "  (12 + ab)"
	l := New(input)
	for {
		tok := l.Next()
		if tok.Type == token.EOF {
			require.Equal(t, len(input), tok.Start)
			break
		}
		require.Equal(t, input[tok.Start:tok.Start+tok.Length()], tok.Literal)
	}
}

func TestEOFIsIdempotent(t *testing.T) {
	l := New("1")
	require.Equal(t, token.NUMBER, l.Next().Type)
	for i := 0; i < 5; i++ {
		require.Equal(t, token.EOF, l.Next().Type)
	}
}

func TestPropertyScanningTerminates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every input ends in repeated EOF", prop.ForAll(
		func(input string) bool {
			l := New(input)
			// Every token consumes at least one byte, so len+1 calls suffice
			var tok token.Token
			for i := 0; i <= len(input); i++ {
				tok = l.Next()
				if tok.Type == token.EOF {
					break
				}
			}
			if tok.Type != token.EOF {
				return false
			}
			return l.Next().Type == token.EOF && l.Next().Type == token.EOF
		},
		gen.AnyString(),
	))

	properties.Property("numbers scan as a single token", prop.ForAll(
		func(whole uint32, frac uint16) bool {
			input := formatNumber(whole, frac)
			tok := New(input).Next()
			return tok.Type == token.NUMBER && tok.Literal == input
		},
		gen.UInt32(),
		gen.UInt16(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func formatNumber(whole uint32, frac uint16) string {
	s := strconv.FormatUint(uint64(whole), 10)
	if frac%2 == 0 {
		return s
	}
	return s + "." + strconv.FormatUint(uint64(frac), 10)
}
