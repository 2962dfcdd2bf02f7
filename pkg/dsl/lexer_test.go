package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, input string) []Token {
	t.Helper()
	toks, err := NewLexer(input).Tokenize()
	require.NoError(t, err)
	return toks
}

func TestLexerBasicTokens(t *testing.T) {
	toks := tokenize(t, "entity User { }")
	assert.Equal(t, []Token{
		{Kind: TokIdent, Text: "entity"},
		{Kind: TokIdent, Text: "User"},
		{Kind: TokLBrace},
		{Kind: TokRBrace},
		{Kind: TokEOF},
	}, toks)
}

func TestLexerUnicodeIdent(t *testing.T) {
	toks := tokenize(t, "entity ユーザー { 名前 string }")
	assert.Equal(t, Token{Kind: TokIdent, Text: "ユーザー"}, toks[1])
	assert.Equal(t, Token{Kind: TokIdent, Text: "名前"}, toks[3])
}

func TestLexerComments(t *testing.T) {
	toks := tokenize(t, "# comment\nentity User { # inline\n}")
	assert.Equal(t, []Token{
		{Kind: TokIdent, Text: "entity"},
		{Kind: TokIdent, Text: "User"},
		{Kind: TokLBrace},
		{Kind: TokRBrace},
		{Kind: TokEOF},
	}, toks)
}

func TestLexerCardinalityTokens(t *testing.T) {
	toks := tokenize(t, "1 0..1 * 1..*")
	assert.Equal(t, []Token{
		{Kind: TokNum, Num: 1},
		{Kind: TokNum, Num: 0},
		{Kind: TokDotDot},
		{Kind: TokNum, Num: 1},
		{Kind: TokStar},
		{Kind: TokNum, Num: 1},
		{Kind: TokDotDot},
		{Kind: TokStar},
		{Kind: TokEOF},
	}, toks)
}

func TestLexerSymbols(t *testing.T) {
	toks := tokenize(t, "-- -> : = @ ;")
	assert.Equal(t, []Token{
		{Kind: TokDash},
		{Kind: TokArrow},
		{Kind: TokColon},
		{Kind: TokEq},
		{Kind: TokAt},
		{Kind: TokSemicolon},
		{Kind: TokEOF},
	}, toks)
}

func TestLexerStringEscapes(t *testing.T) {
	toks := tokenize(t, `"hello\nworld"`)
	assert.Equal(t, Token{Kind: TokStr, Text: "hello\nworld"}, toks[0])
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := NewLexer(`"unterminated`).Tokenize()
	assert.Error(t, err)
}
