package sqladapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexerSimpleCreateTable(t *testing.T) {
	tokens := newSQLLexer("CREATE TABLE users (id INT);").tokenize()

	assert.Equal(t, sqlCreate, tokens[0].Kind)
	assert.Equal(t, sqlTable, tokens[1].Kind)
	assert.Equal(t, sqlToken{Kind: sqlIdent, Text: "users"}, tokens[2])
	assert.Equal(t, sqlLParen, tokens[3].Kind)
	assert.Equal(t, sqlToken{Kind: sqlIdent, Text: "id"}, tokens[4])
	assert.Equal(t, sqlToken{Kind: sqlIdent, Text: "INT"}, tokens[5])
	assert.Equal(t, sqlRParen, tokens[6].Kind)
	assert.Equal(t, sqlSemicolon, tokens[7].Kind)
}

func TestLexerQuotedIdentifiers(t *testing.T) {
	tokens := newSQLLexer(`CREATE TABLE "User Table" (` + "`column name`" + ` INT);`).tokenize()

	assert.Equal(t, "User Table", tokens[2].Text)
	assert.Equal(t, "column name", tokens[4].Text)
}

func TestLexerComments(t *testing.T) {
	tokens := newSQLLexer("-- comment\nCREATE /* block */ TABLE t (id INT);").tokenize()

	assert.Equal(t, sqlCreate, tokens[0].Kind)
	assert.Equal(t, sqlTable, tokens[1].Kind)
}

func TestLexerBracketIdentifier(t *testing.T) {
	tokens := newSQLLexer("CREATE TABLE [Orders] ([Id] INT);").tokenize()

	assert.Equal(t, "Orders", tokens[2].Text)
	assert.Equal(t, "Id", tokens[4].Text)
}
