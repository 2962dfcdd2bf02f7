package sqladapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresTypes(t *testing.T) {
	assert.Equal(t, "int", MapType("SERIAL", DialectPostgreSQL))
	assert.Equal(t, "varchar", MapType("VARCHAR(255)", DialectPostgreSQL))
	assert.Equal(t, "timestamp", MapType("TIMESTAMPTZ", DialectPostgreSQL))
	assert.Equal(t, "json", MapType("JSONB", DialectPostgreSQL))
}

func TestMySQLTypes(t *testing.T) {
	assert.Equal(t, "int", MapType("INT", DialectMySQL))
	assert.Equal(t, "boolean", MapType("TINYINT(1)", DialectMySQL))
	assert.Equal(t, "tinyint", MapType("TINYINT(4)", DialectMySQL))
	assert.Equal(t, "timestamp", MapType("DATETIME", DialectMySQL))
}

func TestGenericTypes(t *testing.T) {
	assert.Equal(t, "int", MapType("INTEGER", DialectGeneric))
	assert.Equal(t, "boolean", MapType("BOOL", DialectGeneric))
}
