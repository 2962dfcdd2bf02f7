package sqladapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPostgres(t *testing.T) {
	sql := "-- PostgreSQL database dump\nCREATE TABLE users (id SERIAL);"
	assert.Equal(t, DialectPostgreSQL, Detect(sql))
}

func TestDetectMySQL(t *testing.T) {
	sql := "-- MySQL dump\nCREATE TABLE users (id INT AUTO_INCREMENT);"
	assert.Equal(t, DialectMySQL, Detect(sql))
}

func TestDetectGeneric(t *testing.T) {
	sql := "CREATE TABLE users (id INTEGER PRIMARY KEY);"
	assert.Equal(t, DialectGeneric, Detect(sql))
}

func TestResolveAutoDelegatesToDetect(t *testing.T) {
	sql := "CREATE TABLE t (id INT UNSIGNED);"
	assert.Equal(t, DialectMySQL, DialectAuto.Resolve(sql))
}

func TestResolveConcreteDialectPassesThrough(t *testing.T) {
	sql := "CREATE TABLE t (id SERIAL);"
	assert.Equal(t, DialectMySQL, DialectMySQL.Resolve(sql))
}
