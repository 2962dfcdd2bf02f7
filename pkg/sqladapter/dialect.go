// Package sqladapter converts a SQL dump's CREATE TABLE / ALTER TABLE
// statements into a DSL schema, so existing relational databases can seed a
// diagram without hand-writing the source text.
package sqladapter

import "strings"

// Dialect identifies which SQL variant's type names and syntax extensions
// to interpret a dump with.
type Dialect int

const (
	DialectAuto Dialect = iota
	DialectGeneric
	DialectPostgreSQL
	DialectMySQL
)

// ParseDialect maps a CLI/config string onto a Dialect.
func ParseDialect(s string) (Dialect, bool) {
	switch strings.ToLower(s) {
	case "auto":
		return DialectAuto, true
	case "generic":
		return DialectGeneric, true
	case "postgres", "postgresql":
		return DialectPostgreSQL, true
	case "mysql":
		return DialectMySQL, true
	default:
		return 0, false
	}
}

// Detect sniffs dump content for dialect-identifying header comments or
// type-name idioms.
func Detect(content string) Dialect {
	lower := strings.ToLower(content)

	switch {
	case strings.Contains(lower, "postgresql database dump"),
		strings.Contains(lower, "pg_dump"),
		strings.Contains(lower, "-- postgres"):
		return DialectPostgreSQL
	case strings.Contains(lower, "mysql dump"),
		strings.Contains(lower, "mysqldump"),
		strings.Contains(lower, "-- mysql"):
		return DialectMySQL
	}

	switch {
	case strings.Contains(lower, "serial"),
		strings.Contains(lower, "text[]"),
		strings.Contains(lower, "::text"),
		strings.Contains(lower, "timestamptz"):
		return DialectPostgreSQL
	case strings.Contains(lower, "auto_increment"),
		strings.Contains(lower, "tinyint"),
		strings.Contains(lower, "engine="),
		strings.Contains(lower, "unsigned"):
		return DialectMySQL
	}

	return DialectGeneric
}

// Resolve turns DialectAuto into a concrete dialect by sniffing content;
// any other dialect passes through unchanged.
func (d Dialect) Resolve(content string) Dialect {
	if d == DialectAuto {
		return Detect(content)
	}
	return d
}
