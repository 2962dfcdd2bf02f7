package sqladapter

import "strings"

// MapType translates a SQL column type name to the engine's display type,
// using dialect-specific tables where the dump's spelling is ambiguous.
func MapType(sqlType string, dialect Dialect) string {
	lower := strings.ToLower(sqlType)
	base := lower
	if i := strings.Index(lower, "("); i >= 0 {
		base = lower[:i]
	}
	base = strings.TrimSpace(base)

	switch dialect {
	case DialectPostgreSQL:
		return mapPostgresType(base)
	case DialectMySQL:
		return mapMySQLType(base, lower)
	default:
		return mapGenericType(base)
	}
}

func mapPostgresType(base string) string {
	switch base {
	case "int", "int4", "integer", "serial", "serial4":
		return "int"
	case "bigint", "int8", "bigserial", "serial8":
		return "bigint"
	case "smallint", "int2", "smallserial", "serial2":
		return "smallint"
	case "real", "float4":
		return "float"
	case "double precision", "float8":
		return "double"
	case "decimal", "numeric":
		return "decimal"
	case "varchar", "character varying":
		return "varchar"
	case "char", "character":
		return "char"
	case "text":
		return "text"
	case "timestamp", "timestamptz", "timestamp with time zone", "timestamp without time zone":
		return "timestamp"
	case "date":
		return "date"
	case "time", "timetz":
		return "time"
	case "interval":
		return "interval"
	case "boolean", "bool":
		return "boolean"
	case "bytea":
		return "bytea"
	case "uuid":
		return "uuid"
	case "json", "jsonb":
		return "json"
	}

	if strings.HasSuffix(base, "[]") {
		return mapPostgresType(base[:len(base)-2]) + "[]"
	}

	return base
}

func mapMySQLType(base, full string) string {
	switch base {
	case "int", "integer":
		return "int"
	case "bigint":
		return "bigint"
	case "smallint":
		return "smallint"
	case "mediumint":
		return "mediumint"
	case "tinyint":
		if strings.Contains(full, "tinyint(1)") {
			return "boolean"
		}
		return "tinyint"
	case "float":
		return "float"
	case "double":
		return "double"
	case "decimal", "numeric":
		return "decimal"
	case "varchar":
		return "varchar"
	case "char":
		return "char"
	case "text", "longtext", "mediumtext", "tinytext":
		return "text"
	case "datetime", "timestamp":
		return "timestamp"
	case "date":
		return "date"
	case "time":
		return "time"
	case "year":
		return "year"
	case "blob", "longblob", "mediumblob", "tinyblob":
		return "blob"
	case "binary", "varbinary":
		return "binary"
	case "json":
		return "json"
	case "enum", "set":
		return "enum"
	default:
		return base
	}
}

func mapGenericType(base string) string {
	switch base {
	case "int", "integer":
		return "int"
	case "bigint":
		return "bigint"
	case "smallint":
		return "smallint"
	case "real", "float":
		return "float"
	case "double", "double precision":
		return "double"
	case "decimal", "numeric":
		return "decimal"
	case "varchar", "character varying":
		return "varchar"
	case "char", "character":
		return "char"
	case "text":
		return "text"
	case "timestamp", "datetime":
		return "timestamp"
	case "date":
		return "date"
	case "time":
		return "time"
	case "boolean", "bool":
		return "boolean"
	case "blob":
		return "blob"
	default:
		return base
	}
}
