package schema

import (
	"reflect"
	"strings"
	"time"
)

// TypeMapper maps Go field types to PostgreSQL column types.
type TypeMapper struct{}

func NewTypeMapper() *TypeMapper {
	return &TypeMapper{}
}

// GoTypeToPostgreSQL returns the column type for t, looking through one
// pointer. It returns "" when there is no implicit mapping; the tag must
// then name a type.
func (tm *TypeMapper) GoTypeToPostgreSQL(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == reflect.TypeFor[time.Time]() {
		return "timestamp with time zone"
	}

	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int8, reflect.Int16, reflect.Uint8:
		return "smallint"
	case reflect.Int32, reflect.Int, reflect.Uint16:
		return "integer"
	case reflect.Int64, reflect.Uint32, reflect.Uint64:
		return "bigint"
	case reflect.Float32:
		return "real"
	case reflect.Float64:
		return "double precision"
	case reflect.String:
		return "text"
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "bytea"
		}
	}

	return ""
}

// IsNullable reports whether a field of type t can hold NULL. Optional
// attributes are pointers.
func IsNullable(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer
}

// QuoteIdent quotes a PostgreSQL identifier. Table names such as "user" are
// reserved words and must always be quoted.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
