package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoTypeToPostgreSQL(t *testing.T) {
	tm := NewTypeMapper()

	tests := []struct {
		name   string
		goType reflect.Type
		want   string
	}{
		{"surrogate key", reflect.TypeFor[int](), "integer"},
		{"active flag", reflect.TypeFor[bool](), "boolean"},
		{"name", reflect.TypeFor[string](), "text"},
		{"optional measurement", reflect.TypeFor[*float64](), "double precision"},
		{"optional text", reflect.TypeFor[*string](), "text"},
		{"optional reference", reflect.TypeFor[*int](), "integer"},
		{"small", reflect.TypeFor[int16](), "smallint"},
		{"big", reflect.TypeFor[int64](), "bigint"},
		{"unsigned", reflect.TypeFor[uint32](), "bigint"},
		{"single precision", reflect.TypeFor[float32](), "real"},
		{"timestamp", reflect.TypeFor[time.Time](), "timestamp with time zone"},
		{"bytes", reflect.TypeFor[[]byte](), "bytea"},
		{"relationship slice", reflect.TypeFor[[]struct{ ID int }](), ""},
		{"struct", reflect.TypeFor[struct{ A int }](), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tm.GoTypeToPostgreSQL(tt.goType))
		})
	}
}

func TestIsNullable(t *testing.T) {
	assert.False(t, IsNullable(reflect.TypeFor[string]()))
	assert.False(t, IsNullable(reflect.TypeFor[int]()))
	assert.True(t, IsNullable(reflect.TypeFor[*string]()))
	assert.True(t, IsNullable(reflect.TypeFor[*float64]()))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"user"`, QuoteIdent("user"))
	assert.Equal(t, `"character_id"`, QuoteIdent("character_id"))
	assert.Equal(t, `"we""ird"`, QuoteIdent(`we"ird`))
}
