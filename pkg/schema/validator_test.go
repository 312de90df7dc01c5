package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaultValue(t *testing.T) {
	valid := []string{
		"true",
		"FALSE",
		"NULL",
		"0",
		"-1.5",
		"'unknown'",
		"NOW()",
		"CURRENT_TIMESTAMP",
	}
	for _, v := range valid {
		assert.NoError(t, ValidateDefaultValue(v), "default %q", v)
	}

	invalid := []struct {
		value string
		hint  string
	}{
		{value: "  ", hint: "empty"},
		{value: "current timestamp", hint: "CURRENT_TIMESTAMP"},
		{value: "CURRENT DATE", hint: "CURRENT_DATE"},
		{value: "NOW ()", hint: "NOW()"},
		{value: "active", hint: "want a keyword"},
		{value: "'unterminated", hint: "want a keyword"},
	}
	for _, tt := range invalid {
		err := ValidateDefaultValue(tt.value)
		require.Error(t, err, "default %q", tt.value)
		assert.Contains(t, err.Error(), tt.hint)
	}
}
