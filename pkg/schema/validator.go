package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// defaultKeywords are bare SQL words accepted as DEFAULT expressions.
var defaultKeywords = map[string]bool{
	"NULL": true, "TRUE": true, "FALSE": true,
	"CURRENT_TIMESTAMP": true, "CURRENT_TIME": true, "CURRENT_DATE": true,
	"LOCALTIMESTAMP": true, "LOCALTIME": true,
}

// ValidateDefaultValue checks that a default expression from a tag is
// plausibly valid SQL: a keyword, a number, a quoted literal, or a function
// call.
func ValidateDefaultValue(defaultVal string) error {
	trimmed := strings.TrimSpace(defaultVal)
	if trimmed == "" {
		return fmt.Errorf("invalid DEFAULT value: empty expression")
	}

	upper := strings.ToUpper(trimmed)
	for _, mistake := range []string{"CURRENT TIMESTAMP", "CURRENT TIME", "CURRENT DATE"} {
		if strings.Contains(upper, mistake) {
			return fmt.Errorf("invalid DEFAULT value %q: %q should be %q",
				defaultVal, mistake, strings.ReplaceAll(mistake, " ", "_"))
		}
	}

	if strings.Contains(trimmed, " (") {
		return fmt.Errorf("invalid DEFAULT value %q: did you mean %q?",
			defaultVal, strings.ReplaceAll(trimmed, " (", "("))
	}

	switch {
	case defaultKeywords[upper]:
		return nil
	case isNumeric(trimmed):
		return nil
	case strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") && len(trimmed) >= 2:
		return nil
	case strings.Contains(trimmed, "(") && strings.HasSuffix(trimmed, ")"):
		return nil
	}

	return fmt.Errorf("invalid DEFAULT value %q: want a keyword, number, quoted literal or function call", defaultVal)
}

// isNumeric checks if a string is a valid number.
func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
