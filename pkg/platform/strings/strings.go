// Package strings provides string helpers shared by the CSV-backed stores.
package strings

import (
	"strings"
)

// FirstNonEmpty returns the first value that is non-empty after trimming
// whitespace, trimmed. It returns "" when every value is blank.
//
// Example:
//
//	FirstNonEmpty("", "  ", " 42 ", "7")
//	// Returns: "42"
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// IsTrue reports whether a stored flag reads as true. Comparison is
// case-insensitive on the raw text; anything other than "true" is false.
func IsTrue(raw string) bool {
	return strings.EqualFold(raw, "true")
}

// FormatBool renders a flag the way the tables store it: lowercase true/false.
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// SameKey compares two keys after trimming surrounding whitespace.
func SameKey(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
