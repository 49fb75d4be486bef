package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{
			name:     "no values",
			input:    nil,
			expected: "",
		},
		{
			name:     "all blank",
			input:    []string{"", "  ", "\t"},
			expected: "",
		},
		{
			name:     "skips blank and trims winner",
			input:    []string{"", "  ", " 42 ", "7"},
			expected: "42",
		},
		{
			name:     "first value wins when present",
			input:    []string{"a", "b"},
			expected: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FirstNonEmpty(tt.input...))
		})
	}
}

func TestIsTrue(t *testing.T) {
	assert.True(t, IsTrue("true"))
	assert.True(t, IsTrue("TRUE"))
	assert.True(t, IsTrue("True"))
	assert.False(t, IsTrue(" true"))
	assert.False(t, IsTrue("yes"))
	assert.False(t, IsTrue("1"))
	assert.False(t, IsTrue(""))
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "true", FormatBool(true))
	assert.Equal(t, "false", FormatBool(false))
}

func TestSameKey(t *testing.T) {
	assert.True(t, SameKey(" books ", "books"))
	assert.False(t, SameKey("Books", "books"))
}
