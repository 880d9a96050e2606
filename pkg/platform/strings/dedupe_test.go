package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims whitespace",
			input:    []string{" kafka-1:9092 ", "kafka-2:9092  "},
			expected: []string{"kafka-1:9092", "kafka-2:9092"},
		},
		{
			name:     "drops duplicates preserving order",
			input:    []string{"a", "b", "a", "c", "b"},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "drops empty and blank elements",
			input:    []string{"a", "", "   ", "b"},
			expected: []string{"a", "b"},
		},
		{
			name:     "case sensitive",
			input:    []string{"Host", "host"},
			expected: []string{"Host", "host"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
