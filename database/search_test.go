package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchTermParser_Parse(t *testing.T) {
	parser := NewSearchTermParser()

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "single word",
			input:    "react",
			expected: "%react%",
		},
		{
			name:     "mixed case is lowered",
			input:    "ReAct Native",
			expected: "%react native%",
		},
		{
			name:     "extra whitespace",
			input:    "  web   app  ",
			expected: "%web app%",
		},
		{
			name:     "percent is escaped",
			input:    "100%",
			expected: `%100\%%`,
		},
		{
			name:     "underscore is escaped",
			input:    "snake_case",
			expected: `%snake\_case%`,
		},
		{
			name:     "backslash is escaped",
			input:    `a\b`,
			expected: `%a\\b%`,
		},
		{
			name:     "quotes pass through as data",
			input:    `'; DROP TABLE users; --`,
			expected: `%'; drop table users; --%`,
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
		{
			name:    "too long",
			input:   strings.Repeat("a", 201),
			wantErr: true,
			errMsg:  "too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parser.Parse(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Empty(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestSearchTermParser_MaxLengthCountsRunes(t *testing.T) {
	parser := NewSearchTermParser()

	result, err := parser.Parse(strings.Repeat("é", 200))

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(result, "%é"))
}
