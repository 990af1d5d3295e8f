package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "replaces deck separator",
			input:    "Langues::Anglais",
			expected: "Langues__Anglais",
		},
		{
			name:     "replaces every invalid character",
			input:    `a\b/c:d*e?f"g<h>i|j`,
			expected: "a_b_c_d_e_f_g_h_i_j",
		},
		{
			name:     "keeps unicode and spaces",
			input:    "Géographie – Capitales",
			expected: "Géographie – Capitales",
		},
		{
			name:     "empty stays empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}
