package textkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple phrase",
			input:    "Web Development Services",
			expected: []string{"web", "development", "services"},
		},
		{
			name:     "punctuation and symbols",
			input:    "SEO & content-marketing, 2024!",
			expected: []string{"seo", "content", "marketing", "2024"},
		},
		{
			name:     "unicode letters",
			input:    "Zürich Käse",
			expected: []string{"zürich", "käse"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "only separators",
			input:    "--- ... !!!",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestTokenSetDropsStopWords(t *testing.T) {
	set := TokenSet("the best dental services in the world")

	assert.Contains(t, set, "dental")
	assert.Contains(t, set, "service")
	assert.Contains(t, set, "world")
	assert.NotContains(t, set, "the")
	assert.NotContains(t, set, "in")
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("click"))
	assert.True(t, IsStopWord("www"))
	assert.False(t, IsStopWord("dental"))
	assert.False(t, IsStopWord("marketing"))
}
