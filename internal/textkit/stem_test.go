package textkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// length floor: short tokens pass through
		{"go", "go"},
		{"seo", "seo"},
		{"ads", "ads"},
		// -ies -> -y
		{"studies", "study"},
		{"strategies", "strategy"},
		// -sses/-shes/-ches/-xes strip two
		{"classes", "class"},
		{"dishes", "dish"},
		{"churches", "church"},
		{"boxes", "box"},
		// vowel + -ed, doubled consonant reduced
		{"stopped", "stop"},
		{"optimized", "optimiz"},
		{"jumped", "jump"},
		// vowel + -ing, doubled consonant reduced
		{"running", "run"},
		{"marketing", "market"},
		{"cleaning", "clean"},
		// plural -s, -ss preserved
		{"keywords", "keyword"},
		{"services", "service"},
		{"glass", "glass"},
		// at most one rule per token
		{"dental", "dental"},
		{"insurance", "insurance"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Stem(tt.input))
		})
	}
}

func TestStemTokens(t *testing.T) {
	out := StemTokens([]string{"running", "dogs", "boxes"})
	assert.Equal(t, []string{"run", "dog", "box"}, out)
}
