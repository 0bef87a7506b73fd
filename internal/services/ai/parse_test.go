package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFencedObject(t *testing.T) {
	response := "```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, extractJSON(response))
}

func TestExtractJSONFencedArray(t *testing.T) {
	response := "```\n[\"one\", \"two\"]\n```"
	assert.Equal(t, `["one", "two"]`, extractJSON(response))
}

func TestExtractJSONProseWrapped(t *testing.T) {
	response := `Here is the result you asked for: {"a": 1} hope it helps.`
	assert.Equal(t, `{"a": 1}`, extractJSON(response))
}

func TestExtractJSONProseBeforeFence(t *testing.T) {
	response := "Sure, here it is:\n```json\n[\"one\"]\n```"
	assert.Equal(t, `["one"]`, extractJSON(response))
}

func TestExtractJSONPrefersFirstBracket(t *testing.T) {
	response := `[{"a": 1}, {"b": 2}]`
	assert.Equal(t, response, extractJSON(response))
}

func TestExtractJSONNoPayload(t *testing.T) {
	response := "no structured data here"
	assert.Equal(t, response, extractJSON(response))
}

func TestDecodeResponse(t *testing.T) {
	var seeds []string
	require.NoError(t, decodeResponse("```json\n[\"a\", \"b\"]\n```", &seeds))
	assert.Equal(t, []string{"a", "b"}, seeds)

	var target map[string]int
	err := decodeResponse("I cannot answer that.", &target)
	assert.ErrorContains(t, err, "not valid JSON")
}
