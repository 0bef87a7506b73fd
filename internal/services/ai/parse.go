package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON isolates the JSON payload in a model response. Providers wrap
// payloads in markdown code fences or lead with prose; both are tolerated by
// first unwrapping a fence and then slicing from the first opening bracket
// to the last matching closer.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		var jsonLines []string
		inCodeBlock := false
		for _, line := range lines {
			if strings.HasPrefix(line, "```") {
				if inCodeBlock {
					break
				}
				inCodeBlock = true
				continue
			}
			if inCodeBlock {
				jsonLines = append(jsonLines, line)
			}
		}
		if len(jsonLines) > 0 {
			response = strings.TrimSpace(strings.Join(jsonLines, "\n"))
		}
	}

	start, closer := strings.Index(response, "{"), "}"
	if arr := strings.Index(response, "["); arr >= 0 && (start < 0 || arr < start) {
		start, closer = arr, "]"
	}
	if start >= 0 {
		if end := strings.LastIndex(response, closer); end > start {
			return response[start : end+1]
		}
	}

	return response
}

// decodeResponse parses the JSON payload of a model response into target.
func decodeResponse(response string, target interface{}) error {
	if err := json.Unmarshal([]byte(extractJSON(response)), target); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}
