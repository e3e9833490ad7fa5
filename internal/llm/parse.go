package llm

import (
	"fmt"
	"strings"
)

// ExtractJSONArray slices the JSON array out of a raw generation response.
// Responses routinely arrive wrapped in markdown code fences or with prose
// around the array; both are stripped. Returns an error if no array is found —
// callers treat that as a soft failure yielding an empty result.
func ExtractJSONArray(content string) (string, error) {
	content = strings.TrimSpace(content)

	// Strip markdown code fences if present
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		// Remove first and last lines (```json and ```)
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	content = strings.TrimSpace(content)

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < 0 || end <= start {
		return "", fmt.Errorf("no JSON array found in response")
	}

	return content[start : end+1], nil
}
