package transcript

import (
	"strings"
	"unicode"
)

// ContextCap is the character budget for lecture context embedded in a
// generation prompt. Bounds the cost of external requests.
const ContextCap = 1000

// Normalize collapses runs of whitespace to single spaces so raw
// transcription output doesn't bloat prompts with blank lines.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Excerpt truncates s to at most maxLen characters, cutting at the last word
// boundary to avoid mid-word breaks.
func Excerpt(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}

	truncated := s[:maxLen]
	if idx := strings.LastIndexFunc(truncated, unicode.IsSpace); idx > maxLen-200 {
		truncated = truncated[:idx]
	}
	return strings.TrimSpace(truncated)
}

// Context picks the prompt context for a lecture: the summary when present,
// the raw transcript otherwise, excerpted to the standard cap.
func Context(summary, transcript string) string {
	text := summary
	if strings.TrimSpace(text) == "" {
		text = transcript
	}
	return Excerpt(Normalize(text), ContextCap)
}
