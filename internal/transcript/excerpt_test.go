package transcript

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	got := Normalize("  hello\n\nworld\t\t again ")
	if got != "hello world again" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestExcerptShortInputUnchanged(t *testing.T) {
	s := "short transcript"
	if got := Excerpt(s, 100); got != s {
		t.Errorf("Excerpt = %q, want unchanged", got)
	}
}

func TestExcerptCutsAtWordBoundary(t *testing.T) {
	s := strings.Repeat("entropy ", 200) // 1600 chars
	got := Excerpt(s, 1000)
	if len(got) > 1000 {
		t.Errorf("excerpt length = %d, want <= 1000", len(got))
	}
	if strings.HasSuffix(got, "entro") || strings.HasSuffix(got, "entrop") {
		t.Errorf("excerpt cut mid-word: %q", got[len(got)-20:])
	}
	if got != strings.TrimSpace(got) {
		t.Error("excerpt has surrounding whitespace")
	}
}

func TestExcerptNoSpaceNearCut(t *testing.T) {
	// A single giant token: no word boundary close enough, hard cut wins.
	s := strings.Repeat("x", 2000)
	got := Excerpt(s, 1000)
	if len(got) != 1000 {
		t.Errorf("excerpt length = %d, want hard cut at 1000", len(got))
	}
}

func TestContextPrefersSummary(t *testing.T) {
	got := Context("the summary", "the transcript")
	if got != "the summary" {
		t.Errorf("Context = %q, want summary", got)
	}

	got = Context("   ", "the transcript")
	if got != "the transcript" {
		t.Errorf("Context = %q, want transcript fallback", got)
	}
}

func TestContextCapped(t *testing.T) {
	long := strings.Repeat("word ", 500)
	got := Context("", long)
	if len(got) > ContextCap {
		t.Errorf("context length = %d, want <= %d", len(got), ContextCap)
	}
}
