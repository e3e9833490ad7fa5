package llm

import (
	"testing"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare array", `[{"a": 1}]`, `[{"a": 1}]`, false},
		{"fenced", "```json\n[1, 2]\n```", "[1, 2]", false},
		{"fenced no lang", "```\n[1]\n```", "[1]", false},
		{"prose around array", `Sure! Here you go: [1, 2] Hope that helps.`, "[1, 2]", false},
		{"leading whitespace", "\n\n  [] ", "[]", false},
		{"no array", "I cannot answer that.", "", true},
		{"only open bracket", "[1, 2", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONArray(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSONArray: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONArrayNested(t *testing.T) {
	input := `[{"ids": [1, 2]}, {"ids": [3]}]`
	got, err := ExtractJSONArray(input)
	if err != nil {
		t.Fatalf("ExtractJSONArray: %v", err)
	}
	// Outermost brackets win, nested arrays stay intact.
	if got != input {
		t.Errorf("got %q, want full outer array", got)
	}
}

func TestEnhancementPrompt(t *testing.T) {
	for _, kind := range []string{"explain", "simplify", "keypoints", "quiz"} {
		p, ok := EnhancementPrompt(kind, "some note text")
		if !ok {
			t.Errorf("EnhancementPrompt(%q) not found", kind)
			continue
		}
		if p == "" {
			t.Errorf("EnhancementPrompt(%q) returned empty prompt", kind)
		}
	}

	if _, ok := EnhancementPrompt("nonsense", "text"); ok {
		t.Error("EnhancementPrompt accepted unknown kind")
	}
}
