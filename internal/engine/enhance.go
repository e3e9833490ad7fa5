package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/classify-app/classify/internal/llm"
)

// Enhance rewrites note text through one of the fixed enhancement modes
// (explain, simplify, keypoints, quiz). The response is free text, not a JSON
// batch, so it passes through unparsed.
func (e *Engine) Enhance(ctx context.Context, kind, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", ErrUserInput)
	}
	prompt, ok := llm.EnhancementPrompt(kind, text)
	if !ok {
		return "", fmt.Errorf("%w: unknown enhancement %q", ErrUserInput, kind)
	}
	if e.Gen == nil {
		return "", fmt.Errorf("%w: no generation client configured", ErrExternalService)
	}

	ctx, cancel := context.WithTimeout(ctx, lectureTimeout)
	defer cancel()

	resp, err := e.Gen.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return strings.TrimSpace(resp.Content), nil
}
