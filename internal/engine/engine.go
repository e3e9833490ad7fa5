package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/classify-app/classify/internal/llm"
	"github.com/classify-app/classify/internal/store"
)

// Generation call timeouts. Course-wide batches carry more content, so they
// get a longer budget. A timeout aborts only the in-flight batch; nothing is
// retried automatically.
const (
	lectureTimeout = 30 * time.Second
	courseTimeout  = 45 * time.Second
)

// Engine orchestrates the learning-analytics core: concept extraction, the
// concept graph, quiz generation and grading, flashcards, and mastery
// tracking. All operations are synchronous and request-scoped.
type Engine struct {
	DB  *store.DB
	Gen llm.Client
}

// New creates a new Engine.
func New(db *store.DB, gen llm.Client) *Engine {
	return &Engine{DB: db, Gen: gen}
}

// generate issues one generation request and decodes the JSON array in the
// response into out. Any provider failure, timeout, or unparseable response is
// reported as ErrExternalService — the caller aborts its batch and returns an
// empty result.
func (e *Engine) generate(ctx context.Context, prompt string, timeout time.Duration, out any) error {
	if e.Gen == nil {
		return fmt.Errorf("%w: no generation client configured", ErrExternalService)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := e.Gen.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	arr, err := llm.ExtractJSONArray(resp.Content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	if err := json.Unmarshal([]byte(arr), out); err != nil {
		return fmt.Errorf("%w: unmarshal response: %v", ErrExternalService, err)
	}
	return nil
}
