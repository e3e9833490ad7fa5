package engine

import "errors"

// Error taxonomy for the core. Handlers map these onto HTTP statuses; nothing
// in this package retries on any of them.
var (
	// ErrNotFound — a referenced course/lecture/concept/quiz/flashcard does
	// not exist. The operation aborts with no mutation.
	ErrNotFound = errors.New("not found")

	// ErrExternalService — timeout, non-2xx response, or unparseable JSON
	// from the generation service. The whole batch for that call is aborted
	// and the caller receives an empty result.
	ErrExternalService = errors.New("generation service failed")

	// ErrUserInput — malformed submission, such as an unsupported enhancement
	// kind or an out-of-range review quality. Rejected with no side effects.
	ErrUserInput = errors.New("invalid input")
)
