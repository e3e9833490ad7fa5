package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/classify-app/classify/internal/llm"
	"github.com/classify-app/classify/internal/store"
	"github.com/classify-app/classify/internal/transcript"
)

// conceptContextCap is the character budget for the transcript excerpt sent to
// concept extraction. Extraction needs more source text than quiz generation.
const conceptContextCap = 4000

// GenerateConcepts mines key concepts from a lecture's transcript and replaces
// the lecture's concept set with the result. If transcriptText is empty, the
// lecture's stored transcript (or summary) is used. Replacing concepts
// cascades away their old quizzes, flashcards and relationships.
func (e *Engine) GenerateConcepts(ctx context.Context, lectureID int64, transcriptText string) ([]store.Concept, error) {
	lecture, err := e.DB.GetLecture(lectureID)
	if err != nil {
		return nil, err
	}
	if lecture == nil {
		return nil, fmt.Errorf("%w: lecture %d", ErrNotFound, lectureID)
	}

	source := transcriptText
	if strings.TrimSpace(source) == "" {
		source = lecture.Transcript
	}
	if strings.TrimSpace(source) == "" {
		source = lecture.Summary
	}
	if strings.TrimSpace(source) == "" {
		log.Printf("concepts: lecture %d has no transcript or summary, skipping", lectureID)
		return nil, nil
	}

	excerpt := transcript.Excerpt(transcript.Normalize(source), conceptContextCap)
	prompt := llm.ConceptExtractionPrompt(lecture.Title, excerpt)

	var candidates []conceptCandidate
	if err := e.generate(ctx, prompt, lectureTimeout, &candidates); err != nil {
		return nil, err
	}

	concepts := make([]store.Concept, 0, len(candidates))
	for _, c := range candidates {
		vc, err := validateConcept(c)
		if err != nil {
			log.Printf("concepts: rejecting candidate %q: %v", c.Name, err)
			continue
		}
		concepts = append(concepts, vc)
	}

	inserted, err := e.DB.ReplaceConceptsForLecture(lectureID, concepts)
	if err != nil {
		return nil, fmt.Errorf("replace concepts: %w", err)
	}
	log.Printf("concepts: stored %d concepts for lecture %d", len(inserted), lectureID)
	return inserted, nil
}
