package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/classify-app/classify/internal/llm"
	"github.com/classify-app/classify/internal/store"
	"github.com/classify-app/classify/internal/transcript"
)

// GenerateFlashcards generates front/back cards for all of a lecture's
// concepts, replacing the lecture's existing cards. A lecture with no concepts
// yields an empty result without touching stored data.
func (e *Engine) GenerateFlashcards(ctx context.Context, lectureID int64) ([]store.Flashcard, error) {
	lecture, err := e.DB.GetLecture(lectureID)
	if err != nil {
		return nil, err
	}
	if lecture == nil {
		return nil, fmt.Errorf("%w: lecture %d", ErrNotFound, lectureID)
	}

	concepts, err := e.DB.ListConceptsByLecture(lectureID)
	if err != nil {
		return nil, err
	}
	if len(concepts) == 0 {
		log.Printf("flashcards: lecture %d has no concepts, skipping", lectureID)
		return nil, nil
	}

	idSet, idList := conceptIDSet(concepts)
	prompt := llm.FlashcardPrompt(conceptsBlock(concepts), transcript.Context(lecture.Summary, lecture.Transcript))

	var candidates []flashcardCandidate
	if err := e.generate(ctx, prompt, lectureTimeout, &candidates); err != nil {
		return nil, err
	}

	cards := make([]store.Flashcard, 0, len(candidates))
	for _, c := range candidates {
		vc, err := validateFlashcard(c, idSet)
		if err != nil {
			log.Printf("flashcards: dropping card: %v", err)
			continue
		}
		cards = append(cards, vc)
	}

	inserted, err := e.DB.ReplaceFlashcardsForLecture(idList, cards)
	if err != nil {
		return nil, fmt.Errorf("replace flashcards: %w", err)
	}
	log.Printf("flashcards: stored %d cards for lecture %d", len(inserted), lectureID)
	return inserted, nil
}

// ReviewFlashcard applies one SM-2 review of the given quality (0-5), appends
// the review event, and counts it toward the owning concept's and lecture's
// mastery.
func (e *Engine) ReviewFlashcard(userID, flashcardID int64, quality int) (*store.FlashcardReview, error) {
	if quality < 0 || quality > 5 {
		return nil, fmt.Errorf("%w: quality %d out of range 0-5", ErrUserInput, quality)
	}

	card, err := e.DB.GetFlashcard(flashcardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, fmt.Errorf("%w: flashcard %d", ErrNotFound, flashcardID)
	}

	state := InitialSM2()
	latest, err := e.DB.LatestReview(userID, flashcardID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		state = SM2State{
			EaseFactor:  latest.EaseFactor,
			Interval:    latest.Interval,
			Repetitions: latest.Repetitions,
		}
	}

	next := NextSM2(state, quality)
	review := &store.FlashcardReview{
		UserID:         userID,
		FlashcardID:    flashcardID,
		EaseFactor:     next.EaseFactor,
		Interval:       next.Interval,
		Repetitions:    next.Repetitions,
		Quality:        quality,
		NextReviewDate: NextReviewDate(time.Now(), next.Interval).UnixMilli(),
	}
	if err := e.DB.InsertReview(review); err != nil {
		return nil, err
	}

	concept, err := e.DB.GetConcept(card.ConceptID)
	if err != nil {
		return nil, err
	}
	if concept != nil {
		if err := e.RecordFlashcardReview(userID, concept.ID, concept.LectureID); err != nil {
			log.Printf("review: progress for concept %d: %v", concept.ID, err)
		}
	}

	return review, nil
}

// DueFlashcards returns the course's flashcards that are due for the user:
// cards never reviewed, and cards whose most recent review's next_review_date
// has passed.
func (e *Engine) DueFlashcards(userID, courseID int64) ([]store.Flashcard, error) {
	course, err := e.DB.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("%w: course %d", ErrNotFound, courseID)
	}

	concepts, err := e.DB.ListConceptsByCourse(courseID)
	if err != nil {
		return nil, err
	}
	_, idList := conceptIDSet(concepts)

	cards, err := e.DB.ListFlashcardsByConcepts(idList)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var due []store.Flashcard
	for _, c := range cards {
		latest, err := e.DB.LatestReview(userID, c.ID)
		if err != nil {
			return nil, err
		}
		if CardDue(latest, now) {
			due = append(due, c)
		}
	}
	return due, nil
}
