package engine

import (
	"time"

	"github.com/classify-app/classify/internal/store"
)

// SM-2 spaced-repetition state per (user, flashcard).
const (
	initialEaseFactor = 2.5
	minEaseFactor     = 1.3
)

// SM2State is the scheduler state carried between reviews.
type SM2State struct {
	EaseFactor  float64
	Interval    int // days until next review
	Repetitions int // consecutive successful reviews
}

// InitialSM2 is the state of a card that has never been reviewed.
func InitialSM2() SM2State {
	return SM2State{EaseFactor: initialEaseFactor, Interval: 1, Repetitions: 0}
}

// NextSM2 applies one SM-2 transition for a review of the given quality
// (0-5). Quality below 3 is a failed recall: repetitions reset and the card
// comes back in one day. The ease factor is updated on every review,
// pass or fail, and never drops below 1.3.
func NextSM2(s SM2State, quality int) SM2State {
	if quality < 3 {
		s.Repetitions = 0
		s.Interval = 1
	} else {
		switch s.Repetitions {
		case 0:
			s.Interval = 1
		case 1:
			s.Interval = 6
		default:
			s.Interval = int(float64(s.Interval) * s.EaseFactor)
		}
		s.Repetitions++
	}

	q := float64(quality)
	s.EaseFactor = s.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if s.EaseFactor < minEaseFactor {
		s.EaseFactor = minEaseFactor
	}

	return s
}

// NextReviewDate returns when the card is due again, given the post-transition
// interval.
func NextReviewDate(now time.Time, interval int) time.Time {
	return now.AddDate(0, 0, interval)
}

// CardDue reports whether a card is due. A card with no review history is due
// immediately; otherwise it is due once now reaches the most recent review's
// next_review_date.
func CardDue(latest *store.FlashcardReview, now time.Time) bool {
	if latest == nil {
		return true
	}
	return now.UnixMilli() >= latest.NextReviewDate
}
