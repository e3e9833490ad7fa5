package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Flashcard is a front/back prompt pair generated for a concept.
type Flashcard struct {
	ID         int64
	ConceptID  int64
	Front      string
	Back       string
	Difficulty string
	CreatedAt  int64
}

// FlashcardReview is one review event with the scheduler state that resulted
// from it. Append-only; the scheduler reads the most recent row per
// (user, flashcard).
type FlashcardReview struct {
	ID             int64
	UserID         int64
	FlashcardID    int64
	EaseFactor     float64
	Interval       int // days
	Repetitions    int
	Quality        int // 0-5
	NextReviewDate int64
	ReviewedAt     int64
}

// ReplaceFlashcardsForLecture deletes all flashcards for the lecture's concepts
// and inserts the new batch in one transaction.
func (db *DB) ReplaceFlashcardsForLecture(conceptIDs []int64, cards []Flashcard) ([]Flashcard, error) {
	if len(conceptIDs) == 0 {
		return nil, nil
	}
	now := time.Now().UnixMilli()
	inserted := make([]Flashcard, 0, len(cards))

	err := db.WithTx(func(tx *sql.Tx) error {
		ph, args := inClause(conceptIDs)
		if _, err := tx.Exec(
			fmt.Sprintf("DELETE FROM flashcards WHERE concept_id IN (%s)", ph), args...,
		); err != nil {
			return fmt.Errorf("delete flashcards: %w", err)
		}
		for _, c := range cards {
			result, err := tx.Exec(`
				INSERT INTO flashcards (concept_id, front, back, difficulty, created_at)
				VALUES (?, ?, ?, ?, ?)
			`, c.ConceptID, c.Front, c.Back, c.Difficulty, now)
			if err != nil {
				return fmt.Errorf("insert flashcard for concept %d: %w", c.ConceptID, err)
			}
			id, _ := result.LastInsertId()
			c.ID = id
			c.CreatedAt = now
			inserted = append(inserted, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// GetFlashcard returns a flashcard by ID, or nil if not found.
func (db *DB) GetFlashcard(id int64) (*Flashcard, error) {
	var f Flashcard
	err := db.QueryRow(`
		SELECT id, concept_id, front, back, difficulty, created_at
		FROM flashcards WHERE id = ?
	`, id).Scan(&f.ID, &f.ConceptID, &f.Front, &f.Back, &f.Difficulty, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get flashcard: %w", err)
	}
	return &f, nil
}

// ListFlashcardsByConcepts returns all flashcards whose concept_id is in the set.
func (db *DB) ListFlashcardsByConcepts(conceptIDs []int64) ([]Flashcard, error) {
	if len(conceptIDs) == 0 {
		return nil, nil
	}
	ph, args := inClause(conceptIDs)
	rows, err := db.Query(fmt.Sprintf(`
		SELECT id, concept_id, front, back, difficulty, created_at
		FROM flashcards WHERE concept_id IN (%s) ORDER BY id
	`, ph), args...)
	if err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}
	defer rows.Close()

	var cards []Flashcard
	for rows.Next() {
		var f Flashcard
		if err := rows.Scan(&f.ID, &f.ConceptID, &f.Front, &f.Back, &f.Difficulty, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan flashcard: %w", err)
		}
		cards = append(cards, f)
	}
	return cards, rows.Err()
}

// InsertReview appends a review event.
func (db *DB) InsertReview(r *FlashcardReview) error {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO flashcard_reviews (user_id, flashcard_id, ease_factor, interval, repetitions,
			quality, next_review_date, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.UserID, r.FlashcardID, r.EaseFactor, r.Interval, r.Repetitions,
		r.Quality, r.NextReviewDate, now)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	id, _ := result.LastInsertId()
	r.ID = id
	r.ReviewedAt = now
	return nil
}

// LatestReview returns the most recent review for (user, flashcard), or nil if
// the card has never been reviewed.
func (db *DB) LatestReview(userID, flashcardID int64) (*FlashcardReview, error) {
	var r FlashcardReview
	err := db.QueryRow(`
		SELECT id, user_id, flashcard_id, ease_factor, interval, repetitions,
			quality, next_review_date, reviewed_at
		FROM flashcard_reviews
		WHERE user_id = ? AND flashcard_id = ?
		ORDER BY reviewed_at DESC, id DESC LIMIT 1
	`, userID, flashcardID).Scan(&r.ID, &r.UserID, &r.FlashcardID, &r.EaseFactor,
		&r.Interval, &r.Repetitions, &r.Quality, &r.NextReviewDate, &r.ReviewedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest review: %w", err)
	}
	return &r, nil
}
