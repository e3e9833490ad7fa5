package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Progress tracks one user's state against either a lecture or a concept.
// Exactly one of LectureID/ConceptID is set. Rows are created lazily on first
// access and mutated in place thereafter.
type Progress struct {
	ID               int64
	UserID           int64
	LectureID        *int64
	ConceptID        *int64
	Viewed           bool
	TimeSpent        int // seconds
	MasteryLevel     float64
	QuizAttempts     int
	QuizAvgScore     float64
	FlashcardReviews int
	FirstViewed      *int64
	LastAccessed     *int64
	CreatedAt        int64
	UpdatedAt        int64
}

const progressSelect = `
	SELECT id, user_id, lecture_id, concept_id, viewed, time_spent, mastery_level,
		quiz_attempts, quiz_avg_score, flashcard_reviews, first_viewed, last_accessed,
		created_at, updated_at
	FROM progress`

func scanProgress(row interface{ Scan(...any) error }) (*Progress, error) {
	var p Progress
	var lectureID, conceptID, firstViewed, lastAccessed sql.NullInt64
	var viewed int
	err := row.Scan(&p.ID, &p.UserID, &lectureID, &conceptID, &viewed, &p.TimeSpent,
		&p.MasteryLevel, &p.QuizAttempts, &p.QuizAvgScore, &p.FlashcardReviews,
		&firstViewed, &lastAccessed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Viewed = viewed != 0
	if lectureID.Valid {
		p.LectureID = &lectureID.Int64
	}
	if conceptID.Valid {
		p.ConceptID = &conceptID.Int64
	}
	if firstViewed.Valid {
		p.FirstViewed = &firstViewed.Int64
	}
	if lastAccessed.Valid {
		p.LastAccessed = &lastAccessed.Int64
	}
	return &p, nil
}

// GetLectureProgress returns the (user, lecture) progress row, or nil if none.
func (db *DB) GetLectureProgress(userID, lectureID int64) (*Progress, error) {
	p, err := scanProgress(db.QueryRow(progressSelect+" WHERE user_id = ? AND lecture_id = ?", userID, lectureID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lecture progress: %w", err)
	}
	return p, nil
}

// GetConceptProgress returns the (user, concept) progress row, or nil if none.
func (db *DB) GetConceptProgress(userID, conceptID int64) (*Progress, error) {
	p, err := scanProgress(db.QueryRow(progressSelect+" WHERE user_id = ? AND concept_id = ?", userID, conceptID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get concept progress: %w", err)
	}
	return p, nil
}

// GetOrCreateLectureProgress returns the (user, lecture) row, creating it on
// first access.
func (db *DB) GetOrCreateLectureProgress(userID, lectureID int64) (*Progress, error) {
	p, err := db.GetLectureProgress(userID, lectureID)
	if err != nil || p != nil {
		return p, err
	}
	return db.createProgress(userID, &lectureID, nil)
}

// GetOrCreateConceptProgress returns the (user, concept) row, creating it on
// first access.
func (db *DB) GetOrCreateConceptProgress(userID, conceptID int64) (*Progress, error) {
	p, err := db.GetConceptProgress(userID, conceptID)
	if err != nil || p != nil {
		return p, err
	}
	return db.createProgress(userID, nil, &conceptID)
}

func (db *DB) createProgress(userID int64, lectureID, conceptID *int64) (*Progress, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO progress (user_id, lecture_id, concept_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, lectureID, conceptID, now, now)
	if err != nil {
		return nil, fmt.Errorf("create progress: %w", err)
	}
	id, _ := result.LastInsertId()
	return &Progress{
		ID: id, UserID: userID, LectureID: lectureID, ConceptID: conceptID,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

// UpdateProgress writes back a mutated progress row.
func (db *DB) UpdateProgress(p *Progress) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		UPDATE progress SET viewed = ?, time_spent = ?, mastery_level = ?,
			quiz_attempts = ?, quiz_avg_score = ?, flashcard_reviews = ?,
			first_viewed = ?, last_accessed = ?, updated_at = ?
		WHERE id = ?
	`, p.Viewed, p.TimeSpent, p.MasteryLevel,
		p.QuizAttempts, p.QuizAvgScore, p.FlashcardReviews,
		p.FirstViewed, p.LastAccessed, now, p.ID)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	p.UpdatedAt = now
	return nil
}

// ListConceptProgressByCourse returns per-concept progress rows for one user
// across a whole course, keyed by concept ID. Concepts with no row yet are
// absent (mastery 0).
func (db *DB) ListConceptProgressByCourse(userID, courseID int64) (map[int64]*Progress, error) {
	rows, err := db.Query(`
		SELECT p.id, p.user_id, p.lecture_id, p.concept_id, p.viewed, p.time_spent, p.mastery_level,
			p.quiz_attempts, p.quiz_avg_score, p.flashcard_reviews, p.first_viewed, p.last_accessed,
			p.created_at, p.updated_at
		FROM progress p
		JOIN concepts c ON c.id = p.concept_id
		JOIN lectures l ON l.id = c.lecture_id
		WHERE p.user_id = ? AND l.course_id = ?
	`, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("list concept progress: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*Progress)
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		if p.ConceptID != nil {
			out[*p.ConceptID] = p
		}
	}
	return out, rows.Err()
}
