package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Quiz is a four-option multiple choice question generated for a concept.
type Quiz struct {
	ID            int64
	ConceptID     int64
	Question      string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string // A, B, C or D
	Explanation   string
	Difficulty    string
	CreatedAt     int64
}

// QuizAttempt records one answered question. Immutable once written.
type QuizAttempt struct {
	ID             int64
	UserID         int64
	QuizID         int64
	SelectedAnswer string
	IsCorrect      bool
	TimeTaken      int // seconds
	Score          float64
	CreatedAt      int64
}

func insertQuiz(tx *sql.Tx, q *Quiz, now int64) error {
	result, err := tx.Exec(`
		INSERT INTO quizzes (concept_id, question, option_a, option_b, option_c, option_d,
			correct_answer, explanation, difficulty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ConceptID, q.Question, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectAnswer, q.Explanation, q.Difficulty, now)
	if err != nil {
		return fmt.Errorf("insert quiz for concept %d: %w", q.ConceptID, err)
	}
	id, _ := result.LastInsertId()
	q.ID = id
	q.CreatedAt = now
	return nil
}

// ReplaceQuizzesForConcepts deletes all quizzes for the given concept-id set
// and inserts the new batch in one transaction.
func (db *DB) ReplaceQuizzesForConcepts(conceptIDs []int64, quizzes []Quiz) ([]Quiz, error) {
	if len(conceptIDs) == 0 {
		return nil, nil
	}
	now := time.Now().UnixMilli()
	inserted := make([]Quiz, 0, len(quizzes))

	err := db.WithTx(func(tx *sql.Tx) error {
		ph, args := inClause(conceptIDs)
		if _, err := tx.Exec(
			fmt.Sprintf("DELETE FROM quizzes WHERE concept_id IN (%s)", ph), args...,
		); err != nil {
			return fmt.Errorf("delete quizzes: %w", err)
		}
		for i := range quizzes {
			if err := insertQuiz(tx, &quizzes[i], now); err != nil {
				return err
			}
			inserted = append(inserted, quizzes[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// InsertQuizzes adds quizzes without touching existing rows. Used by course-wide
// generation, which accumulates rather than replaces.
func (db *DB) InsertQuizzes(quizzes []Quiz) ([]Quiz, error) {
	now := time.Now().UnixMilli()
	inserted := make([]Quiz, 0, len(quizzes))

	err := db.WithTx(func(tx *sql.Tx) error {
		for i := range quizzes {
			if err := insertQuiz(tx, &quizzes[i], now); err != nil {
				return err
			}
			inserted = append(inserted, quizzes[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// GetQuiz returns a quiz by ID, or nil if not found.
func (db *DB) GetQuiz(id int64) (*Quiz, error) {
	rows, err := db.Query(quizSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	defer rows.Close()

	quizzes, err := scanQuizzes(rows)
	if err != nil {
		return nil, err
	}
	if len(quizzes) == 0 {
		return nil, nil
	}
	return &quizzes[0], nil
}

const quizSelect = `
	SELECT id, concept_id, question, option_a, option_b, option_c, option_d,
		correct_answer, explanation, difficulty, created_at
	FROM quizzes`

// ListQuizzesByConcepts returns all quizzes whose concept_id is in the set.
func (db *DB) ListQuizzesByConcepts(conceptIDs []int64) ([]Quiz, error) {
	if len(conceptIDs) == 0 {
		return nil, nil
	}
	ph, args := inClause(conceptIDs)
	rows, err := db.Query(fmt.Sprintf("%s WHERE concept_id IN (%s) ORDER BY id", quizSelect, ph), args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()
	return scanQuizzes(rows)
}

// ListQuizzesByIDs returns quizzes for the given quiz IDs.
func (db *DB) ListQuizzesByIDs(ids []int64) ([]Quiz, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph, args := inClause(ids)
	rows, err := db.Query(fmt.Sprintf("%s WHERE id IN (%s) ORDER BY id", quizSelect, ph), args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes by ids: %w", err)
	}
	defer rows.Close()
	return scanQuizzes(rows)
}

func scanQuizzes(rows *sql.Rows) ([]Quiz, error) {
	var quizzes []Quiz
	for rows.Next() {
		var q Quiz
		var a, b, c, d, expl sql.NullString
		if err := rows.Scan(&q.ID, &q.ConceptID, &q.Question, &a, &b, &c, &d,
			&q.CorrectAnswer, &expl, &q.Difficulty, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		q.OptionA, q.OptionB, q.OptionC, q.OptionD = a.String, b.String, c.String, d.String
		q.Explanation = expl.String
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// InsertAttempts writes one immutable attempt row per answered question, all in
// one transaction.
func (db *DB) InsertAttempts(attempts []QuizAttempt) error {
	now := time.Now().UnixMilli()
	return db.WithTx(func(tx *sql.Tx) error {
		for i := range attempts {
			result, err := tx.Exec(`
				INSERT INTO quiz_attempts (user_id, quiz_id, selected_answer, is_correct, time_taken, score, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, attempts[i].UserID, attempts[i].QuizID, attempts[i].SelectedAnswer,
				attempts[i].IsCorrect, attempts[i].TimeTaken, attempts[i].Score, now)
			if err != nil {
				return fmt.Errorf("insert attempt for quiz %d: %w", attempts[i].QuizID, err)
			}
			id, _ := result.LastInsertId()
			attempts[i].ID = id
			attempts[i].CreatedAt = now
		}
		return nil
	})
}

// CountAttemptsByUser returns the total number of quiz attempts by a user.
func (db *DB) CountAttemptsByUser(userID int64) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM quiz_attempts WHERE user_id = ?", userID).Scan(&count)
	return count, err
}
