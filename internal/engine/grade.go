package engine

import (
	"fmt"
	"log"
	"strings"

	"github.com/classify-app/classify/internal/store"
)

// unanswered marks a served question the user never answered. It can never
// match a correct answer, so skipped questions count wrong.
const unanswered = "-"

// Submission is one user's set of answers to a served quiz.
type Submission struct {
	UserID           int64            `json:"user_id"`
	LectureID        int64            `json:"lecture_id,omitempty"`
	CourseID         int64            `json:"course_id,omitempty"`
	QuizIDs          []int64          `json:"quiz_ids,omitempty"`
	Answers          map[int64]string `json:"answers"`
	TimeTakenSeconds int              `json:"time_taken_seconds"`
}

// GradedResult is the outcome of grading a submission.
type GradedResult struct {
	Score    float64             `json:"score"`
	Correct  int                 `json:"correct"`
	Total    int                 `json:"total"`
	Attempts []store.QuizAttempt `json:"attempts"`
}

// servedQuizzes resolves the set of questions the submission is graded
// against: the explicit quiz-id list when the client sends one, otherwise
// every stored quiz in the submission's lecture or course scope.
func (e *Engine) servedQuizzes(sub *Submission) ([]store.Quiz, error) {
	if len(sub.QuizIDs) > 0 {
		return e.DB.ListQuizzesByIDs(sub.QuizIDs)
	}

	switch {
	case sub.LectureID != 0:
		lecture, err := e.DB.GetLecture(sub.LectureID)
		if err != nil {
			return nil, err
		}
		if lecture == nil {
			return nil, fmt.Errorf("%w: lecture %d", ErrNotFound, sub.LectureID)
		}
		concepts, err := e.DB.ListConceptsByLecture(sub.LectureID)
		if err != nil {
			return nil, err
		}
		_, ids := conceptIDSet(concepts)
		return e.DB.ListQuizzesByConcepts(ids)

	case sub.CourseID != 0:
		course, err := e.DB.GetCourse(sub.CourseID)
		if err != nil {
			return nil, err
		}
		if course == nil {
			return nil, fmt.Errorf("%w: course %d", ErrNotFound, sub.CourseID)
		}
		concepts, err := e.DB.ListConceptsByCourse(sub.CourseID)
		if err != nil {
			return nil, err
		}
		_, ids := conceptIDSet(concepts)
		return e.DB.ListQuizzesByConcepts(ids)

	default:
		return nil, fmt.Errorf("%w: submission names no quiz ids, lecture or course", ErrUserInput)
	}
}

// Grade scores a submission against the served question set, writes one
// immutable attempt row per question, and folds the results into the user's
// progress: each concept gets its own score, and each touched lecture gets
// the score of its own questions, not the submission-wide aggregate.
//
// Answers are compared case-insensitively by letter. A served question absent
// from the answers map is wrong. Time taken is split evenly across questions.
func (e *Engine) Grade(sub *Submission) (*GradedResult, error) {
	quizzes, err := e.servedQuizzes(sub)
	if err != nil {
		return nil, err
	}
	if len(quizzes) == 0 {
		return nil, fmt.Errorf("%w: no quizzes to grade", ErrUserInput)
	}

	perQuestion := 0
	if len(quizzes) > 0 {
		perQuestion = sub.TimeTakenSeconds / len(quizzes)
	}

	result := &GradedResult{Total: len(quizzes)}
	conceptScores := make(map[int64][2]int) // concept -> [correct, total]

	for _, q := range quizzes {
		answer, ok := sub.Answers[q.ID]
		if !ok || strings.TrimSpace(answer) == "" {
			answer = unanswered
		}
		correct := strings.EqualFold(strings.TrimSpace(answer), q.CorrectAnswer)
		if correct {
			result.Correct++
		}

		tally := conceptScores[q.ConceptID]
		if correct {
			tally[0]++
		}
		tally[1]++
		conceptScores[q.ConceptID] = tally

		result.Attempts = append(result.Attempts, store.QuizAttempt{
			UserID:         sub.UserID,
			QuizID:         q.ID,
			SelectedAnswer: strings.ToUpper(strings.TrimSpace(answer)),
			IsCorrect:      correct,
			TimeTaken:      perQuestion,
		})
	}

	result.Score = float64(result.Correct) / float64(result.Total) * 100
	for i := range result.Attempts {
		result.Attempts[i].Score = result.Score
	}

	if err := e.DB.InsertAttempts(result.Attempts); err != nil {
		return nil, fmt.Errorf("record attempts: %w", err)
	}

	// Fan out: per-concept mastery, then per-lecture scores. Course-wide
	// submissions span lectures, so each lecture is scored on its own
	// questions rather than the submission-wide aggregate.
	lectureScores := make(map[int64][2]int)
	for conceptID, tally := range conceptScores {
		conceptScore := float64(tally[0]) / float64(tally[1]) * 100
		if _, err := e.RecordConceptQuizResult(sub.UserID, conceptID, conceptScore); err != nil {
			log.Printf("grade: concept %d progress: %v", conceptID, err)
			continue
		}
		concept, err := e.DB.GetConcept(conceptID)
		if err != nil || concept == nil {
			continue
		}
		lt := lectureScores[concept.LectureID]
		lt[0] += tally[0]
		lt[1] += tally[1]
		lectureScores[concept.LectureID] = lt
	}

	// A lecture-scoped submission whose quizzes resolved to no known concept
	// still gets the overall score on its own row.
	if _, ok := lectureScores[sub.LectureID]; sub.LectureID != 0 && !ok {
		lectureScores[sub.LectureID] = [2]int{result.Correct, result.Total}
	}
	for lid, tally := range lectureScores {
		lectureScore := float64(tally[0]) / float64(tally[1]) * 100
		if _, err := e.RecordQuizResult(sub.UserID, lid, lectureScore); err != nil {
			log.Printf("grade: lecture %d progress: %v", lid, err)
		}
	}

	return result, nil
}
