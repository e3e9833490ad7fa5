package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/classify-app/classify/internal/store"
)

// Mastery thresholds.
const (
	lectureCompletionMastery = 70.0
	defaultWeakThreshold     = 60.0
	defaultStrongThreshold   = 80.0
)

// Status classifies a mastery level into a human-readable band.
func Status(mastery float64) string {
	switch {
	case mastery >= 80:
		return "mastered"
	case mastery >= 60:
		return "good"
	case mastery >= 40:
		return "learning"
	default:
		return "weak"
	}
}

// recompute derives the mastery level from the progress row's quiz and
// flashcard signals: 60% from the running quiz average, plus 5 points per
// flashcard review capped at 40, the whole thing capped at 100.
func recompute(p *store.Progress) {
	quizComponent := p.QuizAvgScore * 0.6
	flashcardComponent := float64(p.FlashcardReviews) * 5
	if flashcardComponent > 40 {
		flashcardComponent = 40
	}
	mastery := quizComponent + flashcardComponent
	if mastery > 100 {
		mastery = 100
	}
	p.MasteryLevel = mastery
}

// blendQuizScore folds a new quiz score into the running average. This is a
// recency-weighted blend, not a true mean: the first score seeds the average
// and every later score halves with it.
func blendQuizScore(p *store.Progress, score float64) {
	if p.QuizAttempts == 0 {
		p.QuizAvgScore = score
	} else {
		p.QuizAvgScore = (p.QuizAvgScore + score) / 2
	}
	p.QuizAttempts++
}

// RecordQuizResult folds a lecture-level quiz score into the (user, lecture)
// progress row and recomputes mastery.
func (e *Engine) RecordQuizResult(userID, lectureID int64, score float64) (*store.Progress, error) {
	p, err := e.DB.GetOrCreateLectureProgress(userID, lectureID)
	if err != nil {
		return nil, err
	}
	blendQuizScore(p, score)
	recompute(p)
	if err := e.DB.UpdateProgress(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RecordConceptQuizResult folds a per-concept quiz score into the
// (user, concept) progress row. Keeps concept mastery moving from quizzes,
// not just flashcards, so weak/strong course queries have signal.
func (e *Engine) RecordConceptQuizResult(userID, conceptID int64, score float64) (*store.Progress, error) {
	p, err := e.DB.GetOrCreateConceptProgress(userID, conceptID)
	if err != nil {
		return nil, err
	}
	blendQuizScore(p, score)
	recompute(p)
	if err := e.DB.UpdateProgress(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RecordFlashcardReview counts one flashcard review against both the owning
// concept's and the owning lecture's progress rows and recomputes mastery.
func (e *Engine) RecordFlashcardReview(userID, conceptID, lectureID int64) error {
	cp, err := e.DB.GetOrCreateConceptProgress(userID, conceptID)
	if err != nil {
		return err
	}
	cp.FlashcardReviews++
	recompute(cp)
	if err := e.DB.UpdateProgress(cp); err != nil {
		return err
	}

	lp, err := e.DB.GetOrCreateLectureProgress(userID, lectureID)
	if err != nil {
		return err
	}
	lp.FlashcardReviews++
	recompute(lp)
	return e.DB.UpdateProgress(lp)
}

// MarkViewed marks a lecture viewed by a user and stamps access times.
func (e *Engine) MarkViewed(userID, lectureID int64) (*store.Progress, error) {
	lecture, err := e.DB.GetLecture(lectureID)
	if err != nil {
		return nil, err
	}
	if lecture == nil {
		return nil, fmt.Errorf("%w: lecture %d", ErrNotFound, lectureID)
	}

	p, err := e.DB.GetOrCreateLectureProgress(userID, lectureID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMilli()
	if !p.Viewed {
		p.Viewed = true
		p.FirstViewed = &now
	}
	p.LastAccessed = &now
	if err := e.DB.UpdateProgress(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddStudyTime adds study seconds to a lecture's progress row.
func (e *Engine) AddStudyTime(userID, lectureID int64, seconds int) error {
	if seconds <= 0 {
		return nil
	}
	p, err := e.DB.GetOrCreateLectureProgress(userID, lectureID)
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	p.TimeSpent += seconds
	p.LastAccessed = &now
	return e.DB.UpdateProgress(p)
}

// ConceptInsight pairs a concept with a user's mastery of it and the lecture
// it came from.
type ConceptInsight struct {
	Concept      store.Concept `json:"concept"`
	Mastery      float64       `json:"mastery"`
	LectureID    int64         `json:"lecture_id"`
	LectureTitle string        `json:"lecture_title"`
}

func (e *Engine) courseInsights(userID, courseID int64) ([]ConceptInsight, error) {
	lectures, err := e.DB.ListLecturesByCourse(courseID)
	if err != nil {
		return nil, err
	}
	titles := make(map[int64]string, len(lectures))
	for _, l := range lectures {
		titles[l.ID] = l.Title
	}

	concepts, err := e.DB.ListConceptsByCourse(courseID)
	if err != nil {
		return nil, err
	}
	progress, err := e.DB.ListConceptProgressByCourse(userID, courseID)
	if err != nil {
		return nil, err
	}

	insights := make([]ConceptInsight, 0, len(concepts))
	for _, c := range concepts {
		mastery := 0.0
		if p, ok := progress[c.ID]; ok {
			mastery = p.MasteryLevel
		}
		insights = append(insights, ConceptInsight{
			Concept:      c,
			Mastery:      mastery,
			LectureID:    c.LectureID,
			LectureTitle: titles[c.LectureID],
		})
	}
	return insights, nil
}

// WeakConcepts returns the course's concepts with mastery below the threshold
// (default 60), sorted ascending so the weakest come first.
func (e *Engine) WeakConcepts(userID, courseID int64, threshold float64) ([]ConceptInsight, error) {
	if threshold <= 0 {
		threshold = defaultWeakThreshold
	}
	insights, err := e.courseInsights(userID, courseID)
	if err != nil {
		return nil, err
	}

	var weak []ConceptInsight
	for _, in := range insights {
		if in.Mastery < threshold {
			weak = append(weak, in)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Mastery < weak[j].Mastery })
	return weak, nil
}

// StrongConcepts returns the course's concepts with mastery at or above the
// threshold (default 80), sorted descending so the strongest come first.
func (e *Engine) StrongConcepts(userID, courseID int64, threshold float64) ([]ConceptInsight, error) {
	if threshold <= 0 {
		threshold = defaultStrongThreshold
	}
	insights, err := e.courseInsights(userID, courseID)
	if err != nil {
		return nil, err
	}

	var strong []ConceptInsight
	for _, in := range insights {
		if in.Mastery >= threshold {
			strong = append(strong, in)
		}
	}
	sort.SliceStable(strong, func(i, j int) bool { return strong[i].Mastery > strong[j].Mastery })
	return strong, nil
}

// CourseSummary aggregates a user's progress across a whole course.
type CourseSummary struct {
	TotalLectures        int     `json:"total_lectures"`
	CompletedLectures    int     `json:"completed_lectures"`
	CompletionPercentage float64 `json:"completion_percentage"`
	TotalConcepts        int     `json:"total_concepts"`
	MasteredConcepts     int     `json:"mastered_concepts"`
}

// CourseProgressSummary computes lecture completion and concept mastery
// totals. A lecture counts as completed when the user has viewed it and the
// average mastery across its concepts is at least 70; a lecture without
// concepts only needs the view.
func (e *Engine) CourseProgressSummary(userID, courseID int64) (*CourseSummary, error) {
	course, err := e.DB.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("%w: course %d", ErrNotFound, courseID)
	}

	lectures, err := e.DB.ListLecturesByCourse(courseID)
	if err != nil {
		return nil, err
	}
	insights, err := e.courseInsights(userID, courseID)
	if err != nil {
		return nil, err
	}

	masteryByLecture := make(map[int64][]float64)
	summary := &CourseSummary{TotalLectures: len(lectures), TotalConcepts: len(insights)}
	for _, in := range insights {
		masteryByLecture[in.LectureID] = append(masteryByLecture[in.LectureID], in.Mastery)
		if in.Mastery >= defaultStrongThreshold {
			summary.MasteredConcepts++
		}
	}

	for _, l := range lectures {
		p, err := e.DB.GetLectureProgress(userID, l.ID)
		if err != nil {
			return nil, err
		}
		if p == nil || !p.Viewed {
			continue
		}
		masteries := masteryByLecture[l.ID]
		if len(masteries) == 0 {
			summary.CompletedLectures++
			continue
		}
		total := 0.0
		for _, m := range masteries {
			total += m
		}
		if total/float64(len(masteries)) >= lectureCompletionMastery {
			summary.CompletedLectures++
		}
	}

	if summary.TotalLectures > 0 {
		summary.CompletionPercentage = float64(summary.CompletedLectures) / float64(summary.TotalLectures) * 100
	}
	return summary, nil
}

// StudyStats totals a user's learning activity.
type StudyStats struct {
	TotalCourses  int `json:"total_courses"`
	TotalLectures int `json:"total_lectures"`
	TotalConcepts int `json:"total_concepts"`
	QuizAttempts  int `json:"quiz_attempts"`
}

// UserStudyStats counts courses, lectures, concepts and quiz attempts for a
// user.
func (e *Engine) UserStudyStats(userID int64) (*StudyStats, error) {
	courses, err := e.DB.ListCoursesByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := &StudyStats{TotalCourses: len(courses)}
	for _, c := range courses {
		count, err := e.DB.CountLecturesByCourse(c.ID)
		if err != nil {
			return nil, err
		}
		stats.TotalLectures += count

		concepts, err := e.DB.ListConceptsByCourse(c.ID)
		if err != nil {
			return nil, err
		}
		stats.TotalConcepts += len(concepts)
	}

	attempts, err := e.DB.CountAttemptsByUser(userID)
	if err != nil {
		return nil, err
	}
	stats.QuizAttempts = attempts
	return stats, nil
}
