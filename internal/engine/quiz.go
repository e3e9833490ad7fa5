package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/classify-app/classify/internal/llm"
	"github.com/classify-app/classify/internal/store"
	"github.com/classify-app/classify/internal/transcript"
)

// DefaultQuestionsPerLecture is how many concepts per lecture a course-wide
// generation covers when the caller doesn't say.
const DefaultQuestionsPerLecture = 2

// selectionPriority orders concept difficulty for course-wide quiz selection.
// The assessment favors intermediate material, then advanced, then beginner.
var selectionPriority = map[string]int{
	"intermediate": 0,
	"advanced":     1,
	"beginner":     2,
}

// QuizInstance is an assembled, shuffled quiz served to a user.
type QuizInstance struct {
	ID        string       `json:"id"`
	CourseID  int64        `json:"course_id"`
	Questions []store.Quiz `json:"questions"`
}

func conceptsBlock(concepts []store.Concept) string {
	var b strings.Builder
	for _, c := range concepts {
		fmt.Fprintf(&b, "%d | %s | %s | %s\n", c.ID, c.Name, c.Difficulty, c.Definition)
	}
	return b.String()
}

func conceptIDSet(concepts []store.Concept) (map[int64]bool, []int64) {
	set := make(map[int64]bool, len(concepts))
	ids := make([]int64, 0, len(concepts))
	for _, c := range concepts {
		set[c.ID] = true
		ids = append(ids, c.ID)
	}
	return set, ids
}

// GenerateForLecture generates one quiz batch covering all of a lecture's
// concepts, replacing the lecture's existing quiz rows. A lecture with no
// concepts yields an empty result without touching stored data.
func (e *Engine) GenerateForLecture(ctx context.Context, lectureID int64) ([]store.Quiz, error) {
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
		log.Printf("quiz: lecture %d has no concepts, skipping", lectureID)
		return nil, nil
	}

	idSet, idList := conceptIDSet(concepts)
	prompt := llm.QuizPrompt(conceptsBlock(concepts), transcript.Context(lecture.Summary, lecture.Transcript))

	var candidates []quizCandidate
	if err := e.generate(ctx, prompt, lectureTimeout, &candidates); err != nil {
		return nil, err
	}

	quizzes := validQuizzes(candidates, idSet)
	inserted, err := e.DB.ReplaceQuizzesForConcepts(idList, quizzes)
	if err != nil {
		return nil, fmt.Errorf("replace quizzes: %w", err)
	}
	log.Printf("quiz: stored %d quizzes for lecture %d", len(inserted), lectureID)
	return inserted, nil
}

func validQuizzes(candidates []quizCandidate, idSet map[int64]bool) []store.Quiz {
	quizzes := make([]store.Quiz, 0, len(candidates))
	for _, c := range candidates {
		vq, err := validateQuiz(c, idSet)
		if err != nil {
			log.Printf("quiz: dropping item: %v", err)
			continue
		}
		quizzes = append(quizzes, vq)
	}
	return quizzes
}

// selectCourseConcepts picks the top perLecture concepts from each lecture,
// ordered by the difficulty priority table. Ties keep insertion order.
func selectCourseConcepts(byLecture map[int64][]store.Concept, perLecture int) []store.Concept {
	lectureIDs := make([]int64, 0, len(byLecture))
	for id := range byLecture {
		lectureIDs = append(lectureIDs, id)
	}
	sort.Slice(lectureIDs, func(i, j int) bool { return lectureIDs[i] < lectureIDs[j] })

	var selected []store.Concept
	for _, lid := range lectureIDs {
		concepts := append([]store.Concept(nil), byLecture[lid]...)
		sort.SliceStable(concepts, func(i, j int) bool {
			return selectionPriority[concepts[i].Difficulty] < selectionPriority[concepts[j].Difficulty]
		})
		if len(concepts) > perLecture {
			concepts = concepts[:perLecture]
		}
		selected = append(selected, concepts...)
	}
	return selected
}

// GenerateForCourse generates quizzes for the top concepts of every lecture in
// one combined request. If every selected concept already has a stored quiz,
// the existing rows are returned unchanged (cache hit, no regeneration).
// Unlike per-lecture generation, this accumulates: prior quiz rows for the
// selected concepts are not deleted.
func (e *Engine) GenerateForCourse(ctx context.Context, courseID int64, perLecture int) ([]store.Quiz, error) {
	if perLecture <= 0 {
		perLecture = DefaultQuestionsPerLecture
	}

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
	byLecture := make(map[int64][]store.Concept)
	for _, c := range concepts {
		byLecture[c.LectureID] = append(byLecture[c.LectureID], c)
	}

	selected := selectCourseConcepts(byLecture, perLecture)
	if len(selected) == 0 {
		log.Printf("quiz: course %d has no concepts, skipping", courseID)
		return nil, nil
	}
	idSet, idList := conceptIDSet(selected)

	existing, err := e.DB.ListQuizzesByConcepts(idList)
	if err != nil {
		return nil, err
	}
	covered := make(map[int64]bool, len(existing))
	for _, q := range existing {
		covered[q.ConceptID] = true
	}
	if len(covered) == len(idList) {
		log.Printf("quiz: course %d already covered, returning %d existing quizzes", courseID, len(existing))
		return existing, nil
	}

	prompt := llm.QuizPrompt(conceptsBlock(selected), "")

	var candidates []quizCandidate
	if err := e.generate(ctx, prompt, courseTimeout, &candidates); err != nil {
		return nil, err
	}

	inserted, err := e.DB.InsertQuizzes(validQuizzes(candidates, idSet))
	if err != nil {
		return nil, fmt.Errorf("insert quizzes: %w", err)
	}
	log.Printf("quiz: stored %d quizzes for course %d", len(inserted), courseID)
	return inserted, nil
}

// perLectureCap bounds how many questions each lecture contributes to an
// assembled course quiz: max(2, min(3, pool/lectureCount)).
func perLectureCap(poolSize, lectureCount int) int {
	if lectureCount == 0 {
		return 0
	}
	n := poolSize / lectureCount
	if n > 3 {
		n = 3
	}
	if n < 2 {
		n = 2
	}
	return n
}

// AssembleCourseQuiz pools all stored quizzes for the course's concepts,
// lazily generating per-lecture batches when the pool is empty, then samples
// without replacement up to the per-lecture cap from each lecture and shuffles
// the final order.
func (e *Engine) AssembleCourseQuiz(ctx context.Context, courseID int64) (*QuizInstance, error) {
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
	byLecture := make(map[int64][]store.Concept)
	for _, c := range concepts {
		byLecture[c.LectureID] = append(byLecture[c.LectureID], c)
	}
	_, idList := conceptIDSet(concepts)

	pool, err := e.DB.ListQuizzesByConcepts(idList)
	if err != nil {
		return nil, err
	}

	if len(pool) == 0 {
		// Lazy fill: generate for every lecture that has concepts, then re-pool.
		for lid := range byLecture {
			if _, err := e.GenerateForLecture(ctx, lid); err != nil {
				log.Printf("assemble: generate for lecture %d: %v", lid, err)
			}
		}
		pool, err = e.DB.ListQuizzesByConcepts(idList)
		if err != nil {
			return nil, err
		}
	}

	instance := &QuizInstance{ID: uuid.NewString(), CourseID: courseID}
	if len(pool) == 0 {
		return instance, nil
	}

	conceptLecture := make(map[int64]int64, len(concepts))
	for _, c := range concepts {
		conceptLecture[c.ID] = c.LectureID
	}
	poolByLecture := make(map[int64][]store.Quiz)
	for _, q := range pool {
		lid := conceptLecture[q.ConceptID]
		poolByLecture[lid] = append(poolByLecture[lid], q)
	}

	limit := perLectureCap(len(pool), len(byLecture))

	lectureIDs := make([]int64, 0, len(poolByLecture))
	for lid := range poolByLecture {
		lectureIDs = append(lectureIDs, lid)
	}
	sort.Slice(lectureIDs, func(i, j int) bool { return lectureIDs[i] < lectureIDs[j] })

	for _, lid := range lectureIDs {
		questions := append([]store.Quiz(nil), poolByLecture[lid]...)
		rand.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
		if len(questions) > limit {
			questions = questions[:limit]
		}
		instance.Questions = append(instance.Questions, questions...)
	}

	rand.Shuffle(len(instance.Questions), func(i, j int) {
		instance.Questions[i], instance.Questions[j] = instance.Questions[j], instance.Questions[i]
	})

	return instance, nil
}
