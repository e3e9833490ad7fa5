package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/classify-app/classify/internal/engine"
	"github.com/classify-app/classify/internal/store"
)

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		http.Error(w, `{"error":"email required"}`, http.StatusBadRequest)
		return
	}

	user, err := s.db.CreateUser(req.Email, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      int64  `json:"user_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.UserID == 0 || req.Name == "" {
		http.Error(w, `{"error":"user_id and name required"}`, http.StatusBadRequest)
		return
	}

	course, err := s.db.CreateCourse(req.UserID, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          course.ID,
		"user_id":     course.UserID,
		"name":        course.Name,
		"description": course.Description,
	})
}

func (s *Server) handleCreateLecture(w http.ResponseWriter, r *http.Request) {
	courseID, ok := urlID(r, "courseID")
	if !ok {
		http.Error(w, `{"error":"invalid course id"}`, http.StatusBadRequest)
		return
	}

	var req struct {
		Title      string `json:"title"`
		Transcript string `json:"transcript"`
		Summary    string `json:"summary"`
		Order      int    `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, `{"error":"title required"}`, http.StatusBadRequest)
		return
	}

	course, err := s.db.GetCourse(courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	if course == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "course not found"})
		return
	}

	lecture, err := s.db.CreateLecture(courseID, req.Title, req.Transcript, req.Summary, req.Order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        lecture.ID,
		"course_id": lecture.CourseID,
		"title":     lecture.Title,
		"order":     lecture.Order,
	})
}

func conceptJSON(c store.Concept) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"lecture_id": c.LectureID,
		"name":       c.Name,
		"definition": c.Definition,
		"difficulty": c.Difficulty,
	}
}

func (s *Server) handleGenerateConcepts(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := urlID(r, "lectureID")
	if !ok {
		http.Error(w, `{"error":"invalid lecture id"}`, http.StatusBadRequest)
		return
	}

	var req struct {
		Transcript string `json:"transcript"`
	}
	// Body is optional: an empty body means "use the stored transcript".
	json.NewDecoder(r.Body).Decode(&req)

	concepts, err := s.engine.GenerateConcepts(r.Context(), lectureID, req.Transcript)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, conceptJSON(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "concepts": out})
}

func (s *Server) handleListConcepts(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := urlID(r, "lectureID")
	if !ok {
		http.Error(w, `{"error":"invalid lecture id"}`, http.StatusBadRequest)
		return
	}

	concepts, err := s.db.ListConceptsByLecture(lectureID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, conceptJSON(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "concepts": out})
}

func relationshipJSON(rel store.ConceptRelationship) map[string]any {
	return map[string]any{
		"id":                 rel.ID,
		"concept_id":         rel.ConceptID,
		"related_concept_id": rel.RelatedConceptID,
		"type":               rel.Type,
	}
}

func (s *Server) handleRebuildRelationships(w http.ResponseWriter, r *http.Request) {
	courseID, ok := urlID(r, "courseID")
	if !ok {
		http.Error(w, `{"error":"invalid course id"}`, http.StatusBadRequest)
		return
	}

	rels, err := s.engine.RebuildRelationships(r.Context(), courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(rels))
	for _, rel := range rels {
		out = append(out, relationshipJSON(rel))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "relationships": out})
}

func (s *Server) handleListRelationships(w http.ResponseWriter, r *http.Request) {
	courseID, ok := urlID(r, "courseID")
	if !ok {
		http.Error(w, `{"error":"invalid course id"}`, http.StatusBadRequest)
		return
	}

	rels, err := s.db.ListRelationshipsByCourse(courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(rels))
	for _, rel := range rels {
		out = append(out, relationshipJSON(rel))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "relationships": out})
}

func quizJSON(q store.Quiz) map[string]any {
	return map[string]any{
		"id":             q.ID,
		"concept_id":     q.ConceptID,
		"question":       q.Question,
		"option_a":       q.OptionA,
		"option_b":       q.OptionB,
		"option_c":       q.OptionC,
		"option_d":       q.OptionD,
		"correct_answer": q.CorrectAnswer,
		"explanation":    q.Explanation,
		"difficulty":     q.Difficulty,
	}
}

func (s *Server) handleGenerateLectureQuizzes(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := urlID(r, "lectureID")
	if !ok {
		http.Error(w, `{"error":"invalid lecture id"}`, http.StatusBadRequest)
		return
	}

	quizzes, err := s.engine.GenerateForLecture(r.Context(), lectureID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, quizJSON(q))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "quizzes": out})
}

func (s *Server) handleGenerateCourseQuizzes(w http.ResponseWriter, r *http.Request) {
	courseID, ok := urlID(r, "courseID")
	if !ok {
		http.Error(w, `{"error":"invalid course id"}`, http.StatusBadRequest)
		return
	}

	perLecture := 0
	if v := r.URL.Query().Get("per_lecture"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			perLecture = n
		}
	}

	quizzes, err := s.engine.GenerateForCourse(r.Context(), courseID, perLecture)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, quizJSON(q))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "quizzes": out})
}

func (s *Server) handleAssembleCourseQuiz(w http.ResponseWriter, r *http.Request) {
	courseID, ok := urlID(r, "courseID")
	if !ok {
		http.Error(w, `{"error":"invalid course id"}`, http.StatusBadRequest)
		return
	}

	instance, err := s.engine.AssembleCourseQuiz(r.Context(), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Correct answers stay server-side until grading.
	questions := make([]map[string]any, 0, len(instance.Questions))
	for _, q := range instance.Questions {
		j := quizJSON(q)
		delete(j, "correct_answer")
		delete(j, "explanation")
		questions = append(questions, j)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        instance.ID,
		"course_id": instance.CourseID,
		"count":     len(questions),
		"questions": questions,
	})
}

func (s *Server) handleGradeQuiz(w http.ResponseWriter, r *http.Request) {
	var sub engine.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if sub.UserID == 0 {
		http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
		return
	}

	result, err := s.engine.Grade(&sub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func flashcardJSON(f store.Flashcard) map[string]any {
	return map[string]any{
		"id":         f.ID,
		"concept_id": f.ConceptID,
		"front":      f.Front,
		"back":       f.Back,
		"difficulty": f.Difficulty,
	}
}

func (s *Server) handleGenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := urlID(r, "lectureID")
	if !ok {
		http.Error(w, `{"error":"invalid lecture id"}`, http.StatusBadRequest)
		return
	}

	cards, err := s.engine.GenerateFlashcards(r.Context(), lectureID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(cards))
	for _, f := range cards {
		out = append(out, flashcardJSON(f))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "flashcards": out})
}

func (s *Server) handleReviewFlashcard(w http.ResponseWriter, r *http.Request) {
	flashcardID, ok := urlID(r, "flashcardID")
	if !ok {
		http.Error(w, `{"error":"invalid flashcard id"}`, http.StatusBadRequest)
		return
	}

	var req struct {
		UserID  int64 `json:"user_id"`
		Quality int   `json:"quality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.UserID == 0 {
		http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
		return
	}

	review, err := s.engine.ReviewFlashcard(req.UserID, flashcardID, req.Quality)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"flashcard_id":     review.FlashcardID,
		"ease_factor":      review.EaseFactor,
		"interval":         review.Interval,
		"repetitions":      review.Repetitions,
		"quality":          review.Quality,
		"next_review_date": review.NextReviewDate,
	})
}

func (s *Server) handleDueFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, okU := urlID(r, "userID")
	courseID, okC := urlID(r, "courseID")
	if !okU || !okC {
		http.Error(w, `{"error":"invalid ids"}`, http.StatusBadRequest)
		return
	}

	cards, err := s.engine.DueFlashcards(userID, courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(cards))
	for _, f := range cards {
		out = append(out, flashcardJSON(f))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "flashcards": out})
}

func (s *Server) handleMarkViewed(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := urlID(r, "lectureID")
	if !ok {
		http.Error(w, `{"error":"invalid lecture id"}`, http.StatusBadRequest)
		return
	}

	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
		return
	}

	p, err := s.engine.MarkViewed(req.UserID, lectureID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"viewed":  p.Viewed,
		"mastery": p.MasteryLevel,
	})
}

func (s *Server) handleAddStudyTime(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := urlID(r, "lectureID")
	if !ok {
		http.Error(w, `{"error":"invalid lecture id"}`, http.StatusBadRequest)
		return
	}

	var req struct {
		UserID  int64 `json:"user_id"`
		Seconds int   `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
		return
	}

	if err := s.engine.AddStudyTime(req.UserID, lectureID, req.Seconds); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCourseInsights(w http.ResponseWriter, r *http.Request) {
	userID, okU := urlID(r, "userID")
	courseID, okC := urlID(r, "courseID")
	if !okU || !okC {
		http.Error(w, `{"error":"invalid ids"}`, http.StatusBadRequest)
		return
	}

	weak, err := s.engine.WeakConcepts(userID, courseID, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	strong, err := s.engine.StrongConcepts(userID, courseID, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	type insightJSON struct {
		ConceptID    int64   `json:"concept_id"`
		Name         string  `json:"name"`
		Mastery      float64 `json:"mastery"`
		Status       string  `json:"status"`
		LectureID    int64   `json:"lecture_id"`
		LectureTitle string  `json:"lecture_title"`
	}
	toJSON := func(insights []engine.ConceptInsight) []insightJSON {
		out := make([]insightJSON, len(insights))
		for i, in := range insights {
			out[i] = insightJSON{
				ConceptID:    in.Concept.ID,
				Name:         in.Concept.Name,
				Mastery:      in.Mastery,
				Status:       engine.Status(in.Mastery),
				LectureID:    in.LectureID,
				LectureTitle: in.LectureTitle,
			}
		}
		return out
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"weak":   toJSON(weak),
		"strong": toJSON(strong),
	})
}

func (s *Server) handleCourseProgress(w http.ResponseWriter, r *http.Request) {
	userID, okU := urlID(r, "userID")
	courseID, okC := urlID(r, "courseID")
	if !okU || !okC {
		http.Error(w, `{"error":"invalid ids"}`, http.StatusBadRequest)
		return
	}

	summary, err := s.engine.CourseProgressSummary(userID, courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlID(r, "userID")
	if !ok {
		http.Error(w, `{"error":"invalid user id"}`, http.StatusBadRequest)
		return
	}

	stats, err := s.engine.UserStudyStats(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	result, err := s.engine.Enhance(r.Context(), req.Kind, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"kind":   req.Kind,
		"result": result,
	})
}
