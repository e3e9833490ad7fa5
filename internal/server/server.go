package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/classify-app/classify/internal/engine"
	"github.com/classify-app/classify/internal/store"
)

// Server is the classify HTTP API server.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server with the given database, engine and version string.
func New(db *store.DB, eng *engine.Engine, version string) *Server {
	s := &Server{
		db:      db,
		engine:  eng,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/users", s.handleCreateUser)
		r.Get("/users/{userID}/stats", s.handleUserStats)
		r.Get("/users/{userID}/courses/{courseID}/insights", s.handleCourseInsights)
		r.Get("/users/{userID}/courses/{courseID}/progress", s.handleCourseProgress)
		r.Get("/users/{userID}/courses/{courseID}/flashcards/due", s.handleDueFlashcards)

		r.Post("/courses", s.handleCreateCourse)
		r.Post("/courses/{courseID}/lectures", s.handleCreateLecture)
		r.Post("/courses/{courseID}/relationships/rebuild", s.handleRebuildRelationships)
		r.Get("/courses/{courseID}/relationships", s.handleListRelationships)
		r.Post("/courses/{courseID}/quizzes/generate", s.handleGenerateCourseQuizzes)
		r.Get("/courses/{courseID}/quiz", s.handleAssembleCourseQuiz)

		r.Post("/lectures/{lectureID}/concepts/generate", s.handleGenerateConcepts)
		r.Get("/lectures/{lectureID}/concepts", s.handleListConcepts)
		r.Post("/lectures/{lectureID}/quizzes/generate", s.handleGenerateLectureQuizzes)
		r.Post("/lectures/{lectureID}/flashcards/generate", s.handleGenerateFlashcards)
		r.Post("/lectures/{lectureID}/viewed", s.handleMarkViewed)
		r.Post("/lectures/{lectureID}/study-time", s.handleAddStudyTime)

		r.Post("/quiz/grade", s.handleGradeQuiz)
		r.Post("/flashcards/{flashcardID}/review", s.handleReviewFlashcard)

		r.Post("/enhance", s.handleEnhance)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine sentinel errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrUserInput):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrExternalService):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
