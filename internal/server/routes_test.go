package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/classify-app/classify/internal/llm"
	"github.com/classify-app/classify/internal/store"
)

func mockGen(content string) *llm.MockClient {
	return &llm.MockClient{Response: &llm.Response{Content: content, Provider: "mock"}}
}

// seedCourse creates a user, course and one lecture directly in the store.
func seedCourse(t *testing.T, db *store.DB) (*store.User, *store.Course, *store.Lecture) {
	t.Helper()
	user, err := db.CreateUser("student@example.com", "Student")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	course, err := db.CreateCourse(user.ID, "Linear Algebra", "")
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	lecture, err := db.CreateLecture(course.ID, "Vector spaces",
		"A vector space is a set closed under addition and scalar multiplication.", "", 1)
	if err != nil {
		t.Fatalf("CreateLecture: %v", err)
	}
	return user, course, lecture
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestCreateUserAndCourse(t *testing.T) {
	srv, _ := testServer(t, nil)

	w := doJSON(t, srv, "POST", "/api/users", `{"email":"a@b.com","name":"A"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create user: status = %d, body: %s", w.Code, w.Body.String())
	}
	var user map[string]any
	json.Unmarshal(w.Body.Bytes(), &user)

	w = doJSON(t, srv, "POST", "/api/courses",
		fmt.Sprintf(`{"user_id":%v,"name":"Statistics"}`, user["id"]))
	if w.Code != http.StatusCreated {
		t.Fatalf("create course: status = %d, body: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "POST", "/api/courses", `{"user_id":1}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("course without name: status = %d, want 400", w.Code)
	}
}

func TestCreateLectureUnknownCourse(t *testing.T) {
	srv, _ := testServer(t, nil)

	w := doJSON(t, srv, "POST", "/api/courses/999/lectures", `{"title":"Orphan"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGenerateConceptsRoute(t *testing.T) {
	gen := mockGen(`[{"name":"Span","definition":"All linear combinations","difficulty":"beginner"}]`)
	srv, db := testServer(t, gen)
	_, _, lecture := seedCourse(t, db)

	w := doJSON(t, srv, "POST", fmt.Sprintf("/api/lectures/%d/concepts/generate", lecture.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count    int              `json:"count"`
		Concepts []map[string]any `json:"concepts"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
	if len(resp.Concepts) != 1 || resp.Concepts[0]["name"] != "Span" {
		t.Errorf("concepts = %+v", resp.Concepts)
	}
}

func TestGenerateConceptsRouteNotFound(t *testing.T) {
	srv, _ := testServer(t, mockGen("[]"))

	w := doJSON(t, srv, "POST", "/api/lectures/999/concepts/generate", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGenerateConceptsProviderError(t *testing.T) {
	gen := &llm.MockClient{Err: fmt.Errorf("provider down")}
	srv, db := testServer(t, gen)
	_, _, lecture := seedCourse(t, db)

	w := doJSON(t, srv, "POST", fmt.Sprintf("/api/lectures/%d/concepts/generate", lecture.ID), "")
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestAssembleQuizHidesAnswers(t *testing.T) {
	srv, db := testServer(t, nil)
	_, course, lecture := seedCourse(t, db)

	concepts, err := db.ReplaceConceptsForLecture(lecture.ID, []store.Concept{
		{Name: "Span", Difficulty: "beginner"},
	})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}
	if _, err := db.InsertQuizzes([]store.Quiz{{
		ConceptID: concepts[0].ID, Question: "Q?", CorrectAnswer: "C", Difficulty: "medium",
	}}); err != nil {
		t.Fatalf("insert quizzes: %v", err)
	}

	w := doJSON(t, srv, "GET", fmt.Sprintf("/api/courses/%d/quiz", course.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Questions []map[string]any `json:"questions"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(resp.Questions))
	}
	if _, leaked := resp.Questions[0]["correct_answer"]; leaked {
		t.Error("assembled quiz leaks correct_answer")
	}
}

func TestGradeRoute(t *testing.T) {
	srv, db := testServer(t, nil)
	user, _, lecture := seedCourse(t, db)

	concepts, err := db.ReplaceConceptsForLecture(lecture.ID, []store.Concept{
		{Name: "Span", Difficulty: "beginner"},
	})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}
	quizzes, err := db.InsertQuizzes([]store.Quiz{{
		ConceptID: concepts[0].ID, Question: "Q?", CorrectAnswer: "B", Difficulty: "medium",
	}})
	if err != nil {
		t.Fatalf("insert quizzes: %v", err)
	}

	body := fmt.Sprintf(`{"user_id":%d,"lecture_id":%d,"answers":{"%d":"b"}}`,
		user.ID, lecture.ID, quizzes[0].ID)
	w := doJSON(t, srv, "POST", "/api/quiz/grade", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Score   float64 `json:"score"`
		Correct int     `json:"correct"`
		Total   int     `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Score != 100 || resp.Correct != 1 || resp.Total != 1 {
		t.Errorf("graded = %+v, want 100/1/1", resp)
	}
}

func TestGradeRouteNoScope(t *testing.T) {
	srv, db := testServer(t, nil)
	user, _, _ := seedCourse(t, db)

	w := doJSON(t, srv, "POST", "/api/quiz/grade", fmt.Sprintf(`{"user_id":%d}`, user.ID))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestReviewFlashcardRoute(t *testing.T) {
	srv, db := testServer(t, nil)
	user, _, lecture := seedCourse(t, db)

	concepts, err := db.ReplaceConceptsForLecture(lecture.ID, []store.Concept{
		{Name: "Span", Difficulty: "beginner"},
	})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}
	cards, err := db.ReplaceFlashcardsForLecture([]int64{concepts[0].ID}, []store.Flashcard{
		{ConceptID: concepts[0].ID, Front: "F", Back: "B", Difficulty: "medium"},
	})
	if err != nil {
		t.Fatalf("replace flashcards: %v", err)
	}

	body := fmt.Sprintf(`{"user_id":%d,"quality":5}`, user.ID)
	w := doJSON(t, srv, "POST", fmt.Sprintf("/api/flashcards/%d/review", cards[0].ID), body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["repetitions"] != float64(1) {
		t.Errorf("repetitions = %v, want 1", resp["repetitions"])
	}

	// Out-of-range quality is a user error.
	w = doJSON(t, srv, "POST", fmt.Sprintf("/api/flashcards/%d/review", cards[0].ID),
		fmt.Sprintf(`{"user_id":%d,"quality":9}`, user.ID))
	if w.Code != http.StatusBadRequest {
		t.Errorf("quality 9: status = %d, want 400", w.Code)
	}
}

func TestMarkViewedRoute(t *testing.T) {
	srv, db := testServer(t, nil)
	user, _, lecture := seedCourse(t, db)

	body := fmt.Sprintf(`{"user_id":%d}`, user.ID)
	w := doJSON(t, srv, "POST", fmt.Sprintf("/api/lectures/%d/viewed", lecture.ID), body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["viewed"] != true {
		t.Errorf("viewed = %v, want true", resp["viewed"])
	}
}

func TestCourseProgressRoute(t *testing.T) {
	srv, db := testServer(t, nil)
	user, course, _ := seedCourse(t, db)

	w := doJSON(t, srv, "GET",
		fmt.Sprintf("/api/users/%d/courses/%d/progress", user.ID, course.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["total_lectures"] != float64(1) {
		t.Errorf("total_lectures = %v, want 1", resp["total_lectures"])
	}
}

func TestEnhanceRoute(t *testing.T) {
	srv, _ := testServer(t, mockGen("A simpler explanation."))

	w := doJSON(t, srv, "POST", "/api/enhance", `{"kind":"simplify","text":"dense notes"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["result"] != "A simpler explanation." {
		t.Errorf("result = %q", resp["result"])
	}

	w = doJSON(t, srv, "POST", "/api/enhance", `{"kind":"nonsense","text":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: status = %d, want 400", w.Code)
	}
}
