package store

import (
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testUser(t *testing.T, db *DB) *User {
	t.Helper()
	u, err := db.CreateUser("test@example.com", "Test User")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func testLecture(t *testing.T, db *DB) *Lecture {
	t.Helper()
	u := testUser(t, db)
	c, err := db.CreateCourse(u.ID, "Statistics 101", "intro stats")
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	l, err := db.CreateLecture(c.ID, "Probability basics", "today we cover probability...", "", 1)
	if err != nil {
		t.Fatalf("CreateLecture: %v", err)
	}
	return l
}

func TestGetUserNotFound(t *testing.T) {
	db := testDB(t)
	u, err := db.GetUser(999)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u != nil {
		t.Errorf("GetUser(999) = %+v, want nil", u)
	}
}

func TestLectureOrdering(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db)
	c, err := db.CreateCourse(u.ID, "Calculus", "")
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	if _, err := db.CreateLecture(c.ID, "Integrals", "", "", 2); err != nil {
		t.Fatalf("CreateLecture: %v", err)
	}
	if _, err := db.CreateLecture(c.ID, "Limits", "", "", 1); err != nil {
		t.Fatalf("CreateLecture: %v", err)
	}

	lectures, err := db.ListLecturesByCourse(c.ID)
	if err != nil {
		t.Fatalf("ListLecturesByCourse: %v", err)
	}
	if len(lectures) != 2 {
		t.Fatalf("got %d lectures, want 2", len(lectures))
	}
	if lectures[0].Title != "Limits" {
		t.Errorf("first lecture = %q, want Limits", lectures[0].Title)
	}
}

func TestReplaceConceptsForLecture(t *testing.T) {
	db := testDB(t)
	lecture := testLecture(t, db)

	first, err := db.ReplaceConceptsForLecture(lecture.ID, []Concept{
		{Name: "Sample space", Difficulty: "beginner"},
		{Name: "Conditional probability", Difficulty: "intermediate"},
	})
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("got %d concepts, want 2", len(first))
	}
	if first[0].ID == 0 {
		t.Error("inserted concept has no ID")
	}

	second, err := db.ReplaceConceptsForLecture(lecture.ID, []Concept{
		{Name: "Bayes theorem", Difficulty: "advanced"},
	})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("got %d concepts, want 1", len(second))
	}

	stored, err := db.ListConceptsByLecture(lecture.ID)
	if err != nil {
		t.Fatalf("ListConceptsByLecture: %v", err)
	}
	if len(stored) != 1 || stored[0].Name != "Bayes theorem" {
		t.Errorf("stored = %+v, want only Bayes theorem", stored)
	}
}

func TestReplaceConceptsCascades(t *testing.T) {
	db := testDB(t)
	lecture := testLecture(t, db)

	concepts, err := db.ReplaceConceptsForLecture(lecture.ID, []Concept{
		{Name: "Entropy", Difficulty: "intermediate"},
	})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}

	ids := []int64{concepts[0].ID}
	if _, err := db.ReplaceQuizzesForConcepts(ids, []Quiz{{
		ConceptID: concepts[0].ID, Question: "Define entropy", CorrectAnswer: "A",
		Difficulty: "medium",
	}}); err != nil {
		t.Fatalf("replace quizzes: %v", err)
	}

	// Replacing the concepts must cascade away the quizzes.
	if _, err := db.ReplaceConceptsForLecture(lecture.ID, []Concept{
		{Name: "Cross entropy", Difficulty: "advanced"},
	}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	quizzes, err := db.ListQuizzesByConcepts(ids)
	if err != nil {
		t.Fatalf("ListQuizzesByConcepts: %v", err)
	}
	if len(quizzes) != 0 {
		t.Errorf("got %d quizzes after cascade, want 0", len(quizzes))
	}
}

func TestReplaceRelationships(t *testing.T) {
	db := testDB(t)
	lecture := testLecture(t, db)

	concepts, err := db.ReplaceConceptsForLecture(lecture.ID, []Concept{
		{Name: "Limits", Difficulty: "beginner"},
		{Name: "Derivatives", Difficulty: "intermediate"},
	})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}
	ids := []int64{concepts[0].ID, concepts[1].ID}

	first, err := db.ReplaceRelationships(ids, []ConceptRelationship{
		{ConceptID: concepts[0].ID, RelatedConceptID: concepts[1].ID, Type: "prerequisite"},
	})
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("got %d relationships, want 1", len(first))
	}

	second, err := db.ReplaceRelationships(ids, []ConceptRelationship{
		{ConceptID: concepts[1].ID, RelatedConceptID: concepts[0].ID, Type: "builds_on"},
	})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if len(second) != 1 || second[0].Type != "builds_on" {
		t.Errorf("second replace = %+v, want one builds_on", second)
	}
}

func TestInsertQuizzesAccumulates(t *testing.T) {
	db := testDB(t)
	lecture := testLecture(t, db)

	concepts, err := db.ReplaceConceptsForLecture(lecture.ID, []Concept{
		{Name: "Variance", Difficulty: "intermediate"},
	})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}
	ids := []int64{concepts[0].ID}

	q := Quiz{ConceptID: concepts[0].ID, Question: "What is variance?", CorrectAnswer: "B", Difficulty: "medium"}
	if _, err := db.InsertQuizzes([]Quiz{q}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.InsertQuizzes([]Quiz{q}); err != nil {
		t.Fatalf("second insert: %v", err)
	}

	quizzes, err := db.ListQuizzesByConcepts(ids)
	if err != nil {
		t.Fatalf("ListQuizzesByConcepts: %v", err)
	}
	if len(quizzes) != 2 {
		t.Errorf("got %d quizzes, want 2", len(quizzes))
	}
}

func TestGetOrCreateProgress(t *testing.T) {
	db := testDB(t)
	lecture := testLecture(t, db)
	user := testUser2(t, db)

	p1, err := db.GetOrCreateLectureProgress(user.ID, lecture.ID)
	if err != nil {
		t.Fatalf("GetOrCreateLectureProgress: %v", err)
	}
	if p1.MasteryLevel != 0 || p1.Viewed {
		t.Errorf("fresh progress = %+v, want zeroed", p1)
	}

	p1.MasteryLevel = 55
	p1.QuizAttempts = 1
	if err := db.UpdateProgress(p1); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	p2, err := db.GetOrCreateLectureProgress(user.ID, lecture.ID)
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if p2.ID != p1.ID {
		t.Errorf("second GetOrCreate returned new row: %d vs %d", p2.ID, p1.ID)
	}
	if p2.MasteryLevel != 55 {
		t.Errorf("MasteryLevel = %v, want 55", p2.MasteryLevel)
	}
}

func testUser2(t *testing.T, db *DB) *User {
	t.Helper()
	u, err := db.CreateUser("second@example.com", "Second User")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestLatestReview(t *testing.T) {
	db := testDB(t)
	lecture := testLecture(t, db)
	user := testUser2(t, db)

	concepts, err := db.ReplaceConceptsForLecture(lecture.ID, []Concept{
		{Name: "Entropy", Difficulty: "intermediate"},
	})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}
	cards, err := db.ReplaceFlashcardsForLecture([]int64{concepts[0].ID}, []Flashcard{
		{ConceptID: concepts[0].ID, Front: "Define entropy", Back: "Expected surprise", Difficulty: "medium"},
	})
	if err != nil {
		t.Fatalf("replace flashcards: %v", err)
	}

	latest, err := db.LatestReview(user.ID, cards[0].ID)
	if err != nil {
		t.Fatalf("LatestReview: %v", err)
	}
	if latest != nil {
		t.Fatalf("LatestReview before any review = %+v, want nil", latest)
	}

	r1 := &FlashcardReview{UserID: user.ID, FlashcardID: cards[0].ID, EaseFactor: 2.6, Interval: 1, Repetitions: 1, Quality: 5, NextReviewDate: 2000}
	if err := db.InsertReview(r1); err != nil {
		t.Fatalf("InsertReview: %v", err)
	}
	r2 := &FlashcardReview{UserID: user.ID, FlashcardID: cards[0].ID, EaseFactor: 2.7, Interval: 6, Repetitions: 2, Quality: 5, NextReviewDate: 3000}
	if err := db.InsertReview(r2); err != nil {
		t.Fatalf("InsertReview: %v", err)
	}

	latest, err = db.LatestReview(user.ID, cards[0].ID)
	if err != nil {
		t.Fatalf("LatestReview: %v", err)
	}
	if latest == nil || latest.ID != r2.ID {
		t.Errorf("LatestReview = %+v, want review %d", latest, r2.ID)
	}
	if latest.Interval != 6 {
		t.Errorf("Interval = %d, want 6", latest.Interval)
	}
}
