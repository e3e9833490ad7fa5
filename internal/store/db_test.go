package store

import (
	"testing"
)

func TestOpenMemory(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	if db.Path != ":memory:" {
		t.Errorf("Path = %q, want :memory:", db.Path)
	}
}

func TestSchemaVersion(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 5 {
		t.Errorf("SchemaVersion = %d, want 5", v)
	}
}

func TestTablesExist(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	tables := []string{
		"schema_versions", "users", "courses", "lectures",
		"concepts", "concept_relationships", "quizzes", "quiz_attempts",
		"flashcards", "flashcard_reviews", "progress",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestConceptConstraints(t *testing.T) {
	db := testDB(t)
	lecture := testLecture(t, db)

	// Valid insert
	_, err := db.Exec(`
		INSERT INTO concepts (lecture_id, name, difficulty, created_at)
		VALUES (?, 'Bayes theorem', 'advanced', 1000)
	`, lecture.ID)
	if err != nil {
		t.Fatalf("valid insert failed: %v", err)
	}

	// Invalid difficulty
	_, err = db.Exec(`
		INSERT INTO concepts (lecture_id, name, difficulty, created_at)
		VALUES (?, 'Bad concept', 'impossible', 1000)
	`, lecture.ID)
	if err == nil {
		t.Error("expected error for invalid difficulty, got nil")
	}
}

func TestQuizConstraints(t *testing.T) {
	db := testDB(t)
	lecture := testLecture(t, db)
	concepts, err := db.ReplaceConceptsForLecture(lecture.ID, []Concept{
		{Name: "Entropy", Difficulty: "intermediate"},
	})
	if err != nil {
		t.Fatalf("ReplaceConceptsForLecture: %v", err)
	}

	// Invalid correct_answer
	_, err = db.Exec(`
		INSERT INTO quizzes (concept_id, question, correct_answer, created_at)
		VALUES (?, 'What is entropy?', 'E', 1000)
	`, concepts[0].ID)
	if err == nil {
		t.Error("expected error for correct_answer E, got nil")
	}
}

func TestProgressConstraints(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)

	// Neither lecture_id nor concept_id set
	_, err := db.Exec(`
		INSERT INTO progress (user_id, created_at, updated_at) VALUES (?, 1000, 1000)
	`, user.ID)
	if err == nil {
		t.Error("expected error for progress row with no target, got nil")
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	// Running migrate again should be a no-op
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 5 {
		t.Errorf("SchemaVersion after re-migrate = %d, want 5", v)
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	var fk int
	err = db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}
