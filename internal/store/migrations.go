package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "users, courses, lectures",
		SQL: `
CREATE TABLE users (
    id         INTEGER PRIMARY KEY,
    email      TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE courses (
    id          INTEGER PRIMARY KEY,
    user_id     INTEGER NOT NULL,
    name        TEXT NOT NULL,
    description TEXT,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE lectures (
    id         INTEGER PRIMARY KEY,
    course_id  INTEGER NOT NULL,
    title      TEXT NOT NULL,
    transcript TEXT,
    summary    TEXT,
    ord        INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,

    FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE
);

CREATE INDEX idx_courses_user    ON courses(user_id);
CREATE INDEX idx_lectures_course ON lectures(course_id, ord);
`,
	},
	{
		Version:     2,
		Description: "concepts and concept relationships",
		SQL: `
CREATE TABLE concepts (
    id         INTEGER PRIMARY KEY,
    lecture_id INTEGER NOT NULL,
    name       TEXT NOT NULL,
    definition TEXT,
    difficulty TEXT NOT NULL DEFAULT 'intermediate'
               CHECK (difficulty IN ('beginner', 'intermediate', 'advanced')),
    created_at INTEGER NOT NULL,

    FOREIGN KEY (lecture_id) REFERENCES lectures(id) ON DELETE CASCADE
);

CREATE TABLE concept_relationships (
    id                 INTEGER PRIMARY KEY,
    concept_id         INTEGER NOT NULL,
    related_concept_id INTEGER NOT NULL,
    relationship_type  TEXT NOT NULL DEFAULT 'related'
                       CHECK (relationship_type IN ('prerequisite', 'related', 'builds_on', 'part_of')),
    created_at         INTEGER NOT NULL,

    FOREIGN KEY (concept_id)         REFERENCES concepts(id) ON DELETE CASCADE,
    FOREIGN KEY (related_concept_id) REFERENCES concepts(id) ON DELETE CASCADE
);

CREATE INDEX idx_concepts_lecture ON concepts(lecture_id);
CREATE INDEX idx_rels_concept     ON concept_relationships(concept_id);
`,
	},
	{
		Version:     3,
		Description: "quizzes and quiz attempts",
		SQL: `
CREATE TABLE quizzes (
    id             INTEGER PRIMARY KEY,
    concept_id     INTEGER NOT NULL,
    question       TEXT NOT NULL,
    option_a       TEXT,
    option_b       TEXT,
    option_c       TEXT,
    option_d       TEXT,
    correct_answer TEXT NOT NULL CHECK (correct_answer IN ('A', 'B', 'C', 'D')),
    explanation    TEXT,
    difficulty     TEXT NOT NULL DEFAULT 'medium',
    created_at     INTEGER NOT NULL,

    FOREIGN KEY (concept_id) REFERENCES concepts(id) ON DELETE CASCADE
);

CREATE TABLE quiz_attempts (
    id              INTEGER PRIMARY KEY,
    user_id         INTEGER NOT NULL,
    quiz_id         INTEGER NOT NULL,
    selected_answer TEXT NOT NULL,
    is_correct      INTEGER NOT NULL,
    time_taken      INTEGER NOT NULL DEFAULT 0,
    score           REAL NOT NULL,
    created_at      INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(id)   ON DELETE CASCADE,
    FOREIGN KEY (quiz_id) REFERENCES quizzes(id) ON DELETE CASCADE
);

CREATE INDEX idx_quizzes_concept  ON quizzes(concept_id);
CREATE INDEX idx_attempts_user    ON quiz_attempts(user_id);
CREATE INDEX idx_attempts_quiz    ON quiz_attempts(quiz_id);
`,
	},
	{
		Version:     4,
		Description: "flashcards and flashcard reviews",
		SQL: `
CREATE TABLE flashcards (
    id         INTEGER PRIMARY KEY,
    concept_id INTEGER NOT NULL,
    front      TEXT NOT NULL,
    back       TEXT NOT NULL,
    difficulty TEXT NOT NULL DEFAULT 'medium',
    created_at INTEGER NOT NULL,

    FOREIGN KEY (concept_id) REFERENCES concepts(id) ON DELETE CASCADE
);

CREATE TABLE flashcard_reviews (
    id               INTEGER PRIMARY KEY,
    user_id          INTEGER NOT NULL,
    flashcard_id     INTEGER NOT NULL,
    ease_factor      REAL NOT NULL DEFAULT 2.5,
    interval         INTEGER NOT NULL DEFAULT 1,
    repetitions      INTEGER NOT NULL DEFAULT 0,
    quality          INTEGER NOT NULL CHECK (quality BETWEEN 0 AND 5),
    next_review_date INTEGER NOT NULL,
    reviewed_at      INTEGER NOT NULL,

    FOREIGN KEY (user_id)      REFERENCES users(id)      ON DELETE CASCADE,
    FOREIGN KEY (flashcard_id) REFERENCES flashcards(id) ON DELETE CASCADE
);

CREATE INDEX idx_flashcards_concept ON flashcards(concept_id);
CREATE INDEX idx_reviews_user_card  ON flashcard_reviews(user_id, flashcard_id, reviewed_at DESC);
`,
	},
	{
		Version:     5,
		Description: "progress: per (user, lecture) and per (user, concept) mastery",
		SQL: `
CREATE TABLE progress (
    id                INTEGER PRIMARY KEY,
    user_id           INTEGER NOT NULL,
    lecture_id        INTEGER,
    concept_id        INTEGER,
    viewed            INTEGER NOT NULL DEFAULT 0,
    time_spent        INTEGER NOT NULL DEFAULT 0,
    mastery_level     REAL NOT NULL DEFAULT 0,
    quiz_attempts     INTEGER NOT NULL DEFAULT 0,
    quiz_avg_score    REAL NOT NULL DEFAULT 0,
    flashcard_reviews INTEGER NOT NULL DEFAULT 0,
    first_viewed      INTEGER,
    last_accessed     INTEGER,
    created_at        INTEGER NOT NULL,
    updated_at        INTEGER NOT NULL,

    FOREIGN KEY (user_id)    REFERENCES users(id)    ON DELETE CASCADE,
    FOREIGN KEY (lecture_id) REFERENCES lectures(id) ON DELETE CASCADE,
    FOREIGN KEY (concept_id) REFERENCES concepts(id) ON DELETE CASCADE,

    CHECK ((lecture_id IS NULL) != (concept_id IS NULL))
);

CREATE UNIQUE INDEX idx_progress_user_lecture ON progress(user_id, lecture_id) WHERE lecture_id IS NOT NULL;
CREATE UNIQUE INDEX idx_progress_user_concept ON progress(user_id, concept_id) WHERE concept_id IS NOT NULL;
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
