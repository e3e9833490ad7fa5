package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Concept is an atomic unit of lecture content: a name, a definition, and a
// difficulty tier.
type Concept struct {
	ID         int64
	LectureID  int64
	Name       string
	Definition string
	Difficulty string // beginner, intermediate, advanced
	CreatedAt  int64
}

// ConceptRelationship links two concepts within the same course's concept set.
type ConceptRelationship struct {
	ID               int64
	ConceptID        int64
	RelatedConceptID int64
	Type             string // prerequisite, related, builds_on, part_of
	CreatedAt        int64
}

// inClause builds a "?,?,?" placeholder string and arg slice for an IN query.
func inClause(ids []int64) (string, []any) {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "?"
		args[i] = id
	}
	return strings.Join(ph, ","), args
}

// ReplaceConceptsForLecture deletes the lecture's existing concepts and inserts
// the new set in one transaction. Cascades remove the old concepts' quizzes,
// flashcards, relationships and progress rows. Returns the inserted concepts
// with IDs assigned.
func (db *DB) ReplaceConceptsForLecture(lectureID int64, concepts []Concept) ([]Concept, error) {
	now := time.Now().UnixMilli()
	inserted := make([]Concept, 0, len(concepts))

	err := db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM concepts WHERE lecture_id = ?", lectureID); err != nil {
			return fmt.Errorf("delete concepts: %w", err)
		}
		for _, c := range concepts {
			result, err := tx.Exec(`
				INSERT INTO concepts (lecture_id, name, definition, difficulty, created_at)
				VALUES (?, ?, ?, ?, ?)
			`, lectureID, c.Name, c.Definition, c.Difficulty, now)
			if err != nil {
				return fmt.Errorf("insert concept %q: %w", c.Name, err)
			}
			id, _ := result.LastInsertId()
			c.ID = id
			c.LectureID = lectureID
			c.CreatedAt = now
			inserted = append(inserted, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// GetConcept returns a concept by ID, or nil if not found.
func (db *DB) GetConcept(id int64) (*Concept, error) {
	var c Concept
	var definition sql.NullString
	err := db.QueryRow(`
		SELECT id, lecture_id, name, definition, difficulty, created_at
		FROM concepts WHERE id = ?
	`, id).Scan(&c.ID, &c.LectureID, &c.Name, &definition, &c.Difficulty, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get concept: %w", err)
	}
	c.Definition = definition.String
	return &c, nil
}

// ListConceptsByLecture returns a lecture's concepts in insertion order.
func (db *DB) ListConceptsByLecture(lectureID int64) ([]Concept, error) {
	rows, err := db.Query(`
		SELECT id, lecture_id, name, definition, difficulty, created_at
		FROM concepts WHERE lecture_id = ? ORDER BY id
	`, lectureID)
	if err != nil {
		return nil, fmt.Errorf("list concepts by lecture: %w", err)
	}
	defer rows.Close()
	return scanConcepts(rows)
}

// ListConceptsByCourse returns every concept across every lecture of a course,
// in lecture order.
func (db *DB) ListConceptsByCourse(courseID int64) ([]Concept, error) {
	rows, err := db.Query(`
		SELECT c.id, c.lecture_id, c.name, c.definition, c.difficulty, c.created_at
		FROM concepts c
		JOIN lectures l ON l.id = c.lecture_id
		WHERE l.course_id = ?
		ORDER BY l.ord, l.id, c.id
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list concepts by course: %w", err)
	}
	defer rows.Close()
	return scanConcepts(rows)
}

func scanConcepts(rows *sql.Rows) ([]Concept, error) {
	var concepts []Concept
	for rows.Next() {
		var c Concept
		var definition sql.NullString
		if err := rows.Scan(&c.ID, &c.LectureID, &c.Name, &definition, &c.Difficulty, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		c.Definition = definition.String
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

// ReplaceRelationships deletes all relationships whose concept_id is in the
// given set and inserts the new batch, all in one transaction.
func (db *DB) ReplaceRelationships(conceptIDs []int64, rels []ConceptRelationship) ([]ConceptRelationship, error) {
	if len(conceptIDs) == 0 {
		return nil, nil
	}
	now := time.Now().UnixMilli()
	inserted := make([]ConceptRelationship, 0, len(rels))

	err := db.WithTx(func(tx *sql.Tx) error {
		ph, args := inClause(conceptIDs)
		if _, err := tx.Exec(
			fmt.Sprintf("DELETE FROM concept_relationships WHERE concept_id IN (%s)", ph), args...,
		); err != nil {
			return fmt.Errorf("delete relationships: %w", err)
		}
		for _, r := range rels {
			result, err := tx.Exec(`
				INSERT INTO concept_relationships (concept_id, related_concept_id, relationship_type, created_at)
				VALUES (?, ?, ?, ?)
			`, r.ConceptID, r.RelatedConceptID, r.Type, now)
			if err != nil {
				return fmt.Errorf("insert relationship %d -> %d: %w", r.ConceptID, r.RelatedConceptID, err)
			}
			id, _ := result.LastInsertId()
			r.ID = id
			r.CreatedAt = now
			inserted = append(inserted, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// ListRelationshipsByCourse returns all relationships anchored on the course's
// concepts.
func (db *DB) ListRelationshipsByCourse(courseID int64) ([]ConceptRelationship, error) {
	rows, err := db.Query(`
		SELECT r.id, r.concept_id, r.related_concept_id, r.relationship_type, r.created_at
		FROM concept_relationships r
		JOIN concepts c ON c.id = r.concept_id
		JOIN lectures l ON l.id = c.lecture_id
		WHERE l.course_id = ?
		ORDER BY r.id
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	defer rows.Close()

	var rels []ConceptRelationship
	for rows.Next() {
		var r ConceptRelationship
		if err := rows.Scan(&r.ID, &r.ConceptID, &r.RelatedConceptID, &r.Type, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}
