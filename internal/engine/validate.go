package engine

import (
	"fmt"
	"strings"

	"github.com/classify-app/classify/internal/store"
)

// Candidate shapes returned by the generation service. External text is never
// trusted as structurally correct: every field is validated or defaulted
// before it enters the typed entity model, and offending items are skipped
// without aborting the batch.

type conceptCandidate struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
	Difficulty string `json:"difficulty"`
}

type relationshipCandidate struct {
	ConceptID        int64  `json:"concept_id"`
	RelatedConceptID int64  `json:"related_concept_id"`
	Type             string `json:"relationship_type"`
}

type quizCandidate struct {
	ConceptID     int64  `json:"concept_id"`
	Question      string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Difficulty    string `json:"difficulty"`
}

type flashcardCandidate struct {
	ConceptID  int64  `json:"concept_id"`
	Front      string `json:"front"`
	Back       string `json:"back"`
	Difficulty string `json:"difficulty"`
}

var conceptDifficulties = map[string]bool{
	"beginner": true, "intermediate": true, "advanced": true,
}

var relationshipTypes = map[string]bool{
	"prerequisite": true, "related": true, "builds_on": true, "part_of": true,
}

// normalizeConceptDifficulty lowercases and defaults unrecognized tiers to
// intermediate.
func normalizeConceptDifficulty(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if !conceptDifficulties[d] {
		return "intermediate"
	}
	return d
}

// normalizeItemDifficulty covers quiz and flashcard difficulty labels.
func normalizeItemDifficulty(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	switch d {
	case "easy", "medium", "hard":
		return d
	}
	return "medium"
}

// normalizeAnswer uppercases the correct-answer letter and defaults anything
// outside A-D to A.
func normalizeAnswer(a string) string {
	a = strings.ToUpper(strings.TrimSpace(a))
	switch a {
	case "A", "B", "C", "D":
		return a
	}
	return "A"
}

// validateConcept checks an extracted concept candidate.
func validateConcept(c conceptCandidate) (store.Concept, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return store.Concept{}, fmt.Errorf("empty concept name")
	}
	return store.Concept{
		Name:       name,
		Definition: strings.TrimSpace(c.Definition),
		Difficulty: normalizeConceptDifficulty(c.Difficulty),
	}, nil
}

// validateRelationship checks both endpoints against the course's concept-id
// set and rejects self-relationships. An unrecognized type defaults to
// related.
func validateRelationship(c relationshipCandidate, conceptIDs map[int64]bool) (store.ConceptRelationship, error) {
	if !conceptIDs[c.ConceptID] {
		return store.ConceptRelationship{}, fmt.Errorf("unknown concept id %d", c.ConceptID)
	}
	if !conceptIDs[c.RelatedConceptID] {
		return store.ConceptRelationship{}, fmt.Errorf("unknown related concept id %d", c.RelatedConceptID)
	}
	if c.ConceptID == c.RelatedConceptID {
		return store.ConceptRelationship{}, fmt.Errorf("concept %d related to itself", c.ConceptID)
	}

	relType := strings.ToLower(strings.TrimSpace(c.Type))
	if !relationshipTypes[relType] {
		relType = "related"
	}

	return store.ConceptRelationship{
		ConceptID:        c.ConceptID,
		RelatedConceptID: c.RelatedConceptID,
		Type:             relType,
	}, nil
}

// validateQuiz checks the concept reference and fills defaults for the
// remaining fields.
func validateQuiz(c quizCandidate, conceptIDs map[int64]bool) (store.Quiz, error) {
	if !conceptIDs[c.ConceptID] {
		return store.Quiz{}, fmt.Errorf("unknown concept id %d", c.ConceptID)
	}

	question := strings.TrimSpace(c.Question)
	if question == "" {
		question = "(question unavailable)"
	}

	return store.Quiz{
		ConceptID:     c.ConceptID,
		Question:      question,
		OptionA:       strings.TrimSpace(c.OptionA),
		OptionB:       strings.TrimSpace(c.OptionB),
		OptionC:       strings.TrimSpace(c.OptionC),
		OptionD:       strings.TrimSpace(c.OptionD),
		CorrectAnswer: normalizeAnswer(c.CorrectAnswer),
		Explanation:   strings.TrimSpace(c.Explanation),
		Difficulty:    normalizeItemDifficulty(c.Difficulty),
	}, nil
}

// validateFlashcard checks the concept reference and requires both faces.
func validateFlashcard(c flashcardCandidate, conceptIDs map[int64]bool) (store.Flashcard, error) {
	if !conceptIDs[c.ConceptID] {
		return store.Flashcard{}, fmt.Errorf("unknown concept id %d", c.ConceptID)
	}
	front := strings.TrimSpace(c.Front)
	back := strings.TrimSpace(c.Back)
	if front == "" || back == "" {
		return store.Flashcard{}, fmt.Errorf("flashcard for concept %d missing front or back", c.ConceptID)
	}
	return store.Flashcard{
		ConceptID:  c.ConceptID,
		Front:      front,
		Back:       back,
		Difficulty: normalizeItemDifficulty(c.Difficulty),
	}, nil
}
