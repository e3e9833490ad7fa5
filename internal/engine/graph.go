package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/classify-app/classify/internal/llm"
	"github.com/classify-app/classify/internal/store"
)

// RebuildRelationships infers the concept graph for a whole course and
// replaces the course's relationship set with the result. Requires at least
// 2 lectures and at least 2 concepts across them; otherwise it is a no-op
// returning an empty list without touching stored data.
//
// The delete and the inserts run in one transaction, so a failure during the
// generation call leaves the existing graph intact.
func (e *Engine) RebuildRelationships(ctx context.Context, courseID int64) ([]store.ConceptRelationship, error) {
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
	if len(lectures) < 2 {
		log.Printf("rebuild: course %d has %d lectures, need 2 — skipping", courseID, len(lectures))
		return nil, nil
	}

	concepts, err := e.DB.ListConceptsByCourse(courseID)
	if err != nil {
		return nil, err
	}
	if len(concepts) < 2 {
		log.Printf("rebuild: course %d has %d concepts, need 2 — skipping", courseID, len(concepts))
		return nil, nil
	}

	lectureTitles := make(map[int64]string, len(lectures))
	for _, l := range lectures {
		lectureTitles[l.ID] = l.Title
	}

	conceptIDs := make(map[int64]bool, len(concepts))
	idList := make([]int64, 0, len(concepts))
	var block strings.Builder
	for _, c := range concepts {
		conceptIDs[c.ID] = true
		idList = append(idList, c.ID)
		fmt.Fprintf(&block, "%d | %s | %s | %s | %s\n",
			c.ID, c.Name, c.Difficulty, lectureTitles[c.LectureID], c.Definition)
	}

	prompt := llm.RelationshipPrompt(block.String())

	var candidates []relationshipCandidate
	if err := e.generate(ctx, prompt, courseTimeout, &candidates); err != nil {
		return nil, err
	}

	// Validate endpoints and de-duplicate within the batch. Repeated
	// (concept, related, type) triples are generator noise.
	seen := make(map[[3]any]bool, len(candidates))
	rels := make([]store.ConceptRelationship, 0, len(candidates))
	for _, c := range candidates {
		vr, err := validateRelationship(c, conceptIDs)
		if err != nil {
			log.Printf("rebuild: dropping relationship %d -> %d: %v", c.ConceptID, c.RelatedConceptID, err)
			continue
		}
		key := [3]any{vr.ConceptID, vr.RelatedConceptID, vr.Type}
		if seen[key] {
			continue
		}
		seen[key] = true
		rels = append(rels, vr)
	}

	inserted, err := e.DB.ReplaceRelationships(idList, rels)
	if err != nil {
		return nil, fmt.Errorf("replace relationships: %w", err)
	}
	log.Printf("rebuild: stored %d relationships for course %d", len(inserted), courseID)
	return inserted, nil
}
