package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/classify-app/classify/internal/store"
)

func TestRebuildRelationships(t *testing.T) {
	db := testDB(t)
	_, course, lecture := testFixture(t, db)

	lecture2, err := db.CreateLecture(course.ID, "Channel capacity", "noisy channels...", "", 2)
	if err != nil {
		t.Fatalf("CreateLecture: %v", err)
	}

	c1, err := db.ReplaceConceptsForLecture(lecture.ID, []store.Concept{
		{Name: "Entropy", Difficulty: "intermediate"},
	})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}
	c2, err := db.ReplaceConceptsForLecture(lecture2.ID, []store.Concept{
		{Name: "Channel capacity", Difficulty: "advanced"},
	})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}

	// Duplicate triple, a self-relationship, and an unknown endpoint are all
	// dropped; one valid edge survives.
	mock := mockClient(fmt.Sprintf(`[
		{"concept_id": %d, "related_concept_id": %d, "relationship_type": "prerequisite"},
		{"concept_id": %d, "related_concept_id": %d, "relationship_type": "prerequisite"},
		{"concept_id": %d, "related_concept_id": %d, "relationship_type": "related"},
		{"concept_id": %d, "related_concept_id": 9999, "relationship_type": "related"}
	]`, c1[0].ID, c2[0].ID, c1[0].ID, c2[0].ID, c1[0].ID, c1[0].ID, c1[0].ID))
	eng := New(db, mock)

	rels, err := eng.RebuildRelationships(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("RebuildRelationships: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("got %d relationships, want 1", len(rels))
	}
	if rels[0].ConceptID != c1[0].ID || rels[0].RelatedConceptID != c2[0].ID {
		t.Errorf("edge = %d -> %d, want %d -> %d",
			rels[0].ConceptID, rels[0].RelatedConceptID, c1[0].ID, c2[0].ID)
	}
}

func TestRebuildRelationshipsNeedsTwoLectures(t *testing.T) {
	db := testDB(t)
	_, course, lecture := testFixture(t, db)

	if _, err := db.ReplaceConceptsForLecture(lecture.ID, []store.Concept{
		{Name: "Entropy", Difficulty: "intermediate"},
		{Name: "Cross entropy", Difficulty: "advanced"},
	}); err != nil {
		t.Fatalf("replace concepts: %v", err)
	}

	mock := mockClient("[]")
	eng := New(db, mock)

	rels, err := eng.RebuildRelationships(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("RebuildRelationships: %v", err)
	}
	if rels != nil {
		t.Errorf("got %v, want nil with a single lecture", rels)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("generation called %d times below the lecture minimum, want 0", len(mock.Calls))
	}
}

func TestRebuildRelationshipsPreservesGraphOnFailure(t *testing.T) {
	db := testDB(t)
	_, course, lecture := testFixture(t, db)

	lecture2, err := db.CreateLecture(course.ID, "Second", "text", "", 2)
	if err != nil {
		t.Fatalf("CreateLecture: %v", err)
	}
	c1, err := db.ReplaceConceptsForLecture(lecture.ID, []store.Concept{{Name: "A", Difficulty: "beginner"}})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}
	c2, err := db.ReplaceConceptsForLecture(lecture2.ID, []store.Concept{{Name: "B", Difficulty: "beginner"}})
	if err != nil {
		t.Fatalf("replace concepts: %v", err)
	}

	ids := []int64{c1[0].ID, c2[0].ID}
	if _, err := db.ReplaceRelationships(ids, []store.ConceptRelationship{
		{ConceptID: c1[0].ID, RelatedConceptID: c2[0].ID, Type: "related"},
	}); err != nil {
		t.Fatalf("seed relationships: %v", err)
	}

	eng := New(db, mockClient("not json at all"))
	if _, err := eng.RebuildRelationships(context.Background(), course.ID); err == nil {
		t.Fatal("expected error from malformed response, got nil")
	}

	rels, err := db.ListRelationshipsByCourse(course.ID)
	if err != nil {
		t.Fatalf("ListRelationshipsByCourse: %v", err)
	}
	if len(rels) != 1 {
		t.Errorf("graph has %d edges after failed rebuild, want 1 untouched", len(rels))
	}
}
