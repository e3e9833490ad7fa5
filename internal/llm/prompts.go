package llm

import (
	"fmt"
	"strings"
)

// ConceptExtractionPrompt asks the generator to mine key concepts from a
// lecture transcript (or its summary).
func ConceptExtractionPrompt(title, excerpt string) string {
	return fmt.Sprintf(`You are a study-aid system. Extract the key concepts from this lecture.

LECTURE: %s

CONTENT:
%s

Rules:
- Extract 3-7 concepts, each an atomic idea a student must learn
- name: short concept name (2-6 words)
- definition: 1-2 sentence definition in plain language
- difficulty: one of "beginner", "intermediate", "advanced"
- Return ONLY a JSON array, no other text

Return a JSON array:
[{"name": "...", "definition": "...", "difficulty": "beginner|intermediate|advanced"}]

If the content contains no teachable concepts, return: []`, title, excerpt)
}

// RelationshipPrompt asks the generator to infer how the concepts of a course
// connect. conceptsBlock lists one concept per line with its numeric id.
func RelationshipPrompt(conceptsBlock string) string {
	return fmt.Sprintf(`You are a curriculum-mapping system. Identify relationships between these course concepts.

CONCEPTS (id | name | difficulty | lecture | definition):
%s

Relationship types:
- prerequisite: the first concept must be understood before the second
- related: the concepts cover adjacent material
- builds_on: the first concept extends the second
- part_of: the first concept is a component of the second

Rules:
- Identify 3-8 relationships among the concepts above
- Use only the numeric ids listed
- Each relationship gets exactly one type
- Return ONLY a JSON array, no other text

Return a JSON array:
[{"concept_id": 1, "related_concept_id": 2, "relationship_type": "prerequisite|related|builds_on|part_of"}]

If no meaningful relationships exist, return: []`, conceptsBlock)
}

// QuizPrompt asks the generator for multiple-choice questions covering the
// given concepts. contextText is an optional excerpt of the source lecture;
// pass "" for course-wide batches that span lectures.
func QuizPrompt(conceptsBlock, contextText string) string {
	contextSection := ""
	if contextText != "" {
		contextSection = fmt.Sprintf("\nLECTURE CONTEXT:\n%s\n", contextText)
	}

	return fmt.Sprintf(`You are a quiz-authoring system. Write one multiple-choice question per concept below.

CONCEPTS (id | name | difficulty | definition):
%s
%s
Rules:
- One question per concept, tagged with that concept's numeric id
- Exactly four options (A-D), one correct
- correct_answer is the letter of the correct option
- explanation: one sentence on why the answer is correct
- difficulty: "easy", "medium" or "hard", matched to the concept
- Return ONLY a JSON array, no other text

Return a JSON array:
[{"concept_id": 1, "question": "...", "option_a": "...", "option_b": "...", "option_c": "...", "option_d": "...", "correct_answer": "A", "explanation": "...", "difficulty": "medium"}]`,
		conceptsBlock, contextSection)
}

// FlashcardPrompt asks the generator for front/back flashcards covering the
// given concepts.
func FlashcardPrompt(conceptsBlock, contextText string) string {
	contextSection := ""
	if contextText != "" {
		contextSection = fmt.Sprintf("\nLECTURE CONTEXT:\n%s\n", contextText)
	}

	return fmt.Sprintf(`You are a flashcard-authoring system. Write one flashcard per concept below.

CONCEPTS (id | name | difficulty | definition):
%s
%s
Rules:
- One card per concept, tagged with that concept's numeric id
- front: a question or prompt testing recall of the concept
- back: the answer, 1-3 sentences
- difficulty: "easy", "medium" or "hard", matched to the concept
- Return ONLY a JSON array, no other text

Return a JSON array:
[{"concept_id": 1, "front": "...", "back": "...", "difficulty": "medium"}]`,
		conceptsBlock, contextSection)
}

// Enhancement kinds supported by EnhancementPrompt.
var enhancementPrompts = map[string]string{
	"explain":   "Explain the following topic in more depth with examples:",
	"simplify":  "Explain the following in simple terms (ELI5 - Explain Like I'm 5):",
	"keypoints": "Extract the key points from the following text as a bullet list:",
	"quiz":      "Generate 5 multiple choice questions based on this content:",
}

// EnhancementPrompt builds a note-enhancement prompt. Returns false for an
// unsupported kind.
func EnhancementPrompt(kind, text string) (string, bool) {
	prefix, ok := enhancementPrompts[kind]
	if !ok {
		return "", false
	}
	return prefix + "\n\n" + strings.TrimSpace(text), true
}
