package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/classify-app/classify/internal/engine"
)

var cliConfigPath string

func init() {
	for _, c := range []*cobra.Command{conceptsCmd, rebuildCmd, quizCmd, dueCmd, progressCmd} {
		c.Flags().StringVar(&cliConfigPath, "config", "", "path to config.toml")
	}
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return id, nil
}

var conceptsCmd = &cobra.Command{
	Use:   "concepts <lecture-id>",
	Short: "Extract concepts from a lecture's transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lectureID, err := parseID(args[0], "lecture id")
		if err != nil {
			return err
		}

		db, eng, _, err := openEngine(cliConfigPath)
		if err != nil {
			return err
		}
		defer db.Close()

		concepts, err := eng.GenerateConcepts(context.Background(), lectureID, "")
		if err != nil {
			return err
		}
		for _, c := range concepts {
			fmt.Printf("%d\t%s\t%s\n", c.ID, c.Difficulty, c.Name)
		}
		fmt.Printf("%d concepts\n", len(concepts))
		return nil
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <course-id>",
	Short: "Rebuild a course's concept relationship graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, err := parseID(args[0], "course id")
		if err != nil {
			return err
		}

		db, eng, _, err := openEngine(cliConfigPath)
		if err != nil {
			return err
		}
		defer db.Close()

		rels, err := eng.RebuildRelationships(context.Background(), courseID)
		if err != nil {
			return err
		}
		for _, rel := range rels {
			fmt.Printf("%d -[%s]-> %d\n", rel.ConceptID, rel.Type, rel.RelatedConceptID)
		}
		fmt.Printf("%d relationships\n", len(rels))
		return nil
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz <course-id>",
	Short: "Assemble a course-wide quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, err := parseID(args[0], "course id")
		if err != nil {
			return err
		}

		db, eng, _, err := openEngine(cliConfigPath)
		if err != nil {
			return err
		}
		defer db.Close()

		instance, err := eng.AssembleCourseQuiz(context.Background(), courseID)
		if err != nil {
			return err
		}
		fmt.Printf("quiz %s: %d questions\n", instance.ID, len(instance.Questions))
		for i, q := range instance.Questions {
			fmt.Printf("\n%d. %s\n   A) %s\n   B) %s\n   C) %s\n   D) %s\n",
				i+1, q.Question, q.OptionA, q.OptionB, q.OptionC, q.OptionD)
		}
		return nil
	},
}

var dueCmd = &cobra.Command{
	Use:   "due <user-id> <course-id>",
	Short: "List flashcards due for review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0], "user id")
		if err != nil {
			return err
		}
		courseID, err := parseID(args[1], "course id")
		if err != nil {
			return err
		}

		db, eng, _, err := openEngine(cliConfigPath)
		if err != nil {
			return err
		}
		defer db.Close()

		cards, err := eng.DueFlashcards(userID, courseID)
		if err != nil {
			return err
		}
		for _, c := range cards {
			fmt.Printf("%d\t%s\n", c.ID, c.Front)
		}
		fmt.Printf("%d cards due\n", len(cards))
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress <user-id> <course-id>",
	Short: "Show course progress and weak concepts",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0], "user id")
		if err != nil {
			return err
		}
		courseID, err := parseID(args[1], "course id")
		if err != nil {
			return err
		}

		db, eng, _, err := openEngine(cliConfigPath)
		if err != nil {
			return err
		}
		defer db.Close()

		summary, err := eng.CourseProgressSummary(userID, courseID)
		if err != nil {
			return err
		}
		fmt.Printf("lectures: %d/%d completed (%.0f%%)\n",
			summary.CompletedLectures, summary.TotalLectures, summary.CompletionPercentage)
		fmt.Printf("concepts: %d total, %d mastered\n", summary.TotalConcepts, summary.MasteredConcepts)

		weak, err := eng.WeakConcepts(userID, courseID, 0)
		if err != nil {
			return err
		}
		if len(weak) > 0 {
			fmt.Println("\nweak concepts:")
			for _, in := range weak {
				fmt.Printf("  %-30s %5.1f  %s  (%s)\n",
					in.Concept.Name, in.Mastery, engine.Status(in.Mastery), in.LectureTitle)
			}
		}
		return nil
	},
}
