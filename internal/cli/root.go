package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "classify",
	Short: "Learning analytics for lecture notes",
	Long:  "Classify turns lecture transcripts into concepts, quizzes and flashcards, and tracks mastery with spaced repetition.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(conceptsCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(progressCmd)
}
