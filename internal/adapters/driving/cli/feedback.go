package cli

import (
	"github.com/spf13/cobra"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

var feedbackLimit int

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Inspect the feedback log",
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent rated answers",
	Args:  cobra.NoArgs,
	RunE:  runFeedbackList,
}

func init() {
	feedbackListCmd.Flags().IntVarP(&feedbackLimit, "limit", "n", 10, "maximum number of entries")
	feedbackCmd.AddCommand(feedbackListCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedbackList(cmd *cobra.Command, _ []string) error {
	if app == nil {
		return errNotConfigured
	}

	entries, err := app.FeedbackService().Recent(cmd.Context(), feedbackLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		cmd.Println("No feedback recorded.")
		return nil
	}

	for i := range entries {
		cmd.Printf("%s  %s\n", entries[i].Timestamp.Format(domain.TimestampLayout), entries[i].Rating)
		cmd.Printf("  Q: %s\n", snippet(entries[i].Question, snippetLength))
		cmd.Printf("  A: %s\n", snippet(entries[i].Answer, snippetLength))
	}
	return nil
}
