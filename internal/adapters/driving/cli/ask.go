package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

var (
	askK        int
	askJSON     bool
	askRate     string
	askFeedback bool
)

// isInteractive reports whether stdin is a terminal.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the fragments most similar to the question, numbers them as
sources and asks the language model for an answer that cites them with [n]
markers. When the documents do not contain the answer the model replies with
a fixed sentence instead of guessing.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "k", "k", domain.DefaultRetrievalK, "number of fragments to retrieve (1-10)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().StringVar(&askRate, "rate", "", "record a rating for the answer (good or bad)")
	askCmd.Flags().BoolVar(&askFeedback, "feedback", false, "ask for a rating after answering")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON shape of an answer.
type askOutput struct {
	Question  string           `json:"question"`
	Answer    string           `json:"answer"`
	Citations []citationOutput `json:"citations"`
	Contexts  []string         `json:"contexts"`
	Timestamp string           `json:"timestamp"`
}

type citationOutput struct {
	Number int    `json:"number"`
	Source string `json:"source"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if app == nil {
		return errNotConfigured
	}

	var rating domain.Rating
	if askRate != "" {
		r, ok := domain.ParseRating(askRate)
		if !ok {
			return fmt.Errorf("%w: rating %q (use good or bad)", domain.ErrInvalidInput, askRate)
		}
		rating = r
	}

	k := askK
	if !cmd.Flags().Changed("k") {
		k = app.Settings().RetrievalK
	}

	ctx := cmd.Context()
	answers, err := app.AnswerService(ctx)
	if err != nil {
		return err
	}

	answer, err := answers.AnswerQuestion(ctx, args[0], k)
	if err != nil {
		return err
	}

	if askJSON {
		if err := outputAnswerJSON(cmd, answer); err != nil {
			return err
		}
	} else {
		outputAnswerText(cmd, answer)
	}

	switch {
	case rating != "":
		return recordRating(cmd, answer, rating)
	case askFeedback && isInteractive():
		return promptRating(cmd, answer)
	case askFeedback:
		logger.Warn("--feedback needs a terminal; use --rate good|bad instead")
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := askOutput{
		Question:  answer.Question,
		Answer:    answer.Text,
		Citations: make([]citationOutput, len(answer.Context.Citations)),
		Contexts:  answer.Contexts(),
		Timestamp: answer.Timestamp.Format(domain.TimestampLayout),
	}
	for i, c := range answer.Context.Citations {
		out.Citations[i] = citationOutput{Number: c.Number, Source: c.Source}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	if len(answer.Context.Citations) == 0 {
		return
	}

	cmd.Println()
	cmd.Println(color.New(color.Bold).Sprint("Fuentes:"))
	for _, c := range answer.Context.Citations {
		cmd.Printf("  %s %s\n", c.Marker(), c.Source)
	}
}

func recordRating(cmd *cobra.Command, answer *domain.Answer, rating domain.Rating) error {
	if err := app.FeedbackService().Record(cmd.Context(), answer, rating); err != nil {
		return fmt.Errorf("recording feedback: %w", err)
	}
	cmd.Printf("Feedback recorded: %s\n", rating.Label())
	return nil
}

// promptRating reads a rating from the user. An empty line skips.
func promptRating(cmd *cobra.Command, answer *domain.Answer) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	for {
		cmd.Print("\n¿Fue útil la respuesta? [good/bad, Enter para omitir]: ")
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("reading rating: %w", err)
		}

		input := strings.ToLower(strings.TrimSpace(line))
		if input == "" {
			return nil
		}
		if rating, ok := domain.ParseRating(input); ok {
			return recordRating(cmd, answer, rating)
		}
		if err == io.EOF {
			return nil
		}
		cmd.Println("Please answer good or bad.")
	}
}
