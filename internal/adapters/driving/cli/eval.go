package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

var (
	evalFile string
	evalOut  string
	evalK    int
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Answer a golden question set and write a report",
	Long: `Runs every question of a CSV golden set (columns question,
ground_truth_answer, ground_truth_context) through the answering pipeline and
writes a JSON report with the question, answer, contexts and ground_truth of
each case, ready for an external judge. Format checks on citations and the
fallback sentence are summarised on stdout.`,
	Args: cobra.NoArgs,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalFile, "file", "", "golden set CSV file")
	evalCmd.Flags().StringVar(&evalOut, "out", "eval_report.json", "report output file")
	evalCmd.Flags().IntVarP(&evalK, "k", "k", domain.DefaultRetrievalK, "number of fragments to retrieve (1-10)")
	_ = evalCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, _ []string) error {
	if app == nil {
		return errNotConfigured
	}

	ctx := cmd.Context()
	reader, writer := app.EvalSet()

	cases, err := reader.Read(ctx, evalFile)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("%w: %s has no questions", domain.ErrInvalidInput, evalFile)
	}

	k := evalK
	if !cmd.Flags().Changed("k") {
		k = app.Settings().RetrievalK
	}

	svc, err := app.EvaluationService(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Evaluating %d questions...\n", len(cases))
	results, runErr := svc.Run(ctx, cases, k)

	// An interrupted run still leaves its partial report behind.
	summary := domain.Summarise(results)
	if err := writer.Write(context.WithoutCancel(ctx), evalOut, results, summary); err != nil {
		if runErr == nil {
			return err
		}
		logger.Warn("writing partial report: %v", err)
	} else if runErr != nil {
		cmd.Printf("Partial report (%d of %d questions) written to %s\n", len(results), len(cases), evalOut)
	}
	if runErr != nil {
		return runErr
	}

	for i := range results {
		if results[i].Err != nil {
			cmd.Printf("  failed %q: %v\n", results[i].Case.Question, results[i].Err)
		}
	}
	cmd.Printf("Cases:         %d\n", summary.Cases)
	cmd.Printf("Failures:      %d\n", summary.Failures)
	cmd.Printf("Citation rate: %.0f%%\n", summary.CitationRate*100)
	cmd.Printf("Fallback rate: %.0f%%\n", summary.FallbackRate*100)
	cmd.Printf("Grounded rate: %.0f%%\n", summary.GroundedRate*100)
	cmd.Printf("Report written to %s\n", evalOut)
	return nil
}
