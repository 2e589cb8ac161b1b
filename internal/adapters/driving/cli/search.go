package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// snippetLength is the number of characters shown per fragment.
const snippetLength = 160

var (
	searchK    int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Show the fragments retrieved for a question",
	Long: `Embeds the question and lists the most similar indexed fragments by
cosine similarity, without calling the language model. Useful to check what
context an answer would be built from.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "k", "k", domain.DefaultRetrievalK, "number of fragments to retrieve (1-10)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// fragmentOutput is the JSON shape of a retrieved fragment.
type fragmentOutput struct {
	Rank   int     `json:"rank"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if app == nil {
		return errNotConfigured
	}

	k := searchK
	if !cmd.Flags().Changed("k") {
		k = app.Settings().RetrievalK
	}

	ctx := cmd.Context()
	retriever, err := app.RetrievalService(ctx)
	if err != nil {
		return err
	}

	results, err := retriever.Retrieve(ctx, args[0], k)
	if err != nil {
		return err
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	outputSearchTable(cmd, results)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results domain.RetrievalResult) error {
	out := make([]fragmentOutput, len(results))
	for i := range results {
		out[i] = fragmentOutput{
			Rank:   results[i].Rank,
			Source: results[i].Fragment.Source,
			Score:  results[i].Score,
			Text:   results[i].Fragment.Text,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results domain.RetrievalResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] source (score)
		cmd.Printf("  [%d] %s (%.2f)\n", results[i].Rank, results[i].Fragment.Source, results[i].Score)
		cmd.Printf("      %s\n", snippet(results[i].Fragment.Text, snippetLength))
		cmd.Println()
	}
}

// snippet collapses whitespace and truncates text to n characters.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}
