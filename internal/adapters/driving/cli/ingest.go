package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/manwithbarba/rag-ets/internal/connectors/filesystem"
	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driving"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

var (
	ingestIndex        string
	ingestChunkSize    int
	ingestChunkOverlap int
	ingestWatch        bool
)

// watchDocuments blocks rebuilding the index on changes under root.
// Replaced in tests.
var watchDocuments = func(ctx context.Context, root string, rebuild func(context.Context) error) error {
	return filesystem.NewWatcher(root, 0).Run(ctx, rebuild)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Build the vector index from a document directory",
	Long: `Reads every PDF, DOCX, Markdown and text file under the directory,
splits it into overlapping fragments, embeds them and replaces the persisted
index. Documents that cannot be read are reported and skipped.

The directory defaults to documents.path from the configuration. With --watch
the index is rebuilt whenever files under the directory change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestIndex, "index", "", "index directory (default index.path)")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", domain.DefaultChunkSize, "maximum fragment length in characters")
	ingestCmd.Flags().IntVar(&ingestChunkOverlap, "chunk-overlap", domain.DefaultChunkOverlap, "characters shared by adjacent fragments")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "rebuild the index when documents change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if app == nil {
		return errNotConfigured
	}

	settings := app.Settings()
	if cmd.Flags().Changed("index") {
		settings.IndexPath = ingestIndex
	}
	if cmd.Flags().Changed("chunk-size") {
		settings.Chunking.Size = ingestChunkSize
	}
	if cmd.Flags().Changed("chunk-overlap") {
		settings.Chunking.Overlap = ingestChunkOverlap
	}

	root := settings.DocumentsPath
	if len(args) > 0 {
		root = args[0]
	}

	ctx := cmd.Context()
	svc, err := app.IngestService(ctx, settings)
	if err != nil {
		return err
	}

	cmd.Printf("Indexing %s...\n", root)
	err = ingestOnce(ctx, cmd, svc, root)
	if !ingestWatch {
		return err
	}
	if err != nil && !errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	if err != nil {
		logger.Warn("%v", err)
	}

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)...\n", root)
	return watchDocuments(ctx, root, func(ctx context.Context) error {
		return ingestOnce(ctx, cmd, svc, root)
	})
}

func ingestOnce(ctx context.Context, cmd *cobra.Command, svc driving.IngestService, root string) error {
	report, err := svc.Ingest(ctx, root)
	if report != nil {
		printIngestReport(cmd, report)
	}
	return err
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	for _, s := range report.Skipped {
		cmd.Printf("  skipped %s: %v\n", s.Path, s.Reason)
	}
	if report.Fragments == 0 {
		return
	}
	cmd.Printf("Indexed %d fragments from %d documents into %s (%s)\n",
		report.Fragments, report.Documents, report.IndexPath, report.Duration.Round(time.Millisecond))
}
