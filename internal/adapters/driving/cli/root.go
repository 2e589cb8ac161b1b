// Package cli implements the ragets command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/manwithbarba/rag-ets/internal/logger"
)

// version is set by Execute from the build.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// app supplies services to commands. PersistentPreRunE installs the
// config-backed Runtime when none is set; tests install their own.
var app Runtime

var errNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "ragets",
	Short: "Cited answers from your local documents",
	Long: `ragets indexes a directory of PDF, DOCX, Markdown and text files and
answers questions about them with a local language model. Every claim in an
answer carries a [n] marker that refers to one of the retrieved sources.

Start with:
  ragets ingest ./documentos
  ragets ask "¿Qué países participaron en el estudio?"`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initRuntime,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default $RAGETS_HOME or ~/.ragets)")
}

func initRuntime(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if app != nil {
		return nil
	}

	rt, err := NewRuntime(configDir)
	if err != nil {
		return err
	}
	app = rt
	return nil
}

// Execute runs the root command and returns the process exit code. Errors
// are printed as a single line on stderr.
func Execute(v string) int {
	version = v

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, os.Args[1:], os.Stderr)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)

	if app != nil {
		if closeErr := app.Close(); closeErr != nil {
			logger.Warn("releasing resources: %v", closeErr)
		}
	}

	if err != nil {
		fmt.Fprintln(stderr, "Error: "+errorMessage(err))
		return 1
	}
	return 0
}
