package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manwithbarba/rag-ets/internal/adapters/driven/config/file"
	"github.com/manwithbarba/rag-ets/internal/adapters/driven/storage/memory"
	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	Long: `View the effective settings or change a value in config.toml.

Settings are merged from built-in defaults, config.toml and RAGETS_*
environment variables, in that order.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value in config.toml. The value is checked against
the key's type and the resulting settings are validated before saving.

Keys:
  ` + strings.Join(file.KnownKeys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if app == nil {
			return errNotConfigured
		}
		cmd.Println(app.ConfigStore().Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if app == nil {
		return errNotConfigured
	}

	settings := app.Settings()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Documents]")
	cmd.Printf("  Path: %s\n", settings.DocumentsPath)
	cmd.Printf("  Index: %s\n", settings.IndexPath)
	cmd.Printf("  Chunk size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Chunk overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
	}
	if settings.Embedding.ModelDir != "" {
		cmd.Printf("  Model dir: %s\n", settings.Embedding.ModelDir)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
	}
	if settings.LLM.ModelPath != "" {
		cmd.Printf("  Model path: %s\n", settings.LLM.ModelPath)
	}
	cmd.Printf("  Context length: %d\n", settings.LLM.ContextLength)
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
	cmd.Printf("  GPU layers: %d\n", settings.LLM.GPULayers)
	if settings.LLM.Seed != nil {
		cmd.Printf("  Seed: %d\n", *settings.LLM.Seed)
	}
	cmd.Printf("  Timeout: %s\n", settings.LLM.Timeout)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  k: %d\n", settings.RetrievalK)
	cmd.Println()

	cmd.Println("[Feedback]")
	cmd.Printf("  Path: %s\n", settings.FeedbackPath)
	cmd.Println()

	cmd.Printf("Config file: %s\n", app.ConfigStore().Path())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if app == nil {
		return errNotConfigured
	}

	key, raw := args[0], args[1]
	value, err := file.ParseValue(key, raw)
	if err != nil {
		return err
	}

	store := app.ConfigStore()

	// Validate the merged result before anything is written.
	values := make(map[string]any)
	for _, k := range store.Keys() {
		if v, ok := store.Get(k); ok {
			values[k] = v
		}
	}
	values[key] = value
	if _, err := file.LoadSettings(memory.NewConfigStore(values)); err != nil {
		return fmt.Errorf("%s = %s: %w", key, raw, err)
	}

	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}

// maskAPIKey masks an API key for display, showing only first/last 4 chars.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
