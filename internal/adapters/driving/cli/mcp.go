package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manwithbarba/rag-ets/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask cited
questions over the local index. It exposes the answer_question and retrieve
tools, both taking {question, k}.

By default, the server communicates over stdio using JSON-RPC. Use --port
(or mcp.port in config.toml) to serve streamable HTTP instead.

Examples:
  # Stdio mode (default)
  ragets mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  ragets mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "ragets": {
        "command": "/path/to/ragets",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if app == nil {
		return errNotConfigured
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if !cmd.Flags().Changed("port") {
		port = app.Settings().MCPPort
	}

	// Open the models before accepting connections.
	answers, err := app.AnswerService(cmd.Context())
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Answers:  answers,
		Feedback: app.FeedbackService(),
		DefaultK: app.Settings().RetrievalK,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
