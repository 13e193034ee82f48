package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-labs/sage/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "sage",
		Short: "Sage CLI - question answering over your personal knowledge base",
		Long: `Sage CLI talks to a running sage server.

Environment variables:
  SAGE_API_URL   API base URL (default: http://localhost:8080)
  SAGE_API_KEY   API key, only needed when the server has auth enabled`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.DocumentsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
