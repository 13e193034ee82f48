package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-labs/sage/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "saged",
		Short: "Sage daemon",
		Long:  "Sage daemon for running the knowledge base API server and bulk-loading documents",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IngestCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
