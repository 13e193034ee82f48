package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// IngestResponse represents the ingest API response.
type IngestResponse struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Failed    []struct {
		File   string `json:"file"`
		Reason string `json:"reason"`
	} `json:"failed"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Upload files into the knowledge base",
		Long:  "Uploads local .txt, .md and .pdf files to the server for chunking and embedding.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(cmd, args, outputJSON)
		},
	}

	return cmd
}

func runIngest(cmd *cobra.Command, files []string, outputJSON bool) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("cannot read %s: %w", file, err)
		}
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.PostMultipart("/ingest", files)
	if err != nil {
		return err
	}

	var result IngestResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Ingested %d document(s), %d chunk(s)\n", result.Documents, result.Chunks)
	for _, f := range result.Failed {
		fmt.Printf("  failed: %s (%s)\n", f.File, f.Reason)
	}
	if len(result.Failed) > 0 && result.Documents == 0 {
		return fmt.Errorf("all files failed to ingest")
	}
	return nil
}
