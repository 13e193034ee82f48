package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusResponse represents the status API response.
type StatusResponse struct {
	Documents      int    `json:"documents"`
	Chunks         int    `json:"chunks"`
	EmbeddedChunks int    `json:"embedded_chunks"`
	LLMModel       string `json:"llm_model"`
	EmbeddingModel string `json:"embedding_model"`
}

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show knowledge base status",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStatus(cmd, outputJSON)
		},
	}
}

func runStatus(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/status")
	if err != nil {
		return err
	}

	var result StatusResponse
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

	fmt.Printf("Documents:        %d\n", result.Documents)
	fmt.Printf("Chunks:           %d (%d embedded)\n", result.Chunks, result.EmbeddedChunks)
	fmt.Printf("LLM model:        %s\n", result.LLMModel)
	fmt.Printf("Embedding model:  %s\n", result.EmbeddingModel)
	return nil
}
