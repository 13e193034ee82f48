package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// DocumentItem represents one document in the list API response.
type DocumentItem struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Filename   string `json:"filename"`
	Type       string `json:"type"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

// ListDocumentsResponse represents the document list API response.
type ListDocumentsResponse struct {
	Items   []DocumentItem `json:"items"`
	Cursor  string         `json:"cursor,omitempty"`
	HasMore bool           `json:"has_more"`
}

// DocumentsCmd creates the documents command.
func DocumentsCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List ingested documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocuments(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runDocuments(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	resp, err := api.Get("/documents?" + query.Encode())
	if err != nil {
		return err
	}

	var result ListDocumentsResponse
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

	if len(result.Items) == 0 {
		fmt.Println("No documents ingested yet.")
		return nil
	}

	for _, doc := range result.Items {
		fmt.Printf("%-36s  %-8s  %3d chunks  %s\n", doc.ID, doc.Type, doc.ChunkCount, doc.Filename)
	}
	if result.HasMore {
		fmt.Printf("\nMore results: --cursor %s\n", result.Cursor)
	}
	return nil
}
