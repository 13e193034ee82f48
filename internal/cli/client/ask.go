package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskRequest represents the ask API request.
type AskRequest struct {
	Question string `json:"question"`
}

// TraceStep is one pipeline step's recorded output.
type TraceStep struct {
	Step   string `json:"step"`
	Output string `json:"output"`
}

// AskResponse represents the ask API response.
type AskResponse struct {
	Answer string      `json:"answer"`
	Trace  []TraceStep `json:"trace"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var showTrace bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the knowledge base a question",
		Long:  "Runs the question through the retrieve, research, write and critique pipeline.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, strings.Join(args, " "), showTrace, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&showTrace, "trace", false, "Show per-step pipeline output")

	return cmd
}

func runAsk(cmd *cobra.Command, question string, showTrace, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/ask", AskRequest{Question: question})
	if err != nil {
		return err
	}

	var result AskResponse
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

	if showTrace {
		for _, step := range result.Trace {
			fmt.Printf("=== %s ===\n%s\n\n", step.Step, step.Output)
		}
	}

	fmt.Println(result.Answer)
	return nil
}
