package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sage-labs/sage/internal/config"
	"github.com/sage-labs/sage/internal/database"
	"github.com/sage-labs/sage/internal/ingest"
	"github.com/sage-labs/sage/internal/llm"
	"github.com/sage-labs/sage/internal/repository"
)

// IngestCmd returns the ingest command for loading files without going
// through the HTTP API. Useful for bulk loads on the server host.
func IngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Ingest files or directories directly into the database",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	llmClient := llm.NewClient(llm.Config{
		BaseURL:             cfg.LLMBaseURL,
		APIKey:              cfg.LLMAPIKey,
		Model:               cfg.LLMModel,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})

	svc := ingest.NewService(repository.NewDocumentRepository(pool), llmClient, nil)

	report, err := svc.Ingest(ctx, args)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d document(s), %d chunk(s)\n", report.Documents, report.Chunks)
	for _, f := range report.Failed {
		fmt.Printf("  failed: %s (%s)\n", f.File, f.Reason)
	}
	if report.Documents == 0 && len(report.Failed) > 0 {
		return fmt.Errorf("all files failed to ingest")
	}
	return nil
}
